package httpx

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/oauth"

	"github.com/mbolis/survey-desk/config"
	"github.com/mbolis/survey-desk/log"
	"github.com/mbolis/survey-desk/store"
)

const RoleAdmin = "admin"

const refreshTokenTTL = 8760 * time.Hour

type credentialsVerifier struct {
	store *store.Store
}

func CredentialsVerifier(s *store.Store) oauth.CredentialsVerifier {
	return &credentialsVerifier{s}
}

// NewBearerServer issues admin access and refresh tokens, checking passwords
// against the admin table.
func NewBearerServer(s *store.Store, cfg config.Config) *oauth.BearerServer {
	return oauth.NewBearerServer(cfg.TokenSecret, cfg.TokenTTL, CredentialsVerifier(s), nil)
}

func (cs *credentialsVerifier) ValidateUser(username string, password string, scope string, r *http.Request) error {
	err := cs.store.CheckAdmin(r.Context(), username, password)
	if err != nil && !errors.Is(err, store.ErrInvalidCredentials) {
		log.Errorf("login.check_admin: %s", err)
	}
	return err
}
func (cs *credentialsVerifier) StoreTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	return cs.store.StoreToken(context.Background(), credential, tokenID, refreshTokenID, time.Now().Add(refreshTokenTTL))
}
func (cs *credentialsVerifier) ValidateTokenID(tokenType oauth.TokenType, credential string, tokenID string, refreshTokenID string) error {
	err := cs.store.ConsumeToken(context.Background(), credential, tokenID, refreshTokenID)
	if err != nil {
		return errors.New("could not refresh")
	}
	return nil
}
func (*credentialsVerifier) AddClaims(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{"roles": RoleAdmin, "username": credential}, nil
}
func (*credentialsVerifier) AddProperties(tokenType oauth.TokenType, credential string, tokenID string, scope string, r *http.Request) (map[string]string, error) {
	return map[string]string{}, nil
}
func (*credentialsVerifier) ValidateClient(clientID string, clientSecret string, scope string, r *http.Request) error {
	return errors.New("not supported")
}
