package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/oauth"
	"github.com/pkg/errors"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	refreshCookieMaxAge = 60 * 60 * 24 * 365
)

// Session is what a request knows about who is making it. It travels in the
// request context; there is no server-side session state.
type Session struct {
	Username string
	Admin    bool
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFrom returns the session of a request, or the anonymous respondent
// session when none was attached.
func SessionFrom(ctx context.Context) Session {
	s, _ := ctx.Value(sessionKey{}).(Session)
	return s
}

// Tokens is the body returned by the bearer server on a successful grant.
type Tokens struct {
	AccessToken  string  `json:"access_token"`
	TokenType    string  `json:"token_type"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    float64 `json:"expires_in"`
}

// RequestTokens runs a grant against the bearer server without going through
// the network, returning the HTTP status it answered with.
func RequestTokens(bs *oauth.BearerServer, form url.Values) (Tokens, int, error) {
	var tokens Tokens

	body := form.Encode()
	req, err := http.NewRequest("POST", "/", strings.NewReader(body))
	if err != nil {
		return tokens, http.StatusInternalServerError, errors.Wrap(err, "tokens.new_request")
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	req.Header.Set("content-length", strconv.Itoa(len(body)))

	resp := NewResponseBuffer()
	bs.UserCredentials(resp, req)
	if resp.Status() != 0 && resp.Status() != http.StatusOK {
		return tokens, resp.Status(), nil
	}

	err = json.Unmarshal(resp.Body(), &tokens)
	if err != nil {
		return tokens, http.StatusInternalServerError, errors.Wrap(err, "tokens.parse")
	}
	return tokens, http.StatusOK, nil
}

func PasswordGrant(username, password string) url.Values {
	return url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	}
}

func RefreshGrant(refreshToken string) url.Values {
	return url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
}

func SetTokenCookies(w http.ResponseWriter, tokens Tokens) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     AccessTokenCookie,
		Value:    tokens.AccessToken,
		MaxAge:   int(tokens.ExpiresIn),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     RefreshTokenCookie,
		Value:    tokens.RefreshToken,
		MaxAge:   refreshCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Path:     "/",
			Name:     name,
			Value:    "",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
