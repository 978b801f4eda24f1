package middlewares

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"

	"github.com/mbolis/survey-desk/httpx"
	"github.com/mbolis/survey-desk/log"
)

// Admin checks for a bearer token carrying the 'admin' role, and attaches the
// admin session to the request.
func Admin(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), admin).Handler(next)
	}
}

func admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)

		isAdmin := false
		if rolesClaim, ok := claims["roles"]; ok {
			for _, role := range strings.Split(rolesClaim, ",") {
				if role == httpx.RoleAdmin {
					isAdmin = true
					break
				}
			}
		}

		if !isAdmin {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		session := httpx.Session{Username: claims["username"], Admin: true}
		next.ServeHTTP(w, r.WithContext(httpx.WithSession(r.Context(), session)))
	})
}

// CookieAuth lets browser pages reach bearer-protected handlers: the access
// token cookie becomes the Authorization header, and an expired access token
// is renewed from the refresh token cookie. Requests that cannot be
// authenticated are sent to the login page.
func CookieAuth(bearerServer *oauth.BearerServer) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := r.Cookie(httpx.AccessTokenCookie)
			if err != nil && !errors.Is(err, http.ErrNoCookie) {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if err == nil && token.Value != "" {
				r.Header.Set("authorization", "Bearer "+token.Value)
				buf := httpx.NewResponseBuffer()
				h.ServeHTTP(buf, r)
				if buf.Status() != http.StatusUnauthorized {
					buf.Flush(w)
					return
				}
			}

			goTo := r.RequestURI
			if r.Method != http.MethodGet {
				goTo = r.URL.Path
			}
			loginLocation := "/login?goto=" + url.QueryEscape(goTo)

			// access token was empty or unauthorized
			refreshToken, err := r.Cookie(httpx.RefreshTokenCookie)
			if err != nil || refreshToken.Value == "" {
				redirect(w, r, loginLocation)
				return
			}

			tokens, status, err := httpx.RequestTokens(bearerServer, httpx.RefreshGrant(refreshToken.Value))
			if err != nil {
				httpx.LogInternalError(w, "cookie_auth.refresh", err)
				return
			}
			if status != http.StatusOK {
				log.Debugf("cookie_auth.refresh: status %d", status)
				httpx.ClearTokenCookies(w)
				redirect(w, r, loginLocation)
				return
			}

			httpx.SetTokenCookies(w, tokens)
			r.Header.Set("authorization", "Bearer "+tokens.AccessToken)
			h.ServeHTTP(w, r)
		})
	}
}

func redirect(w http.ResponseWriter, r *http.Request, location string) {
	status := http.StatusTemporaryRedirect
	if r.Method != http.MethodGet {
		status = http.StatusSeeOther
	}
	http.Redirect(w, r, location, status)
}
