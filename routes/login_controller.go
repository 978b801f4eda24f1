package routes

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/ajg/form"
	"github.com/go-chi/render"

	"github.com/mbolis/survey-desk/app"
	"github.com/mbolis/survey-desk/httpx"
	"github.com/mbolis/survey-desk/log"
	"github.com/mbolis/survey-desk/web"
)

var reRefresh = regexp.MustCompile(`(?i)^refresh\s+(.*)`)

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		tokens, status, err := httpx.RequestTokens(app.BearerServer, httpx.PasswordGrant(user, pass))
		if err != nil {
			httpx.LogInternalError(w, "login.tokens", err)
			return
		}
		if status != http.StatusOK {
			httpx.LogStatus(w, status, log.DebugLevel, "login.credentials")
			return
		}

		render.JSON(w, r, tokens)
	}
}

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := reRefresh.FindStringSubmatch(r.Header.Get("authorization"))
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}

		tokens, status, err := httpx.RequestTokens(app.BearerServer, httpx.RefreshGrant(match[1]))
		if err != nil {
			httpx.LogInternalError(w, "refresh.tokens", err)
			return
		}
		if status != http.StatusOK {
			httpx.LogStatus(w, status, log.DebugLevel, "refresh.denied")
			return
		}

		render.JSON(w, r, tokens)
	}
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	GoTo     string `form:"goto"`
}

func LoginPage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app.Pages.Render(w, r, http.StatusOK, "login.html", web.Page{
			Title: "Admin login",
			Data:  loginForm{Username: app.AdminUser, GoTo: r.URL.Query().Get("goto")},
		})
	}
}

func LoginSubmit(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := loginForm{}
		if err := decodeForm(r, &in); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_form")
			return
		}

		tokens, status, err := httpx.RequestTokens(app.BearerServer, httpx.PasswordGrant(in.Username, in.Password))
		if err != nil {
			httpx.LogInternalError(w, "login.tokens", err)
			return
		}
		if status != http.StatusOK {
			log.Debugf("login.credentials: rejected %q", in.Username)
			in.Password = ""
			app.Pages.Render(w, r, http.StatusUnauthorized, "login.html", web.Page{
				Title: "Admin login",
				Error: "Invalid credentials.",
				Data:  in,
			})
			return
		}

		log.WithFields(log.Fields{"username": in.Username}).Info("admin logged in")
		httpx.SetTokenCookies(w, tokens)
		http.Redirect(w, r, safeGoTo(in.GoTo), http.StatusSeeOther)
	}
}

// Logout revokes the refresh tokens of the signed-in admin before dropping
// the cookies, so a copied refresh cookie stops working too.
func Logout(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := httpx.SessionFrom(r.Context())
		revoked, err := app.RevokeTokens(r.Context(), session.Username)
		if err != nil {
			httpx.LogInternalError(w, "logout.revoke_tokens", err)
			return
		}
		log.WithFields(log.Fields{"username": session.Username, "revoked": revoked}).Info("admin logged out")

		httpx.ClearTokenCookies(w)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// safeGoTo keeps post-login redirects on this site.
func safeGoTo(goTo string) string {
	if !strings.HasPrefix(goTo, "/") || strings.HasPrefix(goTo, "//") || strings.HasPrefix(goTo, "/\\") {
		return "/admin"
	}
	return goTo
}

// decodeForm fills dst from the url-encoded body of r.
func decodeForm(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	d := form.NewDecoder(nil)
	d.IgnoreUnknownKeys(true)
	return d.DecodeValues(dst, r.PostForm)
}
