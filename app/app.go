package app

import (
	"github.com/go-chi/oauth"

	"github.com/mbolis/survey-desk/config"
	"github.com/mbolis/survey-desk/store"
	"github.com/mbolis/survey-desk/web"
)

// App carries the long-lived dependencies shared by every handler.
type App struct {
	*store.Store
	*oauth.BearerServer
	config.Config
	Pages *web.Renderer
}
