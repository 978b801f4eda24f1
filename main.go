package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mbolis/survey-desk/app"
	"github.com/mbolis/survey-desk/config"
	"github.com/mbolis/survey-desk/database"
	"github.com/mbolis/survey-desk/httpx"
	"github.com/mbolis/survey-desk/log"
	"github.com/mbolis/survey-desk/routes"
	"github.com/mbolis/survey-desk/store"
	"github.com/mbolis/survey-desk/web"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("main.dotenv: %s", err)
	}

	cfg, err := config.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer db.Close()

	st := store.New(db)
	seeded, err := st.SeedAdmin(context.Background(), cfg.AdminUser, cfg.AdminPassword)
	if err != nil {
		log.Fatal("main.db.seed_admin:", err)
	}
	if seeded {
		log.WithFields(log.Fields{"username": cfg.AdminUser}).Info("admin account created")
		if cfg.UsesDefaultAdmin() {
			log.Warn("admin account uses the default password, set SURVEY_ADMIN_PASSWORD before first start")
		}
	}

	pages, err := web.NewRenderer()
	if err != nil {
		log.Fatal("main.web.templates:", err)
	}

	app := app.App{
		Store:        st,
		BearerServer: httpx.NewBearerServer(st, cfg),
		Config:       cfg,
		Pages:        pages,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("main.server.shutdown: %s", err)
		}
	}()

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
