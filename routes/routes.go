package routes

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/mbolis/survey-desk/app"
	"github.com/mbolis/survey-desk/log"
	"github.com/mbolis/survey-desk/routes/middlewares"
	"github.com/mbolis/survey-desk/web"
)

var validate = validator.New()

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(
		middleware.RealIP,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.Logger, NoColor: true}),
		middleware.Recoverer,
	)

	submitLimit := middlewares.RateLimit(app.SubmitRate)

	root.Mount("/api", apiRouter(app, submitLimit))
	root.Mount("/static", http.StripPrefix("/static", web.Static()))

	// respondent pages
	root.Get("/", HomePage(app))
	root.Get(`/surveys/{id:^\d+$}`, SurveyPage(app))
	root.With(submitLimit).Post(`/surveys/{id:^\d+$}`, SubmitSurveyPage(app))

	root.Get("/login", LoginPage(app))
	root.Post("/login", LoginSubmit(app))
	root.With(middlewares.CookieAuth(app.BearerServer), middlewares.Admin(app.TokenSecret)).
		Post("/logout", Logout(app))

	root.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.CookieAuth(app.BearerServer), middlewares.Admin(app.TokenSecret))

		r.Get("/", AdminPage(app))
		r.Post("/surveys", CreateSurveyPage(app))
		r.Get("/responses", ResponsesPage(app))
		r.Get("/analytics", AnalyticsPage(app))
		r.Get(`/surveys/{id:^\d+$}/responses.csv`, ExportResponsesCSV(app))
		r.Get(`/surveys/{id:^\d+$}/responses.xlsx`, ExportResponsesXLSX(app))
	})

	return root
}

func apiRouter(app app.App, submitLimit func(http.Handler) http.Handler) http.Handler {
	api := chi.NewRouter()

	api.Get("/surveys", PublicListSurveys(app))
	api.Get(`/surveys/{id:^\d+$}`, PublicGetSurveyById(app))
	api.With(submitLimit).Post(`/surveys/{id:^\d+$}/submissions`, PublicSubmitSurvey(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))

		r.Post("/surveys", CreateSurvey(app))
		r.Get("/surveys", ListSurveys(app))
		r.Get(`/surveys/{id:^\d+$}/responses`, GetSurveyResponses(app))
		r.Get(`/surveys/{id:^\d+$}/responses.csv`, ExportResponsesCSV(app))
		r.Get(`/surveys/{id:^\d+$}/analytics`, GetSurveyAnalytics(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}

func surveyIdParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
