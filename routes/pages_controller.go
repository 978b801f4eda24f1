package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/mbolis/survey-desk/app"
	"github.com/mbolis/survey-desk/httpx"
	"github.com/mbolis/survey-desk/log"
	"github.com/mbolis/survey-desk/model"
	"github.com/mbolis/survey-desk/store"
	"github.com/mbolis/survey-desk/survey"
	"github.com/mbolis/survey-desk/web"
)

func HomePage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveys, err := app.ListSurveys(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_surveys", err)
			return
		}

		page := web.Page{Title: "Surveys", Data: surveys}
		if len(surveys) == 0 {
			page.Info = "No surveys available yet. Please ask admin to create one."
		}
		app.Pages.Render(w, r, http.StatusOK, "home.html", page)
	}
}

type surveyForm struct {
	Survey     model.Survey
	Respondent string
	Answers    map[int64]string
}

func SurveyPage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sv, ok := loadSurvey(w, r, app)
		if !ok {
			return
		}

		page := web.Page{
			Title: sv.Title,
			Data:  surveyForm{Survey: sv, Answers: defaultAnswers(sv)},
		}
		if len(sv.Questions) == 0 {
			page.Info = "This survey has no questions yet."
		}
		app.Pages.Render(w, r, http.StatusOK, "survey.html", page)
	}
}

func SubmitSurveyPage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sv, ok := loadSurvey(w, r, app)
		if !ok {
			return
		}
		if err := r.ParseForm(); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_form")
			return
		}

		in := surveyForm{
			Survey:     sv,
			Respondent: r.PostForm.Get("respondent"),
			Answers:    map[int64]string{},
		}
		for _, q := range sv.Questions {
			in.Answers[q.ID] = r.PostForm.Get(fmt.Sprintf("q%d", q.ID))
		}

		sub, err := survey.PrepareSubmission(sv, in.Respondent, in.Answers)
		switch {
		case errors.Is(err, survey.ErrNoQuestions):
			app.Pages.Render(w, r, http.StatusUnprocessableEntity, "survey.html", web.Page{
				Title: sv.Title,
				Info:  "This survey has no questions yet.",
				Data:  in,
			})
			return
		case err != nil:
			log.WithFields(log.Fields{"survey": sv.ID, "missing": survey.MissingAnswers(err)}).Debug("submission.incomplete")
			app.Pages.Render(w, r, http.StatusUnprocessableEntity, "survey.html", web.Page{
				Title: sv.Title,
				Error: survey.IncompleteMessage,
				Data:  in,
			})
			return
		}

		err = app.Submit(r.Context(), &sub)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_submission", err)
			return
		}
		log.WithFields(log.Fields{"survey": sv.ID, "submission": sub.ID, "answers": len(sub.Responses)}).Info("submission stored")

		app.Pages.Render(w, r, http.StatusOK, "survey.html", web.Page{
			Title:   sv.Title,
			Success: "Thank you! Your responses have been submitted.",
			Data:    surveyForm{Survey: sv, Answers: defaultAnswers(sv)},
		})
	}
}

type authoringForm struct {
	Count       int                    `form:"count"`
	Title       string                 `form:"title"`
	Description string                 `form:"description"`
	Slots       []survey.QuestionInput `form:"questions"`
	Types       []model.QuestionType   `form:"-"`
}

func AdminPage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count := survey.DefaultQuestions
		if n, err := strconv.Atoi(r.URL.Query().Get("questions")); err == nil {
			count = n
		}

		app.Pages.Render(w, r, http.StatusOK, "admin.html", web.Page{
			Title: "Create survey",
			Data:  newAuthoringForm(count),
		})
	}
}

func CreateSurveyPage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in := authoringForm{}
		if err := decodeForm(r, &in); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_form")
			return
		}
		in.Types = model.QuestionTypes
		if len(in.Slots) > survey.MaxQuestions {
			in.Slots = in.Slots[:survey.MaxQuestions]
		}
		in.Count = len(in.Slots)

		sv, skipped, err := survey.NewSurvey(in.Title, in.Description, in.Slots)
		if err != nil {
			app.Pages.Render(w, r, http.StatusUnprocessableEntity, "admin.html", web.Page{
				Title: "Create survey",
				Error: "Survey title is required.",
				Data:  in,
			})
			return
		}

		err = app.CreateSurvey(r.Context(), &sv)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_survey", err)
			return
		}
		logCreated(sv, skipped)

		msg := fmt.Sprintf("Survey created successfully! (Survey ID: %d)", sv.ID)
		if skipped > 0 {
			msg += fmt.Sprintf(" %d blank question(s) were skipped.", skipped)
		}
		app.Pages.Render(w, r, http.StatusOK, "admin.html", web.Page{
			Title:   "Create survey",
			Success: msg,
			Data:    newAuthoringForm(in.Count),
		})
	}
}

type responsesView struct {
	Surveys  []model.Survey
	Selected model.Survey
	Rows     []model.ResponseRow
}

func ResponsesPage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := selectSurvey(w, r, app)
		if !ok {
			return
		}

		page := web.Page{Title: "Responses", Data: view}
		switch {
		case len(view.Surveys) == 0:
			page.Info = "No surveys available."
		case len(view.Rows) == 0:
			page.Info = "No responses yet for this survey."
		}
		app.Pages.Render(w, r, http.StatusOK, "responses.html", page)
	}
}

type analyticsView struct {
	Surveys  []model.Survey
	Selected model.Survey
	Report   survey.Report
}

func AnalyticsPage(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, ok := selectSurvey(w, r, app)
		if !ok {
			return
		}

		data := analyticsView{Surveys: view.Surveys, Selected: view.Selected}
		page := web.Page{Title: "Analytics", Data: &data}
		switch {
		case len(view.Surveys) == 0:
			page.Info = "No surveys available."
		case len(view.Rows) == 0:
			page.Info = "No responses yet to analyze."
		default:
			data.Report = survey.Summarize(view.Selected, view.Rows)
		}
		app.Pages.Render(w, r, http.StatusOK, "analytics.html", page)
	}
}

// selectSurvey resolves the ?survey= choice of the admin views, defaulting to
// the newest survey. On failure it has already written the error response.
func selectSurvey(w http.ResponseWriter, r *http.Request, app app.App) (view responsesView, ok bool) {
	surveys, err := app.ListSurveys(r.Context())
	if err != nil {
		httpx.LogInternalError(w, "db.get_surveys", err)
		return
	}
	view.Surveys = surveys
	if len(surveys) == 0 {
		return view, true
	}

	surveyId := surveys[0].ID
	if raw := r.URL.Query().Get("survey"); raw != "" {
		surveyId, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.get_query_param.survey", "invalid survey id %q", raw)
			return
		}
	}

	view.Selected, err = app.GetSurvey(r.Context(), surveyId)
	if errors.Is(err, store.ErrNotFound) {
		httpx.LogNotFound(w, "get_survey", surveyId)
		return
	}
	if err != nil {
		httpx.LogInternalError(w, "db.get_survey", err)
		return
	}

	view.Rows, err = app.ListResponses(r.Context(), surveyId)
	if err != nil {
		httpx.LogInternalError(w, "db.get_responses", err)
		return
	}
	return view, true
}

func loadSurvey(w http.ResponseWriter, r *http.Request, app app.App) (sv model.Survey, ok bool) {
	surveyId, err := surveyIdParam(r)
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
		return
	}

	sv, err = app.GetSurvey(r.Context(), surveyId)
	if errors.Is(err, store.ErrNotFound) {
		httpx.LogNotFound(w, "get_survey", surveyId)
		return
	}
	if err != nil {
		httpx.LogInternalError(w, "db.get_survey", err)
		return
	}
	return sv, true
}

// defaultAnswers preselects the first option of choice questions and the
// middle of the rating scale.
func defaultAnswers(sv model.Survey) map[int64]string {
	answers := map[int64]string{}
	for _, q := range sv.Questions {
		switch q.Type {
		case model.TypeChoice:
			answers[q.ID] = survey.ParseOptions(q.Options)[0]
		case model.TypeRating:
			answers[q.ID] = "3"
		}
	}
	return answers
}

func newAuthoringForm(count int) authoringForm {
	count = survey.ClampQuestionCount(count)
	slots := make([]survey.QuestionInput, count)
	for i := range slots {
		slots[i] = survey.QuestionInput{Type: model.TypeText, Options: survey.DefaultChoiceOptions}
	}
	return authoringForm{
		Count: count,
		Slots: slots,
		Types: model.QuestionTypes,
	}
}
