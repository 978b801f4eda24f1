package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/survey-desk/app"
	"github.com/mbolis/survey-desk/httpx"
	"github.com/mbolis/survey-desk/log"
	"github.com/mbolis/survey-desk/model"
	"github.com/mbolis/survey-desk/store"
	"github.com/mbolis/survey-desk/survey"
)

type SubmitRequest struct {
	Respondent string           `json:"respondent_name"`
	Answers    map[int64]string `json:"answers"`
}

func PublicListSurveys(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveys, err := app.ListSurveys(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_surveys", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"surveys": surveys,
		})
	}
}

func PublicGetSurveyById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := surveyIdParam(r)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		sv, err := app.GetSurvey(r.Context(), surveyId)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "get_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		render.JSON(w, r, sv)
	}
}

func PublicSubmitSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		surveyId, err := surveyIdParam(r)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		req := SubmitRequest{}
		err = render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		sv, err := app.GetSurvey(r.Context(), surveyId)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, "get_survey", surveyId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_survey", err)
			return
		}

		sub, ok := submit(w, r, app, sv, req.Respondent, req.Answers)
		if !ok {
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":        sub.ID,
			"responses": len(sub.Responses),
		})
	}
}

// submit validates and stores one set of answers. On failure it has already
// written the JSON error response.
func submit(w http.ResponseWriter, r *http.Request, app app.App, sv model.Survey, respondent string, answers map[int64]string) (model.Submission, bool) {
	sub, err := survey.PrepareSubmission(sv, respondent, answers)
	switch {
	case errors.Is(err, survey.ErrNoQuestions):
		httpx.LogStatusJSON(w, r, http.StatusUnprocessableEntity, "submission.no_questions", "This survey has no questions yet.")
		return sub, false
	case err != nil:
		httpx.LogStatusJSON(w, r, http.StatusUnprocessableEntity, "submission.incomplete", survey.IncompleteMessage, survey.MissingAnswers(err)...)
		return sub, false
	}

	err = app.Submit(r.Context(), &sub)
	if err != nil {
		httpx.LogInternalError(w, "db.insert_submission", err)
		return sub, false
	}

	log.WithFields(log.Fields{"survey": sv.ID, "submission": sub.ID, "answers": len(sub.Responses)}).Info("submission stored")
	return sub, true
}
