package routes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/mbolis/survey-desk/app"
	"github.com/mbolis/survey-desk/export"
	"github.com/mbolis/survey-desk/httpx"
	"github.com/mbolis/survey-desk/log"
	"github.com/mbolis/survey-desk/model"
	"github.com/mbolis/survey-desk/store"
	"github.com/mbolis/survey-desk/survey"
)

type CreateSurveyRequest struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Questions   []survey.QuestionInput `json:"questions" validate:"min=1,max=20,dive"`
}

func CreateSurvey(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := CreateSurveyRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = validate.Struct(req)
		if err != nil {
			httpx.LogStatusJSON(w, r, http.StatusBadRequest, "request.validate", "invalid survey", validationDetails(err)...)
			return
		}

		sv, skipped, err := survey.NewSurvey(req.Title, req.Description, req.Questions)
		if err != nil {
			httpx.LogStatusJSON(w, r, http.StatusBadRequest, "request.validate.title", "Survey title is required.")
			return
		}

		err = app.CreateSurvey(r.Context(), &sv)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_survey", err)
			return
		}
		logCreated(sv, skipped)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id":      sv.ID,
			"skipped": skipped,
		})
	}
}

func ListSurveys(app app.App) http.HandlerFunc {
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

func GetSurveyResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sv, rows, ok := loadResponses(w, r, app)
		if !ok {
			return
		}

		render.JSON(w, r, map[string]any{
			"survey":    sv,
			"responses": rows,
		})
	}
}

func GetSurveyAnalytics(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sv, rows, ok := loadResponses(w, r, app)
		if !ok {
			return
		}

		render.JSON(w, r, survey.Summarize(sv, rows))
	}
}

func ExportResponsesCSV(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sv, rows, ok := loadResponses(w, r, app)
		if !ok {
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.CSVFilename(sv.ID)))
		err := export.WriteCSV(w, rows)
		if err != nil {
			log.Errorf("export.csv: %s", err)
		}
	}
}

func ExportResponsesXLSX(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sv, rows, ok := loadResponses(w, r, app)
		if !ok {
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.XLSXFilename(sv.ID)))
		err := export.WriteXLSX(w, rows)
		if err != nil {
			log.Errorf("export.xlsx: %s", err)
		}
	}
}

// loadResponses fetches the survey named by the URL and its responses. On
// failure it has already written the error response.
func loadResponses(w http.ResponseWriter, r *http.Request, app app.App) (sv model.Survey, rows []model.ResponseRow, ok bool) {
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

	rows, err = app.ListResponses(r.Context(), surveyId)
	if err != nil {
		httpx.LogInternalError(w, "db.get_responses", err)
		return
	}
	return sv, rows, true
}

func logCreated(sv model.Survey, skipped int) {
	entry := log.WithFields(log.Fields{"survey": sv.ID, "questions": len(sv.Questions)})
	if skipped > 0 {
		entry.WithField("skipped", skipped).Warn("survey created, blank question slots skipped")
		return
	}
	entry.Info("survey created")
}

func validationDetails(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	details := make([]string, len(verrs))
	for i, fe := range verrs {
		details[i] = fmt.Sprintf("%s: failed on '%s'", fe.Namespace(), fe.Tag())
	}
	return details
}
