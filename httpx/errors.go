package httpx

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/survey-desk/log"
)

// Logs err under code and answers 500 with the default text.
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.WithFields(log.Fields{"code": code}).Error(err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Logs the missing id at debug level and answers 404 with the default text.
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.WithFields(log.Fields{"code": code, "id": id}).Debug("not found")
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// Logs code at the given level and answers status with the default text.
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// Logs code and the formatted message at the given level, and answers
// status with that message.
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	http.Error(w, errMsg, status)
}

// ErrorBody is the JSON payload of a rejected API request.
type ErrorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// Logs code and msg at debug level and answers status with an ErrorBody.
func LogStatusJSON(w http.ResponseWriter, r *http.Request, status int, code string, msg string, details ...string) {
	log.WithFields(log.Fields{"code": code, "details": details}).Debug(msg)
	render.Status(r, status)
	render.JSON(w, r, ErrorBody{Error: msg, Details: details})
}
