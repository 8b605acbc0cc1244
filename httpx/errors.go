package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/store"
	"github.com/mbolis/quick-forms/survey"
)

// ErrorBody is the JSON shape of every error the API reports.
type ErrorBody struct {
	Message       string   `json:"message"`
	MissingFields []string `json:"missingFields,omitempty"`
}

// Will send a JSON error body with the given status
func JSONError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorBody{Message: msg})
}

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %+v", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send an HTTP response with status 404 and a JSON body
func LogNotFound(w http.ResponseWriter, r *http.Request, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	JSONError(w, r, http.StatusNotFound, "Form not found")
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted JSON message
func LogStatusMsg(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	JSONError(w, r, status, errMsg)
}

// Will log a debug message, and send an HTTP 400 listing every unanswered required question
func LogValidation(w http.ResponseWriter, r *http.Request, code string, verr *survey.ValidationError) {
	log.Debugf("%s: %s", code, verr)
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorBody{
		Message:       "Please answer all required questions",
		MissingFields: verr.MissingFields,
	})
}

// Will map a store error to its HTTP status: 404, 409 or 500
func LogStoreError(w http.ResponseWriter, r *http.Request, code string, id any, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		LogNotFound(w, r, code, id)
	case errors.Is(err, store.ErrConflict):
		LogStatusMsg(w, r, http.StatusConflict, log.DebugLevel, code, "form %v was modified concurrently", id)
	default:
		LogInternalError(w, code, err)
	}
}
