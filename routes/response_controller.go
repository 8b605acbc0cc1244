package routes

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/survey"
)

type reviewBody struct {
	survey.Summary
	Responses []model.Response `json:"responses"`
}

func GetFormResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r, "get_responses")
		if !ok {
			return
		}

		responses, err := app.Responses.ListResponses(r.Context(), form.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_responses", err)
			return
		}

		render.JSON(w, r, reviewBody{
			Summary:   survey.Aggregate(form, responses),
			Responses: responses,
		})
	}
}

// ExportResponses streams the responses as CSV. A form nobody answered
// yields 204 rather than a header-only file.
func ExportResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r, "export_responses")
		if !ok {
			return
		}

		responses, err := app.Responses.ListResponses(r.Context(), form.ID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_responses", err)
			return
		}
		if len(responses) == 0 {
			log.Debugf("export_responses: form %d has no responses", form.ID)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		w.Header().Set("content-type", "text/csv; charset=utf-8")
		w.Header().Set("content-disposition", fmt.Sprintf(`attachment; filename="%s"`, survey.ExportFilename(form.Title)))
		err = survey.WriteCSV(w, form, responses)
		if err != nil {
			// headers are gone already
			log.Warnf("export_responses.write: %s", err)
		}
	}
}
