package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/survey"
)

// PublicGetForm serves a published form to respondents. With
// ?incrementView=true the view counter is bumped atomically and the
// updated form is returned.
func PublicGetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := formID(w, r)
		if !ok {
			return
		}

		form, err := app.Forms.GetForm(r.Context(), id)
		if err != nil {
			httpx.LogStoreError(w, r, "db.get_form", id, err)
			return
		}
		if !form.Published {
			httpx.LogNotFound(w, r, "get_form.unpublished", id)
			return
		}

		if r.URL.Query().Get("incrementView") == "true" {
			form, err = app.Forms.IncrementViews(r.Context(), id)
			if err != nil {
				httpx.LogStoreError(w, r, "db.increment_views", id, err)
				return
			}
		}

		form.Owner = ""
		render.JSON(w, r, form)
	}
}

type submitRequest struct {
	FormID  int            `json:"formId" validate:"required,gt=0"`
	Answers []model.Answer `json:"answers" validate:"dive"`
}

func PublicSubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := submitRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "invalid request body: %s", err)
			return
		}
		if !checkRequest(w, r, "submit.validate", req) {
			return
		}

		form, err := app.Forms.GetForm(r.Context(), req.FormID)
		if err != nil {
			httpx.LogStoreError(w, r, "db.get_form", req.FormID, err)
			return
		}
		if !form.Published {
			httpx.LogNotFound(w, r, "submit.unpublished", req.FormID)
			return
		}

		err = survey.CheckSubmission(form, req.Answers)
		var verr *survey.ValidationError
		if errors.As(err, &verr) {
			httpx.LogValidation(w, r, "submit.missing_fields", verr)
			return
		}

		resp, err := app.Responses.CreateResponse(r.Context(), form.ID, req.Answers)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_response", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp)
	}
}
