package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/hashicorp/go-multierror"
	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/routes/middlewares"
	"github.com/mbolis/quick-forms/survey"
)

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := app.Forms.ListForms(r.Context(), middlewares.Credential(r))
		if err != nil {
			httpx.LogInternalError(w, "db.list_forms", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := model.Form{
			Owner:       middlewares.Credential(r),
			Title:       "Untitled Form",
			Description: "Form Description",
			Theme:       model.ThemeDefault,
			Published:   true,
			Questions:   []model.Question{},
		}

		err := app.Forms.CreateForm(r.Context(), &form)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, form)
	}
}

func GetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r, "get_form")
		if !ok {
			return
		}

		render.JSON(w, r, form)
	}
}

type updateFormRequest struct {
	Version     int               `json:"version"`
	Title       string            `json:"title" validate:"max=200"`
	Description string            `json:"description" validate:"max=5000"`
	Theme       *string           `json:"theme" validate:"omitempty,oneof=default sunny ocean forest love dark"`
	Published   *bool             `json:"published"`
	Questions   *[]model.Question `json:"questions" validate:"omitempty,dive"`
}

// UpdateForm applies a schema edit. Empty title or description and a
// missing question list leave the stored values untouched.
func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := updateFormRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "invalid request body: %s", err)
			return
		}
		if !checkRequest(w, r, "update_form.validate", req) {
			return
		}

		form, ok := ownedForm(app, w, r, "update_form")
		if !ok {
			return
		}

		if req.Title != "" {
			form.Title = req.Title
		}
		if req.Description != "" {
			form.Description = req.Description
		}
		if req.Theme != nil {
			form.Theme, err = model.ParseTheme(*req.Theme)
			if err != nil {
				httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "update_form.theme", "%s", err)
				return
			}
		}
		if req.Published != nil {
			form.Published = *req.Published
		}
		if req.Questions != nil {
			form.Questions = *req.Questions
			survey.AssignIDs(form.Questions)
		}
		form.Version = req.Version

		err = survey.CheckSchema(form.Questions)
		var schemaErr *multierror.Error
		if errors.As(err, &schemaErr) {
			schemaErr.ErrorFormat = schemaProblems
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, "update_form.schema", "invalid questions (%s)", schemaErr)
			return
		}

		err = app.Forms.SaveForm(r.Context(), &form)
		if err != nil {
			httpx.LogStoreError(w, r, "db.update_form", form.ID, err)
			return
		}

		render.JSON(w, r, form)
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r, "delete_form")
		if !ok {
			return
		}

		err := app.Forms.DeleteForm(r.Context(), form.ID)
		if err != nil {
			httpx.LogStoreError(w, r, "db.delete_form", form.ID, err)
			return
		}

		render.JSON(w, r, map[string]any{
			"message": "Form removed",
		})
	}
}

func schemaProblems(errs []error) string {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}
