package routes

import (
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.RequestID, middleware.RealIP, middlewares.RequestLogger, middleware.Recoverer)

	root.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	api.Get(`/forms/{id:\d+}`, PublicGetForm(app))
	api.Post("/responses", PublicSubmitResponse(app))

	api.Route("/admin", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middlewares.Author(app.TokenSecret))

			// CRUD form
			r.Post("/forms", CreateForm(app))
			r.Get("/forms", ListForms(app))
			r.Get(`/forms/{id:\d+}`, GetForm(app))
			r.Put(`/forms/{id:\d+}`, UpdateForm(app))
			r.Delete(`/forms/{id:\d+}`, DeleteForm(app))

			r.Get(`/forms/{id:\d+}/responses`, GetFormResponses(app))
		})

		// downloaded by the browser, so cookies are accepted too
		r.With(middlewares.CookieAuth(app.BearerServer), middlewares.Author(app.TokenSecret)).
			Get(`/forms/{id:\d+}/export`, ExportResponses(app))
	})

	api.Post("/register", Register(app))
	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}
