package routes

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/routes/middlewares"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkRequest validates a decoded request body, answering 400 with every
// violated constraint when it fails.
func checkRequest(w http.ResponseWriter, r *http.Request, code string, req any) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		httpx.LogInternalError(w, code, err)
		return false
	}
	problems := make([]string, len(verrs))
	for i, fe := range verrs {
		problems[i] = fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag())
	}
	httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel, code, "invalid request (%s)", strings.Join(problems, "; "))
	return false
}

func formID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
		return 0, false
	}
	return id, true
}

// ownedForm loads the form named in the URL, answering 404 when it does not
// exist and 401 when it belongs to someone else.
func ownedForm(app app.App, w http.ResponseWriter, r *http.Request, code string) (model.Form, bool) {
	id, ok := formID(w, r)
	if !ok {
		return model.Form{}, false
	}

	form, err := app.Forms.GetForm(r.Context(), id)
	if err != nil {
		httpx.LogStoreError(w, r, code, id, err)
		return form, false
	}

	if form.Owner != middlewares.Credential(r) {
		httpx.LogStatusMsg(w, r, http.StatusUnauthorized, log.DebugLevel, code+".owner", "Not authorized")
		return form, false
	}
	return form, true
}
