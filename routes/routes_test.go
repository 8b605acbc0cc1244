package routes

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/config"
	"github.com/mbolis/quick-forms/database"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/model"
	"github.com/mbolis/quick-forms/store"
	"github.com/mbolis/quick-forms/survey"
)

const testSecret = "test-secret"

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "routes.sqlite"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db)
	cfg := config.Config{TokenSecret: testSecret, TokenTTL: time.Minute}
	return Wire(app.App{
		Forms:        st,
		Responses:    st,
		Users:        st,
		BearerServer: httpx.NewBearerServer(st, cfg.TokenSecret, cfg.TokenTTL),
		Config:       cfg,
	})
}

func do(h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("content-type", "application/json")
	}
	if token != "" {
		req.Header.Set("authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func signUp(t *testing.T, h http.Handler, username string) httpx.Tokens {
	t.Helper()
	rec := do(h, http.MethodPost, "/api/register", `{"username":"`+username+`","password":"secret123"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", username, rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.SetBasicAuth(username, "secret123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", username, rec.Code, rec.Body.String())
	}

	var tokens httpx.Tokens
	decode(t, rec, &tokens)
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("login %s: tokens %+v", username, tokens)
	}
	return tokens
}

func newForm(t *testing.T, h http.Handler, token, update string) model.Form {
	t.Helper()
	rec := do(h, http.MethodPost, "/api/admin/forms", "", token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create form: %d %s", rec.Code, rec.Body.String())
	}
	var form model.Form
	decode(t, rec, &form)

	if update != "" {
		rec = do(h, http.MethodPut, "/api/admin/forms/"+itoa(form.ID), update, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("update form: %d %s", rec.Code, rec.Body.String())
		}
		decode(t, rec, &form)
	}
	return form
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

const feedbackSchema = `{
	"title": "Team \"Feedback\"",
	"description": "Tell us",
	"theme": "ocean",
	"questions": [
		{"id": "name", "type": "short", "title": "Name", "required": true},
		{"id": "color", "type": "mcq", "title": "Color", "options": ["Red", "Blue"], "required": true},
		{"id": "tags", "type": "checkbox", "title": "Tags", "options": ["A", "B"]},
		{"type": "paragraph", "title": "Notes"}
	]
}`

func TestAuth(t *testing.T) {
	h := newTestHandler(t)
	tokens := signUp(t, h, "ada")

	rec := do(h, http.MethodPost, "/api/register", `{"username":"ada","password":"secret123"}`, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register: %d", rec.Code)
	}
	rec = do(h, http.MethodPost, "/api/register", `{"username":"bob","password":"x"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("short password: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
	req.SetBasicAuth("ada", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: %d", rec.Code)
	}

	rec = do(h, http.MethodPost, "/api/login", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no credentials: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	req.Header.Set("authorization", "Refresh "+tokens.RefreshToken)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: %d %s", rec.Code, rec.Body.String())
	}
	var refreshed httpx.Tokens
	decode(t, rec, &refreshed)
	if refreshed.AccessToken == "" {
		t.Errorf("refresh tokens = %+v", refreshed)
	}

	if rec := do(h, http.MethodGet, "/api/admin/forms", "", refreshed.AccessToken); rec.Code != http.StatusOK {
		t.Errorf("refreshed token rejected: %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/admin/forms", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous admin access: %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/admin/forms", "", "garbage"); rec.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: %d", rec.Code)
	}
}

func TestFormWorkflow(t *testing.T) {
	h := newTestHandler(t)
	ada := signUp(t, h, "ada")
	bob := signUp(t, h, "bob")

	form := newForm(t, h, ada.AccessToken, feedbackSchema)
	if form.Title != `Team "Feedback"` || form.Theme != model.ThemeOcean || len(form.Questions) != 4 || form.Version != 2 {
		t.Fatalf("updated form = %+v", form)
	}
	notesID := form.Questions[3].ID
	if notesID == "" {
		t.Fatal("question id not assigned")
	}
	path := "/api/admin/forms/" + itoa(form.ID)

	// dashboard
	rec := do(h, http.MethodGet, "/api/admin/forms", "", ada.AccessToken)
	var list struct {
		Forms []model.FormListItem `json:"forms"`
	}
	decode(t, rec, &list)
	if len(list.Forms) != 1 || list.Forms[0].ResponseCount != 0 {
		t.Errorf("ada's forms = %+v", list.Forms)
	}
	rec = do(h, http.MethodGet, "/api/admin/forms", "", bob.AccessToken)
	decode(t, rec, &list)
	if len(list.Forms) != 0 {
		t.Errorf("bob's forms = %+v", list.Forms)
	}

	// respondents load the form twice
	for i := 0; i < 2; i++ {
		rec = do(h, http.MethodGet, "/api/forms/"+itoa(form.ID)+"?incrementView=true", "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("public get: %d", rec.Code)
		}
	}
	rec = do(h, http.MethodGet, "/api/forms/"+itoa(form.ID), "", "")
	var public model.Form
	decode(t, rec, &public)
	if public.Views != 2 || public.Owner != "" || len(public.Questions) != 4 {
		t.Errorf("public form = %+v", public)
	}

	// incomplete submission
	rec = do(h, http.MethodPost, "/api/responses",
		`{"formId": `+itoa(form.ID)+`, "answers": [{"questionId": "name", "answer": "  "}, {"questionId": "tags", "answer": ["A"]}]}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("incomplete submit: %d %s", rec.Code, rec.Body.String())
	}
	var body httpx.ErrorBody
	decode(t, rec, &body)
	if !reflect.DeepEqual(body.MissingFields, []string{"name", "color"}) {
		t.Errorf("missingFields = %v", body.MissingFields)
	}

	// complete submission
	rec = do(h, http.MethodPost, "/api/responses",
		`{"formId": `+itoa(form.ID)+`, "answers": [
			{"questionId": "name", "answer": "Ada"},
			{"questionId": "color", "answer": "Blue"},
			{"questionId": "tags", "answer": ["A", "B", "Z"]},
			{"questionId": "`+notesID+`", "answer": "He said \"hi\""},
			{"questionId": "ghost", "answer": "boo"}
		]}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}
	var created model.Response
	decode(t, rec, &created)
	if created.ID == 0 || created.FormID != form.ID || len(created.Answers) != 5 {
		t.Errorf("created = %+v", created)
	}

	// review
	rec = do(h, http.MethodGet, path+"/responses", "", ada.AccessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("review: %d %s", rec.Code, rec.Body.String())
	}
	var review struct {
		survey.Summary
		Responses []model.Response `json:"responses"`
	}
	decode(t, rec, &review)
	if review.Views != 2 || review.ResponseCount != 1 || review.CompletionRate != 50 || len(review.Responses) != 1 {
		t.Errorf("review = %+v", review)
	}
	wantColor := []survey.OptionCount{{Option: "Red", Count: 0}, {Option: "Blue", Count: 1}}
	if !reflect.DeepEqual(review.PerQuestion["color"].Options, wantColor) {
		t.Errorf("color = %+v", review.PerQuestion["color"])
	}
	if got := review.PerQuestion[notesID].Answers; !reflect.DeepEqual(got, []string{`He said "hi"`}) {
		t.Errorf("notes = %v", got)
	}
	if _, ok := review.PerQuestion["ghost"]; ok {
		t.Error("orphan answer aggregated")
	}

	// export
	rec = do(h, http.MethodGet, path+"/export", "", ada.AccessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("content-type"); ct != "text/csv; charset=utf-8" {
		t.Errorf("content-type = %q", ct)
	}
	if cd := rec.Header().Get("content-disposition"); cd != `attachment; filename="Team_Feedback_responses.csv"` {
		t.Errorf("content-disposition = %q", cd)
	}
	records, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 ||
		!reflect.DeepEqual(records[0], []string{"Submitted At", "Name", "Color", "Tags", "Notes"}) ||
		!reflect.DeepEqual(records[1][1:], []string{"Ada", "Blue", "A; B; Z", `He said "hi"`}) {
		t.Errorf("csv = %q", records)
	}

	// ownership
	if rec := do(h, http.MethodGet, path+"/responses", "", bob.AccessToken); rec.Code != http.StatusUnauthorized {
		t.Errorf("bob reviewing ada's form: %d", rec.Code)
	}
	if rec := do(h, http.MethodPut, path, `{"title":"mine"}`, bob.AccessToken); rec.Code != http.StatusUnauthorized {
		t.Errorf("bob editing ada's form: %d", rec.Code)
	}
	if rec := do(h, http.MethodDelete, path, "", bob.AccessToken); rec.Code != http.StatusUnauthorized {
		t.Errorf("bob deleting ada's form: %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/admin/forms/9999/responses", "", ada.AccessToken); rec.Code != http.StatusNotFound {
		t.Errorf("unknown form: %d", rec.Code)
	}

	// delete
	if rec := do(h, http.MethodDelete, path, "", ada.AccessToken); rec.Code != http.StatusOK {
		t.Errorf("delete: %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/forms/"+itoa(form.ID), "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("public get after delete: %d", rec.Code)
	}
}

func TestUpdateFormRejections(t *testing.T) {
	h := newTestHandler(t)
	ada := signUp(t, h, "ada")
	form := newForm(t, h, ada.AccessToken, "")
	path := "/api/admin/forms/" + itoa(form.ID)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"unknown type", `{"questions":[{"id":"a","type":"rating","title":"A"}]}`, http.StatusBadRequest},
		{"missing title", `{"questions":[{"id":"a","type":"short","title":""}]}`, http.StatusBadRequest},
		{"duplicate ids", `{"questions":[{"id":"a","type":"short","title":"A"},{"id":"a","type":"short","title":"B"}]}`, http.StatusBadRequest},
		{"duplicate options", `{"questions":[{"id":"a","type":"dropdown","title":"A","options":["x","x"]}]}`, http.StatusBadRequest},
		{"unknown theme", `{"theme":"neon"}`, http.StatusBadRequest},
		{"stale version", `{"version": 99, "title": "x"}`, http.StatusConflict},
		{"not json", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPut, path, tt.body, ada.AccessToken)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}

	// empty fields keep stored values
	rec := do(h, http.MethodPut, path, `{"version": 1, "published": false}`, ada.AccessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	var updated model.Form
	decode(t, rec, &updated)
	if updated.Title != "Untitled Form" || updated.Description != "Form Description" || updated.Published || updated.Version != 2 {
		t.Errorf("updated = %+v", updated)
	}
}

func TestUnpublishedForm(t *testing.T) {
	h := newTestHandler(t)
	ada := signUp(t, h, "ada")
	form := newForm(t, h, ada.AccessToken, `{"published": false, "questions":[{"id":"q","type":"short","title":"Q"}]}`)

	if rec := do(h, http.MethodGet, "/api/forms/"+itoa(form.ID)+"?incrementView=true", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("public get: %d", rec.Code)
	}
	rec := do(h, http.MethodPost, "/api/responses", `{"formId": `+itoa(form.ID)+`, "answers": []}`, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("submit: %d", rec.Code)
	}

	rec = do(h, http.MethodGet, "/api/admin/forms/"+itoa(form.ID), "", ada.AccessToken)
	var owned model.Form
	decode(t, rec, &owned)
	if owned.Views != 0 || owned.Owner != "ada" {
		t.Errorf("owner view = %+v", owned)
	}
}

func TestSubmitBadRequests(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"not json", `nope`, http.StatusBadRequest},
		{"missing formId", `{"answers": []}`, http.StatusBadRequest},
		{"answer without questionId", `{"formId": 1, "answers": [{"answer": "x"}]}`, http.StatusBadRequest},
		{"unknown form", `{"formId": 42, "answers": []}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(h, http.MethodPost, "/api/responses", tt.body, ""); rec.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestExport(t *testing.T) {
	h := newTestHandler(t)
	ada := signUp(t, h, "ada")
	form := newForm(t, h, ada.AccessToken, `{"questions":[{"id":"q","type":"short","title":"Q"}]}`)
	path := "/api/admin/forms/" + itoa(form.ID) + "/export"

	rec := do(h, http.MethodGet, path, "", ada.AccessToken)
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Errorf("empty export: %d %q", rec.Code, rec.Body.String())
	}

	rec = do(h, http.MethodPost, "/api/responses", `{"formId": `+itoa(form.ID)+`, "answers": [{"questionId": "q", "answer": "x"}]}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: %d", rec.Code)
	}

	// browser download with cookies only
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: ada.AccessToken})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), `"Submitted At","Q"`) {
		t.Errorf("cookie export: %d %q", rec.Code, rec.Body.String())
	}

	// expired access token, valid refresh token
	req = httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: "expired"})
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: ada.RefreshToken})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("refreshed export: %d %q", rec.Code, rec.Body.String())
	}
	cookies := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c.Value != ""
	}
	if !cookies["access_token"] || !cookies["refresh_token"] {
		t.Errorf("cookies not renewed: %v", cookies)
	}

	// no credentials at all
	if rec := do(h, http.MethodGet, path, "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous export: %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)
	rec := do(h, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("health: %d %q", rec.Code, rec.Body.String())
	}
}
