package httpx

import (
	"bytes"
	"net/http"

	"github.com/goccy/go-json"
)

// ResponseBuffer captures a handler's response so the caller can inspect it
// before deciding whether to forward it.
type ResponseBuffer struct {
	status int
	header http.Header
	body   bytes.Buffer
}

func NewResponseBuffer() *ResponseBuffer {
	return &ResponseBuffer{}
}

// Status is the captured status code, 200 if the handler never set one.
func (resp *ResponseBuffer) Status() int {
	if resp.status == 0 {
		return http.StatusOK
	}
	return resp.status
}

func (resp *ResponseBuffer) Header() http.Header {
	if resp.header == nil {
		resp.header = http.Header{}
	}
	return resp.header
}

func (resp *ResponseBuffer) Body() []byte {
	return resp.body.Bytes()
}

func (resp *ResponseBuffer) Write(body []byte) (int, error) {
	return resp.body.Write(body)
}

func (resp *ResponseBuffer) WriteHeader(statusCode int) {
	if resp.status == 0 {
		resp.status = statusCode
	}
}

// DecodeJSON unmarshals the captured body into v.
func (resp *ResponseBuffer) DecodeJSON(v any) error {
	return json.Unmarshal(resp.body.Bytes(), v)
}

func (resp *ResponseBuffer) Flush(w http.ResponseWriter) error {
	header := w.Header()
	for key, value := range resp.header {
		header[key] = value
	}
	w.WriteHeader(resp.Status())
	_, err := w.Write(resp.body.Bytes())
	return err
}

// Tokens is the body the bearer server answers a successful grant with.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}
