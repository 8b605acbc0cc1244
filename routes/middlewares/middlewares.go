package middlewares

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
)

// Author middleware to check for the 'author' role in an OAuth token.
func Author(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), author).Handler(next)
	}
}

func author(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := r.Context().Value(oauth.ClaimsContext).(map[string]string)

		isAuthor := false
		if rolesClaim, ok := claims["roles"]; ok {
			for _, role := range strings.Split(rolesClaim, ",") {
				if role == httpx.AuthorRole {
					isAuthor = true
					break
				}
			}
		}

		if !isAuthor || Credential(r) == "" {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Credential is the username the request was authorized for.
func Credential(r *http.Request) string {
	credential, _ := r.Context().Value(oauth.CredentialContext).(string)
	return credential
}

// RequestLogger writes one structured access log line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		log.WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"remote":     r.RemoteAddr,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     m.Code,
			"bytes":      m.Written,
			"duration":   m.Duration,
		}).Info("http.request")
	})
}

// CookieAuth lets browser downloads authenticate with the access_token and
// refresh_token cookies, refreshing an expired access token on the fly.
// Requests that already carry an Authorization header pass through.
func CookieAuth(bearerServer *oauth.BearerServer) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet || r.Header.Get("authorization") != "" {
				h.ServeHTTP(w, r)
				return
			}

			token, err := r.Cookie("access_token")
			if err != nil && !errors.Is(err, http.ErrNoCookie) {
				httpx.LogInternalError(w, "cookie_auth.access_token", err)
				return
			}
			if err == nil {
				r.Header.Set("authorization", "Bearer "+token.Value)
				buf := httpx.NewResponseBuffer()
				h.ServeHTTP(buf, r)
				if buf.Status() != http.StatusUnauthorized {
					buf.Flush(w)
					return
				}
			}

			// token was empty or unauthorized
			refreshToken, err := r.Cookie("refresh_token")
			if err != nil {
				if !errors.Is(err, http.ErrNoCookie) {
					httpx.LogInternalError(w, "cookie_auth.refresh_token", err)
					return
				}
				httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "cookie_auth.no_token")
				return
			}

			// produce new token by calling bearer server
			body := url.Values{
				"grant_type":    {"refresh_token"},
				"refresh_token": {refreshToken.Value},
			}
			req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, "/", strings.NewReader(body.Encode()))
			if err != nil {
				httpx.LogInternalError(w, "cookie_auth.new_request", err)
				return
			}
			req.Header.Set("content-type", "application/x-www-form-urlencoded")
			req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

			resp := httpx.NewResponseBuffer()
			bearerServer.UserCredentials(resp, req)
			if resp.Status() == http.StatusUnauthorized {
				http.SetCookie(w, &http.Cookie{
					Path:     "/",
					Name:     "refresh_token",
					Value:    "",
					MaxAge:   -1,
					SameSite: http.SameSiteStrictMode,
				})
				httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "cookie_auth.refresh")
				return
			}
			if resp.Status() != http.StatusOK {
				httpx.LogStatus(w, resp.Status(), log.WarnLevel, "cookie_auth.refresh")
				return
			}

			var tokens httpx.Tokens
			if err = resp.DecodeJSON(&tokens); err != nil {
				httpx.LogInternalError(w, "cookie_auth.refresh.decode", err)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Path:     "/",
				Name:     "access_token",
				Value:    tokens.AccessToken,
				MaxAge:   int(tokens.ExpiresIn),
				HttpOnly: true,
				SameSite: http.SameSiteStrictMode,
			})
			http.SetCookie(w, &http.Cookie{
				Path:     "/",
				Name:     "refresh_token",
				Value:    tokens.RefreshToken,
				MaxAge:   60 * 60 * 24 * 365,
				HttpOnly: true,
				SameSite: http.SameSiteStrictMode,
			})

			r.Header.Set("authorization", "Bearer "+tokens.AccessToken)
			h.ServeHTTP(w, r)
		})
	}
}
