package app

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura-salon/sakura/internal/locale"
	"github.com/sakura-salon/sakura/internal/shared"
)

func TestBackTarget(t *testing.T) {
	cases := []struct {
		name    string
		referer string
		want    string
	}{
		{"same origin", "http://example.com/booking?service=x", "/booking?service=x"},
		{"relative", "/contacts", "/contacts"},
		{"foreign host", "http://evil.test/phish", "/"},
		{"missing", "", "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "http://example.com/auth/login", nil)
			if tc.referer != "" {
				r.Header.Set("Referer", tc.referer)
			}
			assert.Equal(t, tc.want, backTarget(r, "/"))
		})
	}
}

type pageStack struct {
	router   chi.Router
	sessions *shared.SessionManager
	csrf     *shared.CSRFManager
}

func newPageStack(t *testing.T, cfg *Config) *pageStack {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sessions := shared.NewSessionManager(client, "sakura_test", time.Hour, false)
	csrf := shared.NewCSRFManager("test-csrf")
	mw := MiddlewareConfig{Config: cfg, SessionManager: sessions, CSRFManager: csrf}

	r := chi.NewRouter()
	r.Use(PageMiddleware(mw)...)
	r.Get("/form", func(w http.ResponseWriter, r *http.Request) {
		token, err := csrf.EnsureToken(shared.SessionFrom(r.Context()))
		require.NoError(t, err)
		_, _ = w.Write([]byte(token))
	})
	r.Get("/flashes", func(w http.ResponseWriter, r *http.Request) {
		for _, f := range shared.SessionFrom(r.Context()).PopFlashes() {
			_, _ = w.Write([]byte(f.Message + "\n"))
		}
	})
	r.With(AuthRateLimit(mw)).Post("/form", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return &pageStack{router: r, sessions: sessions, csrf: csrf}
}

func (p *pageStack) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	p.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sakura_test" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func postForm(token string) *http.Request {
	form := url.Values{}
	if token != "" {
		form.Set(shared.CSRFFormField, token)
	}
	req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "http://example.com/form")
	return req
}

func TestPageMiddlewareSetsSecurityHeadersAndSession(t *testing.T) {
	stack := newPageStack(t, &Config{AppEnv: "development"})

	rec := stack.do(httptest.NewRequest(http.MethodGet, "/form", nil), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "form-action 'self'")
	assert.True(t, sessionCookie(t, rec).HttpOnly)
}

func TestCSRFFailureFlashesAndRedirects(t *testing.T) {
	stack := newPageStack(t, &Config{AppEnv: "development"})
	cookie := sessionCookie(t, stack.do(httptest.NewRequest(http.MethodGet, "/form", nil), nil))

	rec := stack.do(postForm("forged"), cookie)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/form", rec.Header().Get("Location"))

	rec = stack.do(httptest.NewRequest(http.MethodGet, "/flashes", nil), cookie)
	assert.Contains(t, rec.Body.String(), locale.T(locale.FormExpired))
}

func TestCSRFValidTokenPasses(t *testing.T) {
	stack := newPageStack(t, &Config{AppEnv: "development"})
	first := stack.do(httptest.NewRequest(http.MethodGet, "/form", nil), nil)
	cookie := sessionCookie(t, first)

	rec := stack.do(postForm(first.Body.String()), cookie)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthRateLimitSendsVisitorBack(t *testing.T) {
	stack := newPageStack(t, &Config{AppEnv: "development", AuthRateLimit: 2})
	first := stack.do(httptest.NewRequest(http.MethodGet, "/form", nil), nil)
	cookie := sessionCookie(t, first)
	token := first.Body.String()

	for range 2 {
		require.Equal(t, http.StatusNoContent, stack.do(postForm(token), cookie).Code)
	}
	rec := stack.do(postForm(token), cookie)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/form", rec.Header().Get("Location"))
	rec = stack.do(httptest.NewRequest(http.MethodGet, "/flashes", nil), cookie)
	assert.Contains(t, rec.Body.String(), locale.T(locale.TooManyRequests))
}
