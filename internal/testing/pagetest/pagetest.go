// Package pagetest builds the per-request plumbing that page handlers expect
// (session, auth context, boundary) around a stub salon API.
package pagetest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/auth"
	"github.com/sakura-salon/sakura/internal/platform/cache"
	"github.com/sakura-salon/sakura/internal/shared"
	"github.com/sakura-salon/sakura/internal/view"
)

// Paths of the stub API; handlers route on them.
const (
	AuthPath     = "/auth"
	BookingsPath = "/bookings"
	ReviewsPath  = "/reviews"
	FeedbackPath = "/feedback"
)

// Env is a wired page stack backed by miniredis and a stub API server.
type Env struct {
	Redis     *miniredis.Miniredis
	Client    *redis.Client
	API       *api.Client
	Sessions  *shared.SessionManager
	CSRF      *shared.CSRFManager
	Templates *view.Engine
	Provider  *auth.Provider
	Shell     *auth.Shell
	Boundary  *auth.Boundary
	Guard     *auth.Guard
}

// New starts the stub API with handler and wires the stack around it.
func New(t testing.TB, handler http.HandlerFunc) *Env {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	apiClient, err := api.NewClient(api.Config{
		BaseURL: srv.URL,
		Paths: map[api.Endpoint]string{
			api.EndpointAuth:     AuthPath,
			api.EndpointBookings: BookingsPath,
			api.EndpointReviews:  ReviewsPath,
			api.EndpointFeedback: FeedbackPath,
		},
		Timeout: 2 * time.Second,
	})
	require.NoError(t, err)

	templates, err := view.NewEngine()
	require.NoError(t, err)

	sessions := shared.NewSessionManager(client, "sakura_test", time.Hour, false)
	provider, err := auth.NewProvider(auth.ProviderConfig{
		Client:         apiClient,
		Sessions:       sessions,
		Identities:     cache.NewJSON(client, "identity", time.Minute),
		FingerprintKey: "test-key",
		CheckTimeout:   2 * time.Second,
	})
	require.NoError(t, err)

	csrf := shared.NewCSRFManager("test-csrf")
	shell := auth.NewShell(csrf, nil)
	return &Env{
		Redis:     mr,
		Client:    client,
		API:       apiClient,
		Sessions:  sessions,
		CSRF:      csrf,
		Templates: templates,
		Provider:  provider,
		Shell:     shell,
		Boundary:  auth.NewBoundary(nil),
		Guard:     auth.NewGuard(templates, shell, time.Second, nil),
	}
}

// Visit is one prepared request.
type Visit struct {
	Request *http.Request
	Session *shared.Session
	Auth    *auth.Context
	env     *Env
}

// Visit prepares a request. A non-empty token is stored in the session
// together with user before the identity check starts, as if the visitor
// had signed in earlier. form, when non-nil, becomes a urlencoded body.
func (e *Env) Visit(t testing.TB, method, target string, form url.Values, token string, user *api.User) *Visit {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	sess, err := e.Sessions.Load(context.Background(), req)
	require.NoError(t, err)
	if token != "" {
		require.NoError(t, auth.NewStore(sess).Set(token, user))
	}
	ac := e.Provider.NewContext(sess, req.RemoteAddr)
	ctx := auth.WithContext(shared.WithSession(req.Context(), sess), ac)
	ac.Start(ctx)
	return &Visit{Request: req.WithContext(ctx), Session: sess, Auth: ac, env: e}
}

// Serve runs h behind the expiry boundary, the way the router mounts pages.
func (v *Visit) Serve(h http.Handler) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	v.env.Boundary.Middleware(h).ServeHTTP(rec, v.Request)
	return rec
}

// Flashes drains the notices queued during the visit.
func (v *Visit) Flashes() []shared.FlashMessage {
	return v.Session.PopFlashes()
}

// Token returns the token left in the session.
func (v *Visit) Token() string {
	return auth.NewStore(v.Session).Token()
}

// JSON writes body as a JSON response.
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Client is a signed-in client account.
func Client() *api.User {
	return &api.User{ID: 7, Email: "anna@example.com", FullName: "Анна Петрова", Phone: "+79990000000", Role: api.RoleClient}
}

// Admin is a signed-in admin account.
func Admin() *api.User {
	return &api.User{ID: 1, Email: "admin@sakura.ru", FullName: "Администратор", Role: api.RoleAdmin}
}

// CurrentUser answers the identity check for the given token map. Unknown
// tokens get a 401.
func CurrentUser(w http.ResponseWriter, r *http.Request, users map[string]*api.User) {
	user, ok := users[r.Header.Get(api.SessionHeader)]
	if !ok {
		JSON(w, http.StatusUnauthorized, map[string]string{"error": "Требуется авторизация"})
		return
	}
	JSON(w, http.StatusOK, map[string]any{"user": user})
}
