package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type recordedCall struct {
	endpoint string
	method   string
	status   int
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (o *recordingObserver) ObserveAPICall(endpoint, method string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, recordedCall{endpoint: endpoint, method: method, status: status})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recordingObserver) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	observer := &recordingObserver{}
	client, err := NewClient(Config{
		BaseURL: srv.URL,
		Paths: map[Endpoint]string{
			EndpointAuth:     "auth-fn",
			EndpointBookings: "bookings-fn",
			EndpointReviews:  "reviews-fn",
			EndpointFeedback: "feedback-fn",
		},
		Timeout:  time.Second,
		Observer: observer,
	})
	require.NoError(t, err)
	return client, observer
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestNewClientRequiresEveryPath(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "https://api.example.test", Paths: map[Endpoint]string{EndpointAuth: "a"}})
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "not a url", Paths: map[Endpoint]string{}})
	assert.Error(t, err)
}

func TestTokenAttachedEvenWhenAuthNotRequired(t *testing.T) {
	var gotHeader, gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get(SessionHeader)
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "feedback_id": 9})
	})

	out, err := client.As(staticToken("abc")).CreateFeedback(context.Background(), FeedbackInput{Name: "Анна", Phone: "+7", Message: "Привет"})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, int64(9), out.FeedbackID)
	assert.Equal(t, "abc", gotHeader)
	assert.Equal(t, "/feedback-fn", gotPath)
}

func TestNoTokenHeaderWithoutToken(t *testing.T) {
	seen := true
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, seen = r.Header[http.CanonicalHeaderKey(SessionHeader)]
		writeJSON(w, http.StatusOK, map[string]any{"reviews": []any{}})
	})

	_, err := client.As(staticToken("")).ListReviews(context.Background())
	require.NoError(t, err)
	assert.False(t, seen)

	_, err = client.As(nil).ListReviews(context.Background())
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestLoginSendsActionAndCredentialsOnly(t *testing.T) {
	var body map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, map[string]any{
			"success":       true,
			"session_token": "abc",
			"user":          map[string]any{"id": 1, "full_name": "Анна", "role": "client"},
		})
	})

	out, err := client.As(nil).Login(context.Background(), "anna@example.test", "secret")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"action": "login", "email": "anna@example.test", "password": "secret"}, body)
	assert.Equal(t, "abc", out.SessionToken)
	require.NotNil(t, out.User)
	assert.Equal(t, RoleClient, out.User.Role)
}

func TestUnauthorizedOnAuthRequiredCallIsTyped(t *testing.T) {
	client, observer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Сессия истекла"})
	})

	_, err := client.As(staticToken("stale")).ListBookings(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.True(t, IsUnauthorized(err))

	var typed *UnauthorizedError
	require.True(t, errors.As(err, &typed))
	assert.Equal(t, EndpointBookings, typed.Endpoint)
	assert.Equal(t, "Сессия истекла", typed.Message)

	require.Len(t, observer.calls, 1)
	assert.Equal(t, recordedCall{endpoint: "bookings", method: http.MethodGet, status: http.StatusUnauthorized}, observer.calls[0])
}

func TestUnauthorizedOnPublicCallIsPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Неверный email или пароль"})
	})

	out, err := client.As(nil).Login(context.Background(), "a@b.c", "wrong")
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, "Неверный email или пароль", out.Error)
}

func TestOtherFailuresDecodeAsPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "Доступ запрещен"})
	})

	out, err := client.As(staticToken("abc")).ListFeedback(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Доступ запрещен", out.Error)

	listErr := out.Err()
	require.Error(t, listErr)
	assert.True(t, errors.Is(listErr, ErrRejected))
	msg, ok := RejectionMessage(listErr)
	assert.True(t, ok)
	assert.Equal(t, "Доступ запрещен", msg)
}

func TestMalformedJSONIsDecodeError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := client.As(nil).ListReviews(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
	assert.True(t, IsTransient(err))
}

func TestNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	observer := &recordingObserver{}
	client, err := NewClient(Config{
		BaseURL:  base,
		Paths:    map[Endpoint]string{EndpointAuth: "a", EndpointBookings: "b", EndpointReviews: "r", EndpointFeedback: "f"},
		Timeout:  time.Second,
		Observer: observer,
	})
	require.NoError(t, err)

	_, err = client.As(nil).Login(context.Background(), "a@b.c", "pw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	require.Len(t, observer.calls, 1)
	assert.Equal(t, 0, observer.calls[0].status)
}

func TestCurrentUserDecodesTaggedIdentity(t *testing.T) {
	responses := []any{
		map[string]any{"user": map[string]any{"id": 7, "email": "admin@sakura.test", "full_name": "Админ", "role": "admin"}},
		map[string]any{"error": "Сессия истекла"},
	}
	var n int
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		writeJSON(w, http.StatusOK, responses[n])
		n++
	})
	caller := client.As(staticToken("abc"))

	identity, err := caller.CurrentUser(context.Background())
	require.NoError(t, err)
	require.True(t, identity.Authenticated())
	assert.True(t, identity.User.IsAdmin())

	identity, err = caller.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.False(t, identity.Authenticated())
	assert.Equal(t, "Сессия истекла", identity.Message)
}

func TestUpdatesSendIDInBody(t *testing.T) {
	var body map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	caller := client.As(staticToken("abc"))

	out, err := caller.UpdateBookingStatus(context.Background(), 12, BookingCancelled)
	require.NoError(t, err)
	assert.NoError(t, out.Err())
	assert.Equal(t, map[string]any{"id": float64(12), "status": "cancelled"}, body)

	_, err = caller.ApproveReview(context.Background(), 3, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": float64(3), "approved": true}, body)

	_, err = caller.MarkFeedbackRead(context.Background(), 4, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": float64(4), "is_read": false}, body)
}

func TestBookingListDecodesDatabaseTimestamps(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bookings":[{"id":1,"client_name":"Анна","service":"Маникюр","booking_date":"2025-03-10","booking_time":"10:00:00","status":"confirmed","created_at":"2025-03-01 09:15:42.123456"}]}`))
	})

	out, err := client.As(staticToken("abc")).ListBookings(context.Background())
	require.NoError(t, err)
	require.Len(t, out.Bookings, 1)
	booking := out.Bookings[0]
	assert.Equal(t, BookingConfirmed, booking.Status)
	assert.Equal(t, 2025, booking.CreatedAt.Year())
	assert.Equal(t, 15, booking.CreatedAt.Minute())
}

func TestBookingStatusValid(t *testing.T) {
	assert.True(t, BookingCancelled.Valid())
	assert.False(t, BookingStatus("archived").Valid())
}

func TestGetBookingSendsIDQuery(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("id"))
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Запись не найдена"})
	})

	out, err := client.As(staticToken("abc")).GetBooking(context.Background(), 5)
	require.NoError(t, err)
	msg, ok := RejectionMessage(out.Err())
	assert.True(t, ok)
	assert.Equal(t, "Запись не найдена", msg)
}
