package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, metrics *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/booking")

	req := httptest.NewRequest(http.MethodGet, "/booking", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	body := scrape(t, metrics)
	if !strings.Contains(body, `sakura_http_requests_total{code="418",route="/booking"} 1`) {
		t.Fatalf("expected metrics to record request, got: %s", body)
	}
	if !strings.Contains(body, `sakura_http_request_duration_seconds_bucket{route="/booking"`) {
		t.Fatalf("expected duration histogram to be present, got: %s", body)
	}
}

func TestObserveAPICall(t *testing.T) {
	metrics := NewMetrics()
	metrics.ObserveAPICall("bookings", http.MethodGet, http.StatusUnauthorized, 40*time.Millisecond)
	metrics.ObserveAPICall("auth", http.MethodPost, 0, time.Second)
	metrics.SessionExpired()
	metrics.AuthAttempt("login", "rejected")

	body := scrape(t, metrics)
	for _, want := range []string{
		`sakura_api_requests_total{code="401",endpoint="bookings",method="GET"} 1`,
		`sakura_api_requests_total{code="0",endpoint="auth",method="POST"} 1`,
		`sakura_api_request_duration_seconds_count{endpoint="bookings",method="GET"} 1`,
		`sakura_session_expirations_total 1`,
		`sakura_auth_attempts_total{action="login",outcome="rejected"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics, got: %s", want, body)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.ObserveAPICall("auth", http.MethodGet, 200, time.Millisecond)
	metrics.SessionExpired()

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from nil metrics, got %d", rr.Code)
	}
}
