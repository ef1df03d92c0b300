package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/locale"
	"github.com/sakura-salon/sakura/internal/shared"
)

// Boundary is the one place where a rejected session token turns into a
// cleared session and a redirect home. Handlers pass every API error to it.
type Boundary struct {
	logger *slog.Logger
}

// NewBoundary constructs a Boundary.
func NewBoundary(logger *slog.Logger) *Boundary {
	if logger == nil {
		logger = slog.Default()
	}
	return &Boundary{logger: logger}
}

// Handle consumes session rejections: the visitor's session is cleared once,
// a notice is queued and the visitor is sent home. It reports whether err
// was consumed.
func (b *Boundary) Handle(w http.ResponseWriter, r *http.Request, err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}
	if FromContext(r.Context()).Expire(r.Context()) {
		shared.Flash(r.Context(), shared.FlashError, locale.T(locale.SessionExpired))
		b.logger.Info("session expired", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	if tracked, ok := w.(*expiryWriter); ok {
		if tracked.redirected {
			return true
		}
		tracked.redirected = true
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return true
}

// Fail reports err to the visitor: rejections go to Handle, everything else
// becomes an error notice followed by a redirect to back.
func (b *Boundary) Fail(w http.ResponseWriter, r *http.Request, err error, fallbackKey, back string) {
	if b.Handle(w, r, err) {
		return
	}
	if !errors.Is(err, context.Canceled) {
		b.logger.Warn("api call failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	shared.Flash(r.Context(), shared.FlashError, Message(err, fallbackKey))
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// Message picks the text shown for err: the server's own rejection message,
// the network notice for transport failures, or the fallback.
func Message(err error, fallbackKey string) string {
	if msg, ok := api.RejectionMessage(err); ok && msg != "" {
		return msg
	}
	if api.IsTransient(err) {
		return locale.T(locale.NetworkError)
	}
	return locale.T(fallbackKey)
}

// Middleware redirects home when a request expired the session but the
// handler wrote nothing, e.g. when the rejection surfaced in a helper.
func (b *Boundary) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tracked := &expiryWriter{ResponseWriter: w}
		next.ServeHTTP(tracked, r)
		if tracked.wrote {
			return
		}
		if ac, ok := Lookup(r.Context()); ok && ac.Expired() {
			tracked.redirected = true
			http.Redirect(tracked, r, "/", http.StatusSeeOther)
		}
	})
}

type expiryWriter struct {
	http.ResponseWriter
	wrote      bool
	redirected bool
}

func (w *expiryWriter) WriteHeader(status int) {
	w.wrote = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *expiryWriter) Write(p []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(p)
}

func (w *expiryWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
