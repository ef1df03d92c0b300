package auth

import (
	"log/slog"
	"net/http"

	"github.com/sakura-salon/sakura/internal/shared"
	"github.com/sakura-salon/sakura/internal/view"
)

// Shell fills the layout part of every page: identity, flashes and the
// CSRF token.
type Shell struct {
	csrf   *shared.CSRFManager
	logger *slog.Logger
}

// NewShell constructs a Shell.
func NewShell(csrf *shared.CSRFManager, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	return &Shell{csrf: csrf, logger: logger}
}

// Page builds the template data for a page. It waits for the visitor's
// identity check so navigation matches the session.
func (s *Shell) Page(r *http.Request, title string, data any) view.TemplateData {
	ctx := r.Context()
	td := s.Anonymous(r, title, data)
	if ac, ok := Lookup(ctx); ok {
		_ = ac.Await(ctx)
		state := ac.State()
		td.User = state.User
		td.IsAdmin = state.User.IsAdmin()
	}
	return td
}

// Anonymous builds the template data without consulting the identity.
func (s *Shell) Anonymous(r *http.Request, title string, data any) view.TemplateData {
	return s.base(r, title, data, true)
}

// Placeholder builds data for a transient page; queued flashes stay queued
// for the page that follows.
func (s *Shell) Placeholder(r *http.Request, title string) view.TemplateData {
	return s.base(r, title, nil, false)
}

func (s *Shell) base(r *http.Request, title string, data any, flashes bool) view.TemplateData {
	td := view.TemplateData{Title: title, CurrentPath: r.URL.Path, Data: data}
	sess := shared.SessionFrom(r.Context())
	if sess == nil {
		return td
	}
	token, err := s.csrf.EnsureToken(sess)
	if err != nil {
		s.logger.Error("csrf token", slog.Any("error", err))
	}
	td.CSRFToken = token
	if flashes {
		td.Flashes = sess.PopFlashes()
	}
	return td
}
