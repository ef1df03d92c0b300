package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakura-salon/sakura/internal/locale"
	"github.com/sakura-salon/sakura/internal/shared"
	"github.com/sakura-salon/sakura/internal/view"
)

// Guard gates pages on identity in two phases: while the identity check is
// still running it renders a self-refreshing placeholder and never
// redirects; once resolved it redirects visitors who may not see the page.
type Guard struct {
	templates *view.Engine
	shell     *Shell
	settle    time.Duration
	logger    *slog.Logger
}

// NewGuard constructs a Guard. settle bounds how long a GET waits for the
// identity check before the placeholder is shown.
func NewGuard(templates *view.Engine, shell *Shell, settle time.Duration, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{templates: templates, shell: shell, settle: settle, logger: logger}
}

// RequireUser admits signed-in visitors.
func (g *Guard) RequireUser(next http.Handler) http.Handler {
	return g.require(next, false)
}

// RequireAdmin admits signed-in admins.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return g.require(next, true)
}

func (g *Guard) require(next http.Handler, admin bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ac := FromContext(ctx)
		if !g.resolved(r, ac) {
			g.renderLoading(w, r)
			return
		}
		user := ac.User()
		if user == nil {
			shared.Flash(ctx, shared.FlashInfo, locale.T(locale.AuthRequired))
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		if admin && !user.IsAdmin() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// resolved waits for the identity check. Form posts cannot be replayed by a
// refresh, so they wait for the full check.
func (g *Guard) resolved(r *http.Request, ac *Context) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return ac.AwaitWithin(r.Context(), g.settle)
	}
	return ac.Await(r.Context()) == nil
}

func (g *Guard) renderLoading(w http.ResponseWriter, r *http.Request) {
	data := g.shell.Placeholder(r, "Загрузка")
	data.Refresh = 1
	w.Header().Set("Cache-Control", "no-store")
	if err := g.templates.Render(w, "pages/loading.html", data); err != nil {
		g.logger.Error("render loading", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
