package app

import (
	"log/slog"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/sakura-salon/sakura/internal/admin"
	"github.com/sakura-salon/sakura/internal/auth"
	"github.com/sakura-salon/sakura/internal/booking"
	"github.com/sakura-salon/sakura/internal/cabinet"
	"github.com/sakura-salon/sakura/internal/locale"
	"github.com/sakura-salon/sakura/internal/observability"
	"github.com/sakura-salon/sakura/internal/shared"
	"github.com/sakura-salon/sakura/internal/site"
	"github.com/sakura-salon/sakura/internal/view"
	"github.com/sakura-salon/sakura/jobs"
	"github.com/sakura-salon/sakura/web"
)

func init() {
	ensureMimeType(".css", "text/css; charset=utf-8")
	ensureMimeType(".svg", "image/svg+xml")
	ensureMimeType(".webp", "image/webp")
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	_ = mime.AddExtensionType(ext, typ)
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	Provider *auth.Provider
	Boundary *auth.Boundary
	Guard    *auth.Guard
	Shell    *auth.Shell

	AuthHandler    *auth.Handler
	SiteHandler    *site.Handler
	BookingHandler *booking.Handler
	CabinetHandler *cabinet.Handler
	AdminHandler   *admin.Handler
	JobHandler     *jobs.Handler

	// Health answers /healthz; a nil handler reports a bare "ok".
	Health http.Handler
}

// NewRouter constructs the chi.Router with Sakura defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mwCfg := MiddlewareConfig{
		Logger:         logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}

	r := chi.NewRouter()
	for _, mw := range BaseMiddleware(mwCfg) {
		r.Use(mw)
	}

	health := params.Health
	if health == nil {
		health = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	r.Method(http.MethodGet, "/healthz", health)
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(web.Static())))
	r.Handle("/static/*", staticCacheHandler(fileServer))

	pages := append(PageMiddleware(mwCfg), params.Provider.Middleware, params.Boundary.Middleware)
	notFound := notFoundHandler(params.Templates, params.Shell, logger)
	wrappedNotFound := chi.Chain(pages...).HandlerFunc(notFound)
	// Sub-routers inherit this handler and already run inside the page chain.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if shared.SessionFrom(r.Context()) != nil {
			notFound(w, r)
			return
		}
		wrappedNotFound.ServeHTTP(w, r)
	})

	r.Group(func(r chi.Router) {
		r.Use(pages...)

		params.SiteHandler.MountRoutes(r)

		r.Route("/auth", func(r chi.Router) {
			r.Use(limitCredentialPosts(AuthRateLimit(mwCfg)))
			params.AuthHandler.MountRoutes(r)
		})

		r.Route("/booking", params.BookingHandler.MountRoutes)

		r.Route("/cabinet", func(r chi.Router) {
			r.Use(params.Guard.RequireUser)
			params.CabinetHandler.MountRoutes(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(params.Guard.RequireAdmin)
			params.AdminHandler.MountRoutes(r)
			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}

// limitCredentialPosts applies limiter to login and registration posts.
func limitCredentialPosts(limiter func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := limiter(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost && path.Base(r.URL.Path) != "logout" {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func notFoundHandler(templates *view.Engine, shell *auth.Shell, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := locale.T(locale.PageNotFound)
		data := shell.Page(r, title, r.URL.Path)
		if err := templates.RenderStatus(w, http.StatusNotFound, "pages/error.html", data); err != nil {
			logger.Error("render not found", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		}
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
