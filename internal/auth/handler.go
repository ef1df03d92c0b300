package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/locale"
	"github.com/sakura-salon/sakura/internal/shared"
	"github.com/sakura-salon/sakura/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	templates *view.Engine
	shell     *Shell
	csrf      *shared.CSRFManager
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, templates *view.Engine, shell *Shell, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, templates: templates, shell: shell, csrf: csrf}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Get("/register", h.showRegister)
	r.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)
}

type loginPageData struct {
	Email string
	Error string
}

type registerPageData struct {
	Email    string
	FullName string
	Phone    string
	Error    string
}

// HomeFor is where a signed-in user lands.
func HomeFor(user *api.User) string {
	if user.IsAdmin() {
		return "/admin"
	}
	return "/cabinet"
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	if user := FromContext(r.Context()).User(); user != nil {
		http.Redirect(w, r, HomeFor(user), http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "pages/login.html", "Вход", loginPageData{})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	ac := FromContext(r.Context())
	email := r.PostFormValue("email")
	result := ac.Login(r.Context(), email, r.PostFormValue("password"))
	if !result.Success {
		h.render(w, r, http.StatusBadRequest, "pages/login.html", "Вход", loginPageData{Email: email, Error: result.Error})
		return
	}
	h.rotateCSRF(r)
	shared.Flash(r.Context(), shared.FlashSuccess, locale.T(locale.Welcome))
	http.Redirect(w, r, HomeFor(result.User), http.StatusSeeOther)
}

func (h *Handler) showRegister(w http.ResponseWriter, r *http.Request) {
	if user := FromContext(r.Context()).User(); user != nil {
		http.Redirect(w, r, HomeFor(user), http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "pages/register.html", "Регистрация", registerPageData{})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	in := api.Registration{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		FullName: r.PostFormValue("full_name"),
		Phone:    r.PostFormValue("phone"),
	}
	result := FromContext(r.Context()).Register(r.Context(), in)
	if !result.Success {
		data := registerPageData{Email: in.Email, FullName: in.FullName, Phone: in.Phone, Error: result.Error}
		h.render(w, r, http.StatusBadRequest, "pages/register.html", "Регистрация", data)
		return
	}
	shared.Flash(r.Context(), shared.FlashSuccess, locale.T(locale.Registered))
	if result.User == nil {
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}
	h.rotateCSRF(r)
	http.Redirect(w, r, HomeFor(result.User), http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	FromContext(r.Context()).Logout(r.Context())
	h.rotateCSRF(r)
	shared.Flash(r.Context(), shared.FlashInfo, locale.T(locale.LoggedOut))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) rotateCSRF(r *http.Request) {
	if _, err := h.csrf.Rotate(shared.SessionFrom(r.Context())); err != nil {
		h.logger.Warn("rotate csrf token", slog.Any("error", err))
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	if err := h.templates.RenderStatus(w, status, name, h.shell.Page(r, title, data)); err != nil {
		h.logger.Error("render auth page", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// HandleRegisterForTest exposes the POST handler for tests.
func (h *Handler) HandleRegisterForTest(w http.ResponseWriter, r *http.Request) {
	h.handleRegister(w, r)
}

// HandleLogoutForTest exposes the POST handler for tests.
func (h *Handler) HandleLogoutForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r)
}
