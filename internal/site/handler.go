package site

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/auth"
	"github.com/sakura-salon/sakura/internal/locale"
	"github.com/sakura-salon/sakura/internal/mail"
	"github.com/sakura-salon/sakura/internal/shared"
	"github.com/sakura-salon/sakura/internal/view"
)

// FeedbackNotifier is told about accepted contacts form messages.
type FeedbackNotifier interface {
	FeedbackReceived(ctx context.Context, notice mail.FeedbackNotice) error
}

// Handler serves the public pages.
type Handler struct {
	templates *view.Engine
	shell     *auth.Shell
	boundary  *auth.Boundary
	feed      *ReviewFeed
	reviews   *ReviewSubmitter
	notifier  FeedbackNotifier
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(templates *view.Engine, shell *auth.Shell, boundary *auth.Boundary, feed *ReviewFeed, reviews *ReviewSubmitter, notifier FeedbackNotifier, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		templates: templates,
		shell:     shell,
		boundary:  boundary,
		feed:      feed,
		reviews:   reviews,
		notifier:  notifier,
		validate:  validator.New(),
		logger:    logger,
	}
}

// MountRoutes registers the public pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Get("/services", h.services)
	r.Get("/masters", h.masters)
	r.Get("/price", h.price)
	r.Get("/gallery", h.gallery)
	r.Get("/reviews", h.listReviews)
	r.Post("/reviews", h.submitReview)
	r.Get("/contacts", h.showContacts)
	r.Post("/contacts", h.submitFeedback)
}

type homePageData struct {
	Features []Feature
	Services []Service
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "pages/home.html", "", homePageData{Features: Features(), Services: Services()[:4]})
}

func (h *Handler) services(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "pages/services.html", "Услуги", Services())
}

func (h *Handler) masters(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "pages/masters.html", "Мастера", Masters())
}

func (h *Handler) price(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "pages/price.html", "Цены", PriceList())
}

type galleryPageData struct {
	Categories []GalleryCategory
	Current    GalleryCategory
}

func (h *Handler) gallery(w http.ResponseWriter, r *http.Request) {
	data := galleryPageData{Categories: Gallery(), Current: GalleryCategoryByID(r.URL.Query().Get("category"))}
	h.render(w, r, http.StatusOK, "pages/gallery.html", "Галерея", data)
}

type reviewsPageData struct {
	Reviews []api.Review
	Error   string
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.feed.Approved(r.Context())
	data := reviewsPageData{Reviews: reviews}
	if err != nil {
		h.logger.Warn("load reviews", slog.Any("error", err))
		data.Error = auth.Message(err, locale.LoadFailed)
	}
	h.render(w, r, http.StatusOK, "pages/reviews.html", "Отзывы", data)
}

func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request) {
	h.reviews.Submit(w, r, "/reviews")
}

type feedbackForm struct {
	Name    string `validate:"required"`
	Phone   string `validate:"required"`
	Message string `validate:"required"`
}

type contactsPageData struct {
	Contacts ContactInfo
	Form     feedbackForm
	Error    string
}

func (h *Handler) showContacts(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "pages/contacts.html", "Контакты", contactsPageData{Contacts: Contacts()})
}

func (h *Handler) submitFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	form := feedbackForm{
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Phone:   strings.TrimSpace(r.PostFormValue("phone")),
		Message: strings.TrimSpace(r.PostFormValue("message")),
	}
	if err := h.validate.Struct(form); err != nil {
		data := contactsPageData{Contacts: Contacts(), Form: form, Error: locale.T(locale.FeedbackRequired)}
		h.render(w, r, http.StatusBadRequest, "pages/contacts.html", "Контакты", data)
		return
	}

	in := api.FeedbackInput{Name: form.Name, Phone: form.Phone, Message: form.Message}
	created, err := auth.FromContext(ctx).Caller().CreateFeedback(ctx, in)
	if err == nil {
		err = created.Err()
	}
	if err != nil {
		h.boundary.Fail(w, r, err, locale.FeedbackFailed, "/contacts")
		return
	}
	if h.notifier != nil {
		if err := h.notifier.FeedbackReceived(ctx, mail.FeedbackNotice{Feedback: in, FeedbackID: created.FeedbackID}); err != nil {
			h.logger.Warn("queue feedback notice", slog.Any("error", err))
		}
	}
	shared.Flash(ctx, shared.FlashSuccess, locale.T(locale.FeedbackSent))
	http.Redirect(w, r, "/contacts", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	if err := h.templates.RenderStatus(w, status, name, h.shell.Page(r, title, data)); err != nil {
		h.logger.Error("render page", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
