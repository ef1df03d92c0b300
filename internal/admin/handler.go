package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/auth"
	"github.com/sakura-salon/sakura/internal/locale"
	"github.com/sakura-salon/sakura/internal/shared"
	"github.com/sakura-salon/sakura/internal/view"
	"github.com/sakura-salon/sakura/report"
)

// PDFRenderer converts HTML into PDF.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, doc report.Document) ([]byte, error)
}

// ReviewCache is dropped after moderation so the public page catches up.
type ReviewCache interface {
	Invalidate(ctx context.Context) error
}

// Handler serves the dashboard. Every route expects auth.Guard.RequireAdmin.
type Handler struct {
	templates *view.Engine
	shell     *auth.Shell
	boundary  *auth.Boundary
	reviews   ReviewCache
	pdf       PDFRenderer
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(templates *view.Engine, shell *auth.Shell, boundary *auth.Boundary, reviews ReviewCache, pdf PDFRenderer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		templates: templates,
		shell:     shell,
		boundary:  boundary,
		reviews:   reviews,
		pdf:       pdf,
		logger:    logger,
		now:       time.Now,
	}
}

// MountRoutes registers the dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Post("/bookings/{id}/status", h.updateBookingStatus)
	r.Post("/reviews/{id}/approval", h.setReviewApproval)
	r.Post("/feedback/{id}/read", h.setFeedbackRead)
	r.Get("/bookings.pdf", h.exportBookings)
}

// Tabs of the dashboard.
const (
	TabBookings = "bookings"
	TabReviews  = "reviews"
	TabFeedback = "feedback"
)

type pageData struct {
	Dashboard
	Tab      string
	Status   api.BookingStatus
	Statuses []api.BookingStatus
	Failed   bool
}

var statuses = []api.BookingStatus{api.BookingPending, api.BookingConfirmed, api.BookingCompleted, api.BookingCancelled}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := pageData{Tab: tabOf(r), Statuses: statuses}
	if status := api.BookingStatus(r.URL.Query().Get("status")); status.Valid() {
		data.Status = status
	}

	dashboard, err := Load(ctx, auth.FromContext(ctx).Caller())
	if err != nil {
		if h.boundary.Handle(w, r, err) {
			return
		}
		h.logger.Warn("load dashboard", slog.Any("error", err))
		shared.Flash(ctx, shared.FlashError, auth.Message(err, locale.LoadFailed))
		data.Failed = true
	} else {
		data.Dashboard = dashboard
		data.Bookings = FilterBookings(dashboard.Bookings, data.Status)
	}

	if err := h.templates.Render(w, "pages/admin.html", h.shell.Page(r, "Админ-панель", data)); err != nil {
		h.logger.Error("render dashboard", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func tabOf(r *http.Request) string {
	switch tab := r.URL.Query().Get("tab"); tab {
	case TabReviews, TabFeedback:
		return tab
	}
	return TabBookings
}

func back(tab string) string {
	return "/admin?tab=" + tab
}

func (h *Handler) updateBookingStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	status := api.BookingStatus(r.PostFormValue("status"))
	if !status.Valid() {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	result, err := auth.FromContext(ctx).Caller().UpdateBookingStatus(ctx, id, status)
	if err == nil {
		err = result.Err()
	}
	if err != nil {
		h.boundary.Fail(w, r, err, locale.UpdateFailed, back(TabBookings))
		return
	}
	h.logger.Info("booking status changed", slog.Int64("booking_id", id), slog.String("status", string(status)))
	shared.Flash(ctx, shared.FlashSuccess, locale.T(locale.BookingUpdated, locale.Status(string(status))))
	http.Redirect(w, r, back(TabBookings), http.StatusSeeOther)
}

func (h *Handler) setReviewApproval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	approved, err := strconv.ParseBool(r.PostFormValue("approved"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	result, err := auth.FromContext(ctx).Caller().ApproveReview(ctx, id, approved)
	if err == nil {
		err = result.Err()
	}
	if err != nil {
		h.boundary.Fail(w, r, err, locale.UpdateFailed, back(TabReviews))
		return
	}
	if h.reviews != nil {
		if err := h.reviews.Invalidate(ctx); err != nil {
			h.logger.Warn("invalidate reviews cache", slog.Any("error", err))
		}
	}
	key := locale.ReviewHidden
	if approved {
		key = locale.ReviewApproved
	}
	shared.Flash(ctx, shared.FlashSuccess, locale.T(key))
	http.Redirect(w, r, back(TabReviews), http.StatusSeeOther)
}

func (h *Handler) setFeedbackRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	read, err := strconv.ParseBool(r.PostFormValue("read"))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	result, err := auth.FromContext(ctx).Caller().MarkFeedbackRead(ctx, id, read)
	if err == nil {
		err = result.Err()
	}
	if err != nil {
		h.boundary.Fail(w, r, err, locale.UpdateFailed, back(TabFeedback))
		return
	}
	http.Redirect(w, r, back(TabFeedback), http.StatusSeeOther)
}

type exportData struct {
	Bookings    []api.Booking
	Status      api.BookingStatus
	GeneratedAt time.Time
}

func (h *Handler) exportBookings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := auth.FromContext(ctx).Caller().ListBookings(ctx)
	if err == nil {
		err = list.Err()
	}
	if err != nil {
		h.boundary.Fail(w, r, err, locale.LoadFailed, back(TabBookings))
		return
	}
	status := api.BookingStatus(r.URL.Query().Get("status"))
	if !status.Valid() {
		status = ""
	}
	data := exportData{Bookings: FilterBookings(list.Bookings, status), Status: status, GeneratedAt: h.now()}
	html, err := h.templates.Execute("exports/bookings_pdf.html", data)
	if err != nil {
		h.logger.Error("render bookings export", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if h.pdf == nil {
		h.exportUnavailable(w, r, report.ErrNotConfigured)
		return
	}
	pdf, err := h.pdf.RenderHTML(ctx, report.Document{HTML: html, Landscape: true})
	if err != nil {
		h.exportUnavailable(w, r, err)
		return
	}
	filename := "bookings-" + data.GeneratedAt.In(view.Location()).Format("2006-01-02") + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) exportUnavailable(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Warn("bookings export", slog.Any("error", err))
	shared.Flash(r.Context(), shared.FlashError, locale.T(locale.ExportUnavailable))
	http.Redirect(w, r, back(TabBookings), http.StatusSeeOther)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return 0, false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
