// Package cabinet serves a client's own bookings.
package cabinet

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/auth"
	"github.com/sakura-salon/sakura/internal/locale"
	"github.com/sakura-salon/sakura/internal/shared"
	"github.com/sakura-salon/sakura/internal/site"
	"github.com/sakura-salon/sakura/internal/view"
)

// Handler serves the cabinet. Every route expects auth.Guard.RequireUser.
type Handler struct {
	templates *view.Engine
	shell     *auth.Shell
	boundary  *auth.Boundary
	reviews   *site.ReviewSubmitter
	logger    *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(templates *view.Engine, shell *auth.Shell, boundary *auth.Boundary, reviews *site.ReviewSubmitter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{templates: templates, shell: shell, boundary: boundary, reviews: reviews, logger: logger}
}

// MountRoutes registers the cabinet routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.show)
	r.Post("/bookings/{id}/cancel", h.cancel)
	r.Post("/reviews", h.submitReview)
}

type pageData struct {
	Profile  *api.User
	Bookings []api.Booking
	Error    string
}

// Cancellable reports whether the client may still cancel b.
func Cancellable(b api.Booking) bool {
	return b.Status == api.BookingPending || b.Status == api.BookingConfirmed
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ac := auth.FromContext(ctx)
	data := pageData{Profile: ac.User()}

	list, err := ac.Caller().ListBookings(ctx)
	if err == nil {
		err = list.Err()
	}
	if err != nil {
		if h.boundary.Handle(w, r, err) {
			return
		}
		h.logger.Warn("load bookings", slog.Int64("user_id", data.Profile.ID), slog.Any("error", err))
		data.Error = auth.Message(err, locale.LoadFailed)
	} else {
		data.Bookings = list.Bookings
	}

	if err := h.templates.Render(w, "pages/cabinet.html", h.shell.Page(r, "Личный кабинет", data)); err != nil {
		h.logger.Error("render cabinet", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	caller := auth.FromContext(ctx).Caller()

	one, err := caller.GetBooking(ctx, id)
	if err == nil {
		err = one.Err()
	}
	if err != nil {
		h.boundary.Fail(w, r, err, locale.CancelFailed, "/cabinet")
		return
	}
	if !Cancellable(*one.Booking) {
		shared.Flash(ctx, shared.FlashError, locale.T(locale.CancelFailed))
		http.Redirect(w, r, "/cabinet", http.StatusSeeOther)
		return
	}

	result, err := caller.UpdateBookingStatus(ctx, id, api.BookingCancelled)
	if err == nil {
		err = result.Err()
	}
	if err != nil {
		h.boundary.Fail(w, r, err, locale.CancelFailed, "/cabinet")
		return
	}
	h.logger.Info("booking cancelled", slog.Int64("booking_id", id))
	shared.Flash(ctx, shared.FlashSuccess, locale.T(locale.BookingCancelled))
	http.Redirect(w, r, "/cabinet", http.StatusSeeOther)
}

func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request) {
	h.reviews.Submit(w, r, "/cabinet")
}
