// Package booking serves the online booking form.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sakura-salon/sakura/internal/api"
	"github.com/sakura-salon/sakura/internal/auth"
	"github.com/sakura-salon/sakura/internal/locale"
	"github.com/sakura-salon/sakura/internal/mail"
	"github.com/sakura-salon/sakura/internal/shared"
	"github.com/sakura-salon/sakura/internal/site"
	"github.com/sakura-salon/sakura/internal/view"
)

// Notifier is told about created bookings.
type Notifier interface {
	BookingCreated(ctx context.Context, notice mail.BookingNotice) error
}

// Handler serves the booking form.
type Handler struct {
	templates *view.Engine
	shell     *auth.Shell
	boundary  *auth.Boundary
	keys      shared.IdempotencyStore
	notifier  Notifier
	validate  *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(templates *view.Engine, shell *auth.Shell, boundary *auth.Boundary, keys shared.IdempotencyStore, notifier Notifier, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		templates: templates,
		shell:     shell,
		boundary:  boundary,
		keys:      keys,
		notifier:  notifier,
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// MountRoutes registers the booking routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showForm)
	r.Post("/", h.submit)
}

// Form is the booking form as submitted.
type Form struct {
	Key     string `validate:"required,uuid"`
	Service string `validate:"required"`
	Master  string
	Date    string `validate:"required,datetime=2006-01-02"`
	Time    string `validate:"required,datetime=15:04"`
	Phone   string `validate:"required"`
	Comment string `validate:"max=1000"`
}

type pageData struct {
	Form      Form
	Services  []string
	Masters   []string
	TimeSlots []string
	MinDate   string
	AnyMaster string
	NeedPhone bool
	Error     string
}

func (h *Handler) showForm(w http.ResponseWriter, r *http.Request) {
	form := Form{
		Key:     uuid.NewString(),
		Service: r.URL.Query().Get("service"),
		Master:  r.URL.Query().Get("master"),
	}
	h.render(w, r, http.StatusOK, form, "")
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	ac := auth.FromContext(ctx)
	if err := ac.Await(ctx); err != nil {
		return
	}
	user := ac.User()
	if user == nil {
		shared.Flash(ctx, shared.FlashError, locale.T(locale.AuthRequired))
		http.Redirect(w, r, "/auth/login", http.StatusSeeOther)
		return
	}

	form := h.readForm(r, user)
	if err := h.check(form); err != nil {
		h.logger.Debug("booking form rejected", slog.Any("error", err))
		if form.Key == "" {
			form.Key = uuid.NewString()
		}
		h.render(w, r, http.StatusBadRequest, form, locale.T(locale.BookingRequired))
		return
	}

	scope := "booking:" + strconv.FormatInt(user.ID, 10)
	if err := h.keys.Claim(ctx, form.Key, scope); err != nil {
		if errors.Is(err, shared.ErrIdempotencyConflict) {
			shared.Flash(ctx, shared.FlashInfo, locale.T(locale.BookingDuplicate))
			http.Redirect(w, r, "/cabinet", http.StatusSeeOther)
			return
		}
		h.logger.Error("claim booking key", slog.Any("error", err))
		shared.Flash(ctx, shared.FlashError, locale.T(locale.BookingFailed))
		http.Redirect(w, r, "/booking", http.StatusSeeOther)
		return
	}

	in := api.BookingInput{
		ClientName:  user.FullName,
		Phone:       form.Phone,
		Service:     form.Service,
		Master:      form.Master,
		BookingDate: form.Date,
		BookingTime: form.Time,
		Comment:     form.Comment,
	}
	created, err := ac.Caller().CreateBooking(ctx, in)
	if err == nil {
		err = created.Err()
	}
	if err != nil {
		if releaseErr := h.keys.Release(context.WithoutCancel(ctx), form.Key, scope); releaseErr != nil {
			h.logger.Warn("release booking key", slog.Any("error", releaseErr))
		}
		h.boundary.Fail(w, r, err, locale.BookingFailed, "/booking")
		return
	}

	h.logger.Info("booking created", slog.Int64("user_id", user.ID), slog.Int64("booking_id", created.BookingID))
	if h.notifier != nil {
		notice := mail.BookingNotice{Booking: in, BookingID: created.BookingID, Email: user.Email}
		if err := h.notifier.BookingCreated(ctx, notice); err != nil {
			h.logger.Warn("queue booking notice", slog.Any("error", err))
		}
	}
	shared.Flash(ctx, shared.FlashSuccess, locale.T(locale.BookingCreated))
	http.Redirect(w, r, "/cabinet", http.StatusSeeOther)
}

func (h *Handler) readForm(r *http.Request, user *api.User) Form {
	form := Form{
		Key:     strings.TrimSpace(r.PostFormValue("idempotency_key")),
		Service: strings.TrimSpace(r.PostFormValue("service")),
		Master:  strings.TrimSpace(r.PostFormValue("master")),
		Date:    strings.TrimSpace(r.PostFormValue("date")),
		Time:    strings.TrimSpace(r.PostFormValue("time")),
		Phone:   strings.TrimSpace(r.PostFormValue("phone")),
		Comment: strings.TrimSpace(r.PostFormValue("comment")),
	}
	if user.Phone != "" {
		form.Phone = user.Phone
	}
	if form.Master == "" {
		form.Master = locale.T(locale.AnyMaster)
	}
	return form
}

var (
	errUnknownService = errors.New("unknown service")
	errUnknownMaster  = errors.New("unknown master")
	errUnknownSlot    = errors.New("unknown time slot")
	errPastDate       = errors.New("date in the past")
)

func (h *Handler) check(form Form) error {
	if err := h.validate.Struct(form); err != nil {
		return err
	}
	if !slices.Contains(site.BookingServices(), form.Service) {
		return errUnknownService
	}
	if form.Master != locale.T(locale.AnyMaster) && !slices.Contains(site.MasterNames(), form.Master) {
		return errUnknownMaster
	}
	if !slices.Contains(site.TimeSlots(), form.Time) {
		return errUnknownSlot
	}
	if form.Date < h.today() {
		return errPastDate
	}
	return nil
}

func (h *Handler) today() string {
	return h.now().In(view.Location()).Format("2006-01-02")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, form Form, message string) {
	data := pageData{
		Form:      form,
		Services:  site.BookingServices(),
		Masters:   site.MasterNames(),
		TimeSlots: site.TimeSlots(),
		MinDate:   h.today(),
		AnyMaster: locale.T(locale.AnyMaster),
		Error:     message,
	}
	td := h.shell.Page(r, "Онлайн-запись", nil)
	data.NeedPhone = td.User == nil || td.User.Phone == ""
	td.Data = data
	if err := h.templates.RenderStatus(w, status, "pages/booking.html", td); err != nil {
		h.logger.Error("render booking", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
