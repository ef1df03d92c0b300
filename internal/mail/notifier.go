package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakura-salon/sakura/internal/api"
)

// Renderer turns a named template into bytes.
type Renderer interface {
	Execute(name string, data any) ([]byte, error)
}

// Enqueuer hands a message to the delivery queue.
type Enqueuer interface {
	EnqueueMail(ctx context.Context, msg Message) error
}

// Notifier tells the salon about new bookings and feedback. A notifier
// without a queue or recipient does nothing.
type Notifier struct {
	renderer  Renderer
	queue     Enqueuer
	recipient string
	logger    *slog.Logger
}

// NewNotifier constructs a Notifier.
func NewNotifier(renderer Renderer, queue Enqueuer, recipient string, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{renderer: renderer, queue: queue, recipient: recipient, logger: logger}
}

// Enabled reports whether notifications are sent.
func (n *Notifier) Enabled() bool {
	return n != nil && n.queue != nil && n.recipient != ""
}

// BookingNotice is the data of the booking e-mail.
type BookingNotice struct {
	Booking   api.BookingInput
	BookingID int64
	Email     string
}

// FeedbackNotice is the data of the feedback e-mail.
type FeedbackNotice struct {
	Feedback   api.FeedbackInput
	FeedbackID int64
}

// BookingCreated queues the notice about a new booking.
func (n *Notifier) BookingCreated(ctx context.Context, notice BookingNotice) error {
	subject := fmt.Sprintf("Новая запись: %s, %s %s", notice.Booking.Service, notice.Booking.BookingDate, notice.Booking.BookingTime)
	return n.send(ctx, KindBooking, "mail/booking_notice.html", subject, notice.Email, notice)
}

// FeedbackReceived queues the notice about a contacts form message.
func (n *Notifier) FeedbackReceived(ctx context.Context, notice FeedbackNotice) error {
	subject := "Новое сообщение с сайта от " + notice.Feedback.Name
	return n.send(ctx, KindFeedback, "mail/feedback_notice.html", subject, "", notice)
}

func (n *Notifier) send(ctx context.Context, kind, template, subject, replyTo string, data any) error {
	if !n.Enabled() {
		return nil
	}
	if n.renderer == nil {
		return errors.New("mail: renderer not configured")
	}
	body, err := n.renderer.Execute(template, data)
	if err != nil {
		return err
	}
	msg := Message{
		Kind:    kind,
		To:      []string{n.recipient},
		ReplyTo: replyTo,
		Subject: subject,
		HTML:    string(body),
	}
	if err := n.queue.EnqueueMail(ctx, msg); err != nil {
		return fmt.Errorf("mail: enqueue %s notice: %w", kind, err)
	}
	n.logger.Debug("notice queued", slog.String("kind", kind))
	return nil
}
