// Package admin serves the salon dashboard: bookings, review moderation and
// feedback messages.
package admin

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sakura-salon/sakura/internal/api"
)

// Lister reads the three dashboard lists.
type Lister interface {
	ListBookings(ctx context.Context) (api.BookingList, error)
	ListReviews(ctx context.Context) (api.ReviewList, error)
	ListFeedback(ctx context.Context) (api.FeedbackList, error)
}

// Stats are the dashboard counters.
type Stats struct {
	TotalBookings     int
	ConfirmedBookings int
	PendingBookings   int
	PendingReviews    int
	UnreadFeedback    int
}

// Dashboard holds everything the dashboard shows.
type Dashboard struct {
	Bookings []api.Booking
	Reviews  []api.Review
	Feedback []api.Feedback
	Stats    Stats
}

// Load fetches the three lists concurrently. Either all of them arrive or
// the dashboard is empty; a domain rejection of any list fails the load.
func Load(ctx context.Context, src Lister) (Dashboard, error) {
	var (
		bookings []api.Booking
		reviews  []api.Review
		feedback []api.Feedback
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := src.ListBookings(gctx)
		if err == nil {
			err = list.Err()
		}
		if err != nil {
			return fmt.Errorf("bookings: %w", err)
		}
		bookings = list.Bookings
		return nil
	})
	g.Go(func() error {
		list, err := src.ListReviews(gctx)
		if err == nil {
			err = list.Err()
		}
		if err != nil {
			return fmt.Errorf("reviews: %w", err)
		}
		reviews = list.Reviews
		return nil
	})
	g.Go(func() error {
		list, err := src.ListFeedback(gctx)
		if err == nil {
			err = list.Err()
		}
		if err != nil {
			return fmt.Errorf("feedback: %w", err)
		}
		feedback = list.Feedback
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	d := Dashboard{Bookings: bookings, Reviews: reviews, Feedback: feedback}
	d.Stats = computeStats(d)
	return d, nil
}

func computeStats(d Dashboard) Stats {
	s := Stats{TotalBookings: len(d.Bookings)}
	for _, b := range d.Bookings {
		switch b.Status {
		case api.BookingConfirmed:
			s.ConfirmedBookings++
		case api.BookingPending:
			s.PendingBookings++
		}
	}
	for _, r := range d.Reviews {
		if !r.Approved {
			s.PendingReviews++
		}
	}
	for _, f := range d.Feedback {
		if !f.IsRead {
			s.UnreadFeedback++
		}
	}
	return s
}

// FilterBookings keeps the bookings with status, or all when status is empty.
func FilterBookings(bookings []api.Booking, status api.BookingStatus) []api.Booking {
	if status == "" {
		return bookings
	}
	out := make([]api.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b.Status == status {
			out = append(out, b)
		}
	}
	return out
}
