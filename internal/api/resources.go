package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// CreateBooking submits a booking. Anonymous visitors may book; a token links
// the booking to the account.
func (c *Caller) CreateBooking(ctx context.Context, in BookingInput) (BookingCreated, error) {
	var out BookingCreated
	err := c.do(ctx, call{endpoint: EndpointBookings, method: http.MethodPost, body: in}, &out)
	return out, err
}

// ListBookings returns the caller's bookings, or every booking for admins.
func (c *Caller) ListBookings(ctx context.Context) (BookingList, error) {
	var out BookingList
	err := c.do(ctx, call{endpoint: EndpointBookings, method: http.MethodGet, requiresAuth: true}, &out)
	return out, err
}

// GetBooking reads one booking by id.
func (c *Caller) GetBooking(ctx context.Context, id int64) (BookingOne, error) {
	var out BookingOne
	query := url.Values{"id": {strconv.FormatInt(id, 10)}}
	err := c.do(ctx, call{endpoint: EndpointBookings, method: http.MethodGet, query: query, requiresAuth: true}, &out)
	return out, err
}

// UpdateBookingStatus moves a booking to status.
func (c *Caller) UpdateBookingStatus(ctx context.Context, id int64, status BookingStatus) (Result, error) {
	var out Result
	body := struct {
		ID     int64         `json:"id"`
		Status BookingStatus `json:"status"`
	}{ID: id, Status: status}
	err := c.do(ctx, call{endpoint: EndpointBookings, method: http.MethodPut, body: body, requiresAuth: true}, &out)
	return out, err
}

// ListReviews returns approved reviews, or all reviews when the token
// belongs to an admin.
func (c *Caller) ListReviews(ctx context.Context) (ReviewList, error) {
	var out ReviewList
	err := c.do(ctx, call{endpoint: EndpointReviews, method: http.MethodGet}, &out)
	return out, err
}

// CreateReview submits a review for moderation.
func (c *Caller) CreateReview(ctx context.Context, in ReviewInput) (ReviewCreated, error) {
	var out ReviewCreated
	err := c.do(ctx, call{endpoint: EndpointReviews, method: http.MethodPost, body: in, requiresAuth: true}, &out)
	return out, err
}

// ApproveReview shows or hides a review on the site.
func (c *Caller) ApproveReview(ctx context.Context, id int64, approved bool) (Result, error) {
	var out Result
	body := struct {
		ID       int64 `json:"id"`
		Approved bool  `json:"approved"`
	}{ID: id, Approved: approved}
	err := c.do(ctx, call{endpoint: EndpointReviews, method: http.MethodPut, body: body, requiresAuth: true}, &out)
	return out, err
}

// CreateFeedback submits a contacts form message.
func (c *Caller) CreateFeedback(ctx context.Context, in FeedbackInput) (FeedbackCreated, error) {
	var out FeedbackCreated
	err := c.do(ctx, call{endpoint: EndpointFeedback, method: http.MethodPost, body: in}, &out)
	return out, err
}

// ListFeedback returns every feedback message. Admin only.
func (c *Caller) ListFeedback(ctx context.Context) (FeedbackList, error) {
	var out FeedbackList
	err := c.do(ctx, call{endpoint: EndpointFeedback, method: http.MethodGet, requiresAuth: true}, &out)
	return out, err
}

// MarkFeedbackRead flips the read flag of a message.
func (c *Caller) MarkFeedbackRead(ctx context.Context, id int64, read bool) (Result, error) {
	var out Result
	body := struct {
		ID     int64 `json:"id"`
		IsRead bool  `json:"is_read"`
	}{ID: id, IsRead: read}
	err := c.do(ctx, call{endpoint: EndpointFeedback, method: http.MethodPut, body: body, requiresAuth: true}, &out)
	return out, err
}
