package api

// Role is the access tier of a salon account.
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// User is the identity record owned by the remote API.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the account may use the dashboard.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// AuthResponse is the answer of the login and register actions.
type AuthResponse struct {
	Success      bool   `json:"success"`
	SessionToken string `json:"session_token,omitempty"`
	UserID       int64  `json:"user_id,omitempty"`
	User         *User  `json:"user,omitempty"`
	Error        string `json:"error,omitempty"`
}

// Registration carries the fields of the register action.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Identity is the decoded current-user answer: either a user or a message
// explaining why there is none.
type Identity struct {
	User    *User
	Message string
}

// Authenticated reports whether the identity carries a user.
func (i Identity) Authenticated() bool {
	return i.User != nil
}

// Result is the generic mutation answer.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Err converts a domain rejection into an error.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return rejection(r.Error)
}

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

// Valid reports whether the status is one the API accepts.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// Booking is a salon appointment.
type Booking struct {
	ID          int64         `json:"id"`
	ClientName  string        `json:"client_name"`
	Phone       string        `json:"phone"`
	Service     string        `json:"service"`
	Master      string        `json:"master"`
	BookingDate string        `json:"booking_date"`
	BookingTime string        `json:"booking_time"`
	Comment     string        `json:"comment,omitempty"`
	Status      BookingStatus `json:"status"`
	CreatedAt   Timestamp     `json:"created_at"`
}

// BookingInput creates a booking.
type BookingInput struct {
	ClientName  string `json:"client_name"`
	Phone       string `json:"phone"`
	Service     string `json:"service"`
	Master      string `json:"master"`
	BookingDate string `json:"booking_date"`
	BookingTime string `json:"booking_time"`
	Comment     string `json:"comment,omitempty"`
}

// BookingCreated answers a booking creation.
type BookingCreated struct {
	Result
	BookingID int64 `json:"booking_id,omitempty"`
}

// BookingList answers a booking list read.
type BookingList struct {
	Bookings []Booking `json:"bookings"`
	Error    string    `json:"error,omitempty"`
}

// Err converts an error payload into an error.
func (l BookingList) Err() error {
	if l.Error == "" {
		return nil
	}
	return rejection(l.Error)
}

// BookingOne answers a single booking read.
type BookingOne struct {
	Booking *Booking `json:"booking"`
	Error   string   `json:"error,omitempty"`
}

// Err converts an error payload or a missing booking into an error.
func (b BookingOne) Err() error {
	if b.Error == "" && b.Booking != nil {
		return nil
	}
	return rejection(b.Error)
}

// Review is a client testimonial.
type Review struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	Approved  bool      `json:"approved"`
	CreatedAt Timestamp `json:"created_at"`
}

// ReviewInput creates a review.
type ReviewInput struct {
	Author  string `json:"author"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ReviewCreated answers a review creation.
type ReviewCreated struct {
	Result
	ReviewID int64 `json:"review_id,omitempty"`
}

// ReviewList answers a review list read.
type ReviewList struct {
	Reviews []Review `json:"reviews"`
	Error   string   `json:"error,omitempty"`
}

// Err converts an error payload into an error.
func (l ReviewList) Err() error {
	if l.Error == "" {
		return nil
	}
	return rejection(l.Error)
}

// Feedback is a message left through the contacts form.
type Feedback struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt Timestamp `json:"created_at"`
}

// FeedbackInput creates a feedback message.
type FeedbackInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// FeedbackCreated answers a feedback creation.
type FeedbackCreated struct {
	Result
	FeedbackID int64 `json:"feedback_id,omitempty"`
}

// FeedbackList answers a feedback list read.
type FeedbackList struct {
	Feedback []Feedback `json:"feedback"`
	Error    string     `json:"error,omitempty"`
}

// Err converts an error payload into an error.
func (l FeedbackList) Err() error {
	if l.Error == "" {
		return nil
	}
	return rejection(l.Error)
}
