// Package mail composes salon notifications and delivers them over SMTP.
package mail

import "errors"

// Notification kinds.
const (
	KindBooking  = "booking"
	KindFeedback = "feedback"
)

// Message is one e-mail as it travels through the job queue.
type Message struct {
	Kind    string   `json:"kind"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text,omitempty"`
}

// Validate checks the fields every delivery needs.
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return errors.New("mail: missing recipient")
	}
	if m.Subject == "" {
		return errors.New("mail: missing subject")
	}
	if m.HTML == "" && m.Text == "" {
		return errors.New("mail: empty body")
	}
	return nil
}
