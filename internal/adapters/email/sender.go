package email

import (
	"context"
	"errors"
	"time"
)

// DefaultFrom is used when neither the request nor the sender names a from address.
const DefaultFrom = "Congregation Portal <noreply@localhost>"

// ErrNoRecipients is returned for a request without any To address.
var ErrNoRecipients = errors.New("email has no recipients")

// SendRequest contains the data needed to send an email via an external provider.
type SendRequest struct {
	To      []string
	From    string // empty uses the sender's default
	Subject string
	HTML    string
	Text    string // plain-text alternative, optional
	ReplyTo string
	Tags    map[string]string // provider tags for delivery analytics
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender is the interface for sending emails via an external provider.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
