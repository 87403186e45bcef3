// Package mailer sends generated invoices to their recipients.
//
// Two transports are provided:
//   - SMTP: Gmail with an app password by default (smtp.gmail.com:587,
//     STARTTLS), or any server set through the configuration
//   - Resend: the Resend HTTP API, for senders without SMTP access
//
// A send either succeeds or returns an error for that one recipient. There
// is no retry.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ginjaninja78/invoicer/internal/config"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrNoRecipient is returned for a message without a To address.
	ErrNoRecipient = errors.New("no recipient address")

	// ErrNotConfigured is returned when the transport has no credentials.
	ErrNotConfigured = errors.New("mail transport not configured")
)

// =============================================================================
// Message
// =============================================================================

// Attachment is a file sent with a message.
type Attachment struct {
	Filename string
	Data     []byte
}

// Message is one invoice email.
type Message struct {
	To         string
	Subject    string
	Body       string
	Attachment Attachment
}

// withTimeout bounds ctx by d. A zero d leaves ctx unbounded.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return ErrNoRecipient
	}
	return nil
}

// =============================================================================
// Interface
// =============================================================================

// Mailer delivers one message. Implementations are safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the transport selected by the configuration.
func New(cfg config.MailConfig) (Mailer, error) {
	switch cfg.Transport {
	case "smtp", "":
		if cfg.Sender == "" || cfg.Password == "" {
			return nil, fmt.Errorf("%w: set GMAIL_SENDER and GMAIL_APP_PASSWORD", ErrNotConfigured)
		}
		return NewSMTP(cfg), nil
	case "resend":
		if cfg.Sender == "" || cfg.APIKey == "" {
			return nil, fmt.Errorf("%w: set GMAIL_SENDER and RESEND_API_KEY", ErrNotConfigured)
		}
		return NewResend(cfg), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}
