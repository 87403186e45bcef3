package mailer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-gomail/gomail"

	"github.com/ginjaninja78/invoicer/internal/config"
)

// SMTP sends mail through an SMTP server with STARTTLS.
type SMTP struct {
	from    string
	dialer  *gomail.Dialer
	timeout time.Duration
}

// NewSMTP builds the SMTP transport. The dialer upgrades to TLS when the
// server offers STARTTLS, which Gmail on port 587 does.
func NewSMTP(cfg config.MailConfig) *SMTP {
	return &SMTP{
		from:    cfg.Sender,
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Sender, cfg.Password),
		timeout: cfg.Timeout,
	}
}

// Send delivers msg within the configured timeout. gomail has no context
// support; when ctx ends or the timeout passes first, the send is abandoned
// and ctx.Err() is returned.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	m := buildMessage(s.from, msg)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send to %s: %w", msg.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send to %s: %w", msg.To, ctx.Err())
	}
}

func buildMessage(from string, msg Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if len(msg.Attachment.Data) > 0 {
		data := msg.Attachment.Data
		m.Attach(msg.Attachment.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
			gomail.SetHeader(map[string][]string{
				"Content-Type": {"application/pdf"},
			}),
		)
	}
	return m
}
