package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/ginjaninja78/invoicer/internal/config"
)

// Resend sends mail through the Resend API.
type Resend struct {
	from    string
	client  *resend.Client
	timeout time.Duration
}

// NewResend builds the Resend transport.
func NewResend(cfg config.MailConfig) *Resend {
	return &Resend{
		from:    cfg.Sender,
		client:  resend.NewClient(cfg.APIKey),
		timeout: cfg.Timeout,
	}
}

// Send delivers msg within the configured timeout.
func (r *Resend) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.client.Emails.SendWithContext(ctx, buildRequest(r.from, msg)); err != nil {
		return fmt.Errorf("resend send to %s: %w", msg.To, err)
	}
	return nil
}

func buildRequest(from string, msg Message) *resend.SendEmailRequest {
	req := &resend.SendEmailRequest{
		From:    from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Body,
	}
	if len(msg.Attachment.Data) > 0 {
		req.Attachments = []*resend.Attachment{{
			Content:  msg.Attachment.Data,
			Filename: msg.Attachment.Filename,
		}}
	}
	return req
}
