package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/seu-repo/pdv-varejo/internal/ports"
)

// SendGridSender delivers plain-text receipts through SendGrid.
type SendGridSender struct {
	fromEmail string
	fromName  string
	client    *sendgrid.Client
}

func NewSendGridSender(apiKey, fromEmail, fromName string) ports.EmailSender {
	return &SendGridSender{
		fromEmail: fromEmail,
		fromName:  fromName,
		client:    sendgrid.NewSendClient(apiKey),
	}
}

func (s *SendGridSender) Send(ctx context.Context, to, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	toEmail := mail.NewEmail("", to)

	message := mail.NewSingleEmail(from, subject, toEmail, body, "")

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid error: %w", err)
	}

	// SendGrid returns 2xx for success
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}

	return nil
}
