// internal/notification/email.go

package notification

import (
	"context"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailSender interface {
	SendEmail(ctx context.Context, msg *EmailMessage) error
}

// SendGridEmailSender delivers email through the SendGrid API.
type SendGridEmailSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewSendGridEmailSender(apiKey, from, fromName string) (EmailSender, error) {
	if apiKey == "" || from == "" {
		return nil, fmt.Errorf("incomplete SendGrid configuration")
	}
	if fromName == "" {
		fromName = "Emberly"
	}

	return &SendGridEmailSender{
		client:   sendgrid.NewSendClient(apiKey),
		from:     from,
		fromName: fromName,
	}, nil
}

func (s *SendGridEmailSender) SendEmail(ctx context.Context, msg *EmailMessage) error {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Plain, msg.HTML)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		log.Printf("Failed to send email to %s: %v", msg.To, err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("SendGrid rejected email to %s: status %d", msg.To, resp.StatusCode)
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}

	return nil
}

// MockEmailSender records emails instead of sending them. Used in tests and
// when no email provider is configured.
type MockEmailSender struct {
	SentEmails []*EmailMessage
}

func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{SentEmails: make([]*EmailMessage, 0)}
}

func (m *MockEmailSender) SendEmail(ctx context.Context, msg *EmailMessage) error {
	m.SentEmails = append(m.SentEmails, msg)
	log.Printf("Mock: Sending email to %s: %s", msg.To, msg.Subject)
	return nil
}
