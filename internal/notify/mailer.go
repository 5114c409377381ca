// internal/notify/mailer.go
package notify

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message is one outbound email. From is an RFC 5322 address such as
// "Wealthy Elephant <onboarding@resend.dev>".
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridMailer sends through the SendGrid v3 API.
type SendGridMailer struct {
	client *sendgrid.Client
	log    zerolog.Logger
}

func NewSendGridMailer(apiKey string, log zerolog.Logger) *SendGridMailer {
	log.Info().Msg("✅ Email service initialized with SendGrid")
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey), log: log}
}

func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	from, err := parseAddress(msg.From)
	if err != nil {
		return err
	}
	to, err := parseAddress(msg.To)
	if err != nil {
		return err
	}

	text := msg.Text
	if text == "" {
		text = msg.Subject
	}
	email := sgmail.NewSingleEmail(from, msg.Subject, to, text, msg.HTML)

	response, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		m.log.Error().Int("status", response.StatusCode).Str("body", response.Body).Msg("❌ SendGrid returned error status")
		return fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}
	return nil
}

func parseAddress(raw string) (*sgmail.Email, error) {
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", raw, err)
	}
	return sgmail.NewEmail(addr.Name, addr.Address), nil
}

// ConsoleMailer logs instead of sending. Used when SENDGRID_API_KEY is unset.
type ConsoleMailer struct {
	Log zerolog.Logger
}

func (m ConsoleMailer) Send(_ context.Context, msg Message) error {
	m.Log.Info().
		Str("from", msg.From).
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("html_bytes", len(msg.HTML)).
		Msg("📧 Email NOT sent (console mode)")
	return nil
}

var (
	_ Mailer = (*SendGridMailer)(nil)
	_ Mailer = ConsoleMailer{}
)
