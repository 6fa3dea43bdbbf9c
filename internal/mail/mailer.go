// Package mail is the outbound email boundary. The rest of the service only
// sees the Mailer interface; delivery details (and delivery failures) stay
// behind it. There is no retry policy here — a failed send is surfaced to
// the caller as an error.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer sends a message, or fails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers mail through an SMTP relay.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

// NewSMTPMailer creates a mailer that connects to host:port with the given
// credentials. Empty username disables authentication (local relays).
func NewSMTPMailer(host string, port int, username, password, from string) (*SMTPMailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(username),
			gomail.WithPassword(password),
		)
	}

	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mail: creating SMTP client: %w", err)
	}

	return &SMTPMailer{client: client, from: from}, nil
}

// Send delivers one message. Blocks until the relay accepts or rejects it.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	email := gomail.NewMsg()
	if err := email.From(m.from); err != nil {
		return fmt.Errorf("mail: setting sender %q: %w", m.from, err)
	}
	if err := email.To(msg.To); err != nil {
		return fmt.Errorf("mail: setting recipient %q: %w", msg.To, err)
	}
	email.Subject(msg.Subject)
	email.SetBodyString(gomail.TypeTextHTML, msg.HTML)

	if err := m.client.DialAndSendWithContext(ctx, email); err != nil {
		return fmt.Errorf("mail: sending to %q: %w", msg.To, err)
	}

	return nil
}

// LogMailer logs messages instead of sending them. Used when SMTP is not
// configured, so local development works without a relay.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.Logger.Info("email not sent (SMTP not configured)",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
