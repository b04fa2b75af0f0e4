// Package notify sends templated email to drivers. Delivery is best-effort:
// a send failure is logged by the caller and never fails the operation that
// triggered it.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/driveops/driveops/internal/config"
)

type Template string

const (
	TemplateCredentials   Template = "credentials"
	TemplateStatusChanged Template = "status-changed"
)

// Notifier dispatches a templated message to an address.
type Notifier interface {
	Send(ctx context.Context, to string, template Template, vars map[string]string) error
}

type Mailer struct {
	client *mail.Client
	from   string
}

func NewMailer(cfg config.SMTPConfig) (*Mailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &Mailer{client: client, from: cfg.From}, nil
}

func (m *Mailer) Send(ctx context.Context, to string, template Template, vars map[string]string) error {
	subject, body, err := render(template, vars)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return m.client.DialAndSendWithContext(ctx, msg)
}

func render(template Template, vars map[string]string) (subject, body string, err error) {
	switch template {
	case TemplateCredentials:
		subject = "Your driver account"
		body = fmt.Sprintf(
			"Hi %s,\n\nYour driver account is ready. Sign in with:\n\nEmail: %s\nTemporary password: %s\n\nYou will be asked to complete onboarding on first login.\n",
			vars["first_name"], vars["email"], vars["password"],
		)
	case TemplateStatusChanged:
		subject = "Your account status changed"
		body = fmt.Sprintf(
			"Hi %s,\n\nYour account status is now %s.\n",
			vars["first_name"], strings.ToLower(vars["status"]),
		)
	default:
		return "", "", fmt.Errorf("unknown template %q", template)
	}
	return subject, body, nil
}
