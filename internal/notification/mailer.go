package notification

import (
	"context"
	"fmt"
	"time"

	"tenantsync/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// AlertSender delivers an operational alert to the on-call address.
type AlertSender interface {
	SendAlert(ctx context.Context, subject, body string) error
}

// SMTPAlertSender implements AlertSender over a direct SMTP connection via
// go-mail.
type SMTPAlertSender struct {
	cfg config.AlertConfig
}

// NewSMTPAlertSender creates an SMTP alert sender from the alert config.
func NewSMTPAlertSender(cfg config.AlertConfig) *SMTPAlertSender {
	return &SMTPAlertSender{cfg: cfg}
}

// SendAlert sends a plain-text alert email.
func (s *SMTPAlertSender) SendAlert(ctx context.Context, subject, body string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.cfg.GetAlertFromName(), s.cfg.GetAlertFromAddress()); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(s.cfg.GetAlertToAddress()); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextPlain, body)

	client, err := gomail.NewClient(s.cfg.GetSMTPHost(),
		gomail.WithPort(s.cfg.GetSMTPPort()),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.GetSMTPUsername()),
		gomail.WithPassword(s.cfg.GetSMTPPassword()),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
