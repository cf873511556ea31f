// Package mail renders the service's email templates and delivers them
// through the configured driver.
package mail

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"TaskFlow/internal/config"
)

// Message is one outgoing email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender picks the driver named by MAIL_DRIVER.
func NewSender(cfg *config.AppConfig, logger *zap.Logger) (Sender, error) {
	switch cfg.Mail.Driver {
	case config.MailDriverSMTP:
		return NewSMTPSender(cfg.Mail), nil
	case config.MailDriverResend:
		return NewResendSender(cfg.Mail), nil
	case config.MailDriverLog:
		return NewLogSender(logger), nil
	}
	return nil, errors.Errorf("unknown mail driver %q", cfg.Mail.Driver)
}

// Mailer renders a named template and sends it to each recipient separately.
type Mailer struct {
	sender   Sender
	renderer *Renderer
	logger   *zap.Logger
}

func NewMailer(sender Sender, renderer *Renderer, logger *zap.Logger) *Mailer {
	return &Mailer{sender: sender, renderer: renderer, logger: logger.Named("mail")}
}

// Send renders template and mails it to to. It returns the first delivery
// error after attempting every recipient.
func (m *Mailer) Send(ctx context.Context, to []string, subject, template string, data interface{}) error {
	html, text, err := m.renderer.Render(template, data)
	if err != nil {
		return err
	}

	var firstErr error
	for _, addr := range to {
		if addr == "" {
			continue
		}
		msg := Message{To: []string{addr}, Subject: subject, HTML: html, Text: text}
		if err := m.sender.Send(ctx, msg); err != nil {
			m.logger.Warn("email delivery failed",
				zap.String("to", addr), zap.String("template", template), zap.Error(err))
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "send %s to %s", template, addr)
			}
			continue
		}
		m.logger.Debug("email sent", zap.String("to", addr), zap.String("template", template))
	}
	return firstErr
}
