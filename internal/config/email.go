package config

import "github.com/pkg/errors"

const (
	MailDriverSMTP   = "smtp"
	MailDriverResend = "resend"
	MailDriverLog    = "log"
)

type EmailConfig struct {
	Driver string
	From   string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	ResendAPIKey string
}

func (c EmailConfig) validate() error {
	switch c.Driver {
	case MailDriverSMTP:
		if c.SMTPHost == "" {
			return errors.New("SMTP_HOST not set")
		}
	case MailDriverResend:
		if c.ResendAPIKey == "" {
			return errors.New("RESEND_API_KEY not set")
		}
	case MailDriverLog:
	default:
		return errors.Errorf("unknown MAIL_DRIVER %q", c.Driver)
	}
	if c.From == "" {
		return errors.New("MAIL_FROM not set")
	}
	return nil
}
