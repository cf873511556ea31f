package mail

import (
	"context"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"

	"TaskFlow/internal/config"
)

type ResendSender struct {
	client *resend.Client
	from   string
}

func NewResendSender(cfg config.EmailConfig) *ResendSender {
	return &ResendSender{client: resend.NewClient(cfg.ResendAPIKey), from: cfg.From}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return errors.Wrap(err, "resend")
	}
	return nil
}
