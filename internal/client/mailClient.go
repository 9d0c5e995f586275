package client

import (
	"context"
	"fmt"

	"prepkit-store/internal/config"

	"gopkg.in/gomail.v2"
)

type Mail struct {
	To      string
	Subject string
	HTML    string
}

type MailSender interface {
	Send(ctx context.Context, m *Mail) error
}

type smtpSenderImpl struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.SMTP) MailSender {
	return &smtpSenderImpl{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpSenderImpl) Send(_ context.Context, m *Mail) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/html", m.HTML)

	if err := s.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", m.To, err)
	}
	return nil
}
