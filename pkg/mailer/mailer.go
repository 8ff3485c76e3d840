package mailer

import (
	"context"

	gomail "gopkg.in/gomail.v2"

	"github.com/avolkov/orderflow-backend/pkg/config"
	"github.com/avolkov/orderflow-backend/pkg/logger"
)

// Message is a plain-text email waiting to be delivered.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages. The notification worker depends on this
// interface so tests can capture outgoing mail.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer sends plain-text email over SMTP.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logg   *logger.Logger
}

// New builds a Mailer from SMTP config. When the host is empty the mailer
// logs and drops messages instead of failing, so local environments work
// without an SMTP server.
func New(cfg config.SMTPConfig, logg *logger.Logger) *Mailer {
	m := &Mailer{from: cfg.DefaultFrom, logg: logg}
	if cfg.Host == "" {
		return m
	}
	m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if m.from == "" {
		m.from = cfg.Username
	}
	return m
}

func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if m.dialer == nil {
		if m.logg != nil {
			logCtx := m.logg.WithFields(ctx, map[string]any{"to": msg.To, "subject": msg.Subject})
			m.logg.Warn(logCtx, "smtp not configured, dropping email")
		}
		return nil
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.To)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.Body)

	if err := m.dialer.DialAndSend(mail); err != nil {
		return err
	}
	if m.logg != nil {
		logCtx := m.logg.WithFields(ctx, map[string]any{"to": msg.To, "subject": msg.Subject})
		m.logg.Info(logCtx, "email sent")
	}
	return nil
}
