package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"newsdesk/logger"

	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// Mailer delivers a single HTML message.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
}

type SMTPMailer struct {
	cfg    SMTPConfig
	dialer *mail.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.Timeout = 20 * time.Second
	d.SSL = cfg.Port == 465
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return &SMTPMailer{cfg: cfg, dialer: d}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, html string) error {
	if to == "" || subject == "" || html == "" {
		return fmt.Errorf("missing required email parameters: to, subject, or html")
	}

	msg := mail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.Username, m.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	errCh := make(chan error, 1)
	go func() { errCh <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Log.Error("Failed to send email", zap.String("to", to), zap.Error(err))
			return fmt.Errorf("sending email: %w", err)
		}
	case <-ctx.Done():
		return ctx.Err()
	}

	logger.Log.Info("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// LogMailer stands in when no SMTP credentials are configured. Bodies carry
// OTP codes, so they are only logged at debug level.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, html string) error {
	logger.Log.Warn("SMTP not configured, email not sent",
		zap.String("to", to),
		zap.String("subject", subject))
	logger.Log.Debug("Unsent email body", zap.String("to", to), zap.String("body", html))
	return nil
}

// New picks the SMTP mailer when credentials are present.
func New(cfg SMTPConfig) Mailer {
	if cfg.Username == "" || cfg.Password == "" {
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}
