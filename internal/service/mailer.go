package service

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/ticketflow/backend/internal/config"
)

// Mailer delivers transactional mail. The SMTP implementation is used in
// production; the log implementation stands in when no credentials are set.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, name, code string) error
}

// NewMailer picks an implementation from configuration.
func NewMailer(cfg config.SMTPConfig, logger *zap.Logger) Mailer {
	if cfg.Username == "" {
		logger.Info("smtp credentials not set, verification codes will be logged")
		return &logMailer{logger: logger}
	}
	return &smtpMailer{cfg: cfg}
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

func (m *smtpMailer) SendVerificationCode(_ context.Context, to, name, code string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: Verify your email\r\n\r\nHi %s,\r\n\r\nYour verification code is %s. It expires shortly.\r\n",
		m.cfg.FromName, m.cfg.From, to, name, code)
	return smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg))
}

type logMailer struct {
	logger *zap.Logger
}

func (m *logMailer) SendVerificationCode(_ context.Context, to, _ string, code string) error {
	m.logger.Info("verification code issued",
		zap.String("to", to),
		zap.String("code", code))
	return nil
}
