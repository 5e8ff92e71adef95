package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"go.uber.org/zap"

	"github.com/platformkit/account-service/internal/core/port"
	"github.com/platformkit/account-service/internal/infra/logger"
)

// Config carries SMTP connection settings and the public base URL used to
// build verification and reset links.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	BaseURL  string
}

// SMTPMailer delivers verification and reset links over SMTP.
type SMTPMailer struct {
	cfg       Config
	logger    *zap.Logger
	templates *template.Template
	send      func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer constructs a mailer. Templates are parsed once here so a
// broken template fails startup instead of the first request.
func NewSMTPMailer(cfg Config, log *zap.Logger) (*SMTPMailer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}

	templates, err := template.New("mail").Parse(verificationTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse verification template: %w", err)
	}
	if _, err := templates.New("reset").Parse(resetTemplate); err != nil {
		return nil, fmt.Errorf("parse reset template: %w", err)
	}

	return &SMTPMailer{
		cfg:       cfg,
		logger:    log,
		templates: templates,
		send:      smtp.SendMail,
	}, nil
}

// SendVerificationEmail delivers the email verification link.
func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, n port.VerificationNotification) error {
	link := fmt.Sprintf("%s/api/v1/auth/verify/%s", m.cfg.BaseURL, n.Token)

	body, err := m.render("mail", verificationData{
		Name:      displayName(n.FirstName, n.Username),
		Link:      link,
		ExpiresAt: n.ExpiresAt.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}

	if err := m.deliver(n.Email, "Verify your email address", body); err != nil {
		m.logger.Error("send verification email",
			zap.String("email", logger.MaskEmail(n.Email)),
			zap.Error(err),
		)
		return fmt.Errorf("send verification email: %w", err)
	}

	m.logger.Info("verification email sent", zap.String("email", logger.MaskEmail(n.Email)))
	return nil
}

// SendPasswordResetEmail delivers the password reset link.
func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, n port.ResetNotification) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.cfg.BaseURL, n.Token)

	body, err := m.render("reset", resetData{
		Name:      displayName(n.FirstName, n.Username),
		Link:      link,
		ExpiresAt: n.ExpiresAt.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return fmt.Errorf("render reset email: %w", err)
	}

	if err := m.deliver(n.Email, "Reset your password", body); err != nil {
		m.logger.Error("send password reset email",
			zap.String("email", logger.MaskEmail(n.Email)),
			zap.Error(err),
		)
		return fmt.Errorf("send password reset email: %w", err)
	}

	m.logger.Info("password reset email sent", zap.String("email", logger.MaskEmail(n.Email)))
	return nil
}

func (m *SMTPMailer) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (m *SMTPMailer) deliver(to, subject, body string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		m.cfg.From, to, subject, body,
	))

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)
	return m.send(addr, auth, m.cfg.From, []string{to}, msg)
}

func displayName(firstName, username string) string {
	if firstName != "" {
		return firstName
	}
	return username
}

var _ port.Notifier = (*SMTPMailer)(nil)
