package mail

import (
	"context"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/platformkit/account-service/internal/core/port"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestMailer(t *testing.T, capture *capturedMail) *SMTPMailer {
	t.Helper()

	mailer, err := NewSMTPMailer(Config{
		Host:     "smtp.example.com",
		Port:     "587",
		Username: "relay@example.com",
		Password: "secret",
		BaseURL:  "https://accounts.example.com",
	}, nil)
	if err != nil {
		t.Fatalf("NewSMTPMailer returned error: %v", err)
	}

	mailer.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		capture.addr = addr
		capture.from = from
		capture.to = to
		capture.msg = string(msg)
		return nil
	}

	return mailer
}

func TestSMTPMailer_SendVerificationEmail(t *testing.T) {
	var captured capturedMail
	mailer := newTestMailer(t, &captured)

	notification := port.VerificationNotification{
		Email:     "alice@example.com",
		Username:  "alice",
		FirstName: "Alice",
		Token:     "tok-123",
		ExpiresAt: time.Date(2025, time.March, 11, 12, 0, 0, 0, time.UTC),
	}

	if err := mailer.SendVerificationEmail(context.Background(), notification); err != nil {
		t.Fatalf("SendVerificationEmail returned error: %v", err)
	}

	if captured.addr != "smtp.example.com:587" {
		t.Fatalf("unexpected relay address: %s", captured.addr)
	}
	if len(captured.to) != 1 || captured.to[0] != "alice@example.com" {
		t.Fatalf("unexpected recipients: %v", captured.to)
	}
	if !strings.Contains(captured.msg, "https://accounts.example.com/api/v1/auth/verify/tok-123") {
		t.Fatal("message must carry the verification link")
	}
	if !strings.Contains(captured.msg, "Alice") {
		t.Fatal("message must greet the recipient by first name")
	}
	if !strings.Contains(captured.msg, "Subject: Verify your email address") {
		t.Fatal("unexpected subject line")
	}
}

func TestSMTPMailer_SendPasswordResetEmail(t *testing.T) {
	var captured capturedMail
	mailer := newTestMailer(t, &captured)

	notification := port.ResetNotification{
		Email:     "alice@example.com",
		Username:  "alice",
		Token:     "tok-456",
		ExpiresAt: time.Date(2025, time.March, 10, 13, 0, 0, 0, time.UTC),
	}

	if err := mailer.SendPasswordResetEmail(context.Background(), notification); err != nil {
		t.Fatalf("SendPasswordResetEmail returned error: %v", err)
	}

	if !strings.Contains(captured.msg, "https://accounts.example.com/reset-password?token=tok-456") {
		t.Fatal("message must carry the reset link")
	}
	if !strings.Contains(captured.msg, "Subject: Reset your password") {
		t.Fatal("unexpected subject line")
	}
	// No first name was provided, so the username greets instead.
	if !strings.Contains(captured.msg, "alice") {
		t.Fatal("message must greet the recipient")
	}
}

func TestSMTPMailer_FromDefaultsToUsername(t *testing.T) {
	var captured capturedMail
	mailer := newTestMailer(t, &captured)

	notification := port.VerificationNotification{
		Email:     "bob@example.com",
		Username:  "bob",
		Token:     "tok-789",
		ExpiresAt: time.Now().UTC(),
	}
	if err := mailer.SendVerificationEmail(context.Background(), notification); err != nil {
		t.Fatalf("SendVerificationEmail returned error: %v", err)
	}

	if captured.from != "relay@example.com" {
		t.Fatalf("expected sender to fall back to the relay username, got %s", captured.from)
	}
}
