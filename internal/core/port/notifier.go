package port

import (
	"context"
	"time"
)

// VerificationNotification carries the data needed to deliver an email
// verification link. Token is the raw credential; it exists only in the
// outgoing message, never at rest.
type VerificationNotification struct {
	Email     string
	Username  string
	FirstName string
	Token     string
	ExpiresAt time.Time
}

// ResetNotification carries the data needed to deliver a password reset link.
type ResetNotification struct {
	Email     string
	Username  string
	FirstName string
	Token     string
	ExpiresAt time.Time
}

// Notifier delivers credential-bearing messages to account owners. Delivery
// is fire-and-forget from the caller's perspective; a failed send must not
// fail the originating request.
type Notifier interface {
	SendVerificationEmail(ctx context.Context, n VerificationNotification) error
	SendPasswordResetEmail(ctx context.Context, n ResetNotification) error
}
