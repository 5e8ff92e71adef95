package domain

import "time"

// AccountRegisteredEvent is published after a new account and its
// verification record have been persisted.
type AccountRegisteredEvent struct {
	EventID      string         `json:"event_id"`
	UserID       string         `json:"user_id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	RegisteredAt time.Time      `json:"registered_at"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// EmailVerifiedEvent is published when a verification token is consumed and
// the owning account activated.
type EmailVerifiedEvent struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	VerifiedAt time.Time `json:"verified_at"`
}

// PasswordResetRequestedEvent is published when a reset credential is issued.
// Destination carries the masked email only; raw contact details never enter
// the event stream.
type PasswordResetRequestedEvent struct {
	EventID     string         `json:"event_id"`
	UserID      string         `json:"user_id"`
	RequestedAt time.Time      `json:"requested_at"`
	Destination string         `json:"destination"`
	ExpiresAt   time.Time      `json:"expires_at"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// PasswordChangedEvent is published after a reset credential has been
// consumed and the password hash replaced.
type PasswordChangedEvent struct {
	EventID   string         `json:"event_id"`
	UserID    string         `json:"user_id"`
	ChangedAt time.Time      `json:"changed_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}
