package domain

import "time"

// User mirrors the persisted representation in the users table. Accounts are
// created inactive and become active only once the email verification
// completes.
type User struct {
	ID                 string
	Username           string
	Email              string
	FirstName          string
	LastName           string
	PasswordHash       string
	PasswordAlgo       string
	IsActive           bool
	RegisteredAt       time.Time
	LastPasswordChange time.Time
}

// VerificationRecord tracks email verification state for a single user. Each
// user has at most one record; the verified transition is terminal and
// VerifiedAt is immutable once set. Records are never deleted.
type VerificationRecord struct {
	ID         string
	UserID     string
	TokenHash  string
	CreatedAt  time.Time
	VerifiedAt *time.Time
	Verified   bool
}

// ResetRecord is a single-use password reset credential. Used transitions
// false to true exactly once. RevokedAt marks records superseded by a newer
// reset request without consuming them.
type ResetRecord struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
	UsedAt    *time.Time
	Used      bool
	RevokedAt *time.Time
}
