package domain

import "time"

// Validity windows for issued credentials, measured from the record's
// CreatedAt timestamp.
const (
	VerificationWindow = 24 * time.Hour
	ResetWindow        = time.Hour
)

// Expired reports whether a credential created at createdAt is past its
// validity window at the reference time now. The comparison is strict:
// a credential exactly window old is still valid.
func Expired(createdAt, now time.Time, window time.Duration) bool {
	return now.Sub(createdAt) > window
}
