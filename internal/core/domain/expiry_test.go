package domain

import (
	"testing"
	"time"
)

func TestExpired(t *testing.T) {
	createdAt := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		now     time.Time
		window  time.Duration
		expired bool
	}{
		{
			name:    "inside window",
			now:     createdAt.Add(23 * time.Hour),
			window:  VerificationWindow,
			expired: false,
		},
		{
			name:    "exactly at window boundary",
			now:     createdAt.Add(VerificationWindow),
			window:  VerificationWindow,
			expired: false,
		},
		{
			name:    "one nanosecond past boundary",
			now:     createdAt.Add(VerificationWindow + time.Nanosecond),
			window:  VerificationWindow,
			expired: true,
		},
		{
			name:    "reset window exactly at boundary",
			now:     createdAt.Add(ResetWindow),
			window:  ResetWindow,
			expired: false,
		},
		{
			name:    "reset window exceeded",
			now:     createdAt.Add(ResetWindow + time.Second),
			window:  ResetWindow,
			expired: true,
		},
		{
			name:    "clock before creation",
			now:     createdAt.Add(-time.Minute),
			window:  ResetWindow,
			expired: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Expired(createdAt, tc.now, tc.window); got != tc.expired {
				t.Fatalf("Expired(%v, %v, %v) = %v, want %v", createdAt, tc.now, tc.window, got, tc.expired)
			}
		})
	}
}
