package port

import (
	"context"
	"time"

	"github.com/platformkit/account-service/internal/core/domain"
)

// TokenRepository manages verification and password reset records. The
// MarkVerified and ConsumeReset operations are compare-and-set updates: when
// the record has already transitioned they return
// repository.ErrAlreadyConsumed so that concurrent callers cannot both
// succeed.
type TokenRepository interface {
	CreateVerification(ctx context.Context, record domain.VerificationRecord) error
	GetVerificationByHash(ctx context.Context, hash string) (*domain.VerificationRecord, error)
	MarkVerified(ctx context.Context, id string, at time.Time) error
	RotateVerification(ctx context.Context, userID string, newHash string, at time.Time) error

	CreateReset(ctx context.Context, record domain.ResetRecord) error
	GetResetByHash(ctx context.Context, hash string) (*domain.ResetRecord, error)
	ConsumeReset(ctx context.Context, id string, at time.Time) error
	RevokeActiveResets(ctx context.Context, userID string, at time.Time) (int, error)
}
