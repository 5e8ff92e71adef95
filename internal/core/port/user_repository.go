package port

import (
	"context"
	"time"

	"github.com/platformkit/account-service/internal/core/domain"
)

// UserRepository exposes persistence behavior for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsWithUsername(ctx context.Context, username string) (bool, error)
	ExistsWithEmail(ctx context.Context, email string) (bool, error)
	Activate(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id string, passwordHash string, passwordAlgo string, changedAt time.Time) error
}
