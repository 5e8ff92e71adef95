package port

import (
	"context"

	"github.com/platformkit/account-service/internal/core/domain"
)

// EventPublisher publishes account lifecycle events to the message bus.
// Publishing is best effort: callers log failures and continue.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishEmailVerified(ctx context.Context, event domain.EmailVerifiedEvent) error
	PublishPasswordResetRequested(ctx context.Context, event domain.PasswordResetRequestedEvent) error
	PublishPasswordChanged(ctx context.Context, event domain.PasswordChangedEvent) error
}
