package mail

import (
	"context"

	"go.uber.org/zap"

	"github.com/platformkit/account-service/internal/core/port"
	"github.com/platformkit/account-service/internal/infra/logger"
)

// LoggingNotifier records dispatch events without delivering them. Used in
// development when no SMTP relay is configured.
type LoggingNotifier struct {
	logger *zap.Logger
}

// NewLoggingNotifier constructs a notifier backed by structured logging.
func NewLoggingNotifier(log *zap.Logger) *LoggingNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingNotifier{logger: log}
}

func (n *LoggingNotifier) SendVerificationEmail(_ context.Context, payload port.VerificationNotification) error {
	n.logger.Info("dispatch verification email",
		zap.String("email", logger.MaskEmail(payload.Email)),
		zap.String("username", payload.Username),
		zap.Time("expires_at", payload.ExpiresAt),
	)
	return nil
}

func (n *LoggingNotifier) SendPasswordResetEmail(_ context.Context, payload port.ResetNotification) error {
	n.logger.Info("dispatch password reset email",
		zap.String("email", logger.MaskEmail(payload.Email)),
		zap.Time("expires_at", payload.ExpiresAt),
	)
	return nil
}

var _ port.Notifier = (*LoggingNotifier)(nil)
