package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/platformkit/account-service/internal/core/domain"
	"github.com/platformkit/account-service/internal/core/port"
	"github.com/platformkit/account-service/internal/infra/logger"
	"github.com/platformkit/account-service/internal/infra/security"
	"github.com/platformkit/account-service/internal/repository"
)

var (
	// ErrResetNotFound indicates no reset record matches the supplied token.
	ErrResetNotFound = errors.New("password reset token invalid")
	// ErrResetAlreadyUsed indicates the reset record was consumed or superseded.
	ErrResetAlreadyUsed = errors.New("password reset token already used")
	// ErrResetExpired indicates the token exists but its validity window has passed.
	ErrResetExpired = errors.New("password reset token expired")
	// ErrNewPasswordInvalid indicates the replacement password fails policy checks.
	ErrNewPasswordInvalid = errors.New("new password does not meet complexity requirements")
)

// PasswordResetService coordinates password reset initiation and completion.
type PasswordResetService struct {
	users             port.UserRepository
	tokens            port.TokenRepository
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger
	now               func() time.Time
	resetTTL          time.Duration
}

// NewPasswordResetService constructs a PasswordResetService.
func NewPasswordResetService(users port.UserRepository, tokens port.TokenRepository, events port.EventPublisher, validator *security.PasswordValidator, log *zap.Logger) *PasswordResetService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordResetService{
		users:             users,
		tokens:            tokens,
		events:            events,
		passwordValidator: validator,
		logger:            log,
		now:               time.Now,
		resetTTL:          domain.ResetWindow,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *PasswordResetService) WithClock(now func() time.Time) *PasswordResetService {
	if now != nil {
		s.now = now
	}
	return s
}

// WithResetTTL overrides the reset validity window.
func (s *PasswordResetService) WithResetTTL(ttl time.Duration) *PasswordResetService {
	if ttl > 0 {
		s.resetTTL = ttl
	}
	return s
}

// IssuedReset captures the credential generated for a reset request. Token
// holds the raw value for outbound delivery.
type IssuedReset struct {
	User      domain.User
	Token     string
	ExpiresAt time.Time
}

// RequestReset issues a fresh reset credential for the account matching the
// email, revoking any outstanding ones first. Unknown or inactive accounts
// return (nil, nil) after equivalent work so response timing does not reveal
// whether the address is registered. Callers must present the same success
// response in both cases.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (*IssuedReset, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}

	now := s.now().UTC()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.decoyIssue()
			return nil, nil
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !user.IsActive {
		s.decoyIssue()
		return nil, nil
	}

	revoked, err := s.tokens.RevokeActiveResets(ctx, user.ID, now)
	if err != nil {
		return nil, fmt.Errorf("revoke outstanding resets: %w", err)
	}
	if revoked > 0 {
		s.logger.Info("superseded outstanding reset records",
			zap.String("user_id", user.ID),
			zap.Int("revoked", revoked),
		)
	}

	rawToken := security.NewActionToken()
	record := domain.ResetRecord{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: security.HashToken(rawToken),
		CreatedAt: now,
	}
	if err := s.tokens.CreateReset(ctx, record); err != nil {
		return nil, fmt.Errorf("store reset record: %w", err)
	}

	expiresAt := now.Add(s.resetTTL)

	if s.events != nil {
		event := domain.PasswordResetRequestedEvent{
			EventID:     uuid.NewString(),
			UserID:      user.ID,
			RequestedAt: now,
			Destination: logger.MaskEmail(user.Email),
			ExpiresAt:   expiresAt,
		}
		if err := s.events.PublishPasswordResetRequested(ctx, event); err != nil {
			s.logger.Warn("publish password reset requested event", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return &IssuedReset{User: *user, Token: rawToken, ExpiresAt: expiresAt}, nil
}

// decoyIssue performs the same token generation work done for a real account
// so the unknown-address path costs roughly the same.
func (s *PasswordResetService) decoyIssue() {
	_ = security.HashToken(security.NewActionToken())
}

// ResetOutcome describes a completed password reset.
type ResetOutcome struct {
	UserID    string
	ChangedAt time.Time
}

// ConfirmReset consumes a reset token and replaces the account password. The
// record state is checked before the password so a used or expired token is
// reported even when the new password is invalid.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, rawToken, newPassword string) (*ResetOutcome, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, ErrResetNotFound
	}

	record, err := s.tokens.GetResetByHash(ctx, security.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResetNotFound
		}
		return nil, fmt.Errorf("lookup reset record: %w", err)
	}

	if record.Used || record.RevokedAt != nil {
		return nil, ErrResetAlreadyUsed
	}

	now := s.now().UTC()
	if domain.Expired(record.CreatedAt, now, s.resetTTL) {
		return nil, ErrResetExpired
	}

	if err := s.passwordValidator.Validate(newPassword); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNewPasswordInvalid, err)
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResetNotFound
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.tokens.ConsumeReset(ctx, record.ID, now); err != nil {
		if errors.Is(err, repository.ErrAlreadyConsumed) {
			return nil, ErrResetAlreadyUsed
		}
		return nil, fmt.Errorf("consume reset record: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, passwordHash, passwordAlgoArgon2id, now); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}

	// Any other outstanding resets for the account die with this one.
	if _, err := s.tokens.RevokeActiveResets(ctx, user.ID, now); err != nil {
		s.logger.Warn("revoke remaining reset records", zap.String("user_id", user.ID), zap.Error(err))
	}

	if s.events != nil {
		event := domain.PasswordChangedEvent{
			EventID:   uuid.NewString(),
			UserID:    user.ID,
			ChangedAt: now,
		}
		if err := s.events.PublishPasswordChanged(ctx, event); err != nil {
			s.logger.Warn("publish password changed event", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return &ResetOutcome{UserID: user.ID, ChangedAt: now}, nil
}
