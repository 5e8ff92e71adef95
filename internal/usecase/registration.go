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
	"github.com/platformkit/account-service/internal/infra/security"
	"github.com/platformkit/account-service/internal/repository"
)

const passwordAlgoArgon2id = "argon2id"

var (
	// ErrUsernameTaken indicates the requested username is already registered.
	ErrUsernameTaken = errors.New("username already registered")
	// ErrEmailTaken indicates the requested email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrPasswordPolicyViolation indicates the password does not satisfy complexity requirements.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
	// ErrVerificationNotFound indicates no verification record matches the supplied token.
	ErrVerificationNotFound = errors.New("verification token invalid")
	// ErrAlreadyVerified indicates the account completed verification earlier.
	ErrAlreadyVerified = errors.New("email already verified")
	// ErrVerificationExpired indicates the token exists but its validity window has passed.
	ErrVerificationExpired = errors.New("verification token expired")
	// ErrUserNotFound indicates no account matches the supplied identifier.
	ErrUserNotFound = errors.New("user not found")
)

// RegistrationService handles new account onboarding and email verification.
type RegistrationService struct {
	users             port.UserRepository
	tokens            port.TokenRepository
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger
	now               func() time.Time
	verificationTTL   time.Duration
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(users port.UserRepository, tokens port.TokenRepository, events port.EventPublisher, validator *security.PasswordValidator, logger *zap.Logger) *RegistrationService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		users:             users,
		tokens:            tokens,
		events:            events,
		passwordValidator: validator,
		logger:            logger,
		now:               time.Now,
		verificationTTL:   domain.VerificationWindow,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *RegistrationService) WithClock(now func() time.Time) *RegistrationService {
	if now != nil {
		s.now = now
	}
	return s
}

// WithVerificationTTL overrides the verification validity window.
func (s *RegistrationService) WithVerificationTTL(ttl time.Duration) *RegistrationService {
	if ttl > 0 {
		s.verificationTTL = ttl
	}
	return s
}

// RegistrationInput carries the signup payload.
type RegistrationInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// IssuedVerification captures the credential generated for a new or resent
// verification. Token holds the raw value for outbound delivery.
type IssuedVerification struct {
	Token     string
	ExpiresAt time.Time
}

// RegisterUser creates an inactive account together with its verification
// record and returns the raw verification token for delivery.
func (s *RegistrationService) RegisterUser(ctx context.Context, input RegistrationInput) (domain.User, IssuedVerification, error) {
	var zero IssuedVerification

	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)

	if input.Username == "" {
		return domain.User{}, zero, fmt.Errorf("username is required")
	}
	if input.Email == "" {
		return domain.User{}, zero, fmt.Errorf("email is required")
	}
	if input.Password == "" {
		return domain.User{}, zero, fmt.Errorf("password is required")
	}

	taken, err := s.users.ExistsWithUsername(ctx, input.Username)
	if err != nil {
		return domain.User{}, zero, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return domain.User{}, zero, ErrUsernameTaken
	}

	taken, err = s.users.ExistsWithEmail(ctx, input.Email)
	if err != nil {
		return domain.User{}, zero, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return domain.User{}, zero, ErrEmailTaken
	}

	if err := s.passwordValidator.Validate(input.Password); err != nil {
		return domain.User{}, zero, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return domain.User{}, zero, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := domain.User{
		ID:                 uuid.NewString(),
		Username:           input.Username,
		Email:              input.Email,
		FirstName:          input.FirstName,
		LastName:           input.LastName,
		PasswordHash:       passwordHash,
		PasswordAlgo:       passwordAlgoArgon2id,
		IsActive:           false,
		RegisteredAt:       now,
		LastPasswordChange: now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, zero, err
	}

	rawToken := security.NewActionToken()
	record := domain.VerificationRecord{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		TokenHash: security.HashToken(rawToken),
		CreatedAt: now,
	}
	if err := s.tokens.CreateVerification(ctx, record); err != nil {
		return domain.User{}, zero, fmt.Errorf("store verification record: %w", err)
	}

	s.publishRegistered(ctx, user)

	return user, IssuedVerification{Token: rawToken, ExpiresAt: now.Add(s.verificationTTL)}, nil
}

// VerifyEmail consumes a verification token and activates the owning account.
func (s *RegistrationService) VerifyEmail(ctx context.Context, rawToken string) (domain.User, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return domain.User{}, ErrVerificationNotFound
	}

	record, err := s.tokens.GetVerificationByHash(ctx, security.HashToken(rawToken))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrVerificationNotFound
		}
		return domain.User{}, fmt.Errorf("lookup verification record: %w", err)
	}

	if record.Verified {
		return domain.User{}, ErrAlreadyVerified
	}

	now := s.now().UTC()
	if domain.Expired(record.CreatedAt, now, s.verificationTTL) {
		return domain.User{}, ErrVerificationExpired
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrVerificationNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.tokens.MarkVerified(ctx, record.ID, now); err != nil {
		if errors.Is(err, repository.ErrAlreadyConsumed) {
			return domain.User{}, ErrAlreadyVerified
		}
		return domain.User{}, fmt.Errorf("mark verified: %w", err)
	}

	if err := s.users.Activate(ctx, user.ID); err != nil {
		return domain.User{}, fmt.Errorf("activate user: %w", err)
	}

	user.IsActive = true

	if s.events != nil {
		event := domain.EmailVerifiedEvent{
			EventID:    uuid.NewString(),
			UserID:     user.ID,
			VerifiedAt: now,
		}
		if err := s.events.PublishEmailVerified(ctx, event); err != nil {
			s.logger.Warn("publish email verified event", zap.String("user_id", user.ID), zap.Error(err))
		}
	}

	return *user, nil
}

// ResendVerification rotates the token on the user's outstanding verification
// record, restarting its validity window, and returns the fresh credential.
// The old token stops matching as soon as the rotation lands.
func (s *RegistrationService) ResendVerification(ctx context.Context, email string) (domain.User, IssuedVerification, error) {
	var zero IssuedVerification

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return domain.User{}, zero, fmt.Errorf("email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, zero, ErrUserNotFound
		}
		return domain.User{}, zero, fmt.Errorf("lookup user: %w", err)
	}

	if user.IsActive {
		return *user, zero, ErrAlreadyVerified
	}

	now := s.now().UTC()
	rawToken := security.NewActionToken()
	hashed := security.HashToken(rawToken)

	err = s.tokens.RotateVerification(ctx, user.ID, hashed, now)
	if errors.Is(err, repository.ErrNotFound) {
		record := domain.VerificationRecord{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			TokenHash: hashed,
			CreatedAt: now,
		}
		err = s.tokens.CreateVerification(ctx, record)
	}
	if err != nil {
		return domain.User{}, zero, fmt.Errorf("rotate verification record: %w", err)
	}

	return *user, IssuedVerification{Token: rawToken, ExpiresAt: now.Add(s.verificationTTL)}, nil
}

func (s *RegistrationService) publishRegistered(ctx context.Context, user domain.User) {
	if s.events == nil {
		return
	}

	event := domain.AccountRegisteredEvent{
		EventID:      uuid.NewString(),
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		RegisteredAt: user.RegisteredAt,
	}
	if err := s.events.PublishAccountRegistered(ctx, event); err != nil {
		s.logger.Warn("publish account registered event", zap.String("user_id", user.ID), zap.Error(err))
	}
}
