package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/platformkit/account-service/internal/core/domain"
	"github.com/platformkit/account-service/internal/core/port"
	"github.com/platformkit/account-service/internal/repository"
	"github.com/platformkit/account-service/internal/usecase"
)

const strongTestPassword = "Sup3r!SecurePass#7890"

// memUserRepo is an in-memory port.UserRepository for exercising the full
// handler stack without a database.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]domain.User)}
}

func (m *memUserRepo) Create(_ context.Context, user domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUserRepo) ExistsWithUsername(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserRepo) ExistsWithEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserRepo) Activate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.IsActive = true
	m.users[id] = user
	return nil
}

func (m *memUserRepo) UpdatePassword(_ context.Context, id string, hash string, algo string, changedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.PasswordHash = hash
	user.PasswordAlgo = algo
	user.LastPasswordChange = changedAt
	m.users[id] = user
	return nil
}

func (m *memUserRepo) get(t *testing.T, id string) domain.User {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		t.Fatalf("user %s not found", id)
	}
	return user
}

// memTokenRepo is an in-memory port.TokenRepository mirroring the
// compare-and-set semantics of the PostgreSQL implementation.
type memTokenRepo struct {
	mu            sync.Mutex
	verifications map[string]domain.VerificationRecord
	resets        map[string]domain.ResetRecord
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{
		verifications: make(map[string]domain.VerificationRecord),
		resets:        make(map[string]domain.ResetRecord),
	}
}

func (m *memTokenRepo) CreateVerification(_ context.Context, record domain.VerificationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications[record.ID] = record
	return nil
}

func (m *memTokenRepo) GetVerificationByHash(_ context.Context, hash string) (*domain.VerificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.verifications {
		if record.TokenHash == hash {
			copied := record
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memTokenRepo) MarkVerified(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.verifications[id]
	if !ok || record.Verified {
		return repository.ErrAlreadyConsumed
	}
	record.Verified = true
	record.VerifiedAt = &at
	m.verifications[id] = record
	return nil
}

func (m *memTokenRepo) RotateVerification(_ context.Context, userID string, newHash string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, record := range m.verifications {
		if record.UserID == userID && !record.Verified {
			record.TokenHash = newHash
			record.CreatedAt = at
			m.verifications[id] = record
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memTokenRepo) CreateReset(_ context.Context, record domain.ResetRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets[record.ID] = record
	return nil
}

func (m *memTokenRepo) GetResetByHash(_ context.Context, hash string) (*domain.ResetRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.resets {
		if record.TokenHash == hash {
			copied := record
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memTokenRepo) ConsumeReset(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.resets[id]
	if !ok || record.Used || record.RevokedAt != nil {
		return repository.ErrAlreadyConsumed
	}
	record.Used = true
	record.UsedAt = &at
	m.resets[id] = record
	return nil
}

func (m *memTokenRepo) RevokeActiveResets(_ context.Context, userID string, at time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	revoked := 0
	for id, record := range m.resets {
		if record.UserID == userID && !record.Used && record.RevokedAt == nil {
			record.RevokedAt = &at
			m.resets[id] = record
			revoked++
		}
	}
	return revoked, nil
}

func (m *memTokenRepo) resetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resets)
}

// captureNotifier hands dispatched messages to the test over channels so the
// fire-and-forget goroutines in the handlers stay observable.
type captureNotifier struct {
	verifications chan port.VerificationNotification
	resets        chan port.ResetNotification
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{
		verifications: make(chan port.VerificationNotification, 8),
		resets:        make(chan port.ResetNotification, 8),
	}
}

func (n *captureNotifier) SendVerificationEmail(_ context.Context, payload port.VerificationNotification) error {
	n.verifications <- payload
	return nil
}

func (n *captureNotifier) SendPasswordResetEmail(_ context.Context, payload port.ResetNotification) error {
	n.resets <- payload
	return nil
}

func (n *captureNotifier) waitVerification(t *testing.T) port.VerificationNotification {
	t.Helper()
	select {
	case payload := <-n.verifications:
		return payload
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for verification email")
		return port.VerificationNotification{}
	}
}

func (n *captureNotifier) waitReset(t *testing.T) port.ResetNotification {
	t.Helper()
	select {
	case payload := <-n.resets:
		return payload
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for reset email")
		return port.ResetNotification{}
	}
}

type testEnv struct {
	router   *gin.Engine
	users    *memUserRepo
	tokens   *memTokenRepo
	notifier *captureNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := newMemUserRepo()
	tokens := newMemTokenRepo()
	notifier := newCaptureNotifier()

	registration := usecase.NewRegistrationService(users, tokens, nil, nil, nil)
	resets := usecase.NewPasswordResetService(users, tokens, nil, nil, nil)

	router := gin.New()
	auth := router.Group("/api/v1/auth")
	NewRegistrationHandler(registration, notifier).RegisterRoutes(auth)
	NewPasswordHandler(resets, notifier).RegisterRoutes(auth.Group("/password-reset"))

	return &testEnv{
		router:   router,
		users:    users,
		tokens:   tokens,
		notifier: notifier,
	}
}
