package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/platformkit/account-service/internal/core/domain"
	"github.com/platformkit/account-service/internal/repository"
)

var verificationColumns = []string{
	"id",
	"user_id",
	"token_hash",
	"created_at",
	"verified_at",
	"verified",
}

// TokenRepository implements port.TokenRepository using PostgreSQL tables.
type TokenRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewTokenRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewTokenRepository(exec pgExecutor) *TokenRepository {
	repo := &TokenRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance executing within the provided transaction.
func (r *TokenRepository) WithTx(tx pgx.Tx) *TokenRepository {
	if tx == nil {
		return r
	}
	return &TokenRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
	}
}

// CreateVerification inserts a new verification record.
func (r *TokenRepository) CreateVerification(ctx context.Context, record domain.VerificationRecord) error {
	stmt, args, err := r.builder.Insert("account.verification_records").
		Columns(verificationColumns...).
		Values(
			record.ID,
			record.UserID,
			record.TokenHash,
			record.CreatedAt,
			record.VerifiedAt,
			record.Verified,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert verification record sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert verification record: %w", err)
	}

	return nil
}

// GetVerificationByHash retrieves a verification record by its hashed token value.
func (r *TokenRepository) GetVerificationByHash(ctx context.Context, hash string) (*domain.VerificationRecord, error) {
	stmt, args, err := r.builder.
		Select(verificationColumns...).
		From("account.verification_records").
		Where(squirrel.Eq{"token_hash": hash}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select verification record sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var record domain.VerificationRecord
	if err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.TokenHash,
		&record.CreatedAt,
		&record.VerifiedAt,
		&record.Verified,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan verification record: %w", err)
	}

	return &record, nil
}

// MarkVerified transitions a record to the verified state. The update only
// matches unverified rows, so a record that was verified concurrently yields
// repository.ErrAlreadyConsumed.
func (r *TokenRepository) MarkVerified(ctx context.Context, id string, at time.Time) error {
	stmt, args, err := r.builder.Update("account.verification_records").
		Set("verified", true).
		Set("verified_at", at).
		Where(squirrel.Eq{"id": id, "verified": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark verified sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrAlreadyConsumed
	}

	return nil
}

// RotateVerification replaces the token on the user's outstanding unverified
// record, restarting its validity window. Returns repository.ErrNotFound when
// the user has no unverified record.
func (r *TokenRepository) RotateVerification(ctx context.Context, userID string, newHash string, at time.Time) error {
	stmt, args, err := r.builder.Update("account.verification_records").
		Set("token_hash", newHash).
		Set("created_at", at).
		Where(squirrel.Eq{"user_id": userID, "verified": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build rotate verification sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("rotate verification: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
