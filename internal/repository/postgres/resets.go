package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/platformkit/account-service/internal/core/domain"
	"github.com/platformkit/account-service/internal/core/port"
	"github.com/platformkit/account-service/internal/repository"
)

var resetColumns = []string{
	"id",
	"user_id",
	"token_hash",
	"created_at",
	"used_at",
	"used",
	"revoked_at",
}

// CreateReset inserts a new password reset record.
func (r *TokenRepository) CreateReset(ctx context.Context, record domain.ResetRecord) error {
	stmt, args, err := r.builder.Insert("account.reset_records").
		Columns(resetColumns...).
		Values(
			record.ID,
			record.UserID,
			record.TokenHash,
			record.CreatedAt,
			record.UsedAt,
			record.Used,
			record.RevokedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert reset record sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert reset record: %w", err)
	}

	return nil
}

// GetResetByHash retrieves a reset record by its hashed token value.
func (r *TokenRepository) GetResetByHash(ctx context.Context, hash string) (*domain.ResetRecord, error) {
	stmt, args, err := r.builder.
		Select(resetColumns...).
		From("account.reset_records").
		Where(squirrel.Eq{"token_hash": hash}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select reset record sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)

	var record domain.ResetRecord
	if err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.TokenHash,
		&record.CreatedAt,
		&record.UsedAt,
		&record.Used,
		&record.RevokedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan reset record: %w", err)
	}

	return &record, nil
}

// ConsumeReset transitions a reset record to the used state. The update only
// matches live rows, so a record already used or revoked yields
// repository.ErrAlreadyConsumed.
func (r *TokenRepository) ConsumeReset(ctx context.Context, id string, at time.Time) error {
	stmt, args, err := r.builder.Update("account.reset_records").
		Set("used", true).
		Set("used_at", at).
		Where(squirrel.Eq{"id": id, "used": false, "revoked_at": nil}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build consume reset sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("consume reset: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repository.ErrAlreadyConsumed
	}

	return nil
}

// RevokeActiveResets marks every live reset record for the user as
// superseded and reports how many rows were affected.
func (r *TokenRepository) RevokeActiveResets(ctx context.Context, userID string, at time.Time) (int, error) {
	stmt, args, err := r.builder.Update("account.reset_records").
		Set("revoked_at", at).
		Where(squirrel.Eq{"user_id": userID, "used": false, "revoked_at": nil}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build revoke resets sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("revoke resets: %w", err)
	}

	return int(ct.RowsAffected()), nil
}

var _ port.TokenRepository = (*TokenRepository)(nil)
