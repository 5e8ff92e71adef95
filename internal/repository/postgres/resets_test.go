package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/platformkit/account-service/internal/core/domain"
	"github.com/platformkit/account-service/internal/repository"
)

func TestTokenRepository_CreateReset(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	createdAt := time.Now().UTC()
	record := domain.ResetRecord{
		ID:        "reset-1",
		UserID:    "user-1",
		TokenHash: "hash-1",
		CreatedAt: createdAt,
	}

	mock.ExpectExec(`INSERT INTO account\.reset_records`).
		WithArgs(record.ID, record.UserID, record.TokenHash, record.CreatedAt, (*time.Time)(nil), false, (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.CreateReset(context.Background(), record); err != nil {
		t.Fatalf("CreateReset returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTokenRepository_GetResetByHash(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows(resetColumns).
		AddRow("reset-1", "user-1", "hash-1", createdAt, nil, false, nil)

	mock.ExpectQuery(`SELECT .*FROM account\.reset_records`).
		WithArgs("hash-1").
		WillReturnRows(rows)

	record, err := repo.GetResetByHash(context.Background(), "hash-1")
	if err != nil {
		t.Fatalf("GetResetByHash returned error: %v", err)
	}
	if record.UserID != "user-1" {
		t.Fatalf("expected user-1, got %s", record.UserID)
	}
	if record.Used || record.RevokedAt != nil {
		t.Fatal("expected live record")
	}

	mock.ExpectQuery(`SELECT .*FROM account\.reset_records`).
		WithArgs("unknown").
		WillReturnRows(pgxmock.NewRows(resetColumns))

	if _, err := repo.GetResetByHash(context.Background(), "unknown"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTokenRepository_ConsumeReset(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	at := time.Now().UTC()

	mock.ExpectExec(`UPDATE account\.reset_records SET used`).
		WithArgs(true, at, "reset-1", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.ConsumeReset(context.Background(), "reset-1", at); err != nil {
		t.Fatalf("ConsumeReset returned error: %v", err)
	}
}

func TestTokenRepository_ConsumeResetAlreadyConsumed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	at := time.Now().UTC()

	mock.ExpectExec(`UPDATE account\.reset_records SET used`).
		WithArgs(true, at, "reset-1", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.ConsumeReset(context.Background(), "reset-1", at); !errors.Is(err, repository.ErrAlreadyConsumed) {
		t.Fatalf("expected ErrAlreadyConsumed, got %v", err)
	}
}

func TestTokenRepository_RevokeActiveResets(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	at := time.Now().UTC()

	mock.ExpectExec(`UPDATE account\.reset_records SET revoked_at`).
		WithArgs(at, false, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	revoked, err := repo.RevokeActiveResets(context.Background(), "user-1", at)
	if err != nil {
		t.Fatalf("RevokeActiveResets returned error: %v", err)
	}
	if revoked != 2 {
		t.Fatalf("expected 2 revoked rows, got %d", revoked)
	}
}
