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

func TestTokenRepository_CreateVerification(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	createdAt := time.Now().UTC()
	record := domain.VerificationRecord{
		ID:        "ver-1",
		UserID:    "user-1",
		TokenHash: "hash-1",
		CreatedAt: createdAt,
	}

	mock.ExpectExec(`INSERT INTO account\.verification_records`).
		WithArgs(record.ID, record.UserID, record.TokenHash, record.CreatedAt, (*time.Time)(nil), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.CreateVerification(context.Background(), record); err != nil {
		t.Fatalf("CreateVerification returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTokenRepository_GetVerificationByHash(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	createdAt := time.Now().UTC()
	rows := pgxmock.NewRows(verificationColumns).
		AddRow("ver-1", "user-1", "hash-1", createdAt, nil, false)

	mock.ExpectQuery(`SELECT .*FROM account\.verification_records`).
		WithArgs("hash-1").
		WillReturnRows(rows)

	record, err := repo.GetVerificationByHash(context.Background(), "hash-1")
	if err != nil {
		t.Fatalf("GetVerificationByHash returned error: %v", err)
	}
	if record.UserID != "user-1" {
		t.Fatalf("expected user-1, got %s", record.UserID)
	}
	if record.Verified || record.VerifiedAt != nil {
		t.Fatal("expected unverified record")
	}
}

func TestTokenRepository_GetVerificationByHashNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	mock.ExpectQuery(`SELECT .*FROM account\.verification_records`).
		WithArgs("unknown").
		WillReturnRows(pgxmock.NewRows(verificationColumns))

	if _, err := repo.GetVerificationByHash(context.Background(), "unknown"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTokenRepository_MarkVerified(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	at := time.Now().UTC()

	mock.ExpectExec(`UPDATE account\.verification_records SET verified`).
		WithArgs(true, at, "ver-1", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.MarkVerified(context.Background(), "ver-1", at); err != nil {
		t.Fatalf("MarkVerified returned error: %v", err)
	}
}

func TestTokenRepository_MarkVerifiedAlreadyConsumed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	at := time.Now().UTC()

	mock.ExpectExec(`UPDATE account\.verification_records SET verified`).
		WithArgs(true, at, "ver-1", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.MarkVerified(context.Background(), "ver-1", at); !errors.Is(err, repository.ErrAlreadyConsumed) {
		t.Fatalf("expected ErrAlreadyConsumed, got %v", err)
	}
}

func TestTokenRepository_RotateVerification(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewTokenRepository(mock)

	at := time.Now().UTC()

	mock.ExpectExec(`UPDATE account\.verification_records SET token_hash`).
		WithArgs("hash-2", at, "user-1", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.RotateVerification(context.Background(), "user-1", "hash-2", at); err != nil {
		t.Fatalf("RotateVerification returned error: %v", err)
	}

	mock.ExpectExec(`UPDATE account\.verification_records SET token_hash`).
		WithArgs("hash-3", at, "user-2", false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.RotateVerification(context.Background(), "user-2", "hash-3", at); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
