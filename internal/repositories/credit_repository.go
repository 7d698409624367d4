package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/papersetu/qgen-service/internal/models"
)

type CreditRepository interface {
	// LockOwner takes a row lock on the owner's user record. Every ledger
	// write for an owner happens under this lock so balance checks and
	// appends are serialized. Must be called inside a transaction.
	LockOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) error

	// Balance returns the running sum of the owner's ledger.
	Balance(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) (int, error)

	// Append writes a ledger entry. Entries are never updated or deleted.
	Append(ctx context.Context, tx *gorm.DB, entry *models.CreditLedgerEntry) error

	// History lists the owner's entries, newest first.
	History(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, limit, offset int) ([]*models.CreditLedgerEntry, int64, error)
}

type GenerationCommitRepository interface {
	GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.GenerationCommit, error)
	Create(ctx context.Context, tx *gorm.DB, commit *models.GenerationCommit) error
}
