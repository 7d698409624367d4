package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/papersetu/qgen-service/internal/cache"
	"github.com/papersetu/qgen-service/internal/models"
	"github.com/papersetu/qgen-service/internal/repositories"
)

type CreditPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCreditPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CreditRepository {
	return &CreditPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// LockOwner serializes all ledger writes for one owner behind the user
// row lock. Balance reads inside the same transaction then see a stable
// ledger.
func (c *CreditPostgreSQL) LockOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) error {
	db := getDB(c.db, tx)

	var user models.User
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&user, "id = ?", ownerID).Error
	if err != nil {
		return translateError(err)
	}
	return nil
}

func (c *CreditPostgreSQL) Balance(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) (int, error) {
	db := getDB(c.db, tx)

	var balance *int
	err := db.WithContext(ctx).
		Model(&models.CreditLedgerEntry{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("owner_id = ?", ownerID).
		Scan(&balance).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum credit ledger: %w", err)
	}

	if balance == nil {
		return 0, nil
	}
	return *balance, nil
}

func (c *CreditPostgreSQL) Append(ctx context.Context, tx *gorm.DB, entry *models.CreditLedgerEntry) error {
	db := getDB(c.db, tx)
	if err := db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	c.cacheManager.InvalidateBalance(ctx, entry.OwnerID)

	return nil
}

func (c *CreditPostgreSQL) History(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, limit, offset int) ([]*models.CreditLedgerEntry, int64, error) {
	db := getDB(c.db, tx)

	query := db.WithContext(ctx).Model(&models.CreditLedgerEntry{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	var entries []*models.CreditLedgerEntry
	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	return entries, total, nil
}

// ===== GENERATION COMMIT REPOSITORY =====

type GenerationCommitPostgreSQL struct {
	db *gorm.DB
}

func NewGenerationCommitPostgreSQL(db *gorm.DB) repositories.GenerationCommitRepository {
	return &GenerationCommitPostgreSQL{db: db}
}

func (g *GenerationCommitPostgreSQL) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.GenerationCommit, error) {
	db := getDB(g.db, tx)

	var commit models.GenerationCommit
	if err := db.WithContext(ctx).First(&commit, "token = ?", token).Error; err != nil {
		return nil, translateError(err)
	}
	return &commit, nil
}

func (g *GenerationCommitPostgreSQL) Create(ctx context.Context, tx *gorm.DB, commit *models.GenerationCommit) error {
	db := getDB(g.db, tx)
	if err := db.WithContext(ctx).Create(commit).Error; err != nil {
		return fmt.Errorf("failed to create generation commit: %w", err)
	}
	return nil
}
