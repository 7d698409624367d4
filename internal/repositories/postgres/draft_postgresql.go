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

type DraftPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewDraftPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.DraftRepository {
	return &DraftPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// ===== DRAFT OPERATIONS =====

func (d *DraftPostgreSQL) CreateDraft(ctx context.Context, tx *gorm.DB, draft *models.QgenDraft) error {
	db := getDB(d.db, tx)
	if err := db.WithContext(ctx).Create(draft).Error; err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}
	return nil
}

func (d *DraftPostgreSQL) GetDraftByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QgenDraft, error) {
	db := getDB(d.db, tx)

	var draft models.QgenDraft
	if err := db.WithContext(ctx).First(&draft, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &draft, nil
}

func (d *DraftPostgreSQL) GetDraftByIDWithSections(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QgenDraft, error) {
	db := getDB(d.db, tx)

	var draft models.QgenDraft
	err := db.WithContext(ctx).
		Preload("Sections", func(db *gorm.DB) *gorm.DB {
			return db.Order("position_in_draft ASC")
		}).
		First(&draft, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &draft, nil
}

func (d *DraftPostgreSQL) GetDraftsByActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) ([]*models.QgenDraft, error) {
	db := getDB(d.db, tx)

	var drafts []*models.QgenDraft
	err := db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("created_at ASC").
		Find(&drafts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get drafts by activity: %w", err)
	}
	return drafts, nil
}

func (d *DraftPostgreSQL) UpdateDraft(ctx context.Context, tx *gorm.DB, draft *models.QgenDraft) error {
	db := getDB(d.db, tx)
	if err := db.WithContext(ctx).Save(draft).Error; err != nil {
		return fmt.Errorf("failed to update draft: %w", err)
	}

	d.cacheManager.InvalidateDraft(ctx, draft.ID)

	return nil
}

// ===== SECTION OPERATIONS =====

func (d *DraftPostgreSQL) CreateSection(ctx context.Context, tx *gorm.DB, section *models.QgenDraftSection) error {
	db := getDB(d.db, tx)
	if err := db.WithContext(ctx).Create(section).Error; err != nil {
		return fmt.Errorf("failed to create draft section: %w", err)
	}

	d.cacheManager.InvalidateDraft(ctx, section.DraftID)

	return nil
}

func (d *DraftPostgreSQL) GetSectionByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QgenDraftSection, error) {
	db := getDB(d.db, tx)

	var section models.QgenDraftSection
	if err := db.WithContext(ctx).First(&section, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &section, nil
}

func (d *DraftPostgreSQL) UpdateSection(ctx context.Context, tx *gorm.DB, section *models.QgenDraftSection) error {
	db := getDB(d.db, tx)
	if err := db.WithContext(ctx).Save(section).Error; err != nil {
		return fmt.Errorf("failed to update draft section: %w", err)
	}

	d.cacheManager.InvalidateDraft(ctx, section.DraftID)

	return nil
}

func (d *DraftPostgreSQL) ListSections(ctx context.Context, tx *gorm.DB, draftID uuid.UUID) ([]*models.QgenDraftSection, error) {
	db := getDB(d.db, tx)

	var sections []*models.QgenDraftSection
	err := db.WithContext(ctx).
		Where("qgen_draft_id = ?", draftID).
		Order("position_in_draft ASC").
		Find(&sections).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list draft sections: %w", err)
	}
	return sections, nil
}

// LockSection takes SELECT ... FOR UPDATE on the section row so two
// commits appending to the same section cannot read the same max
// position.
func (d *DraftPostgreSQL) LockSection(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QgenDraftSection, error) {
	db := getDB(d.db, tx)

	var section models.QgenDraftSection
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&section, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &section, nil
}

func (d *DraftPostgreSQL) NextPositionInSection(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (int, error) {
	db := getDB(d.db, tx)

	var maxPosition *int
	err := db.WithContext(ctx).
		Model(&models.GenQuestion{}).
		Select("MAX(position_in_section)").
		Where("qgen_draft_section_id = ?", sectionID).
		Scan(&maxPosition).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get max section position: %w", err)
	}

	if maxPosition == nil {
		return 0, nil
	}
	return *maxPosition + 1, nil
}

// ===== INSTRUCTION OPERATIONS =====

func (d *DraftPostgreSQL) CreateInstruction(ctx context.Context, tx *gorm.DB, instruction *models.QgenDraftInstruction) error {
	db := getDB(d.db, tx)
	if err := db.WithContext(ctx).Create(instruction).Error; err != nil {
		return fmt.Errorf("failed to create draft instruction: %w", err)
	}

	d.cacheManager.InvalidateDraft(ctx, instruction.DraftID)

	return nil
}

func (d *DraftPostgreSQL) ListInstructions(ctx context.Context, tx *gorm.DB, draftID uuid.UUID) ([]*models.QgenDraftInstruction, error) {
	db := getDB(d.db, tx)

	var instructions []*models.QgenDraftInstruction
	err := db.WithContext(ctx).
		Where("qgen_draft_id = ?", draftID).
		Order("created_at ASC").
		Find(&instructions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list draft instructions: %w", err)
	}
	return instructions, nil
}

func (d *DraftPostgreSQL) DeleteInstruction(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := getDB(d.db, tx)

	var instruction models.QgenDraftInstruction
	if err := db.WithContext(ctx).First(&instruction, "id = ?", id).Error; err != nil {
		return translateError(err)
	}

	if err := db.WithContext(ctx).Delete(&models.QgenDraftInstruction{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete draft instruction: %w", err)
	}

	d.cacheManager.InvalidateDraft(ctx, instruction.DraftID)

	return nil
}
