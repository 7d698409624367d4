package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/papersetu/qgen-service/internal/models"
)

type DraftRepository interface {
	// Draft CRUD
	CreateDraft(ctx context.Context, tx *gorm.DB, draft *models.QgenDraft) error
	GetDraftByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QgenDraft, error)
	GetDraftByIDWithSections(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QgenDraft, error)
	GetDraftsByActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) ([]*models.QgenDraft, error)
	UpdateDraft(ctx context.Context, tx *gorm.DB, draft *models.QgenDraft) error

	// Section operations
	CreateSection(ctx context.Context, tx *gorm.DB, section *models.QgenDraftSection) error
	GetSectionByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QgenDraftSection, error)
	UpdateSection(ctx context.Context, tx *gorm.DB, section *models.QgenDraftSection) error
	ListSections(ctx context.Context, tx *gorm.DB, draftID uuid.UUID) ([]*models.QgenDraftSection, error)

	// LockSection takes a row lock on the section so concurrent commits
	// serialize their position assignment. Must be called inside a
	// transaction.
	LockSection(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QgenDraftSection, error)

	// NextPositionInSection returns the next dense zero-based question
	// position in the section. Call after LockSection.
	NextPositionInSection(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (int, error)

	// Instructions
	CreateInstruction(ctx context.Context, tx *gorm.DB, instruction *models.QgenDraftInstruction) error
	ListInstructions(ctx context.Context, tx *gorm.DB, draftID uuid.UUID) ([]*models.QgenDraftInstruction, error)
	DeleteInstruction(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}
