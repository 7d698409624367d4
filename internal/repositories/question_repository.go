package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/papersetu/qgen-service/internal/models"
)

type GenQuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, question *models.GenQuestion) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.GenQuestion, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.GenQuestion) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	// Bulk operations
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.GenQuestion) error
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.GenQuestion, error)

	// Concept mapping
	CreateConceptMaps(ctx context.Context, tx *gorm.DB, maps []*models.GenQuestionConcept) error

	// Query operations
	ListByActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, filters GenQuestionFilters) ([]*models.GenQuestion, int64, error)
	ListBySection(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) ([]*models.GenQuestion, error)
	CountByActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (int64, error)
}

type BankQuestionRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.BankQuestion, error)

	// GetByConcepts returns curated questions mapped to any of the given
	// concepts, used as reference context in generation prompts.
	GetByConcepts(ctx context.Context, tx *gorm.DB, conceptIDs []uuid.UUID, filters BankQuestionFilters) ([]*models.BankQuestion, error)
}

type ConceptRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Concept, error)

	// GetByIDs returns the found concepts keyed by ID so callers can
	// detect which requested IDs do not exist.
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*models.Concept, error)
	ListByTopic(ctx context.Context, tx *gorm.DB, topicID uuid.UUID) ([]*models.Concept, error)
}
