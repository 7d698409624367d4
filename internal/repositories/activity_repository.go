package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/papersetu/qgen-service/internal/models"
)

type ActivityRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, activity *models.Activity) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Activity, error)
	Update(ctx context.Context, tx *gorm.DB, activity *models.Activity) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error

	// Query operations
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, filters ActivityFilters) ([]*models.Activity, int64, error)

	// Validation and checks
	IsOwnedBy(ctx context.Context, tx *gorm.DB, id, ownerID uuid.UUID) (bool, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.User, error)
	GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*models.User, error)
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
}
