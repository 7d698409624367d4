package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/papersetu/qgen-service/internal/cache"
	"github.com/papersetu/qgen-service/internal/models"
	"github.com/papersetu/qgen-service/internal/repositories"
)

type ActivityPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewActivityPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ActivityRepository {
	return &ActivityPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// ===== BASIC CRUD OPERATIONS =====

func (a *ActivityPostgreSQL) Create(ctx context.Context, tx *gorm.DB, activity *models.Activity) error {
	db := getDB(a.db, tx)
	if err := db.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, a.cacheManager.Activity, fmt.Sprintf("owner:%s:*", activity.OwnerID))

	return nil
}

func (a *ActivityPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Activity, error) {
	db := getDB(a.db, tx)

	cacheKey := fmt.Sprintf("id:%s", id)
	var activity models.Activity

	err := a.cacheManager.Activity.CacheOrExecute(ctx, cacheKey, &activity, cache.ActivityCacheConfig.TTL, func() (interface{}, error) {
		var dbActivity models.Activity
		if err := db.WithContext(ctx).First(&dbActivity, "id = ?", id).Error; err != nil {
			return nil, translateError(err)
		}
		return &dbActivity, nil
	})
	if err != nil {
		return nil, err
	}

	return &activity, nil
}

func (a *ActivityPostgreSQL) Update(ctx context.Context, tx *gorm.DB, activity *models.Activity) error {
	db := getDB(a.db, tx)
	if err := db.WithContext(ctx).Save(activity).Error; err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}

	a.cacheManager.InvalidateActivity(ctx, activity.ID, activity.OwnerID)

	return nil
}

func (a *ActivityPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := getDB(a.db, tx)

	var activity models.Activity
	if err := db.WithContext(ctx).Select("id, owner_id").First(&activity, "id = ?", id).Error; err != nil {
		return translateError(err)
	}

	if err := db.WithContext(ctx).Delete(&models.Activity{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}

	a.cacheManager.InvalidateActivity(ctx, id, activity.OwnerID)

	return nil
}

// ===== QUERY OPERATIONS =====

func (a *ActivityPostgreSQL) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, filters repositories.ActivityFilters) ([]*models.Activity, int64, error) {
	db := getDB(a.db, tx)

	query := db.WithContext(ctx).Model(&models.Activity{}).Where("owner_id = ?", ownerID)
	if filters.ProductType != nil {
		query = query.Where("product_type = ?", *filters.ProductType)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count activities: %w", err)
	}

	var activities []*models.Activity
	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&activities).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}

	return activities, total, nil
}

func (a *ActivityPostgreSQL) IsOwnedBy(ctx context.Context, tx *gorm.DB, id, ownerID uuid.UUID) (bool, error) {
	db := getDB(a.db, tx)

	var count int64
	err := db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check activity ownership: %w", err)
	}

	return count > 0, nil
}

// ===== USER REPOSITORY =====

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	db := getDB(u.db, tx)

	var user models.User
	if err := db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*models.User, error) {
	db := getDB(u.db, tx)

	var user models.User
	if err := db.WithContext(ctx).First(&user, "external_id = ?", externalID).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := getDB(u.db, tx)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := getDB(u.db, tx)
	if err := db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}
