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

type GenQuestionPostgreSQL struct {
	db *gorm.DB
}

func NewGenQuestionPostgreSQL(db *gorm.DB) repositories.GenQuestionRepository {
	return &GenQuestionPostgreSQL{db: db}
}

// ===== BASIC CRUD OPERATIONS =====

func (q *GenQuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.GenQuestion) error {
	db := getDB(q.db, tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

func (q *GenQuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.GenQuestion, error) {
	db := getDB(q.db, tx)

	var question models.GenQuestion
	if err := db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &question, nil
}

func (q *GenQuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.GenQuestion) error {
	db := getDB(q.db, tx)
	if err := db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}
	return nil
}

func (q *GenQuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	db := getDB(q.db, tx)

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Where("gen_question_id = ?", id).Delete(&models.GenQuestionConcept{}).Error; err != nil {
			return fmt.Errorf("failed to delete question concept maps: %w", err)
		}
		if err := tx.WithContext(ctx).Delete(&models.GenQuestion{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete question: %w", err)
		}
		return nil
	})
}

// ===== BULK OPERATIONS =====

func (q *GenQuestionPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.GenQuestion) error {
	if len(questions) == 0 {
		return nil
	}

	db := getDB(q.db, tx)
	if err := db.WithContext(ctx).CreateInBatches(questions, 50).Error; err != nil {
		return fmt.Errorf("failed to create questions batch: %w", err)
	}
	return nil
}

func (q *GenQuestionPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.GenQuestion, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	db := getDB(q.db, tx)
	var questions []*models.GenQuestion
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions by ids: %w", err)
	}
	return questions, nil
}

func (q *GenQuestionPostgreSQL) CreateConceptMaps(ctx context.Context, tx *gorm.DB, maps []*models.GenQuestionConcept) error {
	if len(maps) == 0 {
		return nil
	}

	db := getDB(q.db, tx)
	if err := db.WithContext(ctx).CreateInBatches(maps, 100).Error; err != nil {
		return fmt.Errorf("failed to create concept maps: %w", err)
	}
	return nil
}

// ===== QUERY OPERATIONS =====

func (q *GenQuestionPostgreSQL) ListByActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, filters repositories.GenQuestionFilters) ([]*models.GenQuestion, int64, error) {
	db := getDB(q.db, tx)

	query := db.WithContext(ctx).Model(&models.GenQuestion{}).Where("activity_id = ?", activityID)
	if filters.Type != nil {
		query = query.Where("question_type = ?", *filters.Type)
	}
	if filters.Hardness != nil {
		query = query.Where("hardness_level = ?", *filters.Hardness)
	}
	if filters.IsInDraft != nil {
		query = query.Where("is_in_draft = ?", *filters.IsInDraft)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	var questions []*models.GenQuestion
	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	return questions, total, nil
}

func (q *GenQuestionPostgreSQL) ListBySection(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) ([]*models.GenQuestion, error) {
	db := getDB(q.db, tx)

	var questions []*models.GenQuestion
	err := db.WithContext(ctx).
		Where("qgen_draft_section_id = ?", sectionID).
		Order("position_in_section ASC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list section questions: %w", err)
	}
	return questions, nil
}

func (q *GenQuestionPostgreSQL) CountByActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (int64, error) {
	db := getDB(q.db, tx)

	var count int64
	err := db.WithContext(ctx).
		Model(&models.GenQuestion{}).
		Where("activity_id = ?", activityID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// ===== BANK QUESTION REPOSITORY =====

type BankQuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewBankQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.BankQuestionRepository {
	return &BankQuestionPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (b *BankQuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.BankQuestion, error) {
	db := getDB(b.db, tx)

	var question models.BankQuestion
	if err := db.WithContext(ctx).First(&question, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &question, nil
}

func (b *BankQuestionPostgreSQL) GetByConcepts(ctx context.Context, tx *gorm.DB, conceptIDs []uuid.UUID, filters repositories.BankQuestionFilters) ([]*models.BankQuestion, error) {
	if len(conceptIDs) == 0 {
		return nil, nil
	}

	db := getDB(b.db, tx)

	query := db.WithContext(ctx).
		Model(&models.BankQuestion{}).
		Joins("JOIN bank_questions_concepts_maps m ON m.bank_question_id = bank_questions.id").
		Where("m.concept_id IN ?", conceptIDs).
		Distinct()

	if filters.Type != nil {
		query = query.Where("bank_questions.question_type = ?", *filters.Type)
	}
	if filters.Hardness != nil {
		query = query.Where("bank_questions.hardness_level = ?", *filters.Hardness)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}

	var questions []*models.BankQuestion
	if err := query.Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get bank questions by concepts: %w", err)
	}
	return questions, nil
}

// ===== CONCEPT REPOSITORY =====

type ConceptPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewConceptPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ConceptRepository {
	return &ConceptPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (c *ConceptPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Concept, error) {
	db := getDB(c.db, tx)

	cacheKey := fmt.Sprintf("id:%s", id)
	var concept models.Concept

	err := c.cacheManager.Concept.CacheOrExecute(ctx, cacheKey, &concept, cache.ConceptCacheConfig.TTL, func() (interface{}, error) {
		var dbConcept models.Concept
		if err := db.WithContext(ctx).First(&dbConcept, "id = ?", id).Error; err != nil {
			return nil, translateError(err)
		}
		return &dbConcept, nil
	})
	if err != nil {
		return nil, err
	}

	return &concept, nil
}

func (c *ConceptPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*models.Concept, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*models.Concept{}, nil
	}

	db := getDB(c.db, tx)

	var concepts []*models.Concept
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&concepts).Error; err != nil {
		return nil, fmt.Errorf("failed to get concepts: %w", err)
	}

	result := make(map[uuid.UUID]*models.Concept, len(concepts))
	for _, concept := range concepts {
		result[concept.ID] = concept
	}
	return result, nil
}

func (c *ConceptPostgreSQL) ListByTopic(ctx context.Context, tx *gorm.DB, topicID uuid.UUID) ([]*models.Concept, error) {
	db := getDB(c.db, tx)

	var concepts []*models.Concept
	err := db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("page_number ASC, name ASC").
		Find(&concepts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list concepts by topic: %w", err)
	}
	return concepts, nil
}
