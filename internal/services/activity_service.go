package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/papersetu/qgen-service/internal/events"
	"github.com/papersetu/qgen-service/internal/models"
	"github.com/papersetu/qgen-service/internal/repositories"
	"github.com/papersetu/qgen-service/internal/validator"
)

// defaultSectionName is given to the first section of every new qgen
// draft so generated questions always have somewhere to land.
const defaultSectionName = "Section A"

type activityService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.BusinessValidator
	publisher events.EventPublisher
}

func NewActivityService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, businessValidator *validator.BusinessValidator, publisher events.EventPublisher) ActivityService {
	return &activityService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: businessValidator,
		publisher: publisher,
	}
}

// Create makes the activity and, for the qgen product, its draft with
// the first section, all in one transaction.
func (s *activityService) Create(ctx context.Context, req *CreateActivityRequest, ownerID uuid.UUID) (*ActivityResponse, error) {
	if ve := s.validator.Validate(req); len(ve) > 0 {
		return nil, ve
	}

	if _, err := s.repo.User().GetByID(ctx, nil, ownerID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}

	activity := &models.Activity{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        req.Name,
		ProductType: models.ProductType(req.ProductType),
	}
	var draftID *uuid.UUID

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Activity().Create(ctx, nil, activity); err != nil {
			return fmt.Errorf("failed to create activity: %w", err)
		}

		if activity.ProductType == models.ProductQGen {
			draft := &models.QgenDraft{
				ID:         uuid.New(),
				ActivityID: activity.ID,
			}
			if err := txRepo.Draft().CreateDraft(ctx, nil, draft); err != nil {
				return fmt.Errorf("failed to create draft: %w", err)
			}
			section := &models.QgenDraftSection{
				DraftID:         draft.ID,
				SectionName:     defaultSectionName,
				PositionInDraft: 0,
			}
			if err := txRepo.Draft().CreateSection(ctx, nil, section); err != nil {
				return fmt.Errorf("failed to create first section: %w", err)
			}
			draftID = &draft.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Activity created",
		"activity_id", activity.ID,
		"owner_id", ownerID,
		"product_type", activity.ProductType)
	return &ActivityResponse{Activity: activity, DraftID: draftID}, nil
}

func (s *activityService) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*ActivityResponse, error) {
	activity, err := s.repo.Activity().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	if activity.OwnerID != ownerID {
		return nil, NewPermissionError("activity", "read", "not the owner")
	}

	response := &ActivityResponse{Activity: activity}
	drafts, err := s.repo.Draft().GetDraftsByActivity(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity drafts: %w", err)
	}
	if len(drafts) > 0 {
		response.DraftID = &drafts[0].ID
	}
	return response, nil
}

func (s *activityService) List(ctx context.Context, ownerID uuid.UUID, filters repositories.ActivityFilters) (*ActivityListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	activities, total, err := s.repo.Activity().ListByOwner(ctx, nil, ownerID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	return &ActivityListResponse{
		Activities: activities,
		Total:      total,
		Page:       filters.Offset/filters.Limit + 1,
		Size:       filters.Limit,
	}, nil
}

// Delete removes the activity. Questions, drafts, and sections go with
// it through the schema's cascades.
func (s *activityService) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	activity, err := s.repo.Activity().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return ErrActivityNotFound
		}
		return fmt.Errorf("failed to get activity: %w", err)
	}
	if activity.OwnerID != ownerID {
		return NewPermissionError("activity", "delete", "not the owner")
	}

	if err := s.repo.Activity().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}

	s.logger.Info("Activity deleted", "activity_id", id, "owner_id", ownerID)

	if s.publisher != nil {
		event := events.NewActivityDeletedEvent(events.ActivityDeletedEvent{
			ActivityID: id,
			OwnerID:    ownerID,
		})
		if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
			s.logger.Warn("Failed to publish activity deleted event", "error", err)
		}
	}
	return nil
}
