package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/papersetu/qgen-service/internal/models"
	"github.com/papersetu/qgen-service/internal/repositories"
	"github.com/papersetu/qgen-service/internal/validator"
)

type draftService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.BusinessValidator
}

func NewDraftService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, businessValidator *validator.BusinessValidator) DraftService {
	return &draftService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: businessValidator,
	}
}

// ===== DRAFT OPERATIONS =====

func (s *draftService) GetByID(ctx context.Context, draftID, ownerID uuid.UUID) (*models.QgenDraft, error) {
	if _, err := s.ownedDraft(ctx, s.repo, draftID, ownerID, "read"); err != nil {
		return nil, err
	}
	draft, err := s.repo.Draft().GetDraftByIDWithSections(ctx, nil, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	return draft, nil
}

func (s *draftService) Update(ctx context.Context, draftID, ownerID uuid.UUID, req *UpdateDraftRequest) (*models.QgenDraft, error) {
	if ve := s.validator.Validate(req); len(ve) > 0 {
		return nil, ve
	}
	draft, err := s.ownedDraft(ctx, s.repo, draftID, ownerID, "update")
	if err != nil {
		return nil, err
	}

	if req.PaperTitle != nil {
		draft.PaperTitle = req.PaperTitle
	}
	if req.PaperSubtitle != nil {
		draft.PaperSubtitle = req.PaperSubtitle
	}
	if req.InstituteName != nil {
		draft.InstituteName = req.InstituteName
	}
	if req.SubjectName != nil {
		draft.SubjectName = req.SubjectName
	}
	if req.ClassName != nil {
		draft.ClassName = req.ClassName
	}
	if req.MaximumMarks != nil {
		draft.MaximumMarks = req.MaximumMarks
	}
	if req.PaperDatetime != nil {
		draft.PaperDatetime = req.PaperDatetime
	}

	if err := s.repo.Draft().UpdateDraft(ctx, nil, draft); err != nil {
		return nil, fmt.Errorf("failed to update draft: %w", err)
	}
	return draft, nil
}

// ===== SECTION OPERATIONS =====

// CreateSection appends a section at the end of the draft.
func (s *draftService) CreateSection(ctx context.Context, draftID, ownerID uuid.UUID, req *CreateSectionRequest) (*models.QgenDraftSection, error) {
	if ve := s.validator.Validate(req); len(ve) > 0 {
		return nil, ve
	}

	var section *models.QgenDraftSection
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := s.ownedDraft(ctx, txRepo, draftID, ownerID, "add section"); err != nil {
			return err
		}
		existing, err := txRepo.Draft().ListSections(ctx, nil, draftID)
		if err != nil {
			return fmt.Errorf("failed to list sections: %w", err)
		}
		section = &models.QgenDraftSection{
			DraftID:         draftID,
			SectionName:     req.SectionName,
			PositionInDraft: len(existing),
		}
		return txRepo.Draft().CreateSection(ctx, nil, section)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Section created",
		"draft_id", draftID,
		"section_id", section.ID,
		"position", section.PositionInDraft)
	return section, nil
}

func (s *draftService) RenameSection(ctx context.Context, sectionID, ownerID uuid.UUID, req *UpdateSectionRequest) (*models.QgenDraftSection, error) {
	if ve := s.validator.Validate(req); len(ve) > 0 {
		return nil, ve
	}

	section, err := s.repo.Draft().GetSectionByID(ctx, nil, sectionID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	if _, err := s.ownedDraft(ctx, s.repo, section.DraftID, ownerID, "rename section"); err != nil {
		return nil, err
	}

	section.SectionName = req.SectionName
	if err := s.repo.Draft().UpdateSection(ctx, nil, section); err != nil {
		return nil, fmt.Errorf("failed to update section: %w", err)
	}
	return section, nil
}

// PlaceQuestions appends the given questions to a section. The section
// row lock serializes position assignment against concurrent placement
// and generation commits.
func (s *draftService) PlaceQuestions(ctx context.Context, sectionID, ownerID uuid.UUID, req *PlaceQuestionsRequest) error {
	if ve := s.validator.Validate(req); len(ve) > 0 {
		return ve
	}

	return s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		section, err := txRepo.Draft().LockSection(ctx, nil, sectionID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return ErrSectionNotFound
			}
			return fmt.Errorf("failed to lock section: %w", err)
		}
		draft, err := s.ownedDraft(ctx, txRepo, section.DraftID, ownerID, "place questions")
		if err != nil {
			return err
		}

		questions, err := txRepo.GenQuestion().GetByIDs(ctx, nil, req.QuestionIDs)
		if err != nil {
			return fmt.Errorf("failed to load questions: %w", err)
		}
		if len(questions) != len(req.QuestionIDs) {
			return ErrQuestionNotFound
		}
		for _, question := range questions {
			if question.ActivityID != draft.ActivityID {
				return NewPermissionError("question", "place", "question belongs to another activity")
			}
			// Overwriting an existing placement would leave a gap in the
			// source section's positions.
			if question.IsInDraft {
				return NewPermissionError("question", "place", "question is already placed in a section")
			}
		}

		position, err := txRepo.Draft().NextPositionInSection(ctx, nil, sectionID)
		if err != nil {
			return fmt.Errorf("failed to compute section position: %w", err)
		}
		for _, question := range questions {
			p := position
			question.IsInDraft = true
			question.DraftSectionID = &sectionID
			question.PositionInSection = &p
			if err := txRepo.GenQuestion().Update(ctx, nil, question); err != nil {
				return fmt.Errorf("failed to place question %s: %w", question.ID, err)
			}
			position++
		}

		s.logger.Info("Questions placed",
			"section_id", sectionID,
			"count", len(questions),
			"first_position", *questions[0].PositionInSection)
		return nil
	})
}

// SetPageBreak flags a placed question so rendering starts a new page
// below it.
func (s *draftService) SetPageBreak(ctx context.Context, questionID, ownerID uuid.UUID, req *UpdateQuestionLayoutRequest) error {
	question, err := s.repo.GenQuestion().GetByID(ctx, nil, questionID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	owned, err := s.repo.Activity().IsOwnedBy(ctx, nil, question.ActivityID, ownerID)
	if err != nil {
		return fmt.Errorf("failed to check question ownership: %w", err)
	}
	if !owned {
		return NewPermissionError("question", "update layout", "not the owner")
	}
	if !question.IsInDraft {
		return NewPermissionError("question", "update layout", "question is not placed in a draft")
	}

	question.IsPageBreakBelow = req.IsPageBreakBelow
	if err := s.repo.GenQuestion().Update(ctx, nil, question); err != nil {
		return fmt.Errorf("failed to update question layout: %w", err)
	}
	return nil
}

// ===== INSTRUCTION OPERATIONS =====

func (s *draftService) AddInstruction(ctx context.Context, draftID, ownerID uuid.UUID, req *CreateInstructionRequest) (*models.QgenDraftInstruction, error) {
	if ve := s.validator.Validate(req); len(ve) > 0 {
		return nil, ve
	}
	if _, err := s.ownedDraft(ctx, s.repo, draftID, ownerID, "add instruction"); err != nil {
		return nil, err
	}

	instruction := &models.QgenDraftInstruction{
		DraftID:         draftID,
		InstructionText: req.InstructionText,
	}
	if err := s.repo.Draft().CreateInstruction(ctx, nil, instruction); err != nil {
		return nil, fmt.Errorf("failed to create instruction: %w", err)
	}
	return instruction, nil
}

func (s *draftService) ListInstructions(ctx context.Context, draftID, ownerID uuid.UUID) ([]*models.QgenDraftInstruction, error) {
	if _, err := s.ownedDraft(ctx, s.repo, draftID, ownerID, "list instructions"); err != nil {
		return nil, err
	}
	instructions, err := s.repo.Draft().ListInstructions(ctx, nil, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list instructions: %w", err)
	}
	return instructions, nil
}

// ownedDraft resolves the draft and checks the caller owns its
// activity.
func (s *draftService) ownedDraft(ctx context.Context, repo repositories.Repository, draftID, ownerID uuid.UUID, action string) (*models.QgenDraft, error) {
	draft, err := repo.Draft().GetDraftByID(ctx, nil, draftID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	owned, err := repo.Activity().IsOwnedBy(ctx, nil, draft.ActivityID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check draft ownership: %w", err)
	}
	if !owned {
		return nil, NewPermissionError("draft", action, "not the owner")
	}
	return draft, nil
}
