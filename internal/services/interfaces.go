package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/papersetu/qgen-service/internal/models"
	"github.com/papersetu/qgen-service/internal/repositories"
	"github.com/papersetu/qgen-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type GenerateRequest = validator.GenerateQuestionsRequest
type CreateActivityRequest = validator.CreateActivityRequest
type CreateSectionRequest = validator.CreateSectionRequest
type UpdateSectionRequest = validator.UpdateSectionRequest
type UpdateQuestionLayoutRequest = validator.UpdateQuestionLayoutRequest
type PlaceQuestionsRequest = validator.PlaceQuestionsRequest
type UpdateDraftRequest = validator.UpdateDraftRequest
type CreateInstructionRequest = validator.CreateInstructionRequest

// GenerationResult is the outcome of one generation run. Replayed is
// set when the idempotency token matched a prior commit and the stored
// result was returned without calling the model again.
type GenerationResult struct {
	ActivityID      uuid.UUID      `json:"activity_id"`
	RequestedCount  int            `json:"requested_count"`
	AcceptedCount   int            `json:"accepted_count"`
	QuestionIDs     []uuid.UUID    `json:"question_ids"`
	Rejected        map[string]int `json:"rejected,omitempty"`
	FailedBatches   int            `json:"failed_batches"`
	CreditsCharged  int            `json:"credits_charged"`
	CreditsRefunded int            `json:"credits_refunded"`
	Replayed        bool           `json:"replayed"`
}

type ActivityResponse struct {
	*models.Activity
	DraftID *uuid.UUID `json:"draft_id,omitempty"`
}

type ActivityListResponse struct {
	Activities []*models.Activity `json:"activities"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Size       int                `json:"size"`
}

type QuestionListResponse struct {
	Questions []*models.GenQuestion `json:"questions"`
	Total     int64                 `json:"total"`
	Page      int                   `json:"page"`
	Size      int                   `json:"size"`
}

type BalanceResponse struct {
	OwnerID uuid.UUID `json:"owner_id"`
	Balance int       `json:"balance"`
}

type LedgerHistoryResponse struct {
	Entries []*models.CreditLedgerEntry `json:"entries"`
	Total   int64                       `json:"total"`
	Page    int                         `json:"page"`
	Size    int                         `json:"size"`
}

// ===== SERVICE INTERFACES =====

type GenerationService interface {
	// Generate runs the full pipeline: validate, reserve credits, plan,
	// batch, call the model, normalize, commit, finalize credits.
	Generate(ctx context.Context, activityID, ownerID uuid.UUID, req *GenerateRequest) (*GenerationResult, error)

	// ListQuestions returns the activity's generated questions.
	ListQuestions(ctx context.Context, activityID, ownerID uuid.UUID, filters repositories.GenQuestionFilters) (*QuestionListResponse, error)
}

type ActivityService interface {
	Create(ctx context.Context, req *CreateActivityRequest, ownerID uuid.UUID) (*ActivityResponse, error)
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*ActivityResponse, error)
	List(ctx context.Context, ownerID uuid.UUID, filters repositories.ActivityFilters) (*ActivityListResponse, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

type DraftService interface {
	GetByID(ctx context.Context, draftID, ownerID uuid.UUID) (*models.QgenDraft, error)
	Update(ctx context.Context, draftID, ownerID uuid.UUID, req *UpdateDraftRequest) (*models.QgenDraft, error)

	CreateSection(ctx context.Context, draftID, ownerID uuid.UUID, req *CreateSectionRequest) (*models.QgenDraftSection, error)
	RenameSection(ctx context.Context, sectionID, ownerID uuid.UUID, req *UpdateSectionRequest) (*models.QgenDraftSection, error)
	PlaceQuestions(ctx context.Context, sectionID, ownerID uuid.UUID, req *PlaceQuestionsRequest) error

	// SetPageBreak toggles the page-break-below flag on a placed
	// question.
	SetPageBreak(ctx context.Context, questionID, ownerID uuid.UUID, req *UpdateQuestionLayoutRequest) error

	AddInstruction(ctx context.Context, draftID, ownerID uuid.UUID, req *CreateInstructionRequest) (*models.QgenDraftInstruction, error)
	ListInstructions(ctx context.Context, draftID, ownerID uuid.UUID) ([]*models.QgenDraftInstruction, error)
}

type CreditService interface {
	// Reserve appends a negative ledger entry for cost, failing with
	// ErrInsufficientCredits when the balance does not cover it. Runs in
	// its own transaction under the owner's row lock.
	Reserve(ctx context.Context, ownerID uuid.UUID, activityID uuid.UUID, cost int) error

	// Refund appends a positive entry returning part or all of a
	// reservation. A zero amount is a no-op.
	Refund(ctx context.Context, ownerID uuid.UUID, activityID uuid.UUID, amount int) error

	// TopUp credits the owner's balance.
	TopUp(ctx context.Context, ownerID uuid.UUID, amount int) error

	Balance(ctx context.Context, ownerID uuid.UUID) (*BalanceResponse, error)
	History(ctx context.Context, ownerID uuid.UUID, page, size int) (*LedgerHistoryResponse, error)
}

// ServiceManager provides access to all services with lifecycle control
type ServiceManager interface {
	Initialize(ctx context.Context) error

	Generation() GenerationService
	Activity() ActivityService
	Draft() DraftService
	Credit() CreditService

	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
