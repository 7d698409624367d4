package validator

import (
	"time"

	"github.com/google/uuid"
)

// QuestionTypeCount is one requested (type, count) pair. Type accepts
// canonical names and the documented aliases; resolution happens in
// ValidateGenerateRequest.
type QuestionTypeCount struct {
	Type  string `json:"type" validate:"required"`
	Count int    `json:"count" validate:"required,min=1"`
}

// DifficultyDistribution carries integer percentages that must sum to
// exactly 100.
type DifficultyDistribution struct {
	Easy   int `json:"easy" validate:"min=0,max=100"`
	Medium int `json:"medium" validate:"min=0,max=100"`
	Hard   int `json:"hard" validate:"min=0,max=100"`
}

// GenerateQuestionsRequest is the body of the generation endpoint.
// ClientRequestID plus the activity id forms the idempotency token, so
// a network-level retry of the same request replays the original
// result.
type GenerateQuestionsRequest struct {
	ClientRequestID        string                 `json:"client_request_id" validate:"required,min=1,max=64"`
	ConceptIDs             []uuid.UUID            `json:"concept_ids" validate:"required,min=1"`
	QuestionTypes          []QuestionTypeCount    `json:"question_types" validate:"required,min=1,dive"`
	DifficultyDistribution DifficultyDistribution `json:"difficulty_distribution"`

	// Optional draft placement for the committed questions.
	SectionID *uuid.UUID `json:"section_id"`
	Marks     *int       `json:"marks" validate:"omitempty,min=0"`
}

// TotalRequested sums the per-type counts.
func (r *GenerateQuestionsRequest) TotalRequested() int {
	total := 0
	for _, tc := range r.QuestionTypes {
		total += tc.Count
	}
	return total
}

type CreateActivityRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	ProductType string `json:"product_type" validate:"required,oneof=qgen"`
}

type CreateSectionRequest struct {
	SectionName string `json:"section_name" validate:"required,min=1,max=100"`
}

type UpdateSectionRequest struct {
	SectionName string `json:"section_name" validate:"required,min=1,max=100"`
}

// UpdateQuestionLayoutRequest toggles paper-layout flags on a placed
// question.
type UpdateQuestionLayoutRequest struct {
	IsPageBreakBelow bool `json:"is_page_break_below"`
}

type PlaceQuestionsRequest struct {
	QuestionIDs []uuid.UUID `json:"question_ids" validate:"required,min=1"`
}

type UpdateDraftRequest struct {
	PaperTitle    *string    `json:"paper_title" validate:"omitempty,max=300"`
	PaperSubtitle *string    `json:"paper_subtitle" validate:"omitempty,max=300"`
	InstituteName *string    `json:"institute_name" validate:"omitempty,max=300"`
	SubjectName   *string    `json:"subject_name" validate:"omitempty,max=100"`
	ClassName     *string    `json:"school_class_name" validate:"omitempty,max=100"`
	MaximumMarks  *int       `json:"maximum_marks" validate:"omitempty,min=0"`
	PaperDatetime *time.Time `json:"paper_datetime"`
}

type CreateInstructionRequest struct {
	InstructionText string `json:"instruction_text" validate:"required,min=1,max=2000"`
}
