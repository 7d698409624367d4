package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/papersetu/qgen-service/internal/models"
)

// Draw is one planned unit of generation work.
type Draw struct {
	Type       models.QuestionType
	Hardness   models.HardnessLevel
	ConceptIDs []uuid.UUID
}

// ConceptContext is the prompt-facing view of a concept.
type ConceptContext struct {
	ID          uuid.UUID
	Name        string
	Description string
}

// ReferenceQuestion is a bank question included in the prompt so the
// model matches the syllabus register.
type ReferenceQuestion struct {
	Type         models.QuestionType
	QuestionText string
	AnswerText   string
}

// BatchRequest is one model call: a bounded set of draws plus only the
// supporting context those draws reference.
type BatchRequest struct {
	BatchIndex         int
	RetryCount         int
	Draws              []Draw
	Concepts           []ConceptContext
	ReferenceQuestions []ReferenceQuestion
	Marks              *int
}

// Candidate is one raw, untrusted question payload from the model. The
// normalizer owns all interpretation.
type Candidate map[string]any

// Client is the generation backend boundary.
type Client interface {
	Generate(ctx context.Context, req BatchRequest) ([]Candidate, error)
}

// GenerationError wraps a backend failure and classifies it for the
// retry loop.
type GenerationError struct {
	Retryable bool
	Err       error
}

func (e *GenerationError) Error() string {
	kind := "permanent"
	if e.Retryable {
		kind = "retryable"
	}
	return fmt.Sprintf("generation failed (%s): %v", kind, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a GenerationError marked retryable.
func IsRetryable(err error) bool {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Retryable
	}
	return false
}
