package validator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/papersetu/qgen-service/internal/models"
)

// MaxQuestionsPerRequest caps a single generation run.
const MaxQuestionsPerRequest = 50

// BusinessValidator handles cross-field business rule validation on top
// of struct tags.
type BusinessValidator struct {
	validator *Validator
}

func NewBusinessValidator(v *Validator) *BusinessValidator {
	return &BusinessValidator{validator: v}
}

// ValidateGenerateRequest checks everything that must hold before any
// credit reservation or external call. It also resolves question type
// aliases in place, so downstream code only ever sees canonical types.
func (bv *BusinessValidator) ValidateGenerateRequest(req *GenerateQuestionsRequest) ValidationErrors {
	errors := bv.validator.Struct(req)

	// Difficulty percentages must sum to exactly 100.
	dist := req.DifficultyDistribution
	if sum := dist.Easy + dist.Medium + dist.Hard; sum != 100 {
		errors = append(errors, ValidationError{
			Field:   "difficulty_distribution",
			Message: fmt.Sprintf("percentages must sum to 100, got %d", sum),
			Value:   sum,
			Rule:    "difficulty_sum",
		})
	}

	// Question types: resolve aliases, reject unknown or unrepresentable.
	seenTypes := make(map[models.QuestionType]bool, len(req.QuestionTypes))
	for i := range req.QuestionTypes {
		tc := &req.QuestionTypes[i]
		resolved, ok := models.ResolveQuestionType(tc.Type)
		if !ok {
			message := "unknown question type"
			if models.IsKnownUnrepresentableType(tc.Type) {
				message = "question type is not supported for generation"
			}
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("question_types[%d].type", i),
				Message: message,
				Value:   tc.Type,
				Rule:    "question_type",
			})
			continue
		}
		if seenTypes[resolved] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("question_types[%d].type", i),
				Message: "duplicate question type",
				Value:   tc.Type,
				Rule:    "question_type",
			})
			continue
		}
		seenTypes[resolved] = true
		tc.Type = string(resolved)
	}

	if total := req.TotalRequested(); total > MaxQuestionsPerRequest {
		errors = append(errors, ValidationError{
			Field:   "question_types",
			Message: fmt.Sprintf("total requested questions must be at most %d, got %d", MaxQuestionsPerRequest, total),
			Value:   total,
			Rule:    "total_questions",
		})
	}

	// Concept ids must be unique; ordering is meaningful to the planner.
	seenConcepts := make(map[uuid.UUID]bool, len(req.ConceptIDs))
	for i, id := range req.ConceptIDs {
		if id == uuid.Nil {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("concept_ids[%d]", i),
				Message: "must be a valid UUID",
				Rule:    "uuid",
			})
			continue
		}
		if seenConcepts[id] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("concept_ids[%d]", i),
				Message: "duplicate concept id",
				Value:   id,
				Rule:    "unique",
			})
		}
		seenConcepts[id] = true
	}

	return errors
}

// Validate applies struct tag validation only.
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	return bv.validator.Struct(s)
}
