package services

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/papersetu/qgen-service/internal/llm"
	"github.com/papersetu/qgen-service/internal/models"
	"github.com/papersetu/qgen-service/internal/validator"
)

// Plan turns a validated generation request into the ordered list of
// draws. Pure function, no I/O; the same input always yields the same
// plan, which keeps retries replayable.
//
// Per type, the requested count is split across difficulty levels by
// largest-remainder rounding (ties broken easy, medium, hard). Draws
// are then assigned concepts round-robin over the input order, so
// coverage across the selected syllabus is even.
func Plan(req *validator.GenerateQuestionsRequest) ([]llm.Draw, error) {
	if errs := validatePlanInput(req); len(errs) > 0 {
		return nil, errs
	}

	var draws []llm.Draw
	for _, tc := range req.QuestionTypes {
		qt := models.QuestionType(tc.Type)
		subCounts := splitByDifficulty(tc.Count, req.DifficultyDistribution)
		for i, hardness := range models.HardnessLevels {
			for n := 0; n < subCounts[i]; n++ {
				draws = append(draws, llm.Draw{Type: qt, Hardness: hardness})
			}
		}
	}

	assignConceptsRoundRobin(draws, req.ConceptIDs)

	return draws, nil
}

func validatePlanInput(req *validator.GenerateQuestionsRequest) validator.ValidationErrors {
	var errs validator.ValidationErrors

	dist := req.DifficultyDistribution
	if dist.Easy < 0 || dist.Medium < 0 || dist.Hard < 0 {
		errs = append(errs, validator.ValidationError{
			Field: "difficulty_distribution", Message: "percentages must be non-negative",
		})
	}
	if sum := dist.Easy + dist.Medium + dist.Hard; sum != 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "difficulty_distribution",
			Message: fmt.Sprintf("percentages must sum to 100, got %d", sum),
			Value:   sum,
		})
	}
	if len(req.ConceptIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field: "concept_ids", Message: "must not be empty",
		})
	}
	if len(req.QuestionTypes) == 0 {
		errs = append(errs, validator.ValidationError{
			Field: "question_types", Message: "must not be empty",
		})
	}
	for i, tc := range req.QuestionTypes {
		if tc.Count <= 0 {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("question_types[%d].count", i),
				Message: "must be positive",
				Value:   tc.Count,
			})
		}
		if _, ok := GetTypeSpec(models.QuestionType(tc.Type)); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("question_types[%d].type", i),
				Message: "unknown question type",
				Value:   tc.Type,
			})
		}
	}

	return errs
}

// splitByDifficulty distributes count across (easy, medium, hard) by
// largest-remainder rounding. The sub-counts always sum to count
// exactly; leftover units after flooring go to the levels with the
// largest fractional remainder, ties broken by difficulty order.
func splitByDifficulty(count int, dist validator.DifficultyDistribution) [3]int {
	percents := [3]int{dist.Easy, dist.Medium, dist.Hard}

	var floors [3]int
	var remainders [3]int
	floorSum := 0
	for i, p := range percents {
		product := count * p
		floors[i] = product / 100
		remainders[i] = product % 100
		floorSum += floors[i]
	}

	leftover := count - floorSum
	order := []int{0, 1, 2}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for i := 0; i < leftover; i++ {
		floors[order[i]]++
	}

	return floors
}

// assignConceptsRoundRobin tags each draw with one concept, cycling
// through the concept ids in input order.
func assignConceptsRoundRobin(draws []llm.Draw, conceptIDs []uuid.UUID) {
	for i := range draws {
		draws[i].ConceptIDs = []uuid.UUID{conceptIDs[i%len(conceptIDs)]}
	}
}
