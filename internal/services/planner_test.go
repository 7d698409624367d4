package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/papersetu/qgen-service/internal/models"
	"github.com/papersetu/qgen-service/internal/validator"
)

func planRequest(types []validator.QuestionTypeCount, dist validator.DifficultyDistribution, concepts int) *validator.GenerateQuestionsRequest {
	ids := make([]uuid.UUID, concepts)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return &validator.GenerateQuestionsRequest{
		ClientRequestID:        "req",
		ConceptIDs:             ids,
		QuestionTypes:          types,
		DifficultyDistribution: dist,
	}
}

func TestSplitByDifficulty_LargestRemainder(t *testing.T) {
	tests := []struct {
		name  string
		count int
		dist  validator.DifficultyDistribution
		want  [3]int
	}{
		// floors {2.1, 3.5, 1.4} sum 6, leftover 1 to medium (.5)
		{"spec example", 7, validator.DifficultyDistribution{Easy: 30, Medium: 50, Hard: 20}, [3]int{2, 4, 1}},
		{"exact split", 10, validator.DifficultyDistribution{Easy: 30, Medium: 50, Hard: 20}, [3]int{3, 5, 2}},
		{"all one level", 5, validator.DifficultyDistribution{Easy: 0, Medium: 0, Hard: 100}, [3]int{0, 0, 5}},
		// thirds of 1: floors 0, remainders equal, tie to easy
		{"tie goes to easy", 1, validator.DifficultyDistribution{Easy: 33, Medium: 33, Hard: 34}, [3]int{0, 0, 1}},
		// 2 units at equal remainders 50/50/0: easy then medium
		{"two-way tie", 1, validator.DifficultyDistribution{Easy: 50, Medium: 50, Hard: 0}, [3]int{1, 0, 0}},
		{"single question", 1, validator.DifficultyDistribution{Easy: 30, Medium: 50, Hard: 20}, [3]int{0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitByDifficulty(tt.count, tt.dist)
			if got != tt.want {
				t.Errorf("splitByDifficulty(%d, %+v) = %v, want %v", tt.count, tt.dist, got, tt.want)
			}
		})
	}
}

func TestSplitByDifficulty_AlwaysSumsToCount(t *testing.T) {
	dists := []validator.DifficultyDistribution{
		{Easy: 30, Medium: 50, Hard: 20},
		{Easy: 33, Medium: 33, Hard: 34},
		{Easy: 1, Medium: 1, Hard: 98},
		{Easy: 100},
	}
	for count := 1; count <= 50; count++ {
		for _, dist := range dists {
			got := splitByDifficulty(count, dist)
			if sum := got[0] + got[1] + got[2]; sum != count {
				t.Fatalf("count=%d dist=%+v: sub-counts %v sum to %d", count, dist, got, sum)
			}
			for _, n := range got {
				if n < 0 {
					t.Fatalf("count=%d dist=%+v: negative sub-count %v", count, dist, got)
				}
			}
		}
	}
}

func TestPlan_OrderingDeterministic(t *testing.T) {
	req := planRequest(
		[]validator.QuestionTypeCount{
			{Type: "short_answer", Count: 3},
			{Type: "mcq4", Count: 2},
		},
		validator.DifficultyDistribution{Easy: 34, Medium: 33, Hard: 33},
		1,
	)

	draws, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(draws) != 5 {
		t.Fatalf("got %d draws, want 5", len(draws))
	}

	// Types appear in input order, difficulties easy->medium->hard
	// within each type.
	if draws[0].Type != models.ShortAnswer || draws[len(draws)-1].Type != models.MCQ4 {
		t.Errorf("type ordering broken: %v ... %v", draws[0].Type, draws[len(draws)-1].Type)
	}
	lastType := draws[0].Type
	rank := map[models.HardnessLevel]int{models.HardnessEasy: 0, models.HardnessMedium: 1, models.HardnessHard: 2}
	lastRank := -1
	for _, d := range draws {
		if d.Type != lastType {
			lastType = d.Type
			lastRank = -1
		}
		if rank[d.Hardness] < lastRank {
			t.Errorf("difficulty ordering broken within %s", d.Type)
		}
		lastRank = rank[d.Hardness]
	}

	// Same input, same plan.
	again, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan (second): %v", err)
	}
	for i := range draws {
		if draws[i].Type != again[i].Type || draws[i].Hardness != again[i].Hardness ||
			draws[i].ConceptIDs[0] != again[i].ConceptIDs[0] {
			t.Fatalf("plan not deterministic at draw %d", i)
		}
	}
}

func TestPlan_RoundRobinFairness(t *testing.T) {
	req := planRequest(
		[]validator.QuestionTypeCount{{Type: "mcq4", Count: 7}},
		validator.DifficultyDistribution{Easy: 30, Medium: 50, Hard: 20},
		3,
	)

	draws, err := Plan(req)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	counts := make(map[uuid.UUID]int)
	for _, d := range draws {
		if len(d.ConceptIDs) != 1 {
			t.Fatalf("draw has %d concepts, want 1", len(d.ConceptIDs))
		}
		counts[d.ConceptIDs[0]]++
	}
	if len(counts) != 3 {
		t.Fatalf("draws spread over %d concepts, want 3", len(counts))
	}

	lo, hi := 7, 0
	for _, n := range counts {
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	if hi-lo > 1 {
		t.Errorf("per-concept counts %v differ by more than 1", counts)
	}
	// Round-robin starts at the first concept, so it gets the extra.
	if counts[req.ConceptIDs[0]] != 3 {
		t.Errorf("first concept got %d draws, want 3", counts[req.ConceptIDs[0]])
	}
}

func TestPlan_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*validator.GenerateQuestionsRequest)
	}{
		{"sum 99", func(r *validator.GenerateQuestionsRequest) {
			r.DifficultyDistribution = validator.DifficultyDistribution{Easy: 30, Medium: 50, Hard: 19}
		}},
		{"sum 101", func(r *validator.GenerateQuestionsRequest) {
			r.DifficultyDistribution = validator.DifficultyDistribution{Easy: 31, Medium: 50, Hard: 20}
		}},
		{"zero count", func(r *validator.GenerateQuestionsRequest) {
			r.QuestionTypes[0].Count = 0
		}},
		{"no concepts", func(r *validator.GenerateQuestionsRequest) {
			r.ConceptIDs = nil
		}},
		{"unknown type", func(r *validator.GenerateQuestionsRequest) {
			r.QuestionTypes[0].Type = "essay"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := planRequest(
				[]validator.QuestionTypeCount{{Type: "mcq4", Count: 4}},
				validator.DifficultyDistribution{Easy: 30, Medium: 50, Hard: 20},
				2,
			)
			tt.mutate(req)
			if _, err := Plan(req); err == nil {
				t.Error("expected error")
			}
		})
	}
}
