package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/papersetu/qgen-service/internal/llm"
	"github.com/papersetu/qgen-service/internal/models"
)

func makeDraws(n int, concepts []uuid.UUID) []llm.Draw {
	draws := make([]llm.Draw, n)
	for i := range draws {
		draws[i] = llm.Draw{
			Type:       models.MCQ4,
			Hardness:   models.HardnessEasy,
			ConceptIDs: []uuid.UUID{concepts[i%len(concepts)]},
		}
	}
	return draws
}

func TestSplitIntoBatches_Sizes(t *testing.T) {
	concepts := []uuid.UUID{uuid.New()}

	tests := []struct {
		name      string
		draws     int
		batchSize int
		wantSizes []int
	}{
		{"empty plan", 0, 3, nil},
		{"single short batch", 2, 3, []int{2}},
		{"exact multiple", 6, 3, []int{3, 3}},
		{"remainder tail", 7, 3, []int{3, 3, 1}},
		{"batch of one", 3, 1, []int{1, 1, 1}},
		{"degenerate size clamps to one", 2, 0, []int{1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batches := SplitIntoBatches(makeDraws(tt.draws, concepts), tt.batchSize)
			if len(batches) != len(tt.wantSizes) {
				t.Fatalf("got %d batches, want %d", len(batches), len(tt.wantSizes))
			}
			for i, batch := range batches {
				if batch.Index != i {
					t.Errorf("batch %d has index %d", i, batch.Index)
				}
				if len(batch.Draws) != tt.wantSizes[i] {
					t.Errorf("batch %d has %d draws, want %d", i, len(batch.Draws), tt.wantSizes[i])
				}
			}
		})
	}
}

func TestSplitIntoBatches_PreservesOrder(t *testing.T) {
	concepts := []uuid.UUID{uuid.New(), uuid.New()}
	draws := []llm.Draw{
		{Type: models.MCQ4, Hardness: models.HardnessEasy, ConceptIDs: concepts[:1]},
		{Type: models.MCQ4, Hardness: models.HardnessMedium, ConceptIDs: concepts[1:]},
		{Type: models.ShortAnswer, Hardness: models.HardnessEasy, ConceptIDs: concepts[:1]},
	}

	batches := SplitIntoBatches(draws, 2)

	var flat []llm.Draw
	for _, b := range batches {
		flat = append(flat, b.Draws...)
	}
	if len(flat) != len(draws) {
		t.Fatalf("flattened %d draws, want %d", len(flat), len(draws))
	}
	for i := range draws {
		if flat[i].Type != draws[i].Type || flat[i].Hardness != draws[i].Hardness {
			t.Errorf("order broken at %d: got (%s,%s)", i, flat[i].Type, flat[i].Hardness)
		}
	}
}

func TestSplitIntoBatches_ConceptSubset(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	draws := []llm.Draw{
		{Type: models.MCQ4, Hardness: models.HardnessEasy, ConceptIDs: []uuid.UUID{a}},
		{Type: models.MCQ4, Hardness: models.HardnessEasy, ConceptIDs: []uuid.UUID{b}},
		{Type: models.MCQ4, Hardness: models.HardnessEasy, ConceptIDs: []uuid.UUID{c}},
		{Type: models.MCQ4, Hardness: models.HardnessEasy, ConceptIDs: []uuid.UUID{a}},
	}

	batches := SplitIntoBatches(draws, 2)
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}

	// First batch touches a and b only; second c and a.
	if len(batches[0].ConceptIDs) != 2 || batches[0].ConceptIDs[0] != a || batches[0].ConceptIDs[1] != b {
		t.Errorf("batch 0 concepts = %v, want [a b]", batches[0].ConceptIDs)
	}
	if len(batches[1].ConceptIDs) != 2 || batches[1].ConceptIDs[0] != c || batches[1].ConceptIDs[1] != a {
		t.Errorf("batch 1 concepts = %v, want [c a]", batches[1].ConceptIDs)
	}
}
