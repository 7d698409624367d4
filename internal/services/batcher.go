package services

import (
	"github.com/google/uuid"

	"github.com/papersetu/qgen-service/internal/llm"
)

// Batch is one model call's worth of draws. ConceptIDs is the subset
// referenced by this batch's draws, not the request's full pool, so
// prompts stay focused.
type Batch struct {
	Index      int
	Draws      []llm.Draw
	ConceptIDs []uuid.UUID
}

// SplitIntoBatches chunks the plan greedily into batches of at most
// maxBatchSize draws, preserving plan order. No draw is split across
// calls; groupings only break at the size boundary.
func SplitIntoBatches(draws []llm.Draw, maxBatchSize int) []Batch {
	if len(draws) == 0 {
		return nil
	}
	if maxBatchSize < 1 {
		maxBatchSize = 1
	}

	batches := make([]Batch, 0, (len(draws)+maxBatchSize-1)/maxBatchSize)
	for start := 0; start < len(draws); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(draws) {
			end = len(draws)
		}
		chunk := draws[start:end]
		batches = append(batches, Batch{
			Index:      len(batches),
			Draws:      chunk,
			ConceptIDs: collectConceptIDs(chunk),
		})
	}

	return batches
}

// collectConceptIDs deduplicates concept ids across draws, preserving
// first-seen order.
func collectConceptIDs(draws []llm.Draw) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, draw := range draws {
		for _, id := range draw.ConceptIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}
