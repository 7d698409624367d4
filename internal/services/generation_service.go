package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/papersetu/qgen-service/internal/config"
	"github.com/papersetu/qgen-service/internal/events"
	"github.com/papersetu/qgen-service/internal/llm"
	"github.com/papersetu/qgen-service/internal/models"
	"github.com/papersetu/qgen-service/internal/repositories"
	"github.com/papersetu/qgen-service/internal/validator"
)

type generationService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.BusinessValidator
	client    llm.Client
	credits   CreditService
	publisher events.EventPublisher
	cfg       config.GenerationConfig
}

func NewGenerationService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	businessValidator *validator.BusinessValidator,
	client llm.Client,
	credits CreditService,
	publisher events.EventPublisher,
	cfg config.GenerationConfig,
) GenerationService {
	return &generationService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: businessValidator,
		client:    client,
		credits:   credits,
		publisher: publisher,
		cfg:       cfg,
	}
}

// ===== GENERATION PIPELINE =====

// Generate runs one full generation request. Credits are reserved up
// front at one credit per requested question; whatever the run fails
// to deliver is refunded before returning.
func (s *generationService) Generate(ctx context.Context, activityID, ownerID uuid.UUID, req *GenerateRequest) (*GenerationResult, error) {
	if ve := s.validator.ValidateGenerateRequest(req); len(ve) > 0 {
		return nil, ve
	}

	activity, err := s.repo.Activity().GetByID(ctx, nil, activityID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	if activity.OwnerID != ownerID {
		return nil, NewPermissionError("activity", "generate", "not the owner")
	}

	conceptMap, err := s.repo.Concept().GetByIDs(ctx, nil, req.ConceptIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load concepts: %w", err)
	}
	for _, id := range req.ConceptIDs {
		if _, ok := conceptMap[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrConceptNotFound, id)
		}
	}

	requested := req.TotalRequested()
	token := idempotencyToken(activityID, req.ClientRequestID)

	// A replayed token returns the stored outcome without touching
	// credits or the model again.
	if existing, err := s.repo.GenerationCommit().GetByToken(ctx, nil, token); err == nil {
		s.logger.Info("Replaying committed generation",
			"activity_id", activityID,
			"token", token)
		return replayResult(existing, requested)
	} else if !repositories.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check idempotency token: %w", err)
	}

	if err := s.credits.Reserve(ctx, ownerID, activityID, requested); err != nil {
		return nil, err
	}

	s.logger.Info("Starting generation run",
		"activity_id", activityID,
		"owner_id", ownerID,
		"requested", requested,
		"concepts", len(req.ConceptIDs))

	result, err := s.generateAndCommit(ctx, activity, req, conceptMap, token, requested)
	if err != nil {
		// Nothing was persisted on any error path; the whole
		// reservation comes back.
		s.refund(ctx, ownerID, activityID, requested)
		return nil, err
	}

	result.CreditsCharged = requested
	refund := requested - result.AcceptedCount
	if result.Replayed {
		// A concurrent duplicate committed first; this run charged but
		// persisted nothing.
		refund = requested
	}
	if refund > 0 {
		s.refund(ctx, ownerID, activityID, refund)
		result.CreditsRefunded = refund
	}

	if !result.Replayed {
		s.publishGenerated(ctx, activity, result)
	}

	s.logger.Info("Generation run finished",
		"activity_id", activityID,
		"requested", requested,
		"accepted", result.AcceptedCount,
		"failed_batches", result.FailedBatches,
		"refunded", result.CreditsRefunded)
	return result, nil
}

// generateAndCommit covers planning through the commit transaction.
// Any returned error means nothing was persisted.
func (s *generationService) generateAndCommit(
	ctx context.Context,
	activity *models.Activity,
	req *GenerateRequest,
	conceptMap map[uuid.UUID]*models.Concept,
	token string,
	requested int,
) (*GenerationResult, error) {
	draws, err := Plan(req)
	if err != nil {
		return nil, err
	}
	batches := SplitIntoBatches(draws, s.cfg.MaxBatchSize)

	references := s.loadReferences(ctx, req.ConceptIDs)

	defaultMarks := 1
	if req.Marks != nil {
		defaultMarks = *req.Marks
	}

	round := s.runRound(ctx, batches, conceptMap, references, req.Marks, defaultMarks)
	if len(batches) > 0 && round.succeeded == 0 {
		return nil, ErrTotalGenerationFailure
	}

	accepted := round.accepted
	rejected := round.rejected
	failedBatches := round.failedBatches

	// One supplemental round for whatever the first pass did not
	// deliver. Its own shortfall is accepted as-is.
	if len(round.shortfall) > 0 {
		s.logger.Info("Supplementing shortfall",
			"activity_id", activity.ID,
			"shortfall", len(round.shortfall))
		supplement := s.runRound(ctx, SplitIntoBatches(round.shortfall, s.cfg.MaxBatchSize), conceptMap, references, req.Marks, defaultMarks)
		accepted = append(accepted, supplement.accepted...)
		failedBatches += supplement.failedBatches
		for reason, count := range supplement.rejected {
			rejected[reason] += count
		}
	}

	// Batches may succeed at transport level while validation rejects
	// every candidate. Committing would record a zero-accepted result
	// and replay it to every retry of this client request id, so an
	// empty run fails hard instead.
	if len(accepted) == 0 {
		return nil, fmt.Errorf("%w: no candidates survived validation", ErrTotalGenerationFailure)
	}

	// A cancelled request commits nothing.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generation cancelled: %w", err)
	}

	result, err := s.commit(ctx, activity.ID, req, token, accepted, requested)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	result.Rejected = rejected
	result.FailedBatches = failedBatches
	return result, nil
}

// roundResult accumulates one generation round across its batches.
type roundResult struct {
	accepted      []NormalizedQuestion
	shortfall     []llm.Draw
	rejected      map[string]int
	failedBatches int
	succeeded     int
}

// runRound calls the model for every batch through a bounded worker
// pool and merges outcomes in batch index order, so identical inputs
// produce identically ordered results regardless of scheduling.
func (s *generationService) runRound(
	ctx context.Context,
	batches []Batch,
	conceptMap map[uuid.UUID]*models.Concept,
	references []llm.ReferenceQuestion,
	marks *int,
	defaultMarks int,
) roundResult {
	round := roundResult{rejected: make(map[string]int)}
	if len(batches) == 0 {
		return round
	}

	type outcome struct {
		candidates []llm.Candidate
		err        error
	}
	outcomes := make([]outcome, len(batches))

	sem := make(chan struct{}, s.cfg.Concurrency)
	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch Batch) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			batchReq := llm.BatchRequest{
				BatchIndex:         batch.Index,
				Draws:              batch.Draws,
				Concepts:           conceptContexts(batch.ConceptIDs, conceptMap),
				ReferenceQuestions: references,
				Marks:              marks,
			}
			candidates, err := llm.GenerateWithRetry(ctx, s.client, batchReq, s.cfg.MaxRetries)
			outcomes[i] = outcome{candidates: candidates, err: err}
		}(i, batch)
	}
	wg.Wait()

	for i, batch := range batches {
		if outcomes[i].err != nil {
			s.logger.Warn("Batch failed",
				"batch_index", batch.Index,
				"draws", len(batch.Draws),
				"error", outcomes[i].err)
			round.failedBatches++
			round.shortfall = append(round.shortfall, batch.Draws...)
			continue
		}
		round.succeeded++

		normalized := Normalize(outcomes[i].candidates, batch.Draws, defaultMarks)
		round.accepted = append(round.accepted, normalized.Accepted...)
		round.shortfall = append(round.shortfall, normalized.Shortfall...)
		for reason, count := range normalized.Rejected {
			round.rejected[reason] += count
		}
	}

	return round
}

// commit persists accepted questions, their concept maps, optional
// draft placement, and the idempotency record in one transaction.
func (s *generationService) commit(
	ctx context.Context,
	activityID uuid.UUID,
	req *GenerateRequest,
	token string,
	accepted []NormalizedQuestion,
	requested int,
) (*GenerationResult, error) {
	var result *GenerationResult

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		// The unique token index makes concurrent duplicates lose the
		// race here rather than double-insert.
		if existing, err := txRepo.GenerationCommit().GetByToken(ctx, nil, token); err == nil {
			replayed, err := replayResult(existing, requested)
			if err != nil {
				return err
			}
			result = replayed
			return nil
		} else if !repositories.IsNotFound(err) {
			return fmt.Errorf("failed to check idempotency token: %w", err)
		}

		nextPosition := 0
		if req.SectionID != nil && len(accepted) > 0 {
			section, err := txRepo.Draft().LockSection(ctx, nil, *req.SectionID)
			if err != nil {
				if repositories.IsNotFound(err) {
					return ErrSectionNotFound
				}
				return fmt.Errorf("failed to lock section: %w", err)
			}
			draft, err := txRepo.Draft().GetDraftByID(ctx, nil, section.DraftID)
			if err != nil {
				return fmt.Errorf("failed to get section draft: %w", err)
			}
			if draft.ActivityID != activityID {
				return NewPermissionError("section", "place questions", "section belongs to another activity")
			}
			nextPosition, err = txRepo.Draft().NextPositionInSection(ctx, nil, section.ID)
			if err != nil {
				return fmt.Errorf("failed to compute section position: %w", err)
			}
		}

		questions := make([]*models.GenQuestion, len(accepted))
		var conceptMaps []*models.GenQuestionConcept
		questionIDs := make([]uuid.UUID, len(accepted))
		for i, n := range accepted {
			question := &models.GenQuestion{
				ID:               uuid.New(),
				ActivityID:       activityID,
				Type:             n.Type,
				Hardness:         n.Hardness,
				Marks:            n.Marks,
				QuestionText:     n.QuestionText,
				AnswerText:       n.AnswerText,
				Explanation:      n.Explanation,
				Option1:          n.Options[0],
				Option2:          n.Options[1],
				Option3:          n.Options[2],
				Option4:          n.Options[3],
				CorrectMCQOption: n.CorrectMCQOption,
				MSQOption1Answer: n.MSQFlags[0],
				MSQOption2Answer: n.MSQFlags[1],
				MSQOption3Answer: n.MSQFlags[2],
				MSQOption4Answer: n.MSQFlags[3],
			}
			if req.SectionID != nil {
				position := nextPosition + i
				question.IsInDraft = true
				question.DraftSectionID = req.SectionID
				question.PositionInSection = &position
			}
			questions[i] = question
			questionIDs[i] = question.ID

			for _, conceptID := range n.Draw.ConceptIDs {
				conceptMaps = append(conceptMaps, &models.GenQuestionConcept{
					GenQuestionID: question.ID,
					ConceptID:     conceptID,
				})
			}
		}

		if len(questions) > 0 {
			if err := txRepo.GenQuestion().CreateBatch(ctx, nil, questions); err != nil {
				return fmt.Errorf("failed to insert questions: %w", err)
			}
			if err := txRepo.GenQuestion().CreateConceptMaps(ctx, nil, conceptMaps); err != nil {
				return fmt.Errorf("failed to insert concept maps: %w", err)
			}
		}

		idsJSON, err := json.Marshal(questionIDs)
		if err != nil {
			return fmt.Errorf("failed to marshal question ids: %w", err)
		}
		commit := &models.GenerationCommit{
			Token:         token,
			ActivityID:    activityID,
			AcceptedCount: len(accepted),
			QuestionIDs:   idsJSON,
		}
		if err := txRepo.GenerationCommit().Create(ctx, nil, commit); err != nil {
			return fmt.Errorf("failed to record commit: %w", err)
		}

		result = &GenerationResult{
			ActivityID:     activityID,
			RequestedCount: requested,
			AcceptedCount:  len(accepted),
			QuestionIDs:    questionIDs,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ===== QUERIES =====

func (s *generationService) ListQuestions(ctx context.Context, activityID, ownerID uuid.UUID, filters repositories.GenQuestionFilters) (*QuestionListResponse, error) {
	owned, err := s.repo.Activity().IsOwnedBy(ctx, nil, activityID, ownerID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to check activity ownership: %w", err)
	}
	if !owned {
		return nil, NewPermissionError("activity", "list questions", "not the owner")
	}

	questions, total, err := s.repo.GenQuestion().ListByActivity(ctx, nil, activityID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	size := filters.Limit
	if size <= 0 {
		size = len(questions)
	}
	page := 1
	if size > 0 {
		page = filters.Offset/size + 1
	}
	return &QuestionListResponse{
		Questions: questions,
		Total:     total,
		Page:      page,
		Size:      size,
	}, nil
}

// ===== HELPERS =====

func idempotencyToken(activityID uuid.UUID, clientRequestID string) string {
	return activityID.String() + ":" + clientRequestID
}

func replayResult(commit *models.GenerationCommit, requested int) (*GenerationResult, error) {
	var ids []uuid.UUID
	if len(commit.QuestionIDs) > 0 {
		if err := json.Unmarshal(commit.QuestionIDs, &ids); err != nil {
			return nil, fmt.Errorf("failed to decode committed question ids: %w", err)
		}
	}
	return &GenerationResult{
		ActivityID:     commit.ActivityID,
		RequestedCount: requested,
		AcceptedCount:  commit.AcceptedCount,
		QuestionIDs:    ids,
		Replayed:       true,
	}, nil
}

// loadReferences pulls bank questions mapped to the requested concepts
// for prompt context. Reference context is optional; failures degrade
// to an uncontextualized prompt.
func (s *generationService) loadReferences(ctx context.Context, conceptIDs []uuid.UUID) []llm.ReferenceQuestion {
	if s.cfg.BankContextLimit <= 0 {
		return nil
	}
	bankQuestions, err := s.repo.BankQuestion().GetByConcepts(ctx, nil, conceptIDs, repositories.BankQuestionFilters{
		Limit: s.cfg.BankContextLimit,
	})
	if err != nil {
		s.logger.Warn("Failed to load bank reference questions", "error", err)
		return nil
	}

	references := make([]llm.ReferenceQuestion, 0, len(bankQuestions))
	for _, bq := range bankQuestions {
		references = append(references, llm.ReferenceQuestion{
			Type:         bq.Type,
			QuestionText: bq.QuestionText,
			AnswerText:   bq.AnswerText,
		})
	}
	return references
}

func conceptContexts(ids []uuid.UUID, conceptMap map[uuid.UUID]*models.Concept) []llm.ConceptContext {
	contexts := make([]llm.ConceptContext, 0, len(ids))
	for _, id := range ids {
		concept, ok := conceptMap[id]
		if !ok {
			continue
		}
		cc := llm.ConceptContext{ID: concept.ID, Name: concept.Name}
		if concept.Description != nil {
			cc.Description = *concept.Description
		}
		contexts = append(contexts, cc)
	}
	return contexts
}

// refund is best-effort cleanup on paths that already have an error or
// a result to return.
func (s *generationService) refund(ctx context.Context, ownerID, activityID uuid.UUID, amount int) {
	if amount <= 0 {
		return
	}
	// The refund must land even when the request context is gone.
	ctx = context.WithoutCancel(ctx)
	if err := s.credits.Refund(ctx, ownerID, activityID, amount); err != nil {
		s.logger.Error("Failed to refund credits",
			"owner_id", ownerID,
			"activity_id", activityID,
			"amount", amount,
			"error", err)
		return
	}
	if s.publisher != nil {
		event := events.NewCreditsRefundedEvent(events.CreditsRefundedEvent{
			ActivityID: activityID,
			OwnerID:    ownerID,
			Amount:     amount,
		})
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish refund event", "error", err)
		}
	}
}

func (s *generationService) publishGenerated(ctx context.Context, activity *models.Activity, result *GenerationResult) {
	if s.publisher == nil {
		return
	}
	event := events.NewQuestionsGeneratedEvent(events.QuestionsGeneratedEvent{
		ActivityID:     activity.ID,
		OwnerID:        activity.OwnerID,
		RequestedCount: result.RequestedCount,
		AcceptedCount:  result.AcceptedCount,
		QuestionIDs:    result.QuestionIDs,
	})
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("Failed to publish generation event", "error", err)
	}
}
