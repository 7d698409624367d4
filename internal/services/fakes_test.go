package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/papersetu/qgen-service/internal/models"
	"github.com/papersetu/qgen-service/internal/repositories"
)

// fakeRepo is an in-memory repositories.Repository. WithTransaction
// snapshots the state and restores it when the callback fails, which
// is enough rollback fidelity for these tests.
type fakeRepo struct {
	mu sync.Mutex

	users        map[uuid.UUID]*models.User
	activities   map[uuid.UUID]*models.Activity
	concepts     map[uuid.UUID]*models.Concept
	bank         []*models.BankQuestion
	questions    map[uuid.UUID]*models.GenQuestion
	order        []uuid.UUID
	conceptMaps  []*models.GenQuestionConcept
	drafts       map[uuid.UUID]*models.QgenDraft
	sections     map[uuid.UUID]*models.QgenDraftSection
	instructions []*models.QgenDraftInstruction
	ledger       []*models.CreditLedgerEntry
	commits      map[string]*models.GenerationCommit

	// Injectable failures
	failCreateBatch error
	failAppend      error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:      make(map[uuid.UUID]*models.User),
		activities: make(map[uuid.UUID]*models.Activity),
		concepts:   make(map[uuid.UUID]*models.Concept),
		questions:  make(map[uuid.UUID]*models.GenQuestion),
		drafts:     make(map[uuid.UUID]*models.QgenDraft),
		sections:   make(map[uuid.UUID]*models.QgenDraftSection),
		commits:    make(map[string]*models.GenerationCommit),
	}
}

// ===== seeding helpers =====

func (f *fakeRepo) seedUser() uuid.UUID {
	id := uuid.New()
	f.users[id] = &models.User{ID: id}
	return id
}

func (f *fakeRepo) seedActivity(ownerID uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.activities[id] = &models.Activity{
		ID:          id,
		OwnerID:     ownerID,
		Name:        "Unit Test Paper",
		ProductType: models.ProductQGen,
	}
	return id
}

func (f *fakeRepo) seedConcepts(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		id := uuid.New()
		f.concepts[id] = &models.Concept{ID: id, Name: "Concept", TopicID: uuid.New()}
		ids[i] = id
	}
	return ids
}

func (f *fakeRepo) seedCredits(ownerID uuid.UUID, amount int) {
	f.ledger = append(f.ledger, &models.CreditLedgerEntry{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Amount:  amount,
		Reason:  models.LedgerTopUp,
	})
}

func (f *fakeRepo) seedSection(activityID uuid.UUID) (draftID, sectionID uuid.UUID) {
	draftID = uuid.New()
	f.drafts[draftID] = &models.QgenDraft{ID: draftID, ActivityID: activityID}
	sectionID = uuid.New()
	f.sections[sectionID] = &models.QgenDraftSection{ID: sectionID, DraftID: draftID, SectionName: "Section A"}
	return draftID, sectionID
}

func (f *fakeRepo) balanceOf(ownerID uuid.UUID) int {
	sum := 0
	for _, entry := range f.ledger {
		if entry.OwnerID == ownerID {
			sum += entry.Amount
		}
	}
	return sum
}

func (f *fakeRepo) ledgerReasons(ownerID uuid.UUID) []models.LedgerReason {
	var reasons []models.LedgerReason
	for _, entry := range f.ledger {
		if entry.OwnerID == ownerID {
			reasons = append(reasons, entry.Reason)
		}
	}
	return reasons
}

// ===== Repository =====

func (f *fakeRepo) Activity() repositories.ActivityRepository                 { return (*fakeActivities)(f) }
func (f *fakeRepo) GenQuestion() repositories.GenQuestionRepository           { return (*fakeGenQuestions)(f) }
func (f *fakeRepo) BankQuestion() repositories.BankQuestionRepository         { return (*fakeBank)(f) }
func (f *fakeRepo) Concept() repositories.ConceptRepository                   { return (*fakeConcepts)(f) }
func (f *fakeRepo) Draft() repositories.DraftRepository                       { return (*fakeDrafts)(f) }
func (f *fakeRepo) Credit() repositories.CreditRepository                     { return (*fakeCredits)(f) }
func (f *fakeRepo) GenerationCommit() repositories.GenerationCommitRepository { return (*fakeCommits)(f) }
func (f *fakeRepo) User() repositories.UserRepository                         { return (*fakeUsers)(f) }

func (f *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	f.mu.Lock()
	snapshot := f.snapshot()
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.restore(snapshot)
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeRepo) Ping(ctx context.Context) error { return nil }
func (f *fakeRepo) Close() error                   { return nil }

type fakeSnapshot struct {
	questions   map[uuid.UUID]*models.GenQuestion
	order       []uuid.UUID
	conceptMaps []*models.GenQuestionConcept
	ledger      []*models.CreditLedgerEntry
	commits     map[string]*models.GenerationCommit
	sections    map[uuid.UUID]*models.QgenDraftSection
	drafts      map[uuid.UUID]*models.QgenDraft
	activities  map[uuid.UUID]*models.Activity
}

func (f *fakeRepo) snapshot() fakeSnapshot {
	s := fakeSnapshot{
		questions:   make(map[uuid.UUID]*models.GenQuestion, len(f.questions)),
		order:       append([]uuid.UUID(nil), f.order...),
		conceptMaps: append([]*models.GenQuestionConcept(nil), f.conceptMaps...),
		ledger:      append([]*models.CreditLedgerEntry(nil), f.ledger...),
		commits:     make(map[string]*models.GenerationCommit, len(f.commits)),
		sections:    make(map[uuid.UUID]*models.QgenDraftSection, len(f.sections)),
		drafts:      make(map[uuid.UUID]*models.QgenDraft, len(f.drafts)),
		activities:  make(map[uuid.UUID]*models.Activity, len(f.activities)),
	}
	for k, v := range f.questions {
		s.questions[k] = v
	}
	for k, v := range f.commits {
		s.commits[k] = v
	}
	for k, v := range f.sections {
		s.sections[k] = v
	}
	for k, v := range f.drafts {
		s.drafts[k] = v
	}
	for k, v := range f.activities {
		s.activities[k] = v
	}
	return s
}

func (f *fakeRepo) restore(s fakeSnapshot) {
	f.questions = s.questions
	f.order = s.order
	f.conceptMaps = s.conceptMaps
	f.ledger = s.ledger
	f.commits = s.commits
	f.sections = s.sections
	f.drafts = s.drafts
	f.activities = s.activities
}

// ===== sub-repositories =====

type fakeActivities fakeRepo

func (f *fakeActivities) Create(ctx context.Context, tx *gorm.DB, activity *models.Activity) error {
	(*fakeRepo)(f).mu.Lock()
	defer (*fakeRepo)(f).mu.Unlock()
	f.activities[activity.ID] = activity
	return nil
}

func (f *fakeActivities) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Activity, error) {
	(*fakeRepo)(f).mu.Lock()
	defer (*fakeRepo)(f).mu.Unlock()
	activity, ok := f.activities[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return activity, nil
}

func (f *fakeActivities) Update(ctx context.Context, tx *gorm.DB, activity *models.Activity) error {
	f.activities[activity.ID] = activity
	return nil
}

func (f *fakeActivities) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	(*fakeRepo)(f).mu.Lock()
	defer (*fakeRepo)(f).mu.Unlock()
	delete(f.activities, id)
	return nil
}

func (f *fakeActivities) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, filters repositories.ActivityFilters) ([]*models.Activity, int64, error) {
	var out []*models.Activity
	for _, a := range f.activities {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeActivities) IsOwnedBy(ctx context.Context, tx *gorm.DB, id, ownerID uuid.UUID) (bool, error) {
	activity, ok := f.activities[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	return activity.OwnerID == ownerID, nil
}

type fakeUsers fakeRepo

func (f *fakeUsers) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (f *fakeUsers) GetByExternalID(ctx context.Context, tx *gorm.DB, externalID string) (*models.User, error) {
	for _, user := range f.users {
		if user.ExternalID == externalID {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUsers) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

type fakeConcepts fakeRepo

func (f *fakeConcepts) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Concept, error) {
	concept, ok := f.concepts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return concept, nil
}

func (f *fakeConcepts) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*models.Concept, error) {
	out := make(map[uuid.UUID]*models.Concept)
	for _, id := range ids {
		if concept, ok := f.concepts[id]; ok {
			out[id] = concept
		}
	}
	return out, nil
}

func (f *fakeConcepts) ListByTopic(ctx context.Context, tx *gorm.DB, topicID uuid.UUID) ([]*models.Concept, error) {
	return nil, nil
}

type fakeBank fakeRepo

func (f *fakeBank) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.BankQuestion, error) {
	return nil, repositories.ErrNotFound
}

func (f *fakeBank) GetByConcepts(ctx context.Context, tx *gorm.DB, conceptIDs []uuid.UUID, filters repositories.BankQuestionFilters) ([]*models.BankQuestion, error) {
	if filters.Limit > 0 && len(f.bank) > filters.Limit {
		return f.bank[:filters.Limit], nil
	}
	return f.bank, nil
}

type fakeGenQuestions fakeRepo

func (f *fakeGenQuestions) Create(ctx context.Context, tx *gorm.DB, question *models.GenQuestion) error {
	return f.CreateBatch(ctx, tx, []*models.GenQuestion{question})
}

func (f *fakeGenQuestions) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.GenQuestion, error) {
	question, ok := f.questions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return question, nil
}

func (f *fakeGenQuestions) Update(ctx context.Context, tx *gorm.DB, question *models.GenQuestion) error {
	(*fakeRepo)(f).mu.Lock()
	defer (*fakeRepo)(f).mu.Unlock()
	f.questions[question.ID] = question
	return nil
}

func (f *fakeGenQuestions) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	delete(f.questions, id)
	return nil
}

func (f *fakeGenQuestions) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.GenQuestion) error {
	(*fakeRepo)(f).mu.Lock()
	defer (*fakeRepo)(f).mu.Unlock()
	if f.failCreateBatch != nil {
		return f.failCreateBatch
	}
	for _, question := range questions {
		if question.ID == uuid.Nil {
			question.ID = uuid.New()
		}
		f.questions[question.ID] = question
		f.order = append(f.order, question.ID)
	}
	return nil
}

func (f *fakeGenQuestions) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*models.GenQuestion, error) {
	var out []*models.GenQuestion
	for _, id := range ids {
		if question, ok := f.questions[id]; ok {
			out = append(out, question)
		}
	}
	return out, nil
}

func (f *fakeGenQuestions) CreateConceptMaps(ctx context.Context, tx *gorm.DB, maps []*models.GenQuestionConcept) error {
	(*fakeRepo)(f).mu.Lock()
	defer (*fakeRepo)(f).mu.Unlock()
	f.conceptMaps = append(f.conceptMaps, maps...)
	return nil
}

func (f *fakeGenQuestions) ListByActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID, filters repositories.GenQuestionFilters) ([]*models.GenQuestion, int64, error) {
	var out []*models.GenQuestion
	for _, id := range f.order {
		if f.questions[id] != nil && f.questions[id].ActivityID == activityID {
			out = append(out, f.questions[id])
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeGenQuestions) ListBySection(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) ([]*models.GenQuestion, error) {
	var out []*models.GenQuestion
	for _, id := range f.order {
		question := f.questions[id]
		if question != nil && question.DraftSectionID != nil && *question.DraftSectionID == sectionID {
			out = append(out, question)
		}
	}
	return out, nil
}

func (f *fakeGenQuestions) CountByActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) (int64, error) {
	_, total, err := f.ListByActivity(ctx, tx, activityID, repositories.GenQuestionFilters{})
	return total, err
}

type fakeDrafts fakeRepo

func (f *fakeDrafts) CreateDraft(ctx context.Context, tx *gorm.DB, draft *models.QgenDraft) error {
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	f.drafts[draft.ID] = draft
	return nil
}

func (f *fakeDrafts) GetDraftByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QgenDraft, error) {
	draft, ok := f.drafts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return draft, nil
}

func (f *fakeDrafts) GetDraftByIDWithSections(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QgenDraft, error) {
	return f.GetDraftByID(ctx, tx, id)
}

func (f *fakeDrafts) GetDraftsByActivity(ctx context.Context, tx *gorm.DB, activityID uuid.UUID) ([]*models.QgenDraft, error) {
	var out []*models.QgenDraft
	for _, draft := range f.drafts {
		if draft.ActivityID == activityID {
			out = append(out, draft)
		}
	}
	return out, nil
}

func (f *fakeDrafts) UpdateDraft(ctx context.Context, tx *gorm.DB, draft *models.QgenDraft) error {
	f.drafts[draft.ID] = draft
	return nil
}

func (f *fakeDrafts) CreateSection(ctx context.Context, tx *gorm.DB, section *models.QgenDraftSection) error {
	if section.ID == uuid.Nil {
		section.ID = uuid.New()
	}
	f.sections[section.ID] = section
	return nil
}

func (f *fakeDrafts) GetSectionByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QgenDraftSection, error) {
	section, ok := f.sections[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return section, nil
}

func (f *fakeDrafts) UpdateSection(ctx context.Context, tx *gorm.DB, section *models.QgenDraftSection) error {
	if _, ok := f.sections[section.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.sections[section.ID] = section
	return nil
}

func (f *fakeDrafts) ListSections(ctx context.Context, tx *gorm.DB, draftID uuid.UUID) ([]*models.QgenDraftSection, error) {
	var out []*models.QgenDraftSection
	for _, section := range f.sections {
		if section.DraftID == draftID {
			out = append(out, section)
		}
	}
	return out, nil
}

func (f *fakeDrafts) LockSection(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.QgenDraftSection, error) {
	return f.GetSectionByID(ctx, tx, id)
}

func (f *fakeDrafts) NextPositionInSection(ctx context.Context, tx *gorm.DB, sectionID uuid.UUID) (int, error) {
	next := 0
	for _, question := range f.questions {
		if question.DraftSectionID != nil && *question.DraftSectionID == sectionID && question.PositionInSection != nil {
			if *question.PositionInSection >= next {
				next = *question.PositionInSection + 1
			}
		}
	}
	return next, nil
}

func (f *fakeDrafts) CreateInstruction(ctx context.Context, tx *gorm.DB, instruction *models.QgenDraftInstruction) error {
	if instruction.ID == uuid.Nil {
		instruction.ID = uuid.New()
	}
	f.instructions = append(f.instructions, instruction)
	return nil
}

func (f *fakeDrafts) ListInstructions(ctx context.Context, tx *gorm.DB, draftID uuid.UUID) ([]*models.QgenDraftInstruction, error) {
	var out []*models.QgenDraftInstruction
	for _, instruction := range f.instructions {
		if instruction.DraftID == draftID {
			out = append(out, instruction)
		}
	}
	return out, nil
}

func (f *fakeDrafts) DeleteInstruction(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	for i, instruction := range f.instructions {
		if instruction.ID == id {
			f.instructions = append(f.instructions[:i], f.instructions[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

type fakeCredits fakeRepo

func (f *fakeCredits) LockOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) error {
	if _, ok := f.users[ownerID]; !ok {
		return repositories.ErrNotFound
	}
	return nil
}

func (f *fakeCredits) Balance(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) (int, error) {
	(*fakeRepo)(f).mu.Lock()
	defer (*fakeRepo)(f).mu.Unlock()
	return (*fakeRepo)(f).balanceOf(ownerID), nil
}

func (f *fakeCredits) Append(ctx context.Context, tx *gorm.DB, entry *models.CreditLedgerEntry) error {
	(*fakeRepo)(f).mu.Lock()
	defer (*fakeRepo)(f).mu.Unlock()
	if f.failAppend != nil {
		return f.failAppend
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.ledger = append(f.ledger, entry)
	return nil
}

func (f *fakeCredits) History(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, limit, offset int) ([]*models.CreditLedgerEntry, int64, error) {
	var mine []*models.CreditLedgerEntry
	for i := len(f.ledger) - 1; i >= 0; i-- {
		if f.ledger[i].OwnerID == ownerID {
			mine = append(mine, f.ledger[i])
		}
	}
	total := int64(len(mine))
	if offset >= len(mine) {
		return nil, total, nil
	}
	mine = mine[offset:]
	if limit > 0 && len(mine) > limit {
		mine = mine[:limit]
	}
	return mine, total, nil
}

type fakeCommits fakeRepo

func (f *fakeCommits) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.GenerationCommit, error) {
	(*fakeRepo)(f).mu.Lock()
	defer (*fakeRepo)(f).mu.Unlock()
	commit, ok := f.commits[token]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return commit, nil
}

func (f *fakeCommits) Create(ctx context.Context, tx *gorm.DB, commit *models.GenerationCommit) error {
	(*fakeRepo)(f).mu.Lock()
	defer (*fakeRepo)(f).mu.Unlock()
	if commit.ID == uuid.Nil {
		commit.ID = uuid.New()
	}
	f.commits[commit.Token] = commit
	return nil
}
