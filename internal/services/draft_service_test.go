package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/papersetu/qgen-service/internal/models"
	"github.com/papersetu/qgen-service/internal/validator"
)

func newDraftFixture() (*fakeRepo, DraftService) {
	repo := newFakeRepo()
	bv := validator.NewBusinessValidator(validator.New())
	return repo, NewDraftService(repo, nil, testLogger(), bv)
}

func seedQuestions(repo *fakeRepo, activityID uuid.UUID, n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		id := uuid.New()
		repo.questions[id] = &models.GenQuestion{
			ID:           id,
			ActivityID:   activityID,
			Type:         models.ShortAnswer,
			Hardness:     models.HardnessEasy,
			QuestionText: "Seeded question",
		}
		repo.order = append(repo.order, id)
		ids[i] = id
	}
	return ids
}

func TestDraftService_CreateSectionAppends(t *testing.T) {
	repo, svc := newDraftFixture()
	owner := repo.seedUser()
	activityID := repo.seedActivity(owner)
	draftID, _ := repo.seedSection(activityID)

	section, err := svc.CreateSection(context.Background(), draftID, owner, &CreateSectionRequest{SectionName: "Section B"})
	if err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	if section.PositionInDraft != 1 {
		t.Errorf("position = %d, want 1 (after the seeded section)", section.PositionInDraft)
	}
	if section.DraftID != draftID || section.SectionName != "Section B" {
		t.Errorf("section = %+v", section)
	}
}

func TestDraftService_PlaceQuestionsAssignsDensePositions(t *testing.T) {
	repo, svc := newDraftFixture()
	owner := repo.seedUser()
	activityID := repo.seedActivity(owner)
	_, sectionID := repo.seedSection(activityID)
	ids := seedQuestions(repo, activityID, 3)

	err := svc.PlaceQuestions(context.Background(), sectionID, owner, &PlaceQuestionsRequest{QuestionIDs: ids})
	if err != nil {
		t.Fatalf("PlaceQuestions: %v", err)
	}

	for i, id := range ids {
		question := repo.questions[id]
		if !question.IsInDraft || question.DraftSectionID == nil || *question.DraftSectionID != sectionID {
			t.Errorf("question %d not placed", i)
		}
		if question.PositionInSection == nil || *question.PositionInSection != i {
			t.Errorf("question %d position = %v, want %d", i, question.PositionInSection, i)
		}
	}

	// A second placement continues after the existing tail.
	more := seedQuestions(repo, activityID, 2)
	if err := svc.PlaceQuestions(context.Background(), sectionID, owner, &PlaceQuestionsRequest{QuestionIDs: more}); err != nil {
		t.Fatalf("second PlaceQuestions: %v", err)
	}
	if got := *repo.questions[more[0]].PositionInSection; got != 3 {
		t.Errorf("continuation position = %d, want 3", got)
	}
	if got := *repo.questions[more[1]].PositionInSection; got != 4 {
		t.Errorf("continuation position = %d, want 4", got)
	}
}

func TestDraftService_PlaceQuestionsRejectsForeignQuestion(t *testing.T) {
	repo, svc := newDraftFixture()
	owner := repo.seedUser()
	activityID := repo.seedActivity(owner)
	_, sectionID := repo.seedSection(activityID)

	otherActivity := repo.seedActivity(owner)
	foreign := seedQuestions(repo, otherActivity, 1)

	err := svc.PlaceQuestions(context.Background(), sectionID, owner, &PlaceQuestionsRequest{QuestionIDs: foreign})
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("err = %v, want PermissionError", err)
	}
	if repo.questions[foreign[0]].IsInDraft {
		t.Error("foreign question was placed anyway")
	}
}

func TestDraftService_PlaceQuestionsRejectsAlreadyPlaced(t *testing.T) {
	repo, svc := newDraftFixture()
	owner := repo.seedUser()
	activityID := repo.seedActivity(owner)
	draftID, sectionID := repo.seedSection(activityID)
	ids := seedQuestions(repo, activityID, 1)

	if err := svc.PlaceQuestions(context.Background(), sectionID, owner, &PlaceQuestionsRequest{QuestionIDs: ids}); err != nil {
		t.Fatalf("PlaceQuestions: %v", err)
	}

	other, err := svc.CreateSection(context.Background(), draftID, owner, &CreateSectionRequest{SectionName: "Section B"})
	if err != nil {
		t.Fatalf("CreateSection: %v", err)
	}

	err = svc.PlaceQuestions(context.Background(), other.ID, owner, &PlaceQuestionsRequest{QuestionIDs: ids})
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("err = %v, want PermissionError", err)
	}

	// The original placement is untouched.
	question := repo.questions[ids[0]]
	if question.DraftSectionID == nil || *question.DraftSectionID != sectionID {
		t.Error("placement moved to the second section")
	}
	if question.PositionInSection == nil || *question.PositionInSection != 0 {
		t.Errorf("position = %v, want 0", question.PositionInSection)
	}
}

func TestDraftService_PlaceQuestionsUnknownSection(t *testing.T) {
	repo, svc := newDraftFixture()
	owner := repo.seedUser()
	activityID := repo.seedActivity(owner)
	ids := seedQuestions(repo, activityID, 1)

	err := svc.PlaceQuestions(context.Background(), uuid.New(), owner, &PlaceQuestionsRequest{QuestionIDs: ids})
	if !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("err = %v, want ErrSectionNotFound", err)
	}
}

func TestDraftService_RenameSection(t *testing.T) {
	repo, svc := newDraftFixture()
	owner := repo.seedUser()
	activityID := repo.seedActivity(owner)
	_, sectionID := repo.seedSection(activityID)

	section, err := svc.RenameSection(context.Background(), sectionID, owner, &UpdateSectionRequest{SectionName: "Section B"})
	if err != nil {
		t.Fatalf("RenameSection: %v", err)
	}
	if section.SectionName != "Section B" {
		t.Errorf("name = %q, want %q", section.SectionName, "Section B")
	}
	if repo.sections[sectionID].SectionName != "Section B" {
		t.Error("rename not persisted")
	}

	if _, err := svc.RenameSection(context.Background(), uuid.New(), owner, &UpdateSectionRequest{SectionName: "X"}); !errors.Is(err, ErrSectionNotFound) {
		t.Fatalf("err = %v, want ErrSectionNotFound", err)
	}

	stranger := repo.seedUser()
	_, err = svc.RenameSection(context.Background(), sectionID, stranger, &UpdateSectionRequest{SectionName: "Hijacked"})
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("err = %v, want PermissionError", err)
	}
}

func TestDraftService_SetPageBreak(t *testing.T) {
	repo, svc := newDraftFixture()
	owner := repo.seedUser()
	activityID := repo.seedActivity(owner)
	_, sectionID := repo.seedSection(activityID)
	ids := seedQuestions(repo, activityID, 1)

	// Not placed yet: layout flags are meaningless.
	err := svc.SetPageBreak(context.Background(), ids[0], owner, &UpdateQuestionLayoutRequest{IsPageBreakBelow: true})
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("err = %v, want PermissionError for unplaced question", err)
	}

	if err := svc.PlaceQuestions(context.Background(), sectionID, owner, &PlaceQuestionsRequest{QuestionIDs: ids}); err != nil {
		t.Fatalf("PlaceQuestions: %v", err)
	}
	if err := svc.SetPageBreak(context.Background(), ids[0], owner, &UpdateQuestionLayoutRequest{IsPageBreakBelow: true}); err != nil {
		t.Fatalf("SetPageBreak: %v", err)
	}
	if !repo.questions[ids[0]].IsPageBreakBelow {
		t.Error("page break flag not set")
	}

	if err := svc.SetPageBreak(context.Background(), uuid.New(), owner, &UpdateQuestionLayoutRequest{}); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("err = %v, want ErrQuestionNotFound", err)
	}
}

func TestDraftService_UpdateSetsOnlyProvidedFields(t *testing.T) {
	repo, svc := newDraftFixture()
	owner := repo.seedUser()
	activityID := repo.seedActivity(owner)
	draftID, _ := repo.seedSection(activityID)

	title := "Annual Examination"
	marks := 80
	updated, err := svc.Update(context.Background(), draftID, owner, &UpdateDraftRequest{
		PaperTitle:   &title,
		MaximumMarks: &marks,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.PaperTitle == nil || *updated.PaperTitle != title {
		t.Errorf("title = %v", updated.PaperTitle)
	}
	if updated.MaximumMarks == nil || *updated.MaximumMarks != marks {
		t.Errorf("marks = %v", updated.MaximumMarks)
	}
	if updated.SubjectName != nil {
		t.Error("untouched field was set")
	}
}

func TestDraftService_InstructionsRoundTrip(t *testing.T) {
	repo, svc := newDraftFixture()
	owner := repo.seedUser()
	activityID := repo.seedActivity(owner)
	draftID, _ := repo.seedSection(activityID)

	if _, err := svc.AddInstruction(context.Background(), draftID, owner, &CreateInstructionRequest{
		InstructionText: "All questions are compulsory.",
	}); err != nil {
		t.Fatalf("AddInstruction: %v", err)
	}

	instructions, err := svc.ListInstructions(context.Background(), draftID, owner)
	if err != nil {
		t.Fatalf("ListInstructions: %v", err)
	}
	if len(instructions) != 1 || instructions[0].InstructionText != "All questions are compulsory." {
		t.Errorf("instructions = %+v", instructions)
	}

	stranger := repo.seedUser()
	_, err = svc.ListInstructions(context.Background(), draftID, stranger)
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("err = %v, want PermissionError", err)
	}
}
