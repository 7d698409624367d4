package services

import (
	"context"
	"errors"
	"testing"

	"github.com/papersetu/qgen-service/internal/events"
	"github.com/papersetu/qgen-service/internal/repositories"
	"github.com/papersetu/qgen-service/internal/validator"
)

func newActivityFixture() (*fakeRepo, *events.MockEventPublisher, ActivityService) {
	repo := newFakeRepo()
	publisher := events.NewMockEventPublisher(testLogger())
	bv := validator.NewBusinessValidator(validator.New())
	return repo, publisher, NewActivityService(repo, nil, testLogger(), bv, publisher)
}

func TestActivityService_CreateQgenMakesDraftAndFirstSection(t *testing.T) {
	repo, _, svc := newActivityFixture()
	owner := repo.seedUser()

	resp, err := svc.Create(context.Background(), &CreateActivityRequest{
		Name:        "Midterm Paper",
		ProductType: "qgen",
	}, owner)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if resp.DraftID == nil {
		t.Fatal("qgen activity should come with a draft")
	}
	draft := repo.drafts[*resp.DraftID]
	if draft == nil || draft.ActivityID != resp.ID {
		t.Fatalf("draft not persisted for activity")
	}

	sections, _ := repo.Draft().ListSections(context.Background(), nil, draft.ID)
	if len(sections) != 1 {
		t.Fatalf("got %d sections, want 1", len(sections))
	}
	if sections[0].SectionName != defaultSectionName || sections[0].PositionInDraft != 0 {
		t.Errorf("first section = %+v", sections[0])
	}
}

func TestActivityService_CreateValidatesRequest(t *testing.T) {
	repo, _, svc := newActivityFixture()
	owner := repo.seedUser()

	_, err := svc.Create(context.Background(), &CreateActivityRequest{Name: "", ProductType: "qgen"}, owner)
	var ve ValidationErrors
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationErrors", err)
	}

	_, err = svc.Create(context.Background(), &CreateActivityRequest{Name: "x", ProductType: "slides"}, owner)
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationErrors for product type", err)
	}
}

func TestActivityService_GetEnforcesOwnership(t *testing.T) {
	repo, _, svc := newActivityFixture()
	owner := repo.seedUser()
	activityID := repo.seedActivity(owner)
	stranger := repo.seedUser()

	if _, err := svc.GetByID(context.Background(), activityID, owner); err != nil {
		t.Fatalf("owner GetByID: %v", err)
	}

	_, err := svc.GetByID(context.Background(), activityID, stranger)
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("err = %v, want PermissionError", err)
	}
}

func TestActivityService_DeletePublishesEvent(t *testing.T) {
	repo, publisher, svc := newActivityFixture()
	owner := repo.seedUser()
	activityID := repo.seedActivity(owner)

	if err := svc.Delete(context.Background(), activityID, owner); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := repo.activities[activityID]; ok {
		t.Error("activity still present")
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.EventActivityDeleted {
		t.Errorf("published = %+v", published)
	}

	if err := svc.Delete(context.Background(), activityID, owner); !errors.Is(err, ErrActivityNotFound) {
		t.Errorf("second delete err = %v, want ErrActivityNotFound", err)
	}
}

func TestActivityService_List(t *testing.T) {
	repo, _, svc := newActivityFixture()
	owner := repo.seedUser()
	repo.seedActivity(owner)
	repo.seedActivity(owner)
	repo.seedActivity(repo.seedUser())

	list, err := svc.List(context.Background(), owner, repositories.ActivityFilters{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list.Total != 2 || len(list.Activities) != 2 {
		t.Errorf("list = %d/%d, want 2", len(list.Activities), list.Total)
	}
	for _, activity := range list.Activities {
		if activity.OwnerID != owner {
			t.Errorf("foreign activity in list: %+v", activity)
		}
	}
}
