package validator

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func validGenerateRequest() *GenerateQuestionsRequest {
	return &GenerateQuestionsRequest{
		ClientRequestID: "req-1",
		ConceptIDs:      []uuid.UUID{uuid.New(), uuid.New()},
		QuestionTypes: []QuestionTypeCount{
			{Type: "mcq4", Count: 5},
			{Type: "short_answer", Count: 2},
		},
		DifficultyDistribution: DifficultyDistribution{Easy: 30, Medium: 50, Hard: 20},
	}
}

func TestValidateGenerateRequest_Valid(t *testing.T) {
	bv := NewBusinessValidator(New())

	if errs := bv.ValidateGenerateRequest(validGenerateRequest()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateGenerateRequest_DifficultySum(t *testing.T) {
	tests := []struct {
		name    string
		dist    DifficultyDistribution
		wantErr bool
	}{
		{"sums to 100", DifficultyDistribution{Easy: 30, Medium: 50, Hard: 20}, false},
		{"sums to 99", DifficultyDistribution{Easy: 30, Medium: 50, Hard: 19}, true},
		{"sums to 101", DifficultyDistribution{Easy: 31, Medium: 50, Hard: 20}, true},
		{"all easy", DifficultyDistribution{Easy: 100}, false},
	}

	bv := NewBusinessValidator(New())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validGenerateRequest()
			req.DifficultyDistribution = tt.dist
			errs := bv.ValidateGenerateRequest(req)
			if got := hasRule(errs, "difficulty_sum"); got != tt.wantErr {
				t.Errorf("difficulty_sum error = %v, want %v (errs: %v)", got, tt.wantErr, errs)
			}
		})
	}
}

func TestValidateGenerateRequest_TypeAliases(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"mcq4", "mcq4", false},
		{"true_false", "true_or_false", false},
		{"true_or_false", "true_or_false", false},
		{"fill_in_the_blank", "fill_in_the_blanks", false},
		{"match_the_following", "", true},
		{"essay", "", true},
	}

	bv := NewBusinessValidator(New())
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			req := validGenerateRequest()
			req.QuestionTypes = []QuestionTypeCount{{Type: tt.input, Count: 3}}
			errs := bv.ValidateGenerateRequest(req)

			if tt.wantErr {
				if !hasRule(errs, "question_type") {
					t.Fatalf("expected question_type error, got %v", errs)
				}
				return
			}
			if len(errs) != 0 {
				t.Fatalf("expected no errors, got %v", errs)
			}
			if req.QuestionTypes[0].Type != tt.want {
				t.Errorf("resolved type = %q, want %q", req.QuestionTypes[0].Type, tt.want)
			}
		})
	}
}

func TestValidateGenerateRequest_UnrepresentableTypeMessage(t *testing.T) {
	bv := NewBusinessValidator(New())

	req := validGenerateRequest()
	req.QuestionTypes = []QuestionTypeCount{{Type: "match_the_following", Count: 1}}
	errs := bv.ValidateGenerateRequest(req)

	found := false
	for _, e := range errs {
		if strings.Contains(e.Message, "not supported") {
			found = true
		}
	}
	if !found {
		t.Errorf("want a dedicated unsupported-type message, got %v", errs)
	}
}

func TestValidateGenerateRequest_DuplicateConcepts(t *testing.T) {
	bv := NewBusinessValidator(New())

	id := uuid.New()
	req := validGenerateRequest()
	req.ConceptIDs = []uuid.UUID{id, id}

	if errs := bv.ValidateGenerateRequest(req); !hasRule(errs, "unique") {
		t.Errorf("expected duplicate concept error, got %v", errs)
	}
}

func TestValidateGenerateRequest_TotalCap(t *testing.T) {
	bv := NewBusinessValidator(New())

	req := validGenerateRequest()
	req.QuestionTypes = []QuestionTypeCount{
		{Type: "mcq4", Count: 30},
		{Type: "msq4", Count: 21},
	}

	if errs := bv.ValidateGenerateRequest(req); !hasRule(errs, "total_questions") {
		t.Errorf("expected total_questions error, got %v", errs)
	}
}

func TestValidateGenerateRequest_MissingFields(t *testing.T) {
	bv := NewBusinessValidator(New())

	req := validGenerateRequest()
	req.ClientRequestID = ""
	req.ConceptIDs = nil

	errs := bv.ValidateGenerateRequest(req)
	if !hasRule(errs, "required") {
		t.Errorf("expected required-field errors, got %v", errs)
	}
}

func hasRule(errs ValidationErrors, rule string) bool {
	for _, e := range errs {
		if e.Rule == rule {
			return true
		}
	}
	return false
}
