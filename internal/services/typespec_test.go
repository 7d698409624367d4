package services

import (
	"testing"

	"github.com/papersetu/qgen-service/internal/models"
)

func TestGetTypeSpec_AllCanonicalTypes(t *testing.T) {
	for _, qt := range []models.QuestionType{
		models.MCQ4, models.MSQ4, models.TrueOrFalse,
		models.FillInTheBlanks, models.ShortAnswer, models.LongAnswer,
	} {
		spec, ok := GetTypeSpec(qt)
		if !ok {
			t.Errorf("no spec for %s", qt)
			continue
		}
		if spec.Type != qt {
			t.Errorf("spec for %s reports type %s", qt, spec.Type)
		}
	}
}

func TestGetTypeSpec_Unknown(t *testing.T) {
	if _, ok := GetTypeSpec(models.QuestionType("essay")); ok {
		t.Error("unknown type should have no spec")
	}
}

func TestTypeSpec_OptionFields(t *testing.T) {
	tests := []struct {
		qt          models.QuestionType
		hasOptions  bool
		singleMCQ   bool
		multiFlags  bool
		answerText  bool
	}{
		{models.MCQ4, true, true, false, false},
		{models.MSQ4, true, false, true, false},
		{models.TrueOrFalse, false, false, false, true},
		{models.FillInTheBlanks, false, false, false, true},
		{models.ShortAnswer, false, false, false, true},
		{models.LongAnswer, false, false, false, true},
	}

	for _, tt := range tests {
		spec, _ := GetTypeSpec(tt.qt)
		if spec.HasOptions != tt.hasOptions ||
			spec.SingleCorrectOption != tt.singleMCQ ||
			spec.MultiCorrectFlags != tt.multiFlags ||
			spec.RequiresAnswerText != tt.answerText {
			t.Errorf("%s: got %+v", tt.qt, spec)
		}
	}
}

func TestCandidateSchema_MCQ4RequiresOptions(t *testing.T) {
	spec, _ := GetTypeSpec(models.MCQ4)
	schema := spec.CandidateSchema()

	required, ok := schema["required"].([]any)
	if !ok {
		t.Fatal("schema has no required list")
	}

	want := map[string]bool{
		"option1": true, "option2": true, "option3": true, "option4": true,
		"correct_mcq_option": true,
	}
	for _, r := range required {
		delete(want, r.(string))
	}
	if len(want) != 0 {
		t.Errorf("missing required fields: %v", want)
	}
}

func TestCandidateSchema_TrueOrFalseAnswerEnum(t *testing.T) {
	spec, _ := GetTypeSpec(models.TrueOrFalse)
	schema := spec.CandidateSchema()

	properties := schema["properties"].(map[string]any)
	answer := properties["answer_text"].(map[string]any)
	enum, ok := answer["enum"].([]any)
	if !ok || len(enum) != 2 {
		t.Fatalf("answer_text enum = %v, want [True False]", answer["enum"])
	}
}
