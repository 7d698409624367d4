package services

import (
	"github.com/papersetu/qgen-service/internal/models"
)

// TypeSpec describes the persisted shape of one question type: which
// fields a valid candidate must carry and which must be absent. It
// drives both the per-type candidate schema and the normalizer's
// relational checks.
type TypeSpec struct {
	Type models.QuestionType

	// HasOptions means option1..option4 are required and must be
	// non-empty. Types without options must not carry any.
	HasOptions bool

	// SingleCorrectOption requires correct_mcq_option in 1..4.
	SingleCorrectOption bool

	// MultiCorrectFlags requires the four msq_optionN_answer booleans
	// with at least one set true.
	MultiCorrectFlags bool

	// RequiresAnswerText means answer_text must be non-empty.
	RequiresAnswerText bool

	// AnswerEnum constrains answer_text to a fixed set when non-empty.
	AnswerEnum []string
}

var typeSpecs = map[models.QuestionType]*TypeSpec{
	models.MCQ4: {
		Type:                models.MCQ4,
		HasOptions:          true,
		SingleCorrectOption: true,
	},
	models.MSQ4: {
		Type:              models.MSQ4,
		HasOptions:        true,
		MultiCorrectFlags: true,
	},
	models.TrueOrFalse: {
		Type:               models.TrueOrFalse,
		RequiresAnswerText: true,
		AnswerEnum:         []string{"True", "False"},
	},
	models.FillInTheBlanks: {
		Type:               models.FillInTheBlanks,
		RequiresAnswerText: true,
	},
	models.ShortAnswer: {
		Type:               models.ShortAnswer,
		RequiresAnswerText: true,
	},
	models.LongAnswer: {
		Type:               models.LongAnswer,
		RequiresAnswerText: true,
	},
}

// GetTypeSpec returns the spec for a canonical question type.
func GetTypeSpec(t models.QuestionType) (*TypeSpec, bool) {
	spec, ok := typeSpecs[t]
	return spec, ok
}

// CandidateSchema builds the JSON Schema a raw candidate of this type
// must satisfy. Cross-field rules the schema language cannot express
// (at least one msq flag true) stay in the normalizer.
func (ts *TypeSpec) CandidateSchema() map[string]any {
	properties := map[string]any{
		"question_type": map[string]any{
			"type":  "string",
			"const": string(ts.Type),
		},
		"hardness_level": map[string]any{
			"type": "string",
			"enum": []any{
				string(models.HardnessEasy),
				string(models.HardnessMedium),
				string(models.HardnessHard),
			},
		},
		"question_text": map[string]any{"type": "string", "minLength": 1},
		"explanation":   map[string]any{"type": "string"},
		"marks":         map[string]any{"type": "integer", "minimum": 0},
	}
	required := []any{"question_type", "hardness_level", "question_text"}

	if ts.HasOptions {
		for _, opt := range []string{"option1", "option2", "option3", "option4"} {
			properties[opt] = map[string]any{"type": "string", "minLength": 1}
			required = append(required, opt)
		}
	}

	if ts.SingleCorrectOption {
		properties["correct_mcq_option"] = map[string]any{
			"type":    "integer",
			"minimum": 1,
			"maximum": 4,
		}
		required = append(required, "correct_mcq_option")
	}

	if ts.MultiCorrectFlags {
		for _, flag := range []string{"msq_option1_answer", "msq_option2_answer", "msq_option3_answer", "msq_option4_answer"} {
			properties[flag] = map[string]any{"type": "boolean"}
			required = append(required, flag)
		}
	}

	if ts.RequiresAnswerText {
		answer := map[string]any{"type": "string", "minLength": 1}
		if len(ts.AnswerEnum) > 0 {
			enum := make([]any, len(ts.AnswerEnum))
			for i, v := range ts.AnswerEnum {
				enum[i] = v
			}
			answer = map[string]any{"type": "string", "enum": enum}
		}
		properties["answer_text"] = answer
		required = append(required, "answer_text")
	} else {
		// Objective types may echo an empty answer_text; anything more
		// is rejected relationally, not structurally.
		properties["answer_text"] = map[string]any{"type": "string"}
	}

	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}
