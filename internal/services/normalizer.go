package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/papersetu/qgen-service/internal/llm"
	"github.com/papersetu/qgen-service/internal/models"
)

// Rejection reasons, counted per run and reported to the caller.
const (
	RejectUnknownType     = "unknown_type"
	RejectSchemaViolation = "schema_violation"
	RejectOptionShape     = "option_shape"
	RejectNoMSQAnswer     = "no_msq_answer"
	RejectUnrequested     = "unrequested"
)

// NormalizedQuestion is an accepted candidate reduced to the persisted
// relational shape, paired with the draw it fulfills.
type NormalizedQuestion struct {
	Draw llm.Draw

	Type         models.QuestionType
	Hardness     models.HardnessLevel
	QuestionText string
	AnswerText   *string
	Explanation  *string
	Marks        int

	Options          [4]*string
	CorrectMCQOption *int
	MSQFlags         [4]*bool
}

// NormalizeResult reports what survived validation. Rejections never
// fail a run; they surface as counts.
type NormalizeResult struct {
	Accepted  []NormalizedQuestion
	Shortfall []llm.Draw
	Rejected  map[string]int
}

// candidateSchemaCache caches compiled per-type schemas.
var candidateSchemaCache sync.Map // map[models.QuestionType]*jsonschema.Schema

// Normalize validates raw candidates against the per-type schema and
// relational shape rules, then matches survivors to the expected draws
// FIFO within each (type, difficulty) group. Draws left unmatched are
// the shortfall.
func Normalize(candidates []llm.Candidate, expected []llm.Draw, defaultMarks int) NormalizeResult {
	result := NormalizeResult{Rejected: make(map[string]int)}

	// FIFO queues of expected draw indexes per (type, hardness).
	type drawKey struct {
		t models.QuestionType
		h models.HardnessLevel
	}
	pending := make(map[drawKey][]int)
	matched := make([]bool, len(expected))
	for i, draw := range expected {
		key := drawKey{draw.Type, draw.Hardness}
		pending[key] = append(pending[key], i)
	}

	for _, candidate := range candidates {
		normalized, reason := normalizeCandidate(candidate, defaultMarks)
		if reason != "" {
			result.Rejected[reason]++
			continue
		}

		key := drawKey{normalized.Type, normalized.Hardness}
		queue := pending[key]
		if len(queue) == 0 {
			result.Rejected[RejectUnrequested]++
			continue
		}
		drawIndex := queue[0]
		pending[key] = queue[1:]
		matched[drawIndex] = true

		normalized.Draw = expected[drawIndex]
		result.Accepted = append(result.Accepted, *normalized)
	}

	for i, draw := range expected {
		if !matched[i] {
			result.Shortfall = append(result.Shortfall, draw)
		}
	}

	return result
}

// normalizeCandidate validates one candidate and reduces it to the
// relational shape. An empty reason means accepted.
func normalizeCandidate(candidate llm.Candidate, defaultMarks int) (*NormalizedQuestion, string) {
	typeString, _ := candidate["question_type"].(string)
	qt, ok := models.ResolveQuestionType(typeString)
	if !ok {
		return nil, RejectUnknownType
	}
	spec, ok := GetTypeSpec(qt)
	if !ok {
		return nil, RejectUnknownType
	}

	// The schema pins question_type to the canonical name; rewrite
	// aliases on a copy before validating.
	if typeString != string(qt) {
		canonical := make(llm.Candidate, len(candidate))
		for k, v := range candidate {
			canonical[k] = v
		}
		canonical["question_type"] = string(qt)
		candidate = canonical
	}

	schema, err := compiledCandidateSchema(spec)
	if err != nil || schema.Validate(map[string]any(candidate)) != nil {
		return nil, RejectSchemaViolation
	}

	normalized := &NormalizedQuestion{
		Type:         qt,
		Hardness:     models.HardnessLevel(stringField(candidate, "hardness_level")),
		QuestionText: stringField(candidate, "question_text"),
		Marks:        defaultMarks,
	}
	if !models.IsValidHardness(string(normalized.Hardness)) {
		return nil, RejectSchemaViolation
	}
	if marks, ok := intField(candidate, "marks"); ok {
		if marks < 0 {
			return nil, RejectSchemaViolation
		}
		normalized.Marks = marks
	}
	if explanation := stringField(candidate, "explanation"); explanation != "" {
		normalized.Explanation = &explanation
	}

	if spec.HasOptions {
		for i, name := range []string{"option1", "option2", "option3", "option4"} {
			value := stringField(candidate, name)
			if value == "" {
				return nil, RejectOptionShape
			}
			option := value
			normalized.Options[i] = &option
		}
	} else {
		// Non-option types must not carry option payloads.
		for _, name := range []string{"option1", "option2", "option3", "option4"} {
			if stringField(candidate, name) != "" {
				return nil, RejectOptionShape
			}
		}
	}

	if spec.SingleCorrectOption {
		correct, ok := intField(candidate, "correct_mcq_option")
		if !ok || correct < 1 || correct > 4 {
			return nil, RejectOptionShape
		}
		normalized.CorrectMCQOption = &correct
	}

	if spec.MultiCorrectFlags {
		anyTrue := false
		for i, name := range []string{"msq_option1_answer", "msq_option2_answer", "msq_option3_answer", "msq_option4_answer"} {
			flag, ok := candidate[name].(bool)
			if !ok {
				return nil, RejectOptionShape
			}
			value := flag
			normalized.MSQFlags[i] = &value
			if flag {
				anyTrue = true
			}
		}
		if !anyTrue {
			return nil, RejectNoMSQAnswer
		}
	}

	if spec.RequiresAnswerText {
		answer := stringField(candidate, "answer_text")
		if answer == "" {
			return nil, RejectSchemaViolation
		}
		normalized.AnswerText = &answer
	}

	return normalized, ""
}

func compiledCandidateSchema(spec *TypeSpec) (*jsonschema.Schema, error) {
	if cached, ok := candidateSchemaCache.Load(spec.Type); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The jsonschema library expects a parsed JSON value, not raw Go
	// maps with typed values; round-trip through encoding/json.
	defBytes, err := json.Marshal(spec.CandidateSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", spec.Type)
	if err := compiler.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	candidateSchemaCache.Store(spec.Type, compiled)
	return compiled, nil
}

func stringField(candidate llm.Candidate, key string) string {
	value, _ := candidate[key].(string)
	return value
}

func intField(candidate llm.Candidate, key string) (int, bool) {
	switch v := candidate[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}
