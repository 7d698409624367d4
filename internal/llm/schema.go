package llm

import (
	"google.golang.org/genai"

	"github.com/papersetu/qgen-service/internal/models"
)

// responseSchemaDefinition is the structured-output contract for one
// batch: an array of question objects. Per-type strictness (options
// present iff mcq4/msq4 and so on) is the normalizer's job; this schema
// only pins the envelope so the model returns parseable JSON.
func responseSchemaDefinition() map[string]any {
	questionTypes := []any{
		string(models.MCQ4),
		string(models.MSQ4),
		string(models.TrueOrFalse),
		string(models.FillInTheBlanks),
		string(models.ShortAnswer),
		string(models.LongAnswer),
	}
	hardnessLevels := []any{
		string(models.HardnessEasy),
		string(models.HardnessMedium),
		string(models.HardnessHard),
	}

	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question_type":      map[string]any{"type": "string", "enum": questionTypes},
				"hardness_level":     map[string]any{"type": "string", "enum": hardnessLevels},
				"question_text":      map[string]any{"type": "string"},
				"answer_text":        map[string]any{"type": "string"},
				"explanation":        map[string]any{"type": "string"},
				"option1":            map[string]any{"type": "string"},
				"option2":            map[string]any{"type": "string"},
				"option3":            map[string]any{"type": "string"},
				"option4":            map[string]any{"type": "string"},
				"correct_mcq_option": map[string]any{"type": "integer"},
				"msq_option1_answer": map[string]any{"type": "boolean"},
				"msq_option2_answer": map[string]any{"type": "boolean"},
				"msq_option3_answer": map[string]any{"type": "boolean"},
				"msq_option4_answer": map[string]any{"type": "boolean"},
				"marks":              map[string]any{"type": "integer"},
			},
			"required": []any{"question_type", "hardness_level", "question_text"},
		},
	}
}

// buildSchema converts a JSON Schema definition map to a genai.Schema.
func buildSchema(def map[string]any) *genai.Schema {
	schema := &genai.Schema{}

	if t, ok := def["type"].(string); ok {
		schema.Type = mapSchemaType(t)
	}
	if desc, ok := def["description"].(string); ok {
		schema.Description = desc
	}

	if props, ok := def["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema)
		for k, v := range props {
			if propDef, ok := v.(map[string]any); ok {
				schema.Properties[k] = buildSchema(propDef)
			}
		}
	}

	if req, ok := def["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}

	if enums, ok := def["enum"].([]any); ok {
		for _, e := range enums {
			if s, ok := e.(string); ok {
				schema.Enum = append(schema.Enum, s)
			}
		}
	}

	if items, ok := def["items"].(map[string]any); ok {
		schema.Items = buildSchema(items)
	}

	return schema
}

func mapSchemaType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}
