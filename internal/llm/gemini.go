package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"

	"github.com/papersetu/qgen-service/internal/config"
)

const systemInstruction = "You are an experienced school examiner writing exam questions. " +
	"You respond only with JSON matching the requested schema, nothing else."

// GeminiClient implements Client using the Google Gemini SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini-backed generation client.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  cfg.Model,
	}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, req BatchRequest) ([]Candidate, error) {
	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   buildSchema(responseSchemaDefinition()),
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildPrompt(req)}},
		},
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, genConfig)
	if err != nil {
		return nil, classifyError(err)
	}

	var candidates []Candidate
	if err := json.Unmarshal([]byte(result.Text()), &candidates); err != nil {
		// Schema-constrained output that still fails to parse will not
		// parse on a retry of the same prompt either.
		return nil, &GenerationError{Retryable: false, Err: fmt.Errorf("unparseable model output: %w", err)}
	}

	return candidates, nil
}

func (g *GeminiClient) ModelID() string {
	return g.model
}

// classifyError sorts backend failures into retryable (rate limits,
// server errors, cancelled contexts excluded) and permanent.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &GenerationError{Retryable: false, Err: err}
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return &GenerationError{Retryable: true, Err: err}
		case apiErr.Code >= 500:
			return &GenerationError{Retryable: true, Err: err}
		default:
			return &GenerationError{Retryable: false, Err: err}
		}
	}

	// Transport-level failures (connection resets, timeouts) are worth
	// one more attempt.
	return &GenerationError{Retryable: true, Err: err}
}
