package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-1.5-flash"

// invalidKeyMarker is the message fragment Gemini uses when it rejects a key.
const invalidKeyMarker = "API key not valid"

// GeminiGenerator implements TextGenerator using Google's Gemini models.
type GeminiGenerator struct {
	model string
}

func NewGeminiGenerator(model string) *GeminiGenerator {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &GeminiGenerator{model: model}
}

// Generate creates a short-lived client for apiKey and returns the concatenated text parts
// of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", fmt.Errorf("gemini: missing api key")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("gemini: create client: %w", classifyError(err))
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", classifyError(err))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: API returned empty candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("gemini: API returned empty text parts")
	}
	return text.String(), nil
}

// classifyError tags credential rejections with ErrInvalidAPIKey, keeping the upstream message.
func classifyError(err error) error {
	if isInvalidKey(err) {
		return fmt.Errorf("%w: %v", ErrInvalidAPIKey, err)
	}
	return err
}

func isInvalidKey(err error) bool {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) && apiErr.Reason() == "API_KEY_INVALID" {
		return true
	}
	return strings.Contains(err.Error(), invalidKeyMarker)
}
