package ai

import (
	"context"
	"errors"
)

// ErrInvalidAPIKey is returned when the provider rejects the credential.
var ErrInvalidAPIKey = errors.New("api key not valid")

// TextGenerator defines the contract for single-prompt text generation.
// The credential is passed per call because it is resolved fresh for every request.
type TextGenerator interface {
	// Generate sends prompt to the model and returns the raw response text verbatim.
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
}
