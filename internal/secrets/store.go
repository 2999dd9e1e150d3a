// README: Credential lookup by name; values are fetched per request and never cached.
package secrets

import (
	"context"
	"errors"
)

// Credential names looked up by the services.
const (
	GeminiAPIKey = "GEMINI_API_KEY"
	FlightAPIKey = "SERPAPI_API_KEY"
	MapsAPIKey   = "GOOGLE_MAPS_API_KEY"
)

var (
	// ErrNotConfigured means the store answered but holds no value for the name.
	ErrNotConfigured = errors.New("secret not configured")
	// ErrUnavailable means the store itself could not be reached or queried.
	ErrUnavailable = errors.New("secret store unavailable")
)

// Store resolves a credential value by exact name.
type Store interface {
	Lookup(ctx context.Context, name string) (string, error)
}

// Chain consults stores in order and moves on only when a store reports
// ErrNotConfigured. Any other failure stops the lookup.
type Chain []Store

func (c Chain) Lookup(ctx context.Context, name string) (string, error) {
	for _, s := range c {
		v, err := s.Lookup(ctx, name)
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrNotConfigured) {
			return "", err
		}
	}
	return "", ErrNotConfigured
}
