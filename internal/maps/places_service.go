// README: Destination highlights via Google Places text search.
package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"wayfarer/internal/secrets"
)

// Place represents a simplified location result.
type Place struct {
	Name             string  `json:"name"`
	Address          string  `json:"address"`
	Rating           float32 `json:"rating"`
	PlaceID          string  `json:"place_id"`
	UserRatingsTotal int     `json:"user_ratings_total"`
}

// minRating filters out low quality results.
const minRating = 4.0

// PlacesService handles interactions with Google Places API. The API key is
// read from the secret store on every call.
type PlacesService struct {
	secrets secrets.Store
	limit   int
	opts    []maps.ClientOption
}

// NewPlacesService creates a PlacesService returning at most limit places.
// Extra client options (e.g. maps.WithBaseURL) are applied after the key.
func NewPlacesService(store secrets.Store, limit int, opts ...maps.ClientOption) *PlacesService {
	if limit <= 0 {
		limit = 5
	}
	return &PlacesService{secrets: store, limit: limit, opts: opts}
}

// Highlights searches for well rated attractions at destination matching interests.
func (s *PlacesService) Highlights(ctx context.Context, destination, interests string) ([]Place, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, fmt.Errorf("places: destination is required")
	}

	apiKey, err := s.secrets.Lookup(ctx, secrets.MapsAPIKey)
	if err != nil {
		return nil, fmt.Errorf("places: %s: %w", secrets.MapsAPIKey, err)
	}

	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, s.opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	query := "top attractions in " + destination
	if in := strings.TrimSpace(interests); in != "" {
		query = fmt.Sprintf("%s attractions in %s", in, destination)
	}

	resp, err := client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    query,
		Language: "en",
	})
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	seen := make(map[string]bool)
	var results []Place
	for _, result := range resp.Results {
		if result.Rating < minRating || seen[result.PlaceID] {
			continue
		}
		seen[result.PlaceID] = true

		results = append(results, Place{
			Name:             result.Name,
			Address:          result.FormattedAddress,
			Rating:           result.Rating,
			PlaceID:          result.PlaceID,
			UserRatingsTotal: result.UserRatingsTotal,
		})
		if len(results) >= s.limit {
			break
		}
	}
	return results, nil
}
