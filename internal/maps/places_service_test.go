package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"wayfarer/internal/secrets"
)

const textSearchResponse = `{
  "status": "OK",
  "results": [
    {"name": "Hoan Kiem Lake", "formatted_address": "Hoan Kiem, Hanoi", "rating": 4.6, "place_id": "p1", "user_ratings_total": 1200},
    {"name": "Tourist Trap", "formatted_address": "Somewhere", "rating": 3.1, "place_id": "p2"},
    {"name": "Hoan Kiem Lake", "formatted_address": "Hoan Kiem, Hanoi", "rating": 4.6, "place_id": "p1"},
    {"name": "Temple of Literature", "formatted_address": "Dong Da, Hanoi", "rating": 4.5, "place_id": "p3"},
    {"name": "Old Quarter", "formatted_address": "Hanoi", "rating": 4.4, "place_id": "p4"}
  ]
}`

func newPlacesServer(t *testing.T, query *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*query = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(textSearchResponse))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHighlightsFiltersAndLimits(t *testing.T) {
	var query string
	srv := newPlacesServer(t, &query)
	store := secrets.NewEnvStore(map[string]string{secrets.MapsAPIKey: "maps-key"})

	svc := NewPlacesService(store, 2, maps.WithBaseURL(srv.URL))
	places, err := svc.Highlights(context.Background(), "Hanoi", "food")
	require.NoError(t, err)

	require.Len(t, places, 2)
	assert.Equal(t, "Hoan Kiem Lake", places[0].Name)
	assert.Equal(t, "Temple of Literature", places[1].Name)
	assert.Equal(t, "food attractions in Hanoi", query)
}

func TestHighlightsDefaultQuery(t *testing.T) {
	var query string
	srv := newPlacesServer(t, &query)
	store := secrets.NewEnvStore(map[string]string{secrets.MapsAPIKey: "maps-key"})

	_, err := NewPlacesService(store, 0, maps.WithBaseURL(srv.URL)).Highlights(context.Background(), "Hanoi", " ")
	require.NoError(t, err)
	assert.Equal(t, "top attractions in Hanoi", query)
}

func TestHighlightsMissingKey(t *testing.T) {
	store := secrets.NewEnvStore(map[string]string{})
	t.Setenv(secrets.MapsAPIKey, "")

	_, err := NewPlacesService(store, 3).Highlights(context.Background(), "Hanoi", "")
	assert.ErrorIs(t, err, secrets.ErrNotConfigured)
}

func TestHighlightsRequiresDestination(t *testing.T) {
	_, err := NewPlacesService(secrets.NewEnvStore(nil), 3).Highlights(context.Background(), " ", "")
	assert.Error(t, err)
}
