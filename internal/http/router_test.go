package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"wayfarer/internal/chat"
	httptransport "wayfarer/internal/http"
	"wayfarer/internal/itinerary"
	"wayfarer/internal/maps"
	"wayfarer/internal/markdown"
	"wayfarer/internal/secrets"
)

type noAnswer struct{}

func (noAnswer) FollowUp(context.Context, string, []itinerary.Turn, string) (string, error) {
	return "", nil
}

func TestRouterHealthAndUnknownSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := secrets.NewEnvStore(nil)
	r := httptransport.NewRouter(httptransport.RouterDeps{
		Itinerary: itinerary.NewService(store, nil, nil, ""),
		Chat:      chat.NewService(chat.NewMemoryStore(time.Minute), noAnswer{}, 0),
		Places:    maps.NewPlacesService(store, 5),
		Renderer:  markdown.NewRenderer(),
		Currency:  "USD",
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sessions/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
