// README: Places handler; top-rated attractions for a destination.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/logging"
	"wayfarer/internal/maps"
)

type PlacesHandler struct {
	places *maps.PlacesService
}

func NewPlacesHandler(svc *maps.PlacesService) *PlacesHandler {
	return &PlacesHandler{places: svc}
}

type placesResp struct {
	Places []maps.Place `json:"places"`
}

func (h *PlacesHandler) Highlights(c *gin.Context) {
	destination := strings.TrimSpace(c.Query("destination"))
	if destination == "" {
		writeError(c, http.StatusBadRequest, "destination is required")
		return
	}
	ctx := c.Request.Context()
	places, err := h.places.Highlights(ctx, destination, strings.TrimSpace(c.Query("interests")))
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("places lookup failed")
		writePlacesError(c, err)
		return
	}
	if places == nil {
		places = []maps.Place{}
	}
	writeJSON(c, http.StatusOK, placesResp{Places: places})
}
