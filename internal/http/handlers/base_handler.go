// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/chat"
	"wayfarer/internal/itinerary"
	"wayfarer/internal/secrets"
)

type errorResponse struct {
	Error string `json:"error"`
	// Session is set when a chat round failed after the question was recorded.
	Session *chat.Session `json:"session,omitempty"`
}

// chatFailureNotice is shown when a follow-up answer could not be produced.
const chatFailureNotice = "Sorry, I could not answer that. Please try again."

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeItineraryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, itinerary.ErrInvalidRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, itinerary.ErrCredentialMissing):
		writeError(c, http.StatusServiceUnavailable, itinerary.Notice(err))
	case errors.Is(err, itinerary.ErrInvalidCredential),
		errors.Is(err, itinerary.ErrTransportFailure),
		errors.Is(err, itinerary.ErrGenerationFailed):
		writeError(c, http.StatusBadGateway, itinerary.Notice(err))
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyQuestion):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrSessionNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, chat.ErrAwaiting):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writePlacesError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, secrets.ErrNotConfigured):
		writeError(c, http.StatusServiceUnavailable, secrets.MapsAPIKey+" is not configured. Add it to the secret store and retry.")
	case errors.Is(err, secrets.ErrUnavailable):
		writeError(c, http.StatusServiceUnavailable, "Could not reach the credential store. Please try again.")
	default:
		writeError(c, http.StatusBadGateway, "Could not load places. Please try again.")
	}
}
