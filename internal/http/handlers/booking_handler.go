// README: Booking handler; placeholder until a booking provider is integrated.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/logging"
)

type BookingHandler struct{}

func NewBookingHandler() *BookingHandler {
	return &BookingHandler{}
}

type bookReq struct {
	BookingToken string `json:"booking_token" binding:"required"`
}

type bookResp struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Book accepts a booking token from the flight table. Nothing is reserved.
func (h *BookingHandler) Book(c *gin.Context) {
	var req bookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "booking_token is required")
		return
	}
	logging.FromContext(c.Request.Context()).WithField("booking_token", req.BookingToken).Info("booking requested")
	writeJSON(c, http.StatusAccepted, bookResp{
		Status:  "not_available",
		Message: "Online booking is not available yet. Use the airline's site to complete this booking.",
	})
}
