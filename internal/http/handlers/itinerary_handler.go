// README: Itinerary handler; generates a plan, extracts the flight table and opens a chat session.
package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"wayfarer/internal/chat"
	"wayfarer/internal/flighttable"
	"wayfarer/internal/itinerary"
	"wayfarer/internal/logging"
	"wayfarer/internal/markdown"
)

type ItineraryHandler struct {
	itinerary *itinerary.Service
	chat      *chat.Service
	renderer  *markdown.Renderer
	currency  string
}

func NewItineraryHandler(svc *itinerary.Service, chatSvc *chat.Service, renderer *markdown.Renderer, currency string) *ItineraryHandler {
	return &ItineraryHandler{itinerary: svc, chat: chatSvc, renderer: renderer, currency: currency}
}

type createItineraryReq struct {
	Source         string `json:"source" binding:"required"`
	Destination    string `json:"destination" binding:"required"`
	StartDate      string `json:"start_date" binding:"required"`
	EndDate        string `json:"end_date" binding:"required"`
	Budget         string `json:"budget" binding:"required"`
	Travelers      string `json:"travelers" binding:"required"`
	Interests      string `json:"interests" binding:"required"`
	IncludeFlights bool   `json:"include_flights"`
}

type itineraryResp struct {
	SessionID         string            `json:"session_id"`
	Itinerary         string            `json:"itinerary"`
	HTML              string            `json:"html"`
	FlightTableStatus string            `json:"flight_table_status"`
	Flights           []flighttable.Row `json:"flights,omitempty"`
}

func (r createItineraryReq) toTrip() (itinerary.TripRequest, error) {
	start, err := time.Parse(itinerary.DateLayout, strings.TrimSpace(r.StartDate))
	if err != nil {
		return itinerary.TripRequest{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", itinerary.ErrInvalidRequest)
	}
	end, err := time.Parse(itinerary.DateLayout, strings.TrimSpace(r.EndDate))
	if err != nil {
		return itinerary.TripRequest{}, fmt.Errorf("%w: end_date must be YYYY-MM-DD", itinerary.ErrInvalidRequest)
	}
	return itinerary.TripRequest{
		Source:         r.Source,
		Destination:    r.Destination,
		StartDate:      start,
		EndDate:        end,
		Budget:         r.Budget,
		Travelers:      r.Travelers,
		Interests:      r.Interests,
		IncludeFlights: r.IncludeFlights,
	}, nil
}

func (h *ItineraryHandler) Create(c *gin.Context) {
	var req createItineraryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request")
		return
	}
	trip, err := req.toTrip()
	if err != nil {
		writeItineraryError(c, err)
		return
	}

	ctx := c.Request.Context()
	result, err := h.itinerary.Generate(ctx, trip)
	if err != nil {
		writeItineraryError(c, err)
		return
	}

	resp := itineraryResp{Itinerary: result.Text}

	table := flighttable.Extract(result.Text)
	resp.FlightTableStatus = table.Status.String()
	switch table.Status {
	case flighttable.StatusFound:
		resp.Flights = flighttable.Rows(table.Records, h.currency)
		if table.Skipped > 0 || table.DroppedFields > 0 {
			logging.FromContext(ctx).WithFields(logrus.Fields{
				"skipped":        table.Skipped,
				"dropped_fields": table.DroppedFields,
			}).Warn("flight records partly unreadable")
		}
	case flighttable.StatusMalformed:
		logging.FromContext(ctx).WithFields(logrus.Fields{"reason": table.Reason}).Warn("flight table unreadable")
	}

	html, err := h.renderer.Render(result.Text)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Warn("render itinerary")
	}
	resp.HTML = html

	// Without a session the itinerary is still returned; only follow-up chat is unavailable.
	sess, err := h.chat.Start(ctx, result.Text)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Error("start chat session")
	} else {
		resp.SessionID = sess.ID
	}

	writeJSON(c, http.StatusOK, resp)
}
