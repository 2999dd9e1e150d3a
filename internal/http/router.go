// README: API gateway; registers gin routes and delegates to the services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wayfarer/internal/chat"
	"wayfarer/internal/http/handlers"
	"wayfarer/internal/http/middleware"
	"wayfarer/internal/itinerary"
	"wayfarer/internal/maps"
	"wayfarer/internal/markdown"
)

type RouterDeps struct {
	Itinerary *itinerary.Service
	Chat      *chat.Service
	Places    *maps.PlacesService
	Renderer  *markdown.Renderer
	Currency  string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	itineraryHandler := handlers.NewItineraryHandler(deps.Itinerary, deps.Chat, deps.Renderer, deps.Currency)
	chatHandler := handlers.NewChatHandler(deps.Chat, deps.Renderer)
	bookingHandler := handlers.NewBookingHandler()
	placesHandler := handlers.NewPlacesHandler(deps.Places)

	api := r.Group("/api")
	api.POST("/itineraries", itineraryHandler.Create)
	api.GET("/sessions/:id", chatHandler.Get)
	api.POST("/sessions/:id/messages", chatHandler.Ask)
	api.POST("/flights/book", bookingHandler.Book)
	api.GET("/places", placesHandler.Highlights)

	return r
}
