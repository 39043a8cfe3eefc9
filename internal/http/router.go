// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gosnap/internal/http/handlers"
	"gosnap/internal/http/middleware"
	"gosnap/internal/modules/booking"
	"gosnap/internal/modules/estimate"
	"gosnap/internal/modules/pricing"
)

type RouterDeps struct {
	Estimator *estimate.Estimator
	Places    handlers.Autocompleter
	Pricing   *pricing.Service
	Booking   *booking.Service
	Log       *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Logging(log), middleware.Recovery(log))

	estimateHandler := handlers.NewEstimateHandler(deps.Estimator, deps.Pricing)
	placesHandler := handlers.NewPlacesHandler(deps.Places, log)
	bookingHandler := handlers.NewBookingHandler(deps.Booking)
	sessionHandler := handlers.NewSessionHandler(deps.Estimator, deps.Pricing, deps.Places, log)

	api := r.Group("/api")
	api.POST("/estimates", estimateHandler.Create)
	api.GET("/tiers", estimateHandler.Tiers)
	api.GET("/places/autocomplete", placesHandler.Autocomplete)
	api.POST("/bookings", bookingHandler.Submit)
	api.GET("/bookings/:id", bookingHandler.Get)

	r.GET("/ws/estimates", sessionHandler.Serve)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
