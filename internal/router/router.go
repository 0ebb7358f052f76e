// Package router registers the HTTP routes exposed by the seating service.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/seatflow/seating-service/internal/handler"
	"github.com/seatflow/seating-service/internal/middleware"
)

// RegisterRoutes wires every endpoint. The topic and catalog endpoints live
// under /api/v1 and share the rate limiter plus, when jwtSecret is set, the
// service-auth guard. The health check stays open for load balancers.
func RegisterRoutes(e *echo.Echo, th *handler.TopicHandler, ch *handler.CatalogHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api/v1")
	if limiter != nil {
		api.Use(limiter)
	}
	if jwtSecret != "" {
		api.Use(middleware.ServiceAuth(jwtSecret))
	}
	// Identity endpoint other services use to verify wiring.
	api.GET("/name", th.Name)
	// The single envelope entry point; routing happens on topicName.
	api.POST("/processTopic", th.ProcessTopic)
	// Catalog-management boundary for the upstream process.
	api.POST("/showings", ch.CreateShowing)
	api.GET("/showings", ch.ListShowings)
}
