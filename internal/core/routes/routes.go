package routes

import (
	"os"

	"splitters/internal/core/container"
	"splitters/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterPublicRoutes(router *gin.Engine, container *container.Container) {
	container.ConfirmHandler.RegisterRoutes(router)
	container.TeamHandler.RegisterRoutes(router)
	container.EventsHandler.RegisterRoutes(router)
}

// RegisterInventoryRoutes mounts the location, splitter and document routes. Deletes go
// through the confirmation gate.
func RegisterInventoryRoutes(router *gin.Engine, container *container.Container) {
	confirm := security.RequireConfirmation(container.Gate, container.Tokens, container.RateLimiter)

	container.LocationHandler.RegisterRoutes(router, confirm)
	container.DocumentHandler.RegisterRoutes(router, confirm)
}

func RegisterUtilityRoutes(router *gin.Engine, container *container.Container) {
	router.GET("/health", container.Health.HealthCheckMiddleware())

	openapiFilePath := "./docs/index.html"
	if _, err := os.Stat(openapiFilePath); err == nil {
		router.GET("/openapi.html", func(c *gin.Context) {
			c.File(openapiFilePath)
		})
		container.Log.Info("Route docs/index.html registered successfully.")
	} else {
		container.Log.Debug("API docs not found, /openapi.html will not be registered", zap.String("path", openapiFilePath))
	}
}
