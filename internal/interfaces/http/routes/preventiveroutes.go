package routes

import (
	"github.com/gin-gonic/gin"

	"cmms/internal/interfaces/http/handlers/preventive"
	"cmms/internal/interfaces/http/middleware"
)

// PreventiveRouteConfig holds dependencies for the work-order generator routes.
type PreventiveRouteConfig struct {
	Handler     *preventive.Handler
	RateLimiter *middleware.RateLimiter
}

// SetupPreventiveRoutes configures the generator endpoints under /api/v1/preventive.
func SetupPreventiveRoutes(engine *gin.Engine, cfg *PreventiveRouteConfig) {
	group := engine.Group("/api/v1/preventive")
	{
		group.POST("/generate", cfg.RateLimiter.Limit(), cfg.Handler.GenerateAll)
		group.POST("/plans/:code/generate", cfg.RateLimiter.Limit(), cfg.Handler.GenerateForPlan)

		group.GET("/pending", cfg.Handler.Pending)
		group.GET("/runs", cfg.Handler.Runs)

		group.GET("/scheduler/status", cfg.Handler.SchedulerStatus)
		group.GET("/scheduler/history", cfg.Handler.SchedulerHistory)
	}
}
