package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cmms/internal/infrastructure/config"
	"cmms/internal/interfaces/bootstrap"
	"cmms/internal/interfaces/http/handlers/preventive"
	"cmms/internal/interfaces/http/middleware"
	"cmms/internal/interfaces/http/routes"
	"cmms/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	engine            *gin.Engine
	cfg               *config.Config
	log               logger.Interface
	preventiveHandler *preventive.Handler
	rateLimiter       *middleware.RateLimiter
	version           string
}

// NewRouter creates the HTTP router. inspector is nil when the scheduler
// runs in a separate worker process.
func NewRouter(cfg *config.Config, components *bootstrap.Preventive, inspector preventive.SchedulerInspector, version string, log logger.Interface) *Router {
	handler := preventive.NewHandler(
		components.GenerateAll,
		components.GenerateForPlan,
		components.CheckPending,
		components.ListRuns,
		inspector,
		log.Named("preventive-handler"),
	)

	return &Router{
		engine:            gin.New(),
		cfg:               cfg,
		log:               log,
		preventiveHandler: handler,
		rateLimiter:       middleware.NewRateLimiter(cfg.RateLimit.ManualTriggersPerMinute, cfg.RateLimit.Burst),
		version:           version,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Logger(r.log))
	r.engine.Use(middleware.Recovery(r.log))
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))

	r.engine.GET("/health", r.health)

	routes.SetupPreventiveRoutes(r.engine, &routes.PreventiveRouteConfig{
		Handler:     r.preventiveHandler,
		RateLimiter: r.rateLimiter,
	})
}

// GetEngine returns the gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}

func (r *Router) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": r.version,
	})
}
