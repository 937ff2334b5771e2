package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/pageza/recipe-catalog/backend/internal/api"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
)

// Options configures SetupRouter.
type Options struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// RateLimiter guards write routes; nil disables write limiting.
	RateLimiter *middleware.RateLimiter
	Health      api.HealthChecker
}

// SetupRouter configures the application routes
func SetupRouter(recipeHandler *api.RecipeHandler, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(
		middleware.ErrorHandler(logger),
		middleware.CorrelationID(),
		middleware.RequestLogger(logger),
		middleware.Metrics(),
		middleware.CORS(opts.AllowedOrigins),
	)

	router.GET("/metrics", middleware.MetricsHandler())

	var writeMiddleware []gin.HandlerFunc
	if opts.RateLimiter != nil {
		writeMiddleware = append(writeMiddleware, opts.RateLimiter.RateLimitMiddleware())
	}
	api.RegisterRoutes(router, recipeHandler, opts.Health, writeMiddleware...)

	return router
}
