package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/recipe-catalog/backend/internal/middleware"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker func(ctx context.Context) error

// HealthCheck returns the health status of the API and its database
func HealthCheck(check HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if check != nil {
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":   "unhealthy",
					"database": "down",
					"error":    err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "up",
			"message":  "Recipe catalog API is running",
		})
	}
}

// Root greets the caller and returns the request's correlation id.
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":       "Hello recipes search Applications!",
		"correlationId": c.GetString(middleware.CorrelationIDKey),
	})
}

// RegisterRoutes registers all API routes. writeMiddleware guards the
// routes that modify the catalog.
func RegisterRoutes(router *gin.Engine, recipeHandler *RecipeHandler, health HealthChecker, writeMiddleware ...gin.HandlerFunc) {
	router.GET("/", Root)
	router.GET("/health", HealthCheck(health))

	recipeHandler.RegisterRoutes(router, writeMiddleware...)
}
