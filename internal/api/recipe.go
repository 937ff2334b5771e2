package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/store"
)

type RecipeHandler struct {
	recipeService service.IRecipeService
	logger        *slog.Logger
}

func NewRecipeHandler(recipeService service.IRecipeService, logger *slog.Logger) *RecipeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecipeHandler{
		recipeService: recipeService,
		logger:        logger,
	}
}

// RegisterRoutes mounts the recipe routes. writeMiddleware runs before every
// handler that modifies the catalog.
func (h *RecipeHandler) RegisterRoutes(router gin.IRouter, writeMiddleware ...gin.HandlerFunc) {
	write := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, writeMiddleware...), handler)
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.POST("", write(h.CreateRecipe)...)

		recipes.GET("/id/:id", h.GetRecipe)
		recipes.PUT("/id/:id", write(h.UpdateRecipe)...)
		recipes.DELETE("/id/:id", write(h.DeleteRecipe)...)

		recipes.GET("/name/:name", h.GetRecipe)
		recipes.PUT("/name/:name", write(h.UpdateRecipe)...)
		recipes.DELETE("/name/:name", write(h.DeleteRecipe)...)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var query ListRecipesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.recipeService.ListRecipes(c.Request.Context(), query.Skip, query.Limit, requestBaseURL(c))
	if err != nil {
		h.respondError(c, err, "Failed to fetch recipes")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	key, ok := recipeKey(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), key)
	if err != nil {
		h.respondError(c, err, "Failed to fetch recipe")
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.recipeService.CreateRecipe(c.Request.Context(), &recipe)
	if err != nil {
		h.respondError(c, err, "Failed to create recipe")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	key, ok := recipeKey(c)
	if !ok {
		return
	}

	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.recipeService.UpdateRecipe(c.Request.Context(), key, patch)
	if err != nil {
		h.respondError(c, err, "Failed to update recipe")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	key, ok := recipeKey(c)
	if !ok {
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), key); err != nil {
		h.respondError(c, err, "Failed to delete recipe")
		return
	}

	msg := fmt.Sprintf("Recipe with name %s has been deleted", c.Param("name"))
	if id := c.Param("id"); id != "" {
		msg = fmt.Sprintf("Recipe with id %s has been deleted", id)
	}
	c.JSON(http.StatusOK, MessageResponse{Message: msg})
}

// respondError maps service and store errors to HTTP statuses. Unexpected
// failures are logged and reported with fallback.
func (h *RecipeHandler) respondError(c *gin.Context, err error, fallback string) {
	var integrity *store.IntegrityError
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
	case errors.Is(err, store.ErrInvalidInput), errors.Is(err, store.ErrInvalidKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &integrity):
		c.JSON(http.StatusConflict, gin.H{"error": "Recipe conflicts with an existing recipe"})
	default:
		h.logger.Error(fallback, "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// recipeKey reads the :id or :name route parameter. It writes a 400 and
// returns false for a malformed id.
func recipeKey(c *gin.Context) (service.Key, bool) {
	if raw := c.Param("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
			return service.Key{}, false
		}
		return service.ByID(id), true
	}
	return service.ByName(c.Param("name")), true
}

// requestBaseURL rebuilds the absolute URL of the current request without
// its query string.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	switch proto := strings.ToLower(strings.TrimSpace(c.GetHeader("X-Forwarded-Proto"))); proto {
	case "http", "https":
		scheme = proto
	}
	return fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, c.Request.URL.Path)
}
