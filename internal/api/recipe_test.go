package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pageza/recipe-catalog/backend/internal/mocks"
	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRecipeTestRouter(t *testing.T) (*gin.Engine, *mocks.MockRecipeService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := new(mocks.MockRecipeService)
	t.Cleanup(func() { svc.AssertExpectations(t) })

	router := gin.New()
	handler := NewRecipeHandler(svc, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	RegisterRoutes(router, handler, func(context.Context) error { return nil })
	return router, svc
}

func performRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateRecipe(t *testing.T) {
	router, svc := setupRecipeTestRouter(t)

	created := &model.Recipe{
		RecipeID:    1,
		Name:        "Pancakes",
		Ingredients: []model.Ingredient{{IngredientID: 1, IngredientName: "flour", Quantity: "200g"}},
		Links:       model.Links{"self": {Href: "/recipes/id/1"}},
	}
	svc.On("CreateRecipe", mock.Anything, mock.MatchedBy(func(r *model.Recipe) bool {
		return r.Name == "Pancakes" && len(r.Ingredients) == 1
	})).Return(created, nil)

	w := performRequest(router, "POST", "/recipes", map[string]any{
		"name":        "Pancakes",
		"ingredients": []map[string]any{{"ingredient_name": "flour", "quantity": "200g"}},
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	got := decode[model.Recipe](t, w)
	assert.Equal(t, int64(1), got.RecipeID)
	assert.Equal(t, "/recipes/id/1", got.Links["self"].Href)
}

func TestCreateRecipeValidation(t *testing.T) {
	router, _ := setupRecipeTestRouter(t)

	t.Run("missing name", func(t *testing.T) {
		w := performRequest(router, "POST", "/recipes", map[string]any{"steps": "mix"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ingredient without quantity", func(t *testing.T) {
		w := performRequest(router, "POST", "/recipes", map[string]any{
			"name":        "Toast",
			"ingredients": []map[string]any{{"ingredient_name": "bread"}},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		w := performRequest(router, "POST", "/recipes", "{not json")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateRecipeErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"duplicate name", &store.IntegrityError{StoreError: &store.StoreError{Op: "insert", Err: errors.New("unique")}}, http.StatusConflict},
		{"invalid input", store.ErrInvalidInput, http.StatusBadRequest},
		{"store failure", &store.StoreError{Op: "insert", Err: errors.New("connection reset")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := setupRecipeTestRouter(t)
			svc.On("CreateRecipe", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := performRequest(router, "POST", "/recipes", map[string]any{"name": "Soup"})
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, decode[map[string]string](t, w), "error")
		})
	}
}

func TestGetRecipe(t *testing.T) {
	t.Run("by id", func(t *testing.T) {
		router, svc := setupRecipeTestRouter(t)
		svc.On("GetRecipe", mock.Anything, service.ByID(5)).Return(&model.Recipe{RecipeID: 5, Name: "Soup"}, nil)

		w := performRequest(router, "GET", "/recipes/id/5", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Soup", decode[model.Recipe](t, w).Name)
	})

	t.Run("by name", func(t *testing.T) {
		router, svc := setupRecipeTestRouter(t)
		svc.On("GetRecipe", mock.Anything, service.ByName("Tomato Soup")).Return(&model.Recipe{RecipeID: 5, Name: "Tomato Soup"}, nil)

		w := performRequest(router, "GET", "/recipes/name/Tomato%20Soup", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		router, svc := setupRecipeTestRouter(t)
		svc.On("GetRecipe", mock.Anything, service.ByID(9)).Return(nil, service.ErrRecipeNotFound)

		w := performRequest(router, "GET", "/recipes/id/9", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Recipe not found", decode[map[string]string](t, w)["error"])
	})

	t.Run("malformed id", func(t *testing.T) {
		router, _ := setupRecipeTestRouter(t)
		w := performRequest(router, "GET", "/recipes/id/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdateRecipe(t *testing.T) {
	t.Run("passes the raw patch", func(t *testing.T) {
		router, svc := setupRecipeTestRouter(t)
		patch := map[string]any{"name": "Stew", "time_to_cook": float64(30)}
		svc.On("UpdateRecipe", mock.Anything, service.ByName("Soup"), patch).
			Return(&model.Recipe{RecipeID: 5, Name: "Stew"}, nil)

		w := performRequest(router, "PUT", "/recipes/name/Soup", patch)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Stew", decode[model.Recipe](t, w).Name)
	})

	t.Run("not found", func(t *testing.T) {
		router, svc := setupRecipeTestRouter(t)
		svc.On("UpdateRecipe", mock.Anything, service.ByID(3), mock.Anything).Return(nil, service.ErrRecipeNotFound)

		w := performRequest(router, "PUT", "/recipes/id/3", map[string]any{"name": "x"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		router, _ := setupRecipeTestRouter(t)
		w := performRequest(router, "PUT", "/recipes/id/3", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteRecipe(t *testing.T) {
	t.Run("by id", func(t *testing.T) {
		router, svc := setupRecipeTestRouter(t)
		svc.On("DeleteRecipe", mock.Anything, service.ByID(4)).Return(nil)

		w := performRequest(router, "DELETE", "/recipes/id/4", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Recipe with id 4 has been deleted", decode[MessageResponse](t, w).Message)
	})

	t.Run("by name", func(t *testing.T) {
		router, svc := setupRecipeTestRouter(t)
		svc.On("DeleteRecipe", mock.Anything, service.ByName("Soup")).Return(nil)

		w := performRequest(router, "DELETE", "/recipes/name/Soup", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Recipe with name Soup has been deleted", decode[MessageResponse](t, w).Message)
	})

	t.Run("not found", func(t *testing.T) {
		router, svc := setupRecipeTestRouter(t)
		svc.On("DeleteRecipe", mock.Anything, service.ByID(4)).Return(service.ErrRecipeNotFound)

		w := performRequest(router, "DELETE", "/recipes/id/4", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListRecipes(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		router, svc := setupRecipeTestRouter(t)
		page := &model.PaginatedResponse{
			Items: []model.Recipe{{RecipeID: 1, Name: "a"}},
			Links: model.Links{"current": {Href: "http://example.com/recipes?skip=0&limit=10"}},
		}
		svc.On("ListRecipes", mock.Anything, 0, 10, "http://example.com/recipes").Return(page, nil)

		w := performRequest(router, "GET", "/recipes", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		got := decode[model.PaginatedResponse](t, w)
		assert.Len(t, got.Items, 1)
		assert.Equal(t, page.Links, got.Links)
	})

	t.Run("explicit paging", func(t *testing.T) {
		router, svc := setupRecipeTestRouter(t)
		svc.On("ListRecipes", mock.Anything, 20, 5, "http://example.com/recipes").
			Return(&model.PaginatedResponse{Items: []model.Recipe{}, Links: model.Links{}}, nil)

		w := performRequest(router, "GET", "/recipes?skip=20&limit=5", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	for proto, want := range map[string]string{
		"https":                   "https://example.com/recipes",
		"HTTPS":                   "https://example.com/recipes",
		"javascript":              "http://example.com/recipes",
		"https://evil.example/x?": "http://example.com/recipes",
	} {
		t.Run("forwarded proto "+proto, func(t *testing.T) {
			router, svc := setupRecipeTestRouter(t)
			svc.On("ListRecipes", mock.Anything, 0, 10, want).
				Return(&model.PaginatedResponse{Items: []model.Recipe{}, Links: model.Links{}}, nil)

			req := httptest.NewRequest("GET", "/recipes", nil)
			req.Header.Set("X-Forwarded-Proto", proto)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			svc.AssertExpectations(t)
		})
	}

	for _, query := range []string{"skip=-1", "limit=0", "limit=101", "limit=abc"} {
		t.Run("rejects "+query, func(t *testing.T) {
			router, _ := setupRecipeTestRouter(t)
			w := performRequest(router, "GET", "/recipes?"+query, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/ok", HealthCheck(func(context.Context) error { return nil }))
	router.GET("/down", HealthCheck(func(context.Context) error { return errors.New("dial tcp: refused") }))

	w := performRequest(router, "GET", "/ok", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, w)["status"])

	w = performRequest(router, "GET", "/down", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", decode[map[string]string](t, w)["status"])
}
