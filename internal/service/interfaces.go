package service

import (
	"context"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error)
	GetRecipe(ctx context.Context, key Key) (*model.Recipe, error)
	UpdateRecipe(ctx context.Context, key Key, patch map[string]any) (*model.Recipe, error)
	DeleteRecipe(ctx context.Context, key Key) error
	ListRecipes(ctx context.Context, skip, limit int, baseURL string) (*model.PaginatedResponse, error)
}

// RecipeStore is the persistence surface the recipe service needs.
// store.Gateway implements it.
type RecipeStore interface {
	GetTotalCount(ctx context.Context, table string) (int64, error)
	GetByKey(ctx context.Context, table, keyField string, keyValue any) (*model.Recipe, error)
	ListPage(ctx context.Context, table string, skip, limit int) ([]model.Recipe, error)
	Insert(ctx context.Context, table string, recipe *model.Recipe) (*model.Recipe, error)
	Update(ctx context.Context, table, keyField string, keyValue any, data map[string]any) error
	Delete(ctx context.Context, table, keyField string, keyValue any) error
}
