package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pageza/recipe-catalog/backend/internal/links"
	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/store"
)

// ErrRecipeNotFound is returned when no recipe matches the requested key.
var ErrRecipeNotFound = errors.New("recipe not found")

// Key identifies a recipe either by id or by unique name.
type Key struct {
	field string
	value any
}

// ByID selects a recipe by recipe_id.
func ByID(id int64) Key {
	return Key{field: store.ColRecipeID, value: id}
}

// ByName selects a recipe by its unique name.
func ByName(name string) Key {
	return Key{field: store.ColName, value: name}
}

func (k Key) String() string {
	return fmt.Sprintf("%s=%v", k.field, k.value)
}

// RecipeService handles recipe operations
type RecipeService struct {
	store RecipeStore
	table string
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(s RecipeStore) *RecipeService {
	return &RecipeService{
		store: s,
		table: store.DefaultRecipeTable,
	}
}

// CreateRecipe stores a new recipe and returns it with its generated ids
// and links.
func (s *RecipeService) CreateRecipe(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	created, err := s.store.Insert(ctx, s.table, recipe)
	if err != nil {
		return nil, err
	}
	return withLinks(created), nil
}

// GetRecipe retrieves a recipe by key
func (s *RecipeService) GetRecipe(ctx context.Context, key Key) (*model.Recipe, error) {
	recipe, err := s.store.GetByKey(ctx, s.table, key.field, key.value)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, ErrRecipeNotFound
	}
	return withLinks(recipe), nil
}

// UpdateRecipe applies patch to the recipe identified by key and returns the
// stored result. The recipe is resolved first so the write always targets
// its canonical id, even when the patch renames it.
func (s *RecipeService) UpdateRecipe(ctx context.Context, key Key, patch map[string]any) (*model.Recipe, error) {
	existing, err := s.GetRecipe(ctx, key)
	if err != nil {
		return nil, err
	}

	id := ByID(existing.RecipeID)
	if err := s.store.Update(ctx, s.table, id.field, id.value, patch); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return s.GetRecipe(ctx, id)
}

// DeleteRecipe deletes the recipe identified by key together with its
// ingredients.
func (s *RecipeService) DeleteRecipe(ctx context.Context, key Key) error {
	existing, err := s.GetRecipe(ctx, key)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, s.table, store.ColRecipeID, existing.RecipeID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}
	return nil
}

// ListRecipes returns one page of the catalog with navigation links built
// against baseURL.
func (s *RecipeService) ListRecipes(ctx context.Context, skip, limit int, baseURL string) (*model.PaginatedResponse, error) {
	if skip < 0 || limit < 1 {
		return nil, fmt.Errorf("%w: skip must be >= 0 and limit >= 1", store.ErrInvalidInput)
	}

	total, err := s.store.GetTotalCount(ctx, s.table)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListPage(ctx, s.table, skip, limit)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Links = links.Recipe(items[i].RecipeID)
	}

	return &model.PaginatedResponse{
		Items: items,
		Links: links.Page(baseURL, skip, limit, total),
	}, nil
}

func withLinks(r *model.Recipe) *model.Recipe {
	r.Links = links.Recipe(r.RecipeID)
	return r
}
