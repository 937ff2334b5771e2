package seed

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pageza/recipe-catalog/backend/internal/service"
	"github.com/pageza/recipe-catalog/backend/internal/store"
	"github.com/pageza/recipe-catalog/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
recipes:
  - name: Pancakes
    time_to_cook: 20
    meal_type: breakfast
    kid_friendly: true
    ingredients:
      - ingredient_name: flour
        quantity: 200g
      - ingredient_name: egg
        quantity: "2"
  - name: Tomato Soup
    steps: simmer and blend
    rating: 4.2
`

func TestLoad(t *testing.T) {
	recipes, err := Load(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	assert.Equal(t, "Pancakes", recipes[0].Name)
	require.NotNil(t, recipes[0].TimeToCook)
	assert.Equal(t, 20, *recipes[0].TimeToCook)
	require.NotNil(t, recipes[0].KidFriendly)
	assert.True(t, *recipes[0].KidFriendly)
	assert.Len(t, recipes[0].Ingredients, 2)
	assert.Equal(t, "2", recipes[0].Ingredients[1].Quantity)

	require.NotNil(t, recipes[1].Rating)
	assert.Equal(t, 4.2, *recipes[1].Rating)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("recipes:\n  - name: x\n    colour: red\n"))
	assert.Error(t, err)
}

func TestLoadEmpty(t *testing.T) {
	recipes, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestRunSkipsExisting(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := service.NewRecipeService(store.NewGateway(testhelpers.SetupSQLite(t)))

	path := filepath.Join(t.TempDir(), "recipes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	recipes, err := LoadFile(path)
	require.NoError(t, err)

	res, err := Run(ctx, svc, recipes, logger)
	require.NoError(t, err)
	assert.Equal(t, Result{Created: 2}, res)

	res, err = Run(ctx, svc, recipes, logger)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 2}, res)

	got, err := svc.GetRecipe(ctx, service.ByName("Pancakes"))
	require.NoError(t, err)
	assert.Len(t, got.Ingredients, 2)
}

func TestRunStopsOnInvalidRecipe(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	svc := service.NewRecipeService(store.NewGateway(testhelpers.SetupSQLite(t)))

	recipes, err := Load(strings.NewReader("recipes:\n  - name: \"\"\n"))
	require.NoError(t, err)

	_, err = Run(ctx, svc, recipes, logger)
	assert.ErrorIs(t, err, store.ErrInvalidInput)
}
