// Package seed loads recipes from a YAML file into the catalog.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/store"
	"gopkg.in/yaml.v3"
)

// File is the layout of a seed file.
type File struct {
	Recipes []model.Recipe `yaml:"recipes"`
}

// Creator stores one recipe.
type Creator interface {
	CreateRecipe(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error)
}

// Result counts what a seed run did.
type Result struct {
	Created int
	Skipped int
}

// Load decodes a seed file. Unknown keys are rejected.
func Load(r io.Reader) ([]model.Recipe, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return f.Recipes, nil
}

// LoadFile decodes the seed file at path.
func LoadFile(path string) ([]model.Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Run creates every recipe, skipping ones that already exist.
func Run(ctx context.Context, creator Creator, recipes []model.Recipe, logger *slog.Logger) (Result, error) {
	var res Result
	for i := range recipes {
		recipe := recipes[i]
		created, err := creator.CreateRecipe(ctx, &recipe)

		var integrity *store.IntegrityError
		switch {
		case errors.As(err, &integrity):
			logger.Info("recipe already exists, skipping", "name", recipe.Name)
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("failed to seed recipe %q: %w", recipe.Name, err)
		default:
			logger.Info("seeded recipe", "name", created.Name, "recipe_id", created.RecipeID)
			res.Created++
		}
	}
	return res, nil
}
