package store

import (
	"fmt"

	"gorm.io/gorm"
)

// EnsureSchema creates or migrates the recipe, ingredient and nutrition tables.
func EnsureSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(&RecipeRow{}, &IngredientRow{}, &NutritionRow{}); err != nil {
		return fmt.Errorf("failed to migrate recipe schema: %w", err)
	}
	return nil
}
