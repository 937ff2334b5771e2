package store

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/pageza/recipe-catalog/backend/internal/model"
)

// Column names shared by the recipe and ingredient tables.
const (
	ColRecipeID       = "recipe_id"
	ColName           = "name"
	colIngredients    = "ingredients"
	colLinks          = "links"
	colIngredientID   = "ingredient_id"
	colIngredientName = "ingredient_name"
	colQuantity       = "quantity"
)

// RecipeRow is one row of the recipe table.
type RecipeRow struct {
	RecipeID    int64    `gorm:"column:recipe_id;primaryKey;autoIncrement"`
	Name        string   `gorm:"column:name;size:255;not null;uniqueIndex"`
	Steps       *string  `gorm:"column:steps;type:text"`
	TimeToCook  *int     `gorm:"column:time_to_cook"`
	MealType    *string  `gorm:"column:meal_type;size:50"`
	Calories    *int     `gorm:"column:calories"`
	Rating      *float64 `gorm:"column:rating"`
	KidFriendly *bool    `gorm:"column:kid_friendly"`
}

func (RecipeRow) TableName() string {
	return "recipes"
}

// IngredientRow is one row of the ingredient table
type IngredientRow struct {
	IngredientID   int64      `gorm:"column:ingredient_id;primaryKey;autoIncrement"`
	RecipeID       int64      `gorm:"column:recipe_id;not null;index;uniqueIndex:idx_ingredient_recipe_name"`
	IngredientName string     `gorm:"column:ingredient_name;size:255;not null;uniqueIndex:idx_ingredient_recipe_name"`
	Quantity       string     `gorm:"column:quantity;size:255;not null"`
	Recipe         *RecipeRow `gorm:"foreignKey:RecipeID;references:RecipeID;constraint:OnDelete:CASCADE"`
}

func (IngredientRow) TableName() string {
	return "ingredients"
}

// NutritionRow belongs to the external nutrition table. The catalog never
// reads it; rows are only removed when their recipe is deleted.
type NutritionRow struct {
	RecipeID int64      `gorm:"column:recipe_id;primaryKey;autoIncrement:false"`
	Calories int        `gorm:"column:calories"`
	Protein  float64    `gorm:"column:protein"`
	Fat      float64    `gorm:"column:fat"`
	Carbs    float64    `gorm:"column:carbs"`
	Recipe   *RecipeRow `gorm:"foreignKey:RecipeID;references:RecipeID;constraint:OnDelete:CASCADE"`
}

func (NutritionRow) TableName() string {
	return "nutrition"
}

// joinedRow is one row of the recipe/ingredient left join. Ingredient
// columns are nil when the recipe has no ingredients.
type joinedRow struct {
	RecipeRow
	IngredientID   *int64
	IngredientName *string
	Quantity       *string
}

// columnKind is the Go type a recipe column accepts in a patch.
type columnKind int

const (
	kindString columnKind = iota
	kindText
	kindInt
	kindFloat
	kindBool
)

// patchColumns lists the scalar recipe columns a patch may set.
var patchColumns = map[string]columnKind{
	ColName:        kindString,
	"steps":        kindText,
	"time_to_cook": kindInt,
	"meal_type":    kindString,
	"calories":     kindInt,
	"rating":       kindFloat,
	"kid_friendly": kindBool,
}

func toRecipeRow(r *model.Recipe) RecipeRow {
	return RecipeRow{
		Name:        r.Name,
		Steps:       r.Steps,
		TimeToCook:  r.TimeToCook,
		MealType:    r.MealType,
		Calories:    r.Calories,
		Rating:      r.Rating,
		KidFriendly: r.KidFriendly,
	}
}

func fromRecipeRow(row RecipeRow) model.Recipe {
	return model.Recipe{
		RecipeID:    row.RecipeID,
		Name:        row.Name,
		Steps:       row.Steps,
		TimeToCook:  row.TimeToCook,
		MealType:    row.MealType,
		Calories:    row.Calories,
		Rating:      row.Rating,
		KidFriendly: row.KidFriendly,
		Ingredients: []model.Ingredient{},
	}
}

func toIngredientRow(recipeID int64, in model.Ingredient) IngredientRow {
	return IngredientRow{
		RecipeID:       recipeID,
		IngredientName: in.IngredientName,
		Quantity:       in.Quantity,
	}
}

func fromIngredientRow(row IngredientRow) model.Ingredient {
	return model.Ingredient{
		IngredientID:   row.IngredientID,
		IngredientName: row.IngredientName,
		Quantity:       row.Quantity,
	}
}

// groupJoined folds left-join rows into one recipe. It returns nil for an
// empty result.
func groupJoined(rows []joinedRow) *model.Recipe {
	if len(rows) == 0 {
		return nil
	}
	recipe := fromRecipeRow(rows[0].RecipeRow)
	for _, row := range rows {
		if row.IngredientName == nil {
			continue
		}
		in := model.Ingredient{IngredientName: *row.IngredientName}
		if row.IngredientID != nil {
			in.IngredientID = *row.IngredientID
		}
		if row.Quantity != nil {
			in.Quantity = *row.Quantity
		}
		recipe.Ingredients = append(recipe.Ingredients, in)
	}
	return &recipe
}

// attachIngredients distributes ingredient rows over their recipes, keeping
// the page order of recipes and the id order of ingredients.
func attachIngredients(recipes []RecipeRow, ingredients []IngredientRow) []model.Recipe {
	byRecipe := make(map[int64][]model.Ingredient, len(recipes))
	for _, row := range ingredients {
		byRecipe[row.RecipeID] = append(byRecipe[row.RecipeID], fromIngredientRow(row))
	}

	out := make([]model.Recipe, 0, len(recipes))
	for _, row := range recipes {
		recipe := fromRecipeRow(row)
		if list, ok := byRecipe[row.RecipeID]; ok {
			recipe.Ingredients = list
		}
		out = append(out, recipe)
	}
	return out
}

// validateRecipe checks a recipe before insert.
func validateRecipe(r *model.Recipe) error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return validateIngredients(r.Ingredients)
}

// validateIngredients rejects empty names, empty quantities and duplicate
// names within one payload.
func validateIngredients(list []model.Ingredient) error {
	seen := make(map[string]struct{}, len(list))
	for i, in := range list {
		if strings.TrimSpace(in.IngredientName) == "" {
			return fmt.Errorf("%w: ingredients[%d]: ingredient_name is required", ErrInvalidInput, i)
		}
		if strings.TrimSpace(in.Quantity) == "" {
			return fmt.Errorf("%w: ingredients[%d]: quantity is required", ErrInvalidInput, i)
		}
		if _, dup := seen[in.IngredientName]; dup {
			return fmt.Errorf("%w: duplicate ingredient %q", ErrInvalidInput, in.IngredientName)
		}
		seen[in.IngredientName] = struct{}{}
	}
	return nil
}

// recipePatch is a partial update split into recipe columns and an optional
// replacement ingredient set.
type recipePatch struct {
	columns        map[string]any
	ingredients    []model.Ingredient
	hasIngredients bool
	dropped        []string
}

// mapPatch converts decoded JSON into a recipePatch. links and recipe_id are
// stripped, non-scalar and unknown fields are dropped, and scalar values are
// coerced to their column type.
func mapPatch(data map[string]any) (recipePatch, error) {
	p := recipePatch{columns: make(map[string]any, len(data))}

	for key, value := range data {
		switch key {
		case colLinks, ColRecipeID:
			continue
		case colIngredients:
			list, err := decodeIngredients(value)
			if err != nil {
				return recipePatch{}, err
			}
			p.ingredients = list
			p.hasIngredients = true
			continue
		}

		kind, ok := patchColumns[key]
		if !ok || !isScalar(value) {
			p.dropped = append(p.dropped, key)
			continue
		}
		v, err := coerce(key, kind, value)
		if err != nil {
			return recipePatch{}, err
		}
		p.columns[key] = v
	}

	if p.hasIngredients {
		if err := validateIngredients(p.ingredients); err != nil {
			return recipePatch{}, err
		}
	}
	return p, nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return false
	}
	return true
}

func decodeIngredients(value any) ([]model.Ingredient, error) {
	if value == nil {
		return []model.Ingredient{}, nil
	}
	switch v := value.(type) {
	case []model.Ingredient:
		return v, nil
	case []any:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: ingredients: %v", ErrInvalidInput, err)
		}
		var list []model.Ingredient
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("%w: ingredients: %v", ErrInvalidInput, err)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("%w: ingredients must be a list", ErrInvalidInput)
	}
}

func coerce(column string, kind columnKind, value any) (any, error) {
	if value == nil {
		if column == ColName {
			return nil, fmt.Errorf("%w: name cannot be null", ErrInvalidInput)
		}
		return nil, nil
	}

	switch kind {
	case kindString, kindText:
		s, ok := value.(string)
		if !ok {
			return nil, typeError(column, "a string", value)
		}
		if column == ColName && strings.TrimSpace(s) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
		}
		return s, nil
	case kindInt:
		f, ok := toFloat(value)
		if !ok || f != math.Trunc(f) {
			return nil, typeError(column, "an integer", value)
		}
		// model fields are int; float64(math.MaxInt) rounds up, hence >=
		if f < math.MinInt || f >= math.MaxInt {
			return nil, fmt.Errorf("%w: %s is out of range: %v", ErrInvalidInput, column, value)
		}
		return int64(f), nil
	case kindFloat:
		f, ok := toFloat(value)
		if !ok {
			return nil, typeError(column, "a number", value)
		}
		return f, nil
	case kindBool:
		b, ok := value.(bool)
		if !ok {
			return nil, typeError(column, "a boolean", value)
		}
		return b, nil
	}
	return nil, typeError(column, "a scalar", value)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

func typeError(column, want string, value any) error {
	return fmt.Errorf("%w: %s must be %s, got %T", ErrInvalidInput, column, want, value)
}
