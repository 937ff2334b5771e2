package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pageza/recipe-catalog/backend/internal/model"
	"gorm.io/gorm"
)

// DefaultRecipeTable is the table recipes live in unless a caller says otherwise.
const DefaultRecipeTable = "recipes"

const recipeColumns = "r.recipe_id, r.name, r.steps, r.time_to_cook, r.meal_type, r.calories, r.rating, r.kid_friendly"

// Gateway runs recipe reads and writes against the relational store. Every
// multi-statement write runs in a single transaction that is rolled back on
// any error.
type Gateway struct {
	db              *gorm.DB
	ingredientTable string
	nutritionTable  string
	logger          *slog.Logger
}

// Option configures a Gateway
type Option func(*Gateway)

// WithIngredientTable overrides the ingredient table name.
func WithIngredientTable(name string) Option {
	return func(g *Gateway) { g.ingredientTable = name }
}

// WithNutritionTable enables deleting rows of an external nutrition table,
// keyed by recipe_id, when their recipe is deleted.
func WithNutritionTable(name string) Option {
	return func(g *Gateway) { g.nutritionTable = name }
}

// WithLogger sets the logger used for dropped-field warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

// NewGateway creates a Gateway over db.
func NewGateway(db *gorm.DB, opts ...Option) *Gateway {
	g := &Gateway{
		db:              db,
		ingredientTable: IngredientRow{}.TableName(),
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GetTotalCount returns the number of rows in table.
func (g *Gateway) GetTotalCount(ctx context.Context, table string) (total int64, err error) {
	defer observe("count", time.Now(), &err)

	if err = g.db.WithContext(ctx).Table(table).Count(&total).Error; err != nil {
		return 0, wrapErr("count", err)
	}
	return total, nil
}

// GetByKey loads the recipe whose keyField equals keyValue together with its
// ingredients. It returns nil, nil when no recipe matches.
func (g *Gateway) GetByKey(ctx context.Context, table, keyField string, keyValue any) (recipe *model.Recipe, err error) {
	defer observe("get", time.Now(), &err)

	if err = checkKey(keyField); err != nil {
		return nil, err
	}

	var rows []joinedRow
	err = g.db.WithContext(ctx).
		Table(table+" AS r").
		Select(recipeColumns+", i.ingredient_id, i.ingredient_name, i.quantity").
		Joins(fmt.Sprintf("LEFT JOIN %s AS i ON i.recipe_id = r.recipe_id", g.ingredientTable)).
		Where(fmt.Sprintf("r.%s = ?", keyField), keyValue).
		Order("i.ingredient_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapErr("get", err)
	}
	return groupJoined(rows), nil
}

// ListPage returns up to limit recipes after skipping skip, in recipe_id
// order. Ingredients are fetched with a second query over the page's ids so
// ingredient fan-out never shrinks the page.
func (g *Gateway) ListPage(ctx context.Context, table string, skip, limit int) (recipes []model.Recipe, err error) {
	defer observe("list", time.Now(), &err)

	if skip < 0 || limit < 1 {
		return nil, fmt.Errorf("%w: skip must be >= 0 and limit >= 1", ErrInvalidInput)
	}

	db := g.db.WithContext(ctx)

	var rows []RecipeRow
	err = db.Table(table).
		Order(ColRecipeID).
		Limit(limit).
		Offset(skip).
		Find(&rows).Error
	if err != nil {
		return nil, wrapErr("list", err)
	}
	if len(rows) == 0 {
		return []model.Recipe{}, nil
	}

	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.RecipeID
	}

	var ingredients []IngredientRow
	err = db.Table(g.ingredientTable).
		Where("recipe_id IN ?", ids).
		Order(colIngredientID).
		Find(&ingredients).Error
	if err != nil {
		return nil, wrapErr("list", err)
	}

	return attachIngredients(rows, ingredients), nil
}

// Insert writes recipe and its ingredients in one transaction and returns
// the stored copy carrying the generated recipe and ingredient ids.
func (g *Gateway) Insert(ctx context.Context, table string, recipe *model.Recipe) (created *model.Recipe, err error) {
	defer observe("insert", time.Now(), &err)

	if err = validateRecipe(recipe); err != nil {
		return nil, err
	}

	row := toRecipeRow(recipe)
	var ingredients []model.Ingredient

	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(table).Create(&row).Error; err != nil {
			return err
		}

		ingredients = make([]model.Ingredient, 0, len(recipe.Ingredients))
		for _, in := range recipe.Ingredients {
			ir := toIngredientRow(row.RecipeID, in)
			if err := tx.Table(g.ingredientTable).Create(&ir).Error; err != nil {
				return err
			}
			ingredients = append(ingredients, fromIngredientRow(ir))
		}
		return nil
	})
	if err != nil {
		return nil, wrapErr("insert", err)
	}

	out := fromRecipeRow(row)
	out.Ingredients = ingredients
	return &out, nil
}

// Update applies a partial update to the recipe whose keyField equals
// keyValue. links and recipe_id are never written. When data carries an
// ingredients key, even an empty one, the persisted ingredients are
// reconciled to match it exactly; otherwise they are left alone.
func (g *Gateway) Update(ctx context.Context, table, keyField string, keyValue any, data map[string]any) (err error) {
	defer observe("update", time.Now(), &err)

	if err = checkKey(keyField); err != nil {
		return err
	}

	patch, err := mapPatch(data)
	if err != nil {
		return err
	}
	if len(patch.dropped) > 0 {
		g.logger.Warn("dropping unsupported recipe fields", "fields", patch.dropped)
	}

	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := resolveID(tx, table, keyField, keyValue)
		if err != nil {
			return err
		}

		if len(patch.columns) > 0 {
			if err := tx.Table(table).Where("recipe_id = ?", id).Updates(patch.columns).Error; err != nil {
				return err
			}
		}

		if patch.hasIngredients {
			return g.reconcileIngredients(tx, id, patch.ingredients)
		}
		return nil
	})
	return wrapErr("update", err)
}

// Delete removes the recipe whose keyField equals keyValue along with its
// ingredient rows and, when configured, its nutrition row.
func (g *Gateway) Delete(ctx context.Context, table, keyField string, keyValue any) (err error) {
	defer observe("delete", time.Now(), &err)

	if err = checkKey(keyField); err != nil {
		return err
	}

	err = g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := resolveID(tx, table, keyField, keyValue)
		if err != nil {
			return err
		}

		if err := tx.Table(g.ingredientTable).Where("recipe_id = ?", id).Delete(&IngredientRow{}).Error; err != nil {
			return err
		}
		if g.nutritionTable != "" {
			if err := tx.Table(g.nutritionTable).Where("recipe_id = ?", id).Delete(&NutritionRow{}).Error; err != nil {
				return err
			}
		}

		res := tx.Table(table).Where("recipe_id = ?", id).Delete(&RecipeRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	return wrapErr("delete", err)
}

func (g *Gateway) reconcileIngredients(tx *gorm.DB, recipeID int64, desired []model.Ingredient) error {
	var rows []IngredientRow
	err := tx.Table(g.ingredientTable).
		Where("recipe_id = ?", recipeID).
		Order(colIngredientID).
		Find(&rows).Error
	if err != nil {
		return err
	}

	current := make([]model.Ingredient, len(rows))
	for i, row := range rows {
		current[i] = fromIngredientRow(row)
	}

	plan := Reconcile(current, desired)
	if plan.Empty() {
		return nil
	}

	// deletes go first so a re-added name never collides with the row it replaces
	if len(plan.Deletes) > 0 {
		ids := make([]int64, len(plan.Deletes))
		for i, in := range plan.Deletes {
			ids[i] = in.IngredientID
		}
		if err := tx.Table(g.ingredientTable).Where("ingredient_id IN ?", ids).Delete(&IngredientRow{}).Error; err != nil {
			return err
		}
	}

	for _, in := range plan.Updates {
		err := tx.Table(g.ingredientTable).
			Where("ingredient_id = ?", in.IngredientID).
			Update(colQuantity, in.Quantity).Error
		if err != nil {
			return err
		}
	}

	for _, in := range plan.Inserts {
		ir := toIngredientRow(recipeID, in)
		if err := tx.Table(g.ingredientTable).Create(&ir).Error; err != nil {
			return err
		}
	}
	return nil
}

// resolveID maps keyField/keyValue to the canonical recipe_id.
func resolveID(tx *gorm.DB, table, keyField string, keyValue any) (int64, error) {
	var row RecipeRow
	err := tx.Table(table).
		Select(ColRecipeID).
		Where(fmt.Sprintf("%s = ?", keyField), keyValue).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return row.RecipeID, nil
}

func checkKey(field string) error {
	switch field {
	case ColRecipeID, ColName:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidKey, field)
}
