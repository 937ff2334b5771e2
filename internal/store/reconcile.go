package store

import "github.com/pageza/recipe-catalog/backend/internal/model"

// Plan is the set of writes that turns a persisted ingredient list into a
// desired one. Updates and Deletes carry the persisted IngredientID.
type Plan struct {
	Inserts []model.Ingredient
	Updates []model.Ingredient
	Deletes []model.Ingredient
}

// Empty reports whether the plan performs no writes.
func (p Plan) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Reconcile diffs current against desired by ingredient name. Matching names
// with a different quantity become updates, names only in desired become
// inserts and names only in current become deletes. Unchanged ingredients are
// left out of the plan.
//
// When desired repeats a name, its last quantity wins. When current repeats a
// name, the first row is kept and the others are deleted.
func Reconcile(current, desired []model.Ingredient) Plan {
	var plan Plan

	persisted := make(map[string]model.Ingredient, len(current))
	unique := make([]model.Ingredient, 0, len(current))
	for _, in := range current {
		if _, ok := persisted[in.IngredientName]; ok {
			plan.Deletes = append(plan.Deletes, in)
			continue
		}
		persisted[in.IngredientName] = in
		unique = append(unique, in)
	}

	wanted := make(map[string]string, len(desired))
	order := make([]string, 0, len(desired))
	for _, in := range desired {
		if _, ok := wanted[in.IngredientName]; !ok {
			order = append(order, in.IngredientName)
		}
		wanted[in.IngredientName] = in.Quantity
	}

	for _, name := range order {
		quantity := wanted[name]
		existing, ok := persisted[name]
		switch {
		case !ok:
			plan.Inserts = append(plan.Inserts, model.Ingredient{IngredientName: name, Quantity: quantity})
		case existing.Quantity != quantity:
			existing.Quantity = quantity
			plan.Updates = append(plan.Updates, existing)
		}
	}

	for _, in := range unique {
		if _, ok := wanted[in.IngredientName]; !ok {
			plan.Deletes = append(plan.Deletes, in)
		}
	}

	return plan
}
