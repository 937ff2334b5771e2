package model

// Link is a hypermedia reference attached to a response. Method is only set
// for links that require a verb other than GET.
type Link struct {
	Href   string `json:"href" yaml:"href"`
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
}

// Links maps a relation name (self, update, next, ...) to its link.
type Links map[string]Link

// Ingredient is a single line of a recipe's ingredient list
type Ingredient struct {
	IngredientID   int64  `json:"ingredient_id,omitempty" yaml:"ingredient_id,omitempty"`
	IngredientName string `json:"ingredient_name" yaml:"ingredient_name" binding:"required"`
	Quantity       string `json:"quantity" yaml:"quantity" binding:"required"`
}

// Recipe is the catalog entity. RecipeID is assigned by the store on insert
// and never changes afterwards. Links is computed per response and never
// persisted.
type Recipe struct {
	RecipeID    int64        `json:"recipe_id,omitempty" yaml:"recipe_id,omitempty"`
	Name        string       `json:"name" yaml:"name" binding:"required"`
	Ingredients []Ingredient `json:"ingredients" yaml:"ingredients" binding:"omitempty,dive"`
	Steps       *string      `json:"steps,omitempty" yaml:"steps,omitempty"`
	TimeToCook  *int         `json:"time_to_cook,omitempty" yaml:"time_to_cook,omitempty"`
	MealType    *string      `json:"meal_type,omitempty" yaml:"meal_type,omitempty"`
	Calories    *int         `json:"calories,omitempty" yaml:"calories,omitempty"`
	Rating      *float64     `json:"rating,omitempty" yaml:"rating,omitempty"`
	KidFriendly *bool        `json:"kid_friendly,omitempty" yaml:"kid_friendly,omitempty"`
	Links       Links        `json:"links,omitempty" yaml:"-"`
}

// PaginatedResponse is one page of the recipe listing
type PaginatedResponse struct {
	Items []Recipe `json:"items"`
	Links Links    `json:"links"`
}
