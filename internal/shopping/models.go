package shopping

// DefaultPersons is the head count used when a meal carries no target.
const DefaultPersons = 4

// MealRequest asks for one planned recipe scaled to a number of persons.
type MealRequest struct {
	RecipeID      int `json:"recipe_id"`
	TargetPersons int `json:"target_persons"`
}

// Request is the body of a shopping list computation.
type Request struct {
	Recipes []MealRequest `json:"recipes"`
	Persons int           `json:"persons"`
	Email   string        `json:"email,omitempty"`
}

// Item is one consolidated line of a shopping list.
type Item struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Response is the body returned by the shopping endpoint.
type Response struct {
	ShoppingList []Item `json:"shopping_list"`
}
