package recipe

import (
	"strconv"
	"strings"
	"time"
)

// Ingredient is a single line of a recipe's ingredient list.
type Ingredient struct {
	Name   string  `json:"name" validate:"notblank"`
	Amount float64 `json:"amount" validate:"gte=0"`
	Unit   string  `json:"unit" validate:"omitempty,unit"`
}

// Recipe is the recipe entity as served by the recipe service.
type Recipe struct {
	ID              int          `json:"id"`
	Name            string       `json:"name" validate:"notblank"`
	Category        string       `json:"category"`
	Ingredients     []Ingredient `json:"ingredients" validate:"dive"`
	Instructions    []string     `json:"instructions" validate:"dive,notblank"`
	PreparationTime int          `json:"preparation_time" validate:"gte=0"`
	CookingTime     int          `json:"cooking_time" validate:"gte=0"`
	Servings        int          `json:"servings" validate:"gte=0"`
	ImageURL        string       `json:"image_url"`
	Tags            []string     `json:"tags"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// IDString returns the identifier in the opaque string form used by the meal plan.
func (r Recipe) IDString() string {
	return strconv.Itoa(r.ID)
}

// CategoryOrDefault returns the recipe's category, or DefaultCategory when unset.
func (r Recipe) CategoryOrDefault() string {
	if c := strings.TrimSpace(r.Category); c != "" {
		return c
	}
	return DefaultCategory
}

// Normalize trims the form fields and drops blank ingredient and instruction
// rows, the way the edit form does before it submits.
func Normalize(r Recipe) Recipe {
	out := r
	out.Name = strings.TrimSpace(r.Name)
	out.Category = strings.TrimSpace(r.Category)
	out.ImageURL = strings.TrimSpace(r.ImageURL)

	out.Ingredients = make([]Ingredient, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		ing.Name = strings.TrimSpace(ing.Name)
		if ing.Name == "" {
			continue
		}
		out.Ingredients = append(out.Ingredients, ing)
	}

	out.Instructions = make([]string, 0, len(r.Instructions))
	for _, step := range r.Instructions {
		if s := strings.TrimSpace(step); s != "" {
			out.Instructions = append(out.Instructions, s)
		}
	}

	out.Tags = make([]string, 0, len(r.Tags))
	seen := make(map[string]bool, len(r.Tags))
	for _, tag := range r.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out.Tags = append(out.Tags, tag)
	}

	if out.Servings <= 0 {
		out.Servings = 1
	}
	return out
}
