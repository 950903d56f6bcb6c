// Package storage persists recipes for the recipe service. All backends
// share the same semantics: lookups of missing recipes return nil without
// an error, and ids are assigned by the backend.
package storage

import (
	"context"
	"errors"

	"recipe-planner/internal/recipe"
)

// ErrEmptyPatch is returned by Update when the patch changes nothing.
var ErrEmptyPatch = errors.New("no update data provided")

// Store is a recipe persistence backend.
type Store interface {
	List(ctx context.Context) ([]recipe.Recipe, error)
	Get(ctx context.Context, id int) (*recipe.Recipe, error)
	GetMany(ctx context.Context, ids []int) (map[int]recipe.Recipe, error)
	Create(ctx context.Context, r recipe.Recipe) (int, error)
	Update(ctx context.Context, id int, p Patch) (*recipe.Recipe, error)
	Delete(ctx context.Context, id int) (bool, error)
	MigrateLegacyIngredients(ctx context.Context) (int, error)
}

// Patch is a partial recipe update. Nil fields keep their stored value.
type Patch struct {
	Name            *string              `json:"name"`
	Category        *string              `json:"category"`
	Ingredients     *[]recipe.Ingredient `json:"ingredients"`
	Instructions    *[]string            `json:"instructions"`
	PreparationTime *int                 `json:"preparation_time"`
	CookingTime     *int                 `json:"cooking_time"`
	Servings        *int                 `json:"servings"`
	ImageURL        *string              `json:"image_url"`
	Tags            *[]string            `json:"tags"`
}

// Empty reports whether the patch sets no field.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Apply returns r with the patch's fields applied.
func (p Patch) Apply(r recipe.Recipe) recipe.Recipe {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.Ingredients != nil {
		r.Ingredients = *p.Ingredients
	}
	if p.Instructions != nil {
		r.Instructions = *p.Instructions
	}
	if p.PreparationTime != nil {
		r.PreparationTime = *p.PreparationTime
	}
	if p.CookingTime != nil {
		r.CookingTime = *p.CookingTime
	}
	if p.Servings != nil {
		r.Servings = *p.Servings
	}
	if p.ImageURL != nil {
		r.ImageURL = *p.ImageURL
	}
	if p.Tags != nil {
		r.Tags = *p.Tags
	}
	return r
}

// prepareNew fills the defaults a stored recipe must carry.
func prepareNew(r recipe.Recipe) recipe.Recipe {
	if r.Servings <= 0 {
		r.Servings = 1
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.Ingredients == nil {
		r.Ingredients = []recipe.Ingredient{}
	}
	if r.Instructions == nil {
		r.Instructions = []string{}
	}
	return r
}
