package cookbook

import (
	"context"
	"fmt"
	"strconv"

	"recipe-planner/internal/recipe"
	"recipe-planner/internal/recipeclient"
)

const (
	MsgCreated = "Recipe saved!"
	MsgUpdated = "Recipe updated!"
)

// Form is the create/edit recipe form.
type Form struct {
	client recipeclient.Client
	id     string

	Recipe recipe.Recipe
}

// NewForm returns an empty create form with one blank ingredient row and
// one blank step.
func NewForm(client recipeclient.Client) *Form {
	return &Form{
		client: client,
		Recipe: recipe.Recipe{
			Ingredients:  []recipe.Ingredient{{Unit: recipe.DefaultUnit}},
			Instructions: []string{""},
		},
	}
}

// EditForm returns a form that updates rec when submitted.
func EditForm(client recipeclient.Client, rec recipe.Recipe) *Form {
	r := rec
	r.Ingredients = append([]recipe.Ingredient(nil), rec.Ingredients...)
	r.Instructions = append([]string(nil), rec.Instructions...)
	r.Tags = append([]string(nil), rec.Tags...)
	return &Form{client: client, id: rec.IDString(), Recipe: r}
}

// Editing reports whether the form updates an existing recipe.
func (f *Form) Editing() bool {
	return f.id != ""
}

func (f *Form) AddIngredient() {
	f.Recipe.Ingredients = append(f.Recipe.Ingredients, recipe.Ingredient{Unit: recipe.DefaultUnit})
}

// RemoveIngredient drops row i. The last remaining row is kept.
func (f *Form) RemoveIngredient(i int) {
	if len(f.Recipe.Ingredients) <= 1 || i < 0 || i >= len(f.Recipe.Ingredients) {
		return
	}
	f.Recipe.Ingredients = append(f.Recipe.Ingredients[:i:i], f.Recipe.Ingredients[i+1:]...)
}

func (f *Form) AddStep() {
	f.Recipe.Instructions = append(f.Recipe.Instructions, "")
}

// RemoveStep drops step i. The last remaining step is kept.
func (f *Form) RemoveStep(i int) {
	if len(f.Recipe.Instructions) <= 1 || i < 0 || i >= len(f.Recipe.Instructions) {
		return
	}
	f.Recipe.Instructions = append(f.Recipe.Instructions[:i:i], f.Recipe.Instructions[i+1:]...)
}

// Submit validates the form and creates or updates the recipe. Validation
// failures are returned as recipe.ValidationErrors without contacting the
// service. On success it returns the recipe id and a confirmation message.
func (f *Form) Submit(ctx context.Context) (string, string, error) {
	if err := recipe.Validate(f.Recipe); err != nil {
		return "", "", err
	}
	rec := recipe.Normalize(f.Recipe)

	if f.Editing() {
		if err := f.client.UpdateRecipe(ctx, f.id, rec); err != nil {
			return "", "", fmt.Errorf("failed to save recipe: %w", err)
		}
		return f.id, MsgUpdated, nil
	}

	id, err := f.client.CreateRecipe(ctx, rec)
	if err != nil {
		return "", "", fmt.Errorf("failed to save recipe: %w", err)
	}
	f.id = strconv.Itoa(id)
	return f.id, MsgCreated, nil
}
