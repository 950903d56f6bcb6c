package recipe

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Messages shown to the user when the edit form is rejected.
const (
	MsgNameRequired        = "Recipe name is required"
	MsgIngredientNames     = "Please fill in all ingredient names"
	MsgInstructionSteps    = "Please fill in all instruction steps"
	MsgNegativeNumber      = "Times, amounts and servings cannot be negative"
	MsgUnknownUnit         = "Please choose a unit from the list"
	msgInvalidRecipeFields = "Recipe has invalid fields"
)

// ValidationErrors collects the user-facing messages for a rejected recipe.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recipeValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = validate.RegisterValidation("unit", func(fl validator.FieldLevel) bool {
			return IsKnownUnit(fl.Field().String())
		})
	})
	return validate
}

// Validate checks a recipe the way the edit form does before submitting.
// The returned error is a ValidationErrors value, with at most one message
// per rule, in form order.
func Validate(r Recipe) error {
	err := recipeValidator().Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate recipe: %w", err)
	}

	seen := make(map[string]bool)
	var msgs ValidationErrors
	for _, fe := range fieldErrs {
		msg := messageFor(fe)
		if seen[msg] {
			continue
		}
		seen[msg] = true
		msgs = append(msgs, msg)
	}
	return msgs
}

func messageFor(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	switch {
	case ns == "Recipe.Name":
		return MsgNameRequired
	case strings.HasPrefix(ns, "Recipe.Ingredients[") && strings.HasSuffix(ns, ".Name"):
		return MsgIngredientNames
	case strings.HasPrefix(ns, "Recipe.Ingredients[") && fe.Tag() == "unit":
		return MsgUnknownUnit
	case strings.HasPrefix(ns, "Recipe.Instructions["):
		return MsgInstructionSteps
	case fe.Tag() == "gte":
		return MsgNegativeNumber
	}
	return msgInvalidRecipeFields
}
