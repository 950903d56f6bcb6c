package recipeapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"recipe-planner/internal/metrics"
	"recipe-planner/internal/recipe"
	"recipe-planner/internal/shopping"
	"recipe-planner/internal/storage"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(metrics.CollectHealth(s.cfg.DataPath))
}

func (s *Server) handleListRecipes(c *fiber.Ctx) error {
	recipes, err := s.store.List(c.UserContext())
	if err != nil {
		requestLogger(c).WithError(err).Error("Error fetching recipes")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch recipes")
	}
	return c.JSON(recipes)
}

func (s *Server) handleGetRecipe(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Recipe not found")
	}
	rec, err := s.store.Get(c.UserContext(), id)
	if err != nil {
		requestLogger(c).WithError(err).Error("Error fetching recipe")
		return fiber.NewError(fiber.StatusInternalServerError, "Internal server error")
	}
	if rec == nil {
		return fiber.NewError(fiber.StatusNotFound, "Recipe not found")
	}
	return c.JSON(rec)
}

func (s *Server) handleCreateRecipe(c *fiber.Ctx) error {
	var body storage.Patch
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Recipe incomplete")
	}
	if body.Name == nil || strings.TrimSpace(*body.Name) == "" || body.Ingredients == nil || body.Instructions == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Recipe incomplete")
	}

	id, err := s.store.Create(c.UserContext(), body.Apply(recipe.Recipe{}))
	if err != nil {
		requestLogger(c).WithError(err).Error("Error creating recipe")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to create recipe")
	}
	requestLogger(c).WithField("recipe_id", id).Info("Recipe created")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Recipe was created!", "recipe_id": id})
}

func (s *Server) handleUpdateRecipe(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Recipe not found")
	}
	if len(c.Body()) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No update data provided")
	}
	var patch storage.Patch
	if err := c.BodyParser(&patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No update data provided")
	}

	updated, err := s.store.Update(c.UserContext(), id, patch)
	switch {
	case errors.Is(err, storage.ErrEmptyPatch):
		return fiber.NewError(fiber.StatusBadRequest, "No update data provided")
	case err != nil:
		requestLogger(c).WithError(err).Error("Error updating recipe")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update recipe")
	case updated == nil:
		return fiber.NewError(fiber.StatusNotFound, "Recipe not found")
	}
	return c.JSON(fiber.Map{"message": "Recipe updated successfully."})
}

func (s *Server) handleDeleteRecipe(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Recipe not found")
	}
	ok, err := s.store.Delete(c.UserContext(), id)
	if err != nil {
		requestLogger(c).WithError(err).Error("Error deleting recipe")
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to delete recipe")
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Recipe not found")
	}
	requestLogger(c).WithField("recipe_id", id).Info("Recipe deleted")
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Recipe %d deleted", id)})
}

func (s *Server) handleShopping(c *fiber.Ctx) error {
	var req shopping.Request
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No recipes provided")
	}
	if len(req.Recipes) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No recipes provided")
	}

	meals := make([]shopping.MealRequest, len(req.Recipes))
	ids := make([]int, 0, len(req.Recipes))
	for i, m := range req.Recipes {
		if m.TargetPersons <= 0 && req.Persons > 0 {
			m.TargetPersons = req.Persons
		}
		meals[i] = m
		ids = append(ids, m.RecipeID)
	}

	ctx := c.UserContext()
	recipes, err := s.store.GetMany(ctx, ids)
	if err != nil {
		requestLogger(c).WithError(err).Error("Error generating shopping list")
		return fiber.NewError(fiber.StatusInternalServerError, "Server error")
	}
	items := shopping.Aggregate(meals, recipes)
	requestLogger(c).Infof("Generated shopping list with %d items", len(items))

	if email := strings.TrimSpace(req.Email); email != "" {
		if s.mailer == nil {
			requestLogger(c).Error("Shopping list email requested but mail is not configured")
			return fiber.NewError(fiber.StatusInternalServerError, "Server error")
		}
		if err := s.mailer.Send(ctx, email, items); err != nil {
			requestLogger(c).WithError(err).Error("Failed to send email")
			return fiber.NewError(fiber.StatusInternalServerError, "Server error")
		}
		requestLogger(c).Infof("Email sent to %s", email)
	}

	return c.JSON(shopping.Response{ShoppingList: items})
}
