package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"recipe-planner/internal/cookbook"
	"recipe-planner/internal/planner"
	"recipe-planner/internal/recipeclient"
	"recipe-planner/internal/shopping"
)

type plannedDay struct {
	Date  string        `json:"date"`
	Day   string        `json:"day"`
	Meals []plannedMeal `json:"meals"`
}

type plannedMeal struct {
	RecipeID string `json:"recipe_id"`
	Name     string `json:"name"`
	Servings int    `json:"servings"`
}

type groupResult struct {
	Category string        `json:"category"`
	Label    string        `json:"label"`
	Recipes  []recipeBrief `json:"recipes"`
}

type recipeBrief struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type shoppingResult struct {
	Week  string          `json:"week"`
	Items []shopping.Item `json:"items"`
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func stringArg(request mcp.CallToolRequest, name string) (string, bool) {
	v, ok := request.Params.Arguments[name].(string)
	return v, ok && v != ""
}

// intArg reads an optional whole number. JSON numbers arrive as float64.
func intArg(request mcp.CallToolRequest, name string) (int, bool, error) {
	switch v := request.Params.Arguments[name].(type) {
	case nil:
		return 0, false, nil
	case float64:
		if v != float64(int(v)) {
			return 0, false, fmt.Errorf("'%s' must be a whole number", name)
		}
		return int(v), true, nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false, fmt.Errorf("'%s' must be a whole number", name)
		}
		return n, true, nil
	default:
		return 0, false, fmt.Errorf("'%s' must be a whole number", name)
	}
}

func (s *Server) listRecipes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recipes, err := s.client.ListRecipes(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list recipes: %s", recipeclient.UserMessage(err))), nil
	}

	groups := cookbook.GroupByCategory(recipes, 0)
	out := make([]groupResult, 0, len(groups))
	for _, g := range groups {
		gr := groupResult{Category: g.Category, Label: g.Label, Recipes: make([]recipeBrief, 0, len(g.Recipes))}
		for _, r := range g.Recipes {
			gr.Recipes = append(gr.Recipes, recipeBrief{ID: r.ID, Name: r.Name, Category: r.CategoryOrDefault()})
		}
		out = append(out, gr)
	}
	return jsonResult(out)
}

func (s *Server) searchRecipes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, ok := stringArg(request, "query")
	if !ok {
		return mcp.NewToolResultError("'query' parameter is required and must be a non-empty string."), nil
	}

	recipes, err := s.client.ListRecipes(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search recipes: %s", recipeclient.UserMessage(err))), nil
	}

	matches := cookbook.Search(recipes, query)
	out := make([]recipeBrief, 0, len(matches))
	for _, r := range matches {
		out = append(out, recipeBrief{ID: r.ID, Name: r.Name, Category: r.CategoryOrDefault()})
	}
	return jsonResult(out)
}

func (s *Server) getRecipe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, ok := stringArg(request, "id")
	if !ok {
		return mcp.NewToolResultError("'id' parameter is required and must be a non-empty string."), nil
	}

	rec, err := s.client.GetRecipe(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error retrieving recipe '%s': %s", id, recipeclient.UserMessage(err))), nil
	}
	return jsonResult(rec)
}

func (s *Server) planMeal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recipeID, ok := stringArg(request, "recipe_id")
	if !ok {
		return mcp.NewToolResultError("'recipe_id' parameter is required and must be a non-empty string."), nil
	}
	dayArg, _ := stringArg(request, "day")
	day, ok := planner.ResolveDay(s.planner.Week(), dayArg)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown day '%s'.", dayArg)), nil
	}

	servings, set, err := intArg(request, "servings")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !set {
		servings, _ = planner.ParseServings(cookbook.DefaultServings)
	}

	rec, err := s.client.GetRecipe(ctx, recipeID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error retrieving recipe '%s': %s", recipeID, recipeclient.UserMessage(err))), nil
	}

	entry, err := s.planner.Commit(planner.TargetFor(day.Date), *rec, servings)
	if err != nil {
		return mcp.NewToolResultError(planner.UserMessage(err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Planned '%s' for %s %s (%d servings).", entry.Name, day.Name, day.Label, entry.Servings)), nil
}

func (s *Server) removeMeal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recipeID, ok := stringArg(request, "recipe_id")
	if !ok {
		return mcp.NewToolResultError("'recipe_id' parameter is required and must be a non-empty string."), nil
	}
	dayArg, _ := stringArg(request, "day")
	day, ok := planner.ResolveDay(s.planner.Week(), dayArg)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown day '%s'.", dayArg)), nil
	}

	s.planner.RemoveMeal(day.Date, recipeID)
	return s.showWeek(ctx, request)
}

func (s *Server) showWeek(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	week := s.planner.Week()
	out := make([]plannedDay, 0, len(week))
	for _, d := range week {
		pd := plannedDay{Date: d.Key, Day: d.Name, Meals: make([]plannedMeal, 0, len(d.Meals))}
		for _, m := range d.Meals {
			pd.Meals = append(pd.Meals, plannedMeal{RecipeID: m.RecipeID, Name: m.Name, Servings: m.Servings})
		}
		out = append(out, pd)
	}
	return jsonResult(out)
}

func (s *Server) shoppingList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	persons, _, err := intArg(request, "persons")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if email, ok := stringArg(request, "email"); ok {
		confirmation, err := s.planner.EmailShoppingList(ctx, persons, email)
		if err != nil {
			return mcp.NewToolResultError(planner.UserMessage(err)), nil
		}
		return mcp.NewToolResultText(confirmation), nil
	}

	res, err := s.planner.GenerateShoppingList(ctx, persons)
	if err != nil {
		return mcp.NewToolResultError(planner.UserMessage(err)), nil
	}
	return jsonResult(shoppingResult{Week: res.WeekRange, Items: res.Items})
}
