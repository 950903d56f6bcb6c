package tui

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"recipe-planner/internal/cookbook"
	"recipe-planner/internal/mealplan"
	"recipe-planner/internal/planner"
	"recipe-planner/internal/recipe"
	"recipe-planner/internal/recipeclient"
	"recipe-planner/internal/shopping"
)

type mockClient struct {
	recipes     []recipe.Recipe
	listErr     error
	shoppingErr error
	deleted     []string
}

func (m *mockClient) ListRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	return m.recipes, m.listErr
}

func (m *mockClient) GetRecipe(ctx context.Context, id string) (*recipe.Recipe, error) {
	for _, r := range m.recipes {
		if r.IDString() == id {
			return &r, nil
		}
	}
	return nil, &recipeclient.APIError{StatusCode: http.StatusNotFound, Message: "Recipe not found"}
}

func (m *mockClient) CreateRecipe(ctx context.Context, r recipe.Recipe) (int, error) {
	return 0, errors.New("not implemented")
}

func (m *mockClient) UpdateRecipe(ctx context.Context, id string, r recipe.Recipe) error {
	return nil
}

func (m *mockClient) DeleteRecipe(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockClient) ShoppingList(ctx context.Context, req shopping.Request) ([]shopping.Item, error) {
	if m.shoppingErr != nil {
		return nil, m.shoppingErr
	}
	return []shopping.Item{{Name: "Linsen", Amount: 250, Unit: "g"}}, nil
}

func newTestModel(t *testing.T) (model, *mockClient) {
	client := &mockClient{recipes: []recipe.Recipe{
		{ID: 1, Name: "Linsensuppe", Category: "Soups", Ingredients: []recipe.Ingredient{{Name: "Linsen", Amount: 250, Unit: "g"}}},
		{ID: 2, Name: "Apfelkuchen", Category: "Baking"},
	}}
	p := planner.NewPlanner(client, mealplan.NewStore())
	feed, unsubscribe := watchPlan(p.Store())
	t.Cleanup(unsubscribe)

	m := initModel(p, cookbook.NewBrowser(client), cookbook.NewDetail(client, p))
	m.feed = feed
	return m, client
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m model, msg tea.Msg) (model, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

// press sends a key and, if it started a load, delivers the response.
// Other commands, such as cursor blinking, are not run.
func press(m model, s string) model {
	m, cmd := update(m, key(s))
	if cmd == nil || !m.loading {
		return m
	}
	switch msg := cmd().(type) {
	case recipesLoadedMsg, detailLoadedMsg, recipeDeletedMsg, shoppingMsg, emailSentMsg:
		m, cmd = update(m, msg)
		if cmd != nil {
			if follow, ok := cmd().(recipesLoadedMsg); ok {
				m, _ = update(m, follow)
			}
		}
	}
	return m
}

func TestAddToPlanFromPlannerDay(t *testing.T) {
	m, _ := newTestModel(t)

	m = press(m, "l")
	m = press(m, "a")
	if m.screen != screenCookbook {
		t.Fatalf("Expected cookbook, got screen %d", m.screen)
	}
	if !m.target().Valid() {
		t.Fatal("Expected the planner day to travel with navigation")
	}

	// Soups sort before Baking in picker order.
	m = press(m, "enter")
	if m.screen != screenDetail || m.detail.State() != cookbook.StateLoaded {
		t.Fatalf("Expected loaded detail, got screen %d state %s", m.screen, m.detail.State())
	}
	if !strings.Contains(m.View(), "Linsensuppe") {
		t.Error("Expected the recipe name in the detail view")
	}

	m = press(m, "p")
	if m.mode != modeServings || m.servingsInput.Value() != cookbook.DefaultServings {
		t.Fatalf("Expected servings prompt prefilled with %s", cookbook.DefaultServings)
	}

	m.servingsInput.SetValue("0")
	m = press(m, "enter")
	if m.formErr != "Please enter a valid number of servings." {
		t.Errorf("Expected invalid servings error, got %q", m.formErr)
	}

	m.servingsInput.SetValue("3")
	m = press(m, "enter")
	if m.screen != screenPlanner {
		t.Fatalf("Expected to return to the planner, got screen %d", m.screen)
	}

	m, _ = update(m, waitForPlan(m.feed)())
	tuesday := m.week[1]
	if len(tuesday.Meals) != 1 || tuesday.Meals[0].Servings != 3 || tuesday.Meals[0].RecipeID != "1" {
		t.Errorf("Expected Linsensuppe on Tuesday for 3, got %+v", tuesday.Meals)
	}
	if !strings.Contains(m.status, "Tuesday") {
		t.Errorf("Expected confirmation for Tuesday, got %q", m.status)
	}

	t.Run("Remove", func(t *testing.T) {
		m := press(m, "x")
		if m.planner.Store().Len() != 0 {
			t.Errorf("Expected the meal to be removed, got %d", m.planner.Store().Len())
		}
	})
}

func TestPlanWithoutDay(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, "c")
	m = press(m, "enter")
	m = press(m, "p")
	if m.mode != modeView {
		t.Error("Expected the servings prompt to stay closed without a planner day")
	}
	if m.status == "" {
		t.Error("Expected a hint to pick a day")
	}
}

func TestStaleResponseIgnored(t *testing.T) {
	m, client := newTestModel(t)
	client.listErr = errors.New("slow failure")

	m, cmd := update(m, key("c"))
	pending := cmd()
	m = press(m, "esc")

	m, _ = update(m, pending)
	if m.err != nil {
		t.Errorf("Expected the late response to be dropped, got %v", m.err)
	}
	if m.screen != screenPlanner {
		t.Errorf("Expected to stay on the planner, got %d", m.screen)
	}
}

func TestSearch(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, "c")
	m = press(m, "/")
	if m.screen != screenSearch {
		t.Fatalf("Expected search screen, got %d", m.screen)
	}
	m = press(m, "kuchen")
	if len(m.results) != 1 || m.results[0].Name != "Apfelkuchen" {
		t.Errorf("Expected Apfelkuchen, got %+v", m.results)
	}
	m = press(m, "enter")
	if m.screen != screenDetail || m.detail.Recipe().ID != 2 {
		t.Errorf("Expected detail of recipe 2")
	}
	m = press(m, "esc")
	if m.screen != screenSearch {
		t.Errorf("Expected to return to search, got %d", m.screen)
	}
}

func TestDeleteRecipe(t *testing.T) {
	m, client := newTestModel(t)
	m = press(m, "c")
	m = press(m, "enter")
	m = press(m, "D")
	if m.mode != modeConfirmDelete {
		t.Fatal("Expected delete confirmation")
	}
	m = press(m, "y")
	if len(client.deleted) != 1 || client.deleted[0] != "1" {
		t.Errorf("Expected recipe 1 to be deleted, got %v", client.deleted)
	}
	if m.screen != screenCookbook || m.status != "Recipe deleted." {
		t.Errorf("Expected cookbook with confirmation, got screen %d status %q", m.screen, m.status)
	}
}

func TestShoppingList(t *testing.T) {
	m, client := newTestModel(t)

	t.Run("EmptyPlanStaysOnPlanner", func(t *testing.T) {
		m := press(m, "s")
		if m.screen != screenPlanner {
			t.Errorf("Expected to stay on the planner, got screen %d", m.screen)
		}
		if m.err == nil || planner.UserMessage(m.err) != "No meals found in the meal plan." {
			t.Errorf("Expected empty plan error, got %v", m.err)
		}
		if !strings.Contains(m.View(), "No meals found in the meal plan.") {
			t.Error("Expected the error on the planner view")
		}
	})

	m.planner.Store().AddPlannedMeal(mealplan.Entry{RecipeID: "1", Servings: 2, Date: m.planner.Week()[0].Date, Name: "Linsensuppe"})

	t.Run("ServiceErrorStaysOnPlanner", func(t *testing.T) {
		client.shoppingErr = &recipeclient.APIError{StatusCode: http.StatusInternalServerError, Message: "Failed to generate shopping list"}
		defer func() { client.shoppingErr = nil }()

		m := press(m, "s")
		if m.screen != screenPlanner || m.shopping != nil {
			t.Errorf("Expected to stay on the planner without a list, got screen %d", m.screen)
		}
		if m.err == nil || m.loading {
			t.Errorf("Expected the service error, got %v (loading %v)", m.err, m.loading)
		}
	})

	m, cmd := update(m, key("s"))
	if m.screen != screenPlanner || !m.loading {
		t.Fatalf("Expected to wait on the planner, got screen %d loading %v", m.screen, m.loading)
	}
	m, _ = update(m, cmd())
	if m.screen != screenShopping {
		t.Fatalf("Expected the shopping screen once the list arrived, got %d", m.screen)
	}
	if m.shopping == nil || len(m.shopping.Items) != 1 {
		t.Fatalf("Expected one shopping item, got %+v", m.shopping)
	}
	if !strings.Contains(m.View(), "250 g Linsen") {
		t.Error("Expected the item in the shopping view")
	}

	m = press(m, "+")
	if m.persons != 5 || m.shopping.Persons != 5 {
		t.Errorf("Expected a list for 5 persons, got %d/%d", m.persons, m.shopping.Persons)
	}

	m = press(m, "e")
	m.emailInput.SetValue("cook@example.com")
	m = press(m, "enter")
	if m.status != planner.EmailSentMessage || m.emailing {
		t.Errorf("Expected email confirmation, got %q", m.status)
	}
}

func TestPlannerFollowsStore(t *testing.T) {
	m, _ := newTestModel(t)
	if m.Init() == nil {
		t.Fatal("Expected Init to start listening for plan changes")
	}

	// another frontend sharing the store plans a meal
	monday := m.planner.Week()[0].Date
	m.planner.Store().AddPlannedMeal(mealplan.Entry{RecipeID: "2", Servings: 6, Date: monday, Name: "Apfelkuchen"})
	if strings.Contains(m.View(), "Apfelkuchen") {
		t.Fatal("Expected the grid to change only through the plan message")
	}

	m, cmd := update(m, waitForPlan(m.feed)())
	if len(m.week[0].Meals) != 1 || m.week[0].Meals[0].Name != "Apfelkuchen" {
		t.Errorf("Expected Apfelkuchen on Monday, got %+v", m.week[0].Meals)
	}
	if !strings.Contains(m.View(), "Apfelkuchen") {
		t.Error("Expected the refreshed grid to show Apfelkuchen")
	}
	if cmd == nil {
		t.Error("Expected to keep listening after a change")
	}

	t.Run("RemoveFromGrid", func(t *testing.T) {
		m := press(m, "x")
		if m.planner.Store().Len() != 0 {
			t.Fatalf("Expected Apfelkuchen removed, got %d meals", m.planner.Store().Len())
		}
		m, _ = update(m, waitForPlan(m.feed)())
		if len(m.week[0].Meals) != 0 {
			t.Errorf("Expected an empty Monday, got %+v", m.week[0].Meals)
		}
	})

	t.Run("NewestSnapshotWins", func(t *testing.T) {
		m.planner.Store().AddPlannedMeal(mealplan.Entry{RecipeID: "1", Servings: 2, Date: monday, Name: "Linsensuppe"})
		m.planner.Store().Clear()

		m, _ := update(m, waitForPlan(m.feed)())
		if len(m.week[0].Meals) != 0 {
			t.Errorf("Expected the cleared plan, got %+v", m.week[0].Meals)
		}
	})
}
