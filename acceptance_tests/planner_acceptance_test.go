package acceptance_tests

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"recipe-planner/internal/app"
	"recipe-planner/internal/config"
	"recipe-planner/internal/cookbook"
	"recipe-planner/internal/planner"
	"recipe-planner/internal/recipe"
	"recipe-planner/internal/recipeapi"
	"recipe-planner/internal/recipeclient"
	"recipe-planner/internal/shopping"
	"recipe-planner/internal/storage"
)

// --- Mock Mailer ---
type mockMailer struct {
	mu    sync.Mutex
	sent  map[string][]shopping.Item
	calls int
}

func (m *mockMailer) Send(ctx context.Context, to string, items []shopping.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.sent == nil {
		m.sent = make(map[string][]shopping.Item)
	}
	m.sent[to] = items
	return nil
}

func startService(t *testing.T, secret string, mailer shopping.Mailer) *config.Config {
	t.Helper()
	srv := recipeapi.NewServer(recipeapi.Config{Secret: secret}, storage.NewMemory(), recipeapi.WithMailer(mailer))
	ts := httptest.NewServer(adaptor.FiberApp(srv.App()))
	t.Cleanup(ts.Close)
	return &config.Config{APIURL: ts.URL, APISecret: secret}
}

func submit(t *testing.T, a *app.App, r recipe.Recipe) string {
	t.Helper()
	form := a.NewForm()
	form.Recipe = r
	id, msg, err := form.Submit(context.Background())
	if err != nil {
		t.Fatalf("Failed to save %s: %v", r.Name, err)
	}
	if msg != cookbook.MsgCreated {
		t.Errorf("Expected %q, got %q", cookbook.MsgCreated, msg)
	}
	return id
}

func TestPlanningFlowEndToEnd(t *testing.T) {
	ctx := context.Background()
	mailer := &mockMailer{}
	cfg := startService(t, "acceptance-secret", mailer)
	a := app.NewApp(cfg, recipeclient.NewClient(cfg), nil)

	spaghettiID := submit(t, a, recipe.Recipe{
		Name:     "Spaghetti Bolognese",
		Category: "Main Course",
		Servings: 4,
		Ingredients: []recipe.Ingredient{
			{Name: "Spaghetti", Amount: 500, Unit: "g"},
			{Name: "Hackfleisch", Amount: 400, Unit: "g"},
			{Name: "Zwiebel", Amount: 1, Unit: "Stueck"},
			{Name: "Salz", Amount: 1, Unit: "Prise"},
		},
		Instructions: []string{"Sauce kochen.", "Nudeln kochen."},
	})
	saladID := submit(t, a, recipe.Recipe{
		Name:     "Tomatensalat",
		Category: "Salads",
		Servings: 2,
		Ingredients: []recipe.Ingredient{
			{Name: "Tomaten", Amount: 4, Unit: "Stueck"},
			{Name: "zwiebel", Amount: 1, Unit: "Stueck"},
		},
		Instructions: []string{"Schneiden."},
	})

	// Browse
	if err := a.Browser().Activate(ctx); err != nil {
		t.Fatalf("Failed to load cookbook: %v", err)
	}
	groups := a.Browser().Groups()
	if len(groups) != 2 || groups[0].Label != "Salad" || groups[1].Label != "Dinner" {
		t.Fatalf("Expected Salad then Dinner groups, got %+v", groups)
	}
	if got := a.Browser().Search("bolo"); len(got) != 1 || got[0].IDString() != spaghettiID {
		t.Errorf("Expected search to find Spaghetti Bolognese, got %+v", got)
	}

	// Plan from planner days through the detail view
	week := a.Planner().Week()
	for _, step := range []struct {
		id       string
		day      planner.DayView
		servings string
	}{
		{spaghettiID, week[0], "2"},
		{saladID, week[1], "4"},
	} {
		detail := a.NewDetail()
		if err := detail.Load(ctx, step.id); err != nil {
			t.Fatalf("Failed to load recipe %s: %v", step.id, err)
		}
		if _, err := detail.AddToPlan(planner.TargetFor(step.day.Date), step.servings); err != nil {
			t.Fatalf("Failed to plan recipe %s: %v", step.id, err)
		}
	}

	// Shopping list
	res, err := a.Planner().GenerateShoppingList(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to generate shopping list: %v", err)
	}
	want := []shopping.Item{
		{Name: "Hackfleisch", Amount: 200, Unit: "g"},
		{Name: "Spaghetti", Amount: 250, Unit: "g"},
		{Name: "Tomaten", Amount: 8, Unit: "Stueck"},
		{Name: "Zwiebel", Amount: 2, Unit: "Stueck"},
	}
	if len(res.Items) != len(want) {
		t.Fatalf("Expected %d items, got %+v", len(want), res.Items)
	}
	for i := range want {
		if res.Items[i] != want[i] {
			t.Errorf("Item %d: expected %+v, got %+v", i, want[i], res.Items[i])
		}
	}
	if res.WeekRange != a.Planner().WeekRange() {
		t.Errorf("Expected week range %s, got %s", a.Planner().WeekRange(), res.WeekRange)
	}

	// Email
	msg, err := a.Planner().EmailShoppingList(ctx, 0, "cook@example.com")
	if err != nil || msg != planner.EmailSentMessage {
		t.Fatalf("Expected email confirmation, got %q, %v", msg, err)
	}
	if len(mailer.sent["cook@example.com"]) != len(want) {
		t.Errorf("Expected the mailed list to have %d items, got %d", len(want), len(mailer.sent["cook@example.com"]))
	}

	// Deleting a recipe leaves the plan alone; the service skips it.
	detail := a.NewDetail()
	if err := detail.Load(ctx, saladID); err != nil {
		t.Fatalf("Failed to load recipe: %v", err)
	}
	if err := detail.Delete(ctx); err != nil {
		t.Fatalf("Failed to delete recipe: %v", err)
	}
	if a.MealPlan().Len() != 2 {
		t.Errorf("Expected both meals to stay planned, got %d", a.MealPlan().Len())
	}
	res, err = a.Planner().GenerateShoppingList(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to generate shopping list: %v", err)
	}
	if len(res.Items) != 3 {
		t.Errorf("Expected the deleted recipe's items to drop out, got %+v", res.Items)
	}

	if err := detail.Load(ctx, saladID); err != nil {
		t.Fatalf("Expected not found to be a state, got %v", err)
	}
	if detail.State() != cookbook.StateNotFound {
		t.Errorf("Expected NotFound, got %s", detail.State())
	}
}

func TestUnauthorizedClient(t *testing.T) {
	cfg := startService(t, "server-secret", &mockMailer{})
	cfg.APISecret = "wrong-secret"

	_, err := recipeclient.NewClient(cfg).ListRecipes(context.Background())
	var apiErr *recipeclient.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 401 {
		t.Fatalf("Expected 401, got %v", err)
	}
	if apiErr.Message != "Unauthorized" {
		t.Errorf("Expected Unauthorized, got %q", apiErr.Message)
	}
}

func TestEmptyPlanNeverCallsService(t *testing.T) {
	mailer := &mockMailer{}
	cfg := startService(t, "", mailer)
	a := app.NewApp(cfg, recipeclient.NewClient(cfg), nil)

	if _, err := a.Planner().EmailShoppingList(context.Background(), 4, "cook@example.com"); !errors.Is(err, planner.ErrEmptyPlan) {
		t.Errorf("Expected ErrEmptyPlan, got %v", err)
	}
	if mailer.calls != 0 {
		t.Errorf("Expected no mail, got %d", mailer.calls)
	}
}
