// Package app wires the recipe planner's dependencies together for the
// command line, terminal UI, chat and tool frontends.
package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"recipe-planner/internal/clipper"
	"recipe-planner/internal/config"
	"recipe-planner/internal/cookbook"
	"recipe-planner/internal/mealplan"
	"recipe-planner/internal/planner"
	"recipe-planner/internal/recipe"
	"recipe-planner/internal/recipeclient"
)

// App holds the application's dependencies.
type App struct {
	cfg     *config.Config
	client  recipeclient.Client
	store   *mealplan.Store
	planner *planner.Planner
	browser *cookbook.Browser
	clipper *clipper.Clipper
}

// NewApp creates and initializes a new App instance. recipeClipper may be
// nil when importing is not configured.
func NewApp(cfg *config.Config, client recipeclient.Client, recipeClipper *clipper.Clipper) *App {
	store := mealplan.NewStore()
	return &App{
		cfg:     cfg,
		client:  client,
		store:   store,
		planner: planner.NewPlanner(client, store),
		browser: cookbook.NewBrowser(client),
		clipper: recipeClipper,
	}
}

func (a *App) Config() *config.Config { return a.cfg }
func (a *App) Client() recipeclient.Client { return a.client }
func (a *App) MealPlan() *mealplan.Store { return a.store }
func (a *App) Planner() *planner.Planner { return a.planner }
func (a *App) Browser() *cookbook.Browser { return a.browser }
func (a *App) CanImport() bool { return a.clipper != nil }

// NewDetail returns a recipe detail view that plans into the app's meal plan.
func (a *App) NewDetail() *cookbook.Detail {
	return cookbook.NewDetail(a.client, a.planner)
}

// NewForm returns an empty recipe form.
func (a *App) NewForm() *cookbook.Form {
	return cookbook.NewForm(a.client)
}

// Import clips the recipe at url and saves it through the recipe service.
func (a *App) Import(ctx context.Context, url string) (*recipe.Recipe, error) {
	if a.clipper == nil {
		return nil, fmt.Errorf("recipe import is not configured")
	}

	rec, err := a.clipper.ClipURL(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", url, err)
	}

	id, err := a.client.CreateRecipe(ctx, *rec)
	if err != nil {
		return nil, fmt.Errorf("failed to save imported recipe: %w", err)
	}
	rec.ID = id
	log.Printf("Imported '%s' as recipe %d", rec.Name, id)
	return rec, nil
}
