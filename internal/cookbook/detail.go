package cookbook

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"recipe-planner/internal/mealplan"
	"recipe-planner/internal/planner"
	"recipe-planner/internal/recipe"
	"recipe-planner/internal/recipeclient"
)

// DefaultServings prefills the servings field of the add-to-plan dialog.
const DefaultServings = "4"

// State is the load state of a detail view.
type State int

const (
	StateLoading State = iota
	StateLoaded
	StateNotFound
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateNotFound:
		return "not found"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// ErrNotLoaded is returned by actions that need a loaded recipe.
var ErrNotLoaded = errors.New("recipe not loaded")

// Detail is the view of a single recipe.
type Detail struct {
	client  recipeclient.Client
	planner *planner.Planner

	mu     sync.Mutex
	gen    uint64
	state  State
	recipe *recipe.Recipe
	err    error
}

// NewDetail creates a detail view. p may be nil when the view cannot plan
// meals.
func NewDetail(client recipeclient.Client, p *planner.Planner) *Detail {
	return &Detail{client: client, planner: p}
}

// Load fetches the recipe with the given id. A missing recipe leaves the
// view in StateNotFound and is not reported as an error.
func (d *Detail) Load(ctx context.Context, id string) error {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.state = StateLoading
	d.recipe = nil
	d.err = nil
	d.mu.Unlock()

	rec, err := d.client.GetRecipe(ctx, id)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return ErrStale
	}
	switch {
	case errors.Is(err, recipeclient.ErrNotFound):
		d.state = StateNotFound
		return nil
	case err != nil:
		log.Printf("Error loading recipe %s: %v", id, err)
		d.state = StateFailed
		d.err = err
		return fmt.Errorf("failed to load recipe %s: %w", id, err)
	case rec == nil:
		d.state = StateNotFound
		return nil
	}
	d.state = StateLoaded
	d.recipe = rec
	return nil
}

// Close drops any load still in flight.
func (d *Detail) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
}

func (d *Detail) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Detail) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Recipe returns a copy of the loaded recipe, or nil.
func (d *Detail) Recipe() *recipe.Recipe {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.recipe == nil {
		return nil
	}
	r := *d.recipe
	return &r
}

// Delete removes the loaded recipe from the service. Planned meals that
// reference it are left in the meal plan.
func (d *Detail) Delete(ctx context.Context) error {
	rec := d.Recipe()
	if rec == nil {
		return ErrNotLoaded
	}
	if err := d.client.DeleteRecipe(ctx, rec.IDString()); err != nil {
		return fmt.Errorf("failed to delete recipe %d: %w", rec.ID, err)
	}

	d.mu.Lock()
	d.recipe = nil
	d.state = StateNotFound
	d.mu.Unlock()
	return nil
}

// EditForm returns a form prefilled with the loaded recipe.
func (d *Detail) EditForm() (*Form, error) {
	rec := d.Recipe()
	if rec == nil {
		return nil, ErrNotLoaded
	}
	return EditForm(d.client, *rec), nil
}

// AddToPlan plans the loaded recipe on the target day. Without a planner
// day in target it fails with planner.ErrNoTargetDate and the caller should
// send the user to the planner.
func (d *Detail) AddToPlan(target planner.PlanTarget, servings string) (mealplan.Entry, error) {
	if d.planner == nil || !target.Valid() {
		return mealplan.Entry{}, planner.ErrNoTargetDate
	}
	n, err := planner.ParseServings(servings)
	if err != nil {
		return mealplan.Entry{}, err
	}
	rec := d.Recipe()
	if rec == nil {
		return mealplan.Entry{}, ErrNotLoaded
	}
	return d.planner.Commit(target, *rec, n)
}
