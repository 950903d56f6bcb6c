package planner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"recipe-planner/internal/mealplan"
	"recipe-planner/internal/recipe"
	"recipe-planner/internal/recipeclient"
	"recipe-planner/internal/shopping"
)

// EmailSentMessage confirms a mailed shopping list.
const EmailSentMessage = "Shopping list was sent by email!"

var (
	ErrEmptyPlan       = errors.New("meal plan is empty")
	ErrEmailRequired   = errors.New("email address is required")
	ErrNoTargetDate    = errors.New("no planner day selected")
	ErrInvalidServings = errors.New("servings must be a positive whole number")
	ErrInvalidRecipeID = errors.New("invalid recipe id")
)

var userMessages = []struct {
	err  error
	text string
}{
	{ErrEmptyPlan, "No meals found in the meal plan."},
	{ErrEmailRequired, "Email address is required."},
	{ErrInvalidServings, "Please enter a valid number of servings."},
	{ErrNoTargetDate, "Pick a day in the planner first."},
}

// Planner drives the weekly planner: it reads and writes the meal plan
// store and asks the recipe service for shopping lists.
type Planner struct {
	client recipeclient.Client
	store  *mealplan.Store
	now    func() time.Time
}

// NewPlanner creates a new Planner.
func NewPlanner(client recipeclient.Client, store *mealplan.Store) *Planner {
	return &Planner{client: client, store: store, now: time.Now}
}

// Store exposes the meal plan the planner works on.
func (p *Planner) Store() *mealplan.Store {
	return p.store
}

// DayView is one column of the planner grid.
type DayView struct {
	Date  time.Time
	Key   string
	Name  string
	Label string
	Meals []mealplan.Entry
}

// Week returns the planner grid for the current work week.
func (p *Planner) Week() []DayView {
	return p.WeekOf(p.now())
}

// WeekOf returns the planner grid for the work week containing t.
func (p *Planner) WeekOf(t time.Time) []DayView {
	return weekGrid(t, p.store.MealsForKey)
}

// WeekFrom lays out the current work week from a plan snapshot, such as
// the one handed to store observers.
func (p *Planner) WeekFrom(plan mealplan.Plan) []DayView {
	return weekGrid(p.now(), plan.Meals)
}

func weekGrid(t time.Time, meals func(dateKey string) []mealplan.Entry) []DayView {
	days := CurrentWeek(t)
	views := make([]DayView, 0, len(days))
	for _, d := range days {
		key := mealplan.DateKey(d)
		views = append(views, DayView{
			Date:  d,
			Key:   key,
			Name:  DayName(d),
			Label: FormatDate(d),
			Meals: meals(key),
		})
	}
	return views
}

// ResolveDay finds a day of week by weekday name or a prefix of at least
// two letters, "DD.MM" label, "YYYY-MM-DD" key or position 1-5.
func ResolveDay(week []DayView, s string) (DayView, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DayView{}, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= len(week) {
			return week[n-1], true
		}
		return DayView{}, false
	}
	for _, d := range week {
		if s == d.Key || s == d.Label || (len(s) >= 2 && strings.HasPrefix(strings.ToLower(d.Name), s)) {
			return d, true
		}
	}
	return DayView{}, false
}

// WeekRange renders the current work week as "DD.MM - DD.MM".
func (p *Planner) WeekRange() string {
	return WeekRange(CurrentWeek(p.now()))
}

// Commit plans rec on the target's day. It is called at the moment the user
// confirms, so the store reflects the decision before navigation continues.
func (p *Planner) Commit(target PlanTarget, rec recipe.Recipe, servings int) (mealplan.Entry, error) {
	if !target.Valid() {
		return mealplan.Entry{}, ErrNoTargetDate
	}
	if servings <= 0 {
		return mealplan.Entry{}, ErrInvalidServings
	}
	entry := mealplan.Entry{
		RecipeID: rec.IDString(),
		Servings: servings,
		Date:     target.Date,
		Name:     rec.Name,
	}
	p.store.AddPlannedMeal(entry)
	return entry, nil
}

// RemoveMeal removes a recipe from the given day.
func (p *Planner) RemoveMeal(date time.Time, recipeID string) {
	p.store.RemovePlannedMeal(mealplan.DateKey(date), recipeID)
}

// ParseServings reads a servings field as a positive whole number.
func ParseServings(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, ErrInvalidServings
	}
	return n, nil
}

// Flatten turns the plan into one shopping request per planned entry, days
// in date order and entries in plan order. A recipe planned on two days is
// requested twice with each day's own servings.
func Flatten(plan mealplan.Plan) ([]shopping.MealRequest, error) {
	var meals []shopping.MealRequest
	for _, key := range plan.Keys() {
		for _, e := range plan[key] {
			id, err := strconv.Atoi(e.RecipeID)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidRecipeID, e.RecipeID)
			}
			meals = append(meals, shopping.MealRequest{RecipeID: id, TargetPersons: e.Servings})
		}
	}
	return meals, nil
}

// ShoppingResult is what the shopping list view displays.
type ShoppingResult struct {
	Items     []shopping.Item
	WeekRange string
	Persons   int
}

// GenerateShoppingList asks the recipe service for the consolidated list of
// everything planned. An empty plan fails without contacting the service.
// The plan is never modified.
func (p *Planner) GenerateShoppingList(ctx context.Context, persons int) (*ShoppingResult, error) {
	req, err := p.shoppingRequest(persons)
	if err != nil {
		return nil, err
	}

	items, err := p.client.ShoppingList(ctx, req)
	if err != nil {
		log.Printf("Error generating shopping list: %v", err)
		return nil, fmt.Errorf("failed to generate shopping list: %w", err)
	}

	return &ShoppingResult{
		Items:     shopping.SortByName(items),
		WeekRange: p.WeekRange(),
		Persons:   req.Persons,
	}, nil
}

// EmailShoppingList asks the recipe service to mail the consolidated list to
// email and returns the confirmation to show the user.
func (p *Planner) EmailShoppingList(ctx context.Context, persons int, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrEmailRequired
	}
	req, err := p.shoppingRequest(persons)
	if err != nil {
		return "", err
	}
	req.Email = email

	if _, err := p.client.ShoppingList(ctx, req); err != nil {
		log.Printf("Error sending shopping list to %s: %v", email, err)
		return "", fmt.Errorf("failed to send shopping list: %w", err)
	}
	return EmailSentMessage, nil
}

func (p *Planner) shoppingRequest(persons int) (shopping.Request, error) {
	meals, err := Flatten(p.store.Snapshot())
	if err != nil {
		return shopping.Request{}, err
	}
	if len(meals) == 0 {
		return shopping.Request{}, ErrEmptyPlan
	}
	if persons <= 0 {
		persons = shopping.DefaultPersons
	}
	return shopping.Request{Recipes: meals, Persons: persons}, nil
}

// UserMessage picks the text shown for err: the planner's own messages,
// then whatever the recipe service said.
func UserMessage(err error) string {
	for _, m := range userMessages {
		if errors.Is(err, m.err) {
			return m.text
		}
	}
	if errors.Is(err, recipeclient.ErrNotFound) {
		return "Recipe not found."
	}
	return recipeclient.UserMessage(err)
}
