package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"recipe-planner/internal/cookbook"
	"recipe-planner/internal/mealplan"
	"recipe-planner/internal/planner"
)

const requestTimeout = 30 * time.Second

// Every message carries the view generation it was requested for, so a
// response that arrives after the user navigated away is dropped.

// planChangedMsg carries the meal plan after a change, whoever made it.
type planChangedMsg struct {
	plan mealplan.Plan
}

type recipesLoadedMsg struct {
	gen int
	err error
}

type detailLoadedMsg struct {
	gen int
	err error
}

type recipeDeletedMsg struct {
	gen int
	err error
}

type shoppingMsg struct {
	gen    int
	result *planner.ShoppingResult
	err    error
}

type emailSentMsg struct {
	gen  int
	text string
	err  error
}

func loadRecipes(b *cookbook.Browser, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return recipesLoadedMsg{gen: gen, err: b.Activate(ctx)}
	}
}

func loadDetail(d *cookbook.Detail, id string, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return detailLoadedMsg{gen: gen, err: d.Load(ctx, id)}
	}
}

func deleteRecipe(d *cookbook.Detail, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return recipeDeletedMsg{gen: gen, err: d.Delete(ctx)}
	}
}

func generateShopping(p *planner.Planner, persons, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		res, err := p.GenerateShoppingList(ctx, persons)
		return shoppingMsg{gen: gen, result: res, err: err}
	}
}

func emailShopping(p *planner.Planner, persons int, email string, gen int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		text, err := p.EmailShoppingList(ctx, persons, email)
		return emailSentMsg{gen: gen, text: text, err: err}
	}
}

// planFeed hands store snapshots to the program. Each snapshot is the whole
// plan, so one still waiting is replaced by the newer one.
type planFeed chan mealplan.Plan

func (f planFeed) publish(p mealplan.Plan) {
	for {
		select {
		case f <- p:
			return
		default:
		}
		select {
		case <-f:
		default:
		}
	}
}

// watchPlan subscribes a feed to the store. The returned function
// unsubscribes it.
func watchPlan(store *mealplan.Store) (planFeed, func()) {
	feed := make(planFeed, 1)
	return feed, store.Subscribe(feed.publish)
}

func waitForPlan(feed planFeed) tea.Cmd {
	if feed == nil {
		return nil
	}
	return func() tea.Msg {
		return planChangedMsg{plan: <-feed}
	}
}
