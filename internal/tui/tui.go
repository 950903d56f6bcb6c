// Package tui is the terminal frontend: the weekly planner grid, the
// cookbook, recipe details and the shopping list.
package tui

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"recipe-planner/internal/cookbook"
	"recipe-planner/internal/planner"
	"recipe-planner/internal/recipe"
)

type screen int

const (
	screenPlanner screen = iota
	screenCookbook
	screenSearch
	screenDetail
	screenShopping
)

type detailMode int

const (
	modeView detailMode = iota
	modeServings
	modeConfirmDelete
)

// cookbookItem is a selectable cookbook row: a recipe, or the "View N
// more" link of a category.
type cookbookItem struct {
	recipe   *recipe.Recipe
	category string
	more     string
}

type model struct {
	planner *planner.Planner
	browser *cookbook.Browser
	detail  *cookbook.Detail

	feed planFeed
	week []planner.DayView

	screen screen
	prev   screen
	params url.Values
	gen    int // bumped on every navigation

	width  int
	height int
	err    error
	status string

	dayCursor  int
	mealCursor int

	loading  bool
	category string // cookbook narrowed to one category
	cursor   int

	searchInput textinput.Model
	results     []recipe.Recipe

	mode          detailMode
	servingsInput textinput.Model
	formErr       string

	persons    int
	shopping   *planner.ShoppingResult
	emailing   bool
	emailInput textinput.Model
}

func initModel(p *planner.Planner, b *cookbook.Browser, d *cookbook.Detail) model {
	search := textinput.New()
	search.Placeholder = "Search by name, category or tag"
	search.CharLimit = 100

	servings := textinput.New()
	servings.Placeholder = "Servings"
	servings.CharLimit = 3

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254

	return model{
		planner:       p,
		browser:       b,
		detail:        d,
		week:          p.Week(),
		screen:        screenPlanner,
		searchInput:   search,
		servingsInput: servings,
		emailInput:    email,
		persons:       4,
	}
}

func (m model) Init() tea.Cmd {
	return waitForPlan(m.feed)
}

// navigate switches screens. Leaving a screen invalidates its pending
// responses and entering one starts its load.
func (m model) navigate(to screen, params url.Values) (model, tea.Cmd) {
	switch m.screen {
	case screenCookbook, screenSearch:
		if to == screenPlanner {
			m.browser.Deactivate()
		}
	case screenDetail:
		m.detail.Close()
	}

	m.gen++
	m.prev = m.screen
	m.screen = to
	m.params = params
	m.err = nil
	m.loading = false

	switch to {
	case screenPlanner:
		return m, nil
	case screenCookbook:
		if m.prev == screenPlanner {
			m.category = ""
		}
		m.cursor = 0
		m.loading = true
		return m, loadRecipes(m.browser, m.gen)
	case screenSearch:
		m.cursor = 0
		m.searchInput.Reset()
		m.results = m.browser.Search("")
		cmd := m.searchInput.Focus()
		return m, cmd
	case screenDetail:
		m.mode = modeView
		m.formErr = ""
		m.loading = true
		return m, loadDetail(m.detail, params.Get("id"), m.gen)
	case screenShopping:
		m.emailing = false
		return m, nil
	}
	return m, nil
}

// requestShopping builds the list for the current head count. The screen
// only changes once the list is there; failures show where the user is.
func (m model) requestShopping() (model, tea.Cmd) {
	m.loading = true
	m.err = nil
	return m, generateShopping(m.planner, m.persons, m.gen)
}

// target returns the planner day the current navigation was started from.
func (m model) target() planner.PlanTarget {
	return planner.ParsePlanTarget(m.params)
}

// withID copies the navigation parameters and sets the recipe id.
func (m model) withID(id string) url.Values {
	q := url.Values{}
	for k, v := range m.params {
		if k != "id" {
			q[k] = v
		}
	}
	if id != "" {
		q.Set("id", id)
	}
	return q
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case planChangedMsg:
		m.week = m.planner.WeekFrom(msg.plan)
		if n := len(m.week[m.dayCursor].Meals); m.mealCursor >= n {
			m.mealCursor = max(n-1, 0)
		}
		return m, waitForPlan(m.feed)

	case recipesLoadedMsg:
		if msg.gen != m.gen || errors.Is(msg.err, cookbook.ErrStale) {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if m.screen == screenSearch {
			m.results = m.browser.Search(m.searchInput.Value())
		}
		return m, nil

	case detailLoadedMsg:
		if msg.gen != m.gen || errors.Is(msg.err, cookbook.ErrStale) {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		return m, nil

	case recipeDeletedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.err = msg.err
			m.mode = modeView
			return m, nil
		}
		m.status = "Recipe deleted."
		return m.navigate(screenCookbook, m.withID(""))

	case shoppingMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		if m.screen != screenShopping {
			m, _ = m.navigate(screenShopping, nil)
		}
		m.shopping = msg.result
		return m, nil

	case emailSentMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.text
			m.emailing = false
			m.emailInput.Reset()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.screen {
		case screenPlanner:
			return m.updatePlanner(msg)
		case screenCookbook:
			return m.updateCookbook(msg)
		case screenSearch:
			return m.updateSearch(msg)
		case screenDetail:
			return m.updateDetail(msg)
		case screenShopping:
			return m.updateShopping(msg)
		}
	}
	return m, nil
}

func (m model) updatePlanner(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	week := m.week
	day := week[m.dayCursor]

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "left", "h":
		if m.dayCursor > 0 {
			m.dayCursor--
			m.mealCursor = 0
		}
	case "right", "l":
		if m.dayCursor < len(week)-1 {
			m.dayCursor++
			m.mealCursor = 0
		}
	case "up", "k":
		if m.mealCursor > 0 {
			m.mealCursor--
		}
	case "down", "j":
		if m.mealCursor < len(day.Meals)-1 {
			m.mealCursor++
		}
	case "a", "enter":
		m.status = ""
		return m.navigate(screenCookbook, planner.TargetFor(day.Date).Query())
	case "x", "delete":
		if m.mealCursor < len(day.Meals) {
			meal := day.Meals[m.mealCursor]
			m.planner.RemoveMeal(day.Date, meal.RecipeID)
			m.status = fmt.Sprintf("Removed %s from %s.", meal.Name, day.Name)
			if m.mealCursor > 0 {
				m.mealCursor--
			}
		}
	case "c":
		m.status = ""
		return m.navigate(screenCookbook, nil)
	case "s":
		m.status = ""
		return m.requestShopping()
	}
	return m, nil
}

func (m model) cookbookItems() []cookbookItem {
	var items []cookbookItem
	if m.category != "" {
		for _, r := range m.browser.Category(m.category) {
			r := r
			items = append(items, cookbookItem{recipe: &r})
		}
		return items
	}
	for _, g := range m.browser.Groups() {
		for i := range g.Recipes {
			items = append(items, cookbookItem{recipe: &g.Recipes[i]})
		}
		if more := g.MoreLabel(); more != "" {
			items = append(items, cookbookItem{category: g.Category, more: more})
		}
	}
	return items
}

func (m model) updateCookbook(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.cookbookItems()

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case "/":
		return m.navigate(screenSearch, m.params)
	case "r":
		return m.navigate(screenCookbook, m.params)
	case "enter":
		if m.cursor >= len(items) {
			return m, nil
		}
		item := items[m.cursor]
		if item.recipe == nil {
			m.category = item.category
			m.cursor = 0
			return m, nil
		}
		return m.navigate(screenDetail, m.withID(item.recipe.IDString()))
	case "esc":
		if m.category != "" {
			m.category = ""
			m.cursor = 0
			return m, nil
		}
		return m.navigate(screenPlanner, nil)
	}
	return m, nil
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searchInput.Blur()
		return m.navigate(screenCookbook, m.params)
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyDown:
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
		return m, nil
	case tea.KeyEnter:
		if m.cursor < len(m.results) {
			m.searchInput.Blur()
			return m.navigate(screenDetail, m.withID(m.results[m.cursor].IDString()))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.results = m.browser.Search(m.searchInput.Value())
	if m.cursor >= len(m.results) {
		m.cursor = 0
	}
	return m, cmd
}

func (m model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeServings:
		switch msg.Type {
		case tea.KeyEsc:
			m.mode = modeView
			m.servingsInput.Blur()
			return m, nil
		case tea.KeyEnter:
			entry, err := m.detail.AddToPlan(m.target(), m.servingsInput.Value())
			if err != nil {
				m.formErr = planner.UserMessage(err)
				return m, nil
			}
			m.servingsInput.Blur()
			m.status = fmt.Sprintf("Added %s to %s.", entry.Name, planner.DayName(entry.Date))
			return m.navigate(screenPlanner, nil)
		}
		var cmd tea.Cmd
		m.servingsInput, cmd = m.servingsInput.Update(msg)
		return m, cmd

	case modeConfirmDelete:
		switch msg.String() {
		case "y", "enter":
			m.loading = true
			return m, deleteRecipe(m.detail, m.gen)
		case "n", "esc":
			m.mode = modeView
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		back := m.prev
		if back != screenSearch {
			back = screenCookbook
		}
		return m.navigate(back, m.withID(""))
	case "p":
		if m.detail.State() != cookbook.StateLoaded {
			return m, nil
		}
		if !m.target().Valid() {
			m.status = "Pick a day in the planner first (press a on a day)."
			return m, nil
		}
		m.mode = modeServings
		m.formErr = ""
		m.servingsInput.SetValue(cookbook.DefaultServings)
		cmd := m.servingsInput.Focus()
		return m, cmd
	case "D":
		if m.detail.State() == cookbook.StateLoaded {
			m.mode = modeConfirmDelete
		}
	}
	return m, nil
}

func (m model) updateShopping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.emailing {
		switch msg.Type {
		case tea.KeyEsc:
			m.emailing = false
			m.emailInput.Blur()
			return m, nil
		case tea.KeyEnter:
			m.loading = true
			return m, emailShopping(m.planner, m.persons, m.emailInput.Value(), m.gen)
		}
		var cmd tea.Cmd
		m.emailInput, cmd = m.emailInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		return m.navigate(screenPlanner, nil)
	case "+":
		m.persons++
		return m.requestShopping()
	case "-":
		if m.persons > 1 {
			m.persons--
			return m.requestShopping()
		}
	case "e":
		if m.shopping != nil {
			m.emailing = true
			m.status = ""
			cmd := m.emailInput.Focus()
			return m, cmd
		}
	}
	return m, nil
}

func personsLabel(n int) string {
	if n == 1 {
		return "1 person"
	}
	return strconv.Itoa(n) + " persons"
}

// ShowTUI runs the terminal UI until the user quits. The planner grid
// follows the meal plan store for as long as the program runs.
func ShowTUI(p *planner.Planner, b *cookbook.Browser, d *cookbook.Detail) error {
	feed, unsubscribe := watchPlan(p.Store())
	defer unsubscribe()

	m := initModel(p, b, d)
	m.feed = feed
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
