package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"recipe-planner/internal/cookbook"
	"recipe-planner/internal/planner"
	"recipe-planner/internal/recipe"
	"recipe-planner/internal/shopping"
)

func (m model) View() string {
	var title, body, footer string
	switch m.screen {
	case screenPlanner:
		title = "Weekly Planner " + m.planner.WeekRange()
		body = m.plannerView()
		footer = "←/→ day • ↑/↓ meal • a add • x remove • c cookbook • s shopping list • q quit"
	case screenCookbook:
		title = "Cookbook"
		body = m.cookbookView()
		footer = "↑/↓ navigate • enter open • / search • r reload • esc back"
	case screenSearch:
		title = "Search"
		body = m.searchView()
		footer = "type to search • ↑/↓ navigate • enter open • esc back"
	case screenDetail:
		title = "Recipe"
		body = m.detailView()
		footer = "p add to plan • D delete • esc back"
	case screenShopping:
		title = "Shopping List"
		body = m.shoppingView()
		footer = "+/- persons • e email • esc back"
	}

	if t := m.target(); t.Valid() && m.screen != screenPlanner {
		title += fmt.Sprintf(" (planning %s %s)", planner.DayName(t.Date), planner.FormatDate(t.Date))
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Width(m.width).Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(body)
	sb.WriteString("\n")
	if m.err != nil {
		sb.WriteString("\n" + dangerStyle.Render(planner.UserMessage(m.err)) + "\n")
	}
	if m.status != "" {
		sb.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	}
	sb.WriteString("\n" + footerStyle.Render(footer))
	return sb.String()
}

func (m model) plannerView() string {
	columns := make([]string, 0, len(m.week))
	for i, day := range m.week {
		var sb strings.Builder
		sb.WriteString(subtitleStyle.Render(day.Name) + " " + mutedStyle.Render(day.Label) + "\n\n")
		if len(day.Meals) == 0 {
			sb.WriteString(mutedStyle.Render("No meals") + "\n")
		}
		for j, meal := range day.Meals {
			line := fmt.Sprintf("%s (%d)", meal.Name, meal.Servings)
			if i == m.dayCursor && j == m.mealCursor {
				line = selectedStyle.Render(line)
			}
			sb.WriteString(line + "\n")
		}

		style := dayStyle
		if i == m.dayCursor {
			style = activeDayStyle
		}
		columns = append(columns, style.Render(sb.String()))
	}
	grid := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	if m.loading {
		grid += "\n\n" + mutedStyle.Render("Building shopping list...")
	}
	return grid
}

func (m model) cookbookView() string {
	if m.loading {
		return "Loading recipes..."
	}
	if m.err != nil {
		return ""
	}

	var sb strings.Builder
	idx := 0
	item := func(label string) {
		line := pointer(idx == m.cursor) + label
		if idx == m.cursor {
			line = selectedStyle.Render(line)
		}
		sb.WriteString(line + "\n")
		idx++
	}

	if m.category != "" {
		sb.WriteString(categoryStyle.Render(recipe.CategoryLabel(m.category)) + "\n")
		for _, r := range m.browser.Category(m.category) {
			item(r.Name)
		}
		return sb.String()
	}

	groups := m.browser.Groups()
	if len(groups) == 0 {
		return "No recipes yet."
	}
	for _, g := range groups {
		sb.WriteString(categoryStyle.Render(fmt.Sprintf("%s (%d)", g.Label, g.Total)) + "\n")
		for _, r := range g.Recipes {
			item(r.Name)
		}
		if more := g.MoreLabel(); more != "" {
			item(mutedStyle.Render(more))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m model) searchView() string {
	var sb strings.Builder
	sb.WriteString(m.searchInput.View() + "\n\n")
	if strings.TrimSpace(m.searchInput.Value()) == "" {
		return sb.String()
	}
	if len(m.results) == 0 {
		sb.WriteString(mutedStyle.Render("No recipes found."))
		return sb.String()
	}
	for i, r := range m.results {
		line := pointer(i == m.cursor) + r.Name + " " + mutedStyle.Render(recipe.CategoryLabel(r.CategoryOrDefault()))
		if i == m.cursor {
			line = selectedStyle.Render(pointer(true) + r.Name)
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}

func (m model) detailView() string {
	switch m.detail.State() {
	case cookbook.StateLoading:
		return "Loading recipe..."
	case cookbook.StateNotFound:
		return "Recipe not found."
	case cookbook.StateFailed:
		return ""
	}

	r := m.detail.Recipe()
	if r == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(subtitleStyle.Render(r.Name) + "\n")
	sb.WriteString(categoryStyle.Render(recipe.CategoryLabel(r.CategoryOrDefault())))
	if len(r.Tags) > 0 {
		sb.WriteString(" " + mutedStyle.Render(strings.Join(r.Tags, ", ")))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Prep %d min • Cook %d min • Serves %d\n\n", r.PreparationTime, r.CookingTime, r.Servings))

	sb.WriteString(subtitleStyle.Render("Ingredients") + "\n")
	for _, ing := range r.Ingredients {
		sb.WriteString("• " + textStyle.Render(formatIngredient(ing)) + "\n")
	}
	sb.WriteString("\n" + subtitleStyle.Render("Instructions") + "\n")
	for i, step := range r.Instructions {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, step))
	}

	switch m.mode {
	case modeServings:
		t := m.target()
		sb.WriteString(fmt.Sprintf("\nAdd to %s %s, servings: %s\n", planner.DayName(t.Date), planner.FormatDate(t.Date), m.servingsInput.View()))
		sb.WriteString(mutedStyle.Render("(enter to confirm, esc to cancel)") + "\n")
		if m.formErr != "" {
			sb.WriteString(dangerStyle.Render(m.formErr) + "\n")
		}
	case modeConfirmDelete:
		sb.WriteString("\n" + dangerStyle.Render(fmt.Sprintf("Delete %s? (y/n)", r.Name)) + "\n")
	}
	return sb.String()
}

func formatIngredient(ing recipe.Ingredient) string {
	if ing.Amount == 0 {
		return ing.Name
	}
	return shopping.FormatItem(shopping.Item{Name: ing.Name, Amount: ing.Amount, Unit: ing.Unit})
}

func (m model) shoppingView() string {
	if m.shopping == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(subtitleStyle.Render("Week "+m.shopping.WeekRange) + " " + mutedStyle.Render("for "+personsLabel(m.shopping.Persons)) + "\n\n")
	if m.loading {
		sb.WriteString(mutedStyle.Render("Updating for "+personsLabel(m.persons)+"...") + "\n\n")
	}
	for _, it := range m.shopping.Items {
		sb.WriteString("• " + shopping.FormatItem(it) + "\n")
	}
	if m.emailing {
		sb.WriteString("\nEmail: " + m.emailInput.View() + "\n")
		sb.WriteString(mutedStyle.Render("(enter to send, esc to cancel)") + "\n")
	}
	return sb.String()
}
