package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"recipe-planner/internal/cookbook"
	"recipe-planner/internal/planner"
	"recipe-planner/internal/recipe"
	"recipe-planner/internal/shopping"
)

const helpText = `🧑‍🍳 *Recipe Planner*

/week - show this week's plan
/recipes - browse the cookbook
/search <query> - find recipes by name, category or tag
/plan <day> <recipeId> [servings] - plan a recipe
/remove <day> <recipeId> - remove a planned recipe
/clear - empty the plan
/shopping [persons] - build the shopping list
/email <address> [persons] - mail the shopping list

Send a recipe link to import it.`

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func formatWeek(days []planner.DayView) string {
	var sb strings.Builder
	dates := make([]string, 0, len(days))
	for _, d := range days {
		dates = append(dates, d.Label)
	}
	if len(dates) > 0 {
		sb.WriteString(fmt.Sprintf("📅 *Week %s - %s*\n", dates[0], dates[len(dates)-1]))
	}

	for _, d := range days {
		sb.WriteString(fmt.Sprintf("\n*%s* (%s)\n", d.Name, d.Label))
		if len(d.Meals) == 0 {
			sb.WriteString("_No meals planned_\n")
			continue
		}
		for _, m := range d.Meals {
			sb.WriteString(fmt.Sprintf("• %s (%d servings) #%s\n", escape(m.Name), m.Servings, m.RecipeID))
		}
	}
	return sb.String()
}

func formatGroups(groups []cookbook.Group) string {
	if len(groups) == 0 {
		return "No recipes found. Send a recipe link to import one."
	}

	var sb strings.Builder
	sb.WriteString("📖 *Cookbook*\n")
	for _, g := range groups {
		sb.WriteString(fmt.Sprintf("\n*%s* (%d)\n", escape(g.Label), g.Total))
		for _, r := range g.Recipes {
			sb.WriteString(fmt.Sprintf("• %s #%d\n", escape(r.Name), r.ID))
		}
		if more := g.MoreLabel(); more != "" {
			sb.WriteString(fmt.Sprintf("_%s: /search %s_\n", more, escape(g.Category)))
		}
	}
	return sb.String()
}

func formatSearch(query string, results []recipe.Recipe) string {
	if len(results) == 0 {
		return fmt.Sprintf("No recipes match \"%s\".", escape(query))
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔎 *%d results for* \"%s\"\n\n", len(results), escape(query)))
	for _, r := range results {
		sb.WriteString(fmt.Sprintf("• %s #%d (%s)\n", escape(r.Name), r.ID, escape(r.CategoryOrDefault())))
	}
	return sb.String()
}

func formatShopping(res *planner.ShoppingResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🛒 *Shopping List* (%s)\n\n", res.WeekRange))
	if len(res.Items) == 0 {
		sb.WriteString("_Nothing to buy_\n")
	}
	for _, item := range res.Items {
		sb.WriteString(fmt.Sprintf("• %s\n", escape(shopping.FormatItem(item))))
	}
	return sb.String()
}

// dayKeyboard offers one button per planner day for planning recipeID.
func dayKeyboard(days []planner.DayView, recipeID string, servings int) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, d := range days {
		label := fmt.Sprintf("%s %s", d.Name[:3], d.Label)
		data := strings.Join([]string{callbackPlan, recipeID, d.Key, fmt.Sprint(servings)}, "|")
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, data))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}
