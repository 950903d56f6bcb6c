package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"recipe-planner/internal/cookbook"
	"recipe-planner/internal/planner"
)

const callbackPlan = "plan"

type reply struct {
	text     string
	keyboard *tgbotapi.InlineKeyboardMarkup
}

func textReply(format string, args ...interface{}) reply {
	return reply{text: fmt.Sprintf(format, args...)}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) reply {
	if !msg.IsCommand() {
		return reply{text: helpText}
	}

	p := b.sessions.Planner(msg.Chat.ID)
	args := strings.Fields(msg.CommandArguments())

	switch msg.Command() {
	case "week":
		return reply{text: formatWeek(p.Week())}
	case "recipes":
		return b.handleRecipes(ctx)
	case "search":
		return b.handleSearch(ctx, strings.TrimSpace(msg.CommandArguments()))
	case "plan":
		return b.handlePlan(ctx, p, args)
	case "remove":
		return b.handleRemove(p, args)
	case "clear":
		p.Store().Clear()
		return reply{text: "🧹 Meal plan cleared."}
	case "shopping":
		return b.handleShopping(ctx, p, args)
	case "email":
		return b.handleEmail(ctx, p, args)
	default:
		return reply{text: helpText}
	}
}

func (b *Bot) handleRecipes(ctx context.Context) reply {
	recipes, err := b.client.ListRecipes(ctx)
	if err != nil {
		return textReply("❌ %s", planner.UserMessage(err))
	}
	return reply{text: formatGroups(cookbook.GroupByCategory(recipes, cookbook.PreviewLimit))}
}

func (b *Bot) handleSearch(ctx context.Context, query string) reply {
	if query == "" {
		return reply{text: "Usage: /search <query>"}
	}
	recipes, err := b.client.ListRecipes(ctx)
	if err != nil {
		return textReply("❌ %s", planner.UserMessage(err))
	}
	return reply{text: formatSearch(query, cookbook.Search(recipes, query))}
}

// handlePlan accepts "<day> <recipeId> [servings]", or just "<recipeId>"
// to pick the day from a keyboard.
func (b *Bot) handlePlan(ctx context.Context, p *planner.Planner, args []string) reply {
	week := p.Week()

	switch len(args) {
	case 1:
		rec, err := b.client.GetRecipe(ctx, args[0])
		if err != nil {
			return textReply("❌ %s", planner.UserMessage(err))
		}
		servings, _ := planner.ParseServings(cookbook.DefaultServings)
		kb := dayKeyboard(week, rec.IDString(), servings)
		return reply{text: fmt.Sprintf("Which day should *%s* be planned on?", escape(rec.Name)), keyboard: &kb}
	case 2, 3:
	default:
		return reply{text: "Usage: /plan <day> <recipeId> [servings]"}
	}

	day, ok := planner.ResolveDay(week, args[0])
	if !ok {
		return textReply("Unknown day \"%s\". Use a weekday name or a date like %s.", escape(args[0]), week[0].Label)
	}
	servingsArg := cookbook.DefaultServings
	if len(args) == 3 {
		servingsArg = args[2]
	}
	return b.planOn(ctx, p, day, args[1], servingsArg)
}

func (b *Bot) planOn(ctx context.Context, p *planner.Planner, day planner.DayView, recipeID, servingsArg string) reply {
	servings, err := planner.ParseServings(servingsArg)
	if err != nil {
		return textReply("❌ %s", planner.UserMessage(err))
	}
	rec, err := b.client.GetRecipe(ctx, recipeID)
	if err != nil {
		return textReply("❌ %s", planner.UserMessage(err))
	}
	if _, err := p.Commit(planner.TargetFor(day.Date), *rec, servings); err != nil {
		return textReply("❌ %s", planner.UserMessage(err))
	}
	log.Debugf("Planned recipe %s on %s", rec.IDString(), day.Key)
	return textReply("✅ *%s* planned for %s (%s), %d servings.", escape(rec.Name), day.Name, day.Label, servings)
}

func (b *Bot) handleRemove(p *planner.Planner, args []string) reply {
	if len(args) != 2 {
		return reply{text: "Usage: /remove <day> <recipeId>"}
	}
	day, ok := planner.ResolveDay(p.Week(), args[0])
	if !ok {
		return textReply("Unknown day \"%s\".", escape(args[0]))
	}
	p.RemoveMeal(day.Date, args[1])
	return reply{text: formatWeek(p.Week())}
}

func (b *Bot) handleShopping(ctx context.Context, p *planner.Planner, args []string) reply {
	persons, ok := personsArg(args, 0)
	if !ok {
		return reply{text: "Usage: /shopping [persons]"}
	}
	res, err := p.GenerateShoppingList(ctx, persons)
	if err != nil {
		return textReply("❌ %s", planner.UserMessage(err))
	}
	return reply{text: formatShopping(res)}
}

func (b *Bot) handleEmail(ctx context.Context, p *planner.Planner, args []string) reply {
	if len(args) == 0 {
		return reply{text: "Usage: /email <address> [persons]"}
	}
	persons, ok := personsArg(args, 1)
	if !ok {
		return reply{text: "Usage: /email <address> [persons]"}
	}
	confirmation, err := p.EmailShoppingList(ctx, persons, args[0])
	if err != nil {
		return textReply("❌ %s", planner.UserMessage(err))
	}
	return textReply("📧 %s", confirmation)
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	// Answer callback to remove spinner
	b.api.Request(tgbotapi.NewCallback(query.ID, ""))

	if query.Message == nil {
		return
	}
	r := b.callbackReply(ctx, query.Message.Chat.ID, query.Data)

	edit := tgbotapi.NewEditMessageText(query.Message.Chat.ID, query.Message.MessageID, r.text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	b.api.Send(edit)
}

// callbackReply handles "plan|<recipeId>|<dateKey>|<servings>".
func (b *Bot) callbackReply(ctx context.Context, chatID int64, data string) reply {
	parts := strings.Split(data, "|")
	if len(parts) != 4 || parts[0] != callbackPlan {
		return reply{text: "This button has expired."}
	}

	p := b.sessions.Planner(chatID)
	day, ok := planner.ResolveDay(p.Week(), parts[2])
	if !ok {
		return reply{text: "That day is no longer in this week's plan."}
	}
	return b.planOn(ctx, p, day, parts[1], parts[3])
}

func personsArg(args []string, i int) (int, bool) {
	if len(args) <= i {
		return 0, true
	}
	if len(args) > i+1 {
		return 0, false
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
