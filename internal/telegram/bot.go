// Package telegram serves the meal planner as a Telegram bot. Each chat
// gets its own weekly plan.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"recipe-planner/internal/clipper"
	"recipe-planner/internal/config"
	"recipe-planner/internal/recipeclient"
)

// sender is the part of the Telegram API the bot talks to.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot wraps the Telegram API, the recipe service and the per-chat plans.
type Bot struct {
	api      sender
	cfg      *config.Config
	client   recipeclient.Client
	clipper  *clipper.Clipper
	sessions *Sessions
	timeout  time.Duration
}

// NewBot initializes the Telegram Bot and sets the Webhook. recipeClipper
// may be nil, in which case links are not imported.
func NewBot(cfg *config.Config, client recipeclient.Client, recipeClipper *clipper.Clipper) (*Bot, error) {
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	webhookURL := cfg.TelegramWebhookURL
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", webhookURL, err)
	}
	resp, err := api.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return newBot(api, cfg, client, recipeClipper), nil
}

func newBot(api sender, cfg *config.Config, client recipeclient.Client, recipeClipper *clipper.Clipper) *Bot {
	return &Bot{
		api:      api,
		cfg:      cfg,
		client:   client,
		clipper:  recipeClipper,
		sessions: NewSessions(client),
		timeout:  time.Minute,
	}
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("Error parsing update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if update.CallbackQuery != nil {
		if b.isAllowed(update.CallbackQuery.From) {
			go b.handleCallbackQuery(update.CallbackQuery)
		}
		return
	}

	if update.Message == nil || !b.isAllowed(update.Message.From) {
		return
	}

	go b.processMessage(update.Message)
}

// isAllowed reports whether the user may use the bot. An empty allow list
// admits everyone.
func (b *Bot) isAllowed(user *tgbotapi.User) bool {
	if user == nil {
		return false
	}
	if len(b.cfg.TelegramAllowedUserIDs) == 0 {
		return true
	}
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if user.ID == id {
			return true
		}
	}
	log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", user.ID, user.UserName)
	return false
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleImport(ctx, msg.Chat.ID, text)
		return
	}

	r := b.handleCommand(ctx, msg)
	reply := tgbotapi.NewMessage(msg.Chat.ID, r.text)
	reply.ParseMode = tgbotapi.ModeMarkdown
	if r.keyboard != nil {
		reply.ReplyMarkup = *r.keyboard
	}
	if _, err := b.api.Send(reply); err != nil {
		log.Printf("Failed to send reply to chat %d: %v", msg.Chat.ID, err)
	}
}

func (b *Bot) handleImport(ctx context.Context, chatID int64, url string) {
	if b.clipper == nil {
		b.api.Send(tgbotapi.NewMessage(chatID, "Recipe import is not configured."))
		return
	}

	status := tgbotapi.NewMessage(chatID, "✂️ *Clipping recipe...*")
	status.ParseMode = tgbotapi.ModeMarkdown
	sent, err := b.api.Send(status)
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	var finalText string
	rec, err := b.clipper.ClipURL(ctx, url)
	if err == nil {
		rec.ID, err = b.client.CreateRecipe(ctx, *rec)
	}
	if err != nil {
		log.Printf("Error importing recipe from %s: %v", url, err)
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		finalText = fmt.Sprintf("❌ *Error importing recipe:*\n```\n%v\n```", safeErr)
	} else {
		finalText = fmt.Sprintf("✅ *Recipe Saved!*\n\n*Title:* %s\n*ID:* %d\n\nPlan it with /plan <day> %d", escape(rec.Name), rec.ID, rec.ID)
	}

	edit := tgbotapi.NewEditMessageText(chatID, sent.MessageID, finalText)
	edit.ParseMode = tgbotapi.ModeMarkdown
	b.api.Send(edit)
}
