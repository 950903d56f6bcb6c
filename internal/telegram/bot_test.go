package telegram

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"recipe-planner/internal/config"
	"recipe-planner/internal/planner"
	"recipe-planner/internal/recipe"
	"recipe-planner/internal/recipeclient"
	"recipe-planner/internal/shopping"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) lastText(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("Expected a message to be sent")
	}
	switch m := f.sent[len(f.sent)-1].(type) {
	case tgbotapi.MessageConfig:
		return m.Text
	case tgbotapi.EditMessageTextConfig:
		return m.Text
	}
	t.Fatalf("Unexpected message type %T", f.sent[len(f.sent)-1])
	return ""
}

type mockClient struct {
	recipes  map[string]recipe.Recipe
	requests []shopping.Request
}

func newMockClient() *mockClient {
	return &mockClient{recipes: map[string]recipe.Recipe{
		"1": {ID: 1, Name: "Spaghetti Bolognese", Category: "Pasta"},
		"2": {ID: 2, Name: "Linsensuppe", Category: "Soups", Tags: []string{"vegan"}},
	}}
}

func (m *mockClient) ListRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	return []recipe.Recipe{m.recipes["1"], m.recipes["2"]}, nil
}

func (m *mockClient) GetRecipe(ctx context.Context, id string) (*recipe.Recipe, error) {
	r, ok := m.recipes[id]
	if !ok {
		return nil, &recipeclient.APIError{StatusCode: http.StatusNotFound, Message: "Recipe not found"}
	}
	return &r, nil
}

func (m *mockClient) CreateRecipe(ctx context.Context, r recipe.Recipe) (int, error) {
	return 0, errors.New("not implemented")
}

func (m *mockClient) UpdateRecipe(ctx context.Context, id string, r recipe.Recipe) error {
	return nil
}

func (m *mockClient) DeleteRecipe(ctx context.Context, id string) error {
	return nil
}

func (m *mockClient) ShoppingList(ctx context.Context, req shopping.Request) ([]shopping.Item, error) {
	m.requests = append(m.requests, req)
	return []shopping.Item{
		{Name: "Zwiebel", Amount: 2, Unit: "Stueck"},
		{Name: "Hackfleisch", Amount: 500, Unit: "g"},
	}, nil
}

func command(chatID int64, text string) *tgbotapi.Message {
	name := strings.Fields(text)[0]
	return &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: 42},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}
}

func newTestBot() (*Bot, *fakeSender, *mockClient) {
	api := &fakeSender{}
	client := newMockClient()
	return newBot(api, &config.Config{}, client, nil), api, client
}

func TestPlanAndWeek(t *testing.T) {
	b, api, _ := newTestBot()
	week := planner.CurrentWeek(time.Now())

	b.processMessage(command(1, "/plan monday 1 2"))
	if got := api.lastText(t); !strings.Contains(got, "planned for Monday") || !strings.Contains(got, "2 servings") {
		t.Errorf("Unexpected confirmation %q", got)
	}

	b.processMessage(command(1, "/plan "+planner.FormatDate(week[2])+" 2"))
	b.processMessage(command(1, "/week"))
	got := api.lastText(t)
	if !strings.Contains(got, "• Spaghetti Bolognese (2 servings) #1") {
		t.Errorf("Expected Monday meal in week view, got %q", got)
	}
	if !strings.Contains(got, "• Linsensuppe (4 servings) #2") {
		t.Errorf("Expected Wednesday meal with default servings, got %q", got)
	}

	t.Run("SeparatePlansPerChat", func(t *testing.T) {
		if n := b.sessions.Planner(2).Store().Len(); n != 0 {
			t.Errorf("Expected an empty plan for another chat, got %d meals", n)
		}
	})

	t.Run("Remove", func(t *testing.T) {
		b.processMessage(command(1, "/remove mon 1"))
		if got := api.lastText(t); strings.Contains(got, "Spaghetti") {
			t.Errorf("Expected Spaghetti to be removed, got %q", got)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		b.processMessage(command(1, "/clear"))
		if n := b.sessions.Planner(1).Store().Len(); n != 0 {
			t.Errorf("Expected an empty plan, got %d meals", n)
		}
	})
}

func TestPlanErrors(t *testing.T) {
	b, api, _ := newTestBot()

	tests := []struct {
		text string
		want string
	}{
		{"/plan someday 1", "Unknown day"},
		{"/plan mon 1 zero", "Please enter a valid number of servings."},
		{"/plan mon 99", "Recipe not found."},
		{"/plan", "Usage: /plan"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			b.processMessage(command(1, tt.text))
			if got := api.lastText(t); !strings.Contains(got, tt.want) {
				t.Errorf("Expected %q in reply, got %q", tt.want, got)
			}
		})
	}
}

func TestPlanKeyboard(t *testing.T) {
	b, api, _ := newTestBot()

	b.processMessage(command(1, "/plan 2"))
	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("Expected a message, got %T", api.sent[0])
	}
	kb, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok || len(kb.InlineKeyboard) != 1 || len(kb.InlineKeyboard[0]) != planner.WorkWeekDays {
		t.Fatalf("Expected one row of %d day buttons, got %+v", planner.WorkWeekDays, msg.ReplyMarkup)
	}

	data := *kb.InlineKeyboard[0][4].CallbackData
	b.handleCallbackQuery(&tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: 42},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: 1}},
		Data:    data,
	})
	if got := api.lastText(t); !strings.Contains(got, "planned for Friday") {
		t.Errorf("Expected Friday confirmation, got %q", got)
	}

	b.handleCallbackQuery(&tgbotapi.CallbackQuery{
		ID:      "cb2",
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: 1}},
		Data:    "redo|something",
	})
	if got := api.lastText(t); got != "This button has expired." {
		t.Errorf("Expected expired button message, got %q", got)
	}
}

func TestShopping(t *testing.T) {
	b, api, client := newTestBot()

	b.processMessage(command(1, "/shopping"))
	if got := api.lastText(t); !strings.Contains(got, "No meals found in the meal plan.") {
		t.Errorf("Expected empty plan message, got %q", got)
	}
	if len(client.requests) != 0 {
		t.Errorf("Expected no service call for an empty plan, got %d", len(client.requests))
	}

	b.processMessage(command(1, "/plan tue 1 3"))
	b.processMessage(command(1, "/shopping 6"))
	got := api.lastText(t)
	if !strings.Contains(got, "🛒 *Shopping List*") {
		t.Errorf("Missing shopping list header in %q", got)
	}
	if strings.Index(got, "Hackfleisch") > strings.Index(got, "Zwiebel") {
		t.Errorf("Expected items sorted by name, got %q", got)
	}
	if len(client.requests) != 1 || client.requests[0].Persons != 6 || client.requests[0].Recipes[0].TargetPersons != 3 {
		t.Errorf("Unexpected shopping request %+v", client.requests)
	}

	b.processMessage(command(1, "/email cook@example.com"))
	if got := api.lastText(t); !strings.Contains(got, planner.EmailSentMessage) {
		t.Errorf("Expected email confirmation, got %q", got)
	}
	if client.requests[1].Email != "cook@example.com" || client.requests[1].Persons != shopping.DefaultPersons {
		t.Errorf("Unexpected email request %+v", client.requests[1])
	}

	b.processMessage(command(1, "/shopping many"))
	if got := api.lastText(t); got != "Usage: /shopping [persons]" {
		t.Errorf("Expected usage, got %q", got)
	}
}

func TestRecipesAndSearch(t *testing.T) {
	b, api, _ := newTestBot()

	b.processMessage(command(1, "/recipes"))
	got := api.lastText(t)
	if !strings.Contains(got, "📖 *Cookbook*") || !strings.Contains(got, "Linsensuppe #2") {
		t.Errorf("Unexpected cookbook %q", got)
	}

	b.processMessage(command(1, "/search vegan"))
	got = api.lastText(t)
	if !strings.Contains(got, "1 results") || !strings.Contains(got, "Linsensuppe") {
		t.Errorf("Unexpected search result %q", got)
	}

	b.processMessage(command(1, "/search"))
	if got := api.lastText(t); got != "Usage: /search <query>" {
		t.Errorf("Expected usage, got %q", got)
	}
}

func TestImportWithoutClipper(t *testing.T) {
	b, api, _ := newTestBot()
	b.processMessage(&tgbotapi.Message{Text: "https://example.com/recipe", Chat: &tgbotapi.Chat{ID: 1}})
	if got := api.lastText(t); got != "Recipe import is not configured." {
		t.Errorf("Unexpected reply %q", got)
	}
}

func TestWebhookAuthorization(t *testing.T) {
	api := &fakeSender{}
	b := newBot(api, &config.Config{TelegramAllowedUserIDs: []int64{7}}, newMockClient(), nil)

	if b.isAllowed(&tgbotapi.User{ID: 8}) {
		t.Error("Expected user 8 to be rejected")
	}
	if !b.isAllowed(&tgbotapi.User{ID: 7}) {
		t.Error("Expected user 7 to be allowed")
	}

	mux := http.NewServeMux()
	b.RegisterHandlers(mux)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString("not json")))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a malformed update, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "OK" {
		t.Errorf("Expected health OK, got %d %q", rr.Code, rr.Body.String())
	}
}
