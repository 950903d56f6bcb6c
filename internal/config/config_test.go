package config

import (
	"os"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	// Helper function to set environment variables for a test
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Defaults", func(t *testing.T) {
		for _, key := range []string{"RECIPE_API_URL", "PORT", "DATABASE_URL", "SMTP_HOST", "SMTP_PORT", "TELEGRAM_ALLOWED_USER_IDS", "LOG_LEVEL"} {
			setEnv(key, "")
			os.Unsetenv(key)
		}

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.APIURL != DefaultAPIURL {
			t.Errorf("Expected APIURL to be '%s', got '%s'", DefaultAPIURL, cfg.APIURL)
		}
		if cfg.Port != DefaultPort {
			t.Errorf("Expected Port to be '%s', got '%s'", DefaultPort, cfg.Port)
		}
		if cfg.DatabaseURL != DefaultDatabasePath {
			t.Errorf("Expected DatabaseURL to be '%s', got '%s'", DefaultDatabasePath, cfg.DatabaseURL)
		}
		if cfg.SMTPPort != DefaultSMTPPort {
			t.Errorf("Expected SMTPPort to be %d, got %d", DefaultSMTPPort, cfg.SMTPPort)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("Expected LogLevel to be 'info', got '%s'", cfg.LogLevel)
		}
	})

	t.Run("BaseURLOverride", func(t *testing.T) {
		setEnv("RECIPE_API_URL", "http://recipes.test/")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.APIURL != "http://recipes.test" {
			t.Errorf("Expected trailing slash to be trimmed, got '%s'", cfg.APIURL)
		}
	})

	t.Run("AllowedUserIDs", func(t *testing.T) {
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "42, 7,")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 || cfg.TelegramAllowedUserIDs[0] != 42 || cfg.TelegramAllowedUserIDs[1] != 7 {
			t.Errorf("Expected [42 7], got %v", cfg.TelegramAllowedUserIDs)
		}
	})

	t.Run("InvalidUserID", func(t *testing.T) {
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "abc")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for a non-numeric user id, got nil")
		}
	})

	t.Run("InvalidSMTPPort", func(t *testing.T) {
		setEnv("SMTP_PORT", "smtp")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for a non-numeric SMTP_PORT, got nil")
		}
	})
}

func TestRequire(t *testing.T) {
	t.Run("MissingTelegramToken", func(t *testing.T) {
		cfg := &Config{TelegramWebhookURL: "https://bot.test/webhook"}
		err := cfg.RequireTelegram()
		if err == nil {
			t.Fatal("Expected an error for missing TELEGRAM_BOT_TOKEN, got nil")
		}
		expectedError := "TELEGRAM_BOT_TOKEN environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("MissingWebhook", func(t *testing.T) {
		cfg := &Config{TelegramBotToken: "token"}
		err := cfg.RequireTelegram()
		if err == nil {
			t.Fatal("Expected an error for missing TELEGRAM_WEBHOOK_URL, got nil")
		}
		expectedError := "TELEGRAM_WEBHOOK_URL environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("MissingGeminiAPIKey", func(t *testing.T) {
		cfg := &Config{}
		err := cfg.RequireGemini()
		if err == nil {
			t.Fatal("Expected an error for missing GEMINI_API_KEY, got nil")
		}
		expectedError := "GEMINI_API_KEY environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("MailEnabled", func(t *testing.T) {
		if (&Config{SMTPUser: "me@test"}).MailEnabled() {
			t.Error("Expected mail to be disabled without a password")
		}
		if !(&Config{SMTPUser: "me@test", SMTPPassword: "pw"}).MailEnabled() {
			t.Error("Expected mail to be enabled with user and password")
		}
	})
}
