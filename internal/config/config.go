package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultAPIURL       = "http://localhost:5000"
	DefaultPort         = "5000"
	DefaultDatabasePath = "data/recipes.db"
	DefaultSMTPHost     = "smtp.gmail.com"
	DefaultSMTPPort     = 587
)

// Config holds the configuration for the application.
type Config struct {
	// Recipe service (client side)
	APIURL    string
	APISecret string

	// Recipe service (server side)
	Port        string
	DatabaseURL string

	// Shopping list email
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	GeminiAPIKey string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64

	LogLevel string
}

// LoadDotEnv reads a .env file into the process environment when one exists.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found")
	}
}

// NewFromEnv creates a new Config object from environment variables.
// Every variable is optional here; binaries call the Require* helpers for
// the ones they cannot run without.
func NewFromEnv() (*Config, error) {
	apiURL := strings.TrimRight(os.Getenv("RECIPE_API_URL"), "/")
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = DefaultPort
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = DefaultDatabasePath
	}

	smtpHost := os.Getenv("SMTP_HOST")
	if smtpHost == "" {
		smtpHost = DefaultSMTPHost
	}

	smtpPort := DefaultSMTPPort
	if v := os.Getenv("SMTP_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", v, err)
		}
		smtpPort = p
	}

	allowed, err := parseIDList(os.Getenv("TELEGRAM_ALLOWED_USER_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS: %w", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		APIURL:                 apiURL,
		APISecret:              os.Getenv("RECIPE_API_SECRET"),
		Port:                   port,
		DatabaseURL:            databaseURL,
		SMTPHost:               smtpHost,
		SMTPPort:               smtpPort,
		SMTPUser:               os.Getenv("SMTP_USER"),
		SMTPPassword:           os.Getenv("SMTP_PASSWORD"),
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramWebhookURL:     os.Getenv("TELEGRAM_WEBHOOK_URL"),
		TelegramAllowedUserIDs: allowed,
		LogLevel:               logLevel,
	}, nil
}

// RequireTelegram checks the variables the chat bot needs.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.TelegramWebhookURL == "" {
		return fmt.Errorf("TELEGRAM_WEBHOOK_URL environment variable not set")
	}
	return nil
}

// RequireGemini checks the variables the LLM-backed importer needs.
func (c *Config) RequireGemini() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	return nil
}

// MailEnabled reports whether shopping lists can be emailed.
func (c *Config) MailEnabled() bool {
	return c.SMTPUser != "" && c.SMTPPassword != ""
}

// ConfigureLogging applies LOG_LEVEL to the standard logrus logger.
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", c.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func parseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
