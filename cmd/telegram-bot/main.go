package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"recipe-planner/internal/clipper"
	"recipe-planner/internal/config"
	"recipe-planner/internal/llm"
	"recipe-planner/internal/recipeclient"
	"recipe-planner/internal/telegram"
)

func main() {
	// 1. Load Configuration
	config.LoadDotEnv()
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ConfigureLogging()

	ctx := context.Background()

	// 2. Recipe import falls back to Gemini for pages without structured data
	var textGen llm.TextGenerator
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer geminiClient.Close()
		textGen = geminiClient
	}

	// 3. Initialize Services
	client := recipeclient.NewClient(cfg)
	recipeClipper := clipper.NewClipper(textGen)

	// 4. Initialize Telegram Bot
	bot, err := telegram.NewBot(cfg, client, recipeClipper)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram Bot: %v", err)
	}

	// 5. Start Server with Graceful Shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()
	bot.RegisterHandlers(mux)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		log.Printf("Telegram Bot Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
