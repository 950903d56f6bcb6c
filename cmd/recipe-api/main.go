package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"recipe-planner/internal/app"
	"recipe-planner/internal/auth"
	"recipe-planner/internal/config"
	"recipe-planner/internal/database"
	"recipe-planner/internal/metrics"
	"recipe-planner/internal/recipeapi"
	"recipe-planner/internal/shopping"
	"recipe-planner/internal/storage"
)

// memoryDatabase selects the in-memory store through DATABASE_URL.
const memoryDatabase = "memory"

// backend is the opened recipe storage. db is set for SQLite only, which
// also holds the request metrics.
type backend struct {
	store storage.Store
	db    *database.DB
	close func()
}

func openBackend(databaseURL string) (*backend, error) {
	switch {
	case databaseURL == memoryDatabase:
		log.Warn("Using in-memory recipe storage; recipes are lost on exit")
		return &backend{store: storage.NewMemory(), close: func() {}}, nil

	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		gdb, err := database.NewPostgres(databaseURL)
		if err != nil {
			return nil, err
		}
		store, err := storage.NewPostgres(gdb)
		if err != nil {
			return nil, err
		}
		return &backend{store: store, close: func() {
			if sqlDB, err := gdb.DB(); err == nil {
				sqlDB.Close()
			}
		}}, nil

	default:
		db, err := database.NewDB(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return &backend{store: storage.NewSQLite(db), db: db, close: func() { db.Close() }}, nil
	}
}

func main() {
	config.LoadDotEnv()
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ConfigureLogging()

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "serve":
		serve(cfg)
	case "migrate-ingredients":
		b, err := openBackend(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open storage: %v", err)
		}
		defer b.close()

		n, err := app.MigrateIngredients(context.Background(), b.store)
		if err != nil {
			log.Fatalf("Ingredient migration failed: %v", err)
		}
		fmt.Printf("Migrated ingredients of %d recipes.\n", n)
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		b, err := openBackend(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open storage: %v", err)
		}
		defer b.close()
		if b.db == nil {
			log.Fatalf("Request metrics are only kept with SQLite storage")
		}

		affected, err := metrics.NewStore(b.db.SQL).Cleanup(*days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old metric records.\n", affected)
	case "token":
		tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
		subject := tokenCmd.String("subject", "recipe-planner", "Token subject")
		ttl := tokenCmd.Duration("ttl", 30*24*time.Hour, "Token lifetime")
		tokenCmd.Parse(os.Args[2:])

		if cfg.APISecret == "" {
			log.Fatalf("RECIPE_API_SECRET environment variable not set")
		}
		token, err := auth.NewToken(cfg.APISecret, *subject, *ttl)
		if err != nil {
			log.Fatalf("Failed to create token: %v", err)
		}
		fmt.Println(token)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func serve(cfg *config.Config) {
	b, err := openBackend(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer b.close()

	var opts []recipeapi.Option
	if cfg.MailEnabled() {
		opts = append(opts, recipeapi.WithMailer(shopping.NewSMTPMailer(shopping.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
		})))
	} else {
		log.Info("SMTP_USER/SMTP_PASSWORD not set; shopping list email is disabled")
	}

	dataPath := ""
	if b.db != nil {
		opts = append(opts, recipeapi.WithMetrics(metrics.NewStore(b.db.SQL)))
		dataPath = b.db.Dir()
	}

	srv := recipeapi.NewServer(recipeapi.Config{
		Addr:      ":" + cfg.Port,
		Secret:    cfg.APISecret,
		DataPath:  dataPath,
		AccessLog: true,
	}, b.store, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server exiting")
}

func printUsage() {
	fmt.Println("Usage: recipe-api [command] [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  serve                 Serve the recipe API (default)")
	fmt.Println("  migrate-ingredients   Convert legacy ingredient rows to amount and unit")
	fmt.Println("  metrics-cleanup       Remove old request metric records (-days N)")
	fmt.Println("  token                 Print a bearer token for RECIPE_API_SECRET")
}
