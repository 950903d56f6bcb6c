package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"recipe-planner/internal/app"
	"recipe-planner/internal/clipper"
	"recipe-planner/internal/config"
	"recipe-planner/internal/llm"
	"recipe-planner/internal/recipeclient"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "recipe-planner",
	Short:   "Browse recipes, plan the week and build shopping lists.",
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of recipe-planner",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

// newApp loads the configuration and wires the application. With
// withImporter set, a Gemini client backs recipe import when
// GEMINI_API_KEY is present. The returned func releases it.
func newApp(ctx context.Context, withImporter bool) (*app.App, func(), error) {
	config.LoadDotEnv()
	cfg, err := config.NewFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.ConfigureLogging()

	cleanup := func() {}
	var recipeClipper *clipper.Clipper
	if withImporter {
		var textGen llm.TextGenerator
		if cfg.GeminiAPIKey != "" {
			geminiClient, err := llm.NewGeminiClient(ctx, cfg)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
			}
			cleanup = func() { geminiClient.Close() }
			textGen = geminiClient
		}
		recipeClipper = clipper.NewClipper(textGen)
	}

	return app.NewApp(cfg, recipeclient.NewClient(cfg), recipeClipper), cleanup, nil
}

func initCmd() {
	initRecipeCmds()
	initPlanCmds()
	rootCmd.AddCommand(versionCmd, recipesCmd, importCmd, weekCmd, shoppingCmd, tuiCmd, mcpCmd)
}

func main() {
	initCmd()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
