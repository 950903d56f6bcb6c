package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"recipe-planner/internal/cookbook"
	"recipe-planner/internal/recipe"
	"recipe-planner/internal/recipeclient"
)

var recipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Manage recipes",
	Long:  `List, show, search and delete the recipes stored by the recipe service.`,
}

var recipesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all recipes grouped by category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		limit, _ := cmd.Flags().GetInt("limit")
		recipes, err := a.Client().ListRecipes(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list recipes: %s", recipeclient.UserMessage(err))
		}
		if len(recipes) == 0 {
			fmt.Println("No recipes found.")
			return nil
		}

		for _, g := range cookbook.GroupByCategory(recipes, limit) {
			fmt.Printf("%s (%d)\n", g.Label, g.Total)
			for _, r := range g.Recipes {
				fmt.Printf("  #%-4d %s\n", r.ID, r.Name)
			}
			if more := g.MoreLabel(); more != "" {
				fmt.Printf("  %s: recipe-planner recipes search %q\n", more, g.Category)
			}
		}
		return nil
	},
}

var recipesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		rec, err := a.Client().GetRecipe(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get recipe %s: %s", args[0], recipeclient.UserMessage(err))
		}

		output, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format recipe output: %w", err)
		}
		fmt.Println(string(output))
		return nil
	},
}

var recipesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a recipe",
	Long:  `Deletes a recipe from the recipe service. Meal plans are not touched.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := a.Client().DeleteRecipe(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete recipe %s: %s", args[0], recipeclient.UserMessage(err))
		}
		fmt.Printf("Recipe %s deleted.\n", args[0])
		return nil
	},
}

var recipesSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find recipes by name, category or tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		recipes, err := a.Client().ListRecipes(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to search recipes: %s", recipeclient.UserMessage(err))
		}

		results := cookbook.Search(recipes, args[0])
		if len(results) == 0 {
			fmt.Println("No recipes found.")
			return nil
		}
		for _, r := range results {
			fmt.Printf("#%-4d %s (%s)\n", r.ID, r.Name, recipe.CategoryLabel(r.CategoryOrDefault()))
		}
		return nil
	},
}

var recipesCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the recipe categories and units",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Categories:")
		for _, o := range recipe.Categories {
			fmt.Printf("  %-12s %s\n", o.Value, o.Label)
		}
		fmt.Println("Units:")
		for _, o := range recipe.Units {
			fmt.Printf("  %s\n", o.Value)
		}
	},
}

var importCmd = &cobra.Command{
	Use:   "import [url...]",
	Short: "Import recipes from web pages",
	Long: `Fetches each page, extracts the recipe from its structured data (or with
Gemini when GEMINI_API_KEY is set) and saves it to the recipe service.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer cleanup()

		delay, _ := cmd.Flags().GetDuration("delay")
		failed := 0
		for _, res := range a.ImportAll(cmd.Context(), args, delay) {
			if res.Err != nil {
				failed++
				fmt.Printf("✗ %s: %v\n", res.URL, res.Err)
				continue
			}
			fmt.Printf("✓ %s: #%d %s\n", res.URL, res.Recipe.ID, res.Recipe.Name)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d imports failed", failed, len(args))
		}
		return nil
	},
}

func initRecipeCmds() {
	recipesListCmd.Flags().Int("limit", cookbook.PreviewLimit, "Recipes shown per category (0 shows all)")
	importCmd.Flags().Duration("delay", 5*time.Second, "Pause between imports")
	recipesCmd.AddCommand(recipesListCmd, recipesShowCmd, recipesDeleteCmd, recipesSearchCmd, recipesCategoriesCmd)
}
