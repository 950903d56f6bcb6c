package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"recipe-planner/internal/app"
	"recipe-planner/internal/mcpserver"
	"recipe-planner/internal/planner"
	"recipe-planner/internal/recipeclient"
	"recipe-planner/internal/shopping"
	"recipe-planner/internal/tui"
)

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show the current work week",
	Long:  `Prints Monday to Friday of the current week with the meals given by --meal.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		specs, _ := cmd.Flags().GetStringArray("meal")
		if err := planMeals(cmd, a, specs); err != nil {
			return err
		}

		fmt.Printf("Week %s\n", a.Planner().WeekRange())
		for _, d := range a.Planner().Week() {
			fmt.Printf("\n%s %s\n", d.Name, d.Label)
			if len(d.Meals) == 0 {
				fmt.Println("  -")
			}
			for _, m := range d.Meals {
				fmt.Printf("  #%-4s %s (%d servings)\n", m.RecipeID, m.Name, m.Servings)
			}
		}
		return nil
	},
}

var shoppingCmd = &cobra.Command{
	Use:   "shopping",
	Short: "Build the shopping list for planned meals",
	Long: `Plans each --meal and prints the consolidated shopping list, or mails it
with --email.

A meal is written as id:servings[@day], where day is a weekday name,
DD.MM, YYYY-MM-DD or 1-5. Meals without a day fill the week in order.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cleanup()

		specs, _ := cmd.Flags().GetStringArray("meal")
		persons, _ := cmd.Flags().GetInt("persons")
		email, _ := cmd.Flags().GetString("email")

		if err := planMeals(cmd, a, specs); err != nil {
			return err
		}

		if email != "" {
			confirmation, err := a.Planner().EmailShoppingList(cmd.Context(), persons, email)
			if err != nil {
				return fmt.Errorf("%s", planner.UserMessage(err))
			}
			fmt.Println(confirmation)
			return nil
		}

		res, err := a.Planner().GenerateShoppingList(cmd.Context(), persons)
		if err != nil {
			return fmt.Errorf("%s", planner.UserMessage(err))
		}
		fmt.Printf("Shopping list %s\n\n", res.WeekRange)
		for _, item := range res.Items {
			fmt.Printf("  %s\n", shopping.FormatItem(item))
		}
		return nil
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the terminal UI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cleanup()
		return tui.ShowTUI(a.Planner(), a.Browser(), a.NewDetail())
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the planner as MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := newApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer cleanup()
		return mcpserver.NewServer(a.Client(), a.Planner(), version).Start()
	},
}

// mealSpec is one --meal value.
type mealSpec struct {
	RecipeID string
	Servings int
	Day      string
}

// parseMealSpec reads "id:servings[@day]".
func parseMealSpec(s string) (mealSpec, error) {
	var spec mealSpec
	rest := s
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		spec.Day = rest[i+1:]
		rest = rest[:i]
	}
	id, servings, ok := strings.Cut(rest, ":")
	if !ok || id == "" {
		return spec, fmt.Errorf("invalid meal %q, expected id:servings[@day]", s)
	}
	if _, err := strconv.Atoi(id); err != nil {
		return spec, fmt.Errorf("invalid recipe id in %q", s)
	}
	n, err := planner.ParseServings(servings)
	if err != nil {
		return spec, fmt.Errorf("invalid servings in %q", s)
	}
	spec.RecipeID = id
	spec.Servings = n
	return spec, nil
}

// planMeals adds each spec to the app's meal plan, looking recipes up on
// the recipe service.
func planMeals(cmd *cobra.Command, a *app.App, specs []string) error {
	week := a.Planner().Week()
	for i, s := range specs {
		spec, err := parseMealSpec(s)
		if err != nil {
			return err
		}

		day := week[i%len(week)]
		if spec.Day != "" {
			var ok bool
			if day, ok = planner.ResolveDay(week, spec.Day); !ok {
				return fmt.Errorf("unknown day %q in %q", spec.Day, s)
			}
		}

		rec, err := a.Client().GetRecipe(cmd.Context(), spec.RecipeID)
		if err != nil {
			return fmt.Errorf("recipe %s: %s", spec.RecipeID, recipeclient.UserMessage(err))
		}
		if _, err := a.Planner().Commit(planner.TargetFor(day.Date), *rec, spec.Servings); err != nil {
			return err
		}
	}
	return nil
}

func initPlanCmds() {
	weekCmd.Flags().StringArray("meal", nil, "Planned meal as id:servings[@day] (repeatable)")
	shoppingCmd.Flags().StringArray("meal", nil, "Planned meal as id:servings[@day] (repeatable)")
	shoppingCmd.Flags().Int("persons", shopping.DefaultPersons, "Head count for meals without servings")
	shoppingCmd.Flags().String("email", "", "Mail the list to this address")
}
