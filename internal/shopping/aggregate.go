package shopping

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"recipe-planner/internal/recipe"
)

// basicIngredients are assumed to be in every kitchen and never listed.
var basicIngredients = map[string]bool{
	"wasser":   true,
	"salz":     true,
	"pfeffer":  true,
	"gewuerze": true,
	"zimt":     true,
	"vanille":  true,
}

// IsBasic reports whether an ingredient is left off shopping lists.
func IsBasic(name string) bool {
	return basicIngredients[strings.ToLower(strings.TrimSpace(name))]
}

type groupKey struct {
	name string
	unit string
}

type group struct {
	name   string
	unit   string
	amount decimal.Decimal
}

// Aggregate scales each requested recipe to its target persons and sums the
// ingredients that share a trimmed, case-insensitive name and a unit.
// Requests for recipes missing from recipes are skipped. Groups keep the
// order in which they first appear.
func Aggregate(meals []MealRequest, recipes map[int]recipe.Recipe) []Item {
	var order []groupKey
	groups := make(map[groupKey]*group)

	for _, meal := range meals {
		if meal.RecipeID == 0 {
			continue
		}
		rec, ok := recipes[meal.RecipeID]
		if !ok {
			continue
		}

		target := meal.TargetPersons
		if target <= 0 {
			target = DefaultPersons
		}
		multiplier := decimal.NewFromInt(1)
		if rec.Servings > 0 {
			multiplier = decimal.NewFromInt(int64(target)).Div(decimal.NewFromInt(int64(rec.Servings)))
		}

		for _, ing := range rec.Ingredients {
			if IsBasic(ing.Name) {
				continue
			}
			key := groupKey{name: strings.ToLower(strings.TrimSpace(ing.Name)), unit: ing.Unit}
			amount := decimal.NewFromFloat(ing.Amount).Mul(multiplier)
			if g, ok := groups[key]; ok {
				g.amount = g.amount.Add(amount)
				continue
			}
			groups[key] = &group{name: strings.TrimSpace(ing.Name), unit: ing.Unit, amount: amount}
			order = append(order, key)
		}
	}

	items := make([]Item, 0, len(order))
	for _, key := range order {
		g := groups[key]
		items = append(items, Item{
			Name:   g.name,
			Amount: RoundAmount(g.amount).InexactFloat64(),
			Unit:   g.unit,
		})
	}
	return items
}

// RoundAmount rounds amounts of one or more to whole numbers and smaller
// amounts to one decimal, both half to even on the exact decimal value.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	if d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return d.RoundBank(0)
	}
	return d.RoundBank(1)
}

// SortByName orders items by name, keeping the server order for equal names.
func SortByName(items []Item) []Item {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// FormatAmount renders an amount without trailing zeros.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).String()
}

// FormatItem renders an item as "amount unit name".
func FormatItem(it Item) string {
	parts := []string{FormatAmount(it.Amount)}
	if it.Unit != "" {
		parts = append(parts, it.Unit)
	}
	parts = append(parts, it.Name)
	return strings.Join(parts, " ")
}
