package recipe

import (
	"regexp"
	"strconv"
	"strings"
)

var amountUnitPattern = regexp.MustCompile(`^([\d.,]+)\s*([a-zA-Z]+)`)

// ParseAmountUnit splits the legacy combined "amountAndUnit" string
// (e.g. "200 g", "1,5l") into a numeric amount and a lower-cased unit.
// Strings that do not start with a number followed by a unit yield (0, "").
func ParseAmountUnit(s string) (float64, string) {
	m := amountUnitPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, ""
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, ""
	}
	return amount, strings.ToLower(m[2])
}

// LegacyIngredient is the pre-migration ingredient shape, where amount and
// unit were stored as one free-text field.
type LegacyIngredient struct {
	Name          string   `json:"name"`
	AmountAndUnit *string  `json:"amountAndUnit,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	Unit          string   `json:"unit,omitempty"`
}

// MigrateIngredients converts legacy ingredient rows into the structured
// form. It reports whether any row had to be converted.
func MigrateIngredients(rows []LegacyIngredient) ([]Ingredient, bool) {
	out := make([]Ingredient, 0, len(rows))
	changed := false
	for _, row := range rows {
		if row.AmountAndUnit != nil {
			amount, unit := ParseAmountUnit(*row.AmountAndUnit)
			out = append(out, Ingredient{Name: row.Name, Amount: amount, Unit: unit})
			changed = true
			continue
		}
		ing := Ingredient{Name: row.Name, Unit: row.Unit}
		if row.Amount != nil {
			ing.Amount = *row.Amount
		}
		out = append(out, ing)
	}
	return out, changed
}

// ParseIngredientLine reads a free-text ingredient such as "200 g Mehl" or
// "2 Eier". A leading word that is not a known unit stays part of the name
// and the amount is counted in pieces.
func ParseIngredientLine(line string) Ingredient {
	line = strings.TrimSpace(line)
	m := amountUnitPattern.FindStringSubmatchIndex(line)
	if m == nil {
		if amount, rest, ok := leadingNumber(line); ok {
			return Ingredient{Name: rest, Amount: amount, Unit: DefaultUnit}
		}
		return Ingredient{Name: line}
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(line[m[2]:m[3]], ",", "."), 64)
	if err != nil {
		return Ingredient{Name: line}
	}
	word := line[m[4]:m[5]]
	rest := strings.TrimSpace(line[m[5]:])
	if unit, ok := CanonicalUnit(word); ok {
		return Ingredient{Name: rest, Amount: amount, Unit: unit}
	}
	return Ingredient{Name: strings.TrimSpace(line[m[4]:]), Amount: amount, Unit: DefaultUnit}
}

var leadingNumberPattern = regexp.MustCompile(`^([\d.,]+)\s+(.+)$`)

func leadingNumber(line string) (float64, string, bool) {
	m := leadingNumberPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, "", false
	}
	return amount, strings.TrimSpace(m[2]), true
}
