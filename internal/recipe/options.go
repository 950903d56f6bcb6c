package recipe

import "strings"

// Option is one entry of a closed picker list.
type Option struct {
	Value string
	Label string
}

// DefaultCategory is used for recipes saved without a category.
const DefaultCategory = "Other"

// DefaultUnit is the unit preselected for a new ingredient row.
const DefaultUnit = "Stueck"

// Categories lists the selectable recipe categories in display order.
var Categories = []Option{
	{Value: "Salads", Label: "Salad"},
	{Value: "Soups", Label: "Soup"},
	{Value: "Main Course", Label: "Dinner"},
	{Value: "Desserts", Label: "Dessert"},
	{Value: "Baking", Label: "Baking"},
	{Value: "Other", Label: "Other"},
}

// Units lists the selectable ingredient units.
var Units = []Option{
	{Value: "Stueck", Label: "Stueck"},
	{Value: "g", Label: "g"},
	{Value: "ml", Label: "ml"},
	{Value: "TL", Label: "TL"},
	{Value: "EL", Label: "EL"},
	{Value: "Prise", Label: "Prise"},
	{Value: "Tasse", Label: "Tasse"},
	{Value: "Liter", Label: "Liter"},
	{Value: "Dose", Label: "Dose"},
	{Value: "Bund", Label: "Bund"},
	{Value: "Schuss", Label: "Schuss"},
	{Value: "Packung", Label: "Packung"},
	{Value: "Messerspitze", Label: "Messerspitze"},
}

// LookupCategory returns the option for a category value.
func LookupCategory(value string) (Option, bool) {
	return lookup(Categories, value)
}

// CategoryLabel returns the display label of a category value, or the
// value itself for categories outside the picker.
func CategoryLabel(value string) string {
	if opt, ok := LookupCategory(value); ok {
		return opt.Label
	}
	return value
}

// CategoryIndex returns the display position of a category, or -1 if it is
// not one of the known values.
func CategoryIndex(value string) int {
	for i, o := range Categories {
		if o.Value == value {
			return i
		}
	}
	return -1
}

// IsKnownUnit reports whether value is one of the selectable units.
func IsKnownUnit(value string) bool {
	_, ok := lookup(Units, value)
	return ok
}

func lookup(options []Option, value string) (Option, bool) {
	for _, o := range options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// CanonicalUnit maps a unit written in any case to its picker value.
func CanonicalUnit(s string) (string, bool) {
	for _, o := range Units {
		if strings.EqualFold(o.Value, s) {
			return o.Value, true
		}
	}
	return "", false
}

// MatchCategory maps a free-text category to a picker value by value or
// label, ignoring case and a trailing plural "s". Unknown text yields
// DefaultCategory.
func MatchCategory(s string) string {
	s = strings.TrimSpace(s)
	for _, o := range Categories {
		if strings.EqualFold(o.Value, s) || strings.EqualFold(o.Label, s) ||
			strings.EqualFold(strings.TrimSuffix(o.Value, "s"), s) {
			return o.Value
		}
	}
	return DefaultCategory
}
