package clipper

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"recipe-planner/internal/recipe"
)

// FromJSONLD reads the first schema.org Recipe published as JSON-LD in doc.
func FromJSONLD(doc *goquery.Document) (recipe.Recipe, bool) {
	var (
		found recipe.Recipe
		ok    bool
	)
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		node := findRecipeNode(data)
		if node == nil {
			return true
		}
		found, ok = recipeFromNode(node), true
		return false
	})
	return found, ok
}

func findRecipeNode(data interface{}) map[string]interface{} {
	switch v := data.(type) {
	case []interface{}:
		for _, item := range v {
			if node := findRecipeNode(item); node != nil {
				return node
			}
		}
	case map[string]interface{}:
		if isRecipeType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return findRecipeNode(graph)
		}
	}
	return nil
}

func isRecipeType(t interface{}) bool {
	for _, s := range stringList(t) {
		if s == "Recipe" {
			return true
		}
	}
	return false
}

func recipeFromNode(node map[string]interface{}) recipe.Recipe {
	r := recipe.Recipe{
		Name:            text(node["name"]),
		PreparationTime: minutes(text(node["prepTime"])),
		CookingTime:     minutes(text(node["cookTime"])),
		Servings:        firstInt(node["recipeYield"]),
		ImageURL:        imageURL(node["image"]),
	}

	r.Category = recipe.DefaultCategory
	for _, c := range stringList(node["recipeCategory"]) {
		if m := recipe.MatchCategory(c); m != recipe.DefaultCategory {
			r.Category = m
			break
		}
	}

	for _, line := range stringList(node["recipeIngredient"]) {
		r.Ingredients = append(r.Ingredients, recipe.ParseIngredientLine(line))
	}
	r.Instructions = instructions(node["recipeInstructions"])

	for _, kw := range stringList(node["keywords"]) {
		for _, tag := range strings.Split(kw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				r.Tags = append(r.Tags, tag)
			}
		}
	}
	return r
}

// instructions flattens text, HowToStep and HowToSection forms.
func instructions(v interface{}) []string {
	switch t := v.(type) {
	case string:
		var steps []string
		for _, line := range strings.Split(t, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				steps = append(steps, line)
			}
		}
		return steps
	case []interface{}:
		var steps []string
		for _, item := range t {
			steps = append(steps, instructions(item)...)
		}
		return steps
	case map[string]interface{}:
		if items, ok := t["itemListElement"]; ok {
			return instructions(items)
		}
		if s := text(t["text"]); s != "" {
			return []string{s}
		}
		if s := text(t["name"]); s != "" {
			return []string{s}
		}
	}
	return nil
}

func text(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func stringList(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		var out []string
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func imageURL(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case []interface{}:
		if len(t) > 0 {
			return imageURL(t[0])
		}
	case map[string]interface{}:
		return text(t["url"])
	}
	return ""
}

var intPattern = regexp.MustCompile(`\d+`)

func firstInt(v interface{}) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		if m := intPattern.FindString(t); m != "" {
			n, _ := strconv.Atoi(m)
			return n
		}
	case []interface{}:
		for _, item := range t {
			if n := firstInt(item); n > 0 {
				return n
			}
		}
	}
	return 0
}

var durationPattern = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// minutes converts an ISO 8601 duration such as "PT1H30M" to minutes.
func minutes(iso string) int {
	m := durationPattern.FindStringSubmatch(strings.ToUpper(iso))
	if m == nil {
		return 0
	}
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	return atoi(m[1])*24*60 + atoi(m[2])*60 + atoi(m[3])
}
