// Package cookbook implements the recipe browsing, search and detail
// workflows that sit between the recipe service and the planner.
package cookbook

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"recipe-planner/internal/recipe"
	"recipe-planner/internal/recipeclient"
)

// PreviewLimit is the number of recipes shown per category before the
// "View N more" link.
const PreviewLimit = 6

// ErrStale is returned when a load finished after its view was reactivated
// or deactivated. Its result has been discarded.
var ErrStale = errors.New("stale response discarded")

// Group is one category section of the cookbook.
type Group struct {
	Category string
	Label    string
	Recipes  []recipe.Recipe
	Total    int
	More     int
}

// MoreLabel returns the text of the overflow link, or "" if every recipe
// of the group is shown.
func (g Group) MoreLabel() string {
	if g.More <= 0 {
		return ""
	}
	return fmt.Sprintf("View %d more", g.More)
}

// GroupByCategory groups recipes by category, showing at most limit recipes
// per group. Known categories come first in picker order, any others follow
// alphabetically. A limit <= 0 shows every recipe.
func GroupByCategory(recipes []recipe.Recipe, limit int) []Group {
	byCategory := make(map[string][]recipe.Recipe)
	for _, r := range recipes {
		c := r.CategoryOrDefault()
		byCategory[c] = append(byCategory[c], r)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool {
		a, b := recipe.CategoryIndex(categories[i]), recipe.CategoryIndex(categories[j])
		switch {
		case a >= 0 && b >= 0:
			return a < b
		case a >= 0:
			return true
		case b >= 0:
			return false
		}
		return categories[i] < categories[j]
	})

	groups := make([]Group, 0, len(categories))
	for _, c := range categories {
		all := byCategory[c]
		shown := all
		if limit > 0 && len(all) > limit {
			shown = all[:limit]
		}
		groups = append(groups, Group{
			Category: c,
			Label:    recipe.CategoryLabel(c),
			Recipes:  shown,
			Total:    len(all),
			More:     len(all) - len(shown),
		})
	}
	return groups
}

// Search returns the recipes whose name, category or any tag contains
// query, ignoring case. A blank query matches nothing.
func Search(recipes []recipe.Recipe, query string) []recipe.Recipe {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []recipe.Recipe{}
	}

	results := []recipe.Recipe{}
	for _, r := range recipes {
		if matches(r, q) {
			results = append(results, r)
		}
	}
	return results
}

func matches(r recipe.Recipe, q string) bool {
	if strings.Contains(strings.ToLower(r.Name), q) || strings.Contains(strings.ToLower(r.Category), q) {
		return true
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// InCategory returns every recipe of one category, the target of a
// "View N more" link.
func InCategory(recipes []recipe.Recipe, category string) []recipe.Recipe {
	var out []recipe.Recipe
	for _, r := range recipes {
		if r.CategoryOrDefault() == category {
			out = append(out, r)
		}
	}
	return out
}

// Browser holds the recipe collection of a cookbook or search view. The
// collection is fetched once per activation. Each activation starts a new
// generation; a fetch that completes after a newer activation, or after the
// view was deactivated, is dropped.
type Browser struct {
	client recipeclient.Client

	mu      sync.Mutex
	gen     uint64
	active  bool
	recipes []recipe.Recipe
	err     error
}

// NewBrowser creates a new Browser.
func NewBrowser(client recipeclient.Client) *Browser {
	return &Browser{client: client}
}

// Activate fetches the collection for a new activation of the view.
func (b *Browser) Activate(ctx context.Context) error {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.active = true
	b.mu.Unlock()

	recipes, err := b.client.ListRecipes(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.active || gen != b.gen {
		log.Debugf("Dropping recipe list of generation %d", gen)
		return ErrStale
	}
	if err != nil {
		b.err = err
		return fmt.Errorf("failed to fetch recipes: %w", err)
	}
	b.recipes = recipes
	b.err = nil
	return nil
}

// Deactivate marks the view as gone. In-flight fetches will be dropped.
func (b *Browser) Deactivate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	b.active = false
}

// Recipes returns the collection of the latest completed activation.
func (b *Browser) Recipes() []recipe.Recipe {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]recipe.Recipe, len(b.recipes))
	copy(out, b.recipes)
	return out
}

// Err returns the error of the latest completed activation, if any.
func (b *Browser) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Browser) Groups() []Group {
	return GroupByCategory(b.Recipes(), PreviewLimit)
}

func (b *Browser) Search(query string) []recipe.Recipe {
	return Search(b.Recipes(), query)
}

func (b *Browser) Category(name string) []recipe.Recipe {
	return InCategory(b.Recipes(), name)
}
