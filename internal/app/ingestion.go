package app

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"recipe-planner/internal/recipe"
	"recipe-planner/internal/storage"
)

// ImportResult reports the outcome of importing one URL.
type ImportResult struct {
	URL    string
	Recipe *recipe.Recipe
	Err    error
}

// ImportAll imports each URL in turn, waiting delay between requests to
// stay under the model's rate limit. A failed URL does not stop the rest.
func (a *App) ImportAll(ctx context.Context, urls []string, delay time.Duration) []ImportResult {
	results := make([]ImportResult, 0, len(urls))
	for i, url := range urls {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				results = append(results, ImportResult{URL: url, Err: ctx.Err()})
				continue
			case <-time.After(delay):
			}
		}

		rec, err := a.Import(ctx, url)
		if err != nil {
			log.Printf("Failed to import '%s': %v", url, err)
		}
		results = append(results, ImportResult{URL: url, Recipe: rec, Err: err})
	}
	return results
}

// MigrateIngredients converts legacy ingredient rows in store to the
// structured amount and unit form.
func MigrateIngredients(ctx context.Context, store storage.Store) (int, error) {
	log.Println("Starting ingredient migration...")
	n, err := store.MigrateLegacyIngredients(ctx)
	if err != nil {
		return n, fmt.Errorf("failed to migrate ingredients: %w", err)
	}
	log.Printf("Migration complete. Migrated %d recipes.", n)
	return n, nil
}
