package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"recipe-planner/internal/database"
	"recipe-planner/internal/recipe"
)

const recipeColumns = `id, name, category, ingredients, instructions, preparation_time,
	cooking_time, servings, image_url, tags, created_at, updated_at`

const (
	sqlListRecipes       = `SELECT ` + recipeColumns + ` FROM recipes ORDER BY id`
	sqlGetRecipe         = `SELECT ` + recipeColumns + ` FROM recipes WHERE id = ?`
	sqlDeleteRecipe      = `DELETE FROM recipes WHERE id = ?`
	sqlListIngredients   = `SELECT id, ingredients FROM recipes ORDER BY id`
	sqlUpdateIngredients = `UPDATE recipes SET ingredients = ? WHERE id = ?`
)

const sqlInsertRecipe = `INSERT INTO recipes (name, category, ingredients, instructions,
	preparation_time, cooking_time, servings, image_url, tags, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

const sqlUpdateRecipe = `UPDATE recipes SET name = ?, category = ?, ingredients = ?, instructions = ?,
	preparation_time = ?, cooking_time = ?, servings = ?, image_url = ?, tags = ?, updated_at = ?
	WHERE id = ?`

// SQLite stores recipes in the sqlite database. List-valued fields are
// kept as JSON text columns.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite creates a new SQLite store over an open database.
func NewSQLite(d *database.DB) *SQLite {
	return &SQLite{db: d.SQL, now: time.Now}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecipe(row rowScanner) (recipe.Recipe, error) {
	var (
		r                        recipe.Recipe
		ingredients, steps, tags string
		createdAt, updatedAt     string
	)
	err := row.Scan(&r.ID, &r.Name, &r.Category, &ingredients, &steps, &r.PreparationTime,
		&r.CookingTime, &r.Servings, &r.ImageURL, &tags, &createdAt, &updatedAt)
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal([]byte(ingredients), &r.Ingredients); err != nil {
		return r, fmt.Errorf("failed to decode ingredients of recipe %d: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(steps), &r.Instructions); err != nil {
		return r, fmt.Errorf("failed to decode instructions of recipe %d: %w", r.ID, err)
	}
	if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
		return r, fmt.Errorf("failed to decode tags of recipe %d: %w", r.ID, err)
	}
	r.CreatedAt, _ = time.Parse(database.TimeLayout, createdAt)
	r.UpdatedAt, _ = time.Parse(database.TimeLayout, updatedAt)
	return r, nil
}

type encodedLists struct {
	ingredients, instructions, tags string
}

func encodeLists(r recipe.Recipe) (encodedLists, error) {
	var out encodedLists
	b, err := json.Marshal(r.Ingredients)
	if err != nil {
		return out, fmt.Errorf("failed to encode ingredients: %w", err)
	}
	out.ingredients = string(b)
	if b, err = json.Marshal(r.Instructions); err != nil {
		return out, fmt.Errorf("failed to encode instructions: %w", err)
	}
	out.instructions = string(b)
	if b, err = json.Marshal(r.Tags); err != nil {
		return out, fmt.Errorf("failed to encode tags: %w", err)
	}
	out.tags = string(b)
	return out, nil
}

func (s *SQLite) List(ctx context.Context) ([]recipe.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, sqlListRecipes)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	defer rows.Close()

	out := []recipe.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) Get(ctx context.Context, id int) (*recipe.Recipe, error) {
	r, err := scanRecipe(s.db.QueryRowContext(ctx, sqlGetRecipe, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}
	return &r, nil
}

func (s *SQLite) GetMany(ctx context.Context, ids []int) (map[int]recipe.Recipe, error) {
	out := make(map[int]recipe.Recipe, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE id IN (` + placeholders + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		out[r.ID] = r
	}
	return out, rows.Err()
}

func (s *SQLite) Create(ctx context.Context, r recipe.Recipe) (int, error) {
	r = prepareNew(r)
	lists, err := encodeLists(r)
	if err != nil {
		return 0, err
	}
	now := s.now().UTC().Format(database.TimeLayout)

	res, err := s.db.ExecContext(ctx, sqlInsertRecipe, r.Name, r.Category, lists.ingredients,
		lists.instructions, r.PreparationTime, r.CookingTime, r.Servings, r.ImageURL, lists.tags, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to insert recipe: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read recipe id: %w", err)
	}
	return int(id), nil
}

func (s *SQLite) Update(ctx context.Context, id int, p Patch) (*recipe.Recipe, error) {
	if p.Empty() {
		return nil, ErrEmptyPatch
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := scanRecipe(tx.QueryRowContext(ctx, sqlGetRecipe, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}

	updated := prepareNew(p.Apply(current))
	updated.UpdatedAt = s.now().UTC().Truncate(time.Second)
	lists, err := encodeLists(updated)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, sqlUpdateRecipe, updated.Name, updated.Category, lists.ingredients,
		lists.instructions, updated.PreparationTime, updated.CookingTime, updated.Servings,
		updated.ImageURL, lists.tags, updated.UpdatedAt.Format(database.TimeLayout), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit recipe %d: %w", id, err)
	}
	return &updated, nil
}

func (s *SQLite) Delete(ctx context.Context, id int) (bool, error) {
	res, err := s.db.ExecContext(ctx, sqlDeleteRecipe, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete recipe %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// MigrateLegacyIngredients rewrites ingredient lists that still use the
// combined amountAndUnit field. It returns the number of recipes changed.
func (s *SQLite) MigrateLegacyIngredients(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, sqlListIngredients)
	if err != nil {
		return 0, fmt.Errorf("failed to list ingredients: %w", err)
	}

	type pending struct {
		id   int
		json string
	}
	var updates []pending
	for rows.Next() {
		var (
			id  int
			raw string
		)
		if err := rows.Scan(&id, &raw); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan ingredients: %w", err)
		}
		encoded, changed, err := migrateJSON(raw)
		if err != nil {
			log.Printf("Skipping recipe %d: %v", id, err)
			continue
		}
		if changed {
			updates = append(updates, pending{id: id, json: encoded})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read ingredients: %w", err)
	}

	for _, u := range updates {
		if _, err := s.db.ExecContext(ctx, sqlUpdateIngredients, u.json, u.id); err != nil {
			return 0, fmt.Errorf("failed to update ingredients of recipe %d: %w", u.id, err)
		}
		log.Printf("Migrated ingredients of recipe %d", u.id)
	}
	return len(updates), nil
}

// migrateJSON converts a JSON ingredient list in the legacy shape.
func migrateJSON(raw string) (string, bool, error) {
	var rows []recipe.LegacyIngredient
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return "", false, fmt.Errorf("failed to decode ingredients: %w", err)
	}
	ings, changed := recipe.MigrateIngredients(rows)
	if !changed {
		return raw, false, nil
	}
	b, err := json.Marshal(ings)
	if err != nil {
		return "", false, fmt.Errorf("failed to encode ingredients: %w", err)
	}
	return string(b), true, nil
}
