package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"recipe-planner/internal/recipe"
)

// Memory keeps recipes in process memory. It is used for development and
// tests.
type Memory struct {
	mu      sync.RWMutex
	recipes map[int]recipe.Recipe
	legacy  map[int][]recipe.LegacyIngredient
	nextID  int
	now     func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		recipes: make(map[int]recipe.Recipe),
		legacy:  make(map[int][]recipe.LegacyIngredient),
		nextID:  1,
		now:     time.Now,
	}
}

func (m *Memory) List(ctx context.Context) ([]recipe.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]recipe.Recipe, 0, len(m.recipes))
	for _, r := range m.recipes {
		out = append(out, copyRecipe(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) Get(ctx context.Context, id int) (*recipe.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.recipes[id]
	if !ok {
		return nil, nil
	}
	r = copyRecipe(r)
	return &r, nil
}

func (m *Memory) GetMany(ctx context.Context, ids []int) (map[int]recipe.Recipe, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int]recipe.Recipe, len(ids))
	for _, id := range ids {
		if r, ok := m.recipes[id]; ok {
			out[id] = copyRecipe(r)
		}
	}
	return out, nil
}

func (m *Memory) Create(ctx context.Context, r recipe.Recipe) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r = prepareNew(copyRecipe(r))
	r.ID = m.nextID
	m.nextID++
	now := m.now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	m.recipes[r.ID] = r
	return r.ID, nil
}

func (m *Memory) Update(ctx context.Context, id int, p Patch) (*recipe.Recipe, error) {
	if p.Empty() {
		return nil, ErrEmptyPatch
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.recipes[id]
	if !ok {
		return nil, nil
	}
	r = copyRecipe(p.Apply(r))
	r.UpdatedAt = m.now().UTC()
	m.recipes[id] = r
	if p.Ingredients != nil {
		delete(m.legacy, id)
	}
	out := copyRecipe(r)
	return &out, nil
}

func (m *Memory) Delete(ctx context.Context, id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.recipes[id]; !ok {
		return false, nil
	}
	delete(m.recipes, id)
	delete(m.legacy, id)
	return true, nil
}

// ImportLegacy stores a recipe whose ingredients are still in the legacy
// shape, the way rows written by older clients look.
func (m *Memory) ImportLegacy(r recipe.Recipe, rows []recipe.LegacyIngredient) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	r = prepareNew(r)
	r.ID = m.nextID
	m.nextID++
	r.Ingredients = []recipe.Ingredient{}
	m.recipes[r.ID] = r
	m.legacy[r.ID] = rows
	return r.ID
}

func (m *Memory) MigrateLegacyIngredients(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	migrated := 0
	for id, rows := range m.legacy {
		ings, changed := recipe.MigrateIngredients(rows)
		r := m.recipes[id]
		r.Ingredients = ings
		m.recipes[id] = r
		delete(m.legacy, id)
		if changed {
			migrated++
		}
	}
	return migrated, nil
}

func copyRecipe(r recipe.Recipe) recipe.Recipe {
	if r.Ingredients != nil {
		r.Ingredients = append([]recipe.Ingredient{}, r.Ingredients...)
	}
	if r.Instructions != nil {
		r.Instructions = append([]string{}, r.Instructions...)
	}
	if r.Tags != nil {
		r.Tags = append([]string{}, r.Tags...)
	}
	return r
}
