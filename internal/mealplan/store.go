// Package mealplan holds the in-memory weekly meal plan: which recipes are
// planned on which calendar day, and at how many servings.
package mealplan

import (
	"sort"
	"sync"
	"time"
)

// DateKeyLayout is the canonical layout of a plan's day index.
const DateKeyLayout = "2006-01-02"

// Entry is one recipe planned for one calendar day.
type Entry struct {
	RecipeID string    `json:"id"`
	Servings int       `json:"servings"`
	Date     time.Time `json:"date"`
	Name     string    `json:"name"`
}

// Key returns the date key the entry is filed under.
func (e Entry) Key() string {
	return DateKey(e.Date)
}

// Plan maps a date key to the entries planned for that day, in plan order.
type Plan map[string][]Entry

// Observer is notified with a snapshot of the plan after every mutation.
type Observer func(Plan)

// DateKey returns the YYYY-MM-DD key of t's own calendar day.
func DateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// Store is the single source of truth for planned meals.
// Mutations are serialized. Observers run on the mutating goroutine before
// the mutator returns, unless a delivery round is already in progress (an
// observer mutating the store, or a concurrent caller), in which case that
// round delivers the snapshot after the ones queued before it.
type Store struct {
	mu        sync.Mutex
	plan      Plan
	observers map[int]Observer
	order     []int
	nextID    int

	// pending notifications, delivered in mutation order
	pending     []Plan
	dispatching bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		plan:      make(Plan),
		observers: make(map[int]Observer),
	}
}

// AddPlannedMeal files entry under its date key. An entry for the same
// recipe on the same day is replaced in place, keeping its position.
func (s *Store) AddPlannedMeal(entry Entry) {
	s.mutate(func(p Plan) {
		key := entry.Key()
		day := p[key]
		for i, existing := range day {
			if existing.RecipeID == entry.RecipeID {
				updated := make([]Entry, len(day))
				copy(updated, day)
				updated[i] = entry
				p[key] = updated
				return
			}
		}
		updated := make([]Entry, len(day), len(day)+1)
		copy(updated, day)
		p[key] = append(updated, entry)
	})
}

// RemovePlannedMeal drops recipeID from the day at dateKey. Absent days or
// recipes are ignored.
func (s *Store) RemovePlannedMeal(dateKey, recipeID string) {
	s.mutate(func(p Plan) {
		day, ok := p[dateKey]
		if !ok {
			return
		}
		filtered := make([]Entry, 0, len(day))
		for _, e := range day {
			if e.RecipeID != recipeID {
				filtered = append(filtered, e)
			}
		}
		p[dateKey] = filtered
	})
}

// Clear discards every planned meal.
func (s *Store) Clear() {
	s.mutate(func(p Plan) {
		for k := range p {
			delete(p, k)
		}
	})
}

// GetMealsForDate returns the meals planned on t's calendar day.
// The result is never nil.
func (s *Store) GetMealsForDate(t time.Time) []Entry {
	return s.MealsForKey(DateKey(t))
}

// MealsForKey returns the meals planned under dateKey. The result is never nil.
func (s *Store) MealsForKey(dateKey string) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneDay(s.plan[dateKey])
}

// Snapshot returns a deep copy of the whole plan.
func (s *Store) Snapshot() Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan.Clone()
}

// Len returns the number of planned entries across all days.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, day := range s.plan {
		n += len(day)
	}
	return n
}

// Subscribe registers obs and returns a function that removes it again.
func (s *Store) Subscribe(obs Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = obs
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.observers, id)
			for i, oid := range s.order {
				if oid == id {
					s.order = append(s.order[:i:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

func (s *Store) mutate(apply func(Plan)) {
	s.mu.Lock()
	apply(s.plan)
	s.pending = append(s.pending, s.plan.Clone())
	if s.dispatching {
		// an observer further up the stack is delivering; it picks this up
		s.mu.Unlock()
		return
	}
	s.dispatching = true
	s.mu.Unlock()

	s.dispatch()
}

func (s *Store) dispatch() {
	drained := false
	defer func() {
		s.mu.Lock()
		s.dispatching = false
		if !drained {
			// an observer panicked; its round is abandoned
			s.pending = nil
		}
		s.mu.Unlock()
	}()
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			drained = true
			s.mu.Unlock()
			return
		}
		snap := s.pending[0]
		s.pending = s.pending[1:]
		observers := make([]Observer, 0, len(s.order))
		for _, id := range s.order {
			observers = append(observers, s.observers[id])
		}
		s.mu.Unlock()

		for _, obs := range observers {
			obs(snap.Clone())
		}
	}
}

// Clone returns a deep copy of p.
func (p Plan) Clone() Plan {
	out := make(Plan, len(p))
	for k, day := range p {
		out[k] = cloneDay(day)
	}
	return out
}

// Keys returns the plan's date keys in ascending order.
func (p Plan) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Meals returns the entries under dateKey. The result is never nil.
func (p Plan) Meals(dateKey string) []Entry {
	return cloneDay(p[dateKey])
}

func cloneDay(day []Entry) []Entry {
	out := make([]Entry, len(day))
	copy(out, day)
	return out
}
