package mealplan

import (
	"reflect"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(DateKeyLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.RecipeID)
	}
	return out
}

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	late := time.Date(2024, 1, 1, 23, 59, 0, 0, loc)
	if got := DateKey(late); got != "2024-01-01" {
		t.Errorf("Expected time of day to be discarded, got %s", got)
	}
}

func TestAddPlannedMeal(t *testing.T) {
	t.Run("AppendsInCallOrder", func(t *testing.T) {
		s := NewStore()
		for _, id := range []string{"3", "1", "2"} {
			s.AddPlannedMeal(Entry{RecipeID: id, Servings: 2, Date: day("2024-01-01")})
		}
		if got := ids(s.GetMealsForDate(day("2024-01-01"))); !reflect.DeepEqual(got, []string{"3", "1", "2"}) {
			t.Errorf("Expected call order [3 1 2], got %v", got)
		}
	})

	t.Run("ReplacesInPlace", func(t *testing.T) {
		s := NewStore()
		s.AddPlannedMeal(Entry{RecipeID: "5", Servings: 2, Date: day("2024-01-01"), Name: "Soup"})
		s.AddPlannedMeal(Entry{RecipeID: "7", Servings: 1, Date: day("2024-01-01")})
		s.AddPlannedMeal(Entry{RecipeID: "5", Servings: 6, Date: day("2024-01-01").Add(10 * time.Hour), Name: "Soup v2"})

		meals := s.GetMealsForDate(day("2024-01-01"))
		if len(meals) != 2 {
			t.Fatalf("Expected 2 entries, got %d", len(meals))
		}
		if meals[0].RecipeID != "5" || meals[0].Servings != 6 || meals[0].Name != "Soup v2" {
			t.Errorf("Expected first entry to be the updated recipe 5, got %+v", meals[0])
		}
	})

	t.Run("OtherDaysUntouched", func(t *testing.T) {
		s := NewStore()
		s.AddPlannedMeal(Entry{RecipeID: "5", Servings: 2, Date: day("2024-01-01")})
		before := s.GetMealsForDate(day("2024-01-01"))
		s.AddPlannedMeal(Entry{RecipeID: "5", Servings: 3, Date: day("2024-01-02")})

		if !reflect.DeepEqual(before, s.GetMealsForDate(day("2024-01-01"))) {
			t.Error("Expected Monday to be unchanged by a Tuesday insert")
		}
		if s.Len() != 2 {
			t.Errorf("Expected 2 entries overall, got %d", s.Len())
		}
	})
}

func TestRemovePlannedMeal(t *testing.T) {
	s := NewStore()
	s.AddPlannedMeal(Entry{RecipeID: "5", Servings: 2, Date: day("2024-01-01")})
	s.AddPlannedMeal(Entry{RecipeID: "7", Servings: 1, Date: day("2024-01-01")})

	t.Run("MissingIDIsNoop", func(t *testing.T) {
		before := s.MealsForKey("2024-01-01")
		s.RemovePlannedMeal("2024-01-01", "99")
		if !reflect.DeepEqual(before, s.MealsForKey("2024-01-01")) {
			t.Error("Expected day to be unchanged")
		}
	})

	t.Run("MissingDayIsNoop", func(t *testing.T) {
		s.RemovePlannedMeal("2030-01-01", "5")
		if _, ok := s.Snapshot()["2030-01-01"]; ok {
			t.Error("Expected no key to be created for a missing day")
		}
	})

	t.Run("Removes", func(t *testing.T) {
		s.RemovePlannedMeal("2024-01-01", "5")
		if got := ids(s.MealsForKey("2024-01-01")); !reflect.DeepEqual(got, []string{"7"}) {
			t.Errorf("Expected [7], got %v", got)
		}
	})
}

func TestClear(t *testing.T) {
	s := NewStore()
	s.AddPlannedMeal(Entry{RecipeID: "5", Servings: 2, Date: day("2024-01-01")})
	s.Clear()

	meals := s.GetMealsForDate(day("2024-01-01"))
	if meals == nil || len(meals) != 0 {
		t.Errorf("Expected an empty non-nil slice, got %#v", meals)
	}
	if len(s.Snapshot()) != 0 {
		t.Error("Expected an empty plan")
	}
}

func TestGetMealsForDateReturnsCopy(t *testing.T) {
	s := NewStore()
	s.AddPlannedMeal(Entry{RecipeID: "5", Servings: 2, Date: day("2024-01-01")})

	meals := s.GetMealsForDate(day("2024-01-01"))
	meals[0].Servings = 100

	if s.GetMealsForDate(day("2024-01-01"))[0].Servings != 2 {
		t.Error("Expected callers not to be able to mutate the store")
	}
}

func TestSubscribe(t *testing.T) {
	t.Run("SynchronousNotification", func(t *testing.T) {
		s := NewStore()
		var seen []Plan
		s.Subscribe(func(p Plan) { seen = append(seen, p) })

		s.AddPlannedMeal(Entry{RecipeID: "5", Servings: 2, Date: day("2024-01-01")})
		if len(seen) != 1 {
			t.Fatalf("Expected a notification before AddPlannedMeal returned, got %d", len(seen))
		}
		if len(seen[0]["2024-01-01"]) != 1 {
			t.Errorf("Expected the snapshot to contain the new entry, got %v", seen[0])
		}

		s.RemovePlannedMeal("2024-01-01", "5")
		s.Clear()
		if len(seen) != 3 {
			t.Errorf("Expected one notification per mutation, got %d", len(seen))
		}
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		s := NewStore()
		calls := 0
		unsubscribe := s.Subscribe(func(Plan) { calls++ })
		s.Clear()
		unsubscribe()
		unsubscribe()
		s.Clear()
		if calls != 1 {
			t.Errorf("Expected 1 call, got %d", calls)
		}
	})

	t.Run("ObserverMayReadAndMutate", func(t *testing.T) {
		s := NewStore()
		var order []int
		s.Subscribe(func(p Plan) {
			n := len(p["2024-01-01"])
			order = append(order, n)
			if n == 1 {
				// reading inside an observer must not deadlock
				_ = s.GetMealsForDate(day("2024-01-01"))
				s.AddPlannedMeal(Entry{RecipeID: "follow-up", Servings: 1, Date: day("2024-01-01")})
			}
		})
		var second []int
		s.Subscribe(func(p Plan) { second = append(second, len(p["2024-01-01"])) })

		s.AddPlannedMeal(Entry{RecipeID: "5", Servings: 2, Date: day("2024-01-01")})

		if !reflect.DeepEqual(order, []int{1, 2}) {
			t.Errorf("Expected first observer to see [1 2], got %v", order)
		}
		if !reflect.DeepEqual(second, []int{1, 2}) {
			t.Errorf("Expected second observer to see snapshots in mutation order, got %v", second)
		}
	})

	t.Run("PanickingObserverDoesNotStallDelivery", func(t *testing.T) {
		s := NewStore()
		fail := true
		s.Subscribe(func(p Plan) {
			if fail {
				fail = false
				panic("observer failed")
			}
		})
		var seen []int
		s.Subscribe(func(p Plan) { seen = append(seen, len(p["2024-01-01"])) })

		func() {
			defer func() {
				if recover() == nil {
					t.Fatal("Expected the observer panic to reach the caller")
				}
			}()
			s.AddPlannedMeal(Entry{RecipeID: "1", Servings: 2, Date: day("2024-01-01")})
		}()

		s.AddPlannedMeal(Entry{RecipeID: "2", Servings: 2, Date: day("2024-01-01")})
		if !reflect.DeepEqual(seen, []int{2}) {
			t.Errorf("Expected delivery to resume after the panic, got %v", seen)
		}
	})
}

func TestPlanKeys(t *testing.T) {
	p := Plan{"2024-01-03": nil, "2024-01-01": nil, "2024-01-02": nil}
	if got := p.Keys(); !reflect.DeepEqual(got, []string{"2024-01-01", "2024-01-02", "2024-01-03"}) {
		t.Errorf("Expected sorted keys, got %v", got)
	}
}
