package planner

import (
	"net/url"
	"time"

	"recipe-planner/internal/mealplan"
)

// ReturnToPlanner marks navigation that started from a planner day.
const ReturnToPlanner = "planner"

// PlanTarget travels with navigation from a planner day through the
// cookbook to a recipe detail view, so the detail view knows which day a
// recipe should be planned on.
type PlanTarget struct {
	ReturnTo string
	Date     time.Time
}

// TargetFor returns the target for adding a meal on date.
func TargetFor(date time.Time) PlanTarget {
	return PlanTarget{ReturnTo: ReturnToPlanner, Date: date}
}

// Valid reports whether the target names a planner day.
func (t PlanTarget) Valid() bool {
	return t.ReturnTo == ReturnToPlanner && !t.Date.IsZero()
}

// Query encodes the target as navigation parameters.
func (t PlanTarget) Query() url.Values {
	q := url.Values{}
	if t.ReturnTo != "" {
		q.Set("returnTo", t.ReturnTo)
	}
	if !t.Date.IsZero() {
		q.Set("date", mealplan.DateKey(t.Date))
	}
	return q
}

// ParsePlanTarget decodes navigation parameters. A missing or malformed
// date leaves Date zero, which makes the target invalid.
func ParsePlanTarget(q url.Values) PlanTarget {
	t := PlanTarget{ReturnTo: q.Get("returnTo")}
	if d, err := time.ParseInLocation(mealplan.DateKeyLayout, q.Get("date"), time.Local); err == nil {
		t.Date = d
	}
	return t
}
