package planner

import "time"

// WorkWeekDays is the number of days shown by the planner, Monday to Friday.
const WorkWeekDays = 5

// CurrentWeek returns Monday to Friday of the week containing now, at
// midnight in now's location. Sunday belongs to the week that started on
// the Monday before it.
func CurrentWeek(now time.Time) []time.Time {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := time.Date(now.Year(), now.Month(), now.Day()-(weekday-1), 0, 0, 0, 0, now.Location())

	week := make([]time.Time, 0, WorkWeekDays)
	for i := 0; i < WorkWeekDays; i++ {
		week = append(week, monday.AddDate(0, 0, i))
	}
	return week
}

// FormatDate renders t as "DD.MM".
func FormatDate(t time.Time) string {
	return t.Format("02.01")
}

// DayName returns the full English weekday name of t.
func DayName(t time.Time) string {
	return t.Weekday().String()
}

// WeekRange renders the first and last day of week as "DD.MM - DD.MM".
func WeekRange(week []time.Time) string {
	if len(week) == 0 {
		return ""
	}
	return FormatDate(week[0]) + " - " + FormatDate(week[len(week)-1])
}
