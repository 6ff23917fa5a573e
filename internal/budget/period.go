package budget

import (
	"time"

	"github.com/routeforge/gateway/types"
)

// windowFor derives the current period window [start, end) for the given
// period in loc, deterministically from wall clock: daily is the
// calendar day, weekly is Monday-aligned, monthly is first-of-month,
// yearly is first-of-year.
func windowFor(period types.BudgetPeriod, now time.Time, loc *time.Location) (start, end time.Time) {
	now = now.In(loc)

	switch period {
	case types.BudgetPeriodDaily:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		end = start.AddDate(0, 0, 1)
	case types.BudgetPeriodWeekly:
		dayOfWeek := int(now.Weekday())
		// time.Weekday: Sunday=0 ... Saturday=6; days-since-Monday treats Sunday as 6.
		daysSinceMonday := (dayOfWeek + 6) % 7
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		start = dayStart.AddDate(0, 0, -daysSinceMonday)
		end = start.AddDate(0, 0, 7)
	case types.BudgetPeriodMonthly:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0)
	case types.BudgetPeriodYearly:
		start = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		end = start.AddDate(1, 0, 0)
	default:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		end = start.AddDate(0, 1, 0)
	}
	return start, end
}
