package budget

import (
	"testing"
	"time"

	"github.com/routeforge/gateway/types"
)

func TestWindowFor_Daily(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 7, 30, 14, 22, 0, 0, time.UTC)
	start, end := windowFor(types.BudgetPeriodDaily, now, time.UTC)

	wantStart := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Fatalf("got [%v, %v), want [%v, %v)", start, end, wantStart, wantEnd)
	}
}

func TestWindowFor_WeeklyMondayAligned(t *testing.T) {
	t.Parallel()

	// 2026-07-30 is a Thursday.
	now := time.Date(2026, 7, 30, 14, 22, 0, 0, time.UTC)
	start, end := windowFor(types.BudgetPeriodWeekly, now, time.UTC)

	wantStart := time.Date(2026, 7, 27, 0, 0, 0, 0, time.UTC) // Monday
	wantEnd := wantStart.AddDate(0, 0, 7)
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Fatalf("got [%v, %v), want [%v, %v)", start, end, wantStart, wantEnd)
	}
	if start.Weekday() != time.Monday {
		t.Fatalf("expected Monday-aligned start, got %s", start.Weekday())
	}
}

func TestWindowFor_Monthly(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 7, 30, 14, 22, 0, 0, time.UTC)
	start, end := windowFor(types.BudgetPeriodMonthly, now, time.UTC)

	wantStart := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Fatalf("got [%v, %v), want [%v, %v)", start, end, wantStart, wantEnd)
	}
}

func TestWindowFor_Yearly(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 7, 30, 14, 22, 0, 0, time.UTC)
	start, end := windowFor(types.BudgetPeriodYearly, now, time.UTC)

	wantStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) || !end.Equal(wantEnd) {
		t.Fatalf("got [%v, %v), want [%v, %v)", start, end, wantStart, wantEnd)
	}
}
