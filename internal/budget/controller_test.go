package budget

import (
	"context"
	"testing"
	"time"

	"github.com/routeforge/gateway/types"
)

func newTestController() *Controller {
	return NewController(nil, nil)
}

func TestCheckAuthorization_ApprovedWhenUnderLimit(t *testing.T) {
	t.Parallel()

	c := newTestController()
	c.SetConfig(types.BudgetConfig{Level: types.BudgetLevelUser, EntityID: "u1", Period: types.BudgetPeriodMonthly, LimitUSD: 10, WarningThreshold: 0.8, Timezone: "UTC"})

	req := &types.Request{UserID: "u1", Prompt: "hi"}
	result := c.CheckAuthorization(context.Background(), req, 0.01)

	if result.Status != types.BudgetStatusApproved {
		t.Fatalf("expected approved, got %s", result.Status)
	}
}

func TestCheckAuthorization_DeniesStrictlyGreaterThanLimit(t *testing.T) {
	t.Parallel()

	c := newTestController()
	c.SetConfig(types.BudgetConfig{Level: types.BudgetLevelUser, EntityID: "u1", Period: types.BudgetPeriodMonthly, LimitUSD: 10, WarningThreshold: 0.8, Timezone: "UTC"})

	req := &types.Request{UserID: "u1", Prompt: "hi"}

	// Exactly at the limit: admits (strict > is the deny rule).
	atLimit := c.CheckAuthorization(context.Background(), req, 10.0)
	if atLimit.Status == types.BudgetStatusExceeded {
		t.Fatalf("expected admit at exactly the limit, got exceeded")
	}

	overLimit := c.CheckAuthorization(context.Background(), req, 10.01)
	if overLimit.Status != types.BudgetStatusExceeded {
		t.Fatalf("expected exceeded over the limit, got %s", overLimit.Status)
	}
	if overLimit.DeniedScope != types.BudgetLevelUser {
		t.Fatalf("expected denied scope user, got %s", overLimit.DeniedScope)
	}
}

func TestCheckAuthorization_WarningAtExactThreshold(t *testing.T) {
	t.Parallel()

	c := newTestController()
	c.SetConfig(types.BudgetConfig{Level: types.BudgetLevelUser, EntityID: "u1", Period: types.BudgetPeriodMonthly, LimitUSD: 10, WarningThreshold: 0.8, Timezone: "UTC"})

	req := &types.Request{UserID: "u1", Prompt: "hi"}
	result := c.CheckAuthorization(context.Background(), req, 8.0) // exactly 80%

	if result.Status != types.BudgetStatusWarning {
		t.Fatalf("expected warning at exactly the threshold, got %s", result.Status)
	}
}

func TestCheckAuthorization_TeamDenialBeforeBudgetTouchesProviders(t *testing.T) {
	t.Parallel()

	c := newTestController()
	c.SetConfig(types.BudgetConfig{Level: types.BudgetLevelTeam, EntityID: "t1", Period: types.BudgetPeriodMonthly, LimitUSD: 10, WarningThreshold: 0.8, Timezone: "UTC"})

	req := &types.Request{UserID: "u1", TeamID: "t1", Prompt: "hi"}
	if err := c.RecordUsage(context.Background(), req, 9.99); err != nil {
		t.Fatalf("unexpected error recording usage: %v", err)
	}

	result := c.CheckAuthorization(context.Background(), req, 0.02)
	if result.Status != types.BudgetStatusExceeded {
		t.Fatalf("expected team-scope denial, got %s", result.Status)
	}
	if result.DeniedScope != types.BudgetLevelTeam {
		t.Fatalf("expected denied scope team, got %s", result.DeniedScope)
	}
}

func TestCheckAuthorization_WarningContinuesToDeeperScope(t *testing.T) {
	t.Parallel()

	c := newTestController()
	// User scope triggers a warning; company scope still denies.
	c.SetConfig(types.BudgetConfig{Level: types.BudgetLevelUser, EntityID: "u1", Period: types.BudgetPeriodMonthly, LimitUSD: 10, WarningThreshold: 0.5, Timezone: "UTC"})
	c.SetConfig(types.BudgetConfig{Level: types.BudgetLevelCompany, EntityID: "c1", Period: types.BudgetPeriodMonthly, LimitUSD: 1, WarningThreshold: 0.8, Timezone: "UTC"})

	req := &types.Request{UserID: "u1", CompanyID: "c1", Prompt: "hi"}
	result := c.CheckAuthorization(context.Background(), req, 6.0) // 60% of user limit (warning), 600% of company limit (deny)

	if result.Status != types.BudgetStatusExceeded {
		t.Fatalf("expected company-scope denial despite user-scope warning, got %s", result.Status)
	}
	if result.WarningScope != types.BudgetLevelUser {
		t.Fatalf("expected the user-scope warning to still be recorded, got %s", result.WarningScope)
	}
	if result.DeniedScope != types.BudgetLevelCompany {
		t.Fatalf("expected denied scope company, got %s", result.DeniedScope)
	}
}

func TestRecordUsage_RejectsNegativeCost(t *testing.T) {
	t.Parallel()

	c := newTestController()
	req := &types.Request{UserID: "u1", Prompt: "hi"}

	if err := c.RecordUsage(context.Background(), req, -0.01); err == nil {
		t.Fatalf("expected error for negative cost")
	}
}

func TestRecordUsage_AcceptsZeroCost(t *testing.T) {
	t.Parallel()

	c := newTestController()
	req := &types.Request{UserID: "u1", Prompt: "hi"}

	if err := c.RecordUsage(context.Background(), req, 0); err != nil {
		t.Fatalf("expected zero cost accepted, got %v", err)
	}
}

func TestRecordUsage_MonotonicallyIncreasesUsage(t *testing.T) {
	t.Parallel()

	c := newTestController()
	req := &types.Request{UserID: "u1", Prompt: "hi"}

	for i := 0; i < 3; i++ {
		if err := c.RecordUsage(context.Background(), req, 1.0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	usage := c.Summary(types.BudgetLevelUser, "u1")
	if usage.UsedUSD != 3.0 {
		t.Fatalf("expected used_usd=3.0, got %f", usage.UsedUSD)
	}
	if usage.RequestCount != 3 {
		t.Fatalf("expected request_count=3, got %d", usage.RequestCount)
	}
}

func TestController_PeriodBoundaryRollsOverToFreshWindow(t *testing.T) {
	t.Parallel()

	c := newTestController()
	c.SetConfig(types.BudgetConfig{Level: types.BudgetLevelUser, EntityID: "u1", Period: types.BudgetPeriodDaily, LimitUSD: 10, WarningThreshold: 0.8, Timezone: "UTC"})

	day1 := time.Date(2026, 7, 30, 23, 59, 0, 0, time.UTC)
	c.now = func() time.Time { return day1 }

	req := &types.Request{UserID: "u1", Prompt: "hi"}
	if err := c.RecordUsage(context.Background(), req, 5.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	day2 := time.Date(2026, 7, 31, 0, 0, 1, 0, time.UTC)
	c.now = func() time.Time { return day2 }

	usage := c.Summary(types.BudgetLevelUser, "u1")
	if usage.UsedUSD != 0 {
		t.Fatalf("expected zero usage in the fresh window, got %f", usage.UsedUSD)
	}
}

func TestEstimateCost_FloorAppliesToTrivialPrompts(t *testing.T) {
	t.Parallel()

	req := &types.Request{Prompt: "hi", Temperature: 0}
	cost := EstimateCost(req, 0.0, "")
	if cost != costFloorUSD {
		t.Fatalf("expected floor cost %f, got %f", costFloorUSD, cost)
	}
}

func TestEstimateCost_ScalesWithComplexityAndTemperature(t *testing.T) {
	t.Parallel()

	prompt := make([]byte, 4000)
	for i := range prompt {
		prompt[i] = 'a'
	}
	req := &types.Request{Prompt: string(prompt), Temperature: 1.0}

	low := EstimateCost(req, 0.0, "")
	high := EstimateCost(req, 1.0, "")
	if !(high > low) {
		t.Fatalf("expected higher complexity to raise cost: low=%f high=%f", low, high)
	}
}
