package budget

import (
	"time"

	"github.com/routeforge/gateway/types"
)

// DefaultUserConfig, DefaultTeamConfig, and DefaultCompanyConfig back a
// scope that has no explicit configuration registered, grounded on the
// source's "default_user"/"default_team"/"default_company" fallback
// budgets.
func DefaultUserConfig() types.BudgetConfig {
	return types.BudgetConfig{
		Level:            types.BudgetLevelUser,
		Period:           types.BudgetPeriodMonthly,
		LimitUSD:         100.0,
		WarningThreshold: 0.8,
		Rollover:         false,
		Timezone:         "UTC",
	}
}

func DefaultTeamConfig() types.BudgetConfig {
	return types.BudgetConfig{
		Level:            types.BudgetLevelTeam,
		Period:           types.BudgetPeriodMonthly,
		LimitUSD:         1000.0,
		WarningThreshold: 0.8,
		Rollover:         false,
		Timezone:         "UTC",
	}
}

func DefaultCompanyConfig() types.BudgetConfig {
	return types.BudgetConfig{
		Level:            types.BudgetLevelCompany,
		Period:           types.BudgetPeriodMonthly,
		LimitUSD:         10000.0,
		WarningThreshold: 0.8,
		Rollover:         false,
		Timezone:         "UTC",
	}
}

func defaultConfigFor(level types.BudgetLevel) types.BudgetConfig {
	switch level {
	case types.BudgetLevelTeam:
		return DefaultTeamConfig()
	case types.BudgetLevelCompany:
		return DefaultCompanyConfig()
	default:
		return DefaultUserConfig()
	}
}

func locationFor(cfg types.BudgetConfig) *time.Location {
	if cfg.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Cost table multipliers for EstimateCost, keyed by a provider's
// selection tag (see types.ProviderConfig.HasTag), not a vendor name —
// provider lineups are data-driven per the external-interfaces contract.
const (
	providerMultiplierCheap        = 0.7
	providerMultiplierExpensive    = 1.5
	providerMultiplierDefault      = 1.0
	costBaseUSD                    = 0.002
	costFloorUSD                   = 0.001
)

// ProviderMultiplier resolves the cost multiplier for a provider tag.
func ProviderMultiplier(tag string) float64 {
	switch tag {
	case "cheap", "fast":
		return providerMultiplierCheap
	case "expensive", "capable":
		return providerMultiplierExpensive
	default:
		return providerMultiplierDefault
	}
}
