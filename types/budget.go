package types

import "time"

// BudgetLevel is one of the three scopes in the spending hierarchy.
type BudgetLevel string

const (
	BudgetLevelUser    BudgetLevel = "user"
	BudgetLevelTeam    BudgetLevel = "team"
	BudgetLevelCompany BudgetLevel = "company"
)

// BudgetPeriod is the rollover cadence of a budget window.
type BudgetPeriod string

const (
	BudgetPeriodDaily   BudgetPeriod = "daily"
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// BudgetStatus classifies a usage snapshot or an admission decision.
type BudgetStatus string

const (
	BudgetStatusApproved BudgetStatus = "approved"
	BudgetStatusWarning  BudgetStatus = "warning"
	BudgetStatusExceeded BudgetStatus = "exceeded"
)

// BudgetConfig identifies a single (level, entity_id) scope and its limits.
type BudgetConfig struct {
	Level            BudgetLevel  `json:"level" gorm:"primaryKey"`
	EntityID         string       `json:"entity_id" gorm:"primaryKey"`
	Period           BudgetPeriod `json:"period"`
	LimitUSD         float64      `json:"limit_usd"`
	WarningThreshold float64      `json:"warning_threshold"`
	EmergencyLimitUSD float64     `json:"emergency_limit_usd,omitempty"`
	Rollover         bool         `json:"rollover"`
	Timezone         string       `json:"timezone"`
}

// BudgetUsage is the mutable, per-window accumulation for one scope. The
// persisted form (see internal/budget's gorm model) mirrors this shape
// one-for-one; in-process counters remain the source of truth for
// admission decisions.
type BudgetUsage struct {
	Level        BudgetLevel  `json:"level"`
	EntityID     string       `json:"entity_id"`
	PeriodStart  time.Time    `json:"period_start"`
	PeriodEnd    time.Time    `json:"period_end"`
	UsedUSD      float64      `json:"used_usd"`
	RemainingUSD float64      `json:"remaining_usd"`
	Percentage   float64      `json:"percentage"`
	RequestCount int64        `json:"request_count"`
	LastUpdated  time.Time    `json:"last_updated"`
	Status       BudgetStatus `json:"status"`
}

// AdmissionResult is the outcome of BudgetController.CheckAuthorization.
type AdmissionResult struct {
	Status        BudgetStatus
	DeniedScope    BudgetLevel
	WarningScope   BudgetLevel
	Usage          map[BudgetLevel]BudgetUsage
	EstimatedCost  float64
}

// Approved reports whether the request may proceed (approved or warning).
func (a AdmissionResult) Approved() bool {
	return a.Status != BudgetStatusExceeded
}
