package budget

import (
	"time"

	"github.com/routeforge/gateway/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UsageRow is the durable mirror of a BudgetUsage snapshot, one row per
// (level, entity_id, period_start). It is written best-effort and
// asynchronously by Controller.RecordUsage; the in-process counters
// remain authoritative for admission decisions.
type UsageRow struct {
	Level        string    `gorm:"primaryKey;column:level"`
	EntityID     string    `gorm:"primaryKey;column:entity_id"`
	PeriodStart  time.Time `gorm:"primaryKey;column:period_start"`
	PeriodEnd    time.Time
	UsedUSD      float64
	RequestCount int64
	Status       string
	LastUpdated  time.Time
}

// TableName pins the ledger table name independent of struct naming.
func (UsageRow) TableName() string { return "budget_usage" }

// Store persists UsageRow snapshots through gorm. Any gorm-supported
// driver may back it (postgres in production, sqlite for local/dev and
// tests).
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore migrates the budget_usage table and returns a Store.
func NewStore(db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if err := db.AutoMigrate(&UsageRow{}); err != nil {
		return nil, err
	}
	return &Store{db: db, logger: logger}, nil
}

// persist upserts one usage snapshot. Failures are logged and dropped —
// the ledger write is a best-effort mirror, never a gate on admission or
// debit.
func (s *Store) persist(usage types.BudgetUsage) {
	row := UsageRow{
		Level:        string(usage.Level),
		EntityID:     usage.EntityID,
		PeriodStart:  usage.PeriodStart,
		PeriodEnd:    usage.PeriodEnd,
		UsedUSD:      usage.UsedUSD,
		RequestCount: usage.RequestCount,
		Status:       string(usage.Status),
		LastUpdated:  usage.LastUpdated,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "level"}, {Name: "entity_id"}, {Name: "period_start"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"period_end", "used_usd", "request_count", "status", "last_updated",
		}),
	}).Create(&row).Error

	if err != nil && s.logger != nil {
		s.logger.Warn("budget ledger write failed",
			zap.String("level", row.Level),
			zap.String("entity_id", row.EntityID),
			zap.Error(err))
	}
}
