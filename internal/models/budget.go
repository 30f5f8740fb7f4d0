package models

// PredictionType selects which calendar days count toward a budget's
// daily-allowance forecast.
type PredictionType string

const (
	PredictionTypeDaily    PredictionType = "daily"
	PredictionTypeWeekends PredictionType = "weekends"
	PredictionTypeWeekdays PredictionType = "weekdays"
	PredictionTypeCustom   PredictionType = "custom"
)

// BudgetStatus is derived from comparing today to the budget period.
// It is never stored.
type BudgetStatus string

const (
	BudgetStatusActive   BudgetStatus = "active"
	BudgetStatusUpcoming BudgetStatus = "upcoming"
	BudgetStatusExpired  BudgetStatus = "expired"
)

// Budget is a spending ceiling for a category over an inclusive date range.
// Amount is fixed; consumption is always recomputed from the transaction
// set, never persisted as a running balance.
type Budget struct {
	Base
	UserID     uint  `gorm:"not null;index:idx_budget_user_category" json:"user_id"`
	CategoryID uint  `gorm:"not null;index:idx_budget_user_category" json:"category_id"`
	Amount     int64 `gorm:"type:bigint;not null" json:"amount"`
	StartDate  Date  `gorm:"not null;index" json:"start_date"`
	EndDate    Date  `gorm:"not null;index" json:"end_date"`

	PredictionEnabled   bool            `gorm:"not null;default:false" json:"prediction_enabled"`
	PredictionType      *PredictionType `json:"prediction_type,omitempty"`
	PredictionDaysCount *int            `json:"prediction_days_count,omitempty"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// PeriodDays returns the inclusive length of the budget period in days.
func (b *Budget) PeriodDays() int {
	return b.StartDate.DaysUntil(b.EndDate)
}

// Covers reports whether the budget period contains the given date.
func (b *Budget) Covers(d Date) bool {
	return !d.Before(b.StartDate.Time) && !d.After(b.EndDate.Time)
}

// Status derives the lifecycle status of the budget relative to today.
func (b *Budget) Status(today Date) BudgetStatus {
	switch {
	case today.Before(b.StartDate.Time):
		return BudgetStatusUpcoming
	case today.After(b.EndDate.Time):
		return BudgetStatusExpired
	default:
		return BudgetStatusActive
	}
}
