package services

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// budgetGuard implements the period matching, overlap detection, and spend
// aggregation queries behind budget enforcement.
type budgetGuard struct{}

// NewBudgetGuard creates a new BudgetGuard.
func NewBudgetGuard() BudgetGuard {
	return &budgetGuard{}
}

// FindCoveringBudget returns the budget for (user, category) whose inclusive
// [start_date, end_date] range contains onDate, or ErrBudgetNotFound when no
// budget covers that date. Periods are non-overlapping per category, so at
// most one match should exist; legacy data violating that invariant is
// resolved deterministically by lowest id and flagged in the logs.
func (g *budgetGuard) FindCoveringBudget(db *gorm.DB, userID, categoryID uint, onDate models.Date) (*models.Budget, error) {
	query := db.Model(&models.Budget{}).
		Where("user_id = ? AND category_id = ? AND start_date <= ? AND end_date >= ?",
			userID, categoryID, onDate, onDate)

	var matches int64
	if err := query.Count(&matches).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if matches > 1 {
		logger.Get().Warnw("multiple budgets cover the same date; picking lowest id",
			"user_id", userID,
			"category_id", categoryID,
			"date", onDate.String(),
			"matches", matches,
		)
	}

	var budget models.Budget
	err := db.Where("user_id = ? AND category_id = ? AND start_date <= ? AND end_date >= ?",
		userID, categoryID, onDate, onDate).
		Order("id ASC").
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// HasOverlap reports whether [startDate, endDate] intersects any existing
// budget period for (user, category). The test is inclusive on both ends:
// [s1,e1] and [s2,e2] overlap iff s1 <= e2 AND e1 >= s2. excludeBudgetID
// removes a budget's own row from the comparison set during updates.
func (g *budgetGuard) HasOverlap(db *gorm.DB, userID, categoryID uint, startDate, endDate models.Date, excludeBudgetID *uint) (bool, error) {
	query := db.Model(&models.Budget{}).
		Where("user_id = ? AND category_id = ? AND start_date <= ? AND end_date >= ?",
			userID, categoryID, endDate, startDate)
	if excludeBudgetID != nil {
		query = query.Where("id <> ?", *excludeBudgetID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// SumExpensesInRange sums expense amounts for (user, category) with a
// transaction date in the inclusive range. Returns 0 when nothing matches.
// excludeTransactionID answers "what would spend be without this row",
// which the update path needs.
func (g *budgetGuard) SumExpensesInRange(db *gorm.DB, userID, categoryID uint, startDate, endDate models.Date, excludeTransactionID *uint) (int64, error) {
	query := db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category_id = ? AND type = ? AND transaction_date >= ? AND transaction_date <= ?",
			userID, categoryID, models.TransactionTypeExpense, startDate, endDate)
	if excludeTransactionID != nil {
		query = query.Where("id <> ?", *excludeTransactionID)
	}

	var total int64
	if err := query.Scan(&total).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// CheckExpenseWithinBudget validates that recording an expense of the given
// amount on onDate stays within the covering budget's ceiling. It returns
// ErrBudgetRequired when no budget covers the date and ErrBudgetExceeded
// when the projected spend would pass the ceiling.
//
// Callers must invoke this inside the same database transaction as the
// subsequent insert or update; the covering budget row is read with a row
// lock so concurrent expenses against the same budget serialize instead of
// both passing validation against a stale spend total.
func (g *budgetGuard) CheckExpenseWithinBudget(db *gorm.DB, userID, categoryID uint, amount int64, onDate models.Date, excludeTransactionID *uint) (*models.Budget, error) {
	budget, err := g.FindCoveringBudget(db, userID, categoryID, onDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrBudgetNotFound) {
			return nil, apperrors.ErrBudgetRequired
		}
		return nil, err
	}

	// Re-read the covering row under a row lock so the spend aggregation
	// below serializes with concurrent expenses against the same budget.
	// SQLite ignores the clause; its single-writer model serializes anyway.
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(budget, budget.ID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spent, err := g.SumExpensesInRange(db, userID, categoryID, budget.StartDate, budget.EndDate, excludeTransactionID)
	if err != nil {
		return nil, err
	}

	if spent+amount > budget.Amount {
		return nil, apperrors.ErrBudgetExceeded
	}
	return budget, nil
}
