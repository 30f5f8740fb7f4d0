// Package forecast computes spending predictions for budgets: how much of
// the remaining budget can be spent per applicable day until the period ends.
package forecast

import (
	"time"

	"fintrack/internal/models"
)

// Result is the spending prediction for a single budget.
// RemainingBudget is not clamped: callers see the true deficit when a
// budget is overspent. DailyAllowance never goes negative.
type Result struct {
	DailyAllowance  int64                 `json:"daily_allowance"`
	RemainingBudget int64                 `json:"remaining_budget"`
	DaysRemaining   int                   `json:"days_remaining"`
	PredictionType  models.PredictionType `json:"prediction_type"`
}

// Predict computes the daily allowance for a budget given the total spent
// so far and today's date. The applicable window is the whole period when
// it has not started yet, empty when it is over, and [today, end] otherwise.
func Predict(budget *models.Budget, totalSpent int64, today models.Date) Result {
	predictionType := models.PredictionTypeDaily
	if budget.PredictionType != nil {
		predictionType = *budget.PredictionType
	}

	result := Result{
		RemainingBudget: budget.Amount - totalSpent,
		PredictionType:  predictionType,
	}

	from, to, ok := applicableWindow(budget, today)
	if !ok {
		return result
	}

	days := applicableDays(predictionType, budget.PredictionDaysCount, from, to)
	result.DaysRemaining = days
	if days <= 0 || result.RemainingBudget <= 0 {
		return result
	}

	result.DailyAllowance = result.RemainingBudget / int64(days)
	return result
}

// applicableWindow returns the date window the prediction is computed over.
// ok is false when the period is already over.
func applicableWindow(budget *models.Budget, today models.Date) (from, to models.Date, ok bool) {
	switch {
	case today.Before(budget.StartDate.Time):
		return budget.StartDate, budget.EndDate, true
	case today.After(budget.EndDate.Time):
		return models.Date{}, models.Date{}, false
	default:
		return today, budget.EndDate, true
	}
}

// applicableDays counts the days in [from, to] that count toward the
// prediction. The custom day count is a user preference, not a guarantee:
// it is clamped so the allowance is never computed over a longer horizon
// than actually remains.
func applicableDays(predictionType models.PredictionType, customDays *int, from, to models.Date) int {
	windowLen := from.DaysUntil(to)

	switch predictionType {
	case models.PredictionTypeWeekdays:
		return countMatchingDays(from, to, func(d time.Weekday) bool {
			return d != time.Saturday && d != time.Sunday
		})
	case models.PredictionTypeWeekends:
		return countMatchingDays(from, to, func(d time.Weekday) bool {
			return d == time.Saturday || d == time.Sunday
		})
	case models.PredictionTypeCustom:
		if customDays == nil || *customDays <= 0 {
			return 0
		}
		if *customDays > windowLen {
			return windowLen
		}
		return *customDays
	default:
		return windowLen
	}
}

func countMatchingDays(from, to models.Date, match func(time.Weekday) bool) int {
	count := 0
	for d := from; !d.After(to.Time); d = d.AddDays(1) {
		if match(d.Weekday()) {
			count++
		}
	}
	return count
}
