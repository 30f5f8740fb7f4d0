package services

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// dashboardService builds the read-only aggregation view. It has no
// write-time invariants; everything is derived from the transaction and
// budget sets at request time.
type dashboardService struct {
	db    *gorm.DB
	guard BudgetGuard
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB, guard BudgetGuard) DashboardServicer {
	return &dashboardService{db: db, guard: guard}
}

const (
	defaultRecentTransactionLimit = 5
	defaultTopExpenseLimit        = 3
)

// GetDashboard aggregates the user's finances over the requested month
// (YYYY-MM) or the current calendar month. The independent read-only
// queries fan out concurrently.
func (s *dashboardService) GetDashboard(userID uint, month string, transactionLimit, expenseLimit int) (*Dashboard, error) {
	periodStart, periodEnd, err := resolvePeriod(month)
	if err != nil {
		return nil, err
	}
	today := models.DateOf(time.Now())

	if transactionLimit <= 0 {
		transactionLimit = defaultRecentTransactionLimit
	}
	if expenseLimit <= 0 {
		expenseLimit = defaultTopExpenseLimit
	}

	var (
		summary      DashboardSummary
		budgets      []BudgetOverview
		recent       []RecentTransaction
		topExpenses  []TopExpense
		totalExpense int64
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		summary, err = s.periodSummary(userID, periodStart, periodEnd, today)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.budgetOverviews(userID, periodStart, periodEnd)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.recentTransactions(userID, periodStart, periodEnd, transactionLimit)
		return err
	})
	g.Go(func() error {
		var err error
		topExpenses, totalExpense, err = s.topExpenses(userID, periodStart, periodEnd, expenseLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range topExpenses {
		if totalExpense > 0 {
			topExpenses[i].Percentage = roundPct(float64(topExpenses[i].Total) / float64(totalExpense) * 100)
		}
	}

	return &Dashboard{
		Period:             periodStart.Format("2006-01"),
		Summary:            summary,
		Budgets:            budgets,
		RecentTransactions: recent,
		TopExpenses:        topExpenses,
	}, nil
}

// resolvePeriod returns the inclusive first and last day of the requested
// month, defaulting to the current one.
func resolvePeriod(month string) (models.Date, models.Date, error) {
	var year int
	var monthNum time.Month

	if month == "" {
		now := time.Now()
		year, monthNum = now.Year(), now.Month()
	} else {
		parsed, err := time.Parse("2006-01", month)
		if err != nil {
			return models.Date{}, models.Date{}, apperrors.WithMessage(apperrors.ErrInvalidInput,
				fmt.Sprintf("invalid month %q: expected YYYY-MM", month))
		}
		year, monthNum = parsed.Year(), parsed.Month()
	}

	start := models.NewDate(year, monthNum, 1)
	end := models.Date{Time: start.AddDate(0, 1, -1)}
	return start, end, nil
}

func (s *dashboardService) periodSummary(userID uint, start, end, today models.Date) (DashboardSummary, error) {
	var summary DashboardSummary

	income, err := s.sumByType(userID, models.TransactionTypeIncome, start, end)
	if err != nil {
		return summary, err
	}
	expenses, err := s.sumByType(userID, models.TransactionTypeExpense, start, end)
	if err != nil {
		return summary, err
	}

	summary.TotalIncome = income
	summary.TotalExpenses = expenses
	summary.NetBalance = income - expenses
	if income > 0 {
		summary.SavingsRate = roundPct(float64(summary.NetBalance) / float64(income) * 100)
	}

	// Today's spend only means something when today is inside the period.
	if !today.Before(start.Time) && !today.After(end.Time) {
		todayExpenses, err := s.sumByType(userID, models.TransactionTypeExpense, today, today)
		if err != nil {
			return summary, err
		}
		summary.TodayExpenses = todayExpenses
	}
	return summary, nil
}

func (s *dashboardService) sumByType(userID uint, transactionType models.TransactionType, start, end models.Date) (int64, error) {
	var total int64
	err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ? AND transaction_date >= ? AND transaction_date <= ?",
			userID, transactionType, start, end).
		Scan(&total).Error
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return total, nil
}

// budgetOverviews reports utilization for every budget whose period
// overlaps the dashboard window. Spend is counted within the window, and
// the percentage guards against a zero ceiling.
func (s *dashboardService) budgetOverviews(userID uint, start, end models.Date) ([]BudgetOverview, error) {
	var budgets []models.Budget
	err := s.db.Preload("Category").
		Where("user_id = ? AND start_date <= ? AND end_date >= ?", userID, end, start).
		Order("id ASC").
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	overviews := make([]BudgetOverview, 0, len(budgets))
	for i := range budgets {
		budget := &budgets[i]
		spent, err := s.guard.SumExpensesInRange(s.db, userID, budget.CategoryID, start, end, nil)
		if err != nil {
			return nil, err
		}

		overview := BudgetOverview{
			BudgetID: budget.ID,
			Category: budget.Category.Name,
			Spent:    spent,
			Limit:    budget.Amount,
		}
		if budget.Amount > 0 {
			overview.Percentage = roundPct(float64(spent) / float64(budget.Amount) * 100)
		}
		overviews = append(overviews, overview)
	}
	return overviews, nil
}

func (s *dashboardService) recentTransactions(userID uint, start, end models.Date, limit int) ([]RecentTransaction, error) {
	var transactions []models.Transaction
	err := s.db.Preload("Category").
		Where("user_id = ? AND transaction_date >= ? AND transaction_date <= ?", userID, start, end).
		Order("transaction_date DESC, id DESC").
		Limit(limit).
		Find(&transactions).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	recent := make([]RecentTransaction, 0, len(transactions))
	for i := range transactions {
		t := &transactions[i]
		recent = append(recent, RecentTransaction{
			ID:       t.ID,
			Amount:   t.Amount,
			Type:     t.Type,
			Category: t.Category.Name,
			Date:     t.TransactionDate,
		})
	}
	return recent, nil
}

func (s *dashboardService) topExpenses(userID uint, start, end models.Date, limit int) ([]TopExpense, int64, error) {
	total, err := s.sumByType(userID, models.TransactionTypeExpense, start, end)
	if err != nil {
		return nil, 0, err
	}

	var rows []TopExpense
	err = s.db.Model(&models.Transaction{}).
		Select("categories.name AS category, SUM(transactions.amount) AS total").
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.type = ? AND transactions.transaction_date >= ? AND transactions.transaction_date <= ?",
			userID, models.TransactionTypeExpense, start, end).
		Group("categories.name").
		Order("total DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if rows == nil {
		rows = []TopExpense{}
	}
	return rows, total, nil
}

func roundPct(v float64) float64 {
	return math.Round(v*100) / 100
}
