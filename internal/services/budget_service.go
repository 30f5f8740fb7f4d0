package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/forecast"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db    *gorm.DB
	guard BudgetGuard
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, guard BudgetGuard) BudgetServicer {
	return &budgetService{db: db, guard: guard}
}

// CreateBudget creates a new budget for a category after validating the
// date range, the prediction configuration, and the no-overlap invariant.
func (s *budgetService) CreateBudget(
	userID, categoryID uint,
	amount int64,
	startDate, endDate models.Date,
	prediction PredictionConfig,
) (*models.Budget, error) {
	// Verify category exists and belongs to user
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budget := &models.Budget{
		UserID:              userID,
		CategoryID:          categoryID,
		Amount:              amount,
		StartDate:           startDate,
		EndDate:             endDate,
		PredictionEnabled:   prediction.Enabled,
		PredictionType:      prediction.Type,
		PredictionDaysCount: prediction.DaysCount,
	}

	if err := validateBudget(budget); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		overlaps, err := s.guard.HasOverlap(tx, userID, categoryID, startDate, endDate, nil)
		if err != nil {
			return err
		}
		if overlaps {
			return apperrors.ErrBudgetPeriodOverlap
		}

		if err := tx.Create(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// GetUserBudgets returns a paginated list of budgets for the user, each
// enriched with recomputed spend, derived status, and an optional
// prediction. The status filter is evaluated against today's date, never
// against stored state.
func (s *budgetService) GetUserBudgets(
	userID uint,
	page pagination.PageRequest,
	status *models.BudgetStatus,
) (*pagination.PageResponse[BudgetDetail], error) {
	page.Defaults()
	today := models.DateOf(time.Now())

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if status != nil {
		base = applyStatusFilter(base, *status, today)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	sortable := map[string]string{
		"start_date": "start_date",
		"end_date":   "end_date",
		"amount":     "amount",
		"created_at": "created_at",
	}

	var budgets []models.Budget
	if err := base.Preload("Category").
		Scopes(pagination.Paginate(page)).
		Order(page.OrderClause(sortable, "start_date")).
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	details := make([]BudgetDetail, 0, len(budgets))
	for i := range budgets {
		detail, err := s.enrich(&budgets[i], today)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}

	result := pagination.NewPageResponse(details, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// applyStatusFilter expresses the computed status as date conditions so
// pagination counts stay correct.
func applyStatusFilter(q *gorm.DB, status models.BudgetStatus, today models.Date) *gorm.DB {
	switch status {
	case models.BudgetStatusActive:
		return q.Where("start_date <= ? AND end_date >= ?", today, today)
	case models.BudgetStatusUpcoming:
		return q.Where("start_date > ?", today)
	case models.BudgetStatusExpired:
		return q.Where("end_date < ?", today)
	default:
		return q
	}
}

// GetBudgetByID returns an enriched budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID uint) (*BudgetDetail, error) {
	budget, err := s.getOwned(userID, budgetID)
	if err != nil {
		return nil, err
	}
	return s.enrich(budget, models.DateOf(time.Now()))
}

// enrich recomputes the budget's consumption from the transaction set and
// attaches the derived status and, when enabled, the spending prediction.
func (s *budgetService) enrich(budget *models.Budget, today models.Date) (*BudgetDetail, error) {
	spent, err := s.guard.SumExpensesInRange(s.db, budget.UserID, budget.CategoryID, budget.StartDate, budget.EndDate, nil)
	if err != nil {
		return nil, err
	}

	detail := &BudgetDetail{
		Budget:    *budget,
		Spent:     spent,
		Remaining: budget.Amount - spent,
		Status:    budget.Status(today),
	}
	if budget.PredictionEnabled {
		prediction := forecast.Predict(budget, spent, today)
		detail.Prediction = &prediction
	}
	return detail, nil
}

// UpdateBudget updates an existing budget. The overlap guard re-runs only
// when the category or either date field changes; otherwise the check is
// skipped entirely to avoid false self-overlap rejections.
func (s *budgetService) UpdateBudget(userID, budgetID uint, update BudgetUpdate) (*models.Budget, error) {
	budget, err := s.getOwned(userID, budgetID)
	if err != nil {
		return nil, err
	}

	if update.CategoryID != nil && *update.CategoryID != budget.CategoryID {
		var category models.Category
		if err := s.db.Where("id = ? AND user_id = ?", *update.CategoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	periodChanged := update.CategoryID != nil || update.StartDate != nil || update.EndDate != nil

	update.Apply(budget)

	if err := validateBudget(budget); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if periodChanged {
			overlaps, err := s.guard.HasOverlap(tx, userID, budget.CategoryID, budget.StartDate, budget.EndDate, &budget.ID)
			if err != nil {
				return err
			}
			if overlaps {
				return apperrors.ErrBudgetPeriodOverlap
			}
		}

		if err := tx.Save(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// DeleteBudget deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	budget, err := s.getOwned(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *budgetService) getOwned(userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// validateBudget checks the date range and prediction configuration
// invariants on the effective field values.
func validateBudget(b *models.Budget) error {
	if !b.EndDate.After(b.StartDate.Time) {
		return apperrors.ErrInvalidDateRange
	}

	if b.PredictionEnabled && b.PredictionType == nil {
		return apperrors.ErrPredictionTypeRequired
	}

	if b.PredictionType != nil && *b.PredictionType == models.PredictionTypeCustom {
		days := 0
		if b.PredictionDaysCount != nil {
			days = *b.PredictionDaysCount
		}
		if days < 1 || days > b.PeriodDays() {
			return apperrors.ErrPredictionInvalidCustomDays
		}
	}
	return nil
}
