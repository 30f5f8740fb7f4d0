package services

import (
	"gorm.io/gorm"

	"fintrack/internal/forecast"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	UpdateUser(userID uint, update UserUpdate) (*models.User, error)
	ChangePassword(userID uint, currentPassword, newPassword string) error
	DeleteUser(userID uint) error
}

// UserUpdate lists the mutable user profile fields. Nil means keep the
// stored value.
type UserUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// CategoryWithUsage is a category together with the number of transactions
// referencing it.
type CategoryWithUsage struct {
	models.Category
	TransactionCount int64 `json:"transaction_count"`
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID uint, name string) (*models.Category, error)
	GetUserCategories(userID uint, page pagination.PageRequest) (*pagination.PageResponse[CategoryWithUsage], error)
	GetCategoryByID(userID, categoryID uint) (*models.Category, error)
	UpdateCategory(userID, categoryID uint, name string) (*models.Category, error)
	DeleteCategory(userID, categoryID uint) error
}

// TransactionUpdate lists the mutable transaction fields. Nil means keep
// the stored value; effective post-update values are what budget
// enforcement runs against.
type TransactionUpdate struct {
	CategoryID      *uint
	Type            *models.TransactionType
	Amount          *int64
	PaymentMethod   *models.PaymentMethod
	Description     *string
	TransactionDate *models.Date
}

// Apply merges the set fields onto t.
func (u TransactionUpdate) Apply(t *models.Transaction) {
	if u.CategoryID != nil {
		t.CategoryID = *u.CategoryID
	}
	if u.Type != nil {
		t.Type = *u.Type
	}
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.PaymentMethod != nil {
		t.PaymentMethod = *u.PaymentMethod
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.TransactionDate != nil {
		t.TransactionDate = *u.TransactionDate
	}
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *models.Date
	ToDate     *models.Date
	Type       *models.TransactionType
	CategoryID *uint
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID, categoryID uint, transactionType models.TransactionType, amount int64, paymentMethod models.PaymentMethod, description string, transactionDate models.Date) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
}

// PredictionConfig carries the optional prediction settings of a budget.
type PredictionConfig struct {
	Enabled   bool
	Type      *models.PredictionType
	DaysCount *int
}

// BudgetUpdate lists the mutable budget fields. Nil means keep the stored
// value. The overlap guard re-runs only when CategoryID, StartDate, or
// EndDate is set.
type BudgetUpdate struct {
	CategoryID          *uint
	Amount              *int64
	StartDate           *models.Date
	EndDate             *models.Date
	PredictionEnabled   *bool
	PredictionType      *models.PredictionType
	PredictionDaysCount *int
}

// Apply merges the set fields onto b.
func (u BudgetUpdate) Apply(b *models.Budget) {
	if u.CategoryID != nil {
		b.CategoryID = *u.CategoryID
	}
	if u.Amount != nil {
		b.Amount = *u.Amount
	}
	if u.StartDate != nil {
		b.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		b.EndDate = *u.EndDate
	}
	if u.PredictionEnabled != nil {
		b.PredictionEnabled = *u.PredictionEnabled
	}
	if u.PredictionType != nil {
		b.PredictionType = u.PredictionType
	}
	if u.PredictionDaysCount != nil {
		b.PredictionDaysCount = u.PredictionDaysCount
	}
}

// BudgetDetail is a budget enriched with its recomputed consumption,
// derived status, and optional prediction.
type BudgetDetail struct {
	models.Budget
	Spent      int64               `json:"spent"`
	Remaining  int64               `json:"remaining"`
	Status     models.BudgetStatus `json:"status"`
	Prediction *forecast.Result    `json:"prediction,omitempty"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID, categoryID uint, amount int64, startDate, endDate models.Date, prediction PredictionConfig) (*models.Budget, error)
	GetUserBudgets(userID uint, page pagination.PageRequest, status *models.BudgetStatus) (*pagination.PageResponse[BudgetDetail], error)
	GetBudgetByID(userID, budgetID uint) (*BudgetDetail, error)
	UpdateBudget(userID, budgetID uint, update BudgetUpdate) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
}

// BudgetGuard bundles the period matching, overlap, and spend aggregation
// queries that budget enforcement is built from. Methods take the database
// handle explicitly so callers can run them inside an ongoing transaction.
type BudgetGuard interface {
	FindCoveringBudget(db *gorm.DB, userID, categoryID uint, onDate models.Date) (*models.Budget, error)
	HasOverlap(db *gorm.DB, userID, categoryID uint, startDate, endDate models.Date, excludeBudgetID *uint) (bool, error)
	SumExpensesInRange(db *gorm.DB, userID, categoryID uint, startDate, endDate models.Date, excludeTransactionID *uint) (int64, error)
	CheckExpenseWithinBudget(db *gorm.DB, userID, categoryID uint, amount int64, onDate models.Date, excludeTransactionID *uint) (*models.Budget, error)
}

// DashboardSummary aggregates income and expenses over the dashboard period.
type DashboardSummary struct {
	TotalIncome   int64   `json:"total_income"`
	TotalExpenses int64   `json:"total_expenses"`
	NetBalance    int64   `json:"net_balance"`
	SavingsRate   float64 `json:"savings_rate"`
	TodayExpenses int64   `json:"today_expenses"`
}

// BudgetOverview is the dashboard's per-budget utilization row.
type BudgetOverview struct {
	BudgetID   uint    `json:"budget_id"`
	Category   string  `json:"category"`
	Spent      int64   `json:"spent"`
	Limit      int64   `json:"limit"`
	Percentage float64 `json:"percentage"`
}

// RecentTransaction is a dashboard row for a recent transaction.
type RecentTransaction struct {
	ID       uint                   `json:"id"`
	Amount   int64                  `json:"amount"`
	Type     models.TransactionType `json:"type"`
	Category string                 `json:"category"`
	Date     models.Date            `json:"date"`
}

// TopExpense is a dashboard row for a top spending category.
type TopExpense struct {
	Category   string  `json:"category"`
	Total      int64   `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Dashboard is the aggregated read-only view over a period.
type Dashboard struct {
	Period             string              `json:"period"`
	Summary            DashboardSummary    `json:"summary"`
	Budgets            []BudgetOverview    `json:"budgets"`
	RecentTransactions []RecentTransaction `json:"recent_transactions"`
	TopExpenses        []TopExpense        `json:"top_expenses"`
}

// DashboardServicer defines the contract for the dashboard aggregation view.
type DashboardServicer interface {
	GetDashboard(userID uint, month string, transactionLimit, expenseLimit int) (*Dashboard, error)
}
