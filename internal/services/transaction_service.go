package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db    *gorm.DB
	guard BudgetGuard
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, guard BudgetGuard) TransactionServicer {
	return &transactionService{db: db, guard: guard}
}

// CreateTransaction records a new transaction. Expenses must fit within the
// budget covering their category and date; the budget check and the insert
// run in one database transaction so validation and persistence cannot be
// interleaved by a concurrent write. Income transactions are unconstrained.
func (s *transactionService) CreateTransaction(
	userID, categoryID uint,
	transactionType models.TransactionType,
	amount int64,
	paymentMethod models.PaymentMethod,
	description string,
	transactionDate models.Date,
) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	// Verify category exists and belongs to user
	var category models.Category
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Default to today if not provided
	if transactionDate.IsZero() {
		transactionDate = models.DateOf(time.Now())
	}

	transaction := &models.Transaction{
		UserID:          userID,
		CategoryID:      categoryID,
		Type:            transactionType,
		Amount:          amount,
		PaymentMethod:   paymentMethod,
		Description:     description,
		TransactionDate: transactionDate,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if transactionType == models.TransactionTypeExpense {
			if _, err := s.guard.CheckExpenseWithinBudget(tx, userID, categoryID, amount, transactionDate, nil); err != nil {
				return err
			}
		}

		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of transactions.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	sortable := map[string]string{
		"transaction_date": "transaction_date",
		"amount":           "amount",
		"created_at":       "created_at",
	}

	var transactions []models.Transaction
	if err := base.Preload("Category").
		Scopes(pagination.Paginate(page)).
		Order(page.OrderClause(sortable, "created_at")).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("transaction_date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("transaction_date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies a partial update. Budget enforcement runs
// against the effective post-update values: unset fields fall back to the
// stored ones. When the effective type is an expense, the covering budget
// is re-matched against the effective category and date, and the spend
// aggregation excludes this transaction's own row so the check compares the
// replacement amount against spend from other transactions only. A
// transaction that stops being an expense needs no refund: ceilings are
// recomputed from the transaction set on demand.
func (s *transactionService) UpdateTransaction(userID, transactionID uint, update TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if update.Amount != nil && *update.Amount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	if update.CategoryID != nil && *update.CategoryID != transaction.CategoryID {
		var category models.Category
		if err := s.db.Where("id = ? AND user_id = ?", *update.CategoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	update.Apply(transaction)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if transaction.Type == models.TransactionTypeExpense {
			_, err := s.guard.CheckExpenseWithinBudget(
				tx,
				userID,
				transaction.CategoryID,
				transaction.Amount,
				transaction.TransactionDate,
				&transaction.ID,
			)
			if err != nil {
				return err
			}
		}

		if err := tx.Save(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// DeleteTransaction deletes a transaction. No budget bookkeeping is needed:
// the next spend aggregation simply no longer counts the deleted row.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
