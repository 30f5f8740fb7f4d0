// Package errors provides custom error types for the Fintrack API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound           = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail         = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
	ErrInvalidCurrentPassword = &AppError{Code: "INVALID_CURRENT_PASSWORD", Message: "Current password is incorrect", StatusCode: http.StatusUnauthorized}
)

// Category errors.
var (
	ErrCategoryNotFound  = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrDuplicateCategory = &AppError{Code: "DUPLICATE_CATEGORY", Message: "A category with this name already exists", StatusCode: http.StatusConflict}
	ErrCategoryInUse     = &AppError{Code: "CATEGORY_IN_USE", Message: "Category is used by existing transactions", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
)

// Budget errors.
var (
	ErrBudgetNotFound = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrBudgetRequired = &AppError{
		Code:       "BUDGET_REQUIRED_FOR_EXPENSE",
		Message:    "You must create a budget covering this category and date before creating an expense transaction",
		StatusCode: http.StatusBadRequest,
	}
	ErrBudgetExceeded = &AppError{
		Code:       "BUDGET_EXCEEDED",
		Message:    "This transaction exceeds your remaining budget for this category. Please adjust your budget or reduce the amount.",
		StatusCode: http.StatusBadRequest,
	}
	ErrBudgetPeriodOverlap = &AppError{
		Code:       "BUDGET_PERIOD_OVERLAP",
		Message:    "Budget period overlaps an existing budget for this category",
		StatusCode: http.StatusConflict,
	}
	ErrInvalidDateRange = &AppError{
		Code:       "INVALID_DATE_RANGE",
		Message:    "End date must be after start date",
		StatusCode: http.StatusBadRequest,
	}
	ErrPredictionTypeRequired = &AppError{
		Code:       "PREDICTION_TYPE_REQUIRED",
		Message:    "A prediction type is required when predictions are enabled",
		StatusCode: http.StatusBadRequest,
	}
	ErrPredictionInvalidCustomDays = &AppError{
		Code:       "PREDICTION_INVALID_CUSTOM_DAYS",
		Message:    "Custom prediction day count must be between 1 and the budget period length",
		StatusCode: http.StatusBadRequest,
	}
)
