package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// CreateBudgetRequest represents the request payload for creating a budget.
type CreateBudgetRequest struct {
	CategoryID          uint        `json:"category_id" binding:"required"`
	Amount              int64       `json:"amount" binding:"required,gt=0"`
	StartDate           models.Date `json:"start_date" binding:"required"`
	EndDate             models.Date `json:"end_date" binding:"required"`
	PredictionEnabled   bool        `json:"prediction_enabled"`
	PredictionType      *string     `json:"prediction_type" binding:"omitempty,prediction_type"`
	PredictionDaysCount *int        `json:"prediction_days_count" binding:"omitempty,min=1"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
// All fields are optional; omitted fields keep their stored values.
type UpdateBudgetRequest struct {
	CategoryID          *uint        `json:"category_id"`
	Amount              *int64       `json:"amount" binding:"omitempty,gt=0"`
	StartDate           *models.Date `json:"start_date"`
	EndDate             *models.Date `json:"end_date"`
	PredictionEnabled   *bool        `json:"prediction_enabled"`
	PredictionType      *string      `json:"prediction_type" binding:"omitempty,prediction_type"`
	PredictionDaysCount *int         `json:"prediction_days_count" binding:"omitempty,min=1"`
}

// ListBudgetsQuery holds the filter and pagination query parameters for
// listing budgets.
type ListBudgetsQuery struct {
	pagination.PageRequest
	Status string `form:"status" binding:"omitempty,budget_status"`
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a budget for a category over a date range. Periods for the same category must not overlap.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input or date range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Overlapping budget period"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	prediction := services.PredictionConfig{
		Enabled:   req.PredictionEnabled,
		DaysCount: req.PredictionDaysCount,
	}
	if req.PredictionType != nil {
		t := models.PredictionType(*req.PredictionType)
		prediction.Type = &t
	}

	budget, err := h.budgetService.CreateBudget(userID, req.CategoryID, req.Amount, req.StartDate, req.EndDate, prediction)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetUserBudgets handles listing budgets for the authenticated user.
// @Summary     Get budgets
// @Description Get a paginated list of budgets with recomputed spend, remaining room, derived status, and optional prediction
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page       query int    false "Page number (default 1)"
// @Param       page_size  query int    false "Items per page (default 20, max 100)"
// @Param       sort_by    query string false "Sort field (start_date, end_date, amount, created_at)"
// @Param       sort_order query string false "Sort order (asc or desc)"
// @Param       status     query string false "Budget status filter (active, upcoming, or expired)"
// @Success     200 {object} pagination.PageResponse[services.BudgetDetail] "Paginated budgets"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetUserBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListBudgetsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.BudgetStatus
	if query.Status != "" {
		s := models.BudgetStatus(query.Status)
		status = &s
	}

	result, err := h.budgetService.GetUserBudgets(userID, query.PageRequest, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetBudgetByID handles retrieving a specific budget.
// @Summary     Get budget by ID
// @Description Get a specific budget with recomputed spend, remaining room, derived status, and optional prediction
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} services.BudgetDetail "Budget details"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudgetByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// UpdateBudget handles updating a budget.
// @Summary     Update budget
// @Description Update a budget. The overlap check re-runs when the category or period changes, excluding the budget's own row.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                 true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Updated budget details"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or date range"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Overlapping budget period"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	update := services.BudgetUpdate{
		CategoryID:          req.CategoryID,
		Amount:              req.Amount,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		PredictionEnabled:   req.PredictionEnabled,
		PredictionDaysCount: req.PredictionDaysCount,
	}
	if req.PredictionType != nil {
		t := models.PredictionType(*req.PredictionType)
		update.PredictionType = &t
	}

	budget, err := h.budgetService.UpdateBudget(userID, budgetID, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Description Delete a budget. Transactions recorded under it are kept.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path int true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted successfully"})
}
