package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// DashboardHandler handles the aggregated dashboard view.
type DashboardHandler struct {
	dashboardService services.DashboardServicer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService services.DashboardServicer) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// DashboardQuery holds the query parameters for the dashboard view.
type DashboardQuery struct {
	Month             string `form:"month" binding:"omitempty,month"`
	TransactionsLimit int    `form:"transactions_limit" binding:"omitempty,min=1,max=50"`
	TopExpensesLimit  int    `form:"top_expenses_limit" binding:"omitempty,min=1,max=20"`
}

// GetDashboard handles the dashboard aggregation request.
// @Summary     Get dashboard
// @Description Get the aggregated dashboard for a month: income/expense summary, budget utilization, recent transactions, and top spending categories
// @Tags        dashboard
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       month              query string false "Period in YYYY-MM format (default current month)"
// @Param       transactions_limit query int    false "Number of recent transactions (default 5)"
// @Param       top_expenses_limit query int    false "Number of top expense categories (default 3)"
// @Success     200 {object} services.Dashboard "Dashboard view"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query DashboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(userID, query.Month, query.TransactionsLimit, query.TopExpensesLimit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dashboard": dashboard})
}
