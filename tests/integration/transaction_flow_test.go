package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestTransactionFlow_ExpenseRequiresBudget(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "nobudget@test.com", "password123")

	catID := app.createCategory(t, token, "Groceries")

	// Expense with no budget covering the date is rejected
	rec := app.createExpense(t, token, catID, 5000, day(0))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without budget, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "BUDGET_REQUIRED_FOR_EXPENSE" {
		t.Errorf("expected BUDGET_REQUIRED_FOR_EXPENSE, got %v", code)
	}

	// Income needs no budget
	body := fmt.Sprintf(`{"category_id":%.0f,"type":"income","amount":5000,"payment_method":"bank_transfer","transaction_date":%q}`,
		catID, day(0))
	rec = app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for income, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTransactionFlow_BudgetCeiling(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "ceiling@test.com", "password123")

	catID := app.createCategory(t, token, "Dining")
	app.createBudget(t, token, catID, 10000, day(-10), day(10))

	// First expense fits
	rec := app.createExpense(t, token, catID, 4000, day(-1))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// 4000 + 7000 would breach the 10000 ceiling
	rec = app.createExpense(t, token, catID, 7000, day(0))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 past ceiling, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "BUDGET_EXCEEDED" {
		t.Errorf("expected BUDGET_EXCEEDED, got %v", code)
	}

	// Exactly filling the budget is allowed
	rec = app.createExpense(t, token, catID, 6000, day(0))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 filling budget exactly, got %d: %s", rec.Code, rec.Body.String())
	}

	// Nothing more fits
	rec = app.createExpense(t, token, catID, 1, day(0))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on full budget, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTransactionFlow_ExpenseOutsideBudgetPeriod(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "outside@test.com", "password123")

	catID := app.createCategory(t, token, "Travel")
	app.createBudget(t, token, catID, 10000, day(-10), day(-1))

	// The budget ended yesterday; today's expense has no cover
	rec := app.createExpense(t, token, catID, 1000, day(0))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 outside period, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "BUDGET_REQUIRED_FOR_EXPENSE" {
		t.Errorf("expected BUDGET_REQUIRED_FOR_EXPENSE, got %v", code)
	}
}

func TestTransactionFlow_DeleteFreesBudgetRoom(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "freeroom@test.com", "password123")

	catID := app.createCategory(t, token, "Groceries")
	app.createBudget(t, token, catID, 10000, day(-10), day(10))

	// Fill the budget completely
	rec := app.createExpense(t, token, catID, 10000, day(0))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	txID := parseJSON(t, rec)["transaction"].(map[string]interface{})["id"].(float64)

	// No room left
	rec = app.createExpense(t, token, catID, 1000, day(0))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on full budget, got %d: %s", rec.Code, rec.Body.String())
	}

	// Deleting the filling expense frees the room again
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/transactions/%.0f", txID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 deleting transaction, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.createExpense(t, token, catID, 1000, day(0))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 after freeing room, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTransactionFlow_UpdateExcludesOwnAmount(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "updateroom@test.com", "password123")

	catID := app.createCategory(t, token, "Dining")
	app.createBudget(t, token, catID, 10000, day(-10), day(10))

	rec := app.createExpense(t, token, catID, 6000, day(0))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	txID := parseJSON(t, rec)["transaction"].(map[string]interface{})["id"].(float64)

	// Raising the amount to the full ceiling succeeds because the
	// transaction's own 6000 does not count against itself
	rec = app.request("PUT", fmt.Sprintf("/api/v1/transactions/%.0f", txID),
		`{"amount":10000}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 raising within own headroom, got %d: %s", rec.Code, rec.Body.String())
	}

	// One past the ceiling is rejected
	rec = app.request("PUT", fmt.Sprintf("/api/v1/transactions/%.0f", txID),
		`{"amount":10001}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 past ceiling, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "BUDGET_EXCEEDED" {
		t.Errorf("expected BUDGET_EXCEEDED, got %v", code)
	}
}

func TestTransactionFlow_ListWithFilters(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "list@test.com", "password123")

	foodCat := app.createCategory(t, token, "Food")
	travelCat := app.createCategory(t, token, "Travel")
	app.createBudget(t, token, foodCat, 50000, day(-10), day(10))
	app.createBudget(t, token, travelCat, 50000, day(-10), day(10))

	app.createExpense(t, token, foodCat, 3000, day(-3))
	app.createExpense(t, token, foodCat, 2000, day(0))
	app.createExpense(t, token, travelCat, 9000, day(0))

	// Filter by category
	rec := app.request("GET", fmt.Sprintf("/api/v1/transactions?category_id=%.0f", foodCat), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["total_items"].(float64) != 2 {
		t.Errorf("expected 2 food transactions, got %.0f", result["total_items"].(float64))
	}

	// Filter by date range
	rec = app.request("GET",
		fmt.Sprintf("/api/v1/transactions?from_date=%s&to_date=%s", day(0), day(0)), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result = parseJSON(t, rec)
	if result["total_items"].(float64) != 2 {
		t.Errorf("expected 2 transactions today, got %.0f", result["total_items"].(float64))
	}

	// Malformed date is rejected
	rec = app.request("GET", "/api/v1/transactions?from_date=03-01-2026", "", token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed date, got %d", rec.Code)
	}
}
