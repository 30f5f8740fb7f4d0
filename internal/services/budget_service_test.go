package services

import (
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func TestCreateBudget(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		start := models.NewDate(2026, time.March, 1)
		end := models.NewDate(2026, time.March, 31)
		budget, err := svc.CreateBudget(user.ID, cat.ID, 50000, start, end, PredictionConfig{})
		testutil.AssertNoError(t, err)

		if budget.ID == 0 {
			t.Fatal("expected non-zero budget ID")
		}
		if budget.Amount != 50000 {
			t.Errorf("expected amount 50000, got %d", budget.Amount)
		}
		if !budget.StartDate.Equal(start.Time) || !budget.EndDate.Equal(end.Time) {
			t.Errorf("expected period [%s, %s], got [%s, %s]", start, end, budget.StartDate, budget.EndDate)
		}
	})

	t.Run("invalid_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, 9999, 50000,
			models.NewDate(2026, time.March, 1), models.NewDate(2026, time.March, 31), PredictionConfig{})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("wrong_user_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user2.ID)

		_, err := svc.CreateBudget(user1.ID, cat.ID, 50000,
			models.NewDate(2026, time.March, 1), models.NewDate(2026, time.March, 31), PredictionConfig{})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("end_not_after_start", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		day := models.NewDate(2026, time.March, 1)
		_, err := svc.CreateBudget(user.ID, cat.ID, 50000, day, day, PredictionConfig{})
		testutil.AssertAppError(t, err, "INVALID_DATE_RANGE")

		_, err = svc.CreateBudget(user.ID, cat.ID, 50000, day, day.AddDays(-5), PredictionConfig{})
		testutil.AssertAppError(t, err, "INVALID_DATE_RANGE")
	})

	t.Run("overlapping_period_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		_, err := svc.CreateBudget(user.ID, cat.ID, 50000,
			models.NewDate(2026, time.March, 1), models.NewDate(2026, time.March, 31), PredictionConfig{})
		testutil.AssertNoError(t, err)

		// Sharing a single boundary day still overlaps.
		_, err = svc.CreateBudget(user.ID, cat.ID, 30000,
			models.NewDate(2026, time.March, 31), models.NewDate(2026, time.April, 30), PredictionConfig{})
		testutil.AssertAppError(t, err, "BUDGET_PERIOD_OVERLAP")
	})

	t.Run("adjacent_period_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		_, err := svc.CreateBudget(user.ID, cat.ID, 50000,
			models.NewDate(2026, time.March, 1), models.NewDate(2026, time.March, 31), PredictionConfig{})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateBudget(user.ID, cat.ID, 30000,
			models.NewDate(2026, time.April, 1), models.NewDate(2026, time.April, 30), PredictionConfig{})
		testutil.AssertNoError(t, err)
	})

	t.Run("same_period_other_category_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user := testutil.CreateTestUser(t, db)
		cat1 := testutil.CreateTestCategory(t, db, user.ID)
		cat2 := testutil.CreateTestCategory(t, db, user.ID)

		start := models.NewDate(2026, time.March, 1)
		end := models.NewDate(2026, time.March, 31)
		_, err := svc.CreateBudget(user.ID, cat1.ID, 50000, start, end, PredictionConfig{})
		testutil.AssertNoError(t, err)

		_, err = svc.CreateBudget(user.ID, cat2.ID, 30000, start, end, PredictionConfig{})
		testutil.AssertNoError(t, err)
	})

	t.Run("prediction_requires_type", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		_, err := svc.CreateBudget(user.ID, cat.ID, 50000,
			models.NewDate(2026, time.March, 1), models.NewDate(2026, time.March, 31),
			PredictionConfig{Enabled: true})
		testutil.AssertAppError(t, err, "PREDICTION_TYPE_REQUIRED")
	})

	t.Run("custom_prediction_days_bounds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		custom := models.PredictionTypeCustom
		start := models.NewDate(2026, time.March, 1)
		end := models.NewDate(2026, time.March, 31)

		_, err := svc.CreateBudget(user.ID, cat.ID, 50000, start, end,
			PredictionConfig{Enabled: true, Type: &custom})
		testutil.AssertAppError(t, err, "PREDICTION_INVALID_CUSTOM_DAYS")

		tooMany := 32 // period is 31 days
		_, err = svc.CreateBudget(user.ID, cat.ID, 50000, start, end,
			PredictionConfig{Enabled: true, Type: &custom, DaysCount: &tooMany})
		testutil.AssertAppError(t, err, "PREDICTION_INVALID_CUSTOM_DAYS")

		exact := 31
		_, err = svc.CreateBudget(user.ID, cat.ID, 50000, start, end,
			PredictionConfig{Enabled: true, Type: &custom, DaysCount: &exact})
		testutil.AssertNoError(t, err)
	})
}

func TestGetUserBudgets(t *testing.T) {
	t.Run("returns_user_budgets_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)
		cat1 := testutil.CreateTestCategory(t, db, user1.ID)
		cat2 := testutil.CreateTestCategory(t, db, user2.ID)

		testutil.CreateTestBudget(t, db, user1.ID, cat1.ID, 50000,
			models.NewDate(2026, time.March, 1), models.NewDate(2026, time.March, 31))
		testutil.CreateTestBudget(t, db, user1.ID, cat1.ID, 30000,
			models.NewDate(2026, time.April, 1), models.NewDate(2026, time.April, 30))
		testutil.CreateTestBudget(t, db, user2.ID, cat2.ID, 20000,
			models.NewDate(2026, time.March, 1), models.NewDate(2026, time.March, 31))

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserBudgets(user1.ID, page, nil)
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Errorf("expected 2 budgets, got %d", result.TotalItems)
		}
	})

	t.Run("filter_by_status", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		today := models.DateOf(time.Now())
		active := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 50000, today.AddDays(-5), today.AddDays(5))
		upcoming := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 30000, today.AddDays(6), today.AddDays(15))
		expired := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 20000, today.AddDays(-30), today.AddDays(-6))

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		cases := []struct {
			status models.BudgetStatus
			wantID uint
		}{
			{models.BudgetStatusActive, active.ID},
			{models.BudgetStatusUpcoming, upcoming.ID},
			{models.BudgetStatusExpired, expired.ID},
		}
		for _, tc := range cases {
			t.Run(string(tc.status), func(t *testing.T) {
				status := tc.status
				result, err := svc.GetUserBudgets(user.ID, page, &status)
				testutil.AssertNoError(t, err)
				if result.TotalItems != 1 {
					t.Fatalf("expected 1 %s budget, got %d", tc.status, result.TotalItems)
				}
				if result.Items[0].ID != tc.wantID {
					t.Errorf("expected budget %d, got %d", tc.wantID, result.Items[0].ID)
				}
				if result.Items[0].Status != tc.status {
					t.Errorf("expected status %s, got %s", tc.status, result.Items[0].Status)
				}
			})
		}
	})

	t.Run("enriches_with_spend", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		today := models.DateOf(time.Now())
		testutil.CreateTestBudget(t, db, user.ID, cat.ID, 50000, today.AddDays(-5), today.AddDays(5))
		testutil.CreateTestTransaction(t, db, user.ID, cat.ID, models.TransactionTypeExpense, 12000, today)

		page := pagination.PageRequest{Page: 1, PageSize: 20}
		result, err := svc.GetUserBudgets(user.ID, page, nil)
		testutil.AssertNoError(t, err)

		if len(result.Items) != 1 {
			t.Fatalf("expected 1 budget, got %d", len(result.Items))
		}
		detail := result.Items[0]
		if detail.Spent != 12000 {
			t.Errorf("expected spent 12000, got %d", detail.Spent)
		}
		if detail.Remaining != 38000 {
			t.Errorf("expected remaining 38000, got %d", detail.Remaining)
		}
	})
}

func TestGetBudgetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db, NewBudgetGuard())
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID)

	today := models.DateOf(time.Now())
	daily := models.PredictionTypeDaily
	budget := &models.Budget{
		UserID:            user.ID,
		CategoryID:        cat.ID,
		Amount:            50000,
		StartDate:         today.AddDays(-5),
		EndDate:           today.AddDays(4),
		PredictionEnabled: true,
		PredictionType:    &daily,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create budget: %v", err)
	}
	testutil.CreateTestTransaction(t, db, user.ID, cat.ID, models.TransactionTypeExpense, 10000, today)

	t.Run("found_with_prediction", func(t *testing.T) {
		detail, err := svc.GetBudgetByID(user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		if detail.Spent != 10000 {
			t.Errorf("expected spent 10000, got %d", detail.Spent)
		}
		if detail.Status != models.BudgetStatusActive {
			t.Errorf("expected active status, got %s", detail.Status)
		}
		if detail.Prediction == nil {
			t.Fatal("expected prediction to be present")
		}
		// 40000 remaining over today..end (5 days inclusive).
		if detail.Prediction.DaysRemaining != 5 {
			t.Errorf("expected 5 days remaining, got %d", detail.Prediction.DaysRemaining)
		}
		if detail.Prediction.DailyAllowance != 8000 {
			t.Errorf("expected allowance 8000, got %d", detail.Prediction.DailyAllowance)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := svc.GetBudgetByID(user.ID, 9999)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})

	t.Run("wrong_user", func(t *testing.T) {
		stranger := testutil.CreateTestUser(t, db)
		_, err := svc.GetBudgetByID(stranger.ID, budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestUpdateBudget(t *testing.T) {
	t.Run("amount_only_skips_overlap_check", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		budget := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 50000,
			models.NewDate(2026, time.March, 1), models.NewDate(2026, time.March, 31))

		amount := int64(75000)
		updated, err := svc.UpdateBudget(user.ID, budget.ID, BudgetUpdate{Amount: &amount})
		testutil.AssertNoError(t, err)
		if updated.Amount != 75000 {
			t.Errorf("expected amount 75000, got %d", updated.Amount)
		}
	})

	t.Run("date_change_excludes_own_row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		budget := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 50000,
			models.NewDate(2026, time.March, 1), models.NewDate(2026, time.March, 31))

		// Shrinking within its own period must not self-overlap.
		end := models.NewDate(2026, time.March, 20)
		updated, err := svc.UpdateBudget(user.ID, budget.ID, BudgetUpdate{EndDate: &end})
		testutil.AssertNoError(t, err)
		if !updated.EndDate.Equal(end.Time) {
			t.Errorf("expected end date %s, got %s", end, updated.EndDate)
		}
	})

	t.Run("date_change_into_other_budget_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		budget := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 50000,
			models.NewDate(2026, time.March, 1), models.NewDate(2026, time.March, 31))
		testutil.CreateTestBudget(t, db, user.ID, cat.ID, 30000,
			models.NewDate(2026, time.April, 1), models.NewDate(2026, time.April, 30))

		end := models.NewDate(2026, time.April, 10)
		_, err := svc.UpdateBudget(user.ID, budget.ID, BudgetUpdate{EndDate: &end})
		testutil.AssertAppError(t, err, "BUDGET_PERIOD_OVERLAP")
	})

	t.Run("category_change_checks_new_category_overlap", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user := testutil.CreateTestUser(t, db)
		cat1 := testutil.CreateTestCategory(t, db, user.ID)
		cat2 := testutil.CreateTestCategory(t, db, user.ID)

		budget := testutil.CreateTestBudget(t, db, user.ID, cat1.ID, 50000,
			models.NewDate(2026, time.March, 1), models.NewDate(2026, time.March, 31))
		testutil.CreateTestBudget(t, db, user.ID, cat2.ID, 30000,
			models.NewDate(2026, time.March, 15), models.NewDate(2026, time.April, 15))

		_, err := svc.UpdateBudget(user.ID, budget.ID, BudgetUpdate{CategoryID: &cat2.ID})
		testutil.AssertAppError(t, err, "BUDGET_PERIOD_OVERLAP")
	})

	t.Run("invalid_effective_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		budget := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 50000,
			models.NewDate(2026, time.March, 1), models.NewDate(2026, time.March, 31))

		start := models.NewDate(2026, time.April, 10)
		_, err := svc.UpdateBudget(user.ID, budget.ID, BudgetUpdate{StartDate: &start})
		testutil.AssertAppError(t, err, "INVALID_DATE_RANGE")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db, NewBudgetGuard())
		user := testutil.CreateTestUser(t, db)

		amount := int64(1000)
		_, err := svc.UpdateBudget(user.ID, 9999, BudgetUpdate{Amount: &amount})
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestDeleteBudget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBudgetService(db, NewBudgetGuard())
	user := testutil.CreateTestUser(t, db)
	cat := testutil.CreateTestCategory(t, db, user.ID)

	budget := testutil.CreateTestBudget(t, db, user.ID, cat.ID, 50000,
		models.NewDate(2026, time.March, 1), models.NewDate(2026, time.March, 31))
	testutil.CreateTestTransaction(t, db, user.ID, cat.ID, models.TransactionTypeExpense, 1000, models.NewDate(2026, time.March, 5))

	t.Run("deletes_budget_keeps_transactions", func(t *testing.T) {
		err := svc.DeleteBudget(user.ID, budget.ID)
		testutil.AssertNoError(t, err)

		var budgetCount, txCount int64
		db.Model(&models.Budget{}).Where("user_id = ?", user.ID).Count(&budgetCount)
		db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&txCount)
		if budgetCount != 0 {
			t.Errorf("expected 0 budgets, got %d", budgetCount)
		}
		if txCount != 1 {
			t.Errorf("expected transactions to survive, got %d", txCount)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		err := svc.DeleteBudget(user.ID, budget.ID)
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}
