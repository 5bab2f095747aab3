package testutil_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"walletpalz/internal/errors"
	"walletpalz/internal/models"
	"walletpalz/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"users", "user_settings", "transactions", "budgets", "notifications", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestUser(t, first)

	var count int64
	second.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("expected isolated databases, second has %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("expected user ID to be set")
	}

	day := models.NewDate(2024, time.January, 10)
	tx := testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, models.CategoryFood, "12.50", "USD", day)

	var loaded models.Transaction
	if err := db.First(&loaded, "id = ?", tx.ID).Error; err != nil {
		t.Fatalf("failed to reload transaction: %v", err)
	}
	if !loaded.Date.Equal(day.Time) {
		t.Errorf("Date = %s, want %s", loaded.Date, day)
	}
	if loaded.Amount.String() != "12.5" {
		t.Errorf("Amount = %s, want 12.5", loaded.Amount)
	}

	budget := testutil.CreateTestBudget(t, db, user.ID, []models.Category{models.CategoryFood, models.CategoryBills}, "100", day, day.AddDays(30))
	var loadedBudget models.Budget
	if err := db.First(&loadedBudget, "id = ?", budget.ID).Error; err != nil {
		t.Fatalf("failed to reload budget: %v", err)
	}
	if len(loadedBudget.Categories) != 2 || loadedBudget.Categories[1] != models.CategoryBills {
		t.Errorf("Categories = %v", loadedBudget.Categories)
	}

	settings := testutil.CreateTestSettings(t, db, user.ID, "EUR")
	if !settings.Notifications.BudgetAlerts {
		t.Error("expected default budget alerts on")
	}

	n := testutil.CreateTestNotification(t, db, user.ID)
	if n.Read {
		t.Error("new notification should be unread")
	}
}

func TestAssertAppError(t *testing.T) {
	appErr := testutil.AssertAppError(t, errors.Wrap(errors.ErrBudgetNotFound, nil), "BUDGET_NOT_FOUND")
	if appErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", appErr.StatusCode)
	}
}

func TestAssertDecimal(t *testing.T) {
	testutil.AssertDecimal(t, "amount", decimal.RequireFromString("12.50"), "12.5")
}

func TestAssertNotificationCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	testutil.CreateTestNotification(t, db, user.ID)
	testutil.CreateTestNotification(t, db, user.ID)
	testutil.CreateTestNotification(t, db, other.ID)

	testutil.AssertNotificationCount(t, db, user.ID, "", 2)
	testutil.AssertNotificationCount(t, db, other.ID, "", 1)
}
