package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"walletpalz/internal/models"
	"walletpalz/internal/rates"
	"walletpalz/internal/testutil"
)

func newTestDashboardService(db *gorm.DB, r RateProvider, today models.Date) DashboardServicer {
	settings := NewSettingsService(db)
	transactions := NewTransactionService(db, settings, r, nil, nil)
	budgets := newTestBudgetService(db, r, today)
	svc := NewDashboardService(settings, r, transactions, budgets).(*dashboardService)
	svc.today = func() models.Date { return today }
	return svc
}

func TestGetDashboard(t *testing.T) {
	t.Run("aggregates_in_base_currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		r := &stubRates{tables: map[string]rates.Table{"USD": {"EUR": dec("0.5")}}}
		today := models.NewDate(2024, time.March, 15)
		svc := newTestDashboardService(db, r, today)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeIncome, models.CategoryIncome, "1000", "USD", models.NewDate(2024, time.March, 1))
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, models.CategoryFood, "50", "USD", models.NewDate(2024, time.March, 14))
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, models.CategoryBills, "40", "EUR", today)
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, models.CategoryFood, "30", "USD", models.NewDate(2023, time.December, 20))
		testutil.CreateTestTransaction(t, db, user.ID, models.TransactionTypeExpense, models.CategoryFood, "20", "USD", models.NewDate(2023, time.May, 1))
		testutil.CreateTestBudget(t, db, user.ID, []models.Category{models.CategoryFood}, "200",
			models.NewDate(2024, time.March, 1), models.NewDate(2024, time.March, 31))

		d, err := svc.GetDashboard(ctx, user.ID)
		testutil.AssertNoError(t, err)

		if d.Currency != "USD" {
			t.Errorf("Currency = %s, want USD", d.Currency)
		}
		testutil.AssertDecimal(t, "TotalIncome", d.TotalIncome, "1000")
		testutil.AssertDecimal(t, "TotalExpense", d.TotalExpense, "180")
		testutil.AssertDecimal(t, "Balance", d.Balance, "820")

		if len(d.Monthly) != 6 {
			t.Fatalf("expected 6 months, got %d", len(d.Monthly))
		}
		if d.Monthly[0].Month != "2023-10" || d.Monthly[5].Month != "2024-03" {
			t.Errorf("months span %s..%s, want 2023-10..2024-03", d.Monthly[0].Month, d.Monthly[5].Month)
		}
		if !d.Monthly[5].Income.Equal(dec("1000")) || !d.Monthly[5].Expense.Equal(dec("130")) {
			t.Errorf("March = %+v", d.Monthly[5])
		}
		if !d.Monthly[2].Expense.Equal(dec("30")) {
			t.Errorf("December expense = %s, want 30", d.Monthly[2].Expense)
		}

		if len(d.Weekly) != 7 {
			t.Fatalf("expected 7 days, got %d", len(d.Weekly))
		}
		if d.Weekly[6].Date != today || d.Weekly[6].Weekday != "Fri" {
			t.Errorf("last day = %s %s, want 2024-03-15 Fri", d.Weekly[6].Date, d.Weekly[6].Weekday)
		}
		if !d.Weekly[5].Expense.Equal(dec("50")) || !d.Weekly[6].Expense.Equal(dec("80")) {
			t.Errorf("weekly = %s, %s, want 50, 80", d.Weekly[5].Expense, d.Weekly[6].Expense)
		}
		if !d.Weekly[0].Expense.IsZero() {
			t.Errorf("expected empty first day, got %s", d.Weekly[0].Expense)
		}

		if len(d.Categories) != 2 {
			t.Fatalf("expected 2 categories, got %+v", d.Categories)
		}
		if d.Categories[0].Category != models.CategoryFood || !d.Categories[0].Amount.Equal(dec("100")) {
			t.Errorf("first category = %+v, want Food 100", d.Categories[0])
		}
		if d.Categories[1].Category != models.CategoryBills || !d.Categories[1].Amount.Equal(dec("80")) {
			t.Errorf("second category = %+v, want Bills 80", d.Categories[1])
		}

		if len(d.Budgets) != 1 {
			t.Fatalf("expected 1 budget, got %d", len(d.Budgets))
		}
		if !d.Budgets[0].Status.Spent.Equal(dec("50")) {
			t.Errorf("budget spent = %s, want 50", d.Budgets[0].Status.Spent)
		}
	})

	t.Run("empty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestDashboardService(db, noRates(), models.NewDate(2024, time.March, 15))
		user := testutil.CreateTestUser(t, db)

		d, err := svc.GetDashboard(ctx, user.ID)
		testutil.AssertNoError(t, err)

		if !d.Balance.IsZero() || len(d.Categories) != 0 || len(d.Budgets) != 0 {
			t.Errorf("expected empty dashboard, got %+v", d)
		}
		if len(d.Monthly) != 6 || len(d.Weekly) != 7 {
			t.Errorf("expected fixed-size series, got %d months and %d days", len(d.Monthly), len(d.Weekly))
		}
	})
}
