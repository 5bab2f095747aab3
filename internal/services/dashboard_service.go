package services

import (
	"context"

	"github.com/shopspring/decimal"

	"walletpalz/internal/models"
	"walletpalz/internal/rates"
)

const (
	dashboardMonths = 6
	dashboardDays   = 7
	monthLayout     = "2006-01"
)

// dashboardService aggregates a user's spending for the dashboard.
type dashboardService struct {
	settings     SettingsServicer
	rates        RateProvider
	transactions TransactionServicer
	budgets      BudgetServicer
	today        func() models.Date
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(
	settings SettingsServicer,
	rates RateProvider,
	transactions TransactionServicer,
	budgets BudgetServicer,
) DashboardServicer {
	return &dashboardService{
		settings:     settings,
		rates:        rates,
		transactions: transactions,
		budgets:      budgets,
		today:        models.Today,
	}
}

// GetDashboard returns totals, the monthly series for the last six months,
// the daily expense series for the last seven days and the expense breakdown
// by category, all converted to the user's base currency.
func (s *dashboardService) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	transactions, err := s.transactions.GetAllTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	budgets, err := s.budgets.GetUserBudgets(ctx, userID)
	if err != nil {
		return nil, err
	}

	table := s.rates.FetchRates(ctx, settings.Currency)
	today := s.today()

	d := &Dashboard{
		Currency:     settings.Currency,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Monthly:      make([]MonthlyTotal, dashboardMonths),
		Weekly:       make([]DailyTotal, dashboardDays),
		Categories:   []CategoryTotal{},
		Budgets:      budgets,
	}

	firstOfMonth := models.NewDate(today.Year(), today.Month(), 1)
	monthIndex := make(map[string]int, dashboardMonths)
	for i := 0; i < dashboardMonths; i++ {
		month := firstOfMonth.AddDate(0, i-(dashboardMonths-1), 0).Format(monthLayout)
		d.Monthly[i] = MonthlyTotal{Month: month, Income: decimal.Zero, Expense: decimal.Zero}
		monthIndex[month] = i
	}

	weekStart := today.AddDays(-(dashboardDays - 1))
	for i := 0; i < dashboardDays; i++ {
		day := weekStart.AddDays(i)
		d.Weekly[i] = DailyTotal{Date: day, Weekday: day.Weekday().String()[:3], Expense: decimal.Zero}
	}

	byCategory := make(map[models.Category]decimal.Decimal)

	for i := range transactions {
		tx := &transactions[i]
		amount := rates.ToBase(tx.Amount, tx.Currency, table).Abs()

		if !tx.IsExpense() {
			d.TotalIncome = d.TotalIncome.Add(amount)
			if idx, ok := monthIndex[tx.Date.Format(monthLayout)]; ok {
				d.Monthly[idx].Income = d.Monthly[idx].Income.Add(amount)
			}
			continue
		}

		d.TotalExpense = d.TotalExpense.Add(amount)
		byCategory[tx.Category] = byCategory[tx.Category].Add(amount)
		if idx, ok := monthIndex[tx.Date.Format(monthLayout)]; ok {
			d.Monthly[idx].Expense = d.Monthly[idx].Expense.Add(amount)
		}
		if tx.Date.Within(weekStart, today) {
			idx := weekStart.DaysUntil(tx.Date)
			d.Weekly[idx].Expense = d.Weekly[idx].Expense.Add(amount)
		}
	}
	d.Balance = d.TotalIncome.Sub(d.TotalExpense)

	for _, c := range models.Categories {
		if total, ok := byCategory[c]; ok {
			d.Categories = append(d.Categories, CategoryTotal{Category: c, Amount: total})
		}
	}

	return d, nil
}
