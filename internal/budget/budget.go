// Package budget computes spend against budgets and classifies each budget's
// health. It is pure: callers supply transactions, an exchange-rate table and
// the current date.
package budget

import (
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "walletpalz/internal/errors"
	"walletpalz/internal/models"
	"walletpalz/internal/rates"
)

// StatusKind is the classification of a budget on a given day.
type StatusKind string

const (
	StatusExpired StatusKind = "expired"
	StatusOver    StatusKind = "over"
	StatusLastDay StatusKind = "lastday"
	StatusGood    StatusKind = "good"
	StatusInvalid StatusKind = "invalid"
)

// WarningPercent is the share of the limit at which a good budget is flagged.
var WarningPercent = decimal.NewFromInt(80)

var hundred = decimal.NewFromInt(100)

// Status is the evaluated state of a budget. Numeric fields are nil when the
// status does not define them (expired and invalid budgets).
type Status struct {
	Status        StatusKind       `json:"status"`
	Message       string           `json:"message"`
	Spent         *decimal.Decimal `json:"spent,omitempty"`
	Remaining     *decimal.Decimal `json:"remaining,omitempty"`
	PercentSpent  *decimal.Decimal `json:"percent_spent,omitempty"`
	DailyBudget   *decimal.Decimal `json:"daily_budget,omitempty"`
	DaysRemaining int              `json:"days_remaining"`
	Warning       bool             `json:"warning"`
}

// Validate checks the invariants a stored budget must satisfy.
func Validate(b *models.Budget) error {
	if len(b.Categories) == 0 {
		return apperrors.ErrEmptyBudget
	}
	for _, c := range b.Categories {
		if !c.Valid() {
			return apperrors.WithMessage(apperrors.ErrInvalidCategory, fmt.Sprintf("Unknown category %q", c))
		}
	}
	if b.StartDate.IsZero() || b.EndDate.IsZero() || b.StartDate.After(b.EndDate.Time) {
		return apperrors.ErrInvalidBudgetRange
	}
	if !b.Limit.IsPositive() {
		return apperrors.ErrInvalidBudgetLimit
	}
	return nil
}

// Spent sums the expenses that count against b: expense transactions in one
// of its categories, dated within its period, converted to the table's base
// currency.
func Spent(b *models.Budget, txs []models.Transaction, table rates.Table) decimal.Decimal {
	total := decimal.Zero
	for i := range txs {
		tx := &txs[i]
		if !tx.IsExpense() || !b.Covers(tx.Category) || !tx.Date.Within(b.StartDate, b.EndDate) {
			continue
		}
		total = total.Add(rates.ToBase(tx.Amount, tx.Currency, table).Abs())
	}
	return total
}

// PercentSpent returns spent as a percentage of limit. A zero limit reads as
// 100% once anything is spent and 0% otherwise.
func PercentSpent(spent, limit decimal.Decimal) decimal.Decimal {
	if limit.IsZero() {
		if spent.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return spent.Div(limit).Mul(hundred)
}

// Evaluate classifies b as of today.
func Evaluate(b *models.Budget, txs []models.Transaction, table rates.Table, today models.Date) Status {
	if b.Limit.IsNegative() || len(b.Categories) == 0 || b.StartDate.After(b.EndDate.Time) {
		return Status{Status: StatusInvalid, Message: "Budget cannot be classified"}
	}

	daysRemaining := today.DaysUntil(b.EndDate)
	if daysRemaining < 0 {
		return Status{Status: StatusExpired, Message: "Budget period has ended", DaysRemaining: daysRemaining}
	}

	spent := Spent(b, txs, table)
	remaining := b.Limit.Sub(spent)
	pct := PercentSpent(spent, b.Limit)

	st := Status{
		Spent:         &spent,
		Remaining:     &remaining,
		PercentSpent:  &pct,
		DaysRemaining: daysRemaining,
	}

	switch {
	case spent.GreaterThan(b.Limit):
		st.Status = StatusOver
		st.Message = "Exceeded by " + remaining.Neg().StringFixed(2)
	case b.Limit.IsZero():
		// Nothing spent against a zero limit is good on every day of the period.
		daily := decimal.Zero
		st.Status = StatusGood
		st.DailyBudget = &daily
		st.Message = "Nothing spent"
	case daysRemaining == 0:
		st.Status = StatusLastDay
		if remaining.IsPositive() {
			st.Message = remaining.StringFixed(2) + " left"
		} else {
			st.Message = "At budget"
		}
	default:
		daily := remaining.Div(decimal.NewFromInt(int64(daysRemaining)))
		st.Status = StatusGood
		st.DailyBudget = &daily
		st.Message = daily.StringFixed(2) + "/day left"
		st.Warning = pct.GreaterThanOrEqual(WarningPercent)
	}
	return st
}
