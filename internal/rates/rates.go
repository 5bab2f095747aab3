// Package rates fetches exchange-rate tables and converts amounts into a
// user's base currency.
//
// A Table maps a currency code to the number of units of that currency that
// equal one unit of the base currency, so converting a foreign amount into
// the base currency always divides by the rate.
package rates

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Table is a snapshot of conversion rates relative to one base currency.
type Table map[string]decimal.Decimal

// Rate returns the rate for code, if the table has a usable one.
func (t Table) Rate(code string) (decimal.Decimal, bool) {
	rate, ok := t[strings.ToUpper(code)]
	if !ok || !rate.IsPositive() {
		return decimal.Decimal{}, false
	}
	return rate, true
}

// ToBase converts amount from the given currency into the table's base
// currency. When the table has no rate for the currency (including when the
// table is empty because the fetch failed) the amount is returned unchanged,
// i.e. treated as already being in the base currency.
func ToBase(amount decimal.Decimal, from string, table Table) decimal.Decimal {
	rate, ok := table.Rate(from)
	if !ok {
		return amount
	}
	return amount.Div(rate)
}

// NewTable builds a table from raw provider rates, dropping entries that
// cannot be divided by.
func NewTable(raw map[string]float64) Table {
	t := make(Table, len(raw))
	for code, rate := range raw {
		if rate <= 0 {
			continue
		}
		t[strings.ToUpper(code)] = decimal.NewFromFloat(rate)
	}
	return t
}
