package models

import "github.com/shopspring/decimal"

// Budget caps spending across a set of categories over an inclusive date
// range. Budgets have no edit path; they are created and deleted.
type Budget struct {
	Base
	UserID     string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Categories []Category      `gorm:"type:text;serializer:json;not null" json:"categories"`
	StartDate  Date            `gorm:"not null" json:"start_date"`
	EndDate    Date            `gorm:"not null" json:"end_date"`
	Limit      decimal.Decimal `gorm:"column:limit_amount;type:decimal(14,2);not null" json:"limit"`
}

// Covers reports whether the budget tracks the given category.
func (b *Budget) Covers(c Category) bool {
	for _, bc := range b.Categories {
		if bc == c {
			return true
		}
	}
	return false
}

// CategoryNames returns the categories as plain strings.
func (b *Budget) CategoryNames() []string {
	names := make([]string, len(b.Categories))
	for i, c := range b.Categories {
		names[i] = string(c)
	}
	return names
}
