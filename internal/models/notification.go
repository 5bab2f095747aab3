package models

import "github.com/shopspring/decimal"

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationBudgetExceeded   NotificationType = "budget_exceeded"
	NotificationBudgetWarning    NotificationType = "budget_warning"
	NotificationBudgetMilestone  NotificationType = "budget_milestone"
	NotificationTransactionAlert NotificationType = "transaction_alert"
)

// NotificationMetadata is the machine-readable payload of a notification.
type NotificationMetadata struct {
	BudgetID      string           `json:"budget_id,omitempty"`
	Categories    []string         `json:"categories,omitempty"`
	BudgetLimit   *decimal.Decimal `json:"budget_limit,omitempty"`
	CurrentSpent  *decimal.Decimal `json:"current_spent,omitempty"`
	PercentSpent  string           `json:"percent_spent,omitempty"`
	Milestone     string           `json:"milestone,omitempty"`
	TransactionID string           `json:"transaction_id,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Currency      string           `json:"currency,omitempty"`
}

// Notification is an in-app alert. Budget notifications are unique per
// (user, budget, type, milestone); the index enforces that at the store.
// Transaction alerts carry no budget and are never deduplicated.
type Notification struct {
	Base
	UserID    string               `gorm:"type:uuid;not null;index;uniqueIndex:idx_notifications_dedup,priority:1" json:"user_id"`
	BudgetID  *string              `gorm:"type:uuid;uniqueIndex:idx_notifications_dedup,priority:2" json:"budget_id,omitempty"`
	Type      NotificationType     `gorm:"not null;uniqueIndex:idx_notifications_dedup,priority:3" json:"type"`
	Milestone string               `gorm:"not null;default:'';uniqueIndex:idx_notifications_dedup,priority:4" json:"milestone,omitempty"`
	Title     string               `gorm:"not null" json:"title"`
	Message   string               `gorm:"type:text;not null" json:"message"`
	Metadata  NotificationMetadata `gorm:"type:text;serializer:json" json:"metadata"`
	Read      bool                 `gorm:"not null;default:false" json:"read"`
}
