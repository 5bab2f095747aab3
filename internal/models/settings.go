package models

import "time"

// Theme is the UI colour scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultCurrency is used until the user picks a base currency.
const DefaultCurrency = "USD"

// NotificationPreferences toggles which alerts a user receives.
type NotificationPreferences struct {
	EmailAlerts       bool `json:"email_alerts"`
	TransactionAlerts bool `json:"transaction_alerts"`
	BudgetAlerts      bool `json:"budget_alerts"`
	WeeklyReport      bool `json:"weekly_report"`
}

// DefaultNotificationPreferences returns the preferences of a new user.
func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{
		EmailAlerts:       true,
		TransactionAlerts: true,
		BudgetAlerts:      true,
		WeeklyReport:      false,
	}
}

// NotificationPreferencesUpdate changes only the preferences that are set.
type NotificationPreferencesUpdate struct {
	EmailAlerts       *bool `json:"email_alerts"`
	TransactionAlerts *bool `json:"transaction_alerts"`
	BudgetAlerts      *bool `json:"budget_alerts"`
	WeeklyReport      *bool `json:"weekly_report"`
}

// Apply returns prefs with the set fields of u copied over.
func (u NotificationPreferencesUpdate) Apply(prefs NotificationPreferences) NotificationPreferences {
	if u.EmailAlerts != nil {
		prefs.EmailAlerts = *u.EmailAlerts
	}
	if u.TransactionAlerts != nil {
		prefs.TransactionAlerts = *u.TransactionAlerts
	}
	if u.BudgetAlerts != nil {
		prefs.BudgetAlerts = *u.BudgetAlerts
	}
	if u.WeeklyReport != nil {
		prefs.WeeklyReport = *u.WeeklyReport
	}
	return prefs
}

// UserSettings holds per-user preferences. There is at most one row per user.
type UserSettings struct {
	UserID        string                  `gorm:"type:uuid;primaryKey" json:"user_id"`
	Currency      string                  `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Theme         Theme                   `gorm:"not null;default:'light'" json:"theme"`
	Notifications NotificationPreferences `gorm:"type:text;serializer:json" json:"notifications"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// DefaultSettings returns the settings used when a user has none stored.
func DefaultSettings(userID string) UserSettings {
	return UserSettings{
		UserID:        userID,
		Currency:      DefaultCurrency,
		Theme:         ThemeLight,
		Notifications: DefaultNotificationPreferences(),
	}
}
