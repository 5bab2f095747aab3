package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"walletpalz/internal/budget"
	"walletpalz/internal/models"
	"walletpalz/internal/pagination"
	"walletpalz/internal/rates"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
	StoreRefreshTokenHash(ctx context.Context, userID, tokenHash string) error
	GetRefreshTokenHash(ctx context.Context, userID string) (string, error)
	UpdateProfile(ctx context.Context, userID, firstName, lastName string) (*models.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// SettingsServicer defines the contract for per-user preferences.
type SettingsServicer interface {
	GetSettings(ctx context.Context, userID string) (*models.UserSettings, error)
	UpdateSettings(ctx context.Context, userID string, update SettingsUpdate) (*models.UserSettings, error)
}

// SettingsUpdate carries the fields to change; nil fields are left as they are.
// Notification preferences are merged key by key.
type SettingsUpdate struct {
	Currency      *string
	Theme         *models.Theme
	Notifications *models.NotificationPreferencesUpdate
}

// RateProvider returns exchange-rate tables relative to a base currency.
type RateProvider interface {
	FetchRates(ctx context.Context, base string) rates.Table
}

// TransactionInput holds the user-editable fields of a transaction.
type TransactionInput struct {
	Date        models.Date
	Description string
	Category    models.Category
	Amount      decimal.Decimal
	Currency    string
	Type        models.TransactionType
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate *models.Date
	ToDate   *models.Date
	Type     *models.TransactionType
	Category *models.Category
}

// TransactionSummary totals a user's transactions in their base currency.
type TransactionSummary struct {
	Currency string          `json:"currency"`
	Income   decimal.Decimal `json:"income"`
	Expense  decimal.Decimal `json:"expense"`
	Balance  decimal.Decimal `json:"balance"`
	Count    int             `json:"count"`
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error)
	GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetAllTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, transactionID string, in TransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
	GetSummary(ctx context.Context, userID string) (*TransactionSummary, error)
}

// BudgetInput holds the fields of a new budget.
type BudgetInput struct {
	Categories []models.Category
	StartDate  models.Date
	EndDate    models.Date
	Limit      decimal.Decimal
}

// BudgetWithStatus pairs a budget with its evaluation for today.
type BudgetWithStatus struct {
	models.Budget
	Status budget.Status `json:"status"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(ctx context.Context, userID string, in BudgetInput) (*models.Budget, error)
	GetUserBudgets(ctx context.Context, userID string) ([]BudgetWithStatus, error)
	GetBudgetByID(ctx context.Context, userID, budgetID string) (*models.Budget, error)
	GetBudgetStatus(ctx context.Context, userID, budgetID string) (*BudgetWithStatus, error)
	DeleteBudget(ctx context.Context, userID, budgetID string) error
}

// AlertServicer creates budget and transaction notifications. Its methods
// never fail from the caller's point of view; problems are logged.
type AlertServicer interface {
	CheckBudgets(ctx context.Context, userID string, transactions []models.Transaction, baseCurrency string, prefs models.NotificationPreferences)
	RecordTransaction(ctx context.Context, userID string, tx *models.Transaction, baseCurrency string, prefs models.NotificationPreferences)
}

// NotificationList is the most recent notifications plus the unread total.
type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}

// NotificationServicer defines the contract for reading and clearing notifications.
type NotificationServicer interface {
	ListNotifications(ctx context.Context, userID string, limit int) (*NotificationList, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	ClearAll(ctx context.Context, userID string) (int64, error)
}

// MonthlyTotal is one month of the dashboard's monthly series.
type MonthlyTotal struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// DailyTotal is one day of the dashboard's weekly series.
type DailyTotal struct {
	Date    models.Date     `json:"date"`
	Weekday string          `json:"weekday"`
	Expense decimal.Decimal `json:"expense"`
}

// CategoryTotal is the expense total of one category.
type CategoryTotal struct {
	Category models.Category `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Dashboard aggregates a user's spending in their base currency.
type Dashboard struct {
	Currency     string             `json:"currency"`
	TotalIncome  decimal.Decimal    `json:"total_income"`
	TotalExpense decimal.Decimal    `json:"total_expense"`
	Balance      decimal.Decimal    `json:"balance"`
	Monthly      []MonthlyTotal     `json:"monthly"`
	Weekly       []DailyTotal       `json:"weekly"`
	Categories   []CategoryTotal    `json:"categories"`
	Budgets      []BudgetWithStatus `json:"budgets"`
}

// DashboardServicer defines the contract for spending aggregates.
type DashboardServicer interface {
	GetDashboard(ctx context.Context, userID string) (*Dashboard, error)
}

// ExportSummary counts the rows included in an export.
type ExportSummary struct {
	TotalTransactions int `json:"total_transactions"`
	TotalBudgets      int `json:"total_budgets"`
}

// UserExport is a complete copy of a user's data.
type UserExport struct {
	ExportDate   time.Time            `json:"export_date"`
	Profile      *models.User         `json:"profile"`
	Transactions []models.Transaction `json:"transactions"`
	Budgets      []models.Budget      `json:"budgets"`
	Settings     *models.UserSettings `json:"settings"`
	Summary      ExportSummary        `json:"summary"`
}

// ExportServicer defines the contract for exporting a user's data.
type ExportServicer interface {
	ExportUserData(ctx context.Context, userID string) (*UserExport, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
