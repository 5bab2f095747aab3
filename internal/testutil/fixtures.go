package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"walletpalz/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:     email,
		Password:  string(hash),
		FirstName: "Test",
		LastName:  "User",
		IsActive:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestTransaction creates a transaction. amount is a decimal string.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, category models.Category, amount, currency string, date models.Date) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		Date:        date,
		Description: fmt.Sprintf("Test Transaction %d", nextID()),
		Category:    category,
		Amount:      decimal.RequireFromString(amount),
		Currency:    currency,
		Type:        txType,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates a budget over [start, end] for the given categories.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID string, categories []models.Category, limit string, start, end models.Date) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:     userID,
		Categories: categories,
		StartDate:  start,
		EndDate:    end,
		Limit:      decimal.RequireFromString(limit),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestSettings stores settings with the given base currency and default
// preferences.
func CreateTestSettings(t *testing.T, db *gorm.DB, userID, currency string) *models.UserSettings {
	t.Helper()

	settings := models.DefaultSettings(userID)
	settings.Currency = currency
	if err := db.Create(&settings).Error; err != nil {
		t.Fatalf("failed to create test settings: %v", err)
	}
	return &settings
}

// CreateTestNotification creates an unread transaction alert.
func CreateTestNotification(t *testing.T, db *gorm.DB, userID string) *models.Notification {
	t.Helper()

	n := &models.Notification{
		UserID:  userID,
		Type:    models.NotificationTransactionAlert,
		Title:   "Expense Added",
		Message: fmt.Sprintf("Test notification %d", nextID()),
	}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("failed to create test notification: %v", err)
	}
	return n
}
