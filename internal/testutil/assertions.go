package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "walletpalz/internal/errors"
	"walletpalz/internal/models"
)

// AssertAppError fails unless err carries an *AppError with the given code
// and returns it for further checks.
func AssertAppError(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error %s, got nil", code)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError %s, got %T: %v", code, err, err)
	}
	if appErr.Code != code {
		t.Errorf("error code = %s, want %s (message: %s)", appErr.Code, code, appErr.Message)
	}
	if appErr.StatusCode == 0 {
		t.Errorf("error %s has no HTTP status", appErr.Code)
	}
	return appErr
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertDecimal compares money values numerically, so "12.5" matches "12.50".
func AssertDecimal(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	w, err := decimal.NewFromString(want)
	if err != nil {
		t.Fatalf("bad expected decimal %q: %v", want, err)
	}
	if !got.Equal(w) {
		t.Errorf("%s = %s, want %s", field, got, want)
	}
}

// AssertNotificationCount checks how many notifications the user holds. An
// empty kind counts every type.
func AssertNotificationCount(t *testing.T, db *gorm.DB, userID string, kind models.NotificationType, want int64) {
	t.Helper()
	q := db.Model(&models.Notification{}).Where("user_id = ?", userID)
	if kind != "" {
		q = q.Where("type = ?", kind)
	}
	var got int64
	if err := q.Count(&got).Error; err != nil {
		t.Fatalf("failed to count notifications: %v", err)
	}
	if got != want {
		label := "all"
		if kind != "" {
			label = string(kind)
		}
		t.Errorf("%s notifications = %d, want %d", label, got, want)
	}
}
