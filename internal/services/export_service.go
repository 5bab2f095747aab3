package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	apperrors "walletpalz/internal/errors"
	"walletpalz/internal/models"
)

// exportService assembles a downloadable copy of a user's data.
type exportService struct {
	db           *gorm.DB
	users        UserServicer
	settings     SettingsServicer
	transactions TransactionServicer
}

// NewExportService creates a new ExportServicer.
func NewExportService(db *gorm.DB, users UserServicer, settings SettingsServicer, transactions TransactionServicer) ExportServicer {
	return &exportService{
		db:           db,
		users:        users,
		settings:     settings,
		transactions: transactions,
	}
}

// ExportUserData returns the user's profile, transactions (newest first),
// budgets and settings.
func (s *exportService) ExportUserData(ctx context.Context, userID string) (*UserExport, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	transactions, err := s.transactions.GetAllTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	var budgets []models.Budget
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("start_date DESC").Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if transactions == nil {
		transactions = []models.Transaction{}
	}
	if budgets == nil {
		budgets = []models.Budget{}
	}

	return &UserExport{
		ExportDate:   time.Now().UTC(),
		Profile:      user,
		Transactions: transactions,
		Budgets:      budgets,
		Settings:     settings,
		Summary: ExportSummary{
			TotalTransactions: len(transactions),
			TotalBudgets:      len(budgets),
		},
	}, nil
}
