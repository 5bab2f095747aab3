package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "walletpalz/internal/errors"
	"walletpalz/internal/logger"
	"walletpalz/internal/models"
	"walletpalz/internal/pagination"
	"walletpalz/internal/rates"
	"walletpalz/internal/validator"
	"walletpalz/internal/worker"
)

// JobSubmitter queues background work that must run in order per key.
type JobSubmitter interface {
	Submit(key string, job worker.Job) bool
}

// transactionService handles transaction-related business logic. Creates and
// updates schedule a budget alert check for the user on the job submitter.
type transactionService struct {
	db       *gorm.DB
	settings SettingsServicer
	rates    RateProvider
	alerts   AlertServicer
	jobs     JobSubmitter
	log      *zap.SugaredLogger
}

// NewTransactionService creates a new TransactionServicer. alerts and jobs
// may be nil, in which case no notifications are produced.
func NewTransactionService(
	db *gorm.DB,
	settings SettingsServicer,
	rates RateProvider,
	alerts AlertServicer,
	jobs JobSubmitter,
) TransactionServicer {
	return &transactionService{
		db:       db,
		settings: settings,
		rates:    rates,
		alerts:   alerts,
		jobs:     jobs,
		log:      logger.Named("transactions"),
	}
}

func normalizeTransactionInput(in TransactionInput) (TransactionInput, error) {
	in.Description = strings.TrimSpace(in.Description)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))

	if in.Description == "" {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if !in.Type.Valid() {
		return in, apperrors.ErrInvalidTransactionType
	}
	if !in.Category.Valid() {
		return in, apperrors.ErrInvalidCategory
	}
	if !in.Amount.IsPositive() {
		return in, apperrors.ErrInvalidAmount
	}
	if in.Currency == "" {
		in.Currency = models.DefaultCurrency
	}
	if !validator.IsCurrency(in.Currency) {
		return in, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unsupported currency "+in.Currency)
	}
	if in.Date.IsZero() {
		in.Date = models.Today()
	}
	return in, nil
}

// CreateTransaction records a new transaction for the user.
func (s *transactionService) CreateTransaction(ctx context.Context, userID string, in TransactionInput) (*models.Transaction, error) {
	in, err := normalizeTransactionInput(in)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:      userID,
		Date:        in.Date,
		Description: in.Description,
		Category:    in.Category,
		Amount:      in.Amount,
		Currency:    in.Currency,
		Type:        in.Type,
	}
	if err := s.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.scheduleAlerts(userID, transaction, true)
	return transaction, nil
}

// GetUserTransactions retrieves a paginated, filtered list of the user's
// transactions, newest first.
func (s *transactionService) GetUserTransactions(ctx context.Context, userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Scopes(pagination.Paginate(page)).
		Order("date DESC, created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	return q
}

// GetAllTransactions returns every transaction of the user, newest first.
func (s *transactionService) GetAllTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transactions, nil
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(ctx context.Context, userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction replaces the editable fields of a transaction.
func (s *transactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, in TransactionInput) (*models.Transaction, error) {
	in, err := normalizeTransactionInput(in)
	if err != nil {
		return nil, err
	}

	transaction, err := s.GetTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return nil, err
	}

	transaction.Date = in.Date
	transaction.Description = in.Description
	transaction.Category = in.Category
	transaction.Amount = in.Amount
	transaction.Currency = in.Currency
	transaction.Type = in.Type

	if err := s.db.WithContext(ctx).Save(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.scheduleAlerts(userID, transaction, false)
	return transaction, nil
}

// DeleteTransaction soft-deletes a transaction.
func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(ctx, userID, transactionID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetSummary totals income and expenses in the user's base currency.
func (s *transactionService) GetSummary(ctx context.Context, userID string) (*TransactionSummary, error) {
	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	transactions, err := s.GetAllTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	table := s.rates.FetchRates(ctx, settings.Currency)
	summary := &TransactionSummary{
		Currency: settings.Currency,
		Income:   decimal.Zero,
		Expense:  decimal.Zero,
		Count:    len(transactions),
	}
	for i := range transactions {
		tx := &transactions[i]
		amount := rates.ToBase(tx.Amount, tx.Currency, table).Abs()
		if tx.IsExpense() {
			summary.Expense = summary.Expense.Add(amount)
		} else {
			summary.Income = summary.Income.Add(amount)
		}
	}
	summary.Balance = summary.Income.Sub(summary.Expense)
	return summary, nil
}

// scheduleAlerts queues the notification trigger for the user. The job
// reloads the user's settings and full transaction list when it runs, so
// queued checks always see the latest state.
func (s *transactionService) scheduleAlerts(userID string, transaction *models.Transaction, created bool) {
	if s.alerts == nil || s.jobs == nil {
		return
	}
	snapshot := *transaction

	ok := s.jobs.Submit(userID, func(ctx context.Context) {
		settings, err := s.settings.GetSettings(ctx, userID)
		if err != nil {
			s.log.Errorw("Failed to load settings for alerts", "user_id", userID, "error", err)
			return
		}

		if created {
			s.alerts.RecordTransaction(ctx, userID, &snapshot, settings.Currency, settings.Notifications)
		}

		transactions, err := s.GetAllTransactions(ctx, userID)
		if err != nil {
			s.log.Errorw("Failed to load transactions for alerts", "user_id", userID, "error", err)
			return
		}
		s.alerts.CheckBudgets(ctx, userID, transactions, settings.Currency, settings.Notifications)
	})
	if !ok {
		s.log.Warnw("Alert check dropped", "user_id", userID, "transaction_id", transaction.ID)
	}
}
