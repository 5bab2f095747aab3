package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"walletpalz/internal/budget"
	apperrors "walletpalz/internal/errors"
	"walletpalz/internal/models"
)

// budgetService handles budget-related business logic. Budgets have no edit
// path: they are created, read and deleted.
type budgetService struct {
	db           *gorm.DB
	settings     SettingsServicer
	rates        RateProvider
	transactions TransactionServicer
	today        func() models.Date
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, settings SettingsServicer, rates RateProvider, transactions TransactionServicer) BudgetServicer {
	return &budgetService{
		db:           db,
		settings:     settings,
		rates:        rates,
		transactions: transactions,
		today:        models.Today,
	}
}

// CreateBudget validates and stores a new budget.
func (s *budgetService) CreateBudget(ctx context.Context, userID string, in BudgetInput) (*models.Budget, error) {
	b := &models.Budget{
		UserID:     userID,
		Categories: dedupeCategories(in.Categories),
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		Limit:      in.Limit,
	}
	if err := budget.Validate(b); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return b, nil
}

func dedupeCategories(in []models.Category) []models.Category {
	seen := make(map[models.Category]bool, len(in))
	out := make([]models.Category, 0, len(in))
	for _, c := range in {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// GetUserBudgets returns all of the user's budgets, latest start date first,
// each evaluated against the user's transactions in their base currency.
func (s *budgetService) GetUserBudgets(ctx context.Context, userID string) ([]BudgetWithStatus, error) {
	var budgets []models.Budget
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC, created_at DESC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(budgets) == 0 {
		return []BudgetWithStatus{}, nil
	}

	return s.evaluate(ctx, userID, budgets)
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(ctx context.Context, userID, budgetID string) (*models.Budget, error) {
	var b models.Budget
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", budgetID, userID).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &b, nil
}

// GetBudgetStatus evaluates a single budget as of today.
func (s *budgetService) GetBudgetStatus(ctx context.Context, userID, budgetID string) (*BudgetWithStatus, error) {
	b, err := s.GetBudgetByID(ctx, userID, budgetID)
	if err != nil {
		return nil, err
	}

	evaluated, err := s.evaluate(ctx, userID, []models.Budget{*b})
	if err != nil {
		return nil, err
	}
	return &evaluated[0], nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(ctx context.Context, userID, budgetID string) error {
	b, err := s.GetBudgetByID(ctx, userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(b).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *budgetService) evaluate(ctx context.Context, userID string, budgets []models.Budget) ([]BudgetWithStatus, error) {
	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	transactions, err := s.transactions.GetAllTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	table := s.rates.FetchRates(ctx, settings.Currency)
	today := s.today()

	out := make([]BudgetWithStatus, len(budgets))
	for i := range budgets {
		out[i] = BudgetWithStatus{
			Budget: budgets[i],
			Status: budget.Evaluate(&budgets[i], transactions, table, today),
		}
	}
	return out, nil
}
