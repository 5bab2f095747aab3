package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"walletpalz/internal/budget"
	"walletpalz/internal/logger"
	"walletpalz/internal/models"
	"walletpalz/internal/rates"
	"walletpalz/internal/realtime"
)

// alertService turns budget spend and new transactions into notifications.
// It is the only writer of notifications.
type alertService struct {
	db    *gorm.DB
	rates RateProvider
	hub   realtime.Publisher
	log   *zap.SugaredLogger
}

// NewAlertService creates a new AlertServicer.
func NewAlertService(db *gorm.DB, rates RateProvider, hub realtime.Publisher) AlertServicer {
	return &alertService{
		db:    db,
		rates: rates,
		hub:   hub,
		log:   logger.Named("alerts"),
	}
}

// CheckBudgets recomputes spend for each of the user's budgets against the
// given transactions and records at most one notification per budget and
// tier. Spend uses the same currency conversion as budget evaluation.
func (s *alertService) CheckBudgets(
	ctx context.Context,
	userID string,
	transactions []models.Transaction,
	baseCurrency string,
	prefs models.NotificationPreferences,
) {
	if !prefs.BudgetAlerts {
		return
	}

	var budgets []models.Budget
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&budgets).Error; err != nil {
		s.log.Errorw("Failed to load budgets for alert check", "user_id", userID, "error", err)
		return
	}
	if len(budgets) == 0 {
		return
	}

	table := s.rates.FetchRates(ctx, baseCurrency)

	for i := range budgets {
		b := &budgets[i]
		spent := budget.Spent(b, transactions, table)
		pct := budget.PercentSpent(spent, b.Limit)

		tier, ok := budget.ClassifyTier(pct)
		if !ok {
			continue
		}
		s.notifyTier(ctx, userID, b, tier, spent, pct, baseCurrency)
	}
}

func (s *alertService) notifyTier(
	ctx context.Context,
	userID string,
	b *models.Budget,
	tier budget.Tier,
	spent, pct decimal.Decimal,
	currency string,
) {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND budget_id = ? AND type = ? AND milestone = ?", userID, b.ID, tier.Type, tier.Milestone).
		Count(&existing).Error; err != nil {
		s.log.Errorw("Failed to check existing notification", "budget_id", b.ID, "type", tier.Type, "error", err)
		return
	}
	if existing > 0 {
		s.log.Debugw("Budget notification already sent", "budget_id", b.ID, "type", tier.Type, "milestone", tier.Milestone)
		return
	}

	n := budgetNotification(userID, b, tier, spent, pct, currency)
	created, err := insertNotification(ctx, s.db, s.hub, n, true)
	if err != nil {
		s.log.Errorw("Failed to create budget notification", "budget_id", b.ID, "type", tier.Type, "error", err)
		return
	}
	if created {
		s.log.Infow("Budget notification created", "user_id", userID, "budget_id", b.ID, "type", tier.Type, "milestone", tier.Milestone)
	}
}

func budgetNotification(userID string, b *models.Budget, tier budget.Tier, spent, pct decimal.Decimal, currency string) *models.Notification {
	categories := strings.Join(b.CategoryNames(), ", ")
	remaining := b.Limit.Sub(spent)
	limit := b.Limit
	budgetID := b.ID

	n := &models.Notification{
		UserID:    userID,
		BudgetID:  &budgetID,
		Type:      tier.Type,
		Milestone: tier.Milestone,
		Metadata: models.NotificationMetadata{
			BudgetID:     b.ID,
			Categories:   b.CategoryNames(),
			BudgetLimit:  &limit,
			CurrentSpent: &spent,
			PercentSpent: pct.StringFixed(1),
			Milestone:    tier.Milestone,
		},
	}

	switch tier.Type {
	case models.NotificationBudgetExceeded:
		n.Title = "Budget Exceeded!"
		n.Message = fmt.Sprintf("Your %s budget has exceeded %s %s. You've spent %s %s.",
			categories, currency, limit.StringFixed(2), currency, spent.StringFixed(2))
	case models.NotificationBudgetWarning:
		n.Title = "Budget Warning"
		n.Message = fmt.Sprintf("You've used %s%% of your %s budget. %s %s remaining.",
			pct.StringFixed(0), categories, currency, remaining.StringFixed(2))
	default:
		n.Title = fmt.Sprintf("Budget Milestone: %s%%", tier.Milestone)
		n.Message = fmt.Sprintf("You've reached %s%% of your %s budget. %s %s remaining.",
			tier.Milestone, categories, currency, remaining.StringFixed(2))
	}
	return n
}

// RecordTransaction adds a transaction alert. Every call creates a new
// notification.
func (s *alertService) RecordTransaction(
	ctx context.Context,
	userID string,
	tx *models.Transaction,
	baseCurrency string,
	prefs models.NotificationPreferences,
) {
	if !prefs.TransactionAlerts {
		return
	}

	title := "Income Added"
	if tx.IsExpense() {
		title = "Expense Added"
	}
	amount := tx.Amount.Abs()

	n := &models.Notification{
		UserID: userID,
		Type:   models.NotificationTransactionAlert,
		Title:  title,
		Message: fmt.Sprintf("%s: %s %s in %s.",
			tx.Description, tx.Currency, amount.StringFixed(2), tx.Category),
		Metadata: models.NotificationMetadata{
			Categories:    []string{string(tx.Category)},
			TransactionID: tx.ID,
			Amount:        &amount,
			Currency:      tx.Currency,
		},
	}

	// Foreign-currency alerts also show the amount in the base currency when a
	// rate is available.
	if !strings.EqualFold(tx.Currency, baseCurrency) {
		table := s.rates.FetchRates(ctx, baseCurrency)
		if _, ok := table.Rate(tx.Currency); ok {
			converted := rates.ToBase(amount, tx.Currency, table)
			n.Message = fmt.Sprintf("%s: %s %s (%s %s) in %s.",
				tx.Description, tx.Currency, amount.StringFixed(2), baseCurrency, converted.StringFixed(2), tx.Category)
		}
	}

	if _, err := insertNotification(ctx, s.db, s.hub, n, false); err != nil {
		s.log.Errorw("Failed to create transaction notification", "user_id", userID, "transaction_id", tx.ID, "error", err)
	}
}
