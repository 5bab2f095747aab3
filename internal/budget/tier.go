package budget

import (
	"github.com/shopspring/decimal"

	"walletpalz/internal/models"
)

// Tier is the single notification a budget qualifies for in one pass.
type Tier struct {
	Type      models.NotificationType
	Milestone string
}

var (
	exceededAt = decimal.NewFromInt(100)
	upperMark  = decimal.NewFromInt(75)
	lowerMark  = decimal.NewFromInt(50)
)

// ClassifyTier returns the highest tier reached by pct. Tiers do not stack:
// a budget at 100% is only "exceeded", and one at 75% only reaches the 75
// milestone even if the 50 milestone was never recorded.
func ClassifyTier(pct decimal.Decimal) (Tier, bool) {
	switch {
	case pct.GreaterThanOrEqual(exceededAt):
		return Tier{Type: models.NotificationBudgetExceeded}, true
	case pct.GreaterThanOrEqual(WarningPercent):
		return Tier{Type: models.NotificationBudgetWarning}, true
	case pct.GreaterThanOrEqual(upperMark):
		return Tier{Type: models.NotificationBudgetMilestone, Milestone: "75"}, true
	case pct.GreaterThanOrEqual(lowerMark):
		return Tier{Type: models.NotificationBudgetMilestone, Milestone: "50"}, true
	}
	return Tier{}, false
}
