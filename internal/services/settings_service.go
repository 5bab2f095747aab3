package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"walletpalz/internal/cache"
	apperrors "walletpalz/internal/errors"
	"walletpalz/internal/models"
	"walletpalz/internal/validator"
)

const (
	settingsCacheSize = 1024
	settingsCacheTTL  = 5 * time.Minute
)

// settingsService reads settings through a per-user cache that is dropped
// whenever the user saves new settings.
type settingsService struct {
	db    *gorm.DB
	cache *cache.LRU[models.UserSettings]
}

// NewSettingsService creates a new SettingsServicer.
func NewSettingsService(db *gorm.DB) SettingsServicer {
	return &settingsService{
		db:    db,
		cache: cache.NewLRU[models.UserSettings](settingsCacheSize, settingsCacheTTL),
	}
}

// GetSettings returns the user's settings, or the defaults when none are stored.
func (s *settingsService) GetSettings(ctx context.Context, userID string) (*models.UserSettings, error) {
	if cached, ok := s.cache.Get(userID); ok {
		return &cached, nil
	}

	var settings models.UserSettings
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		settings = models.DefaultSettings(userID)
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.cache.Set(userID, settings)
	return &settings, nil
}

// UpdateSettings applies the non-nil fields of update and upserts the row.
func (s *settingsService) UpdateSettings(ctx context.Context, userID string, update SettingsUpdate) (*models.UserSettings, error) {
	current, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings := *current

	if update.Currency != nil {
		code := strings.ToUpper(*update.Currency)
		if !validator.IsCurrency(code) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unsupported currency "+*update.Currency)
		}
		settings.Currency = code
	}
	if update.Theme != nil {
		if *update.Theme != models.ThemeLight && *update.Theme != models.ThemeDark {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Theme must be light or dark")
		}
		settings.Theme = *update.Theme
	}
	if update.Notifications != nil {
		settings.Notifications = update.Notifications.Apply(settings.Notifications)
	}
	settings.UpdatedAt = time.Now()

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"currency", "theme", "notifications", "updated_at"}),
	}).Create(&settings).Error
	s.cache.Delete(userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return &settings, nil
}
