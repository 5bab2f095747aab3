package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "walletpalz/internal/errors"
	"walletpalz/internal/models"
	"walletpalz/internal/services"
)

// SettingsHandler handles per-user preferences.
type SettingsHandler struct {
	settingsService services.SettingsServicer
	auditService    services.AuditServicer
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settingsService services.SettingsServicer, auditService services.AuditServicer) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, auditService: auditService}
}

// UpdateSettingsRequest holds the settings to change. Omitted fields keep their value.
type UpdateSettingsRequest struct {
	Currency      *string                               `json:"currency" binding:"omitempty,iso4217"`
	Theme         *models.Theme                         `json:"theme" binding:"omitempty,theme"`
	Notifications *models.NotificationPreferencesUpdate `json:"notifications"`
}

// GetSettings returns the user's settings, or the defaults if none were saved.
// @Summary     Get settings
// @Description Get the base currency, theme and notification preferences of the authenticated user
// @Tags        settings
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.UserSettings "Settings"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	settings, err := h.settingsService.GetSettings(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// UpdateSettings saves the given settings.
// @Summary     Update settings
// @Description Change the base currency, theme or notification preferences
// @Tags        settings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateSettingsRequest true "Settings to change"
// @Success     200 {object} models.UserSettings "Saved settings"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), userID, services.SettingsUpdate{
		Currency:      req.Currency,
		Theme:         req.Theme,
		Notifications: req.Notifications,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdateSettings, "settings", userID, c.ClientIP(),
		map[string]interface{}{"currency": settings.Currency, "theme": settings.Theme})

	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
