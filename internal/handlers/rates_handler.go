package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"walletpalz/internal/rates"
	"walletpalz/internal/services"
)

// RatesHandler exposes the exchange rates used for conversions.
type RatesHandler struct {
	settingsService services.SettingsServicer
	rateProvider    services.RateProvider
}

// NewRatesHandler creates a new RatesHandler.
func NewRatesHandler(settingsService services.SettingsServicer, rateProvider services.RateProvider) *RatesHandler {
	return &RatesHandler{settingsService: settingsService, rateProvider: rateProvider}
}

// RatesResponse is the rate table for a base currency. Available is false
// when the provider could not be reached and amounts are shown unconverted.
type RatesResponse struct {
	Base      string      `json:"base"`
	Rates     rates.Table `json:"rates" swaggertype:"object,string"`
	Available bool        `json:"available"`
}

// GetRates returns the rate table for the user's base currency.
// @Summary     Get exchange rates
// @Description Units of each currency per one unit of the user's base currency
// @Tags        rates
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} RatesResponse "Rate table"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /rates [get]
func (h *RatesHandler) GetRates(c *gin.Context) {
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

	table := h.rateProvider.FetchRates(c.Request.Context(), settings.Currency)
	if table == nil {
		table = rates.Table{}
	}

	c.JSON(http.StatusOK, RatesResponse{Base: settings.Currency, Rates: table, Available: len(table) > 0})
}
