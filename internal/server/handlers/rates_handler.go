package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/service/rates"
)

// RatesHandler exposes the active rate.
type RatesHandler struct {
	svc    *rates.Service
	logger *zap.Logger
}

// NewRatesHandler constructs the rates handler.
func NewRatesHandler(svc *rates.Service, logger *zap.Logger) *RatesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatesHandler{svc: svc, logger: logger}
}

type rateResponse struct {
	models.Rate
	BuyingConfigured     bool `json:"buying_configured"`
	ProductionConfigured bool `json:"production_configured"`
}

func newRateResponse(rate models.Rate) rateResponse {
	return rateResponse{Rate: rate, BuyingConfigured: rate.BuyingConfigured(), ProductionConfigured: rate.ProductionConfigured()}
}

// Get returns the active rate. Unset rates are zero.
func (h *RatesHandler) Get(c *gin.Context) {
	rate, err := h.svc.Get(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newRateResponse(rate))
}

// Put replaces all rates.
func (h *RatesHandler) Put(c *gin.Context) {
	var req models.Rate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	rate, err := h.svc.Set(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newRateResponse(rate))
}
