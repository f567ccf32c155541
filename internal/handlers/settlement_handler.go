package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/services"
)

// Outcomes reported by POST /rounds/:id/settle
const (
	OutcomeSettled          = "settled"
	OutcomeAlreadyProcessed = "already_processed"
	OutcomeInProgress       = "in_progress"
)

// SettlementHandler handles settlement HTTP requests
type SettlementHandler struct {
	settlementService services.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlementService services.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
	}
}

// Settle handles POST /rounds/:id/settle
func (h *SettlementHandler) Settle(c *gin.Context) {
	result, err := h.settlementService.Settle(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"outcome": OutcomeSettled, "result": result})
	case errors.Is(err, models.ErrAlreadyProcessed):
		c.JSON(http.StatusOK, gin.H{"outcome": OutcomeAlreadyProcessed, "result": result})
	case errors.Is(err, models.ErrSettlementInProgress):
		c.JSON(http.StatusAccepted, gin.H{"outcome": OutcomeInProgress})
	default:
		respondError(c, err)
	}
}

// GetResult handles GET /rounds/:id/settlement
func (h *SettlementHandler) GetResult(c *gin.Context) {
	result, err := h.settlementService.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetWinners handles GET /rounds/:id/winners
func (h *SettlementHandler) GetWinners(c *gin.Context) {
	winners, err := h.settlementService.GetWinners(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"round_id": c.Param("id"), "winners": winners})
}

// GetLedger handles GET /rounds/:id/ledger
func (h *SettlementHandler) GetLedger(c *gin.Context) {
	entries, err := h.settlementService.GetLedger(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"round_id": c.Param("id"), "entries": entries})
}
