package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/poolgame-backend/internal/models"
	"github.com/ArowuTest/poolgame-backend/internal/services"
)

// RoundHandler handles round lifecycle HTTP requests
type RoundHandler struct {
	roundService services.RoundService
}

// NewRoundHandler creates a new RoundHandler
func NewRoundHandler(roundService services.RoundService) *RoundHandler {
	return &RoundHandler{
		roundService: roundService,
	}
}

// GetStatus handles GET /rounds/:id/status
func (h *RoundHandler) GetStatus(c *gin.Context) {
	round, err := h.roundService.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"round_id":   round.ID,
		"status":     round.Status,
		"processed":  round.Processed,
		"end_time":   round.EndTime,
		"settlement": round.Settlement,
	})
}

// Close handles POST /rounds/:id/close
func (h *RoundHandler) Close(c *gin.Context) {
	status, err := h.roundService.Close(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"round_id": c.Param("id"), "status": status})
}

// UpdatePremiationRequest is the body of PUT /rounds/:id/premiation. Unit
// states whether shares are fractions of 1 or percentages.
type UpdatePremiationRequest struct {
	Unit       models.ShareUnit            `json:"unit" binding:"required,oneof=fraction percent"`
	Mode       models.PremiationMode       `json:"mode"`
	Shares     map[models.Category]float64 `json:"shares"`
	PointTiers []models.PointTier          `json:"point_tiers"`
}

// UpdatePremiation handles PUT /rounds/:id/premiation
func (h *RoundHandler) UpdatePremiation(c *gin.Context) {
	var request UpdatePremiationRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	cfg := models.PremiationConfig{
		Mode:       request.Mode,
		Shares:     request.Shares,
		PointTiers: request.PointTiers,
	}
	stored, err := h.roundService.UpdatePremiation(c.Request.Context(), c.Param("id"), cfg, request.Unit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stored)
}
