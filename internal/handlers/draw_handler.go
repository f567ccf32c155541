package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/poolgame-backend/internal/middleware"
	"github.com/ArowuTest/poolgame-backend/internal/services"
)

// DrawHandler handles draw-related HTTP requests
type DrawHandler struct {
	drawService services.DrawService
}

// NewDrawHandler creates a new DrawHandler
func NewDrawHandler(drawService services.DrawService) *DrawHandler {
	return &DrawHandler{
		drawService: drawService,
	}
}

// RecordDrawRequest is the body of POST /rounds/:id/draw
type RecordDrawRequest struct {
	Values      []string `json:"values" binding:"required,min=1"`
	TimeSlot    string   `json:"time_slot"`
	Description string   `json:"description"`
}

// RecordDraw handles POST /rounds/:id/draw
func (h *DrawHandler) RecordDraw(c *gin.Context) {
	var request RecordDrawRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	draw, err := h.drawService.RecordDraw(
		c.Request.Context(),
		c.Param("id"),
		request.Values,
		request.TimeSlot,
		request.Description,
		c.GetString(middleware.ContextUserID),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draw)
}

// GetDraw handles GET /rounds/:id/draw
func (h *DrawHandler) GetDraw(c *gin.Context) {
	draw, err := h.drawService.GetDraw(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, draw)
}
