package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ArowuTest/poolgame-backend/internal/models"
)

// statusFor maps an error class to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrConfigInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrSettlementInProgress):
		return http.StatusAccepted
	case errors.Is(err, models.ErrAlreadyProcessed):
		return http.StatusOK
	case errors.Is(err, models.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, models.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondError writes err with the status of its class. Unclassified errors
// are attached to the context for the request logger and hidden from the
// response.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	body := gin.H{"error": err.Error()}
	if models.IsRetryable(err) {
		body["retryable"] = true
	}
	c.JSON(status, body)
}

// badRequest reports an unparsable request body
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
