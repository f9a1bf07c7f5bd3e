package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetSignals - GET /api/signals/:symbol
// Stateless indicator snapshot for a trading symbol.
func (h *Handlers) GetSignals(c *gin.Context) {
	interval := c.DefaultQuery("interval", "")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	report, err := h.services.Signals.GetSignals(c.Request.Context(), c.Param("symbol"), interval, limit)
	if err != nil {
		h.respondError(c, err, "Failed to compute signals")
		return
	}

	c.JSON(http.StatusOK, report)
}
