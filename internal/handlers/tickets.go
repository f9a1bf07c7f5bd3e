package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kassa/internal/models"
)

// Ticket handlers

// PurchaseTickets - POST /api/purchase-tickets
func (h *Handlers) PurchaseTickets(c *gin.Context) {
	account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	var req models.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, _, err := h.services.Tickets.Purchase(c.Request.Context(), account, &req)
	if err != nil {
		h.respondError(c, err, "Failed to purchase tickets")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetTicket - GET /api/tickets/:id
// Owner or admin only.
func (h *Handlers) GetTicket(c *gin.Context) {
	account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	ticket, err := h.services.Tickets.Get(c.Request.Context(), account, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to get ticket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// VerifyTicket - POST /api/tickets/:id/verify
// Admin only; consumes the ticket exactly once.
func (h *Handlers) VerifyTicket(c *gin.Context) {
	result, err := h.services.Tickets.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to verify ticket")
		return
	}

	c.JSON(http.StatusOK, result)
}
