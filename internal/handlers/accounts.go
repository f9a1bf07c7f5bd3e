package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kassa/internal/models"
)

// Account self-service handlers

// Me - GET /api/user/me
func (h *Handlers) Me(c *gin.Context) {
	account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, account)
}

// UpdateMe - PUT /api/user/update
func (h *Handlers) UpdateMe(c *gin.Context) {
	account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	var req models.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.services.Accounts.Update(c.Request.Context(), account, &req)
	if err != nil {
		h.respondError(c, err, "Failed to update account")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// MemberVerify - POST /api/user/member-verify
func (h *Handlers) MemberVerify(c *gin.Context) {
	account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	var req models.MemberVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.services.Accounts.VerifyMembership(c.Request.Context(), account, &req)
	if err != nil {
		h.respondError(c, err, "Failed to verify membership")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// MyTickets - GET /api/user/tickets
func (h *Handlers) MyTickets(c *gin.Context) {
	account, ok := h.currentAccount(c)
	if !ok {
		return
	}

	tickets, err := h.services.Tickets.ListForAccount(c.Request.Context(), account.ID)
	if err != nil {
		h.respondError(c, err, "Failed to list tickets")
		return
	}

	if tickets == nil {
		tickets = []models.Ticket{}
	}
	c.JSON(http.StatusOK, tickets)
}
