package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kassa/internal/models"
)

// Auth handlers

// Register - POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Accounts.Register(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, "Failed to register account")
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Login - POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Accounts.Login(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, "Failed to log in")
		return
	}

	c.JSON(http.StatusOK, response)
}
