package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kassa/internal/models"
)

// Coupon handlers

// ValidateCoupon - POST /api/validate-coupon
// Read-only check; never spends a use.
func (h *Handlers) ValidateCoupon(c *gin.Context) {
	var req models.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.services.Coupons.Validate(c.Request.Context(), req.CouponCode, req.EventID)
	if err != nil {
		h.respondError(c, err, "Failed to validate coupon")
		return
	}

	c.JSON(http.StatusOK, result)
}

// AdminListCoupons - GET /api/admin/coupons
func (h *Handlers) AdminListCoupons(c *gin.Context) {
	coupons, err := h.services.Coupons.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to list coupons")
		return
	}

	if coupons == nil {
		coupons = []models.Coupon{}
	}
	c.JSON(http.StatusOK, coupons)
}

// AdminCreateCoupon - POST /api/admin/coupons
func (h *Handlers) AdminCreateCoupon(c *gin.Context) {
	var req models.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coupon, err := h.services.Coupons.Create(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, "Failed to create coupon")
		return
	}

	c.JSON(http.StatusCreated, coupon)
}

// AdminUpdateCoupon - PUT /api/admin/coupons/:id
func (h *Handlers) AdminUpdateCoupon(c *gin.Context) {
	var req models.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	coupon, err := h.services.Coupons.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.respondError(c, err, "Failed to update coupon")
		return
	}

	c.JSON(http.StatusOK, coupon)
}

// AdminDeleteCoupon - DELETE /api/admin/coupons/:id
func (h *Handlers) AdminDeleteCoupon(c *gin.Context) {
	if err := h.services.Coupons.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "Failed to delete coupon")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted"})
}
