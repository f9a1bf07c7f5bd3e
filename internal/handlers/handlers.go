package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"kassa/internal/cache"
	apperrors "kassa/internal/errors"
	"kassa/internal/logger"
	"kassa/internal/middleware"
	"kassa/internal/models"
	"kassa/internal/service"
)

type Handlers struct {
	services     *service.Services
	valkeyClient *cache.ValkeyClient
}

func NewHandlers(services *service.Services, valkeyClient *cache.ValkeyClient) *Handlers {
	return &Handlers{
		services:     services,
		valkeyClient: valkeyClient,
	}
}

// respondError maps domain errors onto HTTP statuses. Anything unmapped is a
// 500 with a generic message; the real error only goes to the log.
func (h *Handlers) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, apperrors.ErrEventNotFound),
		errors.Is(err, apperrors.ErrTicketNotFound),
		errors.Is(err, apperrors.ErrCouponNotFound),
		errors.Is(err, apperrors.ErrSymbolNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, apperrors.ErrDuplicateEmail),
		errors.Is(err, apperrors.ErrDuplicateCouponCode):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, apperrors.ErrMembershipRequired),
		errors.Is(err, apperrors.ErrSoldOut),
		errors.Is(err, apperrors.ErrNotMember):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	default:
		if invalid, ok := apperrors.AsCouponInvalid(err); ok {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": invalid.Reason})
			return
		}
		if validation, ok := apperrors.AsValidation(err); ok {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validation.Message})
			return
		}

		logger.WithContext(c.Request.Context()).Error(fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// currentAccount returns the authenticated account or aborts with 401. The
// auth middleware always sets it on protected routes.
func (h *Handlers) currentAccount(c *gin.Context) (*models.Account, bool) {
	account, ok := middleware.CurrentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return account, ok
}

func eventsCacheKey(filter models.EventFilter) string {
	return fmt.Sprintf("events:list:p%d:s%d", filter.Page, filter.PageSize)
}

// Only the unfiltered first pages are worth caching; searches and the
// featured slice stay uncached.
func shouldCacheEventsList(filter models.EventFilter) bool {
	return filter.Query == "" && !filter.Featured && filter.Page <= 3
}

func (h *Handlers) invalidateEventsCache(c *gin.Context) {
	if h.valkeyClient == nil {
		return
	}
	if err := h.valkeyClient.InvalidateEvents(c.Request.Context()); err != nil {
		logger.WithContext(c.Request.Context()).Warn("Failed to invalidate events cache", "error", err)
	}
}
