package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kassa/internal/logger"
	"kassa/internal/metrics"
	"kassa/internal/models"
)

// Catalog handlers

// ListEvents - GET /api/events
// Public listing with optional search, featured filter and pagination. The
// unfiltered first pages are served cache-aside from Valkey as raw JSON.
func (h *Handlers) ListEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return
	}
	if pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 100"})
		return
	}

	filter := models.EventFilter{
		Query:    c.Query("query"),
		Featured: c.Query("featured") == "true",
		Page:     page,
		PageSize: pageSize,
	}

	cacheable := shouldCacheEventsList(filter) && h.valkeyClient != nil

	if cacheable {
		raw, err := h.valkeyClient.GetEventsList(c.Request.Context(), eventsCacheKey(filter))
		if err != nil {
			logger.WithContext(c.Request.Context()).Warn("Events cache lookup failed", "error", err)
		}
		metrics.CacheLookup(raw != nil)
		if raw != nil {
			c.Data(http.StatusOK, "application/json", raw)
			return
		}
	}

	events, err := h.services.Events.ListPublic(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err, "Failed to list events")
		return
	}
	if events == nil {
		events = []models.Event{}
	}

	if cacheable {
		if raw, err := json.Marshal(events); err == nil {
			if err := h.valkeyClient.SetEventsList(c.Request.Context(), eventsCacheKey(filter), raw); err != nil {
				logger.WithContext(c.Request.Context()).Warn("Failed to store events in cache", "error", err)
			}
		}
	}

	c.JSON(http.StatusOK, events)
}

// GetEvent - GET /api/events/:id
func (h *Handlers) GetEvent(c *gin.Context) {
	event, err := h.services.Events.GetPublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to get event")
		return
	}

	c.JSON(http.StatusOK, event)
}

// Admin catalog handlers

// AdminListEvents - GET /api/admin/events
func (h *Handlers) AdminListEvents(c *gin.Context) {
	events, err := h.services.Events.ListAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to list events")
		return
	}

	if events == nil {
		events = []models.Event{}
	}
	c.JSON(http.StatusOK, events)
}

// AdminCreateEvent - POST /api/admin/events
func (h *Handlers) AdminCreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.services.Events.Create(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, "Failed to create event")
		return
	}

	h.invalidateEventsCache(c)
	c.JSON(http.StatusCreated, event)
}

// AdminUpdateEvent - PUT /api/admin/events/:id
func (h *Handlers) AdminUpdateEvent(c *gin.Context) {
	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.services.Events.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.respondError(c, err, "Failed to update event")
		return
	}

	h.invalidateEventsCache(c)
	c.JSON(http.StatusOK, event)
}

// AdminDeleteEvent - DELETE /api/admin/events/:id
func (h *Handlers) AdminDeleteEvent(c *gin.Context) {
	if err := h.services.Events.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "Failed to delete event")
		return
	}

	h.invalidateEventsCache(c)
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}
