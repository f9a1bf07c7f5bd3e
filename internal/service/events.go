package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "kassa/internal/errors"
	"kassa/internal/logger"
	"kassa/internal/models"
)

type EventService struct {
	events    EventStore
	search    SearchIndex
	publisher Publisher
}

func NewEventService(events EventStore, search SearchIndex, publisher Publisher) *EventService {
	return &EventService{
		events:    events,
		search:    search,
		publisher: publisher,
	}
}

// ListPublic serves the customer catalog. Text queries go to the search
// index when one is configured (it only holds live events); plain pagination
// stays on SQL, and any index failure falls back to SQL.
func (s *EventService) ListPublic(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	if s.search != nil && filter.Query != "" {
		events, err := s.search.Search(ctx, filter)
		if err == nil {
			return events, nil
		}
		logger.WithContext(ctx).Warn("Search index query failed, falling back to SQL", "error", err)
	}

	return s.events.ListPublic(ctx, filter)
}

// GetPublic returns a single live event. Soft-deleted and canceled events
// are reported as missing.
func (s *EventService) GetPublic(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil || event.DeletedAt != nil || event.Status == models.EventStatusCanceled {
		return nil, apperrors.ErrEventNotFound
	}

	return event, nil
}

// ListAll returns every event for the admin console, deleted ones included.
func (s *EventService) ListAll(ctx context.Context) ([]models.Event, error) {
	return s.events.ListAll(ctx)
}

func (s *EventService) Create(ctx context.Context, req *models.CreateEventRequest) (*models.Event, error) {
	if req.EndDate.Before(req.StartDate) {
		return nil, apperrors.NewValidation("end_date must not be before start_date")
	}

	status := req.Status
	if status == "" {
		status = models.EventStatusUpcoming
	}

	event := &models.Event{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		PriceRegular: req.PriceRegular,
		PriceMember:  req.PriceMember,
		Status:       status,
		ImageURL:     req.ImageURL,
		Featured:     req.Featured,
		TotalTickets: req.TotalTickets,
	}
	if req.TotalTickets != nil {
		if *req.TotalTickets < 0 {
			return nil, apperrors.NewValidation("total_tickets must not be negative")
		}
		available := *req.TotalTickets
		event.AvailableTickets = &available
	}

	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.indexEvent(ctx, event)
	s.publishChange(ctx, models.SubjectEventCreated, event)

	return event, nil
}

func (s *EventService) Update(ctx context.Context, id string, req *models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil || event.DeletedAt != nil {
		return nil, apperrors.ErrEventNotFound
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.StartDate != nil {
		event.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		event.EndDate = *req.EndDate
	}
	if req.PriceRegular != nil {
		event.PriceRegular = *req.PriceRegular
	}
	if req.PriceMember != nil {
		event.PriceMember = req.PriceMember
	}
	if req.Status != nil {
		event.Status = *req.Status
	}
	if req.ImageURL != nil {
		event.ImageURL = req.ImageURL
	}
	if req.Featured != nil {
		event.Featured = *req.Featured
	}

	if event.EndDate.Before(event.StartDate) {
		return nil, apperrors.NewValidation("end_date must not be before start_date")
	}

	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	// Resizing the inventory preserves the tickets already sold, so it runs
	// as its own single-statement recompute.
	if req.TotalTickets != nil && (event.TotalTickets == nil || *event.TotalTickets != *req.TotalTickets) {
		if *req.TotalTickets < 0 {
			return nil, apperrors.NewValidation("total_tickets must not be negative")
		}
		if err := s.events.ResizeInventory(ctx, id, req.TotalTickets); err != nil {
			return nil, fmt.Errorf("failed to resize inventory: %w", err)
		}
		event, err = s.events.GetByID(ctx, id)
		if err != nil || event == nil {
			return nil, fmt.Errorf("failed to reload event: %w", err)
		}
	}

	s.indexEvent(ctx, event)
	s.publishChange(ctx, models.SubjectEventUpdated, event)

	return event, nil
}

// Delete soft-deletes the event so existing tickets keep a valid reference.
func (s *EventService) Delete(ctx context.Context, id string) error {
	deleted, err := s.events.SoftDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if !deleted {
		return apperrors.ErrEventNotFound
	}

	if s.search != nil {
		if err := s.search.DeleteEvent(ctx, id); err != nil {
			logger.WithContext(ctx).Warn("Failed to remove event from search index",
				"error", err, "event_id", id)
		}
	}

	s.publishChange(ctx, models.SubjectEventDeleted, &models.Event{ID: id})

	return nil
}

func (s *EventService) indexEvent(ctx context.Context, event *models.Event) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexEvent(ctx, event); err != nil {
		logger.WithContext(ctx).Warn("Failed to index event",
			"error", err, "event_id", event.ID)
	}
}

func (s *EventService) publishChange(ctx context.Context, subject string, event *models.Event) {
	payload := models.EventChangedEvent{
		EventID:   event.ID,
		Title:     event.Title,
		Timestamp: time.Now(),
	}

	if err := s.publisher.Publish(subject, payload); err != nil {
		logger.WithContext(ctx).Error("Failed to publish catalog change",
			"error", err, "subject", subject, "event_id", event.ID)
	}
}
