package repository

import (
	"context"
	"database/sql"
	"fmt"

	"kassa/internal/database"
	"kassa/internal/models"
)

const eventColumns = `id, title, description, location, start_date, end_date,
	       price_regular, price_member, status, image_url, featured,
	       total_tickets, available_tickets, deleted_at, created_at, updated_at`

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, title, description, location, start_date, end_date,
		                    price_regular, price_member, status, image_url, featured,
		                    total_tickets, available_tickets)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Location,
		event.StartDate,
		event.EndDate,
		event.PriceRegular,
		event.PriceMember,
		event.Status,
		event.ImageURL,
		event.Featured,
		event.TotalTickets,
		event.AvailableTickets,
	).Scan(&event.CreatedAt, &event.UpdatedAt)

	return err
}

// GetByID returns the event regardless of its deleted_at marker; callers
// decide whether a soft-deleted row counts as missing.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	event := &models.Event{}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(scanEventFields(event)...)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return event, err
}

// ListPublic returns the customer-facing catalog: soft-deleted and canceled
// events are excluded.
func (r *EventRepository) ListPublic(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	var args []interface{}
	argIndex := 1

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE deleted_at IS NULL AND status != 'canceled'`

	if filter.Query != "" {
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d OR location ILIKE $%d)",
			argIndex, argIndex, argIndex)
		args = append(args, "%"+filter.Query+"%")
		argIndex++
	}

	if filter.Featured {
		query += " AND featured = TRUE"
	}

	query += " ORDER BY start_date ASC, id ASC"

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, filter.PageSize, offset)
	}

	return r.queryEvents(ctx, query, args...)
}

// ListAll returns every event including soft-deleted and canceled ones, for
// the admin console.
func (r *EventRepository) ListAll(ctx context.Context) ([]models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		ORDER BY start_date ASC, id ASC`

	return r.queryEvents(ctx, query)
}

// Update persists the descriptive fields. Inventory columns are resized
// separately so the recompute stays a single statement.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, location = $3, start_date = $4,
		    end_date = $5, price_regular = $6, price_member = $7, status = $8,
		    image_url = $9, featured = $10, updated_at = NOW()
		WHERE id = $11 AND deleted_at IS NULL
		RETURNING updated_at`

	return r.db.QueryRowContext(ctx, query,
		event.Title,
		event.Description,
		event.Location,
		event.StartDate,
		event.EndDate,
		event.PriceRegular,
		event.PriceMember,
		event.Status,
		event.ImageURL,
		event.Featured,
		event.ID,
	).Scan(&event.UpdatedAt)
}

// ResizeInventory changes total_tickets and recomputes available_tickets in
// one statement, preserving the number of tickets already sold:
// available = max(0, new_total - sold).
func (r *EventRepository) ResizeInventory(ctx context.Context, id string, newTotal *int) error {
	query := `
		UPDATE events
		SET total_tickets = $2,
		    available_tickets = CASE
		        WHEN $2::INTEGER IS NULL THEN NULL
		        WHEN total_tickets IS NULL THEN $2::INTEGER
		        ELSE GREATEST(0, $2::INTEGER - (total_tickets - available_tickets))
		    END,
		    updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	_, err := r.db.ExecContext(ctx, query, id, newTotal)
	return err
}

// SoftDelete marks the event deleted and reports whether a live row was hit.
func (r *EventRepository) SoftDelete(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE events
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]models.Event, error) {
	var events []models.Event

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var event models.Event
		if err := rows.Scan(scanEventFields(&event)...); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

func scanEventFields(event *models.Event) []interface{} {
	return []interface{}{
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.StartDate,
		&event.EndDate,
		&event.PriceRegular,
		&event.PriceMember,
		&event.Status,
		&event.ImageURL,
		&event.Featured,
		&event.TotalTickets,
		&event.AvailableTickets,
		&event.DeletedAt,
		&event.CreatedAt,
		&event.UpdatedAt,
	}
}
