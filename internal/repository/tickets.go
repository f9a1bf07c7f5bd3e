package repository

import (
	"context"
	"database/sql"

	"kassa/internal/database"
	apperrors "kassa/internal/errors"
	"kassa/internal/models"
)

const ticketColumns = `t.id, t.event_id, t.account_id, t.quantity, t.ticket_type,
	       t.status, t.payment_method, t.payment_ref, t.total_amount,
	       t.coupon_code, t.discount_amount, t.qr_code, t.created_at, t.updated_at`

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// CreateWithInventory inserts the ticket and, when the event tracks
// inventory, decrements available_tickets in the same transaction. The
// decrement carries an `available_tickets >= quantity` guard; when it hits no
// row the insert is rolled back and ErrSoldOut returned, so overselling is
// impossible under concurrent purchases.
func (r *TicketRepository) CreateWithInventory(ctx context.Context, ticket *models.Ticket, trackInventory bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := `
		INSERT INTO tickets (id, event_id, account_id, quantity, ticket_type, status,
		                     payment_method, payment_ref, total_amount, coupon_code,
		                     discount_amount, qr_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err = tx.QueryRowContext(ctx, insert,
		ticket.ID,
		ticket.EventID,
		ticket.AccountID,
		ticket.Quantity,
		ticket.TicketType,
		ticket.Status,
		ticket.PaymentMethod,
		ticket.PaymentRef,
		ticket.TotalAmount,
		ticket.CouponCode,
		ticket.DiscountAmount,
		ticket.QRCode,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		return err
	}

	if trackInventory {
		decrement := `
			UPDATE events
			SET available_tickets = available_tickets - $1, updated_at = NOW()
			WHERE id = $2 AND available_tickets >= $1`

		result, err := tx.ExecContext(ctx, decrement, ticket.Quantity, ticket.EventID)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperrors.ErrSoldOut
		}
	}

	return tx.Commit()
}

func (r *TicketRepository) GetByID(ctx context.Context, id string) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	event := &models.Event{}
	query := `
		SELECT ` + ticketColumns + `, ` + joinedEventColumns + `
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		WHERE t.id = $1`

	dest := append(scanTicketFields(ticket), scanEventFields(event)...)
	err := r.db.QueryRowContext(ctx, query, id).Scan(dest...)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ticket.Event = event
	return ticket, nil
}

func (r *TicketRepository) GetByAccount(ctx context.Context, accountID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	query := `
		SELECT ` + ticketColumns + `, ` + joinedEventColumns + `
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		WHERE t.account_id = $1
		ORDER BY t.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ticket models.Ticket
		var event models.Event

		dest := append(scanTicketFields(&ticket), scanEventFields(&event)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		ticket.Event = &event
		tickets = append(tickets, ticket)
	}

	return tickets, rows.Err()
}

// MarkUsed flips an active ticket to used and reports whether this caller
// won the flip. The conditional update makes verification exactly-once under
// concurrent scans.
func (r *TicketRepository) MarkUsed(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE tickets
		SET status = 'used', updated_at = NOW()
		WHERE id = $1 AND status = 'active'`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

// ExpireForEndedEvents marks active tickets of events that have already
// ended as expired and returns how many were flipped.
func (r *TicketRepository) ExpireForEndedEvents(ctx context.Context) (int64, error) {
	query := `
		UPDATE tickets t
		SET status = 'expired', updated_at = NOW()
		FROM events e
		WHERE e.id = t.event_id
		  AND t.status = 'active'
		  AND e.end_date < NOW()`

	result, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

const joinedEventColumns = `e.id, e.title, e.description, e.location, e.start_date, e.end_date,
	       e.price_regular, e.price_member, e.status, e.image_url, e.featured,
	       e.total_tickets, e.available_tickets, e.deleted_at, e.created_at, e.updated_at`

func scanTicketFields(ticket *models.Ticket) []interface{} {
	return []interface{}{
		&ticket.ID,
		&ticket.EventID,
		&ticket.AccountID,
		&ticket.Quantity,
		&ticket.TicketType,
		&ticket.Status,
		&ticket.PaymentMethod,
		&ticket.PaymentRef,
		&ticket.TotalAmount,
		&ticket.CouponCode,
		&ticket.DiscountAmount,
		&ticket.QRCode,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	}
}
