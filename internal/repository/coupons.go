package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"kassa/internal/database"
	apperrors "kassa/internal/errors"
	"kassa/internal/models"
)

type CouponRepository struct {
	db *database.DB
}

func NewCouponRepository(db *database.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) Create(ctx context.Context, coupon *models.Coupon) error {
	query := `
		INSERT INTO coupons (id, code, discount_percentage, event_id, valid_from, valid_until, max_uses, used_count, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		coupon.ID,
		coupon.Code,
		coupon.DiscountPercentage,
		coupon.EventID,
		coupon.ValidFrom,
		coupon.ValidUntil,
		coupon.MaxUses,
		coupon.UsedCount,
		coupon.Active,
	).Scan(&coupon.CreatedAt, &coupon.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperrors.ErrDuplicateCouponCode
	}

	return err
}

func (r *CouponRepository) GetByID(ctx context.Context, id string) (*models.Coupon, error) {
	coupon := &models.Coupon{}
	query := `
		SELECT id, code, discount_percentage, event_id, valid_from, valid_until,
		       max_uses, used_count, active, created_at, updated_at
		FROM coupons
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(scanCouponFields(coupon)...)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return coupon, err
}

func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	coupon := &models.Coupon{}
	query := `
		SELECT id, code, discount_percentage, event_id, valid_from, valid_until,
		       max_uses, used_count, active, created_at, updated_at
		FROM coupons
		WHERE code = $1`

	err := r.db.QueryRowContext(ctx, query, code).Scan(scanCouponFields(coupon)...)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return coupon, err
}

// List returns all coupons with the scoped event embedded when one is set.
func (r *CouponRepository) List(ctx context.Context) ([]models.Coupon, error) {
	var coupons []models.Coupon
	query := `
		SELECT c.id, c.code, c.discount_percentage, c.event_id, c.valid_from,
		       c.valid_until, c.max_uses, c.used_count, c.active, c.created_at,
		       c.updated_at, e.id, e.title, e.start_date, e.end_date, e.status
		FROM coupons c
		LEFT JOIN events e ON e.id = c.event_id
		ORDER BY c.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var coupon models.Coupon
		var eventID, eventTitle, eventStatus *string
		var eventStart, eventEnd *time.Time

		dest := scanCouponFields(&coupon)
		dest = append(dest, &eventID, &eventTitle, &eventStart, &eventEnd, &eventStatus)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		if eventID != nil {
			coupon.Event = &models.Event{
				ID:        *eventID,
				Title:     *eventTitle,
				StartDate: *eventStart,
				EndDate:   *eventEnd,
				Status:    *eventStatus,
			}
		}
		coupons = append(coupons, coupon)
	}

	return coupons, rows.Err()
}

func (r *CouponRepository) Update(ctx context.Context, coupon *models.Coupon) error {
	query := `
		UPDATE coupons
		SET code = $1, discount_percentage = $2, event_id = $3, valid_from = $4,
		    valid_until = $5, max_uses = $6, active = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		coupon.Code,
		coupon.DiscountPercentage,
		coupon.EventID,
		coupon.ValidFrom,
		coupon.ValidUntil,
		coupon.MaxUses,
		coupon.Active,
		coupon.ID,
	).Scan(&coupon.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperrors.ErrDuplicateCouponCode
	}

	return err
}

func (r *CouponRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

// Redeem spends one use of the coupon for the given event in a single
// conditional update. It succeeds only while the coupon is active, in scope,
// inside its validity window and under its usage cap, so concurrent
// purchases can never push used_count past max_uses.
func (r *CouponRepository) Redeem(ctx context.Context, code, eventID string) (bool, error) {
	query := `
		UPDATE coupons
		SET used_count = used_count + 1, updated_at = NOW()
		WHERE code = $1
		  AND active = TRUE
		  AND (event_id IS NULL OR event_id = $2)
		  AND valid_from <= NOW()
		  AND (valid_until IS NULL OR valid_until >= NOW())
		  AND (max_uses IS NULL OR used_count < max_uses)`

	result, err := r.db.ExecContext(ctx, query, code, eventID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected > 0, err
}

func scanCouponFields(coupon *models.Coupon) []interface{} {
	return []interface{}{
		&coupon.ID,
		&coupon.Code,
		&coupon.DiscountPercentage,
		&coupon.EventID,
		&coupon.ValidFrom,
		&coupon.ValidUntil,
		&coupon.MaxUses,
		&coupon.UsedCount,
		&coupon.Active,
		&coupon.CreatedAt,
		&coupon.UpdatedAt,
	}
}
