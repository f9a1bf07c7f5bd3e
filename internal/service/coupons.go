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

type CouponService struct {
	coupons   CouponStore
	publisher Publisher
}

func NewCouponService(coupons CouponStore, publisher Publisher) *CouponService {
	return &CouponService{
		coupons:   coupons,
		publisher: publisher,
	}
}

// Validate answers whether the code applies to the event right now. It is
// strictly read-only; the purchase path spends a use with the atomic redeem
// and never relies on this check alone.
func (s *CouponService) Validate(ctx context.Context, code, eventID string) (*models.CouponValidation, error) {
	coupon, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	if coupon == nil || !coupon.Active {
		return &models.CouponValidation{Valid: false, Message: "Invalid coupon code"}, nil
	}
	if coupon.EventID != nil && *coupon.EventID != eventID {
		return &models.CouponValidation{Valid: false, Message: "Coupon is not valid for this event"}, nil
	}

	now := time.Now()
	if now.Before(coupon.ValidFrom) {
		return &models.CouponValidation{Valid: false, Message: "Coupon is not yet valid"}, nil
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return &models.CouponValidation{Valid: false, Message: "Coupon has expired"}, nil
	}
	if coupon.MaxUses != nil && coupon.UsedCount >= *coupon.MaxUses {
		return &models.CouponValidation{Valid: false, Message: "Coupon usage limit reached"}, nil
	}

	return &models.CouponValidation{
		Valid:              true,
		DiscountPercentage: coupon.DiscountPercentage,
		Message:            "Coupon is valid",
	}, nil
}

// Redeem atomically spends one use for the purchase. When the conditional
// update misses, the read-only validation is re-run to produce the precise
// rejection reason.
func (s *CouponService) Redeem(ctx context.Context, code, eventID, accountID string) (*models.Coupon, error) {
	coupon, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if coupon == nil {
		return nil, &apperrors.CouponInvalidError{Reason: "Invalid coupon code"}
	}

	redeemed, err := s.coupons.Redeem(ctx, code, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem coupon: %w", err)
	}
	if !redeemed {
		validation, err := s.Validate(ctx, code, eventID)
		if err != nil {
			return nil, err
		}
		reason := validation.Message
		if validation.Valid {
			// Lost a race between the validation read and the redeem
			reason = "Coupon is no longer valid"
		}
		return nil, &apperrors.CouponInvalidError{Reason: reason}
	}

	payload := models.CouponRedeemedEvent{
		Code:      code,
		EventID:   eventID,
		AccountID: accountID,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(models.SubjectCouponRedeemed, payload); err != nil {
		logger.WithContext(ctx).Error("Failed to publish coupon redemption",
			"error", err, "code", code)
	}

	return coupon, nil
}

func (s *CouponService) Create(ctx context.Context, req *models.CreateCouponRequest) (*models.Coupon, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	coupon := &models.Coupon{
		ID:                 uuid.New().String(),
		Code:               req.Code,
		DiscountPercentage: req.DiscountPercentage,
		EventID:            req.EventID,
		ValidFrom:          req.ValidFrom,
		ValidUntil:         req.ValidUntil,
		MaxUses:            req.MaxUses,
		Active:             active,
	}

	if err := s.coupons.Create(ctx, coupon); err != nil {
		return nil, err
	}

	return coupon, nil
}

func (s *CouponService) List(ctx context.Context) ([]models.Coupon, error) {
	return s.coupons.List(ctx)
}

func (s *CouponService) Update(ctx context.Context, id string, req *models.UpdateCouponRequest) (*models.Coupon, error) {
	coupon, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	if coupon == nil {
		return nil, apperrors.ErrCouponNotFound
	}

	if req.Code != nil {
		coupon.Code = *req.Code
	}
	if req.DiscountPercentage != nil {
		coupon.DiscountPercentage = *req.DiscountPercentage
	}
	if req.ClearEventID {
		coupon.EventID = nil
	} else if req.EventID != nil {
		coupon.EventID = req.EventID
	}
	if req.ValidFrom != nil {
		coupon.ValidFrom = *req.ValidFrom
	}
	if req.ValidUntil != nil {
		coupon.ValidUntil = req.ValidUntil
	}
	if req.MaxUses != nil {
		coupon.MaxUses = req.MaxUses
	}
	if req.Active != nil {
		coupon.Active = *req.Active
	}

	if err := s.coupons.Update(ctx, coupon); err != nil {
		return nil, err
	}

	return coupon, nil
}

func (s *CouponService) Delete(ctx context.Context, id string) error {
	deleted, err := s.coupons.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	if !deleted {
		return apperrors.ErrCouponNotFound
	}
	return nil
}
