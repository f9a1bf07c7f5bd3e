package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "kassa/internal/errors"
	"kassa/internal/models"
)

func newCouponService() (*CouponService, *fakeCouponStore, *fakePublisher) {
	store := newFakeCouponStore()
	publisher := &fakePublisher{}
	return NewCouponService(store, publisher), store, publisher
}

func seedCoupon(t *testing.T, svc *CouponService, mutate func(*models.CreateCouponRequest)) *models.Coupon {
	t.Helper()

	req := &models.CreateCouponRequest{
		Code:               "SAVE10",
		DiscountPercentage: decimal.NewFromInt(10),
		ValidFrom:          time.Now().Add(-time.Hour),
	}
	if mutate != nil {
		mutate(req)
	}

	coupon, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	return coupon
}

func TestValidateUnknownCode(t *testing.T) {
	svc, _, _ := newCouponService()

	result, err := svc.Validate(context.Background(), "NOPE", "ev-1")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Invalid coupon code", result.Message)
}

func TestValidateInactiveCode(t *testing.T) {
	svc, _, _ := newCouponService()
	inactive := false
	seedCoupon(t, svc, func(req *models.CreateCouponRequest) {
		req.Active = &inactive
	})

	result, err := svc.Validate(context.Background(), "SAVE10", "ev-1")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Invalid coupon code", result.Message)
}

func TestValidateWrongEvent(t *testing.T) {
	svc, _, _ := newCouponService()
	scoped := "ev-1"
	seedCoupon(t, svc, func(req *models.CreateCouponRequest) {
		req.EventID = &scoped
	})

	result, err := svc.Validate(context.Background(), "SAVE10", "ev-2")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Coupon is not valid for this event", result.Message)
}

func TestValidateNotYetValid(t *testing.T) {
	svc, _, _ := newCouponService()
	seedCoupon(t, svc, func(req *models.CreateCouponRequest) {
		req.ValidFrom = time.Now().Add(time.Hour)
	})

	result, err := svc.Validate(context.Background(), "SAVE10", "ev-1")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Coupon is not yet valid", result.Message)
}

func TestValidateExpired(t *testing.T) {
	svc, _, _ := newCouponService()
	until := time.Now().Add(-time.Minute)
	seedCoupon(t, svc, func(req *models.CreateCouponRequest) {
		req.ValidFrom = time.Now().Add(-time.Hour)
		req.ValidUntil = &until
	})

	result, err := svc.Validate(context.Background(), "SAVE10", "ev-1")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Coupon has expired", result.Message)
}

func TestValidateUsageLimitReached(t *testing.T) {
	svc, store, _ := newCouponService()
	maxUses := 1
	coupon := seedCoupon(t, svc, func(req *models.CreateCouponRequest) {
		req.MaxUses = &maxUses
	})
	store.coupons[coupon.ID].UsedCount = 1

	result, err := svc.Validate(context.Background(), "SAVE10", "ev-1")
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Coupon usage limit reached", result.Message)
}

func TestValidateNeverMutates(t *testing.T) {
	svc, store, _ := newCouponService()
	coupon := seedCoupon(t, svc, nil)

	for i := 0; i < 3; i++ {
		result, err := svc.Validate(context.Background(), "SAVE10", "ev-1")
		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.True(t, decimal.NewFromInt(10).Equal(result.DiscountPercentage))
	}

	assert.Equal(t, 0, store.coupons[coupon.ID].UsedCount)
}

func TestRedeemSpendsUseAndPublishes(t *testing.T) {
	svc, store, publisher := newCouponService()
	coupon := seedCoupon(t, svc, nil)

	redeemed, err := svc.Redeem(context.Background(), "SAVE10", "ev-1", "acc-1")
	require.NoError(t, err)
	assert.Equal(t, coupon.ID, redeemed.ID)
	assert.Equal(t, 1, store.coupons[coupon.ID].UsedCount)
	assert.Contains(t, publisher.published, models.SubjectCouponRedeemed)
}

func TestRedeemOverCapReportsReason(t *testing.T) {
	svc, _, _ := newCouponService()
	maxUses := 1
	seedCoupon(t, svc, func(req *models.CreateCouponRequest) {
		req.MaxUses = &maxUses
	})

	_, err := svc.Redeem(context.Background(), "SAVE10", "ev-1", "acc-1")
	require.NoError(t, err)

	_, err = svc.Redeem(context.Background(), "SAVE10", "ev-1", "acc-2")
	invalid, ok := apperrors.AsCouponInvalid(err)
	require.True(t, ok)
	assert.Equal(t, "Coupon usage limit reached", invalid.Reason)
}

func TestCreateDuplicateCode(t *testing.T) {
	svc, _, _ := newCouponService()
	seedCoupon(t, svc, nil)

	_, err := svc.Create(context.Background(), &models.CreateCouponRequest{
		Code:               "SAVE10",
		DiscountPercentage: decimal.NewFromInt(20),
		ValidFrom:          time.Now(),
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateCouponCode)
}

func TestUpdateAndDeleteCoupon(t *testing.T) {
	svc, _, _ := newCouponService()
	coupon := seedCoupon(t, svc, nil)

	newPct := decimal.NewFromInt(25)
	updated, err := svc.Update(context.Background(), coupon.ID, &models.UpdateCouponRequest{
		DiscountPercentage: &newPct,
	})
	require.NoError(t, err)
	assert.True(t, newPct.Equal(updated.DiscountPercentage))

	require.NoError(t, svc.Delete(context.Background(), coupon.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), coupon.ID), apperrors.ErrCouponNotFound)
}

func TestUpdateClearsEventScope(t *testing.T) {
	svc, _, _ := newCouponService()
	scoped := "ev-1"
	coupon := seedCoupon(t, svc, func(req *models.CreateCouponRequest) {
		req.EventID = &scoped
	})

	// Scoped coupon rejects other events
	result, err := svc.Validate(context.Background(), coupon.Code, "ev-2")
	require.NoError(t, err)
	assert.False(t, result.Valid)

	updated, err := svc.Update(context.Background(), coupon.ID, &models.UpdateCouponRequest{
		ClearEventID: true,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.EventID)

	// Widened back to all events
	result, err = svc.Validate(context.Background(), coupon.Code, "ev-2")
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestUpdateWithoutEventIDKeepsScope(t *testing.T) {
	svc, _, _ := newCouponService()
	scoped := "ev-1"
	coupon := seedCoupon(t, svc, func(req *models.CreateCouponRequest) {
		req.EventID = &scoped
	})

	pct := decimal.NewFromInt(15)
	updated, err := svc.Update(context.Background(), coupon.ID, &models.UpdateCouponRequest{
		DiscountPercentage: &pct,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.EventID)
	assert.Equal(t, scoped, *updated.EventID)
}
