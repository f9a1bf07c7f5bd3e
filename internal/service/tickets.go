package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "kassa/internal/errors"
	"kassa/internal/logger"
	"kassa/internal/metrics"
	"kassa/internal/models"
	"kassa/internal/qr"
)

type TicketService struct {
	tickets   TicketStore
	events    EventStore
	coupons   *CouponService
	publisher Publisher
	notifier  Notifier
}

func NewTicketService(tickets TicketStore, events EventStore, coupons *CouponService, publisher Publisher, notifier Notifier) *TicketService {
	return &TicketService{
		tickets:   tickets,
		events:    events,
		coupons:   coupons,
		publisher: publisher,
		notifier:  notifier,
	}
}

// Purchase runs the full fulfillment flow. The total is always computed from
// the event's price tiers; client-supplied amounts are never trusted. The
// coupon is spent before the inventory decrement, so a purchase that then
// hits a sold-out event leaves the use consumed. That ordering is accepted:
// the reverse would hold inventory for purchases that fail on the coupon.
func (s *TicketService) Purchase(ctx context.Context, account *models.Account, req *models.PurchaseRequest) (*models.PurchaseResponse, *models.Ticket, error) {
	event, err := s.events.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil || event.DeletedAt != nil {
		return nil, nil, apperrors.ErrEventNotFound
	}

	if req.TicketType == models.TicketTypeMember && !(account.Member && account.MemberVerified) {
		return nil, nil, apperrors.ErrMembershipRequired
	}

	total := event.TierPrice(req.TicketType).Mul(decimal.NewFromInt(int64(req.Quantity)))
	discount := decimal.Zero

	var couponCode *string
	if req.CouponCode != nil && *req.CouponCode != "" {
		coupon, err := s.coupons.Redeem(ctx, *req.CouponCode, event.ID, account.ID)
		if err != nil {
			return nil, nil, err
		}

		discount = total.Mul(coupon.DiscountPercentage).Div(decimal.NewFromInt(100)).Round(2)
		total = total.Sub(discount)
		couponCode = req.CouponCode
		metrics.CouponRedeemed()
	}

	ticketID := uuid.New().String()

	qrCode, err := qr.Encode(qr.Payload{
		TicketID:  ticketID,
		EventID:   event.ID,
		AccountID: account.ID,
		Quantity:  req.Quantity,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	paymentRef := "PAY-" + strings.ToUpper(uuid.New().String()[:8])

	ticket := &models.Ticket{
		ID:             ticketID,
		EventID:        event.ID,
		AccountID:      account.ID,
		Quantity:       req.Quantity,
		TicketType:     req.TicketType,
		Status:         models.TicketStatusActive,
		PaymentMethod:  req.PaymentMethod,
		PaymentRef:     &paymentRef,
		TotalAmount:    total,
		CouponCode:     couponCode,
		DiscountAmount: discount,
		QRCode:         qrCode,
	}

	if err := s.tickets.CreateWithInventory(ctx, ticket, event.TracksInventory()); err != nil {
		return nil, nil, err
	}

	metrics.TicketPurchased()

	payload := models.TicketPurchasedEvent{
		TicketID:  ticket.ID,
		EventID:   ticket.EventID,
		AccountID: ticket.AccountID,
		Quantity:  ticket.Quantity,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(models.SubjectTicketPurchased, payload); err != nil {
		logger.WithContext(ctx).Error("Failed to publish ticket purchase",
			"error", err, "ticket_id", ticket.ID)
	}

	s.notifier.NotifyAsync("ticket_purchased", ticket)

	response := &models.PurchaseResponse{
		Success:        true,
		TicketID:       ticket.ID,
		TotalAmount:    total,
		DiscountAmount: discount,
		Message:        "Purchase completed",
	}

	return response, ticket, nil
}

// Get returns the ticket with its event. Only the owner and admins may read
// a ticket.
func (s *TicketService) Get(ctx context.Context, account *models.Account, id string) (*models.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, apperrors.ErrTicketNotFound
	}

	if ticket.AccountID != account.ID && !account.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	return ticket, nil
}

func (s *TicketService) ListForAccount(ctx context.Context, accountID string) ([]models.Ticket, error) {
	return s.tickets.GetByAccount(ctx, accountID)
}

// Verify consumes a ticket at the door. The conditional flip in the store
// guarantees a single winner; every other caller gets the current status as
// the rejection reason and nothing is mutated.
func (s *TicketService) Verify(ctx context.Context, id string) (*models.VerifyResult, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, apperrors.ErrTicketNotFound
	}

	won, err := s.tickets.MarkUsed(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark ticket used: %w", err)
	}

	if !won {
		reason := "Ticket has already been used"
		switch ticket.Status {
		case models.TicketStatusCanceled:
			reason = "Ticket has been canceled"
		case models.TicketStatusExpired:
			reason = "Ticket has expired"
		}

		metrics.TicketVerified("rejected")
		return &models.VerifyResult{Valid: false, Reason: reason}, nil
	}

	ticket.Status = models.TicketStatusUsed
	metrics.TicketVerified("valid")

	payload := models.TicketVerifiedEvent{
		TicketID:  ticket.ID,
		EventID:   ticket.EventID,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(models.SubjectTicketVerified, payload); err != nil {
		logger.WithContext(ctx).Error("Failed to publish ticket verification",
			"error", err, "ticket_id", ticket.ID)
	}

	return &models.VerifyResult{
		Valid:  true,
		Ticket: ticket,
		Event:  ticket.Event,
	}, nil
}

// ExpireTickets flips active tickets of ended events to expired. Run
// periodically by the background job.
func (s *TicketService) ExpireTickets(ctx context.Context) (int64, error) {
	return s.tickets.ExpireForEndedEvents(ctx)
}
