package models

import "time"

// NATS subjects
const (
	SubjectTicketPurchased = "ticket.purchased"
	SubjectTicketVerified  = "ticket.verified"
	SubjectCouponRedeemed  = "coupon.redeemed"
	SubjectEventCreated    = "event.created"
	SubjectEventUpdated    = "event.updated"
	SubjectEventDeleted    = "event.deleted"
)

// TicketPurchasedEvent is published after a successful purchase
type TicketPurchasedEvent struct {
	TicketID  string    `json:"ticket_id"`
	EventID   string    `json:"event_id"`
	AccountID string    `json:"account_id"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// TicketVerifiedEvent is published when a ticket is consumed at the door
type TicketVerifiedEvent struct {
	TicketID  string    `json:"ticket_id"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CouponRedeemedEvent is published when a coupon use is spent
type CouponRedeemedEvent struct {
	Code      string    `json:"code"`
	EventID   string    `json:"event_id"`
	AccountID string    `json:"account_id"`
	Timestamp time.Time `json:"timestamp"`
}

// EventChangedEvent is published on catalog writes (created/updated/deleted)
type EventChangedEvent struct {
	EventID   string    `json:"event_id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
}
