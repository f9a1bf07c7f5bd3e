package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account roles
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Event statuses
const (
	EventStatusUpcoming  = "upcoming"
	EventStatusOngoing   = "ongoing"
	EventStatusCompleted = "completed"
	EventStatusCanceled  = "canceled"
)

// Ticket statuses
const (
	TicketStatusActive   = "active"
	TicketStatusUsed     = "used"
	TicketStatusCanceled = "canceled"
	TicketStatusExpired  = "expired"
)

// Ticket price tiers
const (
	TicketTypeRegular = "regular"
	TicketTypeMember  = "member"
)

// Account represents a registered account
type Account struct {
	ID             string    `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	PasswordHash   string    `json:"-" db:"password_hash"`
	FirstName      string    `json:"first_name" db:"first_name"`
	LastName       string    `json:"last_name" db:"last_name"`
	Role           string    `json:"role" db:"role"`
	Phone          *string   `json:"phone" db:"phone"`
	Member         bool      `json:"member" db:"member"`
	MemberID       *string   `json:"member_id" db:"member_id"`
	MemberVerified bool      `json:"member_verified" db:"member_verified"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin reports whether the account holds an administrative role
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}

// Event represents a catalog event
type Event struct {
	ID               string           `json:"id" db:"id"`
	Title            string           `json:"title" db:"title"`
	Description      string           `json:"description" db:"description"`
	Location         string           `json:"location" db:"location"`
	StartDate        time.Time        `json:"start_date" db:"start_date"`
	EndDate          time.Time        `json:"end_date" db:"end_date"`
	PriceRegular     decimal.Decimal  `json:"price_regular" db:"price_regular"`
	PriceMember      *decimal.Decimal `json:"price_member" db:"price_member"`
	Status           string           `json:"status" db:"status"`
	ImageURL         *string          `json:"image_url" db:"image_url"`
	Featured         bool             `json:"featured" db:"featured"`
	TotalTickets     *int             `json:"total_tickets" db:"total_tickets"`
	AvailableTickets *int             `json:"available_tickets" db:"available_tickets"`
	DeletedAt        *time.Time       `json:"-" db:"deleted_at"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// TracksInventory reports whether purchases decrement a live ticket counter
func (e *Event) TracksInventory() bool {
	return e.TotalTickets != nil
}

// TierPrice returns the unit price for a ticket tier. Events without a member
// price fall back to the regular tier.
func (e *Event) TierPrice(ticketType string) decimal.Decimal {
	if ticketType == TicketTypeMember && e.PriceMember != nil {
		return *e.PriceMember
	}
	return e.PriceRegular
}

// Coupon represents a discount code
type Coupon struct {
	ID                 string          `json:"id" db:"id"`
	Code               string          `json:"code" db:"code"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" db:"discount_percentage"`
	EventID            *string         `json:"event_id" db:"event_id"` // nil applies to all events
	ValidFrom          time.Time       `json:"valid_from" db:"valid_from"`
	ValidUntil         *time.Time      `json:"valid_until" db:"valid_until"` // nil means no expiry
	MaxUses            *int            `json:"max_uses" db:"max_uses"`       // nil means unlimited
	UsedCount          int             `json:"used_count" db:"used_count"`
	Active             bool            `json:"active" db:"active"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
	Event              *Event          `json:"event,omitempty"` // not from DB, filled separately
}

// Ticket represents a purchased ticket
type Ticket struct {
	ID             string          `json:"id" db:"id"`
	EventID        string          `json:"event_id" db:"event_id"`
	AccountID      string          `json:"account_id" db:"account_id"`
	Quantity       int             `json:"quantity" db:"quantity"`
	TicketType     string          `json:"ticket_type" db:"ticket_type"`
	Status         string          `json:"status" db:"status"`
	PaymentMethod  string          `json:"payment_method" db:"payment_method"`
	PaymentRef     *string         `json:"payment_ref" db:"payment_ref"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	CouponCode     *string         `json:"coupon_code" db:"coupon_code"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	QRCode         string          `json:"qr_code" db:"qr_code"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
	Event          *Event          `json:"event,omitempty"` // not from DB, filled separately
}
