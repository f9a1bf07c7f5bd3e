package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterRequest is the payload for account registration
type RegisterRequest struct {
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	Phone     *string `json:"phone"`
	Member    bool    `json:"member"`
	MemberID  *string `json:"member_id"`
}

// LoginRequest is the payload for credential login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries a session token plus the account it belongs to
type TokenResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        *Account `json:"user"`
}

// UpdateAccountRequest is a partial self-update. Email and role changes are
// ignored even when supplied.
type UpdateAccountRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Password  *string `json:"password"`
	Member    *bool   `json:"member"`
	MemberID  *string `json:"member_id"`
}

// MemberVerifyRequest carries the membership evidence for verification
type MemberVerifyRequest struct {
	MemberID         string `json:"member_id" binding:"required"`
	VerificationFile string `json:"verification_file"` // base64 encoded document
}

// CreateEventRequest is the admin payload for creating an event
type CreateEventRequest struct {
	Title        string           `json:"title" binding:"required"`
	Description  string           `json:"description"`
	Location     string           `json:"location"`
	StartDate    time.Time        `json:"start_date" binding:"required"`
	EndDate      time.Time        `json:"end_date" binding:"required"`
	PriceRegular decimal.Decimal  `json:"price_regular"`
	PriceMember  *decimal.Decimal `json:"price_member"`
	Status       string           `json:"status"`
	ImageURL     *string          `json:"image_url"`
	Featured     bool             `json:"featured"`
	TotalTickets *int             `json:"total_tickets"`
}

// UpdateEventRequest is a partial admin update of an event
type UpdateEventRequest struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Location     *string          `json:"location"`
	StartDate    *time.Time       `json:"start_date"`
	EndDate      *time.Time       `json:"end_date"`
	PriceRegular *decimal.Decimal `json:"price_regular"`
	PriceMember  *decimal.Decimal `json:"price_member"`
	Status       *string          `json:"status"`
	ImageURL     *string          `json:"image_url"`
	Featured     *bool            `json:"featured"`
	TotalTickets *int             `json:"total_tickets"`
}

// EventFilter narrows the public catalog listing
type EventFilter struct {
	Query    string
	Featured bool
	Page     int
	PageSize int
}

// CreateCouponRequest is the admin payload for creating a coupon
type CreateCouponRequest struct {
	Code               string          `json:"code" binding:"required"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" binding:"required"`
	EventID            *string         `json:"event_id"`
	ValidFrom          time.Time       `json:"valid_from" binding:"required"`
	ValidUntil         *time.Time      `json:"valid_until"`
	MaxUses            *int            `json:"max_uses"`
	Active             *bool           `json:"active"`
}

// UpdateCouponRequest is a partial admin update of a coupon. An omitted
// event_id leaves the scope unchanged; clear_event_id widens the coupon back
// to all events, since a JSON null is indistinguishable from absent here.
type UpdateCouponRequest struct {
	Code               *string          `json:"code"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage"`
	EventID            *string          `json:"event_id"`
	ClearEventID       bool             `json:"clear_event_id"`
	ValidFrom          *time.Time       `json:"valid_from"`
	ValidUntil         *time.Time       `json:"valid_until"`
	MaxUses            *int             `json:"max_uses"`
	Active             *bool            `json:"active"`
}

// ValidateCouponRequest asks whether a code applies to an event right now
type ValidateCouponRequest struct {
	CouponCode string `json:"coupon_code" binding:"required"`
	EventID    string `json:"event_id" binding:"required"`
}

// CouponValidation is the read-only answer to a coupon check. It never
// reserves a use; the purchase path re-checks atomically.
type CouponValidation struct {
	Valid              bool            `json:"valid"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage,omitempty"`
	Message            string          `json:"message"`
}

// PurchaseRequest is the payload for buying tickets. The total is computed
// server-side from the event's price tiers.
type PurchaseRequest struct {
	EventID       string  `json:"event_id" binding:"required"`
	Quantity      int     `json:"quantity" binding:"required,min=1"`
	TicketType    string  `json:"ticket_type" binding:"required,oneof=regular member"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
	CouponCode    *string `json:"coupon_code"`
}

// PurchaseResponse confirms a completed purchase
type PurchaseResponse struct {
	Success        bool            `json:"success"`
	TicketID       string          `json:"ticket_id"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Message        string          `json:"message"`
}

// VerifyResult is the outcome of scanning a ticket at the door
type VerifyResult struct {
	Valid  bool    `json:"valid"`
	Reason string  `json:"reason,omitempty"`
	Ticket *Ticket `json:"ticket,omitempty"`
	Event  *Event  `json:"event,omitempty"`
}

// SignalReport carries the indicator snapshot and hints for a symbol
type SignalReport struct {
	Symbol    string        `json:"symbol"`
	Interval  string        `json:"interval"`
	Close     float64       `json:"close"`
	RSI       float64       `json:"rsi"`
	MACD      MACDValues    `json:"macd"`
	Bollinger BollingerBand `json:"bollinger"`
	Signals   []TradingHint `json:"signals"`
	Generated time.Time     `json:"generated_at"`
}

// MACDValues is the latest MACD line, signal line and histogram
type MACDValues struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// BollingerBand is the latest band values
type BollingerBand struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// TradingHint is a discrete BUY or SELL suggestion with its trigger
type TradingHint struct {
	Action    string `json:"action"` // BUY or SELL
	Indicator string `json:"indicator"`
	Reason    string `json:"reason"`
}
