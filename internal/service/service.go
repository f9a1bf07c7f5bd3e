package service

import (
	"context"

	"kassa/internal/auth"
	"kassa/internal/external"
	"kassa/internal/messaging"
	"kassa/internal/models"
	"kassa/internal/repository"
)

// Narrow store interfaces so the services can be exercised against
// in-memory fakes. The repository package provides the real
// implementations.

type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
}

type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	ListPublic(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	ListAll(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	ResizeInventory(ctx context.Context, id string, newTotal *int) error
	SoftDelete(ctx context.Context, id string) (bool, error)
}

type CouponStore interface {
	Create(ctx context.Context, coupon *models.Coupon) error
	GetByID(ctx context.Context, id string) (*models.Coupon, error)
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	Update(ctx context.Context, coupon *models.Coupon) error
	Delete(ctx context.Context, id string) (bool, error)
	Redeem(ctx context.Context, code, eventID string) (bool, error)
}

type TicketStore interface {
	CreateWithInventory(ctx context.Context, ticket *models.Ticket, trackInventory bool) error
	GetByID(ctx context.Context, id string) (*models.Ticket, error)
	GetByAccount(ctx context.Context, accountID string) ([]models.Ticket, error)
	MarkUsed(ctx context.Context, id string) (bool, error)
	ExpireForEndedEvents(ctx context.Context) (int64, error)
}

// Publisher emits domain events; *messaging.NATSClient implements it.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// Notifier fires external webhooks; *external.WebhookClient implements it.
type Notifier interface {
	NotifyAsync(eventType string, payload interface{})
}

// SearchIndex mirrors catalog writes into the search backend. Optional: a
// nil index means search falls back to SQL.
type SearchIndex interface {
	Search(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	IndexEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id string) error
}

// BarSource supplies candlestick series for the signal endpoint.
type BarSource interface {
	Klines(ctx context.Context, symbol, interval string, limit int) ([]external.Bar, error)
}

type Services struct {
	Accounts *AccountService
	Events   *EventService
	Coupons  *CouponService
	Tickets  *TicketService
	Signals  *SignalService
}

func NewServices(
	repos *repository.Repositories,
	issuer *auth.TokenIssuer,
	natsClient *messaging.NATSClient,
	webhookClient *external.WebhookClient,
	marketData *external.MarketDataClient,
	searchIndex SearchIndex,
) *Services {
	accountService := NewAccountService(repos.Accounts, issuer)
	eventService := NewEventService(repos.Events, searchIndex, natsClient)
	couponService := NewCouponService(repos.Coupons, natsClient)
	ticketService := NewTicketService(repos.Tickets, repos.Events, couponService, natsClient, webhookClient)
	signalService := NewSignalService(marketData)

	return &Services{
		Accounts: accountService,
		Events:   eventService,
		Coupons:  couponService,
		Tickets:  ticketService,
		Signals:  signalService,
	}
}
