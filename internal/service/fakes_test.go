package service

import (
	"context"
	"time"

	apperrors "kassa/internal/errors"
	"kassa/internal/external"
	"kassa/internal/models"
)

// In-memory fakes for the store interfaces. They mirror the guarded-update
// semantics of the SQL layer closely enough for the services to be tested
// without a database.

type fakeAccountStore struct {
	accounts map[string]*models.Account
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[string]*models.Account)}
}

func (f *fakeAccountStore) Create(_ context.Context, account *models.Account) error {
	for _, existing := range f.accounts {
		if existing.Email == account.Email {
			return apperrors.ErrDuplicateEmail
		}
	}
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeAccountStore) GetByID(_ context.Context, id string) (*models.Account, error) {
	return f.accounts[id], nil
}

func (f *fakeAccountStore) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	for _, account := range f.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountStore) Update(_ context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now()
	f.accounts[account.ID] = account
	return nil
}

type fakeEventStore struct {
	events map[string]*models.Event
}

func newFakeEventStore() *fakeEventStore {
	return &fakeEventStore{events: make(map[string]*models.Event)}
}

func (f *fakeEventStore) Create(_ context.Context, event *models.Event) error {
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventStore) GetByID(_ context.Context, id string) (*models.Event, error) {
	return f.events[id], nil
}

func (f *fakeEventStore) ListPublic(_ context.Context, filter models.EventFilter) ([]models.Event, error) {
	var out []models.Event
	for _, event := range f.events {
		if event.DeletedAt != nil || event.Status == models.EventStatusCanceled {
			continue
		}
		if filter.Featured && !event.Featured {
			continue
		}
		out = append(out, *event)
	}
	return out, nil
}

func (f *fakeEventStore) ListAll(_ context.Context) ([]models.Event, error) {
	var out []models.Event
	for _, event := range f.events {
		out = append(out, *event)
	}
	return out, nil
}

func (f *fakeEventStore) Update(_ context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now()
	f.events[event.ID] = event
	return nil
}

func (f *fakeEventStore) ResizeInventory(_ context.Context, id string, newTotal *int) error {
	event, ok := f.events[id]
	if !ok || event.DeletedAt != nil {
		return nil
	}
	if newTotal == nil {
		event.TotalTickets = nil
		event.AvailableTickets = nil
		return nil
	}
	sold := 0
	if event.TotalTickets != nil && event.AvailableTickets != nil {
		sold = *event.TotalTickets - *event.AvailableTickets
	}
	available := *newTotal - sold
	if available < 0 {
		available = 0
	}
	total := *newTotal
	event.TotalTickets = &total
	event.AvailableTickets = &available
	return nil
}

func (f *fakeEventStore) SoftDelete(_ context.Context, id string) (bool, error) {
	event, ok := f.events[id]
	if !ok || event.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	event.DeletedAt = &now
	return true, nil
}

type fakeCouponStore struct {
	coupons map[string]*models.Coupon
}

func newFakeCouponStore() *fakeCouponStore {
	return &fakeCouponStore{coupons: make(map[string]*models.Coupon)}
}

func (f *fakeCouponStore) Create(_ context.Context, coupon *models.Coupon) error {
	for _, existing := range f.coupons {
		if existing.Code == coupon.Code {
			return apperrors.ErrDuplicateCouponCode
		}
	}
	coupon.CreatedAt = time.Now()
	coupon.UpdatedAt = coupon.CreatedAt
	f.coupons[coupon.ID] = coupon
	return nil
}

func (f *fakeCouponStore) GetByID(_ context.Context, id string) (*models.Coupon, error) {
	return f.coupons[id], nil
}

func (f *fakeCouponStore) GetByCode(_ context.Context, code string) (*models.Coupon, error) {
	for _, coupon := range f.coupons {
		if coupon.Code == code {
			return coupon, nil
		}
	}
	return nil, nil
}

func (f *fakeCouponStore) List(_ context.Context) ([]models.Coupon, error) {
	var out []models.Coupon
	for _, coupon := range f.coupons {
		out = append(out, *coupon)
	}
	return out, nil
}

func (f *fakeCouponStore) Update(_ context.Context, coupon *models.Coupon) error {
	coupon.UpdatedAt = time.Now()
	f.coupons[coupon.ID] = coupon
	return nil
}

func (f *fakeCouponStore) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := f.coupons[id]; !ok {
		return false, nil
	}
	delete(f.coupons, id)
	return true, nil
}

func (f *fakeCouponStore) Redeem(_ context.Context, code, eventID string) (bool, error) {
	coupon, _ := f.GetByCode(context.Background(), code)
	if coupon == nil || !coupon.Active {
		return false, nil
	}
	if coupon.EventID != nil && *coupon.EventID != eventID {
		return false, nil
	}
	now := time.Now()
	if now.Before(coupon.ValidFrom) {
		return false, nil
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return false, nil
	}
	if coupon.MaxUses != nil && coupon.UsedCount >= *coupon.MaxUses {
		return false, nil
	}
	coupon.UsedCount++
	return true, nil
}

type fakeTicketStore struct {
	tickets map[string]*models.Ticket
	events  *fakeEventStore
}

func newFakeTicketStore(events *fakeEventStore) *fakeTicketStore {
	return &fakeTicketStore{
		tickets: make(map[string]*models.Ticket),
		events:  events,
	}
}

func (f *fakeTicketStore) CreateWithInventory(_ context.Context, ticket *models.Ticket, trackInventory bool) error {
	if trackInventory {
		event := f.events.events[ticket.EventID]
		if event == nil || event.AvailableTickets == nil || *event.AvailableTickets < ticket.Quantity {
			return apperrors.ErrSoldOut
		}
		*event.AvailableTickets -= ticket.Quantity
	}
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	f.tickets[ticket.ID] = ticket
	return nil
}

func (f *fakeTicketStore) GetByID(_ context.Context, id string) (*models.Ticket, error) {
	ticket := f.tickets[id]
	if ticket == nil {
		return nil, nil
	}
	copied := *ticket
	copied.Event = f.events.events[ticket.EventID]
	return &copied, nil
}

func (f *fakeTicketStore) GetByAccount(_ context.Context, accountID string) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, ticket := range f.tickets {
		if ticket.AccountID == accountID {
			copied := *ticket
			copied.Event = f.events.events[ticket.EventID]
			out = append(out, copied)
		}
	}
	return out, nil
}

func (f *fakeTicketStore) MarkUsed(_ context.Context, id string) (bool, error) {
	ticket, ok := f.tickets[id]
	if !ok || ticket.Status != models.TicketStatusActive {
		return false, nil
	}
	ticket.Status = models.TicketStatusUsed
	return true, nil
}

func (f *fakeTicketStore) ExpireForEndedEvents(_ context.Context) (int64, error) {
	var flipped int64
	now := time.Now()
	for _, ticket := range f.tickets {
		event := f.events.events[ticket.EventID]
		if event == nil || ticket.Status != models.TicketStatusActive {
			continue
		}
		if event.EndDate.Before(now) {
			ticket.Status = models.TicketStatusExpired
			flipped++
		}
	}
	return flipped, nil
}

type fakePublisher struct {
	published []string
}

func (f *fakePublisher) Publish(subject string, _ interface{}) error {
	f.published = append(f.published, subject)
	return nil
}

type fakeNotifier struct {
	notified []string
}

func (f *fakeNotifier) NotifyAsync(eventType string, _ interface{}) {
	f.notified = append(f.notified, eventType)
}

type fakeBarSource struct {
	bars []external.Bar
	err  error
}

func (f *fakeBarSource) Klines(_ context.Context, _, _ string, limit int) ([]external.Bar, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > len(f.bars) {
		limit = len(f.bars)
	}
	return f.bars[:limit], nil
}
