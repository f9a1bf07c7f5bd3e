package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kassa/internal/auth"
	apperrors "kassa/internal/errors"
	"kassa/internal/external"
	"kassa/internal/middleware"
	"kassa/internal/models"
	"kassa/internal/service"
)

// In-memory stores backing the full route table, so the handlers are tested
// through real gin routing and middleware without a database.

type memAccounts struct {
	accounts map[string]*models.Account
}

func (m *memAccounts) Create(_ context.Context, account *models.Account) error {
	for _, existing := range m.accounts {
		if existing.Email == account.Email {
			return apperrors.ErrDuplicateEmail
		}
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *memAccounts) GetByID(_ context.Context, id string) (*models.Account, error) {
	return m.accounts[id], nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	for _, account := range m.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, nil
}

func (m *memAccounts) Update(_ context.Context, account *models.Account) error {
	m.accounts[account.ID] = account
	return nil
}

type memEvents struct {
	events map[string]*models.Event
}

func (m *memEvents) Create(_ context.Context, event *models.Event) error {
	m.events[event.ID] = event
	return nil
}

func (m *memEvents) GetByID(_ context.Context, id string) (*models.Event, error) {
	return m.events[id], nil
}

func (m *memEvents) ListPublic(_ context.Context, filter models.EventFilter) ([]models.Event, error) {
	var out []models.Event
	for _, event := range m.events {
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

func (m *memEvents) ListAll(_ context.Context) ([]models.Event, error) {
	var out []models.Event
	for _, event := range m.events {
		out = append(out, *event)
	}
	return out, nil
}

func (m *memEvents) Update(_ context.Context, event *models.Event) error {
	m.events[event.ID] = event
	return nil
}

func (m *memEvents) ResizeInventory(_ context.Context, id string, newTotal *int) error {
	event, ok := m.events[id]
	if !ok {
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

func (m *memEvents) SoftDelete(_ context.Context, id string) (bool, error) {
	event, ok := m.events[id]
	if !ok || event.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	event.DeletedAt = &now
	return true, nil
}

type memCoupons struct {
	coupons map[string]*models.Coupon
}

func (m *memCoupons) Create(_ context.Context, coupon *models.Coupon) error {
	for _, existing := range m.coupons {
		if existing.Code == coupon.Code {
			return apperrors.ErrDuplicateCouponCode
		}
	}
	m.coupons[coupon.ID] = coupon
	return nil
}

func (m *memCoupons) GetByID(_ context.Context, id string) (*models.Coupon, error) {
	return m.coupons[id], nil
}

func (m *memCoupons) GetByCode(_ context.Context, code string) (*models.Coupon, error) {
	for _, coupon := range m.coupons {
		if coupon.Code == code {
			return coupon, nil
		}
	}
	return nil, nil
}

func (m *memCoupons) List(_ context.Context) ([]models.Coupon, error) {
	var out []models.Coupon
	for _, coupon := range m.coupons {
		out = append(out, *coupon)
	}
	return out, nil
}

func (m *memCoupons) Update(_ context.Context, coupon *models.Coupon) error {
	m.coupons[coupon.ID] = coupon
	return nil
}

func (m *memCoupons) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := m.coupons[id]; !ok {
		return false, nil
	}
	delete(m.coupons, id)
	return true, nil
}

func (m *memCoupons) Redeem(_ context.Context, code, eventID string) (bool, error) {
	coupon, _ := m.GetByCode(context.Background(), code)
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

type memTickets struct {
	tickets map[string]*models.Ticket
	events  *memEvents
}

func (m *memTickets) CreateWithInventory(_ context.Context, ticket *models.Ticket, trackInventory bool) error {
	if trackInventory {
		event := m.events.events[ticket.EventID]
		if event == nil || event.AvailableTickets == nil || *event.AvailableTickets < ticket.Quantity {
			return apperrors.ErrSoldOut
		}
		*event.AvailableTickets -= ticket.Quantity
	}
	m.tickets[ticket.ID] = ticket
	return nil
}

func (m *memTickets) GetByID(_ context.Context, id string) (*models.Ticket, error) {
	ticket := m.tickets[id]
	if ticket == nil {
		return nil, nil
	}
	copied := *ticket
	copied.Event = m.events.events[ticket.EventID]
	return &copied, nil
}

func (m *memTickets) GetByAccount(_ context.Context, accountID string) ([]models.Ticket, error) {
	var out []models.Ticket
	for _, ticket := range m.tickets {
		if ticket.AccountID == accountID {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func (m *memTickets) MarkUsed(_ context.Context, id string) (bool, error) {
	ticket, ok := m.tickets[id]
	if !ok || ticket.Status != models.TicketStatusActive {
		return false, nil
	}
	ticket.Status = models.TicketStatusUsed
	return true, nil
}

func (m *memTickets) ExpireForEndedEvents(_ context.Context) (int64, error) {
	return 0, nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(string, interface{}) error { return nil }

type noopNotifier struct{}

func (noopNotifier) NotifyAsync(string, interface{}) {}

type memBars struct {
	bars []external.Bar
}

func (m *memBars) Klines(_ context.Context, _, _ string, limit int) ([]external.Bar, error) {
	if limit > len(m.bars) {
		limit = len(m.bars)
	}
	return m.bars[:limit], nil
}

type testEnv struct {
	router   *gin.Engine
	accounts *memAccounts
	events   *memEvents
	coupons  *memCoupons
	tickets  *memTickets
	issuer   *auth.TokenIssuer
}

func setupEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	accounts := &memAccounts{accounts: make(map[string]*models.Account)}
	events := &memEvents{events: make(map[string]*models.Event)}
	coupons := &memCoupons{coupons: make(map[string]*models.Coupon)}
	tickets := &memTickets{tickets: make(map[string]*models.Ticket), events: events}

	bars := make([]external.Bar, 60)
	for i := range bars {
		bars[i] = external.Bar{Close: 100 + float64(i%3)}
	}

	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	couponService := service.NewCouponService(coupons, noopPublisher{})

	services := &service.Services{
		Accounts: service.NewAccountService(accounts, issuer),
		Events:   service.NewEventService(events, nil, noopPublisher{}),
		Coupons:  couponService,
		Tickets:  service.NewTicketService(tickets, events, couponService, noopPublisher{}, noopNotifier{}),
		Signals:  service.NewSignalService(&memBars{bars: bars}),
	}

	h := NewHandlers(services, nil)
	requireAuth := middleware.RequireAuth(issuer, accounts)
	requireAdmin := middleware.RequireAdmin()

	router := gin.New()
	api := router.Group("/api")
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)

		user := api.Group("/user", requireAuth)
		{
			user.GET("/me", h.Me)
			user.PUT("/update", h.UpdateMe)
			user.POST("/member-verify", h.MemberVerify)
			user.GET("/tickets", h.MyTickets)
		}

		api.GET("/events", h.ListEvents)
		api.GET("/events/:id", h.GetEvent)

		api.POST("/validate-coupon", requireAuth, h.ValidateCoupon)
		api.POST("/purchase-tickets", requireAuth, h.PurchaseTickets)

		tix := api.Group("/tickets", requireAuth)
		{
			tix.GET("/:id", h.GetTicket)
			tix.POST("/:id/verify", requireAdmin, h.VerifyTicket)
		}

		api.GET("/signals/:symbol", requireAuth, h.GetSignals)

		admin := api.Group("/admin", requireAuth, requireAdmin)
		{
			admin.GET("/events", h.AdminListEvents)
			admin.POST("/events", h.AdminCreateEvent)
			admin.PUT("/events/:id", h.AdminUpdateEvent)
			admin.DELETE("/events/:id", h.AdminDeleteEvent)
			admin.GET("/coupons", h.AdminListCoupons)
			admin.POST("/coupons", h.AdminCreateCoupon)
		}
	}

	return &testEnv{
		router:   router,
		accounts: accounts,
		events:   events,
		coupons:  coupons,
		tickets:  tickets,
		issuer:   issuer,
	}
}

func (env *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) register(t *testing.T, email string) (*models.Account, string) {
	t.Helper()

	w := env.do("POST", "/api/auth/register", "", models.RegisterRequest{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return env.accounts.accounts[resp.User.ID], resp.AccessToken
}

func (env *testEnv) registerAdmin(t *testing.T) string {
	t.Helper()

	account, token := env.register(t, "admin@example.com")
	account.Role = models.RoleAdmin
	return token
}

func (env *testEnv) seedEvent(id string) *models.Event {
	event := &models.Event{
		ID:           id,
		Title:        "Launch Night",
		StartDate:    time.Now().Add(24 * time.Hour),
		EndDate:      time.Now().Add(30 * time.Hour),
		PriceRegular: decimal.NewFromInt(100),
		Status:       models.EventStatusUpcoming,
	}
	env.events.events[id] = event
	return event
}

func TestRegisterAndMe(t *testing.T) {
	env := setupEnv()

	_, token := env.register(t, "ada@example.com")

	w := env.do("GET", "/api/user/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var account models.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &account))
	assert.Equal(t, "ada@example.com", account.Email)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	env := setupEnv()
	env.register(t, "ada@example.com")

	w := env.do("POST", "/api/auth/register", "", models.RegisterRequest{
		FirstName: "Other",
		LastName:  "User",
		Email:     "ada@example.com",
		Password:  "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := setupEnv()
	env.register(t, "ada@example.com")

	w := env.do("POST", "/api/auth/login", "", models.LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	env := setupEnv()

	for _, path := range []string{"/api/user/me", "/api/user/tickets"} {
		w := env.do("GET", path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := env.do("POST", "/api/purchase-tickets", "", models.PurchaseRequest{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRejectRegularUsers(t *testing.T) {
	env := setupEnv()
	_, token := env.register(t, "ada@example.com")

	w := env.do("GET", "/api/admin/events", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListEventsHidesDeleted(t *testing.T) {
	env := setupEnv()
	env.seedEvent("ev-1")
	deleted := env.seedEvent("ev-2")
	now := time.Now()
	deleted.DeletedAt = &now

	w := env.do("GET", "/api/events", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var events []models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "ev-1", events[0].ID)
}

func TestGetEventNotFound(t *testing.T) {
	env := setupEnv()

	w := env.do("GET", "/api/events/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListEventsRejectsBadPagination(t *testing.T) {
	env := setupEnv()

	w := env.do("GET", "/api/events?page=0", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do("GET", "/api/events?pageSize=500", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPurchaseFlow(t *testing.T) {
	env := setupEnv()
	env.seedEvent("ev-1")
	_, token := env.register(t, "buyer@example.com")

	w := env.do("POST", "/api/purchase-tickets", token, models.PurchaseRequest{
		EventID:       "ev-1",
		Quantity:      2,
		TicketType:    models.TicketTypeRegular,
		PaymentMethod: "card",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.PurchaseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.TicketID)

	// The buyer can read their ticket back
	w = env.do("GET", "/api/tickets/"+resp.TicketID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// A stranger cannot
	_, otherToken := env.register(t, "other@example.com")
	w = env.do("GET", "/api/tickets/"+resp.TicketID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestPurchaseValidation(t *testing.T) {
	env := setupEnv()
	env.seedEvent("ev-1")
	_, token := env.register(t, "buyer@example.com")

	// Binding rejects a zero quantity and an unknown tier
	w := env.do("POST", "/api/purchase-tickets", token, map[string]interface{}{
		"event_id":       "ev-1",
		"quantity":       0,
		"ticket_type":    "regular",
		"payment_method": "card",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do("POST", "/api/purchase-tickets", token, map[string]interface{}{
		"event_id":       "ev-1",
		"quantity":       1,
		"ticket_type":    "vip",
		"payment_method": "card",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPurchaseMemberTierForbiddenForUnverified(t *testing.T) {
	env := setupEnv()
	env.seedEvent("ev-1")
	_, token := env.register(t, "buyer@example.com")

	w := env.do("POST", "/api/purchase-tickets", token, models.PurchaseRequest{
		EventID:       "ev-1",
		Quantity:      1,
		TicketType:    models.TicketTypeMember,
		PaymentMethod: "card",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestValidateCouponEndpoint(t *testing.T) {
	env := setupEnv()
	env.seedEvent("ev-1")
	_, token := env.register(t, "buyer@example.com")
	env.coupons.coupons["c-1"] = &models.Coupon{
		ID:                 "c-1",
		Code:               "SAVE10",
		DiscountPercentage: decimal.NewFromInt(10),
		ValidFrom:          time.Now().Add(-time.Hour),
		Active:             true,
	}

	w := env.do("POST", "/api/validate-coupon", token, models.ValidateCouponRequest{
		CouponCode: "SAVE10",
		EventID:    "ev-1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result models.CouponValidation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Valid)

	w = env.do("POST", "/api/validate-coupon", token, models.ValidateCouponRequest{
		CouponCode: "NOPE",
		EventID:    "ev-1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Valid)
}

func TestVerifyTicketAdminOnly(t *testing.T) {
	env := setupEnv()
	env.seedEvent("ev-1")
	_, buyerToken := env.register(t, "buyer@example.com")
	adminToken := env.registerAdmin(t)

	w := env.do("POST", "/api/purchase-tickets", buyerToken, models.PurchaseRequest{
		EventID:       "ev-1",
		Quantity:      1,
		TicketType:    models.TicketTypeRegular,
		PaymentMethod: "card",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.PurchaseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// Buyers cannot verify
	w = env.do("POST", "/api/tickets/"+resp.TicketID+"/verify", buyerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// First admin scan wins
	w = env.do("POST", "/api/tickets/"+resp.TicketID+"/verify", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.VerifyResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Valid)

	// Second scan is rejected without mutation
	w = env.do("POST", "/api/tickets/"+resp.TicketID+"/verify", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Reason)
}

func TestAdminEventLifecycle(t *testing.T) {
	env := setupEnv()
	adminToken := env.registerAdmin(t)

	total := 10
	w := env.do("POST", "/api/admin/events", adminToken, models.CreateEventRequest{
		Title:        "Launch Night",
		StartDate:    time.Now().Add(24 * time.Hour),
		EndDate:      time.Now().Add(30 * time.Hour),
		PriceRegular: decimal.NewFromInt(100),
		TotalTickets: &total,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var event models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &event))
	require.NotNil(t, event.AvailableTickets)
	assert.Equal(t, 10, *event.AvailableTickets)

	newTitle := "Launch Night v2"
	w = env.do("PUT", "/api/admin/events/"+event.ID, adminToken, models.UpdateEventRequest{
		Title: &newTitle,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do("DELETE", "/api/admin/events/"+event.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Gone from the public catalog, still visible to admins
	w = env.do("GET", "/api/events/"+event.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do("GET", "/api/admin/events", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var all []models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 1)
}

func TestSignalsEndpoint(t *testing.T) {
	env := setupEnv()
	_, token := env.register(t, "trader@example.com")

	w := env.do("GET", "/api/signals/btcusdt?interval=1h&limit=60", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report models.SignalReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "BTCUSDT", report.Symbol)
	assert.Equal(t, "1h", report.Interval)

	w = env.do("GET", "/api/signals/btcusdt?limit=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
