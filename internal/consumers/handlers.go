package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/stan.go"

	"kassa/internal/cache"
	"kassa/internal/models"
	"kassa/internal/repository"
	"kassa/internal/search"
)

type Handlers struct {
	repos        *repository.Repositories
	searchClient *search.ElasticsearchClient
	valkeyClient *cache.ValkeyClient
}

func NewHandlers(repos *repository.Repositories, searchClient *search.ElasticsearchClient, valkeyClient *cache.ValkeyClient) *Handlers {
	return &Handlers{
		repos:        repos,
		searchClient: searchClient,
		valkeyClient: valkeyClient,
	}
}

// HandleEventChanged re-indexes the event from the database and drops cached
// listings. Reloading instead of trusting the payload means a missed message
// only delays convergence, it never indexes stale data.
func (h *Handlers) HandleEventChanged(m *stan.Msg) {
	var event models.EventChangedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal event change", "error", err)
		return
	}

	slog.Info("Processing event change", "event_id", event.EventID)

	ctx := context.Background()

	if h.searchClient != nil {
		stored, err := h.repos.Events.GetByID(ctx, event.EventID)
		if err != nil {
			slog.Error("Failed to load event", "event_id", event.EventID, "error", err)
			return
		}
		if stored != nil {
			if err := h.searchClient.IndexEvent(ctx, stored); err != nil {
				slog.Error("Failed to index event", "event_id", event.EventID, "error", err)
				return
			}
		}
	}

	h.invalidateCache(ctx)
	m.Ack()
}

// HandleEventDeleted removes the event from the search index and drops cached
// listings.
func (h *Handlers) HandleEventDeleted(m *stan.Msg) {
	var event models.EventChangedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal event deletion", "error", err)
		return
	}

	slog.Info("Processing event deletion", "event_id", event.EventID)

	ctx := context.Background()

	if h.searchClient != nil {
		if err := h.searchClient.DeleteEvent(ctx, event.EventID); err != nil {
			slog.Error("Failed to remove event from index", "event_id", event.EventID, "error", err)
			return
		}
	}

	h.invalidateCache(ctx)
	m.Ack()
}

func (h *Handlers) HandleTicketPurchased(m *stan.Msg) {
	var event models.TicketPurchasedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal ticket purchase", "error", err)
		return
	}

	slog.Info("Processing ticket purchase",
		"ticket_id", event.TicketID,
		"event_id", event.EventID,
		"quantity", event.Quantity)

	// Inventory may have changed, so cached listings are stale.
	h.invalidateCache(context.Background())
	m.Ack()
}

func (h *Handlers) HandleTicketVerified(m *stan.Msg) {
	var event models.TicketVerifiedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal ticket verification", "error", err)
		return
	}

	slog.Info("Processing ticket verification",
		"ticket_id", event.TicketID,
		"event_id", event.EventID)

	m.Ack()
}

func (h *Handlers) HandleCouponRedeemed(m *stan.Msg) {
	var event models.CouponRedeemedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal coupon redemption", "error", err)
		return
	}

	slog.Info("Processing coupon redemption",
		"code", event.Code,
		"event_id", event.EventID,
		"account_id", event.AccountID)

	m.Ack()
}

func (h *Handlers) invalidateCache(ctx context.Context) {
	if h.valkeyClient == nil {
		return
	}
	if err := h.valkeyClient.InvalidateEvents(ctx); err != nil {
		slog.Warn("Failed to invalidate events cache", "error", err)
	}
}
