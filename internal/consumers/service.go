package consumers

import (
	"context"
	"errors"
	"log/slog"

	"kassa/internal/cache"
	"kassa/internal/config"
	"kassa/internal/database"
	"kassa/internal/messaging"
	"kassa/internal/models"
	"kassa/internal/repository"
	"kassa/internal/search"
)

// ConsumerService runs the background queue subscribers. It keeps the search
// index and the events cache in sync with catalog writes and records ticket
// activity off the request path.
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	repos    *repository.Repositories
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}
	if !natsClient.Enabled() {
		return nil, errors.New("consumers require NATS_URL to be set")
	}

	repos := repository.NewRepositories(db)

	// Both the search index and the cache are optional; the handlers skip
	// the corresponding work when a client is absent.
	var searchClient *search.ElasticsearchClient
	esCfg := config.LoadElasticsearchConfig()
	if esCfg.URL != "" {
		searchClient, err = search.NewElasticsearchClient(esCfg)
		if err != nil {
			slog.Warn("Elasticsearch unavailable, index sync disabled", "error", err)
			searchClient = nil
		}
	}

	valkeyClient, err := cache.NewValkeyClient()
	if err != nil {
		slog.Warn("Valkey unavailable, cache invalidation disabled", "error", err)
		valkeyClient = nil
	}

	handlers := NewHandlers(repos, searchClient, valkeyClient)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		repos:    repos,
		handlers: handlers,
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	for _, subject := range []string{
		models.SubjectEventCreated,
		models.SubjectEventUpdated,
	} {
		if _, err := cs.nats.SubscribeQueue(subject, "consumers", cs.handlers.HandleEventChanged); err != nil {
			return err
		}
	}

	if _, err := cs.nats.SubscribeQueue(models.SubjectEventDeleted, "consumers", cs.handlers.HandleEventDeleted); err != nil {
		return err
	}

	if _, err := cs.nats.SubscribeQueue(models.SubjectTicketPurchased, "consumers", cs.handlers.HandleTicketPurchased); err != nil {
		return err
	}

	if _, err := cs.nats.SubscribeQueue(models.SubjectTicketVerified, "consumers", cs.handlers.HandleTicketVerified); err != nil {
		return err
	}

	if _, err := cs.nats.SubscribeQueue(models.SubjectCouponRedeemed, "consumers", cs.handlers.HandleCouponRedeemed); err != nil {
		return err
	}

	slog.Info("All consumers started successfully")
	return nil
}

// Repositories exposes the stores for background jobs sharing this process
func (cs *ConsumerService) Repositories() *repository.Repositories {
	return cs.repos
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
