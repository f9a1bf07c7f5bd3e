package jobs

import (
	"context"
	"log/slog"
	"time"

	"kassa/internal/repository"
)

const expirationCheckInterval = time.Minute

// TicketExpirationJob periodically expires active tickets whose event has
// already ended, so stale QR codes stop verifying at the door.
type TicketExpirationJob struct {
	ticketRepo *repository.TicketRepository
	ticker     *time.Ticker
	done       chan bool
}

// NewTicketExpirationJob creates a new ticket expiration job
func NewTicketExpirationJob(ticketRepo *repository.TicketRepository) *TicketExpirationJob {
	return &TicketExpirationJob{
		ticketRepo: ticketRepo,
		done:       make(chan bool),
	}
}

// Start begins the background job that sweeps for expired tickets
func (j *TicketExpirationJob) Start(ctx context.Context) {
	slog.Info("Starting ticket expiration job", "check_interval", expirationCheckInterval.String())

	j.ticker = time.NewTicker(expirationCheckInterval)

	// Run initial sweep immediately
	go j.sweep(ctx)

	go func() {
		for {
			select {
			case <-j.ticker.C:
				go j.sweep(ctx)
			case <-j.done:
				slog.Info("Ticket expiration job stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the background job
func (j *TicketExpirationJob) Stop() {
	if j.ticker != nil {
		j.ticker.Stop()
	}
	close(j.done)
}

func (j *TicketExpirationJob) sweep(ctx context.Context) {
	expired, err := j.ticketRepo.ExpireForEndedEvents(ctx)
	if err != nil {
		slog.Error("Failed to expire tickets", "error", err)
		return
	}

	if expired > 0 {
		slog.Info("Expired tickets for ended events", "count", expired)
	}
}
