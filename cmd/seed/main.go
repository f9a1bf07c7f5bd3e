package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"kassa/internal/auth"
	"kassa/internal/config"
	"kassa/internal/database"
	apperrors "kassa/internal/errors"
	"kassa/internal/models"
	"kassa/internal/repository"
)

var (
	adminEmail    = flag.String("admin-email", "admin@kassa.local", "Email for the seeded admin account")
	adminPassword = flag.String("admin-password", "admin12345", "Password for the seeded admin account")
	skipDemo      = flag.Bool("skip-demo", false, "Only create the admin account, no demo events or coupons")
)

type seeder struct {
	repos *repository.Repositories
}

func main() {
	flag.Parse()

	slog.Info("Starting seeder...")

	cfg := config.Load()
	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	s := &seeder{repos: repository.NewRepositories(db)}
	ctx := context.Background()

	if err := s.seedAdmin(ctx); err != nil {
		slog.Error("Failed to seed admin account", "error", err)
		os.Exit(1)
	}

	if !*skipDemo {
		if err := s.seedDemoData(ctx); err != nil {
			slog.Error("Failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Seeding completed successfully")
}

func (s *seeder) seedAdmin(ctx context.Context) error {
	existing, err := s.repos.Accounts.GetByEmail(ctx, *adminEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		slog.Info("Admin account already exists", "email", *adminEmail)
		return nil
	}

	hash, err := auth.HashPassword(*adminPassword)
	if err != nil {
		return err
	}

	admin := &models.Account{
		ID:           uuid.NewString(),
		Email:        *adminEmail,
		PasswordHash: hash,
		FirstName:    "Kassa",
		LastName:     "Admin",
		Role:         models.RoleAdmin,
	}

	if err := s.repos.Accounts.Create(ctx, admin); err != nil {
		return err
	}

	slog.Info("Created admin account", "email", admin.Email, "id", admin.ID)
	return nil
}

func (s *seeder) seedDemoData(ctx context.Context) error {
	now := time.Now()
	memberPrice := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}
	intPtr := func(v int) *int { return &v }

	events := []*models.Event{
		{
			ID:               uuid.NewString(),
			Title:            "Symphony Under the Stars",
			Description:      "An open-air orchestral evening in the botanical gardens.",
			Location:         "Central Botanical Gardens",
			StartDate:        now.AddDate(0, 1, 0),
			EndDate:          now.AddDate(0, 1, 0).Add(4 * time.Hour),
			PriceRegular:     decimal.NewFromInt(120),
			PriceMember:      memberPrice(90),
			Status:           models.EventStatusUpcoming,
			Featured:         true,
			TotalTickets:     intPtr(500),
			AvailableTickets: intPtr(500),
		},
		{
			ID:           uuid.NewString(),
			Title:        "Winter Tech Meetup",
			Description:  "Monthly community meetup, talks and networking. Free-form seating.",
			Location:     "Innovation Hub, Hall B",
			StartDate:    now.AddDate(0, 2, 0),
			EndDate:      now.AddDate(0, 2, 0).Add(3 * time.Hour),
			PriceRegular: decimal.NewFromInt(10),
			Status:       models.EventStatusUpcoming,
		},
	}

	for _, event := range events {
		if err := s.repos.Events.Create(ctx, event); err != nil {
			return fmt.Errorf("seed event %q: %w", event.Title, err)
		}
		slog.Info("Created demo event", "title", event.Title, "id", event.ID)
	}

	coupons := []*models.Coupon{
		{
			ID:                 uuid.NewString(),
			Code:               "WELCOME10",
			DiscountPercentage: decimal.NewFromInt(10),
			ValidFrom:          now,
			Active:             true,
		},
		{
			ID:                 uuid.NewString(),
			Code:               "SYMPHONY25",
			DiscountPercentage: decimal.NewFromInt(25),
			EventID:            &events[0].ID,
			ValidFrom:          now,
			MaxUses:            intPtr(100),
			Active:             true,
		},
	}

	for _, coupon := range coupons {
		err := s.repos.Coupons.Create(ctx, coupon)
		if errors.Is(err, apperrors.ErrDuplicateCouponCode) {
			slog.Info("Coupon already exists, skipping", "code", coupon.Code)
			continue
		}
		if err != nil {
			return fmt.Errorf("seed coupon %q: %w", coupon.Code, err)
		}
		slog.Info("Created demo coupon", "code", coupon.Code)
	}

	return nil
}
