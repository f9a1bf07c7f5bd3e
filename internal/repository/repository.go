package repository

import (
	"kassa/internal/database"
)

type Repositories struct {
	Accounts *AccountRepository
	Events   *EventRepository
	Coupons  *CouponRepository
	Tickets  *TicketRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Accounts: NewAccountRepository(db),
		Events:   NewEventRepository(db),
		Coupons:  NewCouponRepository(db),
		Tickets:  NewTicketRepository(db),
	}
}
