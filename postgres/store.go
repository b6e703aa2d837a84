package postgres

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/jmoiron/sqlx"
)

// Store is the relational booking.Store: the lesson catalog plus the booking
// ledger, sharing one connection pool.
type Store struct {
	CatalogRepo
	BookingRepo
}

func NewStore(db *sqlx.DB, logger watermill.LoggerAdapter) Store {
	return Store{
		CatalogRepo: NewCatalogRepo(db),
		BookingRepo: NewBookingRepo(db, logger),
	}
}
