package booking

import (
	"context"
	"time"

	"github.com/nanafes/reservation-api/internal/model"
)

// Store is the persistence boundary of the booking service.  The
// MySQL implementation lives in internal/repository; tests use an
// in-memory fake.  Row-lookup methods return sql.ErrNoRows when the
// record does not exist, matching the database/sql convention used
// throughout the repository layer.
type Store interface {
	// WithinTx runs fn inside one database transaction.  The
	// transaction commits when fn returns nil and rolls back
	// otherwise; no partial effect is observable outside it.
	WithinTx(ctx context.Context, fn func(tx Tx) error) error

	// Read-only lookups used by the query facade.  Reservation reads
	// come back assembled with their team and slot.
	SlotByID(ctx context.Context, id uint64) (*model.TimeSlot, error)
	ListSlots(ctx context.Context, w model.SlotWindow) ([]model.TimeSlot, error)
	ReservationByID(ctx context.Context, id uint64) (*model.ReservationDetail, error)
	TeamByID(ctx context.Context, id uint64) (*model.Team, error)

	// ActiveReservation returns the soonest reservation owned by
	// ownerID whose start time is at or after now, with its team and
	// slot.
	ActiveReservation(ctx context.Context, ownerID string, now time.Time) (*model.ReservationDetail, error)

	// NextAvailableSlot returns the earliest AVAILABLE reservable
	// slot at or after from, or nil when none exists.
	NextAvailableSlot(ctx context.Context, from time.Time) (*model.TimeSlot, error)
}

// Tx is the set of operations available inside one transaction.  All
// mutating booking logic is expressed against this interface so the
// service composes multi-row atomic operations without knowing the
// SQL underneath.
type Tx interface {
	// SlotForUpdate loads a slot and takes a row lock on it so that
	// racing transactions serialize on the same slot.
	SlotForUpdate(ctx context.Context, id uint64) (*model.TimeSlot, error)

	// MarkSlot flips a slot from one status to the other only when it
	// still holds the expected status, reporting whether a row was
	// changed.  A false result on the booking path means a concurrent
	// transaction won the slot.
	MarkSlot(ctx context.Context, id uint64, from, to model.SlotStatus) (bool, error)

	// HasUpcomingReservation reports whether ownerID already owns a
	// reservation starting at or after now.  Implementations must make
	// this check safe against two transactions racing to book for the
	// same owner; the MySQL store does it with a locking read.
	HasUpcomingReservation(ctx context.Context, ownerID string, now time.Time) (bool, error)

	CreateReservation(ctx context.Context, r *model.Reservation) error
	ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error)
	RetargetReservation(ctx context.Context, id, slotID uint64, start time.Time) error
	DeleteReservation(ctx context.Context, id uint64) error

	TeamByID(ctx context.Context, id uint64) (*model.Team, error)
	TeamByReservation(ctx context.Context, reservationID uint64) (*model.Team, error)
	// CreateTeam inserts the team and one member row per entry in
	// t.Members, populating the generated ids.
	CreateTeam(ctx context.Context, t *model.Team) error
	// UpdateTeam writes the team's scalar fields and replaces all
	// member rows with t.Members.
	UpdateTeam(ctx context.Context, t *model.Team) error
	DeleteTeamByReservation(ctx context.Context, reservationID uint64) error
}

// EventSink receives domain events after a booking transaction has
// committed.  Implementations must not block the request path; the
// RabbitMQ publisher logs and swallows its own failures.
type EventSink interface {
	ReservationBooked(ctx context.Context, r *model.Reservation, slot *model.TimeSlot)
	ReservationCancelled(ctx context.Context, r *model.Reservation)
}
