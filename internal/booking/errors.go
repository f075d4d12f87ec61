// Package booking implements the reservation core: the transactional
// operations that keep time slots and reservations consistent, and the
// read-only query facade used by the HTTP layer and the LINE bot.
package booking

import "errors"

// Sentinel errors returned by the booking service.  Handlers translate
// each value into exactly one HTTP status, so every rejected
// precondition maps to a deterministic response code.
var (
	// ErrNotFound is returned when a referenced slot, reservation or
	// team does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSlotNotReservable is returned when the target slot is a
	// walk-in slot, which can never be booked through this path.
	ErrSlotNotReservable = errors.New("walk-in slots cannot be reserved")

	// ErrSlotTaken is returned when the target slot is already booked,
	// including the case where a concurrent transaction won the race.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrAlreadyReserved is returned when the caller already holds a
	// reservation whose slot lies in the future.
	ErrAlreadyReserved = errors.New("caller already holds an upcoming reservation")

	// ErrTeamExists is returned when a team is attached to a
	// reservation that already has one.
	ErrTeamExists = errors.New("reservation already has a team")

	// ErrForbidden is returned when the caller does not own the record
	// being mutated.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized is returned when an operation requires a known
	// caller identity and none was supplied.
	ErrUnauthorized = errors.New("authentication required")

	// ErrInvalidArgument is returned for member-count and name
	// validation failures and for a no-op reschedule.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPastReservation is returned when a reservation whose slot
	// time has passed is cancelled or rescheduled.
	ErrPastReservation = errors.New("past reservations cannot be changed")
)
