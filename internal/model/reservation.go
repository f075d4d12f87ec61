package model

import "time"

// Reservation binds a caller identity to a single time slot.  The
// owner is the LINE user id of the person who booked; it is nullable
// because machine-created and legacy rows carry no owner, in which
// case anyone may mutate the reservation.
//
// Fields:
//  ID         – primary key identifier.
//  OwnerID    – LINE user id of the owner (nullable).
//  TimeSlotID – slot being reserved (nullable only for historic rows
//               whose slot was removed; new rows always set it).
//  StartTime  – copy of the slot's instant taken at booking time.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Reservation struct {
	ID         uint64    `json:"id"`           // reservations.id
	OwnerID    *string   `json:"line_user_id"` // reservations.line_user_id (nullable)
	TimeSlotID *uint64   `json:"time_slot_id"` // reservations.time_slot_id (nullable)
	StartTime  time.Time `json:"start_time"`   // reservations.start_time
	CreatedAt  time.Time `json:"created_at"`   // reservations.created_at
	UpdatedAt  time.Time `json:"updated_at"`   // reservations.updated_at
}

// ReservationDetail bundles a reservation with its slot and optional
// team for the my-reservation view.  Team and Slot may be nil when the
// caller holds no upcoming reservation or never registered a team.
type ReservationDetail struct {
	Reservation *Reservation `json:"reservation"`
	Team        *Team        `json:"team"`
	Slot        *TimeSlot    `json:"time_slot"`
}
