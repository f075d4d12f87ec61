package model

import "time"

// SlotKind classifies a time slot.  RESERVABLE slots can be booked in
// advance through the reservation API; WALK_IN slots are kept for
// visitors queueing on the day and are permanently excluded from the
// booking path regardless of their status.
type SlotKind string

const (
	SlotReservable SlotKind = "RESERVABLE"
	SlotWalkIn     SlotKind = "WALK_IN"
)

// SlotStatus tracks whether a slot is still open for booking.  Only
// the booking service transitions a slot between the two states:
// AVAILABLE -> BOOKED when a reservation is created and back again
// when it is cancelled or rescheduled away.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "AVAILABLE"
	SlotBooked    SlotStatus = "BOOKED"
)

// TimeSlot is one fixed-size bookable unit of the festival schedule.
// Slots are created in bulk by the seeding command and never deleted
// while a reservation references them.
//
// Fields:
//  ID        – primary key identifier.
//  SlotTime  – absolute start instant of the slot, stored in UTC.
//  Kind      – RESERVABLE or WALK_IN.
//  Status    – AVAILABLE or BOOKED.
//  CreatedAt – timestamp when the record was created.
//  UpdatedAt – timestamp when the record was last updated.
type TimeSlot struct {
	ID        uint64     `json:"id"`         // time_slots.id
	SlotTime  time.Time  `json:"slot_time"`  // time_slots.slot_time
	Kind      SlotKind   `json:"slot_type"`  // time_slots.slot_type
	Status    SlotStatus `json:"status"`     // time_slots.status
	CreatedAt time.Time  `json:"created_at"` // time_slots.created_at
	UpdatedAt time.Time  `json:"updated_at"` // time_slots.updated_at
}

// SlotWindow narrows a slot listing to a time range.  The zero value
// matches every slot.  From is inclusive, Until exclusive.
type SlotWindow struct {
	From  time.Time
	Until time.Time
}

// Contains reports whether t falls inside the window.  An unset bound
// does not constrain the corresponding side.
func (w SlotWindow) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.Until.IsZero() && !t.Before(w.Until) {
		return false
	}
	return true
}
