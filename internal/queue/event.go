// Package queue defines message payloads exchanged over the message broker
// together with the publisher and the background consumer.
package queue

// ReservationBookedEvent is published when a slot is successfully
// booked, whether through the app or by the reception desk. It
// carries enough information for downstream consumers to log or
// notify without querying the primary database.
type ReservationBookedEvent struct {
	ReservationID uint64  `json:"reservation_id"`
	LineUserID    *string `json:"line_user_id"`
	TimeSlotID    uint64  `json:"time_slot_id"`
	SlotTime      string  `json:"slot_time"`
	BookedAt      string  `json:"booked_at"`
}

// ReservationCancelledEvent is published when a reservation is
// cancelled and its slot released.
type ReservationCancelledEvent struct {
	ReservationID uint64  `json:"reservation_id"`
	LineUserID    *string `json:"line_user_id"`
	SlotTime      string  `json:"slot_time"`
	CancelledAt   string  `json:"cancelled_at"`
}
