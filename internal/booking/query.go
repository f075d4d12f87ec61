package booking

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/nanafes/reservation-api/internal/model"
)

// DefaultOpening is the festival opening instant used as the wait
// estimate baseline when no opening time is configured.
var DefaultOpening = time.Date(2025, time.November, 1, 1, 0, 0, 0, time.UTC)

// Query serves the read side of the booking API.  Reads run outside
// transactions and tolerate slightly stale data.
type Query struct {
	store   Store
	opening time.Time
}

// NewQuery constructs the read facade.  A zero opening falls back to
// DefaultOpening.
func NewQuery(store Store, opening time.Time) *Query {
	if opening.IsZero() {
		opening = DefaultOpening
	}
	return &Query{store: store, opening: opening.UTC()}
}

// ListSlots returns every slot whose time falls inside the window,
// ordered by slot time.  A zero window lists everything.
func (q *Query) ListSlots(ctx context.Context, window model.SlotWindow) ([]model.TimeSlot, error) {
	return q.store.ListSlots(ctx, window)
}

// SlotByID returns one slot or ErrNotFound.
func (q *Query) SlotByID(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	slot, err := q.store.SlotByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return slot, nil
}

// ReservationByID returns one reservation with its team and slot, or
// ErrNotFound.
func (q *Query) ReservationByID(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	res, err := q.store.ReservationByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return res, nil
}

// TeamByID returns one team with its members, or ErrNotFound.
func (q *Query) TeamByID(ctx context.Context, id uint64) (*model.Team, error) {
	team, err := q.store.TeamByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return team, nil
}

// MyReservation returns the caller's upcoming reservation, or a detail
// with all fields nil when the caller has none.  Anonymous callers
// have nothing to look up.
func (q *Query) MyReservation(ctx context.Context, caller Identity) (*model.ReservationDetail, error) {
	if !caller.Known() {
		return nil, ErrUnauthorized
	}
	detail, err := q.store.ActiveReservation(ctx, caller.ID(), time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &model.ReservationDetail{}, nil
		}
		return nil, err
	}
	return detail, nil
}

// EstimateWaitMinutes reports how many minutes until the earliest
// bookable slot, measured from now but never earlier than the festival
// opening.  The second return is false when every reservable slot is
// taken.
func (q *Query) EstimateWaitMinutes(ctx context.Context, now time.Time) (int, bool, error) {
	now = now.UTC()
	base := now
	if q.opening.After(base) {
		base = q.opening
	}
	slot, err := q.store.NextAvailableSlot(ctx, base)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	mins := int(math.Ceil(slot.SlotTime.Sub(now).Minutes()))
	if mins < 0 {
		mins = 0
	}
	return mins, true, nil
}
