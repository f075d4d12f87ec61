package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanafes/reservation-api/internal/model"
)

func TestMyReservation_AnonymousRejected(t *testing.T) {
	q := NewQuery(newFakeStore(), time.Time{})
	_, err := q.MyReservation(context.Background(), Machine())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMyReservation_EmptyWhenNoneUpcoming(t *testing.T) {
	store := newFakeStore()
	q := NewQuery(store, time.Time{})

	detail, err := q.MyReservation(context.Background(), Caller("U1"))
	require.NoError(t, err)
	assert.Nil(t, detail.Reservation)
	assert.Nil(t, detail.Team)
	assert.Nil(t, detail.Slot)
}

func TestMyReservation_ReturnsUpcomingWithTeamAndSlot(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	q := NewQuery(store, time.Time{})
	slotID := store.addSlot(time.Now().Add(time.Hour), model.SlotReservable, model.SlotAvailable)

	res, team, err := svc.CreateReservationWithTeam(context.Background(), Caller("U1"), slotID, "gophers", []string{"a"})
	require.NoError(t, err)

	detail, err := q.MyReservation(context.Background(), Caller("U1"))
	require.NoError(t, err)
	require.NotNil(t, detail.Reservation)
	assert.Equal(t, res.ID, detail.Reservation.ID)
	require.NotNil(t, detail.Team)
	assert.Equal(t, team.ID, detail.Team.ID)
	require.NotNil(t, detail.Slot)
	assert.Equal(t, slotID, detail.Slot.ID)
}

func TestEstimateWaitMinutes_NextOpenSlot(t *testing.T) {
	store := newFakeStore()
	q := NewQuery(store, time.Time{})
	now := time.Now().UTC()
	store.addSlot(now.Add(22*time.Minute+30*time.Second), model.SlotReservable, model.SlotAvailable)

	mins, ok, err := q.EstimateWaitMinutes(context.Background(), now)
	require.NoError(t, err)
	assert.True(t, ok)
	// Fractions round up.
	assert.Equal(t, 23, mins)
}

func TestEstimateWaitMinutes_SkipsTakenAndWalkIn(t *testing.T) {
	store := newFakeStore()
	q := NewQuery(store, time.Time{})
	now := time.Now().UTC()
	store.addSlot(now.Add(10*time.Minute), model.SlotReservable, model.SlotBooked)
	store.addSlot(now.Add(20*time.Minute), model.SlotWalkIn, model.SlotAvailable)
	store.addSlot(now.Add(30*time.Minute), model.SlotReservable, model.SlotAvailable)

	mins, ok, err := q.EstimateWaitMinutes(context.Background(), now)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 30, mins)
}

func TestEstimateWaitMinutes_NoOpenSlot(t *testing.T) {
	store := newFakeStore()
	q := NewQuery(store, time.Time{})
	now := time.Now().UTC()
	store.addSlot(now.Add(10*time.Minute), model.SlotReservable, model.SlotBooked)

	mins, ok, err := q.EstimateWaitMinutes(context.Background(), now)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, mins)
}

func TestEstimateWaitMinutes_BeforeOpeningUsesOpeningBaseline(t *testing.T) {
	store := newFakeStore()
	now := time.Now().UTC()
	opening := now.Add(time.Hour)
	q := NewQuery(store, opening)

	// This slot is open before opening, but the search starts at the
	// opening instant so only the later one counts.
	store.addSlot(now.Add(5*time.Minute), model.SlotReservable, model.SlotAvailable)
	store.addSlot(opening.Add(30*time.Minute), model.SlotReservable, model.SlotAvailable)

	mins, ok, err := q.EstimateWaitMinutes(context.Background(), now)
	require.NoError(t, err)
	assert.True(t, ok)
	// Minutes are still measured from now, not from opening.
	assert.Equal(t, 90, mins)
}

func TestQueryLookups_NotFound(t *testing.T) {
	q := NewQuery(newFakeStore(), time.Time{})
	ctx := context.Background()

	_, err := q.SlotByID(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = q.ReservationByID(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = q.TeamByID(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSlots_WindowFilter(t *testing.T) {
	store := newFakeStore()
	q := NewQuery(store, time.Time{})
	day := time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	store.addSlot(day.Add(9*time.Hour), model.SlotReservable, model.SlotAvailable)
	inside := store.addSlot(day.Add(12*time.Hour), model.SlotWalkIn, model.SlotAvailable)
	store.addSlot(day.Add(18*time.Hour), model.SlotReservable, model.SlotAvailable)

	window := model.SlotWindow{From: day.Add(10 * time.Hour), Until: day.Add(15 * time.Hour)}
	slots, err := q.ListSlots(context.Background(), window)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, inside, slots[0].ID)
}
