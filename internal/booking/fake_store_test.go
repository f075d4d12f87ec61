package booking

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/nanafes/reservation-api/internal/model"
)

// fakeStore is an in-memory Store. Transactions take a snapshot of
// all tables and restore it when fn fails, so rollback behavior can be
// asserted without a database. The mutex serializes transactions the
// way row locks do in MySQL, which lets the concurrency tests exercise
// the compare-and-swap path.
type fakeStore struct {
	mu           sync.Mutex
	nextID       uint64
	slots        map[uint64]model.TimeSlot
	reservations map[uint64]model.Reservation
	teams        map[uint64]model.Team
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		slots:        make(map[uint64]model.TimeSlot),
		reservations: make(map[uint64]model.Reservation),
		teams:        make(map[uint64]model.Team),
	}
}

func (f *fakeStore) id() uint64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) addSlot(at time.Time, kind model.SlotKind, status model.SlotStatus) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.id()
	f.slots[id] = model.TimeSlot{ID: id, SlotTime: at.UTC(), Kind: kind, Status: status}
	return id
}

func (f *fakeStore) slot(id uint64) model.TimeSlot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slots[id]
}

func (f *fakeStore) reservationCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reservations)
}

func (f *fakeStore) teamCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.teams)
}

func (f *fakeStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapSlots := cloneMap(f.slots)
	snapRes := cloneMap(f.reservations)
	snapTeams := cloneMap(f.teams)
	if err := fn(&fakeTx{f}); err != nil {
		f.slots, f.reservations, f.teams = snapSlots, snapRes, snapTeams
		return err
	}
	return nil
}

func cloneMap[V any](m map[uint64]V) map[uint64]V {
	out := make(map[uint64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (f *fakeStore) SlotByID(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slotByIDLocked(id)
}

func (f *fakeStore) slotByIDLocked(id uint64) (*model.TimeSlot, error) {
	s, ok := f.slots[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &s, nil
}

func (f *fakeStore) ListSlots(ctx context.Context, window model.SlotWindow) ([]model.TimeSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.TimeSlot, 0)
	for _, s := range f.slots {
		if window.Contains(s.SlotTime) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotTime.Before(out[j].SlotTime) })
	return out, nil
}

func (f *fakeStore) NextAvailableSlot(ctx context.Context, from time.Time) (*model.TimeSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *model.TimeSlot
	for _, s := range f.slots {
		s := s
		if s.Kind != model.SlotReservable || s.Status != model.SlotAvailable || s.SlotTime.Before(from) {
			continue
		}
		if best == nil || s.SlotTime.Before(best.SlotTime) {
			best = &s
		}
	}
	if best == nil {
		return nil, sql.ErrNoRows
	}
	return best, nil
}

func (f *fakeStore) ReservationByID(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.reservations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return f.detailLocked(res), nil
}

func (f *fakeStore) ActiveReservation(ctx context.Context, ownerID string, now time.Time) (*model.ReservationDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.OwnerID != nil && *r.OwnerID == ownerID && !r.StartTime.Before(now) {
			return f.detailLocked(r), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) detailLocked(res model.Reservation) *model.ReservationDetail {
	r := res
	detail := &model.ReservationDetail{Reservation: &r}
	for _, t := range f.teams {
		if t.ReservationID == res.ID {
			t := t
			detail.Team = &t
			break
		}
	}
	if res.TimeSlotID != nil {
		if s, ok := f.slots[*res.TimeSlotID]; ok {
			detail.Slot = &s
		}
	}
	return detail
}

func (f *fakeStore) TeamByID(ctx context.Context, id uint64) (*model.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &t, nil
}

// fakeTx operates on the already-locked store.
type fakeTx struct {
	f *fakeStore
}

func (t *fakeTx) SlotForUpdate(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	return t.f.slotByIDLocked(id)
}

func (t *fakeTx) MarkSlot(ctx context.Context, id uint64, from, to model.SlotStatus) (bool, error) {
	s, ok := t.f.slots[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	t.f.slots[id] = s
	return true, nil
}

func (t *fakeTx) HasUpcomingReservation(ctx context.Context, ownerID string, now time.Time) (bool, error) {
	for _, r := range t.f.reservations {
		if r.OwnerID != nil && *r.OwnerID == ownerID && !r.StartTime.Before(now) {
			return true, nil
		}
	}
	return false, nil
}

func (t *fakeTx) CreateReservation(ctx context.Context, res *model.Reservation) error {
	res.ID = t.f.id()
	t.f.reservations[res.ID] = *res
	return nil
}

func (t *fakeTx) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	r, ok := t.f.reservations[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &r, nil
}

func (t *fakeTx) RetargetReservation(ctx context.Context, id, slotID uint64, start time.Time) error {
	r, ok := t.f.reservations[id]
	if !ok {
		return sql.ErrNoRows
	}
	r.TimeSlotID = &slotID
	r.StartTime = start
	t.f.reservations[id] = r
	return nil
}

func (t *fakeTx) DeleteReservation(ctx context.Context, id uint64) error {
	delete(t.f.reservations, id)
	return nil
}

func (t *fakeTx) TeamByID(ctx context.Context, id uint64) (*model.Team, error) {
	team, ok := t.f.teams[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &team, nil
}

func (t *fakeTx) TeamByReservation(ctx context.Context, reservationID uint64) (*model.Team, error) {
	for _, team := range t.f.teams {
		if team.ReservationID == reservationID {
			return &team, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (t *fakeTx) CreateTeam(ctx context.Context, team *model.Team) error {
	team.ID = t.f.id()
	for i := range team.Members {
		team.Members[i].ID = t.f.id()
		team.Members[i].TeamID = team.ID
	}
	t.f.teams[team.ID] = *team
	return nil
}

func (t *fakeTx) UpdateTeam(ctx context.Context, team *model.Team) error {
	if _, ok := t.f.teams[team.ID]; !ok {
		return sql.ErrNoRows
	}
	t.f.teams[team.ID] = *team
	return nil
}

func (t *fakeTx) DeleteTeamByReservation(ctx context.Context, reservationID uint64) error {
	for id, team := range t.f.teams {
		if team.ReservationID == reservationID {
			delete(t.f.teams, id)
		}
	}
	return nil
}

// recordingSink captures events fired after commits.
type recordingSink struct {
	mu        sync.Mutex
	booked    []uint64
	cancelled []uint64
}

func (r *recordingSink) ReservationBooked(ctx context.Context, res *model.Reservation, slot *model.TimeSlot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.booked = append(r.booked, res.ID)
}

func (r *recordingSink) ReservationCancelled(ctx context.Context, res *model.Reservation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = append(r.cancelled, res.ID)
}
