package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/nanafes/reservation-api/internal/booking"
	"github.com/nanafes/reservation-api/internal/model"
)

// Store bundles the repositories behind the booking.Store interface.
// Reads go straight to the connection pool; mutations run through
// WithinTx so every booking operation is a single MySQL transaction.
type Store struct {
	db           *sql.DB
	slots        *TimeSlotRepo
	reservations *ReservationRepo
	teams        *TeamRepo
}

// NewStore returns a Store bound to the given database.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:           db,
		slots:        NewTimeSlotRepo(db),
		reservations: NewReservationRepo(db),
		teams:        NewTeamRepo(db),
	}
}

// Slots exposes the slot repository for callers outside the booking
// flow, such as the seeder and the machine slot endpoint.
func (s *Store) Slots() *TimeSlotRepo { return s.slots }

// WithinTx runs fn inside a transaction, committing when it returns
// nil and rolling back otherwise. A transaction that dies in an
// InnoDB deadlock is retried once before the error surfaces.
func (s *Store) WithinTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	err := s.runTx(ctx, fn)
	if isDeadlock(err) {
		err = s.runTx(ctx, fn)
	}
	return err
}

func (s *Store) runTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&storeTx{store: s, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SlotByID implements booking.Store.
func (s *Store) SlotByID(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	return s.slots.GetByID(ctx, id)
}

// ListSlots implements booking.Store.
func (s *Store) ListSlots(ctx context.Context, window model.SlotWindow) ([]model.TimeSlot, error) {
	return s.slots.List(ctx, window)
}

// NextAvailableSlot implements booking.Store.
func (s *Store) NextAvailableSlot(ctx context.Context, from time.Time) (*model.TimeSlot, error) {
	return s.slots.NextAvailable(ctx, from)
}

// TeamByID implements booking.Store.
func (s *Store) TeamByID(ctx context.Context, id uint64) (*model.Team, error) {
	return s.teams.GetByID(ctx, id)
}

// ReservationByID implements booking.Store. It assembles the
// reservation with its team and slot; a missing team or slot leaves
// the corresponding field nil.
func (s *Store) ReservationByID(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.assembleDetail(ctx, res)
}

// ActiveReservation implements booking.Store.
func (s *Store) ActiveReservation(ctx context.Context, ownerID string, now time.Time) (*model.ReservationDetail, error) {
	res, err := s.reservations.GetActiveByOwner(ctx, ownerID, now)
	if err != nil {
		return nil, err
	}
	return s.assembleDetail(ctx, res)
}

func (s *Store) assembleDetail(ctx context.Context, res *model.Reservation) (*model.ReservationDetail, error) {
	detail := &model.ReservationDetail{Reservation: res}
	team, err := s.teams.GetByReservation(ctx, res.ID)
	switch {
	case err == nil:
		detail.Team = team
	case !errors.Is(err, sql.ErrNoRows):
		return nil, err
	}
	if res.TimeSlotID != nil {
		slot, err := s.slots.GetByID(ctx, *res.TimeSlotID)
		if err != nil {
			return nil, err
		}
		detail.Slot = slot
	}
	return detail, nil
}

// storeTx adapts one *sql.Tx to the booking.Tx interface by
// delegating to the repositories' transactional variants.
type storeTx struct {
	store *Store
	tx    *sql.Tx
}

func (t *storeTx) SlotForUpdate(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	return t.store.slots.GetForUpdateTx(ctx, t.tx, id)
}

func (t *storeTx) MarkSlot(ctx context.Context, id uint64, from, to model.SlotStatus) (bool, error) {
	return t.store.slots.UpdateStatusTx(ctx, t.tx, id, from, to)
}

func (t *storeTx) HasUpcomingReservation(ctx context.Context, ownerID string, now time.Time) (bool, error) {
	return t.store.reservations.HasUpcomingTx(ctx, t.tx, ownerID, now)
}

func (t *storeTx) CreateReservation(ctx context.Context, res *model.Reservation) error {
	return t.store.reservations.CreateTx(ctx, t.tx, res)
}

func (t *storeTx) ReservationByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return t.store.reservations.GetByIDTx(ctx, t.tx, id)
}

func (t *storeTx) RetargetReservation(ctx context.Context, id, slotID uint64, start time.Time) error {
	return t.store.reservations.RetargetTx(ctx, t.tx, id, slotID, start)
}

func (t *storeTx) DeleteReservation(ctx context.Context, id uint64) error {
	return t.store.reservations.DeleteTx(ctx, t.tx, id)
}

func (t *storeTx) TeamByID(ctx context.Context, id uint64) (*model.Team, error) {
	return t.store.teams.GetByIDTx(ctx, t.tx, id)
}

func (t *storeTx) TeamByReservation(ctx context.Context, reservationID uint64) (*model.Team, error) {
	return t.store.teams.GetByReservationTx(ctx, t.tx, reservationID)
}

func (t *storeTx) CreateTeam(ctx context.Context, team *model.Team) error {
	return t.store.teams.CreateTx(ctx, t.tx, team)
}

func (t *storeTx) UpdateTeam(ctx context.Context, team *model.Team) error {
	return t.store.teams.UpdateTx(ctx, t.tx, team)
}

func (t *storeTx) DeleteTeamByReservation(ctx context.Context, reservationID uint64) error {
	return t.store.teams.DeleteByReservationTx(ctx, t.tx, reservationID)
}

var _ booking.Store = (*Store)(nil)
