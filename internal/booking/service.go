package booking

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/nanafes/reservation-api/internal/model"
)

// Team size limits.  Creation and attach enforce the festival rule of
// one to four players; the edit path accepts the wider range the
// on-site staff use when fixing records by hand.
const (
	maxTeamMembers   = 4
	maxEditHeadcount = 10
)

// Service enforces the booking invariants: a slot is booked by at most
// one reservation, a known caller holds at most one upcoming
// reservation, and slot status never drifts from the reservation rows.
// Every mutating operation runs inside exactly one store transaction.
type Service struct {
	store  Store
	events EventSink
}

// NewService constructs the booking service.  events may be nil when
// no broker is configured.
func NewService(store Store, events EventSink) *Service {
	if store == nil {
		panic("nil store passed to NewService")
	}
	return &Service{store: store, events: events}
}

// CreateReservation books slotID for the caller.  A known caller
// becomes the owner; otherwise explicitOwner (a LINE user id relayed
// by a machine caller) is used, and when both are absent the
// reservation is anonymous.  Preconditions are checked inside the
// transaction in a fixed order so the first failure decides the error.
func (s *Service) CreateReservation(ctx context.Context, caller Identity, slotID uint64, explicitOwner string) (*model.Reservation, error) {
	owner := resolveOwner(caller, explicitOwner)

	var res *model.Reservation
	var slot *model.TimeSlot
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		var err error
		slot, err = s.reservableSlot(ctx, tx, slotID)
		if err != nil {
			return err
		}
		if owner != nil {
			taken, err := tx.HasUpcomingReservation(ctx, *owner, time.Now().UTC())
			if err != nil {
				return err
			}
			if taken {
				return ErrAlreadyReserved
			}
		}
		res = &model.Reservation{
			OwnerID:    owner,
			TimeSlotID: &slot.ID,
			StartTime:  slot.SlotTime,
		}
		if err := tx.CreateReservation(ctx, res); err != nil {
			return err
		}
		return s.bookSlot(ctx, tx, slot.ID)
	})
	if err != nil {
		return nil, err
	}
	s.notifyBooked(ctx, res, slot)
	return res, nil
}

// CreateReservationWithTeam books a slot and registers the team in the
// same transaction.  Anonymous callers are rejected: the team must
// belong to somebody who can edit it later.
func (s *Service) CreateReservationWithTeam(ctx context.Context, caller Identity, slotID uint64, teamName string, memberNames []string) (*model.Reservation, *model.Team, error) {
	if !caller.Known() {
		return nil, nil, ErrUnauthorized
	}
	if err := validateRoster(teamName, memberNames); err != nil {
		return nil, nil, err
	}
	owner := caller.ID()

	var res *model.Reservation
	var team *model.Team
	var slot *model.TimeSlot
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		var err error
		slot, err = s.reservableSlot(ctx, tx, slotID)
		if err != nil {
			return err
		}
		taken, err := tx.HasUpcomingReservation(ctx, owner, time.Now().UTC())
		if err != nil {
			return err
		}
		if taken {
			return ErrAlreadyReserved
		}
		res = &model.Reservation{
			OwnerID:    &owner,
			TimeSlotID: &slot.ID,
			StartTime:  slot.SlotTime,
		}
		if err := tx.CreateReservation(ctx, res); err != nil {
			return err
		}
		team = newTeam(res.ID, teamName, memberNames)
		if err := tx.CreateTeam(ctx, team); err != nil {
			return err
		}
		return s.bookSlot(ctx, tx, slot.ID)
	})
	if err != nil {
		return nil, nil, err
	}
	s.notifyBooked(ctx, res, slot)
	return res, team, nil
}

// CancelReservation deletes the reservation together with its team and
// releases the slot back to AVAILABLE.  Past reservations are
// immutable.
func (s *Service) CancelReservation(ctx context.Context, caller Identity, reservationID uint64) error {
	var res *model.Reservation
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		var err error
		res, err = s.ownedReservation(ctx, tx, caller, reservationID)
		if err != nil {
			return err
		}
		if res.StartTime.Before(time.Now().UTC()) {
			return ErrPastReservation
		}
		if err := tx.DeleteTeamByReservation(ctx, res.ID); err != nil {
			return err
		}
		if err := tx.DeleteReservation(ctx, res.ID); err != nil {
			return err
		}
		if res.TimeSlotID != nil {
			if _, err := tx.MarkSlot(ctx, *res.TimeSlotID, model.SlotBooked, model.SlotAvailable); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if s.events != nil {
		s.events.ReservationCancelled(ctx, res)
	}
	return nil
}

// RescheduleReservation moves the reservation onto newSlotID: the old
// slot is released, the new one booked and the reservation retargeted,
// all atomically.  Moving onto the slot already held is rejected, as
// is any mutation once the reserved time has passed.
func (s *Service) RescheduleReservation(ctx context.Context, caller Identity, reservationID, newSlotID uint64) (*model.Reservation, error) {
	var res *model.Reservation
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		var err error
		res, err = s.ownedReservation(ctx, tx, caller, reservationID)
		if err != nil {
			return err
		}
		if res.TimeSlotID != nil && *res.TimeSlotID == newSlotID {
			return ErrInvalidArgument
		}
		now := time.Now().UTC()
		if res.StartTime.Before(now) {
			return ErrPastReservation
		}
		slot, err := s.reservableSlot(ctx, tx, newSlotID)
		if err != nil {
			return err
		}
		if slot.SlotTime.Before(now) {
			return ErrPastReservation
		}
		if err := s.bookSlot(ctx, tx, slot.ID); err != nil {
			return err
		}
		if res.TimeSlotID != nil {
			if _, err := tx.MarkSlot(ctx, *res.TimeSlotID, model.SlotBooked, model.SlotAvailable); err != nil {
				return err
			}
		}
		if err := tx.RetargetReservation(ctx, res.ID, slot.ID, slot.SlotTime); err != nil {
			return err
		}
		res.TimeSlotID = &slot.ID
		res.StartTime = slot.SlotTime
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// AttachTeam registers a team on an existing reservation that has none
// yet.  Unlike cancellation, anonymous reservations cannot be claimed
// here: the reservation owner must be the caller.
func (s *Service) AttachTeam(ctx context.Context, caller Identity, reservationID uint64, teamName string, memberNames []string) (*model.Team, error) {
	if !caller.Known() {
		return nil, ErrUnauthorized
	}
	if err := validateRoster(teamName, memberNames); err != nil {
		return nil, err
	}

	var team *model.Team
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		res, err := tx.ReservationByID(ctx, reservationID)
		if err != nil {
			return notFoundOr(err)
		}
		if !caller.Owns(res.OwnerID) {
			return ErrForbidden
		}
		existing, err := tx.TeamByReservation(ctx, res.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if existing != nil {
			return ErrTeamExists
		}
		team = newTeam(res.ID, teamName, memberNames)
		return tx.CreateTeam(ctx, team)
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// ReplaceTeam overwrites a team's scalar fields and its entire member
// list.  The edit path is deliberately looser than creation: headcount
// may go up to maxEditHeadcount and does not have to match the member
// list, mirroring how staff fix records on site.
func (s *Service) ReplaceTeam(ctx context.Context, teamID uint64, name string, headcount int, memberNames []string) (*model.Team, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidArgument
	}
	if headcount < 1 || headcount > maxEditHeadcount {
		return nil, ErrInvalidArgument
	}
	for _, n := range memberNames {
		if strings.TrimSpace(n) == "" {
			return nil, ErrInvalidArgument
		}
	}

	var team *model.Team
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		var err error
		team, err = tx.TeamByID(ctx, teamID)
		if err != nil {
			return notFoundOr(err)
		}
		team.Name = name
		team.Headcount = headcount
		team.Members = memberRows(team.ID, memberNames)
		return tx.UpdateTeam(ctx, team)
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// reservableSlot loads the slot under a row lock and applies the three
// slot preconditions in spec order: existence, kind, availability.
func (s *Service) reservableSlot(ctx context.Context, tx Tx, slotID uint64) (*model.TimeSlot, error) {
	slot, err := tx.SlotForUpdate(ctx, slotID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if slot.Kind != model.SlotReservable {
		return nil, ErrSlotNotReservable
	}
	if slot.Status != model.SlotAvailable {
		return nil, ErrSlotTaken
	}
	return slot, nil
}

// bookSlot performs the compare-and-swap to BOOKED.  Zero affected
// rows means another transaction booked the slot between our read and
// write, which surfaces as the same conflict the status check yields.
func (s *Service) bookSlot(ctx context.Context, tx Tx, slotID uint64) error {
	ok, err := tx.MarkSlot(ctx, slotID, model.SlotAvailable, model.SlotBooked)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSlotTaken
	}
	return nil
}

// ownedReservation loads a reservation and applies the shared
// ownership rule: rows with a nil owner are open to anyone, owned rows
// only to their owner.
func (s *Service) ownedReservation(ctx context.Context, tx Tx, caller Identity, id uint64) (*model.Reservation, error) {
	res, err := tx.ReservationByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if !caller.MayMutate(res.OwnerID) {
		return nil, ErrForbidden
	}
	return res, nil
}

func (s *Service) notifyBooked(ctx context.Context, res *model.Reservation, slot *model.TimeSlot) {
	if s.events != nil {
		s.events.ReservationBooked(ctx, res, slot)
	}
}

func resolveOwner(caller Identity, explicitOwner string) *string {
	if caller.Known() {
		id := caller.ID()
		return &id
	}
	if explicitOwner != "" {
		return &explicitOwner
	}
	return nil
}

func validateRoster(teamName string, memberNames []string) error {
	if strings.TrimSpace(teamName) == "" {
		return ErrInvalidArgument
	}
	if len(memberNames) < 1 || len(memberNames) > maxTeamMembers {
		return ErrInvalidArgument
	}
	for _, n := range memberNames {
		if strings.TrimSpace(n) == "" {
			return ErrInvalidArgument
		}
	}
	return nil
}

func newTeam(reservationID uint64, name string, memberNames []string) *model.Team {
	t := &model.Team{
		ReservationID: reservationID,
		Name:          name,
		Headcount:     len(memberNames),
	}
	t.Members = memberRows(0, memberNames)
	return t
}

func memberRows(teamID uint64, names []string) []model.TeamMember {
	rows := make([]model.TeamMember, 0, len(names))
	for _, n := range names {
		rows = append(rows, model.TeamMember{TeamID: teamID, Name: n})
	}
	return rows
}

// notFoundOr maps the repository's row-missing sentinel onto the
// service error and passes everything else through.
func notFoundOr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
