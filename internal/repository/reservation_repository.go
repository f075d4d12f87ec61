package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/nanafes/reservation-api/internal/model"
)

// ReservationRepo provides CRUD operations for reservations. A
// reservation pins one time slot and optionally carries the LINE user
// id of its owner; rows with a NULL owner were taken at the reception
// desk on behalf of visitors without the LINE app.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, line_user_id, time_slot_id, start_time, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }) (*model.Reservation, error) {
	var res model.Reservation
	var owner sql.NullString
	var slotID sql.NullInt64
	if err := row.Scan(&res.ID, &owner, &slotID, &res.StartTime, &res.CreatedAt, &res.UpdatedAt); err != nil {
		return nil, err
	}
	if owner.Valid {
		v := owner.String
		res.OwnerID = &v
	}
	if slotID.Valid {
		v := uint64(slotID.Int64)
		res.TimeSlotID = &v
	}
	return &res, nil
}

// GetByID returns a single reservation or sql.ErrNoRows.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	return scanReservation(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDTx is GetByID within the scope of an existing transaction.
func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? FOR UPDATE`
	return scanReservation(tx.QueryRowContext(ctx, q, id))
}

// GetActiveByOwner returns the owner's reservation whose start time is
// at or after now, or sql.ErrNoRows when they have none. At most one
// such row can exist per owner.
func (r *ReservationRepo) GetActiveByOwner(ctx context.Context, ownerID string, now time.Time) (*model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations
	           WHERE line_user_id = ? AND start_time >= ?
	           ORDER BY start_time ASC LIMIT 1`
	return scanReservation(r.db.QueryRowContext(ctx, q, ownerID, now.UTC()))
}

// HasUpcomingTx reports whether the owner already holds a reservation
// starting at or after now. The FOR UPDATE matters: a plain COUNT is a
// consistent read under REPEATABLE READ, so two transactions booking
// different slots for the same owner would both see zero and both
// insert. The locking read takes next-key locks on the owner's range
// of idx_reservations_owner; racing inserts into that gap collide, one
// transaction dies with deadlock 1213 and the store's retry then sees
// the winner's row.
func (r *ReservationRepo) HasUpcomingTx(ctx context.Context, tx *sql.Tx, ownerID string, now time.Time) (bool, error) {
	const q = `SELECT COUNT(*) FROM reservations WHERE line_user_id = ? AND start_time >= ? FOR UPDATE`
	var n int
	if err := tx.QueryRowContext(ctx, q, ownerID, now.UTC()).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction. It populates the generated ID and timestamps on the
// provided record. The caller must commit or rollback the
// transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (line_user_id, time_slot_id, start_time) VALUES (?, ?, ?)`
	var owner any
	if res.OwnerID != nil {
		owner = *res.OwnerID
	}
	var slotID any
	if res.TimeSlotID != nil {
		slotID = *res.TimeSlotID
	}
	result, err := tx.ExecContext(ctx, q, owner, slotID, res.StartTime.UTC())
	if err != nil {
		return mapDuplicate(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back the row to populate timestamps and defaults.
	const sel = `SELECT created_at, updated_at FROM reservations WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, res.ID).Scan(&res.CreatedAt, &res.UpdatedAt)
}

// RetargetTx moves a reservation onto another slot, keeping the
// start_time column in sync with the new slot.
func (r *ReservationRepo) RetargetTx(ctx context.Context, tx *sql.Tx, id, slotID uint64, start time.Time) error {
	const q = `UPDATE reservations SET time_slot_id = ?, start_time = ? WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, slotID, start.UTC(), id)
	return mapDuplicate(err)
}

// DeleteTx removes a reservation row. Team rows must be deleted
// first; the foreign key restricts otherwise.
func (r *ReservationRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `DELETE FROM reservations WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}
