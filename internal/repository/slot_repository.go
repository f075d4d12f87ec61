package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/nanafes/reservation-api/internal/model"
)

// TimeSlotRepo provides CRUD operations for time slots. Slots are the
// unit of booking: each one is either RESERVABLE or WALK_IN and flips
// between AVAILABLE and BOOKED as reservations come and go.
type TimeSlotRepo struct {
	db *sql.DB
}

// NewTimeSlotRepo returns a new TimeSlotRepo bound to the given database.
func NewTimeSlotRepo(db *sql.DB) *TimeSlotRepo { return &TimeSlotRepo{db: db} }

const slotColumns = `id, slot_time, slot_type, status, created_at, updated_at`

// The DSN sets parseTime=true with loc=UTC, so DATETIME columns scan
// straight into time.Time already in UTC.
func scanSlot(row interface{ Scan(...any) error }) (*model.TimeSlot, error) {
	var s model.TimeSlot
	if err := row.Scan(&s.ID, &s.SlotTime, &s.Kind, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID returns a single slot or sql.ErrNoRows when it does not
// exist.
func (r *TimeSlotRepo) GetByID(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	const q = `SELECT ` + slotColumns + ` FROM time_slots WHERE id = ?`
	return scanSlot(r.db.QueryRowContext(ctx, q, id))
}

// GetForUpdateTx loads a slot under a row lock inside the given
// transaction. Concurrent bookings of the same slot serialize on this
// lock.
func (r *TimeSlotRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.TimeSlot, error) {
	const q = `SELECT ` + slotColumns + ` FROM time_slots WHERE id = ? FOR UPDATE`
	return scanSlot(tx.QueryRowContext(ctx, q, id))
}

// List returns slots inside the window ordered by slot time. Zero
// window bounds leave that side unconstrained.
func (r *TimeSlotRepo) List(ctx context.Context, window model.SlotWindow) ([]model.TimeSlot, error) {
	q := `SELECT ` + slotColumns + ` FROM time_slots`
	var conds []string
	var args []any
	if !window.From.IsZero() {
		conds = append(conds, "slot_time >= ?")
		args = append(args, window.From.UTC())
	}
	if !window.Until.IsZero() {
		conds = append(conds, "slot_time < ?")
		args = append(args, window.Until.UTC())
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY slot_time ASC"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	slots := make([]model.TimeSlot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// NextAvailable returns the earliest RESERVABLE slot still AVAILABLE
// at or after the given instant, or sql.ErrNoRows when every
// reservable slot is taken.
func (r *TimeSlotRepo) NextAvailable(ctx context.Context, from time.Time) (*model.TimeSlot, error) {
	const q = `SELECT ` + slotColumns + ` FROM time_slots
	           WHERE slot_type = ? AND status = ? AND slot_time >= ?
	           ORDER BY slot_time ASC LIMIT 1`
	return scanSlot(r.db.QueryRowContext(ctx, q, model.SlotReservable, model.SlotAvailable, from.UTC()))
}

// UpdateStatusTx flips a slot's status with a compare-and-swap: the
// row is only written when its current status matches from. It
// reports whether a row changed so callers can detect a lost race.
func (r *TimeSlotRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to model.SlotStatus) (bool, error) {
	const q = `UPDATE time_slots SET status = ? WHERE id = ? AND status = ?`
	result, err := tx.ExecContext(ctx, q, to, id, from)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Insert creates a single slot and populates its generated ID. A
// duplicate slot_time surfaces as ErrConflict.
func (r *TimeSlotRepo) Insert(ctx context.Context, slot *model.TimeSlot) error {
	const q = `INSERT INTO time_slots (slot_time, slot_type, status) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, slot.SlotTime.UTC(), slot.Kind, slot.Status)
	if err != nil {
		return mapDuplicate(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	slot.ID = uint64(id)
	return nil
}

// InsertBulk creates many slots in one statement. Used by the seeder
// to lay out the festival schedule. Passing an empty slice has no
// effect and returns nil.
func (r *TimeSlotRepo) InsertBulk(ctx context.Context, slots []model.TimeSlot) error {
	if len(slots) == 0 {
		return nil
	}
	q := `INSERT INTO time_slots (slot_time, slot_type, status) VALUES `
	args := make([]any, 0, len(slots)*3)
	for i, s := range slots {
		if i > 0 {
			q += ","
		}
		q += "(?, ?, ?)"
		args = append(args, s.SlotTime.UTC(), s.Kind, s.Status)
	}
	_, err := r.db.ExecContext(ctx, q, args...)
	return mapDuplicate(err)
}
