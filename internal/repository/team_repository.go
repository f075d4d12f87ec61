package repository

import (
	"context"
	"database/sql"

	"github.com/nanafes/reservation-api/internal/model"
)

// TeamRepo provides CRUD operations for teams and their members. A
// team belongs to exactly one reservation; member rows live in the
// team_members table and are always replaced wholesale on edit.
type TeamRepo struct {
	db *sql.DB
}

// NewTeamRepo returns a new TeamRepo bound to the given database.
func NewTeamRepo(db *sql.DB) *TeamRepo { return &TeamRepo{db: db} }

const teamColumns = `id, reservation_id, name, headcount, created_at, updated_at`

func scanTeam(row interface{ Scan(...any) error }) (*model.Team, error) {
	var t model.Team
	if err := row.Scan(&t.ID, &t.ReservationID, &t.Name, &t.Headcount, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID returns a team with its members, or sql.ErrNoRows.
func (r *TeamRepo) GetByID(ctx context.Context, id uint64) (*model.Team, error) {
	const q = `SELECT ` + teamColumns + ` FROM teams WHERE id = ?`
	team, err := scanTeam(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if team.Members, err = r.members(ctx, r.db, team.ID); err != nil {
		return nil, err
	}
	return team, nil
}

// GetByIDTx is GetByID within the scope of an existing transaction.
func (r *TeamRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Team, error) {
	const q = `SELECT ` + teamColumns + ` FROM teams WHERE id = ? FOR UPDATE`
	team, err := scanTeam(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if team.Members, err = r.members(ctx, tx, team.ID); err != nil {
		return nil, err
	}
	return team, nil
}

// GetByReservation returns the team registered under a reservation,
// or sql.ErrNoRows when the reservation has none.
func (r *TeamRepo) GetByReservation(ctx context.Context, reservationID uint64) (*model.Team, error) {
	const q = `SELECT ` + teamColumns + ` FROM teams WHERE reservation_id = ?`
	team, err := scanTeam(r.db.QueryRowContext(ctx, q, reservationID))
	if err != nil {
		return nil, err
	}
	if team.Members, err = r.members(ctx, r.db, team.ID); err != nil {
		return nil, err
	}
	return team, nil
}

// GetByReservationTx is GetByReservation within a transaction.
func (r *TeamRepo) GetByReservationTx(ctx context.Context, tx *sql.Tx, reservationID uint64) (*model.Team, error) {
	const q = `SELECT ` + teamColumns + ` FROM teams WHERE reservation_id = ?`
	team, err := scanTeam(tx.QueryRowContext(ctx, q, reservationID))
	if err != nil {
		return nil, err
	}
	if team.Members, err = r.members(ctx, tx, team.ID); err != nil {
		return nil, err
	}
	return team, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (r *TeamRepo) members(ctx context.Context, q querier, teamID uint64) ([]model.TeamMember, error) {
	const sel = `SELECT id, team_id, name, created_at FROM team_members WHERE team_id = ? ORDER BY id ASC`
	rows, err := q.QueryContext(ctx, sel, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make([]model.TeamMember, 0)
	for rows.Next() {
		var m model.TeamMember
		if err := rows.Scan(&m.ID, &m.TeamID, &m.Name, &m.CreatedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

// CreateTx inserts a team and its member rows within the scope of an
// existing transaction, populating all generated IDs. A second team
// under the same reservation trips the UNIQUE constraint and returns
// ErrConflict.
func (r *TeamRepo) CreateTx(ctx context.Context, tx *sql.Tx, team *model.Team) error {
	const q = `INSERT INTO teams (reservation_id, name, headcount) VALUES (?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, team.ReservationID, team.Name, team.Headcount)
	if err != nil {
		return mapDuplicate(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	team.ID = uint64(id)
	if err := r.insertMembersTx(ctx, tx, team.ID, team.Members); err != nil {
		return err
	}
	const sel = `SELECT created_at, updated_at FROM teams WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, team.ID).Scan(&team.CreatedAt, &team.UpdatedAt)
}

// UpdateTx overwrites a team's scalar fields and replaces the whole
// member list within a transaction.
func (r *TeamRepo) UpdateTx(ctx context.Context, tx *sql.Tx, team *model.Team) error {
	const q = `UPDATE teams SET name = ?, headcount = ? WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q, team.Name, team.Headcount, team.ID); err != nil {
		return err
	}
	const del = `DELETE FROM team_members WHERE team_id = ?`
	if _, err := tx.ExecContext(ctx, del, team.ID); err != nil {
		return err
	}
	return r.insertMembersTx(ctx, tx, team.ID, team.Members)
}

// DeleteByReservationTx removes the team (and its members) registered
// under a reservation. Deleting a reservation without a team is a
// no-op.
func (r *TeamRepo) DeleteByReservationTx(ctx context.Context, tx *sql.Tx, reservationID uint64) error {
	const memberQ = `DELETE tm FROM team_members tm
	                 JOIN teams t ON t.id = tm.team_id
	                 WHERE t.reservation_id = ?`
	if _, err := tx.ExecContext(ctx, memberQ, reservationID); err != nil {
		return err
	}
	const q = `DELETE FROM teams WHERE reservation_id = ?`
	_, err := tx.ExecContext(ctx, q, reservationID)
	return err
}

// insertMembersTx bulk-inserts member rows and queries their generated
// IDs back in insertion order.
func (r *TeamRepo) insertMembersTx(ctx context.Context, tx *sql.Tx, teamID uint64, members []model.TeamMember) error {
	if len(members) == 0 {
		return nil
	}
	q := `INSERT INTO team_members (team_id, name) VALUES `
	args := make([]any, 0, len(members)*2)
	for i, m := range members {
		if i > 0 {
			q += ","
		}
		q += "(?, ?)"
		args = append(args, teamID, m.Name)
	}
	if _, err := tx.ExecContext(ctx, q, args...); err != nil {
		return err
	}
	const sel = `SELECT id, team_id, name, created_at FROM team_members WHERE team_id = ? ORDER BY id ASC`
	rows, err := tx.QueryContext(ctx, sel, teamID)
	if err != nil {
		return err
	}
	defer rows.Close()
	idx := 0
	for rows.Next() {
		var m model.TeamMember
		if err := rows.Scan(&m.ID, &m.TeamID, &m.Name, &m.CreatedAt); err != nil {
			return err
		}
		if idx < len(members) {
			members[idx] = m
		}
		idx++
	}
	return rows.Err()
}
