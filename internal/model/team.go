package model

import "time"

// Team is the optional roster attached to a reservation: a display
// name, a declared headcount and the member name list.  A reservation
// holds at most one team, and the team is removed in cascade when its
// reservation is cancelled.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – owning reservation (one team per reservation).
//  Name          – team display name.
//  Headcount     – declared number of participants.
//  Members       – member rows loaded alongside the team.
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Team struct {
	ID            uint64       `json:"id"`             // teams.id
	ReservationID uint64       `json:"reservation_id"` // teams.reservation_id
	Name          string       `json:"name"`           // teams.name
	Headcount     int          `json:"headcount"`      // teams.headcount
	Members       []TeamMember `json:"members"`        // team_members rows
	CreatedAt     time.Time    `json:"created_at"`     // teams.created_at
	UpdatedAt     time.Time    `json:"updated_at"`     // teams.updated_at
}

// TeamMember is a single participant name under a team.  Member rows
// are replaced wholesale when a team is edited.
type TeamMember struct {
	ID        uint64    `json:"id"`         // team_members.id
	TeamID    uint64    `json:"team_id"`    // team_members.team_id
	Name      string    `json:"name"`       // team_members.name
	CreatedAt time.Time `json:"created_at"` // team_members.created_at
}
