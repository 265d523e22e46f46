package bracket

import (
	"time"

	"github.com/google/uuid"
)

type EntrantStatus string

const (
	EntrantPending   EntrantStatus = "pending"
	EntrantConfirmed EntrantStatus = "confirmed"
	EntrantRejected  EntrantStatus = "rejected"
)

// Entrant is a registration for a tournament. Exactly one of ParticipantID and
// TeamID is set, depending on whether the tournament is team based.
type Entrant struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	TournamentID  uuid.UUID     `db:"tournament_id" json:"tournamentId"`
	ParticipantID *uuid.UUID    `db:"user_id" json:"participantId,omitempty"`
	TeamID        *uuid.UUID    `db:"team_id" json:"teamId,omitempty"`
	Status        EntrantStatus `db:"status" json:"status"`
	Seed          *int          `db:"seed" json:"seed,omitempty"`
	DisplayName   string        `db:"display_name" json:"displayName"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
}
