package bracket

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentDraft     TournamentStatus = "draft"
	TournamentOpen      TournamentStatus = "open"
	TournamentClosed    TournamentStatus = "closed"
	TournamentOngoing   TournamentStatus = "ongoing"
	TournamentCompleted TournamentStatus = "completed"
	TournamentCancelled TournamentStatus = "cancelled"
)

type TournamentFormat string

const (
	SingleElimination TournamentFormat = "single_elimination"
	DoubleElimination TournamentFormat = "double_elimination"
	RoundRobin        TournamentFormat = "round_robin"
	Swiss             TournamentFormat = "swiss"
)

func (f TournamentFormat) Valid() bool {
	switch f {
	case SingleElimination, DoubleElimination, RoundRobin, Swiss:
		return true
	}
	return false
}

const (
	MinTournamentSize = 2
	MaxTournamentSize = 128
)

type Tournament struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	OwnerID     uuid.UUID        `db:"owner_id" json:"ownerId"`
	Name        string           `db:"name" json:"name"`
	Format      TournamentFormat `db:"format" json:"format"`
	Size        int              `db:"size" json:"size"`
	IsTeamBased bool             `db:"is_team_based" json:"isTeamBased"`
	Status      TournamentStatus `db:"status" json:"status"`
	WinnerID    *uuid.UUID       `db:"winner_id" json:"winnerId,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updatedAt"`
}

// AcceptsBracket reports whether a bracket may be generated in the current status.
func (t *Tournament) AcceptsBracket() bool {
	return t.Status == TournamentOpen || t.Status == TournamentClosed
}

// HasResults reports whether recorded results may still be reset.
func (t *Tournament) HasResults() bool {
	return t.Status == TournamentOngoing || t.Status == TournamentCompleted
}

// Finished reports whether the tournament is over, either played out or cancelled.
func (t *Tournament) Finished() bool {
	return t.Status == TournamentCompleted || t.Status == TournamentCancelled
}

// ValidSize reports whether n is a power of two inside the supported range.
func ValidSize(n int) bool {
	return n >= MinTournamentSize && n <= MaxTournamentSize && n&(n-1) == 0
}
