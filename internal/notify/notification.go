package notify

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	RegistrationApproved Kind = "registration_approved"
	RegistrationRejected Kind = "registration_rejected"
	BracketGenerated     Kind = "bracket_generated"
	MatchWon             Kind = "match_won"
	MatchLost            Kind = "match_lost"
	MatchReset           Kind = "match_reset"
	TournamentWon        Kind = "tournament_won"
	TournamentCompleted  Kind = "tournament_completed"
)

type Notification struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	UserID       uuid.UUID  `db:"user_id" json:"userId"`
	TournamentID *uuid.UUID `db:"tournament_id" json:"tournamentId,omitempty"`
	Kind         Kind       `db:"kind" json:"kind"`
	Message      string     `db:"message" json:"message"`
	ReadAt       *time.Time `db:"read_at" json:"readAt,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}
