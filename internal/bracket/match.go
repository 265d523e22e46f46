package bracket

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchBye       MatchStatus = "bye"
	MatchCompleted MatchStatus = "completed"
)

type Match struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournamentId"`

	// Position in the bracket for reconstructing the view
	RoundNumber int `db:"round_number" json:"roundNumber"`
	MatchNumber int `db:"match_number" json:"matchNumber"`

	Participant1ID *uuid.UUID  `db:"participant1_id" json:"participant1Id,omitempty"`
	Participant2ID *uuid.UUID  `db:"participant2_id" json:"participant2Id,omitempty"`
	WinnerID       *uuid.UUID  `db:"winner_id" json:"winnerId,omitempty"`
	Status         MatchStatus `db:"status" json:"status"`

	NextMatchID   *uuid.UUID `db:"next_match_id" json:"nextMatchId,omitempty"`
	NextMatchSlot *int       `db:"next_match_slot" json:"nextMatchSlot,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (m *Match) Slot(slot int) *uuid.UUID {
	switch slot {
	case 1:
		return m.Participant1ID
	case 2:
		return m.Participant2ID
	}
	return nil
}

func (m *Match) SetSlot(slot int, id *uuid.UUID) {
	switch slot {
	case 1:
		m.Participant1ID = id
	case 2:
		m.Participant2ID = id
	}
}

// SlotOf returns 1 or 2 for the slot holding id, or 0.
func (m *Match) SlotOf(id uuid.UUID) int {
	if m.Participant1ID != nil && *m.Participant1ID == id {
		return 1
	}
	if m.Participant2ID != nil && *m.Participant2ID == id {
		return 2
	}
	return 0
}

// Ready reports whether both slots are filled and no result is recorded.
func (m *Match) Ready() bool {
	return m.Status == MatchPending && m.Participant1ID != nil && m.Participant2ID != nil
}

// Decided reports whether the match has a winner, either played or by bye.
func (m *Match) Decided() bool {
	return m.Status == MatchCompleted || m.Status == MatchBye
}

func (m *Match) IsWinner(slot int) bool {
	id := m.Slot(slot)
	return m.WinnerID != nil && id != nil && *id == *m.WinnerID
}

func (m *Match) IsLoser(slot int) bool {
	return m.Status == MatchCompleted && m.Slot(slot) != nil && !m.IsWinner(slot)
}
