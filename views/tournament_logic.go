package views

import (
	"fmt"

	"github.com/AdamBeresnev/bracket-admin/internal/bracket"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/google/uuid"
)

type TournamentPageData struct {
	Tournament    *bracket.Tournament
	Bracket       BracketData
	Registrations []bracket.Entrant
	// Teams the signed-in user captains, offered when registering for a team tournament.
	Teams     []users.Team
	CanManage bool
}

type ManageAction struct {
	Path  string
	Label string
}

// ManageActions lists the organizer buttons available in the tournament's status.
func ManageActions(t *bracket.Tournament) []ManageAction {
	base := TournamentURL(t.ID)
	switch t.Status {
	case bracket.TournamentDraft:
		return []ManageAction{{base + "/open", "Open registration"}}
	case bracket.TournamentOpen:
		return []ManageAction{{base + "/close", "Close registration"}, {base + "/bracket", "Generate bracket"}}
	case bracket.TournamentClosed:
		return []ManageAction{{base + "/open", "Reopen registration"}, {base + "/bracket", "Generate bracket"}}
	case bracket.TournamentOngoing, bracket.TournamentCompleted:
		return []ManageAction{{base + "/reset", "Reset all results"}}
	}
	return nil
}

func TournamentFormats() []bracket.TournamentFormat {
	return []bracket.TournamentFormat{bracket.SingleElimination, bracket.DoubleElimination, bracket.RoundRobin, bracket.Swiss}
}

// BracketSizes are the capacities offered when creating a tournament.
func BracketSizes() []int {
	var sizes []int
	for size := bracket.MinTournamentSize; size <= bracket.MaxTournamentSize; size *= 2 {
		sizes = append(sizes, size)
	}
	return sizes
}

type Round struct {
	Number  int
	Label   string
	Matches []*bracket.Match
}

type BracketData struct {
	Rounds      []Round
	EntrantMap  map[uuid.UUID]bracket.Entrant
	Champion    *bracket.Entrant
	NextMatchID *uuid.UUID
}

func PrepareBracketData(entrants []bracket.Entrant, matches []bracket.Match, winnerID, nextMatchID *uuid.UUID) (BracketData, error) {
	entrantMap := make(map[uuid.UUID]bracket.Entrant, len(entrants))
	for _, e := range entrants {
		entrantMap[e.ID] = e
	}

	data := BracketData{EntrantMap: entrantMap, NextMatchID: nextMatchID}
	if winnerID != nil {
		if champion, ok := entrantMap[*winnerID]; ok {
			data.Champion = &champion
		}
	}
	if len(matches) == 0 {
		return data, nil
	}

	tree, err := bracket.NewTree(matches)
	if err != nil {
		return data, err
	}
	for i, round := range tree.Rounds() {
		data.Rounds = append(data.Rounds, Round{
			Number:  i + 1,
			Label:   RoundLabel(i+1, tree.FinalRound()),
			Matches: round,
		})
	}
	return data, nil
}

// RoundLabel names a round counting back from the final.
func RoundLabel(round, total int) string {
	switch total - round {
	case 0:
		return "Final"
	case 1:
		return "Semifinals"
	case 2:
		return "Quarterfinals"
	}
	return fmt.Sprintf("Round %d", round)
}

// IsNext marks the match the organizer should decide next.
func (d BracketData) IsNext(m *bracket.Match) bool {
	return d.NextMatchID != nil && *d.NextMatchID == m.ID
}

// SlotName is the entrant's name, "BYE" for the empty side of a bye and
// "TBD" for a slot still waiting on an earlier match.
func (d BracketData) SlotName(m *bracket.Match, slot int) string {
	id := m.Slot(slot)
	if id == nil {
		if m.Status == bracket.MatchBye {
			return "BYE"
		}
		return "TBD"
	}
	if e, ok := d.EntrantMap[*id]; ok {
		return e.DisplayName
	}
	return "Unknown"
}
