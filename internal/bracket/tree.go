package bracket

import (
	"sort"

	"github.com/AdamBeresnev/bracket-admin/internal/utils"
	"github.com/google/uuid"
)

// Tree is an in-memory view of one tournament's matches. Mutating methods
// change the matches in place and report which ones need to be persisted.
type Tree struct {
	matches    []*Match
	byID       map[uuid.UUID]*Match
	feeders    map[uuid.UUID][2]*Match
	finalRound int
}

// Outcome lists the matches changed by a mutation and its effect on the champion.
type Outcome struct {
	Changed         []*Match
	Champion        *uuid.UUID
	ChampionCleared bool
}

func (o *Outcome) touch(m *Match) {
	for _, c := range o.Changed {
		if c == m {
			return
		}
	}
	o.Changed = append(o.Changed, m)
}

func NewTree(matches []Match) (*Tree, error) {
	t := &Tree{
		matches: make([]*Match, 0, len(matches)),
		byID:    make(map[uuid.UUID]*Match, len(matches)),
		feeders: make(map[uuid.UUID][2]*Match),
	}
	for i := range matches {
		m := &matches[i]
		t.matches = append(t.matches, m)
		t.byID[m.ID] = m
		if m.RoundNumber > t.finalRound {
			t.finalRound = m.RoundNumber
		}
	}

	sort.SliceStable(t.matches, func(i, j int) bool {
		if t.matches[i].RoundNumber != t.matches[j].RoundNumber {
			return t.matches[i].RoundNumber < t.matches[j].RoundNumber
		}
		return t.matches[i].MatchNumber < t.matches[j].MatchNumber
	})

	for _, m := range t.matches {
		if m.NextMatchID == nil {
			continue
		}
		if m.NextMatchSlot == nil || (*m.NextMatchSlot != 1 && *m.NextMatchSlot != 2) {
			return nil, ErrMalformedBracket
		}
		f := t.feeders[*m.NextMatchID]
		if f[*m.NextMatchSlot-1] != nil {
			return nil, ErrMalformedBracket
		}
		f[*m.NextMatchSlot-1] = m
		t.feeders[*m.NextMatchID] = f
	}

	return t, nil
}

func (t *Tree) Matches() []*Match {
	return t.matches
}

func (t *Tree) Len() int {
	return len(t.matches)
}

func (t *Tree) Match(id uuid.UUID) (*Match, bool) {
	m, ok := t.byID[id]
	return m, ok
}

func (t *Tree) FinalRound() int {
	return t.finalRound
}

func (t *Tree) IsFinal(m *Match) bool {
	return m.RoundNumber == t.finalRound
}

// Final returns the single match of the last round, or nil for an empty tree.
func (t *Tree) Final() *Match {
	if len(t.matches) == 0 {
		return nil
	}
	return t.matches[len(t.matches)-1]
}

// Feeder returns the match whose winner fills the given slot of m.
func (t *Tree) Feeder(m *Match, slot int) *Match {
	if slot != 1 && slot != 2 {
		return nil
	}
	return t.feeders[m.ID][slot-1]
}

// Rounds groups matches by round, both ascending.
func (t *Tree) Rounds() [][]*Match {
	rounds := make([][]*Match, t.finalRound)
	for _, m := range t.matches {
		if m.RoundNumber < 1 {
			continue
		}
		rounds[m.RoundNumber-1] = append(rounds[m.RoundNumber-1], m)
	}
	return rounds
}

// Validate checks the linking and winner invariants of a single elimination tree.
func (t *Tree) Validate() error {
	final := t.Final()
	if final == nil {
		return nil
	}
	if len(t.Rounds()[t.finalRound-1]) != 1 {
		return ErrMalformedBracket
	}

	for _, m := range t.matches {
		if m.WinnerID != nil && m.SlotOf(*m.WinnerID) == 0 {
			return ErrMalformedBracket
		}
		if t.IsFinal(m) {
			if m.NextMatchID != nil {
				return ErrMalformedBracket
			}
		} else {
			next, ok := t.byID[utils.OrZero(m.NextMatchID)]
			if !ok || next.RoundNumber != m.RoundNumber+1 {
				return ErrMalformedBracket
			}
		}
		if m.RoundNumber > 1 && (t.Feeder(m, 1) == nil || t.Feeder(m, 2) == nil) {
			return ErrMalformedBracket
		}
	}
	return nil
}

// SetWinner records winnerID as the winner of the match and propagates it into
// the linked next match. Recording the final's winner yields the champion.
func (t *Tree) SetWinner(matchID, winnerID uuid.UUID) (*Outcome, error) {
	m, ok := t.byID[matchID]
	if !ok {
		return nil, ErrMatchNotFound
	}
	if m.Decided() {
		return nil, ErrAlreadyCompleted
	}
	if m.Participant1ID == nil || m.Participant2ID == nil {
		return nil, ErrMatchNotReady
	}
	if m.SlotOf(winnerID) == 0 {
		return nil, ErrInvalidWinner
	}

	out := &Outcome{}

	if t.IsFinal(m) {
		m.WinnerID = utils.Ptr(winnerID)
		m.Status = MatchCompleted
		out.touch(m)
		out.Champion = utils.Ptr(winnerID)
		return out, nil
	}

	if m.NextMatchID == nil || m.NextMatchSlot == nil {
		return nil, ErrMalformedBracket
	}
	next, ok := t.byID[*m.NextMatchID]
	if !ok || next.Decided() {
		return nil, ErrMalformedBracket
	}
	if occupant := next.Slot(*m.NextMatchSlot); occupant != nil && *occupant != winnerID {
		return nil, ErrMalformedBracket
	}

	m.WinnerID = utils.Ptr(winnerID)
	m.Status = MatchCompleted
	next.SetSlot(*m.NextMatchSlot, utils.Ptr(winnerID))
	out.touch(m)
	out.touch(next)
	return out, nil
}

// ResetMatch clears the result of a match. Any downstream match that already
// received its winner is reset first, so no slot keeps an entrant that is no
// longer backed by an upstream result.
func (t *Tree) ResetMatch(matchID uuid.UUID) (*Outcome, error) {
	m, ok := t.byID[matchID]
	if !ok {
		return nil, ErrMatchNotFound
	}
	out := &Outcome{}
	if err := t.reset(m, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Tree) reset(m *Match, out *Outcome) error {
	switch m.Status {
	case MatchPending:
		return nil
	case MatchBye:
		return ErrByeReset
	}

	if t.IsFinal(m) {
		out.ChampionCleared = true
	} else {
		if m.NextMatchID == nil || m.NextMatchSlot == nil {
			return ErrMalformedBracket
		}
		next, ok := t.byID[*m.NextMatchID]
		if !ok {
			return ErrMalformedBracket
		}
		if next.Status == MatchCompleted {
			if err := t.reset(next, out); err != nil {
				return err
			}
		}
		next.SetSlot(*m.NextMatchSlot, nil)
		out.touch(next)
	}

	m.WinnerID = nil
	m.Status = MatchPending
	out.touch(m)
	return nil
}

// ResetAll restores the tree to its just-generated shape: byes keep their
// result and their propagated occupant, everything else is cleared.
func (t *Tree) ResetAll() *Outcome {
	out := &Outcome{}
	for _, m := range t.matches {
		if m.Status == MatchBye {
			continue
		}
		changed := m.Status != MatchPending || m.WinnerID != nil

		if m.RoundNumber > 1 {
			for slot := 1; slot <= 2; slot++ {
				feeder := t.Feeder(m, slot)
				if feeder != nil && feeder.Status == MatchBye {
					continue
				}
				if m.Slot(slot) != nil {
					m.SetSlot(slot, nil)
					changed = true
				}
			}
		}

		if m.Status == MatchCompleted && t.IsFinal(m) {
			out.ChampionCleared = true
		}
		m.WinnerID = nil
		m.Status = MatchPending
		if changed {
			out.touch(m)
		}
	}
	return out
}
