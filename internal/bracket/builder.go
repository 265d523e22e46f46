package bracket

import (
	"math/bits"
	"sort"

	"github.com/AdamBeresnev/bracket-admin/internal/utils"
	"github.com/google/uuid"
)

// Capacity gets the nearest power of 2 while rounding up, so with input 5 it returns 8 and so on
func Capacity(count int) int {
	if count <= 1 {
		return count
	}
	return 1 << bits.Len(uint(count-1))
}

// RoundCount is log2 of a power-of-two capacity.
func RoundCount(capacity int) int {
	if capacity <= 1 {
		return 0
	}
	return bits.Len(uint(capacity)) - 1
}

// SeedPairs returns the round 1 pairings as 0-based seed indexes. The top seed
// meets the bottom seed and the bracket halves are folded recursively, so seeds
// beyond the entrant count (byes) always face the highest seeds.
func SeedPairs(capacity int) [][2]int {
	if capacity < 2 {
		return [][2]int{}
	}

	order := []int{0}
	for len(order) < capacity {
		next := make([]int, 0, len(order)*2)
		currentCount := len(order) * 2

		for _, seed := range order {
			next = append(next, seed, (currentCount-1)-seed)
		}
		order = next
	}

	pairs := make([][2]int, 0, capacity/2)
	for i := 0; i < len(order); i += 2 {
		pairs = append(pairs, [2]int{order[i], order[i+1]})
	}
	return pairs
}

// Build creates every match of a single elimination bracket for the entrants,
// which must already be in seed order. Round 1 byes are resolved and their
// occupants propagated into round 2. The result is ordered by round then
// match number.
func Build(tournamentID uuid.UUID, entrants []uuid.UUID, size int) ([]Match, error) {
	if len(entrants) < 2 {
		return nil, ErrInsufficientParticipants
	}
	if size > 0 && len(entrants) > size {
		return nil, ErrTooManyParticipants
	}

	capacity := Capacity(len(entrants))
	totalRounds := RoundCount(capacity)

	matches := make([]Match, 0, capacity-1)
	nextRoundMatchIDs := make(map[int]uuid.UUID)

	// Significantly easier to start from the last round and work backwards
	for r := totalRounds; r >= 1; r-- {
		matchesInRound := 1 << (totalRounds - r)
		currentRoundMatchIDs := make(map[int]uuid.UUID, matchesInRound)

		for i := 0; i < matchesInRound; i++ {
			number := i + 1
			m := Match{
				ID:           uuid.New(),
				TournamentID: tournamentID,
				RoundNumber:  r,
				MatchNumber:  number,
				Status:       MatchPending,
			}

			if r < totalRounds {
				parentID := nextRoundMatchIDs[(number+1)/2]
				m.NextMatchID = &parentID
				if number%2 != 0 {
					m.NextMatchSlot = utils.Ptr(1)
				} else {
					m.NextMatchSlot = utils.Ptr(2)
				}
			}

			matches = append(matches, m)
			currentRoundMatchIDs[number] = m.ID
		}
		nextRoundMatchIDs = currentRoundMatchIDs
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].RoundNumber != matches[j].RoundNumber {
			return matches[i].RoundNumber < matches[j].RoundNumber
		}
		return matches[i].MatchNumber < matches[j].MatchNumber
	})

	byID := make(map[uuid.UUID]*Match, len(matches))
	for i := range matches {
		byID[matches[i].ID] = &matches[i]
	}

	for i, pair := range SeedPairs(capacity) {
		m := &matches[i]
		if pair[0] < len(entrants) {
			m.Participant1ID = utils.Ptr(entrants[pair[0]])
		}
		if pair[1] < len(entrants) {
			m.Participant2ID = utils.Ptr(entrants[pair[1]])
		}

		switch {
		case m.Participant1ID == nil && m.Participant2ID == nil:
			return nil, ErrDoubleBye
		case m.Participant1ID != nil && m.Participant2ID != nil:
			continue
		}

		occupant := m.Participant1ID
		if occupant == nil {
			occupant = m.Participant2ID
		}
		m.Status = MatchBye
		m.WinnerID = utils.Ptr(*occupant)

		if m.NextMatchID != nil && m.NextMatchSlot != nil {
			next, ok := byID[*m.NextMatchID]
			if !ok {
				return nil, ErrMalformedBracket
			}
			next.SetSlot(*m.NextMatchSlot, utils.Ptr(*occupant))
		}
	}

	return matches, nil
}
