package bracket

import (
	"testing"

	"github.com/AdamBeresnev/bracket-admin/internal/apperr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree(t *testing.T, n int) (*Tree, []uuid.UUID) {
	t.Helper()

	entrants := newEntrants(n)
	matches, err := Build(uuid.New(), entrants, Capacity(n))
	require.NoError(t, err)
	tree, err := NewTree(matches)
	require.NoError(t, err)
	return tree, entrants
}

func TestSetWinnerPropagates(t *testing.T) {
	tree, entrants := buildTree(t, 4)
	r1 := tree.Rounds()[0]
	final := tree.Final()

	// Round 1: seed 1 v seed 4, seed 2 v seed 3
	out, err := tree.SetWinner(r1[0].ID, entrants[0])
	require.NoError(t, err)
	assert.Nil(t, out.Champion)
	assert.Len(t, out.Changed, 2)

	assert.Equal(t, MatchCompleted, r1[0].Status)
	assert.Equal(t, entrants[0], *r1[0].WinnerID)
	assert.Equal(t, entrants[0], *final.Participant1ID)
	assert.Nil(t, final.Participant2ID)

	out, err = tree.SetWinner(r1[1].ID, entrants[2])
	require.NoError(t, err)
	assert.Equal(t, entrants[2], *final.Participant2ID)

	out, err = tree.SetWinner(final.ID, entrants[2])
	require.NoError(t, err)
	require.NotNil(t, out.Champion)
	assert.Equal(t, entrants[2], *out.Champion)
	assert.Equal(t, MatchCompleted, final.Status)
	require.NoError(t, tree.Validate())
}

func TestSetWinnerErrors(t *testing.T) {
	tree, entrants := buildTree(t, 5)
	r1, r2 := tree.Rounds()[0], tree.Rounds()[1]

	testCases := []struct {
		name     string
		matchID  uuid.UUID
		winnerID uuid.UUID
		expected error
		kind     apperr.Kind
	}{
		{"unknown match", uuid.New(), entrants[0], ErrMatchNotFound, apperr.NotFound},
		{"bye match", r1[0].ID, entrants[0], ErrAlreadyCompleted, apperr.InvalidState},
		{"waiting for opponent", r2[0].ID, entrants[0], ErrMatchNotReady, apperr.InvalidState},
		{"winner not in match", r1[1].ID, entrants[0], ErrInvalidWinner, apperr.InvalidInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tree.SetWinner(tc.matchID, tc.winnerID)
			assert.ErrorIs(t, err, tc.expected)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
		})
	}

	_, err := tree.SetWinner(r1[1].ID, entrants[3])
	require.NoError(t, err)
	_, err = tree.SetWinner(r1[1].ID, entrants[4])
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestSetWinnerTwoEntrantsCrownsChampion(t *testing.T) {
	tree, entrants := buildTree(t, 2)
	final := tree.Final()
	require.True(t, tree.IsFinal(final))

	out, err := tree.SetWinner(final.ID, entrants[1])
	require.NoError(t, err)
	require.NotNil(t, out.Champion)
	assert.Equal(t, entrants[1], *out.Champion)
}

func TestResetMatchCascades(t *testing.T) {
	tree, entrants := buildTree(t, 4)
	r1 := tree.Rounds()[0]
	final := tree.Final()

	_, err := tree.SetWinner(r1[0].ID, entrants[0])
	require.NoError(t, err)
	_, err = tree.SetWinner(r1[1].ID, entrants[1])
	require.NoError(t, err)
	_, err = tree.SetWinner(final.ID, entrants[0])
	require.NoError(t, err)

	out, err := tree.ResetMatch(r1[0].ID)
	require.NoError(t, err)
	assert.True(t, out.ChampionCleared)
	assert.ElementsMatch(t, []*Match{r1[0], final}, out.Changed)

	assert.Equal(t, MatchPending, r1[0].Status)
	assert.Nil(t, r1[0].WinnerID)

	// The final no longer references the entrant whose result was undone
	assert.Equal(t, MatchPending, final.Status)
	assert.Nil(t, final.WinnerID)
	assert.Nil(t, final.Participant1ID)
	assert.Equal(t, entrants[1], *final.Participant2ID)

	// The other semifinal is untouched
	assert.Equal(t, MatchCompleted, r1[1].Status)
	require.NoError(t, tree.Validate())
}

func TestResetMatchWithoutDownstreamResult(t *testing.T) {
	tree, entrants := buildTree(t, 4)
	r1 := tree.Rounds()[0]
	final := tree.Final()

	_, err := tree.SetWinner(r1[0].ID, entrants[3])
	require.NoError(t, err)

	out, err := tree.ResetMatch(r1[0].ID)
	require.NoError(t, err)
	assert.False(t, out.ChampionCleared)
	assert.Nil(t, final.Participant1ID)

	// Resetting again is a no-op
	out, err = tree.ResetMatch(r1[0].ID)
	require.NoError(t, err)
	assert.Empty(t, out.Changed)
}

func TestResetMatchRejectsBye(t *testing.T) {
	tree, _ := buildTree(t, 3)
	r1 := tree.Rounds()[0]
	require.Equal(t, MatchBye, r1[0].Status)

	_, err := tree.ResetMatch(r1[0].ID)
	assert.ErrorIs(t, err, ErrByeReset)

	_, err = tree.ResetMatch(uuid.New())
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestResetAllRestoresGeneratedShape(t *testing.T) {
	tree, entrants := buildTree(t, 5)
	rounds := tree.Rounds()
	r1, r2 := rounds[0], rounds[1]
	final := tree.Final()
	a, b, c, d := entrants[0], entrants[1], entrants[2], entrants[3]

	_, err := tree.SetWinner(r1[1].ID, d)
	require.NoError(t, err)
	_, err = tree.SetWinner(r2[0].ID, a)
	require.NoError(t, err)
	_, err = tree.SetWinner(r2[1].ID, c)
	require.NoError(t, err)
	out, err := tree.SetWinner(final.ID, c)
	require.NoError(t, err)
	require.NotNil(t, out.Champion)

	out = tree.ResetAll()
	assert.True(t, out.ChampionCleared)

	for _, m := range r1 {
		if m.ID == r1[1].ID {
			assert.Equal(t, MatchPending, m.Status)
			assert.Nil(t, m.WinnerID)
		} else {
			assert.Equal(t, MatchBye, m.Status)
			assert.NotNil(t, m.WinnerID)
		}
	}

	assert.Equal(t, a, *r2[0].Participant1ID)
	assert.Nil(t, r2[0].Participant2ID)
	assert.Equal(t, b, *r2[1].Participant1ID)
	assert.Equal(t, c, *r2[1].Participant2ID)
	for _, m := range r2 {
		assert.Equal(t, MatchPending, m.Status)
		assert.Nil(t, m.WinnerID)
	}

	assert.Nil(t, final.Participant1ID)
	assert.Nil(t, final.Participant2ID)
	assert.Equal(t, MatchPending, final.Status)
	require.NoError(t, tree.Validate())
}

func TestNewTreeRejectsDoubleLink(t *testing.T) {
	matches, err := Build(uuid.New(), newEntrants(4), 4)
	require.NoError(t, err)

	// Point both semifinals at slot 1
	slot := 1
	matches[1].NextMatchSlot = &slot
	matches[0].NextMatchSlot = &slot

	_, err = NewTree(matches)
	assert.ErrorIs(t, err, ErrMalformedBracket)
}
