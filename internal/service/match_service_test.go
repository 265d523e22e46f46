package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/bracket-admin/internal/apperr"
	"github.com/AdamBeresnev/bracket-admin/internal/bracket"
	"github.com/AdamBeresnev/bracket-admin/internal/notify"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwoEntrantFinalCompletesTournament(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tournament, entrants, matches := env.generated(t, 2)
	require.Len(t, matches, 1)
	final := matches[0]
	assert.Equal(t, 1, final.RoundNumber)
	assert.Nil(t, final.NextMatchID)

	res, err := env.matches.SetMatchWinner(ctx, final.ID, entrants[1].ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCompleted, res.Tournament.Status)

	after := env.tournament(t, tournament.ID)
	assert.Equal(t, bracket.TournamentCompleted, after.Status)
	require.NotNil(t, after.WinnerID)
	assert.Equal(t, entrants[1].ID, *after.WinnerID)

	_, err = env.matches.SetMatchWinner(ctx, final.ID, entrants[0].ID)
	assert.ErrorIs(t, err, bracket.ErrAlreadyCompleted)
}

func TestSetMatchWinnerAdvances(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tournament, entrants, matches := env.generated(t, 4)
	m1, m2, final := findMatch(matches, 1, 1), findMatch(matches, 1, 2), findMatch(matches, 2, 1)

	// Seed 1 v seed 4, seed 2 v seed 3
	assert.Equal(t, entrants[0].ID, *m1.Participant1ID)
	assert.Equal(t, entrants[3].ID, *m1.Participant2ID)

	res, err := env.matches.SetMatchWinner(ctx, m1.ID, entrants[0].ID)
	require.NoError(t, err)
	assert.Len(t, res.Changed, 2)
	assert.Equal(t, bracket.TournamentOngoing, res.Tournament.Status)

	stored := env.match(t, m1.ID)
	assert.Equal(t, bracket.MatchCompleted, stored.Status)
	assert.Equal(t, entrants[0].ID, *stored.WinnerID)

	storedFinal := env.match(t, final.ID)
	assert.Equal(t, entrants[0].ID, *storedFinal.Participant1ID)
	assert.Nil(t, storedFinal.Participant2ID)

	// Order of play is free
	_, err = env.matches.SetMatchWinner(ctx, m2.ID, entrants[2].ID)
	require.NoError(t, err)
	assert.Equal(t, entrants[2].ID, *env.match(t, final.ID).Participant2ID)

	_, err = env.matches.SetTournamentWinner(ctx, m1.ID, entrants[0].ID)
	assert.ErrorIs(t, err, bracket.ErrAlreadyCompleted)

	res, err = env.matches.SetTournamentWinner(ctx, final.ID, entrants[2].ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCompleted, res.Tournament.Status)
	assert.Equal(t, entrants[2].ID, *env.tournament(t, tournament.ID).WinnerID)
}

func TestSetTournamentWinnerRequiresFinal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, entrants, matches := env.generated(t, 4)
	m1 := findMatch(matches, 1, 1)

	_, err := env.matches.SetTournamentWinner(ctx, m1.ID, entrants[0].ID)
	assert.ErrorIs(t, err, bracket.ErrNotFinalMatch)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	assert.Equal(t, bracket.MatchPending, env.match(t, m1.ID).Status)
}

func TestSetMatchWinnerErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, entrants, matches := env.generated(t, 5)
	bye, m2, semi1 := findMatch(matches, 1, 1), findMatch(matches, 1, 2), findMatch(matches, 2, 1)

	testCases := []struct {
		name     string
		matchID  uuid.UUID
		winnerID uuid.UUID
		expected error
		kind     apperr.Kind
	}{
		{"unknown match", uuid.New(), entrants[0].ID, bracket.ErrMatchNotFound, apperr.NotFound},
		{"bye", bye.ID, entrants[0].ID, bracket.ErrAlreadyCompleted, apperr.InvalidState},
		{"waiting for opponent", semi1.ID, entrants[0].ID, bracket.ErrMatchNotReady, apperr.InvalidState},
		{"winner not in match", m2.ID, entrants[0].ID, bracket.ErrInvalidWinner, apperr.InvalidInput},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.matches.SetMatchWinner(ctx, tc.matchID, tc.winnerID)
			assert.ErrorIs(t, err, tc.expected)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
		})
	}

	assert.Equal(t, bracket.MatchPending, env.match(t, m2.ID).Status)
}

func TestSetMatchWinnerRequiresOngoingTournament(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tournament, entrants, matches := env.generated(t, 4)
	_, err := env.tournaments.Cancel(ctx, tournament.ID)
	require.NoError(t, err)

	_, err = env.matches.SetMatchWinner(ctx, findMatch(matches, 1, 1).ID, entrants[0].ID)
	assert.ErrorIs(t, err, ErrNotOngoing)
}

func TestMatchResultNotifications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tournament, entrants, matches := env.generated(t, 2)
	recipients, err := env.store.GetRecipients(ctx, env.db, []uuid.UUID{entrants[0].ID, entrants[1].ID})
	require.NoError(t, err)

	_, err = env.matches.SetMatchWinner(ctx, matches[0].ID, entrants[0].ID)
	require.NoError(t, err)

	kindsFor := func(userID uuid.UUID) []notify.Kind {
		notes, err := env.notifications.List(ctx, userID, false)
		require.NoError(t, err)
		kinds := make([]notify.Kind, 0, len(notes))
		for _, n := range notes {
			kinds = append(kinds, n.Kind)
		}
		return kinds
	}

	assert.Contains(t, kindsFor(recipients[entrants[0].ID]), notify.TournamentWon)
	assert.Contains(t, kindsFor(recipients[entrants[1].ID]), notify.MatchLost)
	assert.Contains(t, kindsFor(tournament.OwnerID), notify.TournamentCompleted)
}

func TestResetMatchCascades(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tournament, entrants, matches := env.generated(t, 4)
	m1, m2, final := findMatch(matches, 1, 1), findMatch(matches, 1, 2), findMatch(matches, 2, 1)

	_, err := env.matches.SetMatchWinner(ctx, m1.ID, entrants[0].ID)
	require.NoError(t, err)
	_, err = env.matches.SetMatchWinner(ctx, m2.ID, entrants[1].ID)
	require.NoError(t, err)
	_, err = env.matches.SetMatchWinner(ctx, final.ID, entrants[0].ID)
	require.NoError(t, err)
	require.Equal(t, bracket.TournamentCompleted, env.tournament(t, tournament.ID).Status)

	res, err := env.matches.ResetMatch(ctx, m1.ID)
	require.NoError(t, err)
	assert.Len(t, res.Changed, 2)
	assert.Equal(t, bracket.TournamentOngoing, res.Tournament.Status)

	storedM1 := env.match(t, m1.ID)
	assert.Equal(t, bracket.MatchPending, storedM1.Status)
	assert.Nil(t, storedM1.WinnerID)
	assert.NotNil(t, storedM1.Participant1ID)
	assert.NotNil(t, storedM1.Participant2ID)

	storedFinal := env.match(t, final.ID)
	assert.Equal(t, bracket.MatchPending, storedFinal.Status)
	assert.Nil(t, storedFinal.WinnerID)
	assert.Nil(t, storedFinal.Participant1ID)
	require.NotNil(t, storedFinal.Participant2ID)
	assert.Equal(t, entrants[1].ID, *storedFinal.Participant2ID)

	after := env.tournament(t, tournament.ID)
	assert.Equal(t, bracket.TournamentOngoing, after.Status)
	assert.Nil(t, after.WinnerID)

	// The other semi-final is untouched and the match can be replayed
	assert.Equal(t, bracket.MatchCompleted, env.match(t, m2.ID).Status)
	_, err = env.matches.SetMatchWinner(ctx, m1.ID, entrants[3].ID)
	require.NoError(t, err)
	assert.Equal(t, entrants[3].ID, *env.match(t, final.ID).Participant1ID)
}

func TestResetMatchEdgeCases(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, _, matches := env.generated(t, 5)

	_, err := env.matches.ResetMatch(ctx, findMatch(matches, 1, 1).ID)
	assert.ErrorIs(t, err, bracket.ErrByeReset)
	assert.Equal(t, apperr.InvalidState, apperr.KindOf(err))

	res, err := env.matches.ResetMatch(ctx, findMatch(matches, 1, 2).ID)
	require.NoError(t, err)
	assert.Empty(t, res.Changed)

	_, err = env.matches.ResetMatch(ctx, uuid.New())
	assert.ErrorIs(t, err, bracket.ErrMatchNotFound)
}

func TestResetAllMatches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tournament, entrants, matches := env.generated(t, 5)
	m2 := findMatch(matches, 1, 2)
	semi1, semi2, final := findMatch(matches, 2, 1), findMatch(matches, 2, 2), findMatch(matches, 3, 1)

	_, err := env.matches.SetMatchWinner(ctx, m2.ID, entrants[4].ID)
	require.NoError(t, err)
	_, err = env.matches.SetMatchWinner(ctx, semi1.ID, entrants[4].ID)
	require.NoError(t, err)
	_, err = env.matches.SetMatchWinner(ctx, semi2.ID, entrants[1].ID)
	require.NoError(t, err)
	_, err = env.matches.SetMatchWinner(ctx, final.ID, entrants[1].ID)
	require.NoError(t, err)

	res, err := env.matches.ResetAllMatches(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentOngoing, res.Tournament.Status)

	stored, err := env.store.GetMatches(ctx, env.db, tournament.ID)
	require.NoError(t, err)

	for _, m := range stored {
		if m.RoundNumber == 1 && m.MatchNumber != 2 {
			assert.Equal(t, bracket.MatchBye, m.Status)
			assert.NotNil(t, m.WinnerID)
			continue
		}
		assert.Equal(t, bracket.MatchPending, m.Status, "round %d match %d", m.RoundNumber, m.MatchNumber)
		assert.Nil(t, m.WinnerID)
	}

	// Slots filled by byes survive, slots filled by play do not
	storedSemi1 := findMatch(stored, 2, 1)
	assert.Equal(t, entrants[0].ID, *storedSemi1.Participant1ID)
	assert.Nil(t, storedSemi1.Participant2ID)

	storedSemi2 := findMatch(stored, 2, 2)
	assert.Equal(t, entrants[1].ID, *storedSemi2.Participant1ID)
	assert.Equal(t, entrants[2].ID, *storedSemi2.Participant2ID)

	storedFinal := findMatch(stored, 3, 1)
	assert.Nil(t, storedFinal.Participant1ID)
	assert.Nil(t, storedFinal.Participant2ID)

	after := env.tournament(t, tournament.ID)
	assert.Equal(t, bracket.TournamentOngoing, after.Status)
	assert.Nil(t, after.WinnerID)

	_, err = env.brackets.Generate(ctx, tournament.ID)
	assert.ErrorIs(t, err, bracket.ErrAlreadyGenerated)
}

func TestResetAllMatchesWithoutBracket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Organizer", users.RoleOrganizer)
	tournament := env.openTournament(t, owner, 4)

	_, err := env.matches.ResetAllMatches(ctx, tournament.ID)
	assert.ErrorIs(t, err, ErrNoBracket)

	_, err = env.matches.ResetAllMatches(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestResetRequiresTournamentInPlay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tournament, _, matches := env.generated(t, 4)
	m1 := findMatch(matches, 1, 1)
	_, err := env.matches.SetMatchWinner(ctx, m1.ID, *m1.Participant1ID)
	require.NoError(t, err)

	_, err = env.tournaments.Cancel(ctx, tournament.ID)
	require.NoError(t, err)

	_, err = env.matches.ResetMatch(ctx, m1.ID)
	assert.ErrorIs(t, err, ErrNotOngoing)
	_, err = env.matches.ResetAllMatches(ctx, tournament.ID)
	assert.ErrorIs(t, err, ErrNotOngoing)

	assert.Equal(t, bracket.MatchCompleted, env.match(t, m1.ID).Status)
	assert.Equal(t, bracket.TournamentCancelled, env.tournament(t, tournament.ID).Status)
}
