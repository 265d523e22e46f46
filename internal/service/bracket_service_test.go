package service

import (
	"context"
	"sync"
	"testing"

	"github.com/AdamBeresnev/bracket-admin/internal/apperr"
	"github.com/AdamBeresnev/bracket-admin/internal/bracket"
	"github.com/AdamBeresnev/bracket-admin/internal/notify"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFiveEntrants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tournament, entrants, matches := env.generated(t, 5)
	require.Len(t, matches, 7)

	// Seeds 1, 2 and 3 get byes, seed 4 meets seed 5
	m1 := findMatch(matches, 1, 1)
	assert.Equal(t, bracket.MatchBye, m1.Status)
	assert.Equal(t, entrants[0].ID, *m1.WinnerID)

	m2 := findMatch(matches, 1, 2)
	assert.Equal(t, bracket.MatchPending, m2.Status)
	assert.Equal(t, entrants[3].ID, *m2.Participant1ID)
	assert.Equal(t, entrants[4].ID, *m2.Participant2ID)

	assert.Equal(t, bracket.MatchBye, findMatch(matches, 1, 3).Status)
	assert.Equal(t, bracket.MatchBye, findMatch(matches, 1, 4).Status)

	semi1 := findMatch(matches, 2, 1)
	assert.Equal(t, entrants[0].ID, *semi1.Participant1ID)
	assert.Nil(t, semi1.Participant2ID)

	semi2 := findMatch(matches, 2, 2)
	assert.Equal(t, entrants[1].ID, *semi2.Participant1ID)
	assert.Equal(t, entrants[2].ID, *semi2.Participant2ID)

	final := findMatch(matches, 3, 1)
	assert.Nil(t, final.NextMatchID)

	stored, err := env.store.GetMatches(ctx, env.db, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 7)
	tree, err := bracket.NewTree(stored)
	require.NoError(t, err)
	require.NoError(t, tree.Validate())

	assert.Equal(t, bracket.TournamentOngoing, env.tournament(t, tournament.ID).Status)
	count, err := testutil.GatherAndCount(env.registry, "bracket_generated_matches")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGenerateNotifiesEntrants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, entrants, _ := env.generated(t, 2)

	recipients, err := env.store.GetRecipients(ctx, env.db, []uuid.UUID{entrants[0].ID})
	require.NoError(t, err)

	notes, err := env.notifications.List(ctx, recipients[entrants[0].ID], false)
	require.NoError(t, err)

	kinds := make([]notify.Kind, 0, len(notes))
	for _, n := range notes {
		kinds = append(kinds, n.Kind)
	}
	assert.Contains(t, kinds, notify.BracketGenerated)
	assert.Contains(t, kinds, notify.RegistrationApproved)
	assert.NotEmpty(t, env.mailer.Sent())
}

func TestGenerateTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tournament, _, _ := env.generated(t, 4)

	_, err := env.brackets.Generate(ctx, tournament.ID)
	assert.ErrorIs(t, err, bracket.ErrAlreadyGenerated)

	count, err := env.store.CountMatches(ctx, env.db, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestGenerateConcurrently(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Organizer", users.RoleOrganizer)
	tournament := env.openTournament(t, owner, 8)
	env.confirmedEntrants(t, tournament.ID, 6)

	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.brackets.Generate(ctx, tournament.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, bracket.ErrAlreadyGenerated)
	}
	assert.Equal(t, 1, succeeded)

	count, err := env.store.CountMatches(ctx, env.db, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestGeneratePreconditions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.createUser(t, "Organizer", users.RoleOrganizer)

	t.Run("unknown tournament", func(t *testing.T) {
		_, err := env.brackets.Generate(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrTournamentNotFound)
		assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
	})

	t.Run("one entrant", func(t *testing.T) {
		tournament := env.openTournament(t, owner, 4)
		env.confirmedEntrants(t, tournament.ID, 1)

		_, err := env.brackets.Generate(ctx, tournament.ID)
		assert.ErrorIs(t, err, bracket.ErrInsufficientParticipants)
		assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
		assert.Equal(t, bracket.TournamentOpen, env.tournament(t, tournament.ID).Status)
	})

	t.Run("pending registrations do not count", func(t *testing.T) {
		tournament := env.openTournament(t, owner, 4)
		for i := 0; i < 3; i++ {
			player := env.createUser(t, "Pending", users.RolePlayer)
			_, err := env.registrations.Register(ctx, player, tournament.ID, nil)
			require.NoError(t, err)
		}

		_, err := env.brackets.Generate(ctx, tournament.ID)
		assert.ErrorIs(t, err, bracket.ErrInsufficientParticipants)
	})

	t.Run("draft tournament", func(t *testing.T) {
		tournament, err := env.tournaments.CreateTournament(ctx, owner, TournamentInput{Name: "Draft", Size: 4})
		require.NoError(t, err)

		_, err = env.brackets.Generate(ctx, tournament.ID)
		assert.ErrorIs(t, err, ErrNotAcceptingBracket)
	})

	t.Run("unsupported format", func(t *testing.T) {
		tournament, err := env.tournaments.CreateTournament(ctx, owner, TournamentInput{Name: "Swiss", Format: bracket.Swiss, Size: 4})
		require.NoError(t, err)

		_, err = env.brackets.Generate(ctx, tournament.ID)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("closed registration still generates", func(t *testing.T) {
		tournament := env.openTournament(t, owner, 4)
		env.confirmedEntrants(t, tournament.ID, 3)
		_, err := env.tournaments.CloseRegistration(ctx, tournament.ID)
		require.NoError(t, err)

		matches, err := env.brackets.Generate(ctx, tournament.ID)
		require.NoError(t, err)
		assert.Len(t, matches, 3)
	})
}

func TestGetBracket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tournament, entrants, matches := env.generated(t, 5)

	data, err := env.brackets.GetBracket(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, tournament.ID, data.Tournament.ID)
	assert.Len(t, data.Entrants, 5)
	assert.Len(t, data.Matches, 7)

	// Round 1 match 2 is the first one with two entrants
	require.NotNil(t, data.NextMatchID)
	assert.Equal(t, findMatch(matches, 1, 2).ID, *data.NextMatchID)

	names := data.EntrantNames()
	assert.Equal(t, entrants[0].DisplayName, names[entrants[0].ID])

	_, err = env.brackets.GetBracket(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestDeleteBracketAllowsRegeneration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tournament, _, matches := env.generated(t, 2)
	_, err := env.matches.SetMatchWinner(ctx, matches[0].ID, *matches[0].Participant1ID)
	require.NoError(t, err)

	require.NoError(t, env.brackets.DeleteBracket(ctx, tournament.ID))

	after := env.tournament(t, tournament.ID)
	assert.Equal(t, bracket.TournamentClosed, after.Status)
	assert.Nil(t, after.WinnerID)

	regenerated, err := env.brackets.Generate(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, regenerated, 1)

	require.NoError(t, env.brackets.DeleteBracket(ctx, tournament.ID))
	assert.ErrorIs(t, env.brackets.DeleteBracket(ctx, tournament.ID), ErrNoBracket)
}

func TestDeleteBracketKeepsCancelledTournament(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tournament, _, _ := env.generated(t, 4)
	_, err := env.tournaments.Cancel(ctx, tournament.ID)
	require.NoError(t, err)

	err = env.brackets.DeleteBracket(ctx, tournament.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, bracket.TournamentCancelled, env.tournament(t, tournament.ID).Status)
	count, err := env.store.CountMatches(ctx, env.db, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
