package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/bracket-admin/internal/bracket"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/AdamBeresnev/bracket-admin/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproveAssignsSeedsInOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Organizer", users.RoleOrganizer)
	tournament := env.openTournament(t, owner, 4)

	var pending []*bracket.Entrant
	for _, name := range []string{"Ann", "Bob", "Cid"} {
		player := env.createUser(t, name, users.RolePlayer)
		entrant, err := env.registrations.Register(ctx, player, tournament.ID, nil)
		require.NoError(t, err)
		assert.Equal(t, bracket.EntrantPending, entrant.Status)
		assert.Equal(t, name, entrant.DisplayName)
		pending = append(pending, entrant)
	}

	// Confirmation order, not registration order
	for i, idx := range []int{2, 0, 1} {
		approved, err := env.registrations.Approve(ctx, pending[idx].ID)
		require.NoError(t, err)
		require.NotNil(t, approved.Seed)
		assert.Equal(t, i+1, *approved.Seed)
	}

	confirmed, err := env.registrations.ListEntrants(ctx, tournament.ID, utils.Ptr(bracket.EntrantConfirmed))
	require.NoError(t, err)
	require.Len(t, confirmed, 3)
	assert.Equal(t, "Cid", confirmed[0].DisplayName)
	assert.Equal(t, "Ann", confirmed[1].DisplayName)
	assert.Equal(t, "Bob", confirmed[2].DisplayName)

	_, err = env.registrations.Approve(ctx, pending[0].ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestRegisterRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Organizer", users.RoleOrganizer)
	player := env.createUser(t, "Player", users.RolePlayer)

	t.Run("draft tournament", func(t *testing.T) {
		draft, err := env.tournaments.CreateTournament(ctx, owner, TournamentInput{Name: "Draft", Size: 4})
		require.NoError(t, err)

		_, err = env.registrations.Register(ctx, player, draft.ID, nil)
		assert.ErrorIs(t, err, ErrRegistrationClosed)
	})

	t.Run("duplicate", func(t *testing.T) {
		tournament := env.openTournament(t, owner, 4)
		_, err := env.registrations.Register(ctx, player, tournament.ID, nil)
		require.NoError(t, err)

		_, err = env.registrations.Register(ctx, player, tournament.ID, nil)
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})

	t.Run("team for an individual tournament", func(t *testing.T) {
		tournament := env.openTournament(t, owner, 4)
		team, err := env.teams.CreateTeam(ctx, player, "Solo Squad")
		require.NoError(t, err)

		_, err = env.registrations.Register(ctx, player, tournament.ID, &team.ID)
		assert.ErrorIs(t, err, ErrTeamNotAllowed)
	})

	t.Run("team tournament", func(t *testing.T) {
		tournament, err := env.tournaments.CreateTournament(ctx, owner, TournamentInput{Name: "Teams", Size: 4, IsTeamBased: true})
		require.NoError(t, err)
		_, err = env.tournaments.OpenRegistration(ctx, tournament.ID)
		require.NoError(t, err)

		captain := env.createUser(t, "Captain", users.RolePlayer)
		team, err := env.teams.CreateTeam(ctx, captain, "Blue Team")
		require.NoError(t, err)

		_, err = env.registrations.Register(ctx, captain, tournament.ID, nil)
		assert.ErrorIs(t, err, ErrTeamRequired)

		_, err = env.registrations.Register(ctx, player, tournament.ID, &team.ID)
		assert.ErrorIs(t, err, ErrUnauthorized)

		entrant, err := env.registrations.Register(ctx, captain, tournament.ID, &team.ID)
		require.NoError(t, err)
		assert.Equal(t, "Blue Team", entrant.DisplayName)
		assert.Nil(t, entrant.ParticipantID)
	})
}

func TestApproveRespectsCapacity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Organizer", users.RoleOrganizer)
	tournament := env.openTournament(t, owner, 2)
	env.confirmedEntrants(t, tournament.ID, 2)

	late := env.createUser(t, "Late", users.RolePlayer)
	entrant, err := env.registrations.Register(ctx, late, tournament.ID, nil)
	require.NoError(t, err)

	_, err = env.registrations.Approve(ctx, entrant.ID)
	assert.ErrorIs(t, err, ErrTournamentFull)

	rejected, err := env.registrations.Reject(ctx, entrant.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.EntrantRejected, rejected.Status)
}

func TestRegistrationsLockedAfterGeneration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, entrants, _ := env.generated(t, 2)

	_, err := env.registrations.Reject(ctx, entrants[0].ID)
	assert.ErrorIs(t, err, ErrBracketLocked)
}

func TestDecisionsRejectedOnceTournamentIsOver(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.createUser(t, "Organizer", users.RoleOrganizer)
	tournament := env.openTournament(t, owner, 4)
	player := env.createUser(t, "Player", users.RolePlayer)
	entrant, err := env.registrations.Register(ctx, player, tournament.ID, nil)
	require.NoError(t, err)

	_, err = env.tournaments.Cancel(ctx, tournament.ID)
	require.NoError(t, err)

	_, err = env.registrations.Approve(ctx, entrant.ID)
	assert.ErrorIs(t, err, ErrTournamentFinished)
	_, err = env.registrations.Reject(ctx, entrant.ID)
	assert.ErrorIs(t, err, ErrTournamentFinished)

	pending, err := env.registrations.ListEntrants(ctx, tournament.ID, utils.Ptr(bracket.EntrantPending))
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	// A played out tournament is over too.
	completed, entrants, matches := env.generated(t, 2)
	_, err = env.matches.SetTournamentWinner(ctx, matches[0].ID, entrants[0].ID)
	require.NoError(t, err)
	require.Equal(t, bracket.TournamentCompleted, env.tournament(t, completed.ID).Status)

	_, err = env.registrations.Reject(ctx, entrants[1].ID)
	assert.ErrorIs(t, err, ErrTournamentFinished)
}
