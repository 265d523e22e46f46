package service

import (
	"context"
	"testing"

	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeams(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	captain := env.createUser(t, "Captain", users.RolePlayer)
	member := env.createUser(t, "Member", users.RolePlayer)

	team, err := env.teams.CreateTeam(ctx, captain, "Red Team")
	require.NoError(t, err)
	assert.Equal(t, captain.ID, team.CaptainID)

	_, err = env.teams.CreateTeam(ctx, member, "Red Team")
	assert.ErrorIs(t, err, ErrTeamNameTaken)

	assert.ErrorIs(t, env.teams.AddMember(ctx, member, team.ID, member.ID), ErrUnauthorized)
	require.NoError(t, env.teams.AddMember(ctx, captain, team.ID, member.ID))
	assert.ErrorIs(t, env.teams.AddMember(ctx, captain, team.ID, member.ID), ErrAlreadyTeamMember)
	assert.ErrorIs(t, env.teams.AddMember(ctx, captain, team.ID, uuid.New()), ErrUserNotFound)
	assert.ErrorIs(t, env.teams.AddMember(ctx, captain, uuid.New(), member.ID), ErrTeamNotFound)

	members, err := env.teams.Members(ctx, team.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{captain.ID, member.ID}, members)

	mine, err := env.teams.ListForUser(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Red Team", mine[0].Name)
}
