package store

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/bracket-admin/internal/bracket"
	"github.com/AdamBeresnev/bracket-admin/internal/db"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/AdamBeresnev/bracket-admin/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.OpenMemory("file://../../migrations")
	require.NoError(t, err, "Failed to open in-memory DB")
	t.Cleanup(func() { database.Close() })
	return database
}

func createOwner(t *testing.T, database *sqlx.DB) *users.User {
	t.Helper()

	owner := &users.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Username: "Organizer",
		Role:     users.RoleOrganizer,
	}
	require.NoError(t, NewUserStore(database).CreateUser(context.Background(), owner))
	return owner
}

func createTournament(t *testing.T, database *sqlx.DB, store *TournamentStore, ownerID uuid.UUID) *bracket.Tournament {
	t.Helper()

	tournament := &bracket.Tournament{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    "Test Tournament",
		Format:  bracket.SingleElimination,
		Size:    8,
		Status:  bracket.TournamentOpen,
	}

	tx, err := database.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateTournament(context.Background(), tx, tournament))
	require.NoError(t, tx.Commit())
	return tournament
}

func registerUsers(t *testing.T, database *sqlx.DB, store *TournamentStore, tournamentID uuid.UUID, n int) []bracket.Entrant {
	t.Helper()
	ctx := context.Background()

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	var entrants []bracket.Entrant
	for i := 0; i < n; i++ {
		u := &users.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com", Username: "Player", Role: users.RolePlayer}
		_, err := tx.NamedExecContext(ctx, createUserQuery, u)
		require.NoError(t, err)

		e := bracket.Entrant{
			ID:            uuid.New(),
			TournamentID:  tournamentID,
			ParticipantID: utils.Ptr(u.ID),
			Status:        bracket.EntrantPending,
		}
		require.NoError(t, store.CreateRegistration(ctx, tx, &e))
		require.NoError(t, store.ConfirmRegistration(ctx, tx, e.ID, i+1))
		entrants = append(entrants, e)
	}
	require.NoError(t, tx.Commit())
	return entrants
}

func TestCreateTournament(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	owner := createOwner(t, database)

	tournament := createTournament(t, database, store, owner.ID)

	fetched, err := store.GetTournament(context.Background(), database, tournament.ID)
	require.NoError(t, err)

	assert.Equal(t, tournament.ID, fetched.ID)
	assert.Equal(t, tournament.OwnerID, fetched.OwnerID)
	assert.Equal(t, tournament.Name, fetched.Name)
	assert.Equal(t, tournament.Status, fetched.Status)
	assert.Equal(t, tournament.Format, fetched.Format)
	assert.Equal(t, 8, fetched.Size)
	assert.False(t, fetched.IsTeamBased)
	assert.Nil(t, fetched.WinnerID)
	assert.False(t, fetched.CreatedAt.IsZero())

	owned, err := store.GetTournamentsByOwner(context.Background(), owner.ID)
	require.NoError(t, err)
	assert.Len(t, owned, 1)
}

func TestEntrantsAreOrderedBySeed(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()
	owner := createOwner(t, database)
	tournament := createTournament(t, database, store, owner.ID)

	entrants := registerUsers(t, database, store, tournament.ID, 3)

	confirmed := bracket.EntrantConfirmed
	fetched, err := store.GetEntrants(ctx, database, tournament.ID, &confirmed)
	require.NoError(t, err)
	require.Len(t, fetched, 3)
	for i, e := range fetched {
		assert.Equal(t, entrants[i].ID, e.ID)
		assert.Equal(t, i+1, *e.Seed)
		assert.Equal(t, "Player", e.DisplayName)
	}

	count, err := store.CountConfirmed(ctx, database, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	recipients, err := store.GetRecipients(ctx, database, []uuid.UUID{entrants[0].ID, entrants[2].ID})
	require.NoError(t, err)
	assert.Equal(t, *entrants[0].ParticipantID, recipients[entrants[0].ID])
	assert.Equal(t, *entrants[2].ParticipantID, recipients[entrants[2].ID])
}

func TestCreateMatches(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()
	owner := createOwner(t, database)
	tournament := createTournament(t, database, store, owner.ID)
	entrants := registerUsers(t, database, store, tournament.ID, 3)

	ids := []uuid.UUID{entrants[0].ID, entrants[1].ID, entrants[2].ID}
	matches, err := bracket.Build(tournament.ID, ids, tournament.Size)
	require.NoError(t, err)

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateMatches(ctx, tx, matches))
	require.NoError(t, tx.Commit())

	fetched, err := store.GetMatches(ctx, database, tournament.ID)
	require.NoError(t, err)
	require.Len(t, fetched, 3)

	for i := range matches {
		assert.Equal(t, matches[i].ID, fetched[i].ID)
		assert.Equal(t, matches[i].RoundNumber, fetched[i].RoundNumber)
		assert.Equal(t, matches[i].MatchNumber, fetched[i].MatchNumber)
		assert.Equal(t, matches[i].Status, fetched[i].Status)
		assert.True(t, utils.EqualPtr(matches[i].Participant1ID, fetched[i].Participant1ID))
		assert.True(t, utils.EqualPtr(matches[i].Participant2ID, fetched[i].Participant2ID))
		assert.True(t, utils.EqualPtr(matches[i].WinnerID, fetched[i].WinnerID))
		assert.True(t, utils.EqualPtr(matches[i].NextMatchID, fetched[i].NextMatchID))
		assert.True(t, utils.EqualPtr(matches[i].NextMatchSlot, fetched[i].NextMatchSlot))
	}

	count, err := store.CountMatches(ctx, database, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// The same positions cannot be inserted twice
	again, err := bracket.Build(tournament.ID, ids, tournament.Size)
	require.NoError(t, err)
	tx, err = database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	assert.Error(t, store.CreateMatches(ctx, tx, again))
	require.NoError(t, tx.Rollback())
}

func TestUpdateMatch(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()
	owner := createOwner(t, database)
	tournament := createTournament(t, database, store, owner.ID)
	entrants := registerUsers(t, database, store, tournament.ID, 2)

	matches, err := bracket.Build(tournament.ID, []uuid.UUID{entrants[0].ID, entrants[1].ID}, 2)
	require.NoError(t, err)

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, store.CreateMatches(ctx, tx, matches))

	m := matches[0]
	m.WinnerID = utils.Ptr(entrants[1].ID)
	m.Status = bracket.MatchCompleted
	require.NoError(t, store.UpdateMatch(ctx, tx, &m))
	require.NoError(t, store.SetTournamentWinner(ctx, tx, tournament.ID, m.WinnerID, bracket.TournamentCompleted))
	require.NoError(t, tx.Commit())

	fetched, err := store.GetMatch(ctx, database, m.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.MatchCompleted, fetched.Status)
	assert.Equal(t, entrants[1].ID, *fetched.WinnerID)

	fetchedTournament, err := store.GetTournament(ctx, database, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentCompleted, fetchedTournament.Status)
	assert.Equal(t, entrants[1].ID, *fetchedTournament.WinnerID)
}
