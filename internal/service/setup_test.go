package service

import (
	"context"
	"testing"

	"github.com/AdamBeresnev/bracket-admin/internal/bracket"
	"github.com/AdamBeresnev/bracket-admin/internal/db"
	"github.com/AdamBeresnev/bracket-admin/internal/metrics"
	"github.com/AdamBeresnev/bracket-admin/internal/notify"
	"github.com/AdamBeresnev/bracket-admin/internal/store"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db       *sqlx.DB
	store    *store.TournamentStore
	users    *store.UserStore
	mailer   *notify.MemoryMailer
	clock    *clockwork.FakeClock
	registry *prometheus.Registry

	tournaments   *TournamentService
	registrations *RegistrationService
	brackets      *BracketService
	matches       *MatchService
	notifications *NotificationService
	teams         *TeamService
	userService   *UserService
	access        *AccessService
}

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.OpenMemory("file://../../migrations")
	require.NoError(t, err, "Failed to open in-memory DB")
	t.Cleanup(func() { database.Close() })
	return database
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database := setupTestDB(t)
	env := &testEnv{
		db:       database,
		store:    store.NewTournamentStore(database),
		users:    store.NewUserStore(database),
		mailer:   &notify.MemoryMailer{},
		clock:    clockwork.NewFakeClock(),
		registry: prometheus.NewRegistry(),
	}
	m := metrics.New(env.registry)
	renderer := notify.NewRenderer("Bracket Admin", "http://localhost:8080")

	env.notifications = NewNotificationService(database, store.NewNotificationStore(database), env.users, env.mailer, renderer, env.clock)
	env.tournaments = NewTournamentService(database, env.store)
	env.registrations = NewRegistrationService(database, env.store, store.NewTeamStore(database), env.notifications)
	env.brackets = NewBracketService(database, env.store, env.notifications, m)
	env.matches = NewMatchService(database, env.store, env.notifications, m)
	env.teams = NewTeamService(database, store.NewTeamStore(database))
	env.userService = NewUserService(database, env.users)
	env.access = NewAccessService(database, env.store)
	return env
}

func (env *testEnv) createUser(t *testing.T, name string, role users.Role) *users.User {
	t.Helper()

	user := &users.User{
		ID:       uuid.New(),
		Email:    uuid.NewString() + "@example.com",
		Username: name,
		Role:     role,
	}
	require.NoError(t, env.users.CreateUser(context.Background(), user))
	return user
}

// openTournament creates an open single elimination tournament of the given size.
func (env *testEnv) openTournament(t *testing.T, owner *users.User, size int) *bracket.Tournament {
	t.Helper()
	ctx := context.Background()

	tournament, err := env.tournaments.CreateTournament(ctx, owner, TournamentInput{
		Name:   "Spring Cup",
		Format: bracket.SingleElimination,
		Size:   size,
	})
	require.NoError(t, err)
	tournament, err = env.tournaments.OpenRegistration(ctx, tournament.ID)
	require.NoError(t, err)
	return tournament
}

// confirmedEntrants registers and approves n players; the result is in seed order.
func (env *testEnv) confirmedEntrants(t *testing.T, tournamentID uuid.UUID, n int) []bracket.Entrant {
	t.Helper()
	ctx := context.Background()

	entrants := make([]bracket.Entrant, 0, n)
	for i := 0; i < n; i++ {
		player := env.createUser(t, string(rune('A'+i)), users.RolePlayer)
		entrant, err := env.registrations.Register(ctx, player, tournamentID, nil)
		require.NoError(t, err)
		approved, err := env.registrations.Approve(ctx, entrant.ID)
		require.NoError(t, err)
		entrants = append(entrants, *approved)
	}
	return entrants
}

// generated returns a generated bracket with n confirmed entrants.
func (env *testEnv) generated(t *testing.T, n int) (*bracket.Tournament, []bracket.Entrant, []bracket.Match) {
	t.Helper()

	owner := env.createUser(t, "Organizer", users.RoleOrganizer)
	tournament := env.openTournament(t, owner, bracket.Capacity(n))
	entrants := env.confirmedEntrants(t, tournament.ID, n)
	matches, err := env.brackets.Generate(context.Background(), tournament.ID)
	require.NoError(t, err)
	return tournament, entrants, matches
}

func (env *testEnv) match(t *testing.T, id uuid.UUID) *bracket.Match {
	t.Helper()

	m, err := env.store.GetMatch(context.Background(), env.db, id)
	require.NoError(t, err)
	return m
}

func (env *testEnv) tournament(t *testing.T, id uuid.UUID) *bracket.Tournament {
	t.Helper()

	tournament, err := env.store.GetTournament(context.Background(), env.db, id)
	require.NoError(t, err)
	return tournament
}

func findMatch(matches []bracket.Match, round, number int) bracket.Match {
	for _, m := range matches {
		if m.RoundNumber == round && m.MatchNumber == number {
			return m
		}
	}
	return bracket.Match{}
}
