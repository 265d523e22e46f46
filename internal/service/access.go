package service

import (
	"context"

	"github.com/AdamBeresnev/bracket-admin/internal/bracket"
	"github.com/AdamBeresnev/bracket-admin/internal/store"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AccessService answers "may this user manage that tournament" before any
// mutating call. The bracket services themselves do not check callers.
type AccessService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewAccessService(db *sqlx.DB, store *store.TournamentStore) *AccessService {
	return &AccessService{db: db, store: store}
}

func (s *AccessService) RequireOrganizer(actor *users.User) error {
	if actor == nil {
		return ErrNotSignedIn
	}
	if !actor.CanOrganize() {
		return ErrUnauthorized
	}
	return nil
}

func (s *AccessService) RequireAdmin(actor *users.User) error {
	if actor == nil {
		return ErrNotSignedIn
	}
	if !actor.IsAdmin() {
		return ErrUnauthorized
	}
	return nil
}

// RequireManager passes for the tournament's owner and for admins.
func (s *AccessService) RequireManager(ctx context.Context, actor *users.User, tournamentID uuid.UUID) (*bracket.Tournament, error) {
	if actor == nil {
		return nil, ErrNotSignedIn
	}
	tournament, err := s.store.GetTournament(ctx, s.db, tournamentID)
	if err != nil {
		return nil, notFound(err, ErrTournamentNotFound)
	}
	if actor.IsAdmin() || tournament.OwnerID == actor.ID {
		return tournament, nil
	}
	return nil, ErrUnauthorized
}

func (s *AccessService) RequireMatchManager(ctx context.Context, actor *users.User, matchID uuid.UUID) (*bracket.Tournament, error) {
	if actor == nil {
		return nil, ErrNotSignedIn
	}
	match, err := s.store.GetMatch(ctx, s.db, matchID)
	if err != nil {
		return nil, notFound(err, bracket.ErrMatchNotFound)
	}
	return s.RequireManager(ctx, actor, match.TournamentID)
}

func (s *AccessService) RequireEntrantManager(ctx context.Context, actor *users.User, entrantID uuid.UUID) (*bracket.Tournament, error) {
	if actor == nil {
		return nil, ErrNotSignedIn
	}
	entrant, err := s.store.GetEntrant(ctx, s.db, entrantID)
	if err != nil {
		return nil, notFound(err, ErrEntrantNotFound)
	}
	return s.RequireManager(ctx, actor, entrant.TournamentID)
}
