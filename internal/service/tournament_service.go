package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/bracket-admin/internal/bracket"
	"github.com/AdamBeresnev/bracket-admin/internal/logger"
	"github.com/AdamBeresnev/bracket-admin/internal/store"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentService struct {
	db    *sqlx.DB
	store *store.TournamentStore
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore) *TournamentService {
	return &TournamentService{db: db, store: store}
}

type TournamentInput struct {
	Name        string
	Format      bracket.TournamentFormat
	Size        int
	IsTeamBased bool
}

// Allowed manual status changes. ongoing and completed are only reached
// through bracket generation and the final result.
var transitions = map[bracket.TournamentStatus][]bracket.TournamentStatus{
	bracket.TournamentDraft:   {bracket.TournamentOpen, bracket.TournamentCancelled},
	bracket.TournamentOpen:    {bracket.TournamentClosed, bracket.TournamentCancelled},
	bracket.TournamentClosed:  {bracket.TournamentOpen, bracket.TournamentCancelled},
	bracket.TournamentOngoing: {bracket.TournamentCancelled},
}

func (s *TournamentService) CreateTournament(ctx context.Context, owner *users.User, input TournamentInput) (*bracket.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > 100 {
		return nil, ErrInvalidName
	}
	if input.Format == "" {
		// Default to single elim
		input.Format = bracket.SingleElimination
	}
	if !input.Format.Valid() {
		return nil, ErrInvalidFormat
	}
	if !bracket.ValidSize(input.Size) {
		return nil, ErrInvalidSize
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament := &bracket.Tournament{
		ID:          uuid.New(),
		OwnerID:     owner.ID,
		Name:        name,
		Format:      input.Format,
		Size:        input.Size,
		IsTeamBased: input.IsTeamBased,
		Status:      bracket.TournamentDraft,
	}
	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	created, err := s.store.GetTournament(ctx, tx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload tournament: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	logger.Info("tournament created", "tournament", created.ID, "owner", owner.ID, "format", created.Format, "size", created.Size)
	return created, nil
}

func (s *TournamentService) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	tournament, err := s.store.GetTournament(ctx, s.db, id)
	if err != nil {
		return nil, notFound(err, ErrTournamentNotFound)
	}
	return tournament, nil
}

func (s *TournamentService) GetTournamentsForUser(ctx context.Context, userID uuid.UUID) ([]bracket.Tournament, error) {
	return s.store.GetTournamentsByOwner(ctx, userID)
}

func (s *TournamentService) GetPublicTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	return s.store.GetPublicTournaments(ctx)
}

func (s *TournamentService) OpenRegistration(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return s.transition(ctx, id, bracket.TournamentOpen)
}

func (s *TournamentService) CloseRegistration(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return s.transition(ctx, id, bracket.TournamentClosed)
}

func (s *TournamentService) Cancel(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return s.transition(ctx, id, bracket.TournamentCancelled)
}

func (s *TournamentService) transition(ctx context.Context, id uuid.UUID, to bracket.TournamentStatus) (*bracket.Tournament, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournament(ctx, tx, id)
	if err != nil {
		return nil, notFound(err, ErrTournamentNotFound)
	}

	allowed := false
	for _, next := range transitions[tournament.Status] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidTransition
	}

	if err := s.store.UpdateTournamentStatus(ctx, tx, id, to); err != nil {
		return nil, fmt.Errorf("failed to update tournament status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	logger.Info("tournament status changed", "tournament", id, "from", tournament.Status, "to", to)
	tournament.Status = to
	return tournament, nil
}
