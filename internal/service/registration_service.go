package service

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/bracket-admin/internal/bracket"
	"github.com/AdamBeresnev/bracket-admin/internal/logger"
	"github.com/AdamBeresnev/bracket-admin/internal/notify"
	"github.com/AdamBeresnev/bracket-admin/internal/store"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/AdamBeresnev/bracket-admin/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type RegistrationService struct {
	db            *sqlx.DB
	store         *store.TournamentStore
	teams         *store.TeamStore
	notifications *NotificationService
}

func NewRegistrationService(db *sqlx.DB, store *store.TournamentStore, teams *store.TeamStore, notifications *NotificationService) *RegistrationService {
	return &RegistrationService{db: db, store: store, teams: teams, notifications: notifications}
}

// Register signs the actor, or a team they captain, up for a tournament.
func (s *RegistrationService) Register(ctx context.Context, actor *users.User, tournamentID uuid.UUID, teamID *uuid.UUID) (*bracket.Entrant, error) {
	if actor == nil {
		return nil, ErrNotSignedIn
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournament(ctx, tx, tournamentID)
	if err != nil {
		return nil, notFound(err, ErrTournamentNotFound)
	}
	if tournament.Status != bracket.TournamentOpen {
		return nil, ErrRegistrationClosed
	}

	entrant := &bracket.Entrant{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Status:       bracket.EntrantPending,
	}
	if tournament.IsTeamBased {
		if teamID == nil {
			return nil, ErrTeamRequired
		}
		team, err := s.teams.GetTeam(ctx, tx, *teamID)
		if err != nil {
			return nil, notFound(err, ErrTeamNotFound)
		}
		if team.CaptainID != actor.ID {
			return nil, ErrUnauthorized
		}
		entrant.TeamID = utils.Ptr(team.ID)
	} else {
		if teamID != nil {
			return nil, ErrTeamNotAllowed
		}
		entrant.ParticipantID = utils.Ptr(actor.ID)
	}

	if err := s.store.CreateRegistration(ctx, tx, entrant); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}
	created, err := s.store.GetEntrant(ctx, tx, entrant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload registration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	logger.Info("registration created", "tournament", tournamentID, "entrant", created.ID, "user", actor.ID)
	return created, nil
}

// ListEntrants returns all registrations; status narrows the list when set.
func (s *RegistrationService) ListEntrants(ctx context.Context, tournamentID uuid.UUID, status *bracket.EntrantStatus) ([]bracket.Entrant, error) {
	if _, err := s.store.GetTournament(ctx, s.db, tournamentID); err != nil {
		return nil, notFound(err, ErrTournamentNotFound)
	}
	return s.store.GetEntrants(ctx, s.db, tournamentID, status)
}

// Approve confirms a pending registration. Seeds follow confirmation order.
func (s *RegistrationService) Approve(ctx context.Context, entrantID uuid.UUID) (*bracket.Entrant, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	entrant, tournament, err := s.loadUndecided(ctx, tx, entrantID)
	if err != nil {
		return nil, err
	}
	if entrant.Status != bracket.EntrantPending {
		return nil, ErrAlreadyDecided
	}

	confirmed, err := s.store.CountConfirmed(ctx, tx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count entrants: %w", err)
	}
	if confirmed >= tournament.Size {
		return nil, ErrTournamentFull
	}
	seed, err := s.store.MaxSeed(ctx, tx, tournament.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seed: %w", err)
	}
	seed++

	if err := s.store.ConfirmRegistration(ctx, tx, entrant.ID, seed); err != nil {
		return nil, fmt.Errorf("failed to confirm registration: %w", err)
	}
	entrant.Status = bracket.EntrantConfirmed
	entrant.Seed = utils.Ptr(seed)

	notes, err := s.decisionNotification(ctx, tx, tournament, entrant, notify.RegistrationApproved, "Your registration for %s was approved", tournament.Name)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	logger.Info("registration approved", "tournament", tournament.ID, "entrant", entrant.ID, "seed", seed)
	s.notifications.Deliver(ctx, notes)
	return entrant, nil
}

// Reject turns down a registration that is not part of a bracket yet.
func (s *RegistrationService) Reject(ctx context.Context, entrantID uuid.UUID) (*bracket.Entrant, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	entrant, tournament, err := s.loadUndecided(ctx, tx, entrantID)
	if err != nil {
		return nil, err
	}
	if entrant.Status == bracket.EntrantRejected {
		return nil, ErrAlreadyDecided
	}

	if err := s.store.RejectRegistration(ctx, tx, entrant.ID); err != nil {
		return nil, fmt.Errorf("failed to reject registration: %w", err)
	}
	entrant.Status = bracket.EntrantRejected
	entrant.Seed = nil

	notes, err := s.decisionNotification(ctx, tx, tournament, entrant, notify.RegistrationRejected, "Your registration for %s was declined", tournament.Name)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	logger.Info("registration rejected", "tournament", tournament.ID, "entrant", entrant.ID)
	s.notifications.Deliver(ctx, notes)
	return entrant, nil
}

// loadUndecided loads a registration whose tournament is still running and
// has no bracket yet.
func (s *RegistrationService) loadUndecided(ctx context.Context, tx *sqlx.Tx, entrantID uuid.UUID) (*bracket.Entrant, *bracket.Tournament, error) {
	entrant, err := s.store.GetEntrant(ctx, tx, entrantID)
	if err != nil {
		return nil, nil, notFound(err, ErrEntrantNotFound)
	}
	tournament, err := s.store.GetTournament(ctx, tx, entrant.TournamentID)
	if err != nil {
		return nil, nil, notFound(err, ErrTournamentNotFound)
	}
	if tournament.Finished() {
		return nil, nil, ErrTournamentFinished
	}
	count, err := s.store.CountMatches(ctx, tx, tournament.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count matches: %w", err)
	}
	if count > 0 {
		return nil, nil, ErrBracketLocked
	}
	return entrant, tournament, nil
}

func (s *RegistrationService) decisionNotification(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament, entrant *bracket.Entrant, kind notify.Kind, format string, args ...interface{}) ([]notify.Notification, error) {
	recipients, err := s.store.GetRecipients(ctx, tx, []uuid.UUID{entrant.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to get recipients: %w", err)
	}
	userID, ok := recipients[entrant.ID]
	if !ok {
		return nil, nil
	}
	notes := []notify.Notification{s.notifications.New(userID, &tournament.ID, kind, format, args...)}
	if err := s.notifications.Queue(ctx, tx, notes); err != nil {
		return nil, err
	}
	return notes, nil
}
