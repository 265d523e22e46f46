package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/bracket-admin/internal/apperr"
	"github.com/AdamBeresnev/bracket-admin/internal/bracket"
	"github.com/AdamBeresnev/bracket-admin/internal/logger"
	"github.com/AdamBeresnev/bracket-admin/internal/metrics"
	"github.com/AdamBeresnev/bracket-admin/internal/notify"
	"github.com/AdamBeresnev/bracket-admin/internal/store"
	"github.com/AdamBeresnev/bracket-admin/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BracketService struct {
	db            *sqlx.DB
	store         *store.TournamentStore
	notifications *NotificationService
	metrics       *metrics.Metrics
}

func NewBracketService(db *sqlx.DB, store *store.TournamentStore, notifications *NotificationService, m *metrics.Metrics) *BracketService {
	return &BracketService{db: db, store: store, notifications: notifications, metrics: m}
}

// BracketData is everything needed to draw a tournament's bracket.
type BracketData struct {
	Tournament  *bracket.Tournament `json:"tournament"`
	Entrants    []bracket.Entrant   `json:"entrants"`
	Matches     []bracket.Match     `json:"matches"`
	NextMatchID *uuid.UUID          `json:"nextMatchId,omitempty"`
}

// EntrantNames maps entrant ids to display names.
func (d *BracketData) EntrantNames() map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(d.Entrants))
	for _, e := range d.Entrants {
		names[e.ID] = e.DisplayName
	}
	return names
}

func observe(m *metrics.Metrics, operation string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = string(apperr.KindOf(err))
	}
	m.Observe(operation, result, time.Since(start))
}

// Generate creates the whole single elimination bracket from the confirmed
// entrants and moves the tournament to ongoing.
func (s *BracketService) Generate(ctx context.Context, tournamentID uuid.UUID) (matches []bracket.Match, err error) {
	defer func(start time.Time) { observe(s.metrics, "generate_bracket", start, err) }(time.Now())

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournament(ctx, tx, tournamentID)
	if err != nil {
		return nil, notFound(err, ErrTournamentNotFound)
	}

	existing, err := s.store.CountMatches(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count matches: %w", err)
	}
	if existing > 0 {
		return nil, bracket.ErrAlreadyGenerated
	}

	if tournament.Format != bracket.SingleElimination {
		return nil, ErrUnsupportedFormat
	}
	if !tournament.AcceptsBracket() {
		return nil, ErrNotAcceptingBracket
	}

	entrants, err := s.store.GetEntrants(ctx, tx, tournamentID, utils.Ptr(bracket.EntrantConfirmed))
	if err != nil {
		return nil, fmt.Errorf("failed to get entrants: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(entrants))
	for _, e := range entrants {
		ids = append(ids, e.ID)
	}

	matches, err = bracket.Build(tournamentID, ids, tournament.Size)
	if err != nil {
		return nil, err
	}
	tree, err := bracket.NewTree(matches)
	if err != nil {
		return nil, err
	}
	if err := tree.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateMatches(ctx, tx, matches); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, bracket.ErrAlreadyGenerated
		}
		return nil, fmt.Errorf("failed to create matches: %w", err)
	}
	if err := s.store.UpdateTournamentStatus(ctx, tx, tournamentID, bracket.TournamentOngoing); err != nil {
		return nil, fmt.Errorf("failed to update tournament status: %w", err)
	}

	recipients, err := s.store.GetRecipients(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipients: %w", err)
	}
	notes := make([]notify.Notification, 0, len(recipients))
	for _, e := range entrants {
		if userID, ok := recipients[e.ID]; ok {
			notes = append(notes, s.notifications.New(userID, &tournamentID, notify.BracketGenerated, "The bracket for %s is ready", tournament.Name))
		}
	}
	if err := s.notifications.Queue(ctx, tx, notes); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, bracket.ErrAlreadyGenerated
		}
		return nil, err
	}

	s.metrics.BracketGenerated(len(matches))
	logger.Info("bracket generated", "tournament", tournamentID, "entrants", len(ids), "matches", len(matches))
	s.notifications.Deliver(ctx, notes)
	return matches, nil
}

func (s *BracketService) GetBracket(ctx context.Context, tournamentID uuid.UUID) (data *BracketData, err error) {
	defer func(start time.Time) { observe(s.metrics, "get_bracket", start, err) }(time.Now())

	tournament, err := s.store.GetTournament(ctx, s.db, tournamentID)
	if err != nil {
		return nil, notFound(err, ErrTournamentNotFound)
	}
	entrants, err := s.store.GetEntrants(ctx, s.db, tournamentID, utils.Ptr(bracket.EntrantConfirmed))
	if err != nil {
		return nil, fmt.Errorf("failed to get entrants: %w", err)
	}
	matches, err := s.store.GetMatches(ctx, s.db, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}

	data = &BracketData{
		Tournament: tournament,
		Entrants:   entrants,
		Matches:    matches,
	}
	// First match, in play order, that can be decided right now
	for i := range matches {
		if matches[i].Ready() {
			data.NextMatchID = utils.Ptr(matches[i].ID)
			break
		}
	}
	return data, nil
}

// DeleteBracket drops every match so the bracket can be generated again.
func (s *BracketService) DeleteBracket(ctx context.Context, tournamentID uuid.UUID) (err error) {
	defer func(start time.Time) { observe(s.metrics, "delete_bracket", start, err) }(time.Now())

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournament(ctx, tx, tournamentID)
	if err != nil {
		return notFound(err, ErrTournamentNotFound)
	}
	// Cancelled is terminal; dropping the bracket must not reopen it.
	if tournament.Status == bracket.TournamentCancelled {
		return ErrInvalidTransition
	}
	count, err := s.store.CountMatches(ctx, tx, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to count matches: %w", err)
	}
	if count == 0 {
		return ErrNoBracket
	}

	if err := s.store.DeleteMatches(ctx, tx, tournamentID); err != nil {
		return fmt.Errorf("failed to delete matches: %w", err)
	}
	if err := s.store.SetTournamentWinner(ctx, tx, tournamentID, nil, bracket.TournamentClosed); err != nil {
		return fmt.Errorf("failed to update tournament: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Warn("bracket deleted", "tournament", tournamentID, "matches", count)
	return nil
}
