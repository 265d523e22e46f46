package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/bracket-admin/internal/bracket"
	"github.com/AdamBeresnev/bracket-admin/internal/logger"
	"github.com/AdamBeresnev/bracket-admin/internal/metrics"
	"github.com/AdamBeresnev/bracket-admin/internal/notify"
	"github.com/AdamBeresnev/bracket-admin/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	db            *sqlx.DB
	store         *store.TournamentStore
	notifications *NotificationService
	metrics       *metrics.Metrics
}

func NewMatchService(db *sqlx.DB, store *store.TournamentStore, notifications *NotificationService, m *metrics.Metrics) *MatchService {
	return &MatchService{db: db, store: store, notifications: notifications, metrics: m}
}

// MatchResult is the state after a winner was recorded or a match was reset.
type MatchResult struct {
	Match      *bracket.Match      `json:"match"`
	Changed    []bracket.Match     `json:"changed"`
	Tournament *bracket.Tournament `json:"tournament"`
}

func (s *MatchService) GetMatch(ctx context.Context, matchID uuid.UUID) (*bracket.Match, error) {
	match, err := s.store.GetMatch(ctx, s.db, matchID)
	if err != nil {
		return nil, notFound(err, bracket.ErrMatchNotFound)
	}
	return match, nil
}

// SetMatchWinner records the winner of a match and moves them into the next
// match. Deciding the final completes the tournament.
func (s *MatchService) SetMatchWinner(ctx context.Context, matchID, winnerID uuid.UUID) (res *MatchResult, err error) {
	defer func(start time.Time) { observe(s.metrics, "set_match_winner", start, err) }(time.Now())
	return s.advance(ctx, matchID, winnerID, false)
}

// SetTournamentWinner decides the final match explicitly.
func (s *MatchService) SetTournamentWinner(ctx context.Context, matchID, winnerID uuid.UUID) (res *MatchResult, err error) {
	defer func(start time.Time) { observe(s.metrics, "set_tournament_winner", start, err) }(time.Now())
	return s.advance(ctx, matchID, winnerID, true)
}

// load reads the match, its tournament and the full tree inside tx.
func (s *MatchService) load(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) (*bracket.Match, *bracket.Tournament, *bracket.Tree, error) {
	stored, err := s.store.GetMatch(ctx, tx, matchID)
	if err != nil {
		return nil, nil, nil, notFound(err, bracket.ErrMatchNotFound)
	}
	tournament, err := s.store.GetTournament(ctx, tx, stored.TournamentID)
	if err != nil {
		return nil, nil, nil, notFound(err, ErrTournamentNotFound)
	}
	matches, err := s.store.GetMatches(ctx, tx, stored.TournamentID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get matches: %w", err)
	}
	tree, err := bracket.NewTree(matches)
	if err != nil {
		return nil, nil, nil, err
	}
	match, ok := tree.Match(matchID)
	if !ok {
		return nil, nil, nil, bracket.ErrMatchNotFound
	}
	return match, tournament, tree, nil
}

func (s *MatchService) persist(ctx context.Context, tx *sqlx.Tx, out *bracket.Outcome) ([]bracket.Match, error) {
	changed := make([]bracket.Match, 0, len(out.Changed))
	for _, m := range out.Changed {
		if err := s.store.UpdateMatch(ctx, tx, m); err != nil {
			return nil, fmt.Errorf("failed to update match: %w", err)
		}
		changed = append(changed, *m)
	}
	return changed, nil
}

func (s *MatchService) advance(ctx context.Context, matchID, winnerID uuid.UUID, finalOnly bool) (*MatchResult, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, tournament, tree, err := s.load(ctx, tx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Decided() {
		return nil, bracket.ErrAlreadyCompleted
	}
	if tournament.Status != bracket.TournamentOngoing {
		return nil, ErrNotOngoing
	}
	if finalOnly && !tree.IsFinal(match) {
		return nil, bracket.ErrNotFinalMatch
	}

	out, err := tree.SetWinner(matchID, winnerID)
	if err != nil {
		return nil, err
	}
	changed, err := s.persist(ctx, tx, out)
	if err != nil {
		return nil, err
	}

	if out.Champion != nil {
		if err := s.store.SetTournamentWinner(ctx, tx, tournament.ID, out.Champion, bracket.TournamentCompleted); err != nil {
			return nil, fmt.Errorf("failed to complete tournament: %w", err)
		}
		tournament.Status = bracket.TournamentCompleted
		tournament.WinnerID = out.Champion
	}

	notes, err := s.resultNotifications(ctx, tx, tournament, match, out.Champion != nil)
	if err != nil {
		return nil, err
	}
	if err := s.notifications.Queue(ctx, tx, notes); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if out.Champion != nil {
		s.metrics.TournamentCompleted()
		logger.Info("tournament completed", "tournament", tournament.ID, "winner", *out.Champion)
	}
	logger.Info("match winner set", "match", matchID, "winner", winnerID, "round", match.RoundNumber)
	s.notifications.Deliver(ctx, notes)

	return &MatchResult{Match: match, Changed: changed, Tournament: tournament}, nil
}

func (s *MatchService) resultNotifications(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament, match *bracket.Match, final bool) ([]notify.Notification, error) {
	winnerID := *match.WinnerID
	loserID := *match.Participant1ID
	if loserID == winnerID {
		loserID = *match.Participant2ID
	}

	recipients, err := s.store.GetRecipients(ctx, tx, []uuid.UUID{winnerID, loserID})
	if err != nil {
		return nil, fmt.Errorf("failed to get recipients: %w", err)
	}

	var notes []notify.Notification
	tid := &tournament.ID
	if userID, ok := recipients[winnerID]; ok {
		if final {
			notes = append(notes, s.notifications.New(userID, tid, notify.TournamentWon, "You won %s", tournament.Name))
		} else {
			notes = append(notes, s.notifications.New(userID, tid, notify.MatchWon, "You won your round %d match in %s", match.RoundNumber, tournament.Name))
		}
	}
	if userID, ok := recipients[loserID]; ok {
		notes = append(notes, s.notifications.New(userID, tid, notify.MatchLost, "You lost your round %d match in %s", match.RoundNumber, tournament.Name))
	}
	if final {
		notes = append(notes, s.notifications.New(tournament.OwnerID, tid, notify.TournamentCompleted, "%s has finished", tournament.Name))
	}
	return notes, nil
}

// ResetMatch clears a decided match. Later matches that already used its
// winner are reset too, and a completed tournament goes back to ongoing.
func (s *MatchService) ResetMatch(ctx context.Context, matchID uuid.UUID) (res *MatchResult, err error) {
	defer func(start time.Time) { observe(s.metrics, "reset_match", start, err) }(time.Now())

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, tournament, tree, err := s.load(ctx, tx, matchID)
	if err != nil {
		return nil, err
	}
	if !tournament.HasResults() {
		return nil, ErrNotOngoing
	}
	var participants []uuid.UUID
	for _, p := range []*uuid.UUID{match.Participant1ID, match.Participant2ID} {
		if p != nil {
			participants = append(participants, *p)
		}
	}
	wasCompleted := match.Status == bracket.MatchCompleted

	out, err := tree.ResetMatch(matchID)
	if err != nil {
		return nil, err
	}
	changed, err := s.persist(ctx, tx, out)
	if err != nil {
		return nil, err
	}

	if out.ChampionCleared || tournament.Status == bracket.TournamentCompleted {
		if err := s.store.SetTournamentWinner(ctx, tx, tournament.ID, nil, bracket.TournamentOngoing); err != nil {
			return nil, fmt.Errorf("failed to reopen tournament: %w", err)
		}
		tournament.Status = bracket.TournamentOngoing
		tournament.WinnerID = nil
	}

	var notes []notify.Notification
	if wasCompleted {
		recipients, err := s.store.GetRecipients(ctx, tx, participants)
		if err != nil {
			return nil, fmt.Errorf("failed to get recipients: %w", err)
		}
		for _, p := range participants {
			if userID, ok := recipients[p]; ok {
				notes = append(notes, s.notifications.New(userID, &tournament.ID, notify.MatchReset, "The result of your round %d match in %s was reset", match.RoundNumber, tournament.Name))
			}
		}
		if err := s.notifications.Queue(ctx, tx, notes); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if wasCompleted {
		logger.Info("match reset", "match", matchID, "changed", len(changed))
	}
	s.notifications.Deliver(ctx, notes)
	return &MatchResult{Match: match, Changed: changed, Tournament: tournament}, nil
}

// ResetAllMatches clears every played result; byes stay resolved.
func (s *MatchService) ResetAllMatches(ctx context.Context, tournamentID uuid.UUID) (res *MatchResult, err error) {
	defer func(start time.Time) { observe(s.metrics, "reset_all_matches", start, err) }(time.Now())

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	tournament, err := s.store.GetTournament(ctx, tx, tournamentID)
	if err != nil {
		return nil, notFound(err, ErrTournamentNotFound)
	}
	matches, err := s.store.GetMatches(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get matches: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrNoBracket
	}
	if !tournament.HasResults() {
		return nil, ErrNotOngoing
	}
	tree, err := bracket.NewTree(matches)
	if err != nil {
		return nil, err
	}

	changed, err := s.persist(ctx, tx, tree.ResetAll())
	if err != nil {
		return nil, err
	}
	if tournament.Status == bracket.TournamentCompleted || tournament.WinnerID != nil {
		if err := s.store.SetTournamentWinner(ctx, tx, tournamentID, nil, bracket.TournamentOngoing); err != nil {
			return nil, fmt.Errorf("failed to reopen tournament: %w", err)
		}
		tournament.Status = bracket.TournamentOngoing
		tournament.WinnerID = nil
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	logger.Info("all matches reset", "tournament", tournamentID, "changed", len(changed))
	return &MatchResult{Changed: changed, Tournament: tournament}, nil
}
