package store

import (
	"context"

	"github.com/AdamBeresnev/bracket-admin/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

const (
	createTournamentQuery = `INSERT INTO tournaments (id, owner_id, name, format, size, is_team_based, status)
        VALUES (:id, :owner_id, :name, :format, :size, :is_team_based, :status)`
	updateTournamentStatusQuery = `UPDATE tournaments SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	setTournamentWinnerQuery    = `UPDATE tournaments SET status = ?, winner_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
)

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, createTournamentQuery, tournament)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	if err := sqlx.GetContext(ctx, q, &tournament, "SELECT * FROM tournaments WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentsByOwner(ctx context.Context, ownerID uuid.UUID) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments WHERE owner_id = ? ORDER BY created_at DESC", ownerID)
	return tournaments, err
}

// GetPublicTournaments lists every tournament that left the draft stage.
func (s *TournamentStore) GetPublicTournaments(ctx context.Context) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments WHERE status != ? ORDER BY created_at DESC", bracket.TournamentDraft)
	return tournaments, err
}

func (s *TournamentStore) UpdateTournamentStatus(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status bracket.TournamentStatus) error {
	_, err := tx.ExecContext(ctx, updateTournamentStatusQuery, status, id)
	return err
}

// SetTournamentWinner writes the champion together with the status; a nil
// winner clears it.
func (s *TournamentStore) SetTournamentWinner(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, winnerID *uuid.UUID, status bracket.TournamentStatus) error {
	_, err := tx.ExecContext(ctx, setTournamentWinnerQuery, status, winnerID, id)
	return err
}
