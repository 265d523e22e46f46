package store

import (
	"context"

	"github.com/AdamBeresnev/bracket-admin/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	createRegistrationQuery = `INSERT INTO registrations (id, tournament_id, user_id, team_id, status)
		VALUES (:id, :tournament_id, :user_id, :team_id, :status)`
	selectEntrants = `
		SELECT r.*, COALESCE(u.username, tm.name, '') AS display_name
		FROM registrations r
		LEFT JOIN users u ON u.id = r.user_id
		LEFT JOIN teams tm ON tm.id = r.team_id
	`
	// Team entrants are reached through their captain
	recipientsQuery = `
		SELECT r.id AS entrant_id, COALESCE(r.user_id, tm.captain_id) AS user_id
		FROM registrations r
		LEFT JOIN teams tm ON tm.id = r.team_id
		WHERE r.id IN (?)
	`
)

func (s *TournamentStore) CreateRegistration(ctx context.Context, tx *sqlx.Tx, entrant *bracket.Entrant) error {
	_, err := tx.NamedExecContext(ctx, createRegistrationQuery, entrant)
	return err
}

func (s *TournamentStore) GetEntrant(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*bracket.Entrant, error) {
	var entrant bracket.Entrant
	if err := sqlx.GetContext(ctx, q, &entrant, selectEntrants+" WHERE r.id = ?", id); err != nil {
		return nil, err
	}
	return &entrant, nil
}

// GetEntrants lists registrations in seed order, then registration order.
// A nil status returns every registration.
func (s *TournamentStore) GetEntrants(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID, status *bracket.EntrantStatus) ([]bracket.Entrant, error) {
	var entrants []bracket.Entrant
	query := selectEntrants + " WHERE r.tournament_id = ?"
	args := []interface{}{tournamentID}
	if status != nil {
		query += " AND r.status = ?"
		args = append(args, *status)
	}
	query += " ORDER BY r.seed IS NULL, r.seed ASC, r.created_at ASC, r.rowid ASC"

	err := sqlx.SelectContext(ctx, q, &entrants, query, args...)
	return entrants, err
}

func (s *TournamentStore) CountConfirmed(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, q, &count, "SELECT COUNT(*) FROM registrations WHERE tournament_id = ? AND status = ?", tournamentID, bracket.EntrantConfirmed)
	return count, err
}

func (s *TournamentStore) ConfirmRegistration(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, seed int) error {
	_, err := tx.ExecContext(ctx, "UPDATE registrations SET status = ?, seed = ? WHERE id = ?", bracket.EntrantConfirmed, seed, id)
	return err
}

func (s *TournamentStore) RejectRegistration(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) error {
	_, err := tx.ExecContext(ctx, "UPDATE registrations SET status = ?, seed = NULL WHERE id = ?", bracket.EntrantRejected, id)
	return err
}

// GetRecipients maps entrant ids to the user that receives their notifications.
func (s *TournamentStore) GetRecipients(ctx context.Context, q sqlx.QueryerContext, entrantIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	out := make(map[uuid.UUID]uuid.UUID, len(entrantIDs))
	if len(entrantIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(recipientsQuery, entrantIDs)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		EntrantID uuid.UUID `db:"entrant_id"`
		UserID    uuid.UUID `db:"user_id"`
	}
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.EntrantID] = r.UserID
	}
	return out, nil
}

func (s *TournamentStore) MaxSeed(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) (int, error) {
	var seed int
	err := sqlx.GetContext(ctx, q, &seed, "SELECT COALESCE(MAX(seed), 0) FROM registrations WHERE tournament_id = ?", tournamentID)
	return seed, err
}
