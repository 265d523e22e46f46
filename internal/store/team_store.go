package store

import (
	"context"

	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TeamStore struct {
	db *sqlx.DB
}

func NewTeamStore(db *sqlx.DB) *TeamStore {
	return &TeamStore{db: db}
}

func (s *TeamStore) CreateTeam(ctx context.Context, tx *sqlx.Tx, team *users.Team) error {
	_, err := tx.NamedExecContext(ctx, "INSERT INTO teams (id, name, captain_id) VALUES (:id, :name, :captain_id)", team)
	return err
}

func (s *TeamStore) AddMember(ctx context.Context, tx *sqlx.Tx, teamID, userID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, "INSERT INTO team_members (team_id, user_id) VALUES (?, ?)", teamID, userID)
	return err
}

func (s *TeamStore) GetTeam(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*users.Team, error) {
	var team users.Team
	if err := sqlx.GetContext(ctx, q, &team, "SELECT * FROM teams WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TeamStore) GetTeamsForUser(ctx context.Context, userID uuid.UUID) ([]users.Team, error) {
	var teams []users.Team
	err := s.db.SelectContext(ctx, &teams, `
		SELECT t.* FROM teams t
		JOIN team_members m ON m.team_id = t.id
		WHERE m.user_id = ?
		ORDER BY t.name ASC`, userID)
	return teams, err
}

func (s *TeamStore) GetMemberIDs(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.SelectContext(ctx, &ids, "SELECT user_id FROM team_members WHERE team_id = ? ORDER BY joined_at ASC", teamID)
	return ids, err
}
