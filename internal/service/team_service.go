package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/bracket-admin/internal/logger"
	"github.com/AdamBeresnev/bracket-admin/internal/store"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TeamService struct {
	db    *sqlx.DB
	teams *store.TeamStore
}

func NewTeamService(db *sqlx.DB, teams *store.TeamStore) *TeamService {
	return &TeamService{db: db, teams: teams}
}

// CreateTeam makes the caller captain and first member of a new team.
func (s *TeamService) CreateTeam(ctx context.Context, captain *users.User, name string) (*users.Team, error) {
	if captain == nil {
		return nil, ErrNotSignedIn
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, ErrInvalidName
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	team := &users.Team{ID: uuid.New(), Name: name, CaptainID: captain.ID}
	if err := s.teams.CreateTeam(ctx, tx, team); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, ErrTeamNameTaken
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	if err := s.teams.AddMember(ctx, tx, team.ID, captain.ID); err != nil {
		return nil, fmt.Errorf("failed to add captain: %w", err)
	}

	created, err := s.teams.GetTeam(ctx, tx, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload team: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	logger.Info("team created", "team", created.ID, "captain", captain.ID)
	return created, nil
}

// AddMember is reserved to the team captain.
func (s *TeamService) AddMember(ctx context.Context, actor *users.User, teamID, userID uuid.UUID) error {
	if actor == nil {
		return ErrNotSignedIn
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	team, err := s.teams.GetTeam(ctx, tx, teamID)
	if err != nil {
		return notFound(err, ErrTeamNotFound)
	}
	if team.CaptainID != actor.ID {
		return ErrUnauthorized
	}

	var exists bool
	if err := tx.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)", userID); err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}

	if err := s.teams.AddMember(ctx, tx, teamID, userID); err != nil {
		if store.IsUniqueViolation(err) {
			return ErrAlreadyTeamMember
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	return tx.Commit()
}

func (s *TeamService) ListForUser(ctx context.Context, userID uuid.UUID) ([]users.Team, error) {
	return s.teams.GetTeamsForUser(ctx, userID)
}

func (s *TeamService) Members(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error) {
	if _, err := s.teams.GetTeam(ctx, s.db, teamID); err != nil {
		return nil, notFound(err, ErrTeamNotFound)
	}
	return s.teams.GetMemberIDs(ctx, teamID)
}
