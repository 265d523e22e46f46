package views

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/bracket-admin/internal/middleware"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/google/uuid"
)

func GetUser(ctx context.Context) *users.User {
	return middleware.GetAuthenticatedUser(ctx)
}

func TournamentURL(id uuid.UUID) string {
	return fmt.Sprintf("/tournaments/%s", id)
}

func RegistrationsURL(tournamentID uuid.UUID) string {
	return TournamentURL(tournamentID) + "/registrations"
}

// RegistrationURL addresses a decision on one registration, "approve" or "reject".
func RegistrationURL(id uuid.UUID, decision string) string {
	return fmt.Sprintf("/registrations/%s/%s", id, decision)
}

func MatchURL(id uuid.UUID) string {
	return fmt.Sprintf("/matches/%s", id)
}
