package service

import (
	"database/sql"
	"errors"

	"github.com/AdamBeresnev/bracket-admin/internal/apperr"
)

// Common service errors
var (
	ErrUnauthorized = apperr.New(apperr.Unauthorized, "you are not allowed to do that")
	ErrNotSignedIn  = apperr.New(apperr.Unauthorized, "sign in required")
)

// User service specific errors
var (
	ErrUserNotFound       = apperr.New(apperr.NotFound, "user not found")
	ErrInvalidCredentials = apperr.New(apperr.InvalidInput, "invalid email or password")
	ErrUserAlreadyExists  = apperr.New(apperr.InvalidState, "an account with this email already exists")
	ErrInvalidEmail       = apperr.New(apperr.InvalidInput, "email address is not valid")
	ErrWeakPassword       = apperr.New(apperr.InvalidInput, "password must be at least 8 characters")
	ErrInvalidUsername    = apperr.New(apperr.InvalidInput, "username must be between 1 and 50 characters")
	ErrInvalidRole        = apperr.New(apperr.InvalidInput, "unknown role")
)

// Tournament service specific errors
var (
	ErrTournamentNotFound  = apperr.New(apperr.NotFound, "tournament not found")
	ErrInvalidName         = apperr.New(apperr.InvalidInput, "name must be between 1 and 100 characters")
	ErrInvalidFormat       = apperr.New(apperr.InvalidInput, "unknown tournament format")
	ErrInvalidSize         = apperr.New(apperr.InvalidInput, "size must be a power of two between 2 and 128")
	ErrInvalidTransition   = apperr.New(apperr.InvalidState, "tournament cannot move to that status")
	ErrUnsupportedFormat   = apperr.New(apperr.InvalidState, "only single elimination tournaments can generate a bracket")
	ErrNotAcceptingBracket = apperr.New(apperr.InvalidState, "tournament must be open or closed to generate a bracket")
	ErrNotOngoing          = apperr.New(apperr.InvalidState, "tournament is not in progress")
	ErrNoBracket           = apperr.New(apperr.InvalidState, "bracket has not been generated")
)

// Registration and team errors
var (
	ErrEntrantNotFound     = apperr.New(apperr.NotFound, "registration not found")
	ErrTeamNotFound        = apperr.New(apperr.NotFound, "team not found")
	ErrRegistrationClosed  = apperr.New(apperr.InvalidState, "registration is not open")
	ErrAlreadyRegistered   = apperr.New(apperr.InvalidState, "already registered for this tournament")
	ErrAlreadyDecided      = apperr.New(apperr.InvalidState, "registration has already been decided")
	ErrTournamentFull      = apperr.New(apperr.InvalidState, "tournament is full")
	ErrBracketLocked       = apperr.New(apperr.InvalidState, "registrations cannot change once the bracket exists")
	ErrTournamentFinished  = apperr.New(apperr.InvalidState, "tournament is already over")
	ErrTeamRequired        = apperr.New(apperr.InvalidInput, "this tournament is team based, choose a team")
	ErrTeamNotAllowed      = apperr.New(apperr.InvalidInput, "this tournament is for individual players")
	ErrTeamNameTaken       = apperr.New(apperr.InvalidState, "team name is already taken")
	ErrAlreadyTeamMember   = apperr.New(apperr.InvalidState, "user is already on this team")
	ErrNotificationMissing = apperr.New(apperr.NotFound, "notification not found")
)

// notFound turns sql.ErrNoRows into the given not-found error.
func notFound(err error, e *apperr.Error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return e
	}
	return err
}
