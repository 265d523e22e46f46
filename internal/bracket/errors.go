package bracket

import "github.com/AdamBeresnev/bracket-admin/internal/apperr"

var (
	ErrMatchNotFound            = apperr.New(apperr.NotFound, "match not found")
	ErrAlreadyGenerated         = apperr.New(apperr.InvalidState, "bracket has already been generated")
	ErrAlreadyCompleted         = apperr.New(apperr.InvalidState, "match already has a winner")
	ErrMatchNotReady            = apperr.New(apperr.InvalidState, "match is waiting for an opponent")
	ErrByeReset                 = apperr.New(apperr.InvalidState, "bye matches cannot be reset")
	ErrMalformedBracket         = apperr.New(apperr.InvalidState, "bracket structure is inconsistent")
	ErrInvalidWinner            = apperr.New(apperr.InvalidInput, "winner is not part of this match")
	ErrNotFinalMatch            = apperr.New(apperr.InvalidInput, "match is not the final of the tournament")
	ErrInsufficientParticipants = apperr.New(apperr.InvalidInput, "at least two confirmed entrants are required")
	ErrTooManyParticipants      = apperr.New(apperr.InvalidInput, "more confirmed entrants than the tournament size")
	ErrDoubleBye                = apperr.New(apperr.InvalidState, "seeding produced a match without entrants")
)
