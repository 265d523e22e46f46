package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/AdamBeresnev/bracket-admin/internal/apperr"
	"github.com/google/uuid"
)

type ActionType string

const (
	TypeGenerateBracket     ActionType = "generate_bracket"
	TypeGetBracket          ActionType = "get_bracket"
	TypeSetMatchWinner      ActionType = "set_match_winner"
	TypeSetTournamentWinner ActionType = "set_tournament_winner"
	TypeResetMatch          ActionType = "reset_match"
	TypeResetAllMatches     ActionType = "reset_all_matches"
)

var (
	ErrMalformedRequest  = apperr.New(apperr.InvalidInput, "request body is not a valid action")
	ErrUnknownAction     = apperr.New(apperr.InvalidInput, "unknown action type")
	ErrMissingTournament = apperr.New(apperr.InvalidInput, "tournamentId is required")
	ErrMissingMatch      = apperr.New(apperr.InvalidInput, "matchId is required")
	ErrMissingWinner     = apperr.New(apperr.InvalidInput, "winnerId is required")
)

// Action is one of the bracket operations. The set is closed: only the
// types in this file implement it.
type Action interface {
	Type() ActionType
	Validate() error
	action()
}

type GenerateBracket struct {
	TournamentID uuid.UUID `json:"tournamentId"`
}

type GetBracket struct {
	TournamentID uuid.UUID `json:"tournamentId"`
}

type SetMatchWinner struct {
	MatchID  uuid.UUID `json:"matchId"`
	WinnerID uuid.UUID `json:"winnerId"`
}

type SetTournamentWinner struct {
	MatchID  uuid.UUID `json:"matchId"`
	WinnerID uuid.UUID `json:"winnerId"`
}

type ResetMatch struct {
	MatchID uuid.UUID `json:"matchId"`
}

type ResetAllMatches struct {
	TournamentID uuid.UUID `json:"tournamentId"`
}

func (GenerateBracket) Type() ActionType     { return TypeGenerateBracket }
func (GetBracket) Type() ActionType          { return TypeGetBracket }
func (SetMatchWinner) Type() ActionType      { return TypeSetMatchWinner }
func (SetTournamentWinner) Type() ActionType { return TypeSetTournamentWinner }
func (ResetMatch) Type() ActionType          { return TypeResetMatch }
func (ResetAllMatches) Type() ActionType     { return TypeResetAllMatches }

func (GenerateBracket) action()     {}
func (GetBracket) action()          {}
func (SetMatchWinner) action()      {}
func (SetTournamentWinner) action() {}
func (ResetMatch) action()          {}
func (ResetAllMatches) action()     {}

func (a GenerateBracket) Validate() error { return requireTournament(a.TournamentID) }
func (a GetBracket) Validate() error      { return requireTournament(a.TournamentID) }
func (a ResetAllMatches) Validate() error { return requireTournament(a.TournamentID) }
func (a ResetMatch) Validate() error      { return requireMatch(a.MatchID) }

func (a SetMatchWinner) Validate() error {
	return requireWinner(a.MatchID, a.WinnerID)
}

func (a SetTournamentWinner) Validate() error {
	return requireWinner(a.MatchID, a.WinnerID)
}

func requireTournament(id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrMissingTournament
	}
	return nil
}

func requireMatch(id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrMissingMatch
	}
	return nil
}

func requireWinner(matchID, winnerID uuid.UUID) error {
	if err := requireMatch(matchID); err != nil {
		return err
	}
	if winnerID == uuid.Nil {
		return ErrMissingWinner
	}
	return nil
}

type envelope struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode reads an envelope {"type": ..., "payload": {...}}. Unknown types and
// unknown fields are rejected, and the decoded action is validated.
func Decode(r io.Reader) (Action, error) {
	var env envelope
	if err := strict(r, &env); err != nil {
		return nil, err
	}

	var action Action
	switch env.Type {
	case TypeGenerateBracket:
		action = &GenerateBracket{}
	case TypeGetBracket:
		action = &GetBracket{}
	case TypeSetMatchWinner:
		action = &SetMatchWinner{}
	case TypeSetTournamentWinner:
		action = &SetTournamentWinner{}
	case TypeResetMatch:
		action = &ResetMatch{}
	case TypeResetAllMatches:
		action = &ResetAllMatches{}
	default:
		return nil, ErrUnknownAction
	}

	if len(env.Payload) == 0 {
		return nil, ErrMalformedRequest
	}
	if err := strict(bytes.NewReader(env.Payload), action); err != nil {
		return nil, err
	}
	if err := action.Validate(); err != nil {
		return nil, err
	}
	return deref(action), nil
}

// DecodeInto strictly decodes a bare payload, for the REST routes.
func DecodeInto(r io.Reader, action Action) error {
	if err := strict(r, action); err != nil {
		return err
	}
	return action.Validate()
}

func strict(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Wrap(apperr.InvalidInput, ErrMalformedRequest.Message, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return ErrMalformedRequest
	}
	return nil
}

func deref(a Action) Action {
	switch v := a.(type) {
	case *GenerateBracket:
		return *v
	case *GetBracket:
		return *v
	case *SetMatchWinner:
		return *v
	case *SetTournamentWinner:
		return *v
	case *ResetMatch:
		return *v
	case *ResetAllMatches:
		return *v
	}
	return a
}

// Response is the body of every JSON answer.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Kind    apperr.Kind `json:"kind,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(data interface{}) Response {
	return Response{Success: true, Data: data}
}

func Fail(err error) Response {
	return Response{
		Success: false,
		Message: apperr.Message(err),
		Kind:    apperr.KindOf(err),
	}
}
