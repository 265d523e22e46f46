package main

import (
	"context"

	"github.com/AdamBeresnev/bracket-admin/internal/api"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
)

// execute runs one bracket action for actor. Every route that touches a
// bracket goes through here so the checks are the same for REST and the
// action envelope.
func (app *application) execute(ctx context.Context, actor *users.User, action api.Action) (interface{}, error) {
	switch a := action.(type) {
	case api.GenerateBracket:
		if _, err := app.access.RequireManager(ctx, actor, a.TournamentID); err != nil {
			return nil, err
		}
		return app.brackets.Generate(ctx, a.TournamentID)

	case api.GetBracket:
		return app.brackets.GetBracket(ctx, a.TournamentID)

	case api.SetMatchWinner:
		if _, err := app.access.RequireMatchManager(ctx, actor, a.MatchID); err != nil {
			return nil, err
		}
		return app.matches.SetMatchWinner(ctx, a.MatchID, a.WinnerID)

	case api.SetTournamentWinner:
		if _, err := app.access.RequireMatchManager(ctx, actor, a.MatchID); err != nil {
			return nil, err
		}
		return app.matches.SetTournamentWinner(ctx, a.MatchID, a.WinnerID)

	case api.ResetMatch:
		if _, err := app.access.RequireMatchManager(ctx, actor, a.MatchID); err != nil {
			return nil, err
		}
		return app.matches.ResetMatch(ctx, a.MatchID)

	case api.ResetAllMatches:
		if _, err := app.access.RequireManager(ctx, actor, a.TournamentID); err != nil {
			return nil, err
		}
		return app.matches.ResetAllMatches(ctx, a.TournamentID)
	}
	return nil, api.ErrUnknownAction
}
