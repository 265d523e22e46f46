package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/bracket-admin/internal/api"
	"github.com/AdamBeresnev/bracket-admin/internal/apperr"
	"github.com/AdamBeresnev/bracket-admin/internal/bracket"
	"github.com/AdamBeresnev/bracket-admin/internal/httputil"
	"github.com/AdamBeresnev/bracket-admin/internal/middleware"
	"github.com/AdamBeresnev/bracket-admin/internal/service"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/AdamBeresnev/bracket-admin/views"
	"github.com/google/uuid"
)

// redirect uses HX-Redirect for htmx requests so the whole page navigates.
func redirect(w http.ResponseWriter, r *http.Request, url string) {
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", url)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func canManage(user *users.User, t *bracket.Tournament) bool {
	return user != nil && (user.IsAdmin() || t.OwnerID == user.ID)
}

func (app *application) indexPage(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetAuthenticatedUser(r.Context())

	var mine []bracket.Tournament
	if user.CanOrganize() {
		var err error
		if mine, err = app.tournaments.GetTournamentsForUser(r.Context(), user.ID); err != nil {
			httputil.Error(w, "Failed to get tournaments", err)
			return
		}
	}
	public, err := app.tournaments.GetPublicTournaments(r.Context())
	if err != nil {
		httputil.Error(w, "Failed to get tournaments", err)
		return
	}
	views.Render(w, r, views.Index(mine, public))
}

func (app *application) createTournamentPage(w http.ResponseWriter, r *http.Request) {
	views.Render(w, r, views.CreateTournamentPage())
}

func (app *application) createTournamentForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}
	size, err := strconv.Atoi(r.Form.Get("size"))
	if err != nil {
		httputil.BadRequest(w, "Size must be a number", err)
		return
	}
	tournament, err := app.tournaments.CreateTournament(r.Context(), middleware.GetAuthenticatedUser(r.Context()), service.TournamentInput{
		Name:        r.Form.Get("name"),
		Format:      bracket.TournamentFormat(r.Form.Get("format")),
		Size:        size,
		IsTeamBased: r.Form.Get("team_based") == "true",
	})
	if err != nil {
		httputil.Error(w, "Failed to create tournament", err)
		return
	}
	redirect(w, r, views.TournamentURL(tournament.ID))
}

func (app *application) tournamentPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, "Invalid tournament ID", err)
		return
	}
	data, err := app.brackets.GetBracket(r.Context(), id)
	if err != nil {
		httputil.Error(w, "Failed to get tournament", err)
		return
	}
	bd, err := views.PrepareBracketData(data.Entrants, data.Matches, data.Tournament.WinnerID, data.NextMatchID)
	if err != nil {
		httputil.Error(w, "Failed to build bracket", err)
		return
	}

	user := middleware.GetAuthenticatedUser(r.Context())
	page := views.TournamentPageData{
		Tournament: data.Tournament,
		Bracket:    bd,
		CanManage:  canManage(user, data.Tournament),
	}
	if user != nil && data.Tournament.IsTeamBased && data.Tournament.Status == bracket.TournamentOpen {
		if page.Teams, err = app.captainedTeams(r.Context(), user.ID); err != nil {
			httputil.Error(w, "Failed to get teams", err)
			return
		}
	}
	if page.CanManage {
		if page.Registrations, err = app.registrations.ListEntrants(r.Context(), id, nil); err != nil {
			httputil.Error(w, "Failed to get registrations", err)
			return
		}
	}
	views.Render(w, r, views.TournamentView(page))
}

// captainedTeams are the teams a user may register with.
func (app *application) captainedTeams(ctx context.Context, userID uuid.UUID) ([]users.Team, error) {
	teams, err := app.teams.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var captained []users.Team
	for _, team := range teams {
		if team.CaptainID == userID {
			captained = append(captained, team)
		}
	}
	return captained, nil
}

func (app *application) tournamentTransitionForm(w http.ResponseWriter, r *http.Request) {
	tournament, err := app.transition(r)
	if err != nil {
		httputil.Error(w, "Failed to change tournament status", err)
		return
	}
	redirect(w, r, views.TournamentURL(tournament.ID))
}

func (app *application) generateBracketForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, "Invalid tournament ID", err)
		return
	}
	if _, err := app.execute(r.Context(), middleware.GetAuthenticatedUser(r.Context()), api.GenerateBracket{TournamentID: id}); err != nil {
		httputil.Error(w, "Failed to generate bracket", err)
		return
	}
	redirect(w, r, views.TournamentURL(id))
}

func (app *application) resetAllForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, "Invalid tournament ID", err)
		return
	}
	if _, err := app.execute(r.Context(), middleware.GetAuthenticatedUser(r.Context()), api.ResetAllMatches{TournamentID: id}); err != nil {
		httputil.Error(w, "Failed to reset matches", err)
		return
	}
	redirect(w, r, views.TournamentURL(id))
}

func (app *application) registerEntrantForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, "Invalid tournament ID", err)
		return
	}
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}
	var teamID *uuid.UUID
	if s := r.Form.Get("team_id"); s != "" {
		parsed, err := uuid.Parse(s)
		if err != nil {
			httputil.BadRequest(w, "Invalid team ID", err)
			return
		}
		teamID = &parsed
	}
	if _, err := app.registrations.Register(r.Context(), middleware.GetAuthenticatedUser(r.Context()), id, teamID); err != nil {
		httputil.Error(w, "Failed to register", err)
		return
	}
	redirect(w, r, views.TournamentURL(id))
}

func (app *application) decideRegistrationForm(w http.ResponseWriter, r *http.Request) {
	entrant, err := app.decideRegistration(r)
	if err != nil {
		httputil.Error(w, "Failed to decide registration", err)
		return
	}
	redirect(w, r, views.TournamentURL(entrant.TournamentID))
}

// pickerFor loads the bracket around matchID and selects the match in a
// fresh picker. Only managers of the tournament get one.
func (app *application) pickerFor(ctx context.Context, actor *users.User, matchID uuid.UUID) (*bracket.Picker, *bracket.Match, views.BracketData, error) {
	tournament, err := app.access.RequireMatchManager(ctx, actor, matchID)
	if err != nil {
		return nil, nil, views.BracketData{}, err
	}
	data, err := app.brackets.GetBracket(ctx, tournament.ID)
	if err != nil {
		return nil, nil, views.BracketData{}, err
	}
	tree, err := bracket.NewTree(data.Matches)
	if err != nil {
		return nil, nil, views.BracketData{}, err
	}
	bd, err := views.PrepareBracketData(data.Entrants, data.Matches, tournament.WinnerID, data.NextMatchID)
	if err != nil {
		return nil, nil, views.BracketData{}, err
	}
	m, ok := tree.Match(matchID)
	if !ok {
		return nil, nil, views.BracketData{}, bracket.ErrPickerNoMatch
	}
	picker := bracket.NewPicker(tree)
	if err := picker.SelectMatch(matchID); err != nil {
		return nil, nil, views.BracketData{}, err
	}
	return picker, m, bd, nil
}

func parseSlot(s string) (int, error) {
	slot, err := strconv.Atoi(s)
	if err != nil {
		return 0, bracket.ErrUnknownSlot
	}
	return slot, nil
}

func (app *application) matchPage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, "Invalid match ID", err)
		return
	}
	picker, m, bd, err := app.pickerFor(r.Context(), middleware.GetAuthenticatedUser(r.Context()), id)
	if err != nil {
		httputil.Error(w, "Failed to open match", err)
		return
	}

	selected := 0
	errMsg := ""
	if s := r.URL.Query().Get("slot"); s != "" {
		slot, err := parseSlot(s)
		if err == nil {
			err = picker.SelectSlot(slot)
		}
		if err != nil {
			errMsg = apperr.Message(err)
		} else {
			selected = slot
		}
	}
	views.Render(w, r, views.MatchView(m.TournamentID, m, bd, selected, errMsg))
}

func (app *application) matchWinnerForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, "Invalid match ID", err)
		return
	}
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}
	actor := middleware.GetAuthenticatedUser(r.Context())
	picker, m, bd, err := app.pickerFor(r.Context(), actor, id)
	if err != nil {
		httputil.Error(w, "Failed to open match", err)
		return
	}

	slot, err := parseSlot(r.Form.Get("slot"))
	if err == nil {
		err = picker.SelectSlot(slot)
	}
	var pick bracket.Pick
	if err == nil {
		pick, err = picker.Confirm()
	}
	if err != nil {
		w.WriteHeader(httputil.StatusFor(err))
		views.Render(w, r, views.MatchView(m.TournamentID, m, bd, 0, apperr.Message(err)))
		return
	}

	var action api.Action = api.SetMatchWinner{MatchID: pick.MatchID, WinnerID: pick.WinnerID}
	if pick.Final {
		action = api.SetTournamentWinner{MatchID: pick.MatchID, WinnerID: pick.WinnerID}
	}
	if _, err := app.execute(r.Context(), actor, action); err != nil {
		httputil.Error(w, "Failed to record winner", err)
		return
	}
	redirect(w, r, views.TournamentURL(m.TournamentID))
}

func (app *application) resetMatchForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.Error(w, "Invalid match ID", err)
		return
	}
	data, err := app.execute(r.Context(), middleware.GetAuthenticatedUser(r.Context()), api.ResetMatch{MatchID: id})
	if err != nil {
		httputil.Error(w, "Failed to reset match", err)
		return
	}
	redirect(w, r, views.TournamentURL(data.(*service.MatchResult).Tournament.ID))
}

func (app *application) notificationsPage(w http.ResponseWriter, r *http.Request) {
	notes, err := app.notifications.List(r.Context(), middleware.GetAuthenticatedUser(r.Context()).ID, false)
	if err != nil {
		httputil.Error(w, "Failed to get notifications", err)
		return
	}
	views.Render(w, r, views.NotificationsPage(notes))
}

func (app *application) markAllReadForm(w http.ResponseWriter, r *http.Request) {
	if _, err := app.notifications.MarkAllRead(r.Context(), middleware.GetAuthenticatedUser(r.Context()).ID); err != nil {
		httputil.Error(w, "Failed to mark notifications read", err)
		return
	}
	redirect(w, r, "/notifications")
}
