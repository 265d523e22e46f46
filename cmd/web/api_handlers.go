package main

import (
	"encoding/json"
	"net/http"
	"path"
	"strconv"

	"github.com/AdamBeresnev/bracket-admin/internal/api"
	"github.com/AdamBeresnev/bracket-admin/internal/apperr"
	"github.com/AdamBeresnev/bracket-admin/internal/bracket"
	"github.com/AdamBeresnev/bracket-admin/internal/httputil"
	"github.com/AdamBeresnev/bracket-admin/internal/middleware"
	"github.com/AdamBeresnev/bracket-admin/internal/service"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var errBadID = apperr.New(apperr.InvalidInput, "invalid id in path")

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errBadID
	}
	return id, nil
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Wrap(apperr.InvalidInput, "request body is not valid JSON", err)
	}
	return nil
}

func (app *application) runAction(w http.ResponseWriter, r *http.Request, action api.Action, status int) {
	data, err := app.execute(r.Context(), middleware.GetAuthenticatedUser(r.Context()), action)
	if err != nil {
		httputil.JSONError(w, string(action.Type()), err)
		return
	}
	httputil.JSON(w, status, data)
}

func (app *application) apiAction(w http.ResponseWriter, r *http.Request) {
	action, err := api.Decode(r.Body)
	if err != nil {
		httputil.JSONError(w, "invalid action", err)
		return
	}
	app.runAction(w, r, action, http.StatusOK)
}

func (app *application) apiGenerateBracket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.JSONError(w, "generate bracket", err)
		return
	}
	app.runAction(w, r, api.GenerateBracket{TournamentID: id}, http.StatusCreated)
}

func (app *application) apiGetBracket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.JSONError(w, "get bracket", err)
		return
	}
	app.runAction(w, r, api.GetBracket{TournamentID: id}, http.StatusOK)
}

func (app *application) apiResetAllMatches(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.JSONError(w, "reset all matches", err)
		return
	}
	app.runAction(w, r, api.ResetAllMatches{TournamentID: id}, http.StatusOK)
}

func (app *application) apiSetMatchWinner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.JSONError(w, "set match winner", err)
		return
	}
	action := api.SetMatchWinner{MatchID: id}
	if err := api.DecodeInto(r.Body, &action); err != nil {
		httputil.JSONError(w, "set match winner", err)
		return
	}
	action.MatchID = id
	app.runAction(w, r, action, http.StatusOK)
}

func (app *application) apiSetTournamentWinner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.JSONError(w, "set tournament winner", err)
		return
	}
	action := api.SetTournamentWinner{MatchID: id}
	if err := api.DecodeInto(r.Body, &action); err != nil {
		httputil.JSONError(w, "set tournament winner", err)
		return
	}
	action.MatchID = id
	app.runAction(w, r, action, http.StatusOK)
}

func (app *application) apiResetMatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.JSONError(w, "reset match", err)
		return
	}
	app.runAction(w, r, api.ResetMatch{MatchID: id}, http.StatusOK)
}

func (app *application) apiDeleteBracket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.JSONError(w, "delete bracket", err)
		return
	}
	if err := app.brackets.DeleteBracket(r.Context(), id); err != nil {
		httputil.JSONError(w, "delete bracket", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) apiMe(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, middleware.GetAuthenticatedUser(r.Context()))
}

type createTournamentRequest struct {
	Name        string                   `json:"name"`
	Format      bracket.TournamentFormat `json:"format"`
	Size        int                      `json:"size"`
	IsTeamBased bool                     `json:"isTeamBased"`
}

func (app *application) apiCreateTournament(w http.ResponseWriter, r *http.Request) {
	var req createTournamentRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.JSONError(w, "create tournament", err)
		return
	}
	tournament, err := app.tournaments.CreateTournament(r.Context(), middleware.GetAuthenticatedUser(r.Context()), service.TournamentInput{
		Name:        req.Name,
		Format:      req.Format,
		Size:        req.Size,
		IsTeamBased: req.IsTeamBased,
	})
	if err != nil {
		httputil.JSONError(w, "create tournament", err)
		return
	}
	httputil.JSON(w, http.StatusCreated, tournament)
}

func (app *application) apiPublicTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := app.tournaments.GetPublicTournaments(r.Context())
	if err != nil {
		httputil.JSONError(w, "list tournaments", err)
		return
	}
	httputil.JSON(w, http.StatusOK, tournaments)
}

func (app *application) apiMyTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := app.tournaments.GetTournamentsForUser(r.Context(), middleware.GetAuthenticatedUser(r.Context()).ID)
	if err != nil {
		httputil.JSONError(w, "list tournaments", err)
		return
	}
	httputil.JSON(w, http.StatusOK, tournaments)
}

func (app *application) apiGetTournament(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.JSONError(w, "get tournament", err)
		return
	}
	tournament, err := app.tournaments.GetTournament(r.Context(), id)
	if err != nil {
		httputil.JSONError(w, "get tournament", err)
		return
	}
	httputil.JSON(w, http.StatusOK, tournament)
}

// transition picks the status change from the last path segment.
func (app *application) transition(r *http.Request) (*bracket.Tournament, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	if _, err := app.access.RequireManager(r.Context(), middleware.GetAuthenticatedUser(r.Context()), id); err != nil {
		return nil, err
	}
	switch path.Base(r.URL.Path) {
	case "open":
		return app.tournaments.OpenRegistration(r.Context(), id)
	case "close":
		return app.tournaments.CloseRegistration(r.Context(), id)
	case "cancel":
		return app.tournaments.Cancel(r.Context(), id)
	}
	return nil, service.ErrInvalidTransition
}

func (app *application) apiTournamentTransition(w http.ResponseWriter, r *http.Request) {
	tournament, err := app.transition(r)
	if err != nil {
		httputil.JSONError(w, "tournament status", err)
		return
	}
	httputil.JSON(w, http.StatusOK, tournament)
}

func (app *application) apiListRegistrations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.JSONError(w, "list registrations", err)
		return
	}
	var status *bracket.EntrantStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := bracket.EntrantStatus(s)
		status = &st
	}
	entrants, err := app.registrations.ListEntrants(r.Context(), id, status)
	if err != nil {
		httputil.JSONError(w, "list registrations", err)
		return
	}
	httputil.JSON(w, http.StatusOK, entrants)
}

type registerEntrantRequest struct {
	TeamID *uuid.UUID `json:"teamId"`
}

func (app *application) apiRegisterEntrant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.JSONError(w, "register", err)
		return
	}
	var req registerEntrantRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			httputil.JSONError(w, "register", err)
			return
		}
	}
	entrant, err := app.registrations.Register(r.Context(), middleware.GetAuthenticatedUser(r.Context()), id, req.TeamID)
	if err != nil {
		httputil.JSONError(w, "register", err)
		return
	}
	httputil.JSON(w, http.StatusCreated, entrant)
}

func (app *application) decideRegistration(r *http.Request) (*bracket.Entrant, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	if _, err := app.access.RequireEntrantManager(r.Context(), middleware.GetAuthenticatedUser(r.Context()), id); err != nil {
		return nil, err
	}
	if path.Base(r.URL.Path) == "approve" {
		return app.registrations.Approve(r.Context(), id)
	}
	return app.registrations.Reject(r.Context(), id)
}

func (app *application) apiDecideRegistration(w http.ResponseWriter, r *http.Request) {
	entrant, err := app.decideRegistration(r)
	if err != nil {
		httputil.JSONError(w, "decide registration", err)
		return
	}
	httputil.JSON(w, http.StatusOK, entrant)
}

func (app *application) apiMyTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := app.teams.ListForUser(r.Context(), middleware.GetAuthenticatedUser(r.Context()).ID)
	if err != nil {
		httputil.JSONError(w, "list teams", err)
		return
	}
	httputil.JSON(w, http.StatusOK, teams)
}

func (app *application) apiCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		httputil.JSONError(w, "create team", err)
		return
	}
	team, err := app.teams.CreateTeam(r.Context(), middleware.GetAuthenticatedUser(r.Context()), req.Name)
	if err != nil {
		httputil.JSONError(w, "create team", err)
		return
	}
	httputil.JSON(w, http.StatusCreated, team)
}

func (app *application) apiAddTeamMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.JSONError(w, "add team member", err)
		return
	}
	var req struct {
		UserID uuid.UUID `json:"userId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		httputil.JSONError(w, "add team member", err)
		return
	}
	if err := app.teams.AddMember(r.Context(), middleware.GetAuthenticatedUser(r.Context()), id, req.UserID); err != nil {
		httputil.JSONError(w, "add team member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) apiNotifications(w http.ResponseWriter, r *http.Request) {
	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	notes, err := app.notifications.List(r.Context(), middleware.GetAuthenticatedUser(r.Context()).ID, unreadOnly)
	if err != nil {
		httputil.JSONError(w, "list notifications", err)
		return
	}
	httputil.JSON(w, http.StatusOK, notes)
}

func (app *application) apiMarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.JSONError(w, "mark read", err)
		return
	}
	if err := app.notifications.MarkRead(r.Context(), middleware.GetAuthenticatedUser(r.Context()).ID, id); err != nil {
		httputil.JSONError(w, "mark read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) apiMarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := app.notifications.MarkAllRead(r.Context(), middleware.GetAuthenticatedUser(r.Context()).ID)
	if err != nil {
		httputil.JSONError(w, "mark all read", err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]int64{"updated": n})
}

func (app *application) apiSetRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.JSONError(w, "set role", err)
		return
	}
	var req struct {
		Role users.Role `json:"role"`
	}
	if err := decodeJSON(r, &req); err != nil {
		httputil.JSONError(w, "set role", err)
		return
	}
	user, err := app.users.SetRole(r.Context(), id, req.Role)
	if err != nil {
		httputil.JSONError(w, "set role", err)
		return
	}
	httputil.JSON(w, http.StatusOK, user)
}
