package main

import (
	"net/http"

	"github.com/AdamBeresnev/bracket-admin/internal/middleware"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes(gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(app.sessions.LoadAndSave)
	r.Use(middleware.LoadAuthenticatedUser(app.sessions, app.userStore, app.tokens))

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Browser pages
	r.Get("/login", app.loginPage)
	r.Post("/login", app.loginForm)
	r.Post("/register", app.registerForm)
	r.Get("/auth/{provider}", app.beginOAuth)
	r.Get("/auth/{provider}/callback", app.completeOAuth)
	r.Post("/auth/guest", app.guestLogin)
	r.Post("/logout", app.logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/", app.indexPage)
		r.Get("/tournaments/create", app.createTournamentPage)
		r.Post("/tournaments", app.createTournamentForm)
		r.Get("/tournaments/{id}", app.tournamentPage)
		r.Post("/tournaments/{id}/open", app.tournamentTransitionForm)
		r.Post("/tournaments/{id}/close", app.tournamentTransitionForm)
		r.Post("/tournaments/{id}/bracket", app.generateBracketForm)
		r.Post("/tournaments/{id}/reset", app.resetAllForm)
		r.Post("/tournaments/{id}/registrations", app.registerEntrantForm)
		r.Post("/registrations/{id}/approve", app.decideRegistrationForm)
		r.Post("/registrations/{id}/reject", app.decideRegistrationForm)
		r.Get("/matches/{id}", app.matchPage)
		r.Post("/matches/{id}/winner", app.matchWinnerForm)
		r.Post("/matches/{id}/reset", app.resetMatchForm)
		r.Get("/notifications", app.notificationsPage)
		r.Post("/notifications/read", app.markAllReadForm)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", app.apiRegister)
		r.Post("/auth/login", app.apiLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPIAuth)

			r.Get("/me", app.apiMe)
			r.Post("/actions", app.apiAction)

			r.Get("/tournaments", app.apiPublicTournaments)
			r.Get("/tournaments/mine", app.apiMyTournaments)
			r.With(middleware.RequireRole(users.RoleOrganizer, users.RoleAdmin)).Post("/tournaments", app.apiCreateTournament)
			r.Get("/tournaments/{id}", app.apiGetTournament)
			r.Post("/tournaments/{id}/open", app.apiTournamentTransition)
			r.Post("/tournaments/{id}/close", app.apiTournamentTransition)
			r.Post("/tournaments/{id}/cancel", app.apiTournamentTransition)

			r.Post("/tournaments/{id}/bracket", app.apiGenerateBracket)
			r.Get("/tournaments/{id}/bracket", app.apiGetBracket)
			r.With(middleware.RequireRole(users.RoleAdmin)).Delete("/tournaments/{id}/bracket", app.apiDeleteBracket)
			r.Post("/tournaments/{id}/reset", app.apiResetAllMatches)

			r.Get("/tournaments/{id}/registrations", app.apiListRegistrations)
			r.Post("/tournaments/{id}/registrations", app.apiRegisterEntrant)
			r.Post("/registrations/{id}/approve", app.apiDecideRegistration)
			r.Post("/registrations/{id}/reject", app.apiDecideRegistration)

			r.Post("/matches/{id}/winner", app.apiSetMatchWinner)
			r.Post("/matches/{id}/tournament-winner", app.apiSetTournamentWinner)
			r.Post("/matches/{id}/reset", app.apiResetMatch)

			r.Get("/teams", app.apiMyTeams)
			r.Post("/teams", app.apiCreateTeam)
			r.Post("/teams/{id}/members", app.apiAddTeamMember)

			r.Get("/notifications", app.apiNotifications)
			r.Post("/notifications/read", app.apiMarkAllRead)
			r.Post("/notifications/{id}/read", app.apiMarkRead)

			r.With(middleware.RequireRole(users.RoleAdmin)).Put("/users/{id}/role", app.apiSetRole)
		})
	})

	return r
}
