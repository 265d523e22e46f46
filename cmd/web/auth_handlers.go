package main

import (
	"net/http"
	"time"

	"github.com/AdamBeresnev/bracket-admin/internal/apperr"
	"github.com/AdamBeresnev/bracket-admin/internal/httputil"
	"github.com/AdamBeresnev/bracket-admin/internal/logger"
	"github.com/AdamBeresnev/bracket-admin/internal/middleware"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/AdamBeresnev/bracket-admin/views"
	"github.com/go-chi/chi/v5"
	"github.com/markbates/goth/gothic"
)

// signIn starts a fresh session for user.
func (app *application) signIn(r *http.Request, user *users.User) error {
	if err := app.sessions.RenewToken(r.Context()); err != nil {
		return err
	}
	app.sessions.Put(r.Context(), middleware.SessionUserKey, user.ID.String())
	logger.Info("user signed in", "user_id", user.ID, "role", user.Role)
	return nil
}

func (app *application) loginPage(w http.ResponseWriter, r *http.Request) {
	views.Render(w, r, views.LoginPage(""))
}

func (app *application) renderLoginError(w http.ResponseWriter, r *http.Request, err error) {
	w.WriteHeader(httputil.StatusFor(err))
	views.Render(w, r, views.LoginPage(apperr.Message(err)))
}

func (app *application) loginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}
	user, err := app.users.Login(r.Context(), r.Form.Get("email"), r.Form.Get("password"))
	if err != nil {
		app.renderLoginError(w, r, err)
		return
	}
	if err := app.signIn(r, user); err != nil {
		httputil.InternalServerError(w, "Failed to start session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) registerForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "Invalid form data", err)
		return
	}
	user, err := app.users.Register(r.Context(), r.Form.Get("email"), r.Form.Get("username"), r.Form.Get("password"))
	if err != nil {
		app.renderLoginError(w, r, err)
		return
	}
	if err := app.signIn(r, user); err != nil {
		httputil.InternalServerError(w, "Failed to start session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (app *application) beginOAuth(w http.ResponseWriter, r *http.Request) {
	r = gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))
	gothic.BeginAuthHandler(w, r)
}

func (app *application) completeOAuth(w http.ResponseWriter, r *http.Request) {
	r = gothic.GetContextWithProvider(r, chi.URLParam(r, "provider"))

	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		httputil.BadRequest(w, "Authentication failure", err)
		return
	}
	user, err := app.users.FindOrCreateUserByProvider(r.Context(), gothUser)
	if err != nil {
		httputil.InternalServerError(w, "Failed to find or create user", err)
		return
	}
	if err := app.signIn(r, user); err != nil {
		httputil.InternalServerError(w, "Failed to start session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (app *application) guestLogin(w http.ResponseWriter, r *http.Request) {
	user, err := app.users.EnsureGuestUser(r.Context())
	if err != nil {
		httputil.InternalServerError(w, "Failed to login as guest", err)
		return
	}
	if err := app.signIn(r, user); err != nil {
		httputil.InternalServerError(w, "Failed to start session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.sessions.Destroy(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to end session", err)
		return
	}
	redirect(w, r, "/login")
}

type credentials struct {
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *users.User `json:"user"`
}

func (app *application) issueToken(w http.ResponseWriter, status int, user *users.User) {
	token, expiresAt, err := app.tokens.Generate(user)
	if err != nil {
		httputil.JSONError(w, "Failed to issue token", err)
		return
	}
	httputil.JSON(w, status, tokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}

func (app *application) apiRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		httputil.JSONError(w, "register", err)
		return
	}
	user, err := app.users.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		httputil.JSONError(w, "register", err)
		return
	}
	app.issueToken(w, http.StatusCreated, user)
}

func (app *application) apiLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		httputil.JSONError(w, "login", err)
		return
	}
	user, err := app.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.JSONError(w, "login", err)
		return
	}
	app.issueToken(w, http.StatusOK, user)
}
