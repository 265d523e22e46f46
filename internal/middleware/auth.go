package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/AdamBeresnev/bracket-admin/internal/auth"
	"github.com/AdamBeresnev/bracket-admin/internal/config"
	"github.com/AdamBeresnev/bracket-admin/internal/httputil"
	"github.com/AdamBeresnev/bracket-admin/internal/logger"
	"github.com/AdamBeresnev/bracket-admin/internal/service"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"github.com/markbates/goth/providers/discord"
	"github.com/markbates/goth/providers/google"
)

// SessionUserKey is the session entry holding the signed in user's id.
const SessionUserKey = "userID"

type UserLoader interface {
	GetUser(ctx context.Context, id uuid.UUID) (*users.User, error)
}

func InitAuth(cfg *config.Config) {
	var providers []goth.Provider
	if cfg.DiscordKey != "" {
		providers = append(providers, discord.New(cfg.DiscordKey, cfg.DiscordSecret, cfg.DiscordCallbackURL, discord.ScopeIdentify, discord.ScopeEmail))
	}
	if cfg.GoogleKey != "" {
		providers = append(providers, google.New(cfg.GoogleKey, cfg.GoogleSecret, cfg.GoogleCallbackURL, "email", "profile"))
	}
	goth.UseProviders(providers...)
	logger.Info("oauth providers configured", "count", len(providers))
}

// LoadAuthenticatedUser puts the caller into the context. API clients send a
// bearer token; browsers carry the session cookie.
func LoadAuthenticatedUser(sessionManager *scs.SessionManager, loader UserLoader, tokens *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			userID, ok := bearerUser(r, tokens)
			if !ok {
				userID, ok = sessionUser(ctx, sessionManager)
			}
			if ok {
				user, err := loader.GetUser(ctx, userID)
				if err == nil {
					ctx = context.WithValue(ctx, users.UserKey, user)
				} else {
					logger.Debug("authenticated user not loaded", "user", userID, "error", err)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerUser(r *http.Request, tokens *auth.JWTManager) (uuid.UUID, bool) {
	header := r.Header.Get("Authorization")
	if tokens == nil || !strings.HasPrefix(header, "Bearer ") {
		return uuid.Nil, false
	}
	claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		logger.Debug("rejected bearer token", "error", err)
		return uuid.Nil, false
	}
	return claims.UserID, true
}

func sessionUser(ctx context.Context, sessionManager *scs.SessionManager) (uuid.UUID, bool) {
	if sessionManager == nil {
		return uuid.Nil, false
	}
	userIDStr := sessionManager.GetString(ctx, SessionUserKey)
	if userIDStr == "" {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		sessionManager.Remove(ctx, SessionUserKey)
		return uuid.Nil, false
	}
	return userID, true
}

// RequireAuth sends anonymous browsers to the login page.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetAuthenticatedUser(r.Context()) == nil {
			if r.Header.Get("HX-Request") != "" {
				w.Header().Set("HX-Redirect", "/login")
				w.WriteHeader(http.StatusOK)
				return
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAPIAuth answers anonymous API calls with a JSON error.
func RequireAPIAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetAuthenticatedUser(r.Context()) == nil {
			httputil.JSONError(w, "anonymous api call", service.ErrNotSignedIn)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole lets through users holding one of the roles.
func RequireRole(roles ...users.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetAuthenticatedUser(r.Context())
			if user == nil {
				httputil.JSONError(w, "anonymous api call", service.ErrNotSignedIn)
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httputil.JSONError(w, "role check failed", service.ErrUnauthorized)
		})
	}
}

func GetAuthenticatedUser(ctx context.Context) *users.User {
	val := ctx.Value(users.UserKey)
	if val == nil {
		return nil
	}
	user, ok := val.(*users.User)
	if !ok {
		return nil
	}
	return user
}

// WithUser returns a context carrying user, as LoadAuthenticatedUser does.
func WithUser(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, users.UserKey, user)
}
