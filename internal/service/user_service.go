package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/bracket-admin/internal/logger"
	"github.com/AdamBeresnev/bracket-admin/internal/store"
	users "github.com/AdamBeresnev/bracket-admin/internal/user"
	"github.com/AdamBeresnev/bracket-admin/internal/utils"
	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/markbates/goth"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var GuestUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type UserService struct {
	db    *sqlx.DB
	store *store.UserStore
}

func NewUserService(db *sqlx.DB, store *store.UserStore) *UserService {
	return &UserService{db: db, store: store}
}

func (s *UserService) Register(ctx context.Context, email, username, password string) (*users.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if username == "" || len(username) > 50 {
		return nil, ErrInvalidUsername
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &users.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: utils.Ptr(string(hash)),
		Role:         users.RolePlayer,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("user registered", "user", user.ID)
	return user, nil
}

// Login checks an email and password pair. Unknown emails and wrong
// passwords fail the same way.
func (s *UserService) Login(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *UserService) FindOrCreateUserByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	user, err := s.store.GetUserByProvider(ctx, gothUser.Provider, gothUser.UserID)

	if err == nil {
		name := gothUser.NickName
		if name == "" {
			name = user.Username
		}
		if utils.OrZero(user.AvatarURL) != gothUser.AvatarURL || user.Username != name {
			user.AvatarURL = utils.StringOrNil(gothUser.AvatarURL)
			user.Username = name
			if err := s.store.UpdateUserNameAndAvatar(ctx, user); err != nil {
				logger.Warn("failed to refresh oauth profile", "user", user.ID, "error", err)
			}
		}
		return user, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		email := strings.ToLower(gothUser.Email)
		if email == "" {
			// Some providers hide the address; keep the column unique anyway
			email = fmt.Sprintf("%s-%s@oauth.invalid", gothUser.Provider, gothUser.UserID)
		}
		username := gothUser.Name
		if username == "" {
			username = gothUser.NickName
		}

		newUser := &users.User{
			ID:         uuid.New(),
			Email:      email,
			Username:   username,
			Role:       users.RolePlayer,
			Provider:   utils.Ptr(gothUser.Provider),
			ProviderID: utils.Ptr(gothUser.UserID),
			AvatarURL:  utils.StringOrNil(gothUser.AvatarURL),
		}
		if err := s.store.CreateUser(ctx, newUser); err != nil {
			if store.IsUniqueViolation(err) {
				return nil, ErrUserAlreadyExists
			}
			return nil, err
		}
		logger.Info("user created from provider", "user", newUser.ID, "provider", gothUser.Provider)
		return newUser, nil
	}

	return nil, err
}

// EnsureGuestUser returns the shared demo account, creating it on first use.
// The guest may organize so the whole flow can be tried without signing up.
func (s *UserService) EnsureGuestUser(ctx context.Context) (*users.User, error) {
	user, err := s.store.GetUser(ctx, GuestUserID)
	if err == nil {
		return user, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		guestUser := &users.User{
			ID:       GuestUserID,
			Email:    "guest@bracket-admin.local",
			Username: "Guest User",
			Role:     users.RoleOrganizer,
		}
		if err := s.store.CreateUser(ctx, guestUser); err != nil {
			return nil, err
		}
		return guestUser, nil
	}
	return nil, err
}

func (s *UserService) SetRole(ctx context.Context, id uuid.UUID, role users.Role) (*users.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if err := s.store.UpdateRole(ctx, id, role); err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	logger.Info("user role changed", "user", id, "role", role)
	return s.GetUser(ctx, id)
}
