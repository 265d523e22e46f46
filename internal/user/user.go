package users

import (
	"time"

	"github.com/google/uuid"
)

type ContextKey string

const UserKey ContextKey = "user"

type Role string

const (
	RolePlayer    Role = "player"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	return r == RolePlayer || r == RoleOrganizer || r == RoleAdmin
}

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	Provider     *string   `db:"provider" json:"provider,omitempty"`
	ProviderID   *string   `db:"provider_id" json:"-"`
	AvatarURL    *string   `db:"avatar_url" json:"avatarUrl,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// CanOrganize reports whether the user may create tournaments.
func (u *User) CanOrganize() bool {
	return u != nil && (u.Role == RoleOrganizer || u.Role == RoleAdmin)
}

type Team struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CaptainID uuid.UUID `db:"captain_id" json:"captainId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
