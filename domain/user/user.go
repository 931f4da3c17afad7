package user

import (
	"strings"
	"time"

	"walletlab/domain/core"
	"walletlab/domain/preset"
)

// DefaultUserID is the identity used when a request carries none
const DefaultUserID core.UserID = "550e8400-e29b-41d4-a716-446655440000"

// DefaultUserName is the display name of the default user
const DefaultUserName = "Analyst"

// User is an opaque identity supplied by the environment
type User struct {
	ID        core.UserID `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	AvatarURL string      `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// New creates a user, falling back to the id as the display name
func New(id core.UserID, name, avatarURL string) *User {
	name = strings.TrimSpace(name)
	if name == "" {
		name = id.String()
	}
	now := time.Now()
	return &User{ID: id, Name: name, AvatarURL: strings.TrimSpace(avatarURL), CreatedAt: now, UpdatedAt: now}
}

// Default returns the default user
func Default() *User {
	return New(DefaultUserID, DefaultUserName, "")
}

// Author returns the attribution stored on presets
func (u *User) Author() preset.Author {
	return preset.Author{ID: u.ID, Name: u.Name, AvatarURL: u.AvatarURL}
}
