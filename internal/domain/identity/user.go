package identity

import (
	"context"
	"errors"
	"slices"
)

var ErrUserNotFound = errors.New("identity: user not found")

// RoleAdmin grants access to every store integration
const RoleAdmin = "admin"

// User is the read model of an account that owns stores and receives alerts.
// Authentication and role management live outside this service.
type User struct {
	ID                uint64
	Name              string
	Email             string
	Roles             []string
	SlackWebhookURL   string
	DiscordWebhookURL string
}

// HasRole reports whether the user has the named role
func (u *User) HasRole(name string) bool {
	return slices.Contains(u.Roles, name)
}

// HasAccessToStore reports whether the user may see a store owned by ownerID
func (u *User) HasAccessToStore(ownerID uint64) bool {
	return u.ID == ownerID || u.HasRole(RoleAdmin)
}

// UserRepository loads users for notification routing
type UserRepository interface {
	FindByID(ctx context.Context, id uint64) (*User, error)
	Save(ctx context.Context, user *User) error
}
