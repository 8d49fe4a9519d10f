// Package domain contains core concepts of the banking system.
// This file defines User identities.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"time"

	"github.com/samber/lo"
)

// UserID is the stable identity of an authenticated user.
// It is opaque: nothing outside auth and the user repository parses it.
type UserID string

func (u UserID) String() string {
	return string(u)
}

type User struct {
	ID           UserID
	Email        string
	Username     string
	PasswordHash string
	Roles        []string
	IsActive     bool
	CreatedAt    time.Time
}

const RoleAdmin = "admin"

// Identity is what a verified token proves about its bearer.
type Identity struct {
	UserID   UserID
	Username string
	Roles    []string
}

func (i Identity) HasRole(role string) bool {
	return lo.Contains(i.Roles, role)
}

// ConnectionStats summarises live sessions.
type ConnectionStats struct {
	TotalConnections int `json:"total_connections"`
	UsersConnected   int `json:"users_connected"`
}
