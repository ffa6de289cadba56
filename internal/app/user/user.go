/*
Package user contains core data structures and logic related to user identity.

It defines the representation of a registered user (the User struct) and the
public projection of it that is safe to hand to clients.
*/
package user

import (
	"time"
	"unicode"
)

// User represents a registered account. The password hash never leaves the
// server; serialization to clients goes through Public.
type User struct {
	// ID is the unique, stable identifier for the user (UUID v4).
	ID string

	// Username is the unique display name. Uniqueness is case-insensitive.
	Username string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	// Email is optional and stored lowercased.
	Email string

	// Avatar is the user's avatar glyph. Defaults to the first username
	// character, uppercased.
	Avatar string

	// IsOnline reports whether the user currently has a live chat connection.
	IsOnline bool

	// ConnID is the identifier of the user's current chat connection, empty when offline.
	ConnID string

	// LastSeen is updated whenever the user goes offline.
	LastSeen time.Time

	// JoinedAt records when the account was created.
	JoinedAt time.Time
}

// Public is the client-visible projection of a User.
type Public struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email,omitempty"`
	Avatar   string    `json:"avatar"`
	IsOnline bool      `json:"isOnline"`
	LastSeen time.Time `json:"lastSeen"`
	JoinedAt time.Time `json:"joinDate"`
}

// Public returns the user's public profile, never including the password hash.
func (u *User) Public() Public {
	return Public{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
		IsOnline: u.IsOnline,
		LastSeen: u.LastSeen,
		JoinedAt: u.JoinedAt,
	}
}

// DefaultAvatar derives the default avatar glyph for a username: its first
// character, uppercased. Falls back to "U" for an empty name.
func DefaultAvatar(username string) string {
	for _, r := range username {
		return string(unicode.ToUpper(r))
	}
	return "U"
}
