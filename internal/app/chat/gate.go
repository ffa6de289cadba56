package chat

import (
	"context"
	"time"

	"lanshare/internal/app/store"
	"lanshare/internal/app/user"
	"lanshare/internal/pkg/auth/jwt"
	"lanshare/internal/pkg/logx"
)

// Identity is the outcome of handshake authentication.
type Identity struct {
	Authenticated bool
	User          *user.User
}

// Ref returns the compact projection of the authenticated user.
func (id Identity) Ref() UserRef {
	return UserRef{
		ID:       id.User.ID,
		Username: id.User.Username,
		Avatar:   id.User.Avatar,
	}
}

// Authenticate resolves the handshake token into an Identity.
//
// The gate fails open: a missing, invalid, or expired token, or a token whose
// user no longer exists, yields an unauthenticated identity rather than a
// rejected connection. Unauthenticated connections stay alive but never join
// the room; every message they send is answered with an error event.
func Authenticate(ctx context.Context, token string, secretKey string, users store.Store) Identity {
	if token == "" {
		return Identity{}
	}

	payload, err := jwt.ParseToken(token, secretKey)
	if err != nil {
		logx.Warn("Chat handshake carried an unusable token, connection continues unauthenticated",
			"reason", err.Error())
		return Identity{}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	u, err := users.GetUserByID(ctx, payload.UserID)
	if err != nil {
		logx.Warn("Chat handshake token references an unknown user, connection continues unauthenticated",
			"user_id", payload.UserID)
		return Identity{}
	}

	return Identity{Authenticated: true, User: u}
}
