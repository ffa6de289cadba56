package handler

import (
	"context"
	"errors"
	"net/http"

	"lanshare/internal/app/store"
	"lanshare/internal/app/user"
	"lanshare/internal/pkg/auth/jwt"
	"lanshare/internal/pkg/errs"
	"lanshare/internal/pkg/resp"
)

type contextKey string

// contextUserKey stores the resolved *user.User in the request Context.
const contextUserKey contextKey = "current_user"

// RequireUser resolves the token payload injected by jwt.Authenticator into a
// full user record and stores it in the Context. A token referencing a deleted
// user is rejected.
func RequireUser(deps *AppDeps) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload := jwt.GetPayloadFromContext(r)
			if payload == nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
				return
			}

			u, err := deps.Store.GetUserByID(r.Context(), payload.UserID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
					return
				}
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
				return
			}

			ctx := context.WithValue(r.Context(), contextUserKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser extracts the resolved user from the request Context. A nil
// return means the request did not pass through RequireUser.
func CurrentUser(r *http.Request) *user.User {
	u, ok := r.Context().Value(contextUserKey).(*user.User)
	if !ok {
		return nil
	}
	return u
}
