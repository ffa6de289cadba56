package jwt

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"lanshare/internal/pkg/errs"
	"lanshare/internal/pkg/logx"
	"lanshare/internal/pkg/resp"
)

// Define Context Key for storing the Payload struct, preventing key collisions with other packages.
type contextKey string

const (
	// ContextAuthPayloadKey is the key used to store the parsed jwt.Payload (user identity) in the request Context.
	ContextAuthPayloadKey contextKey = "auth_payload"
)

// ExtractToken returns the bearer token from the Authorization header, or, when
// allowQuery is set, from the "token" query parameter. Download-style routes are
// triggered by plain links that cannot set headers, so they accept the fallback.
func ExtractToken(r *http.Request, allowQuery bool) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	if allowQuery {
		return r.URL.Query().Get("token")
	}

	return ""
}

// Authenticator returns a fail-closed middleware that requires a valid token on
// every request it guards. A missing, invalid, or expired token is rejected with
// a 401 response; on success the parsed Payload is injected into the Context.
func Authenticator(secretKey string, allowQueryToken bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ExtractToken(r, allowQueryToken)
			if tokenString == "" {
				resp.RespondError(w, r, errs.NewError(errs.ErrMissingToken))
				return
			}

			payload, err := ParseToken(tokenString, secretKey)
			if err != nil {
				logx.Warn("Rejected request with bad token", "error", err)

				if errors.Is(err, ErrTokenExpired) {
					resp.RespondError(w, r, errs.NewError(errs.ErrExpiredToken))
					return
				}
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidToken))
				return
			}

			ctx := context.WithValue(r.Context(), ContextAuthPayloadKey, payload)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPayloadFromContext safely extracts the authenticated Payload from the request Context.
// A nil return means the request did not pass through the Authenticator.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextAuthPayloadKey).(*Payload)

	if !ok {
		return nil
	}

	return payload
}
