/*
This file contains the handlers for account management: registration, login,
token verification, and profile/password updates. All responses use the
{success, message?, data?} envelope.
*/
package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"lanshare/internal/app/store"
	"lanshare/internal/app/user"
	"lanshare/internal/pkg/auth/jwt"
	"lanshare/internal/pkg/errs"
	"lanshare/internal/pkg/logx"
	"lanshare/internal/pkg/randx"
	"lanshare/internal/pkg/req"
	"lanshare/internal/pkg/resp"
)

const (
	// bcryptCost is the work factor for password hashing.
	bcryptCost = 12

	// MinPasswordLength is the minimum accepted password length in characters.
	MinPasswordLength = 6
)

// usernameRegexp accepts 2 to 20 characters: letters, digits, underscore, or
// CJK ideographs.
var usernameRegexp = regexp.MustCompile(`^[\p{Han}a-zA-Z0-9_]{2,20}$`)

// emailRegexp is a light format check; real validation happens at delivery time.
var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Email string `json:"email"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// validatePassword enforces the minimum password length.
func validatePassword(password string) *errs.CustomError {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return errs.NewError(errs.ErrInvalidPassword)
	}
	return nil
}

// HandleRegister creates a new account and logs it straight in: the response
// carries a fresh token together with the public user profile.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input registerRequest
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		input.Username = strings.TrimSpace(input.Username)
		if !usernameRegexp.MatchString(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		if customErr := validatePassword(input.Password); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		email := strings.ToLower(strings.TrimSpace(input.Email))
		if email != "" && !emailRegexp.MatchString(email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		now := time.Now()
		u := &user.User{
			ID:           randx.UserID(),
			Username:     input.Username,
			PasswordHash: string(hash),
			Email:        email,
			Avatar:       user.DefaultAvatar(input.Username),
			LastSeen:     now,
			JoinedAt:     now,
		}

		if err := deps.Store.CreateUser(r.Context(), u); err != nil {
			switch {
			case errors.Is(err, store.ErrUsernameTaken):
				resp.RespondError(w, r, errs.NewError(errs.ErrUsernameTaken))
			case errors.Is(err, store.ErrEmailTaken):
				resp.RespondError(w, r, errs.NewError(errs.ErrEmailTaken))
			default:
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			}
			return
		}

		token, err := jwt.GenerateToken(u.ID, deps.Config.JWTSecret, deps.Config.JWTExpires)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		logx.Info("User registered", "user_id", u.ID, "username", u.Username)

		resp.RespondCreated(w, r, "Registration successful", map[string]any{
			"token": token,
			"user":  u.Public(),
		})
	}
}

// HandleLogin checks the credentials, marks the user online, and returns a
// fresh token with the public profile.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input loginRequest
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u, err := deps.Store.GetUserByUsername(r.Context(), strings.TrimSpace(input.Username))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := deps.Store.SetOnline(r.Context(), u.ID, true, ""); err != nil {
			logx.Error(err, "Failed to mark user online at login", "user_id", u.ID)
		} else {
			u.IsOnline = true
		}

		token, err := jwt.GenerateToken(u.ID, deps.Config.JWTSecret, deps.Config.JWTExpires)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		logx.Info("User logged in", "user_id", u.ID, "username", u.Username)

		resp.RespondSuccess(w, r, "Login successful", map[string]any{
			"token": token,
			"user":  u.Public(),
		})
	}
}

// HandleVerify confirms the token still resolves to a live account.
func HandleVerify(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := CurrentUser(r)

		resp.RespondSuccess(w, r, "", map[string]any{
			"user": u.Public(),
		})
	}
}

// HandleGetProfile returns the authenticated user's public profile.
func HandleGetProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := CurrentUser(r)

		resp.RespondSuccess(w, r, "", map[string]any{
			"user": u.Public(),
		})
	}
}

// HandleUpdateProfile updates the user's email address. An empty email clears it.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input updateProfileRequest
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		email := strings.ToLower(strings.TrimSpace(input.Email))
		if email != "" && !emailRegexp.MatchString(email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}

		u := CurrentUser(r)

		updated, err := deps.Store.UpdateEmail(r.Context(), u.ID, email)
		if err != nil {
			if errors.Is(err, store.ErrEmailTaken) {
				resp.RespondError(w, r, errs.NewError(errs.ErrEmailTaken))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, "Profile updated", map[string]any{
			"user": updated.Public(),
		})
	}
}

// HandleChangePassword verifies the current password and replaces it.
func HandleChangePassword(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input changePasswordRequest
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		u := CurrentUser(r)

		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.OldPassword)); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrOldPasswordInvalid))
			return
		}

		if customErr := validatePassword(input.NewPassword); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcryptCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		if err := deps.Store.UpdatePassword(r.Context(), u.ID, string(hash)); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		logx.Info("User changed password", "user_id", u.ID)

		resp.RespondSuccess(w, r, "Password updated", nil)
	}
}
