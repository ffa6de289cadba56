/*
Package store persists user records and upload metadata.

Two implementations exist behind one interface: a durable PostgreSQL store and a
process-lifetime in-memory store. The backend is selected at startup from
configuration; when PostgreSQL is requested but unreachable, the server falls
back to the in-memory store so the application keeps working on a LAN box
without a database.
*/
package store

import (
	"context"
	"errors"
	"time"

	"lanshare/internal/app/user"
	"lanshare/internal/configs"
	"lanshare/internal/pkg/logx"
)

var (
	// ErrNotFound reports that the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUsernameTaken reports a case-insensitive username conflict.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrEmailTaken reports an email conflict.
	ErrEmailTaken = errors.New("email already in use")
)

// Upload is the metadata record kept for every stored upload. The original
// filename is explicit metadata; it is never reconstructed by parsing the
// stored name.
type Upload struct {
	// StoredName is the unique on-storage filename (sanitized base + random suffix).
	StoredName string `json:"filename"`

	// OriginalName is the client-supplied filename, decoded to UTF-8.
	OriginalName string `json:"originalName"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// MimeType is the content type declared at upload time.
	MimeType string `json:"mimetype"`

	// UploaderID is the id of the user who uploaded the file.
	UploaderID string `json:"-"`

	// UploadedAt records when the file was stored.
	UploadedAt time.Time `json:"uploadTime"`
}

// Store is the persistence contract for user records and upload metadata.
// All operations are single-record; no transactions are needed.
type Store interface {
	// CreateUser persists a new user record. It fails with ErrUsernameTaken when
	// the username (case-insensitive) is in use and ErrEmailTaken when the email is.
	CreateUser(ctx context.Context, u *user.User) error

	// GetUserByUsername looks a user up by username, case-insensitively.
	// Returns ErrNotFound when no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)

	// GetUserByID looks a user up by id. Returns ErrNotFound when no such user exists.
	GetUserByID(ctx context.Context, id string) (*user.User, error)

	// SetOnline flips the user's online flag. connID identifies the live chat
	// connection and is cleared when going offline; LastSeen is stamped on the
	// transition to offline.
	SetOnline(ctx context.Context, id string, online bool, connID string) error

	// UpdateEmail replaces the user's email. An empty email clears it. Fails with
	// ErrEmailTaken when another account already uses the address.
	UpdateEmail(ctx context.Context, id string, email string) (*user.User, error)

	// UpdatePassword replaces the user's password hash.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error

	// CreateUpload records metadata for a stored upload.
	CreateUpload(ctx context.Context, rec *Upload) error

	// ListUploads returns all upload records, newest first.
	ListUploads(ctx context.Context) ([]Upload, error)

	// GetUpload fetches the metadata for one stored filename.
	// Returns ErrNotFound when no record exists.
	GetUpload(ctx context.Context, storedName string) (*Upload, error)

	// DeleteUpload removes the metadata record for one stored filename.
	// Returns ErrNotFound when no record exists.
	DeleteUpload(ctx context.Context, storedName string) error

	// Kind names the backing implementation ("postgres" or "memory").
	Kind() string

	// Close releases any held resources.
	Close()
}

// New selects and initializes the Store implementation from configuration.
// A PostgreSQL connection failure is not fatal: the server logs the error and
// falls back to the in-memory store, matching the behavior users of a LAN
// deployment expect (chat works, accounts just do not survive a restart).
func New(ctx context.Context, cfg *configs.AppConfig) Store {
	if cfg.StorageMode == configs.StorageModeMemory {
		logx.Info("Using in-memory store. User data will be lost on restart.")
		return NewMemoryStore()
	}

	pg, err := NewPostgresStore(ctx, cfg.DatabaseDSN)
	if err != nil {
		logx.Error(err, "PostgreSQL connection failed, falling back to in-memory store")
		return NewMemoryStore()
	}

	logx.Info("Connected to PostgreSQL store")
	return pg
}
