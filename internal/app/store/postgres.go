package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"lanshare/internal/app/user"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// PostgresStore is the durable implementation of Store, backed by a pgx
// connection pool. Schema management happens at startup through embedded
// goose migrations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore initializes a new PostgreSQL connection pool and executes
// database migrations. Connection failure is returned to the caller so the
// factory can fall back to the in-memory store.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := runMigrations(sqlDB); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// runMigrations applies all pending migrations from the embedded file system.
func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// uniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (code 23505) and returns the violated constraint name.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.ConstraintName, true
	}
	return "", false
}

const userColumns = `id, username, password_hash, COALESCE(email, ''), avatar, is_online, COALESCE(conn_id, ''), last_seen, joined_at`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Email,
		&u.Avatar,
		&u.IsOnline,
		&u.ConnID,
		&u.LastSeen,
		&u.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, email, avatar, is_online, last_seen, joined_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		u.ID, u.Username, u.PasswordHash, u.Email, u.Avatar, u.IsOnline, u.LastSeen, u.JoinedAt)

	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if strings.Contains(constraint, "email") {
				return ErrEmailTaken
			}
			return ErrUsernameTaken
		}
		return err
	}

	return nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1)`
	return scanUser(s.pool.QueryRow(ctx, query, username))
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresStore) SetOnline(ctx context.Context, id string, online bool, connID string) error {
	query := `
		UPDATE users
		SET is_online = $2,
		    conn_id = CASE WHEN $2 THEN NULLIF($3, '') ELSE NULL END,
		    last_seen = CASE WHEN $2 THEN last_seen ELSE now() END
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id, online, connID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStore) UpdateEmail(ctx context.Context, id string, email string) (*user.User, error) {
	query := `
		UPDATE users SET email = NULLIF($2, '')
		WHERE id = $1
		RETURNING ` + userColumns

	u, err := scanUser(s.pool.QueryRow(ctx, query, id, email))
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok && strings.Contains(constraint, "email") {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return u, nil
}

func (s *PostgresStore) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStore) CreateUpload(ctx context.Context, rec *Upload) error {
	query := `
		INSERT INTO uploads (stored_name, original_name, size, mime_type, uploader_id, uploaded_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`

	_, err := s.pool.Exec(ctx, query,
		rec.StoredName, rec.OriginalName, rec.Size, rec.MimeType, rec.UploaderID, rec.UploadedAt)

	return err
}

func (s *PostgresStore) ListUploads(ctx context.Context) ([]Upload, error) {
	query := `
		SELECT stored_name, original_name, size, mime_type, COALESCE(uploader_id::text, ''), uploaded_at
		FROM uploads
		ORDER BY uploaded_at DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Upload
	for rows.Next() {
		var rec Upload
		if err := rows.Scan(&rec.StoredName, &rec.OriginalName, &rec.Size, &rec.MimeType, &rec.UploaderID, &rec.UploadedAt); err != nil {
			return nil, err
		}
		list = append(list, rec)
	}

	return list, rows.Err()
}

func (s *PostgresStore) GetUpload(ctx context.Context, storedName string) (*Upload, error) {
	query := `
		SELECT stored_name, original_name, size, mime_type, COALESCE(uploader_id::text, ''), uploaded_at
		FROM uploads
		WHERE stored_name = $1`

	var rec Upload
	err := s.pool.QueryRow(ctx, query, storedName).
		Scan(&rec.StoredName, &rec.OriginalName, &rec.Size, &rec.MimeType, &rec.UploaderID, &rec.UploadedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &rec, nil
}

func (s *PostgresStore) DeleteUpload(ctx context.Context, storedName string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM uploads WHERE stored_name = $1`, storedName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStore) Kind() string { return "postgres" }

func (s *PostgresStore) Close() {
	s.pool.Close()
}
