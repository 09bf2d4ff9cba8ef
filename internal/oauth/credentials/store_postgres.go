package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Registers the postgres driver.
	_ "github.com/lib/pq"

	"github.com/waveer/oauth-gateway/pkg/sentinel"
)

// PostgresStore reads profiles from the shared user database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres opens a connection pool for the given DSN and verifies it.
func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// FindByEmail returns the profile for an email, or sentinel.ErrNotFound.
// Transport failures wrap sentinel.ErrUnavailable so the grant flow
// maps them to server_error instead of invalid_credentials.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	var p Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, COALESCE(full_name, name, ''), password_hash FROM profiles WHERE email = $1`,
		email,
	).Scan(&p.ID, &p.Email, &p.Name, &p.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup profile by email: %w: %w", err, sentinel.ErrUnavailable)
	}
	return &p, nil
}

// FindByID returns the profile for a subject id, or sentinel.ErrNotFound.
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*Profile, error) {
	var p Profile
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, COALESCE(full_name, name, ''), password_hash FROM profiles WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Email, &p.Name, &p.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup profile by id: %w: %w", err, sentinel.ErrUnavailable)
	}
	return &p, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
