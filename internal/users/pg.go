package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusgate/campusgate/internal/platform/httpx"
	"github.com/campusgate/campusgate/internal/rbac"
)

// PGStore implements Store on PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore constructs a PostgreSQL-backed registry.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

const findUserQuery = `
SELECT username, password_hash, role, enabled, account_expired, account_locked, credentials_expired
FROM app_users
WHERE username = $1`

// FindByUsername fetches a record by exact username.
func (s *PGStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	var (
		user User
		role string
	)
	err := s.pool.QueryRow(ctx, findUserQuery, username).Scan(
		&user.Username,
		&user.PasswordHash,
		&role,
		&user.Enabled,
		&user.AccountExpired,
		&user.AccountLocked,
		&user.CredentialsExpired,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	user.Role = rbac.Role(role)
	return &user, nil
}

const createUserQuery = `
INSERT INTO app_users (username, password_hash, role, enabled, account_expired, account_locked, credentials_expired)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// CreateUser inserts a new record. A username collision is reported as
// httpx.ErrDuplicate.
func (s *PGStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.pool.Exec(ctx, createUserQuery,
		user.Username,
		user.PasswordHash,
		string(user.Role),
		user.Enabled,
		user.AccountExpired,
		user.AccountLocked,
		user.CredentialsExpired,
	)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return httpx.ErrDuplicate
		}
		return err
	}
	return nil
}

var _ Store = (*PGStore)(nil)
