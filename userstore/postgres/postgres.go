// Package postgres provides a PostgreSQL-backed UserStore built on pgx
// connection pools. It is the durable account store for multi-node
// deployments where the in-memory store will not do.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/authgate-dev/authgate"
)

// uniqueViolation is the PostgreSQL error code raised by the email unique
// constraint.
const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    firstname     TEXT NOT NULL DEFAULT '',
    lastname      TEXT NOT NULL DEFAULT '',
    role          TEXT NOT NULL DEFAULT 'USER',
    enabled       BOOLEAN NOT NULL DEFAULT TRUE,
    locked        BOOLEAN NOT NULL DEFAULT FALSE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Config holds pool settings. DSN is required; the rest default to pgx's
// own defaults when zero.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	// MigrateOnStart creates the users table if it does not exist.
	MigrateOnStart bool
}

// Store implements authgate.UserStore on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ authgate.UserStore = (*Store)(nil)

// New connects, verifies the connection, and optionally runs the schema
// migration. The caller owns the store and must Close it.
func New(ctx context.Context, cfg Config) (*Store, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if cfg.MigrateOnStart {
		if _, err := pool.Exec(ctx, schema); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) FindByEmail(ctx context.Context, email string) (authgate.User, error) {
	const q = `SELECT id, email, password_hash, firstname, lastname, role, enabled, locked, created_at
	           FROM users WHERE lower(email) = lower($1)`
	var u authgate.User
	err := s.pool.QueryRow(ctx, q, email).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Firstname, &u.Lastname,
		&u.Role, &u.Enabled, &u.Locked, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return authgate.User{}, authgate.ErrUserNotFound
	}
	if err != nil {
		return authgate.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`
	var exists bool
	if err := s.pool.QueryRow(ctx, q, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}

func (s *Store) Save(ctx context.Context, user authgate.User) (authgate.User, error) {
	const q = `INSERT INTO users (email, password_hash, firstname, lastname, role, enabled, locked)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)
	           RETURNING id, created_at`
	err := s.pool.QueryRow(ctx, q,
		user.Email, user.PasswordHash, user.Firstname, user.Lastname,
		user.Role, user.Enabled, user.Locked,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return authgate.User{}, authgate.ErrAccountExists
		}
		return authgate.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}
