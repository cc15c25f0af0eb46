// Package postgres provides a Postgres-backed implementation of
// storage.Store using pgx through the database/sql stdlib adapter.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/jsandh/splitbook/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// schema contains the DDL run on startup. Constraint names are explicit
// because error mapping keys off them.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL,
    email TEXT NOT NULL,
    image TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    CONSTRAINT users_username_key UNIQUE (username),
    CONSTRAINT users_email_key UNIQUE (email)
);

CREATE TABLE IF NOT EXISTS groups (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    CONSTRAINT groups_name_key UNIQUE (name)
);

CREATE TABLE IF NOT EXISTS memberships (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    created_at BIGINT NOT NULL,
    CONSTRAINT memberships_group_id_user_id_key UNIQUE (group_id, user_id),
    CONSTRAINT memberships_group_id_fkey FOREIGN KEY (group_id) REFERENCES groups(id),
    CONSTRAINT memberships_user_id_fkey FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS ledger_entries (
    group_id TEXT NOT NULL,
    this_user TEXT NOT NULL,
    other_user TEXT NOT NULL,
    amount BIGINT NOT NULL DEFAULT 0,
    CONSTRAINT ledger_entries_pkey PRIMARY KEY (group_id, this_user, other_user),
    CONSTRAINT ledger_entries_group_id_fkey FOREIGN KEY (group_id) REFERENCES groups(id),
    CONSTRAINT ledger_entries_this_user_fkey FOREIGN KEY (this_user) REFERENCES users(id),
    CONSTRAINT ledger_entries_other_user_fkey FOREIGN KEY (other_user) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS transactions (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    payer_id TEXT NOT NULL,
    payee_id TEXT NOT NULL,
    amount BIGINT NOT NULL,
    kind TEXT NOT NULL,
    ack_status TEXT NOT NULL,
    metadata JSONB NOT NULL DEFAULT '{}',
    created_at BIGINT NOT NULL,
    CONSTRAINT transactions_group_id_fkey FOREIGN KEY (group_id) REFERENCES groups(id),
    CONSTRAINT transactions_payer_id_fkey FOREIGN KEY (payer_id) REFERENCES users(id),
    CONSTRAINT transactions_payee_id_fkey FOREIGN KEY (payee_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_memberships_group_id ON memberships(group_id);
CREATE INDEX IF NOT EXISTS idx_memberships_user_id ON memberships(user_id);
CREATE INDEX IF NOT EXISTS idx_transactions_group_id ON transactions(group_id);
`

// Store implements storage.Store using Postgres.
type Store struct {
	db *sql.DB
}

// New opens a Postgres-backed store using the provided DSN and applies the
// schema on startup.
func New(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Begin opens a new unit of work. Serializable isolation keeps the
// read-members-then-insert-pairs sequence safe against concurrent joins on
// the same group.
func (s *Store) Begin(ctx context.Context) (storage.Tx, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &pgTx{tx: tx}, nil
}

// pgTx implements storage.Tx over *sql.Tx.
type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) Commit() error {
	return t.tx.Commit()
}

func (t *pgTx) Rollback() error {
	return t.tx.Rollback()
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// onConstraint maps a violation of the named constraint to mapped. Other
// errors pass through unchanged.
func onConstraint(err error, constraint string, mapped error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == constraint {
		return mapped
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
