// Package store provides conversation storage backends for zulubot.
//
// This file implements the PostgreSQL-backed conversation store.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/zulu-club/zulubot/internal/models"
	_ "github.com/lib/pq"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists conversation turns in PostgreSQL, one row per turn.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run Postgres migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("PostgresStore.NewPostgresStore: migrations applied")

	return &PostgresStore{db: db}, nil
}

// AppendTurn inserts one turn row for the session.
func (s *PostgresStore) AppendTurn(ctx context.Context, sessionID string, turn models.Turn) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_turns (session_id, role, content) VALUES ($1, $2, $3)`,
		sessionID, string(turn.Role), turn.Content)
	if err != nil {
		slog.Error("PostgresStore.AppendTurn failed", "error", err, "session", sessionID)
		return fmt.Errorf("failed to insert turn for session %s: %w", sessionID, err)
	}
	slog.Debug("PostgresStore.AppendTurn succeeded", "session", sessionID, "role", turn.Role)
	return nil
}

// History returns the session's full history in append order.
func (s *PostgresStore) History(ctx context.Context, sessionID string) ([]models.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM conversation_turns WHERE session_id = $1 ORDER BY id`,
		sessionID)
	if err != nil {
		slog.Error("PostgresStore.History query failed", "error", err, "session", sessionID)
		return nil, fmt.Errorf("failed to query history for session %s: %w", sessionID, err)
	}
	defer rows.Close()
	return scanTurns(rows)
}

// RecentHistory returns the last limit turns in original order.
func (s *PostgresStore) RecentHistory(ctx context.Context, sessionID string, limit int) ([]models.Turn, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM conversation_turns WHERE session_id = $1 ORDER BY id DESC LIMIT $2`,
		sessionID, limit)
	if err != nil {
		slog.Error("PostgresStore.RecentHistory query failed", "error", err, "session", sessionID)
		return nil, fmt.Errorf("failed to query recent history for session %s: %w", sessionID, err)
	}
	defer rows.Close()
	turns, err := scanTurns(rows)
	if err != nil {
		return nil, err
	}
	reverseTurns(turns)
	return turns, nil
}

// Sessions returns the distinct session identifiers.
func (s *PostgresStore) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT session_id FROM conversation_turns`)
	if err != nil {
		slog.Error("PostgresStore.Sessions query failed", "error", err)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()
	return scanSessionIDs(rows)
}

// Close closes the Postgres connection pool.
func (s *PostgresStore) Close() error {
	slog.Debug("PostgresStore.Close: closing connection pool")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
