// Package store provides conversation storage backends for zulubot.
//
// This file implements the SQLite-backed conversation store.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	"github.com/zulu-club/zulubot/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists conversation turns in a SQLite database, one row per
// turn. Appends for distinct sessions never contend on shared state.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("SQLiteStore.NewSQLiteStore: creating SQLite store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLiteStore.NewSQLiteStore: migrations applied", "path", dsn)

	return &SQLiteStore{db: db}, nil
}

// AppendTurn inserts one turn row for the session.
func (s *SQLiteStore) AppendTurn(ctx context.Context, sessionID string, turn models.Turn) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_turns (session_id, role, content) VALUES (?, ?, ?)`,
		sessionID, string(turn.Role), turn.Content)
	if err != nil {
		slog.Error("SQLiteStore.AppendTurn failed", "error", err, "session", sessionID)
		return fmt.Errorf("failed to insert turn for session %s: %w", sessionID, err)
	}
	slog.Debug("SQLiteStore.AppendTurn succeeded", "session", sessionID, "role", turn.Role)
	return nil
}

// History returns the session's full history in append order.
func (s *SQLiteStore) History(ctx context.Context, sessionID string) ([]models.Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM conversation_turns WHERE session_id = ? ORDER BY id`,
		sessionID)
	if err != nil {
		slog.Error("SQLiteStore.History query failed", "error", err, "session", sessionID)
		return nil, fmt.Errorf("failed to query history for session %s: %w", sessionID, err)
	}
	defer rows.Close()
	return scanTurns(rows)
}

// RecentHistory returns the last limit turns in original order.
func (s *SQLiteStore) RecentHistory(ctx context.Context, sessionID string, limit int) ([]models.Turn, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM conversation_turns WHERE session_id = ? ORDER BY id DESC LIMIT ?`,
		sessionID, limit)
	if err != nil {
		slog.Error("SQLiteStore.RecentHistory query failed", "error", err, "session", sessionID)
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
func (s *SQLiteStore) Sessions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT session_id FROM conversation_turns`)
	if err != nil {
		slog.Error("SQLiteStore.Sessions query failed", "error", err)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()
	return scanSessionIDs(rows)
}

// ClearTurns deletes all conversation rows (for tests).
func (s *SQLiteStore) ClearTurns() error {
	_, err := s.db.Exec(`DELETE FROM conversation_turns`)
	if err != nil {
		slog.Error("SQLiteStore.ClearTurns failed", "error", err)
		return err
	}
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("SQLiteStore.Close: closing database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
