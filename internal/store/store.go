// Package store provides conversation storage backends for zulubot.
//
// A Store keeps the ordered turn history per WhatsApp session. Backends:
// an in-memory store for tests and ephemeral runs, SQLite for single-node
// deployments and PostgreSQL for deployments with a DATABASE_URL. The SQL
// backends write one row per turn, so concurrent sessions never overwrite
// each other's history.
package store

import (
	"context"
	"strings"

	"github.com/zulu-club/zulubot/internal/models"
)

// Constants for store configuration
const (
	// DefaultRecentLimit is how many trailing turns flows request for context.
	DefaultRecentLimit = 6
	// DefaultMaxTurnsInMemory caps per-session retention in the in-memory store.
	DefaultMaxTurnsInMemory = 64
)

// Store persists conversation turns keyed by session identifier.
type Store interface {
	// AppendTurn creates the session if absent and appends a turn to its end.
	AppendTurn(ctx context.Context, sessionID string, turn models.Turn) error

	// History returns the session's full retained history in append order.
	// An unknown session yields an empty history, not an error.
	History(ctx context.Context, sessionID string) ([]models.Turn, error)

	// RecentHistory returns the last limit turns in original order, or fewer
	// if the history is shorter.
	RecentHistory(ctx context.Context, sessionID string, limit int) ([]models.Turn, error)

	// Sessions returns the known session identifiers. Order is unspecified.
	Sessions(ctx context.Context) ([]string, error)

	// Close releases any underlying resources.
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithSQLiteDSN sets the SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN sets the PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType reports "postgres" for PostgreSQL-shaped DSNs and "sqlite"
// for everything else (file paths).
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// tail returns the last limit turns of history in original order.
func tail(history []models.Turn, limit int) []models.Turn {
	if limit <= 0 || len(history) == 0 {
		return nil
	}
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]models.Turn, len(history))
	copy(out, history)
	return out
}
