package store

import (
	"context"
	"sync"

	"github.com/zulu-club/zulubot/internal/models"
)

// InMemoryStore keeps session histories in a mutex-guarded map. Retention is
// capped per session; older turns are discarded once the cap is reached.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]models.Turn
	maxTurns int
}

// NewInMemoryStore creates an empty in-memory store with default retention.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string][]models.Turn),
		maxTurns: DefaultMaxTurnsInMemory,
	}
}

// AppendTurn creates the session if absent and appends the turn.
func (s *InMemoryStore) AppendTurn(ctx context.Context, sessionID string, turn models.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.sessions[sessionID], turn)
	if s.maxTurns > 0 && len(history) > s.maxTurns {
		history = history[len(history)-s.maxTurns:]
	}
	s.sessions[sessionID] = history
	return nil
}

// History returns the retained history for the session in append order.
func (s *InMemoryStore) History(ctx context.Context, sessionID string) ([]models.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.sessions[sessionID]
	out := make([]models.Turn, len(history))
	copy(out, history)
	return out, nil
}

// RecentHistory returns the last limit turns in original order.
func (s *InMemoryStore) RecentHistory(ctx context.Context, sessionID string, limit int) ([]models.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return tail(s.sessions[sessionID], limit), nil
}

// Sessions returns the known session identifiers.
func (s *InMemoryStore) Sessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
