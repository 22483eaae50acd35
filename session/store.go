package session

import (
	"context"
	"sync"
	"time"

	clubErrors "github.com/jrsteele09/tennis-club/internal/errors"
)

// Store persists sessions so they survive restarts and page reloads.
// Load returns ErrSessionNotFound for unknown or expired IDs; any other error
// means the store could not be reached.
type Store interface {
	Save(ctx context.Context, sess Session) error
	Load(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	nowTime  func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		nowTime:  time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, sess Session) error {
	if sess.ID == "" {
		return clubErrors.Wrapf(clubErrors.ErrInvalidRequest, "[MemoryStore Save] session id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, clubErrors.ErrSessionNotFound
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	if !ok || sess.Expired(m.nowTime()) {
		return Session{}, clubErrors.ErrSessionNotFound
	}
	return sess, nil
}

// Delete removes a session. Deleting an unknown ID is not an error.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// DeleteExpired removes sessions whose lifetime ended before now.
func (m *MemoryStore) DeleteExpired(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, sess := range m.sessions {
		if sess.Expired(now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
