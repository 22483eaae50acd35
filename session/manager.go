package session

import (
	"context"
	"errors"
)

// Manager creates per-requester States sharing one Store and one token issuer.
type Manager struct {
	store  Store
	tokens *Tokens
}

func NewManager(store Store, tokens *Tokens) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewManager] tokens is required")
	}
	return &Manager{store: store, tokens: tokens}, nil
}

// New returns an unauthenticated State.
func (m *Manager) New() *State {
	return NewState(m.store, m.tokens)
}

// Lookup returns a State rehydrated from the session stored under id.
func (m *Manager) Lookup(ctx context.Context, id string) (*State, error) {
	st := m.New()
	if id == "" {
		return st, nil
	}
	if err := st.Rehydrate(ctx, id); err != nil {
		return st, err
	}
	return st, nil
}

func (m *Manager) Tokens() *Tokens {
	return m.tokens
}
