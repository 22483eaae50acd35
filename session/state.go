package session

import (
	"context"
	"sync"

	clubErrors "github.com/jrsteele09/tennis-club/internal/errors"
	"github.com/rs/zerolog/log"
)

// State is the live session of one requester (a browser tab, or one request
// on the server). It implements Provider and publishes identity changes to
// subscribers.
type State struct {
	store  Store
	tokens *Tokens

	mu      sync.RWMutex
	current Session
	subs    map[int]chan *UserIdentity
	nextSub int
}

var _ Provider = (*State)(nil)

func NewState(store Store, tokens *Tokens) *State {
	return &State{
		store:  store,
		tokens: tokens,
		subs:   make(map[int]chan *UserIdentity),
	}
}

// Rehydrate restores the session persisted under id. An unknown id leaves the
// state unauthenticated; only store failures are returned.
func (s *State) Rehydrate(ctx context.Context, id string) error {
	sess, err := s.store.Load(ctx, id)
	if clubErrors.Is(err, clubErrors.ErrSessionNotFound) {
		s.set(Session{})
		return nil
	}
	if err != nil {
		return clubErrors.Wrapf(err, "[State Rehydrate] failed to load session")
	}
	s.set(sess)
	return nil
}

// IsAuthenticated validates the held token, including its expiry. A token that
// is no longer valid destroys the session.
func (s *State) IsAuthenticated(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	cur := s.Current()
	if !cur.HasCredential() {
		return false, nil
	}
	if _, err := s.tokens.Validate(cur.Token); err != nil {
		log.Debug().Err(err).Str("session_id", cur.ID).Msg("session token rejected")
		s.invalidate(ctx, cur.ID)
		return false, nil
	}
	return true, nil
}

// CurrentUser returns the authenticated identity, or nil. It agrees with
// IsAuthenticated at the time of the call.
func (s *State) CurrentUser(ctx context.Context) *UserIdentity {
	if ok, err := s.IsAuthenticated(ctx); !ok || err != nil {
		return nil
	}
	cur := s.Current()
	if cur.User == nil {
		return nil
	}
	user := *cur.User
	return &user
}

// Current returns a snapshot of the held session without validating it.
func (s *State) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Login issues a token for user, persists the new session and replaces any
// session held before.
func (s *State) Login(ctx context.Context, user UserIdentity) (Session, error) {
	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return Session{}, err
	}

	sess, err := NewSession(claims.ID, token, &user, claims.IssuedAt.Time, claims.ExpiresAt.Time)
	if err != nil {
		return Session{}, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return Session{}, clubErrors.Wrapf(err, "[State Login] failed to save session")
	}

	previous := s.Current()
	s.set(sess)

	if previous.HasCredential() && previous.ID != sess.ID {
		s.discard(ctx, previous)
	}
	return sess, nil
}

// Logout revokes and deletes the held session. The local state is cleared even
// when the store cannot be reached; that error is still returned.
func (s *State) Logout(ctx context.Context) error {
	cur := s.Current()
	if !cur.HasCredential() {
		return nil
	}
	s.set(Session{})
	return s.discard(ctx, cur)
}

// Subscribe returns a stream of identity changes, starting with the current
// identity. A nil value means signed out. Slow readers only miss intermediate
// values; the latest one is always delivered. Call cancel to unsubscribe.
func (s *State) Subscribe(buffer int) (<-chan *UserIdentity, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan *UserIdentity, buffer)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- identityOf(s.current)
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			close(ch)
			s.mu.Unlock()
		})
	}
}

func (s *State) discard(ctx context.Context, sess Session) error {
	if claims, err := s.tokens.Validate(sess.Token); err == nil {
		if err := s.tokens.Revoke(claims); err != nil {
			log.Err(err).Str("session_id", sess.ID).Msg("failed to revoke session token")
		}
	}
	if err := s.store.Delete(ctx, sess.ID); err != nil {
		return clubErrors.Wrapf(err, "[State Logout] failed to delete session")
	}
	return nil
}

func (s *State) invalidate(ctx context.Context, id string) {
	s.mu.Lock()
	if s.current.ID != id {
		s.mu.Unlock()
		return
	}
	s.current = Session{}
	s.publishLocked()
	s.mu.Unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		log.Err(err).Str("session_id", id).Msg("failed to delete invalid session")
	}
}

func (s *State) set(sess Session) {
	if !sess.HasCredential() {
		sess = Session{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = sess
	s.publishLocked()
}

func (s *State) publishLocked() {
	identity := identityOf(s.current)
	for _, ch := range s.subs {
		select {
		case ch <- identity:
			continue
		default:
		}
		// Buffer full: replace the oldest pending value.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- identity:
		default:
		}
	}
}

func identityOf(sess Session) *UserIdentity {
	if !sess.HasCredential() {
		return nil
	}
	user := *sess.User
	return &user
}
