// Package redisstore persists club sessions in Redis so they survive server
// restarts and are shared between instances.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	clubErrors "github.com/jrsteele09/tennis-club/internal/errors"
	"github.com/jrsteele09/tennis-club/session"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "club:session:"

// Store implements session.Store on top of a Redis client. Keys expire with
// the session.
type Store struct {
	client  redis.UniversalClient
	prefix  string
	nowTime func() time.Time
}

var _ session.Store = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithNowTime sets the clock used to compute key TTLs (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

func New(client redis.UniversalClient, options ...Option) *Store {
	s := &Store{
		client:  client,
		prefix:  defaultPrefix,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Connect creates a client for addr and checks that it answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[redisstore Connect] %w: %w", clubErrors.ErrStoreUnavailable, err)
	}
	return client, nil
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) Save(ctx context.Context, sess session.Session) error {
	if sess.ID == "" {
		return clubErrors.Wrapf(clubErrors.ErrInvalidRequest, "[redisstore Save] session id is required")
	}

	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.nowTime())
		if ttl <= 0 {
			return clubErrors.Wrapf(clubErrors.ErrSessionExpired, "[redisstore Save]")
		}
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("[redisstore Save] failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("[redisstore Save] %w: %w", clubErrors.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context, id string) (session.Session, error) {
	if id == "" {
		return session.Session{}, clubErrors.ErrSessionNotFound
	}

	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.Session{}, clubErrors.ErrSessionNotFound
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("[redisstore Load] %w: %w", clubErrors.ErrStoreUnavailable, err)
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// A record we cannot read is treated as absent and cleaned up.
		_ = s.client.Del(ctx, s.key(id)).Err()
		return session.Session{}, clubErrors.ErrSessionNotFound
	}
	if sess.Expired(s.nowTime()) {
		_ = s.client.Del(ctx, s.key(id)).Err()
		return session.Session{}, clubErrors.ErrSessionNotFound
	}
	return sess, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("[redisstore Delete] %w: %w", clubErrors.ErrStoreUnavailable, err)
	}
	return nil
}
