package session_test

import (
	"context"
	"testing"
	"time"

	clubErrors "github.com/jrsteele09/tennis-club/internal/errors"
	"github.com/jrsteele09/tennis-club/session"
	"github.com/stretchr/testify/require"
)

func storedSession(id string, expiresAt time.Time) session.Session {
	return session.Session{
		ID:        id,
		Token:     "tok-" + id,
		User:      &session.UserIdentity{ID: "member-1", Email: "ana@club.test"},
		CreatedAt: expiresAt.Add(-time.Hour),
		ExpiresAt: expiresAt,
	}
}

func TestMemoryStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	sess := storedSession("s-1", time.Now().Add(time.Hour))
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Load(ctx, "s-1")
	require.NoError(t, err)
	require.Equal(t, sess.Token, got.Token)

	require.NoError(t, store.Delete(ctx, "s-1"))
	_, err = store.Load(ctx, "s-1")
	require.ErrorIs(t, err, clubErrors.ErrSessionNotFound)

	// Deleting twice is fine
	require.NoError(t, store.Delete(ctx, "s-1"))
}

func TestMemoryStore_Errors(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	require.ErrorIs(t, store.Save(ctx, session.Session{}), clubErrors.ErrInvalidRequest)

	_, err := store.Load(ctx, "")
	require.ErrorIs(t, err, clubErrors.ErrSessionNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	now := time.Now()

	require.NoError(t, store.Save(ctx, storedSession("old", now.Add(-time.Minute))))
	require.NoError(t, store.Save(ctx, storedSession("live", now.Add(time.Hour))))

	_, err := store.Load(ctx, "old")
	require.ErrorIs(t, err, clubErrors.ErrSessionNotFound)

	require.Equal(t, 1, store.DeleteExpired(now))
	require.Equal(t, 1, store.Len())

	_, err = store.Load(ctx, "live")
	require.NoError(t, err)
}
