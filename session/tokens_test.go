package session_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	clubErrors "github.com/jrsteele09/tennis-club/internal/errors"
	"github.com/jrsteele09/tennis-club/session"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-session-secret"

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestClock() *testClock {
	return &testClock{now: time.Now().UTC().Truncate(time.Second)}
}

func testIdentity() session.UserIdentity {
	return session.UserIdentity{
		ID:    "member-1",
		Email: "ana@club.test",
		Name:  "Ana Ivanovic",
		Roles: []string{"member"},
	}
}

func TestNewTokens_Validation(t *testing.T) {
	_, err := session.NewTokens("", time.Hour)
	require.Error(t, err)

	_, err = session.NewTokens(testSecret, 0)
	require.Error(t, err)
}

func TestTokens_IssueAndValidate(t *testing.T) {
	clock := newTestClock()
	tokens, err := session.NewTokens(testSecret, time.Hour, session.WithNowTime(clock.Now))
	require.NoError(t, err)

	raw, claims, err := tokens.Issue(testIdentity())
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.NotEmpty(t, claims.ID)
	require.True(t, clock.now.Add(time.Hour).Equal(claims.ExpiresAt.Time))

	got, err := tokens.Validate(raw)
	require.NoError(t, err)
	require.Equal(t, claims.ID, got.ID)

	identity := got.Identity()
	require.Equal(t, "member-1", identity.ID)
	require.Equal(t, "ana@club.test", identity.Email)
	require.Equal(t, []string{"member"}, identity.Roles)
}

func TestTokens_IssueRequiresIdentity(t *testing.T) {
	tokens, err := session.NewTokens(testSecret, time.Hour)
	require.NoError(t, err)

	_, _, err = tokens.Issue(session.UserIdentity{Email: "no-id@club.test"})
	require.ErrorIs(t, err, clubErrors.ErrInvalidRequest)
}

func TestTokens_Expiry(t *testing.T) {
	clock := newTestClock()
	tokens, err := session.NewTokens(testSecret, time.Hour, session.WithNowTime(clock.Now))
	require.NoError(t, err)

	raw, _, err := tokens.Issue(testIdentity())
	require.NoError(t, err)

	clock.Advance(59 * time.Minute)
	_, err = tokens.Validate(raw)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	_, err = tokens.Validate(raw)
	require.ErrorIs(t, err, clubErrors.ErrTokenExpired)
}

func TestTokens_Rejects(t *testing.T) {
	tokens, err := session.NewTokens(testSecret, time.Hour)
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := tokens.Validate("")
		require.ErrorIs(t, err, clubErrors.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Validate("not.a.token")
		require.ErrorIs(t, err, clubErrors.ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := session.NewTokens("another-secret", time.Hour)
		require.NoError(t, err)
		raw, _, err := other.Issue(testIdentity())
		require.NoError(t, err)

		_, err = tokens.Validate(raw)
		require.ErrorIs(t, err, clubErrors.ErrInvalidToken)
	})

	t.Run("no expiry", func(t *testing.T) {
		claims := jwtlib.MapClaims{"iss": "tennis-club", "sub": "member-1"}
		raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = tokens.Validate(raw)
		require.ErrorIs(t, err, clubErrors.ErrInvalidToken)
	})
}

func TestTokens_Revoke(t *testing.T) {
	revoked := session.NewInMemoryRevokedTokens()
	tokens, err := session.NewTokens(testSecret, time.Hour, session.WithRevokedTokens(revoked))
	require.NoError(t, err)

	raw, claims, err := tokens.Issue(testIdentity())
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(claims))
	require.True(t, revoked.IsRevoked(claims.ID))

	_, err = tokens.Validate(raw)
	require.ErrorIs(t, err, clubErrors.ErrTokenRevoked)
}

func TestInMemoryRevokedTokens_Cleanup(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	revoked := session.NewInMemoryRevokedTokens()
	require.NoError(t, revoked.Add("old", now.Add(-time.Minute)))
	require.NoError(t, revoked.Add("fresh", now.Add(time.Minute)))

	require.Equal(t, 1, revoked.Cleanup(now))
	require.False(t, revoked.IsRevoked("old"))
	require.True(t, revoked.IsRevoked("fresh"))
}
