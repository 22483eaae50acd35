package gate_test

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/jrsteele09/tennis-club/gate"
	"github.com/jrsteele09/tennis-club/session"
	"github.com/stretchr/testify/require"
)

// recordingRedirector captures every redirect issued by the gate.
type recordingRedirector struct {
	targets []string
}

func (r *recordingRedirector) Redirect(_ context.Context, target string) {
	r.targets = append(r.targets, target)
}

// countingProvider answers with a fixed value and counts queries.
type countingProvider struct {
	authenticated bool
	calls         int
}

func (p *countingProvider) IsAuthenticated(context.Context) (bool, error) {
	p.calls++
	return p.authenticated, nil
}

func TestGate_Evaluate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		provider session.Provider
		target   string
		allowed  bool
		redirect string
	}{
		{
			name:     "authenticated",
			provider: session.Static(true),
			target:   "/players",
			allowed:  true,
		},
		{
			name:     "unauthenticated protected",
			provider: session.Static(false),
			target:   "/protected",
			redirect: "/login?returnUrl=/protected",
		},
		{
			name:     "nested segments preserved",
			provider: session.Static(false),
			target:   "/tournaments/123/details",
			redirect: "/login?returnUrl=/tournaments/123/details",
		},
		{
			name:     "provider error fails closed",
			provider: session.Failed(errors.New("storage unavailable")),
			target:   "/rankings",
			redirect: "/login?returnUrl=/rankings",
		},
		{
			name: "provider panic fails closed",
			provider: session.ProviderFunc(func(context.Context) (bool, error) {
				panic("token store exploded")
			}),
			target:   "/blog/admin",
			redirect: "/login?returnUrl=/blog/admin",
		},
		{
			name:     "nil provider fails closed",
			provider: nil,
			target:   "/players/9",
			redirect: "/login?returnUrl=/players/9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := gate.Evaluate(ctx, tt.provider, tt.target)
			require.Equal(t, tt.allowed, d.Allowed())
			if tt.allowed {
				require.Equal(t, gate.Allow, d.Outcome)
				require.Empty(t, d.RedirectURL())
				return
			}
			require.Equal(t, gate.Deny, d.Outcome)
			require.Equal(t, "/login", d.RedirectTarget)
			require.Equal(t, tt.target, d.PreservedPath)
			require.Equal(t, tt.redirect, d.RedirectURL())
		})
	}
}

func TestGate_ReturnURLRoundTrips(t *testing.T) {
	targets := []string{
		"/tournaments/123/details?tab=draw&round=2",
		"/Players/ABC",
		"/blog/admin/posts/a b+c",
		"/rankings#top",
		"/players/%2Fencoded",
	}

	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			d := gate.Evaluate(context.Background(), session.Static(false), target)

			u, err := url.Parse(d.RedirectURL())
			require.NoError(t, err)
			require.Equal(t, "/login", u.Path)
			require.Equal(t, target, u.Query().Get("returnUrl"))
		})
	}
}

func TestGate_Idempotent(t *testing.T) {
	ctx := context.Background()
	g := gate.New()

	for _, authenticated := range []bool{true, false} {
		p := &countingProvider{authenticated: authenticated}
		first := g.Evaluate(ctx, p, "/tournaments")
		second := g.Evaluate(ctx, p, "/tournaments")
		require.Equal(t, first, second)
		// No caching: the provider is asked each time.
		require.Equal(t, 2, p.calls)
	}
}

func TestGate_Check(t *testing.T) {
	ctx := context.Background()
	g := gate.New()

	t.Run("allow issues no redirect", func(t *testing.T) {
		r := &recordingRedirector{}
		require.True(t, g.Check(ctx, session.Static(true), "/players", r))
		require.Empty(t, r.targets)
	})

	t.Run("deny redirects to login", func(t *testing.T) {
		r := &recordingRedirector{}
		require.False(t, g.Check(ctx, session.Static(false), "/protected", r))
		require.Equal(t, []string{"/login?returnUrl=/protected"}, r.targets)
	})

	t.Run("nil redirector", func(t *testing.T) {
		require.False(t, g.Check(ctx, session.Static(false), "/protected", nil))
	})
}

func TestGate_Options(t *testing.T) {
	g := gate.New(gate.WithLoginPath("/members/sign-in"), gate.WithReturnParam("next"))

	d := g.Evaluate(context.Background(), session.Static(false), "/rankings")
	require.Equal(t, "/members/sign-in?next=/rankings", d.RedirectURL())
}

func TestGate_CancelledContextDenies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := session.ProviderFunc(func(ctx context.Context) (bool, error) {
		return false, ctx.Err()
	})
	d := gate.Evaluate(ctx, provider, "/players")
	require.Equal(t, gate.Deny, d.Outcome)
}

func TestOutcome_String(t *testing.T) {
	require.Equal(t, "allow", gate.Allow.String())
	require.Equal(t, "deny", gate.Deny.String())
	require.Equal(t, "superseded", gate.Superseded.String())

	var zero gate.Decision
	require.False(t, zero.Allowed())
}
