package gate

import (
	"context"
	"sync"

	"github.com/jrsteele09/tennis-club/session"
)

// Navigator runs navigations through the gate one decision at a time. Only
// the most recent attempt is honoured: a decision whose attempt was replaced
// or whose context was cancelled resolves to Superseded and is dropped.
type Navigator struct {
	gate     *Gate
	provider session.Provider
	redirect Redirector

	mu       sync.Mutex
	latest   uint64
	location string
}

func NewNavigator(g *Gate, provider session.Provider, redirect Redirector) *Navigator {
	if g == nil {
		g = defaultGate
	}
	return &Navigator{
		gate:     g,
		provider: provider,
		redirect: redirect,
	}
}

// Navigate evaluates target and, if the attempt is still current, applies the
// decision: Allow moves to target, Deny redirects to the login page. The
// redirect runs while the attempt is held current and must not call Navigate.
func (n *Navigator) Navigate(ctx context.Context, target string) Decision {
	n.mu.Lock()
	n.latest++
	attempt := n.latest
	n.mu.Unlock()

	d := n.gate.Evaluate(ctx, n.provider, target)

	n.mu.Lock()
	defer n.mu.Unlock()
	if attempt != n.latest || ctx.Err() != nil {
		return Decision{Outcome: Superseded, PreservedPath: target}
	}

	switch d.Outcome {
	case Allow:
		n.location = target
	case Deny:
		n.location = d.RedirectURL()
		if n.redirect != nil {
			n.redirect.Redirect(ctx, n.location)
		}
	}
	return d
}

// Location is where the last applied decision left the navigator.
func (n *Navigator) Location() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.location
}
