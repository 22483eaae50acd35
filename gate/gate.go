// Package gate decides whether a navigation to a protected club view may
// proceed. It consults a session.Provider and, when access is denied,
// redirects to the login page carrying the requested path as returnUrl.
//
// The gate is stateless and never mutates the session. Any failure to
// determine the session state denies access.
package gate

import (
	"context"

	"github.com/jrsteele09/tennis-club/session"
)

const (
	DefaultLoginPath      = "/login"
	DefaultReturnURLParam = "returnUrl"
)

// Redirector issues the redirect for a denied navigation.
type Redirector interface {
	Redirect(ctx context.Context, target string)
}

// RedirectFunc adapts a function to Redirector.
type RedirectFunc func(ctx context.Context, target string)

func (f RedirectFunc) Redirect(ctx context.Context, target string) {
	f(ctx, target)
}

// Gate holds the login destination. It keeps no state between evaluations.
type Gate struct {
	loginPath   string
	returnParam string
}

// Option configures a Gate.
type Option func(*Gate)

// WithLoginPath overrides the login destination.
func WithLoginPath(path string) Option {
	return func(g *Gate) {
		g.loginPath = path
	}
}

// WithReturnParam overrides the name of the return-target query parameter.
func WithReturnParam(name string) Option {
	return func(g *Gate) {
		g.returnParam = name
	}
}

func New(options ...Option) *Gate {
	g := &Gate{
		loginPath:   DefaultLoginPath,
		returnParam: DefaultReturnURLParam,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// Evaluate decides for target using a fresh query of provider. A nil
// provider, an error or a panic from the provider all produce Deny.
func (g *Gate) Evaluate(ctx context.Context, provider session.Provider, target string) Decision {
	if isAuthenticated(ctx, provider) {
		return Decision{Outcome: Allow}
	}
	return Decision{
		Outcome:        Deny,
		RedirectTarget: g.loginPath,
		ReturnParam:    g.returnParam,
		PreservedPath:  target,
	}
}

// Check is Evaluate plus the redirect: it returns true to let the navigation
// proceed, otherwise it invokes redirect with the login URL and returns false.
func (g *Gate) Check(ctx context.Context, provider session.Provider, target string, redirect Redirector) bool {
	d := g.Evaluate(ctx, provider, target)
	if d.Allowed() {
		return true
	}
	if redirect != nil {
		redirect.Redirect(ctx, d.RedirectURL())
	}
	return false
}

func isAuthenticated(ctx context.Context, provider session.Provider) (ok bool) {
	if provider == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	authenticated, err := provider.IsAuthenticated(ctx)
	return err == nil && authenticated
}

var defaultGate = New()

// Evaluate runs the default gate (/login, returnUrl).
func Evaluate(ctx context.Context, provider session.Provider, target string) Decision {
	return defaultGate.Evaluate(ctx, provider, target)
}
