// Package oidclogin signs club members in through an external OpenID Connect
// provider (for example a federation account) and carries the returnUrl
// across the round trip.
package oidclogin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	clubErrors "github.com/jrsteele09/tennis-club/internal/errors"
	"github.com/jrsteele09/tennis-club/session"
	"golang.org/x/oauth2"
)

const defaultStateTTL = 10 * time.Minute

// Result is a completed sign-in.
type Result struct {
	Identity  session.UserIdentity
	ReturnURL string
	IDToken   string
}

type pending struct {
	returnURL string
	nonce     string
	expiresAt time.Time
}

// Flow runs the authorization code flow against one provider.
type Flow struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier

	mu       sync.Mutex
	pending  map[string]pending
	stateTTL time.Duration
	nowTime  func() time.Time
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithNowTime sets the clock used for state expiry (primarily for testing).
func WithNowTime(nowFunc func() time.Time) FlowOption {
	return func(f *Flow) {
		f.nowTime = nowFunc
	}
}

// WithStateTTL sets how long a started sign-in may take to come back.
func WithStateTTL(ttl time.Duration) FlowOption {
	return func(f *Flow) {
		f.stateTTL = ttl
	}
}

// Discover fetches the provider's discovery document and builds a Flow.
func Discover(ctx context.Context, issuer, clientID, clientSecret, redirectURL string, options ...FlowOption) (*Flow, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("[oidclogin Discover] failed to create OIDC provider: %w", err)
	}

	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  redirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
	return NewFlow(cfg, provider.Verifier(&oidc.Config{ClientID: clientID}), options...), nil
}

func NewFlow(cfg *oauth2.Config, verifier *oidc.IDTokenVerifier, options ...FlowOption) *Flow {
	f := &Flow{
		oauth:    cfg,
		verifier: verifier,
		pending:  make(map[string]pending),
		stateTTL: defaultStateTTL,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(f)
	}
	return f
}

// Start records returnURL under a fresh state and returns the provider URL
// the browser should be sent to.
func (f *Flow) Start(returnURL string) string {
	state := uuid.New().String()
	nonce := uuid.New().String()
	now := f.nowTime()

	f.mu.Lock()
	for s, p := range f.pending {
		if now.After(p.expiresAt) {
			delete(f.pending, s)
		}
	}
	f.pending[state] = pending{
		returnURL: returnURL,
		nonce:     nonce,
		expiresAt: now.Add(f.stateTTL),
	}
	f.mu.Unlock()

	return f.oauth.AuthCodeURL(state, oidc.Nonce(nonce))
}

// Finish exchanges code, verifies the ID token and returns who signed in and
// where they were going. Each state can be finished once.
func (f *Flow) Finish(ctx context.Context, code, state string) (*Result, error) {
	f.mu.Lock()
	p, ok := f.pending[state]
	delete(f.pending, state)
	f.mu.Unlock()
	if !ok || f.nowTime().After(p.expiresAt) {
		return nil, clubErrors.ErrInvalidState
	}

	tok, err := f.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("[oidclogin Finish] code exchange failed: %w", err)
	}
	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, clubErrors.Wrapf(clubErrors.ErrInvalidToken, "[oidclogin Finish] no id_token in token response")
	}

	idToken, err := f.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("[oidclogin Finish] %w: %w", clubErrors.ErrInvalidToken, err)
	}
	if idToken.Nonce != p.nonce {
		return nil, clubErrors.Wrapf(clubErrors.ErrInvalidToken, "[oidclogin Finish] nonce mismatch")
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified *bool  `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("[oidclogin Finish] failed to read claims: %w", err)
	}
	if claims.Email == "" || (claims.EmailVerified != nil && !*claims.EmailVerified) {
		return nil, clubErrors.Wrapf(clubErrors.ErrInvalidCredentials, "[oidclogin Finish] verified email required")
	}

	return &Result{
		Identity: session.UserIdentity{
			ID:    idToken.Subject,
			Email: claims.Email,
			Name:  claims.Name,
			Roles: []string{"member"},
		},
		ReturnURL: p.returnURL,
		IDToken:   rawIDToken,
	}, nil
}

// Provider returns a session.Provider that is authenticated while rawIDToken
// verifies against the provider's keys.
func (f *Flow) Provider(rawIDToken string) session.Provider {
	return &IDTokenProvider{verifier: f.verifier, rawIDToken: rawIDToken}
}

// IDTokenProvider is a remotely validated session.Provider: every query
// verifies the ID token, fetching signing keys from the issuer as needed.
type IDTokenProvider struct {
	verifier   *oidc.IDTokenVerifier
	rawIDToken string
}

var _ session.Provider = (*IDTokenProvider)(nil)

// IsAuthenticated reports false without error for a missing or expired token.
// Other verification failures are returned.
func (p *IDTokenProvider) IsAuthenticated(ctx context.Context) (bool, error) {
	if p.rawIDToken == "" {
		return false, nil
	}
	if _, err := p.verifier.Verify(ctx, p.rawIDToken); err != nil {
		var expired *oidc.TokenExpiredError
		if errors.As(err, &expired) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
