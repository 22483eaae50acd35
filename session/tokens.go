package session

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	clubErrors "github.com/jrsteele09/tennis-club/internal/errors"
)

const tokenIssuer = "tennis-club"

// Claims are the contents of a session token.
type Claims struct {
	Email string   `json:"email"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwtlib.RegisteredClaims
}

// Identity returns the member the claims were issued for.
func (c *Claims) Identity() *UserIdentity {
	return &UserIdentity{
		ID:    c.Subject,
		Email: c.Email,
		Name:  c.Name,
		Roles: c.Roles,
	}
}

// Tokens issues and validates HMAC signed session tokens. Validation checks
// the expiry synchronously on every call.
type Tokens struct {
	secret  []byte
	ttl     time.Duration
	revoked RevokedTokens
	nowTime func() time.Time
}

// TokensOption configures Tokens.
type TokensOption func(*Tokens)

// WithNowTime sets the clock (primarily for testing).
func WithNowTime(nowFunc func() time.Time) TokensOption {
	return func(t *Tokens) {
		t.nowTime = nowFunc
	}
}

// WithRevokedTokens makes Validate reject tokens present in revoked.
func WithRevokedTokens(revoked RevokedTokens) TokensOption {
	return func(t *Tokens) {
		t.revoked = revoked
	}
}

func NewTokens(secret string, ttl time.Duration, options ...TokensOption) (*Tokens, error) {
	if secret == "" {
		return nil, errors.New("[NewTokens] secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("[NewTokens] ttl must be positive")
	}
	t := &Tokens{
		secret:  []byte(secret),
		ttl:     ttl,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(t)
	}
	return t, nil
}

// Now returns the token clock's current time.
func (t *Tokens) Now() time.Time {
	return t.nowTime()
}

// Issue signs a new token for user. The returned claims carry the token ID
// (jti) and expiry.
func (t *Tokens) Issue(user UserIdentity) (string, *Claims, error) {
	if user.ID == "" || user.Email == "" {
		return "", nil, clubErrors.Wrapf(clubErrors.ErrInvalidRequest, "[Tokens Issue] identity needs id and email")
	}
	now := t.nowTime()
	claims := &Claims{
		Email: user.Email,
		Name:  user.Name,
		Roles: user.Roles,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID,
			ID:        uuid.New().String(),
			IssuedAt:  jwtlib.NewNumericDate(now),
			NotBefore: jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", nil, fmt.Errorf("[Tokens Issue] failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// Validate parses raw and returns its claims. Expired tokens yield
// ErrTokenExpired, revoked ones ErrTokenRevoked, anything else ErrInvalidToken.
func (t *Tokens) Validate(raw string) (*Claims, error) {
	if raw == "" {
		return nil, clubErrors.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(raw, claims, func(token *jwtlib.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(tokenIssuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(t.nowTime),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, clubErrors.Wrapf(clubErrors.ErrTokenExpired, "[Tokens Validate]")
		}
		return nil, clubErrors.Wrapf(clubErrors.ErrInvalidToken, "[Tokens Validate] %v", err)
	}
	if !token.Valid {
		return nil, clubErrors.ErrInvalidToken
	}
	if t.revoked != nil && t.revoked.IsRevoked(claims.ID) {
		return nil, clubErrors.ErrTokenRevoked
	}
	return claims, nil
}

// Revoke marks the token with claims as no longer usable.
func (t *Tokens) Revoke(claims *Claims) error {
	if t.revoked == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return t.revoked.Add(claims.ID, claims.ExpiresAt.Time)
}
