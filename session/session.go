// Package session holds the login state of a club member: the Session entity,
// the Provider capability consumed by the route gate, token issue/validation
// and the stores that persist sessions across restarts.
package session

import (
	"time"

	clubErrors "github.com/jrsteele09/tennis-club/internal/errors"
)

// UserIdentity is the minimal profile dependent views need.
type UserIdentity struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// HasRole reports whether the identity carries role.
func (u *UserIdentity) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Session is the authenticated state of one member. The zero value is the
// unauthenticated session. Token and User are always both set or both empty.
type Session struct {
	ID        string        `json:"id"`
	Token     string        `json:"token"`
	User      *UserIdentity `json:"user"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

// NewSession builds an authenticated session, rejecting a token without an
// identity and vice versa.
func NewSession(id, token string, user *UserIdentity, createdAt, expiresAt time.Time) (Session, error) {
	if (token == "") != (user == nil) {
		return Session{}, clubErrors.ErrSessionInconsistent
	}
	if token == "" {
		return Session{}, nil
	}
	if id == "" {
		return Session{}, clubErrors.Wrapf(clubErrors.ErrInvalidRequest, "[session NewSession] id is required")
	}
	return Session{
		ID:        id,
		Token:     token,
		User:      user,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

// HasCredential reports whether a token and identity are present. Whether the
// token is still valid is decided by Tokens.Validate.
func (s Session) HasCredential() bool {
	return s.Token != "" && s.User != nil
}

// Expired reports whether the session lifetime has passed at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
