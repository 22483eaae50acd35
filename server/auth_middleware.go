package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/tennis-club/gate"
	"github.com/jrsteele09/tennis-club/session"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySession stores the requester's *session.State
	ContextKeySession ContextKey = "session"
)

// SessionFromContext returns the session attached by RequireSession.
func SessionFromContext(ctx context.Context) (*session.State, bool) {
	st, ok := ctx.Value(ContextKeySession).(*session.State)
	return st, ok && st != nil
}

// RouteTableGate looks the request up in the route table. Public views pass
// straight through; protected ones go through RequireSession and, when the
// route lists roles, RequireAnyRole. A view request the table cannot match is
// treated as protected.
func (s *Server) RouteTableGate(next http.HandlerFunc) http.HandlerFunc {
	requireSession := s.RequireSession()
	return func(w http.ResponseWriter, r *http.Request) {
		route, ok := s.table.Match(r)
		if ok && !route.Protected {
			next(w, r)
			return
		}
		handler := next
		if len(route.Roles) > 0 {
			handler = s.RequireAnyRole(route.Roles...)(next)
		}
		requireSession(handler)(w, r)
	}
}

// RequireSession is the route gate for protected views. The session named by
// the cookie is the provider; a store failure is passed to the gate as an
// error so the view stays closed. Without a cookie, and with federated
// sign-in configured, an ID token sent as a bearer token is verified instead.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			state, hadCookie, err := s.lookupSession(r)

			var provider session.Provider = state
			switch {
			case err != nil:
				log.Err(err).Str("path", r.URL.Path).Msg("session lookup failed")
				provider = session.Failed(err)
			case !hadCookie && s.oidc != nil:
				if raw, ok := bearerToken(r); ok {
					provider = s.oidc.Provider(raw)
				}
			}

			redirect := gate.RedirectFunc(func(ctx context.Context, target string) {
				if ctx.Err() != nil {
					return // client went away
				}
				if hadCookie && err == nil {
					s.ClearSessionCookie(w, r)
				}
				redirectSuccess(w, r, target)
			})

			if !s.gate.Check(r.Context(), provider, r.URL.RequestURI(), redirect) {
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySession, state)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireAnyRole must follow RequireSession. Requesters without one of roles
// get 403; bearer-token requests carry no club roles.
func (s *Server) RequireAnyRole(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			st, ok := SessionFromContext(r.Context())
			if !ok {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			user := st.Current().User
			for _, role := range roles {
				if user.HasRole(role) {
					next(w, r)
					return
				}
			}
			http.Error(w, "Forbidden", http.StatusForbidden)
		}
	}
}

// lookupSession resolves the session cookie. Without a cookie the result is an
// empty, unauthenticated state.
func (s *Server) lookupSession(r *http.Request) (state *session.State, hadCookie bool, err error) {
	cookie, cerr := r.Cookie(sessionCookieName)
	if cerr != nil || cookie.Value == "" {
		return s.sessions.New(), false, nil
	}
	state, err = s.sessions.Lookup(r.Context(), cookie.Value)
	return state, true, err
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
