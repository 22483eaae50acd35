package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// OIDCStartHandler sends the browser to the identity provider (GET /auth/oidc/start).
func (s *Server) OIDCStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		returnURL := safeReturnURL(r.URL.Query().Get("returnUrl"))
		http.Redirect(w, r, s.oidc.Start(returnURL), http.StatusFound)
	}
}

// OIDCCallbackHandler completes federated sign-in (GET /callback).
func (s *Server) OIDCCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if providerErr := q.Get("error"); providerErr != "" {
			log.Warn().Str("error", providerErr).Str("description", q.Get("error_description")).Msg("identity provider refused sign-in")
			redirectWithError(w, r, RouteLogin, "Sign-in was cancelled")
			return
		}

		result, err := s.oidc.Finish(r.Context(), q.Get("code"), q.Get("state"))
		if err != nil {
			log.Err(err).Msg("federated sign-in failed")
			redirectWithError(w, r, RouteLogin, "Sign-in failed, please try again")
			return
		}

		if !s.startSession(w, r, result.Identity) {
			return
		}
		redirectSuccess(w, r, safeReturnURL(result.ReturnURL))
	}
}
