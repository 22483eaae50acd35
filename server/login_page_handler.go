package server

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	clubErrors "github.com/jrsteele09/tennis-club/internal/errors"
	"github.com/jrsteele09/tennis-club/members"
	"github.com/jrsteele09/tennis-club/session"
	"github.com/rs/zerolog/log"
)

const contentTypeHTML = "text/html; charset=utf-8"

// LoginPageData holds data for rendering the login page
type LoginPageData struct {
	AppName     string
	ReturnURL   string // Restored after sign-in (hidden field in form)
	Error       string
	Email       string // Preserve email on error
	OIDCEnabled bool
	OIDCStart   string
}

type loginForm struct {
	Email     string `validate:"required,max=254,contains=@"` // admin@localhost is valid in DEV
	Password  string `validate:"required,max=128"`
	ReturnURL string `validate:"omitempty,max=2048"`
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse login template")
	}

	return func(w http.ResponseWriter, r *http.Request) {
		returnURL := safeReturnURL(r.URL.Query().Get("returnUrl"))

		// Already signed in: go straight back
		if state, _, err := s.lookupSession(r); err == nil && state.CurrentUser(r.Context()) != nil {
			redirectSuccess(w, r, returnURL)
			return
		}

		data := s.loginPageData(returnURL, r.URL.Query().Get("email"), r.URL.Query().Get("error"))
		s.renderLogin(w, loginTmpl, http.StatusOK, data)
	}
}

// LoginSubmissionHandler processes the login form submission (POST /auth/login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	loginTmpl, err := ParseTemplate("login.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse login template")
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		form := loginForm{
			Email:     r.FormValue("email"),
			Password:  r.FormValue("password"),
			ReturnURL: r.FormValue("returnUrl"),
		}
		returnURL := safeReturnURL(form.ReturnURL)

		if err := s.validate.Struct(form); err != nil {
			s.renderLogin(w, loginTmpl, http.StatusBadRequest, s.loginPageData(returnURL, form.Email, validationMessage(err)))
			return
		}

		member, err := members.Authenticate(s.members, form.Email, form.Password)
		if err != nil {
			msg := "Invalid email or password"
			if clubErrors.Is(err, clubErrors.ErrUserBlocked) {
				msg = "This account has been suspended"
			}
			log.Info().Str("email", form.Email).Err(err).Msg("sign-in rejected")
			s.renderLogin(w, loginTmpl, http.StatusUnauthorized, s.loginPageData(returnURL, form.Email, msg))
			return
		}

		if !s.startSession(w, r, member.Identity()) {
			return
		}
		if err := s.members.SetLastLogin(member.Email); err != nil {
			log.Err(err).Str("member_id", member.ID).Msg("failed to record last login")
		}

		redirectSuccess(w, r, returnURL)
	}
}

// startSession signs user in on a fresh state and sets the session cookie.
// On failure it has already written the response.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user session.UserIdentity) bool {
	// Replace whatever session the browser held before.
	state, _, err := s.lookupSession(r)
	if err != nil {
		state = s.sessions.New()
	}
	sess, err := state.Login(r.Context(), user)
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("failed to start session")
		status := http.StatusInternalServerError
		if clubErrors.Is(err, clubErrors.ErrStoreUnavailable) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, "Unable to sign in right now", status)
		return false
	}
	s.SetSessionCookie(w, r, sess.ID, sess.ExpiresAt)
	log.Info().Str("user_id", user.ID).Str("session_id", sess.ID).Msg("member signed in")
	return true
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			s.ClearSessionCookie(w, r)
			redirectSuccess(w, r, "/")
		}()

		state, hadCookie, err := s.lookupSession(r)
		if !hadCookie {
			return
		}
		if err != nil {
			log.Err(err).Msg("Logout: session lookup failed")
			return
		}
		if err := state.Logout(r.Context()); err != nil {
			log.Err(err).Msg("Logout: failed to remove session")
		}
	}
}

type sessionInfo struct {
	Authenticated bool                  `json:"authenticated"`
	User          *session.UserIdentity `json:"user,omitempty"`
	ExpiresAt     *time.Time            `json:"expires_at,omitempty"`
}

// SessionInfoHandler reports the signed in identity (GET /api/session).
func (s *Server) SessionInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")

		state, _, err := s.lookupSession(r)
		if err != nil {
			log.Err(err).Msg("session lookup failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "session store unavailable"})
			return
		}

		user := state.CurrentUser(r.Context())
		if user == nil {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(sessionInfo{})
			return
		}
		expiresAt := state.Current().ExpiresAt
		_ = json.NewEncoder(w).Encode(sessionInfo{Authenticated: true, User: user, ExpiresAt: &expiresAt})
	}
}

func (s *Server) loginPageData(returnURL, email, errorMsg string) LoginPageData {
	data := LoginPageData{
		AppName:     s.config.GetAppName(),
		ReturnURL:   returnURL,
		Error:       errorMsg,
		Email:       email,
		OIDCEnabled: s.oidc != nil,
	}
	if s.oidc != nil {
		data.OIDCStart = RouteOIDCStart + "?returnUrl=" + url.QueryEscape(returnURL)
	}
	return data
}

func (s *Server) renderLogin(w http.ResponseWriter, tmpl *template.Template, status int, data LoginPageData) {
	if tmpl == nil {
		http.Error(w, "Failed to render login page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Msg("Failed to render login template")
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid sign-in details"
	}
	switch verrs[0].Field() {
	case "Email":
		return "Please enter a valid email address"
	case "Password":
		return "Please enter your password"
	default:
		return "Invalid sign-in details"
	}
}
