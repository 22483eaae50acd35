package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/tennis-club/gate"
	"github.com/jrsteele09/tennis-club/internal/config"
	"github.com/jrsteele09/tennis-club/members"
	"github.com/jrsteele09/tennis-club/oidclogin"
	"github.com/jrsteele09/tennis-club/routes"
	"github.com/jrsteele09/tennis-club/session"
	"github.com/rs/zerolog/log"
)

// Deps are the collaborators the club server is built from.
type Deps struct {
	Sessions *session.Manager
	Members  members.Repo
	Routes   *routes.Table   // defaults to routes.Default()
	Gate     *gate.Gate      // defaults to gate.New()
	OIDC     *oidclogin.Flow // optional; enables federated sign-in
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	table    *routes.Table
	gate     *gate.Gate
	sessions *session.Manager
	members  members.Repo
	oidc     *oidclogin.Flow
	validate *validator.Validate
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Sessions == nil {
		return nil, errors.New("[Server New] session manager is required")
	}
	if deps.Members == nil {
		return nil, errors.New("[Server New] member repo is required")
	}

	table := deps.Routes
	if table == nil {
		var err error
		if table, err = routes.Default(); err != nil {
			return nil, err
		}
	}
	g := deps.Gate
	if g == nil {
		g = gate.New()
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		table:    table,
		gate:     g,
		sessions: deps.Sessions,
		members:  deps.Members,
		oidc:     deps.OIDC,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	if err := s.initRoutes(); err != nil {
		return nil, err
	}
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Debug().Str("method", method).Str("path", path).Msg("route registered")
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
