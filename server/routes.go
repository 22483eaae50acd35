package server

import (
	"fmt"
	"net/http"
)

func (s *Server) initRoutes() error {
	// Club views; the route table decides per request which are gated
	for _, route := range s.table.Routes {
		handler := ChainMiddleware(s.ViewHandler(route), s.HTMLMiddleWare(s.RouteTableGate)...)
		if err := s.registerSafely(route.Pattern, handler); err != nil {
			return fmt.Errorf("[Server initRoutes] route %q: %w", route.Name, err)
		}
	}

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	if s.oidc != nil {
		s.RegisterRouteHandler("GET "+RouteOIDCStart, ChainMiddleware(s.OIDCStartHandler(), s.HTMLMiddleWare()...))
		s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.OIDCCallbackHandler(), s.HTMLMiddleWare()...))
	}

	// API routes
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionInfoHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteAPISession, ChainMiddleware(s.SessionInfoHandler(), s.APIMiddleware()...))
	return nil
}

// registerSafely turns ServeMux pattern conflicts into errors.
func (s *Server) registerSafely(pattern string, handler http.HandlerFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	s.RegisterRouteHandler(pattern, handler)
	return nil
}
