package server

// Route path constants
// Club views come from the routes table; these are the fixed auth and API routes.
const (
	// Auth Routes - Login & Logout
	RouteLogin      = "/login"
	RouteAuthLogin  = "/auth/login"
	RouteAuthLogout = "/auth/logout"

	// Auth Routes - Federated sign-in
	RouteOIDCStart = "/auth/oidc/start"
	RouteCallback  = "/callback"

	// API Routes
	RouteAPISession = "/api/session"
)
