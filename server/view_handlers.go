package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/tennis-club/routes"
	"github.com/jrsteele09/tennis-club/session"
	"github.com/rs/zerolog/log"
)

// ViewPageData is passed to view.html.
type ViewPageData struct {
	AppName string
	Route   routes.Route
	Params  map[string]string
	User    *session.UserIdentity
	Path    string
}

// ViewHandler renders the shell of a club view. Protected views only get here
// through RequireSession; public views look the session up for the header.
func (s *Server) ViewHandler(route routes.Route) http.HandlerFunc {
	viewTmpl, err := ParseTemplate("view.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse view template")
	}
	wildcards := patternWildcards(route.Pattern)

	return func(w http.ResponseWriter, r *http.Request) {
		data := ViewPageData{
			AppName: s.config.GetAppName(),
			Route:   route,
			Params:  make(map[string]string, len(wildcards)),
			Path:    r.URL.Path,
		}
		for _, name := range wildcards {
			data.Params[name] = r.PathValue(name)
		}

		if st, ok := SessionFromContext(r.Context()); ok {
			data.User = st.Current().User
		} else if st, _, err := s.lookupSession(r); err == nil {
			data.User = st.CurrentUser(r.Context())
		}

		if viewTmpl == nil {
			http.Error(w, "Failed to render page", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentTypeHTML)
		if err := viewTmpl.Execute(w, data); err != nil {
			log.Err(err).Str("view", route.Name).Msg("Failed to render view template")
		}
	}
}

// patternWildcards lists the {name} segments of a ServeMux pattern.
func patternWildcards(pattern string) []string {
	var names []string
	for _, seg := range strings.Split(pattern, "/") {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		name := strings.TrimSuffix(strings.TrimSuffix(seg[1:len(seg)-1], "..."), "$")
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
