// Package routes holds the static registration table of club views: which
// path patterns exist and which of them sit behind the session gate.
package routes

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed routes.yaml
var defaultTable []byte

// Route is one registered view.
type Route struct {
	Name      string `yaml:"name"`
	Pattern   string `yaml:"pattern"` // ServeMux pattern, e.g. "GET /players/{id}"
	Title     string `yaml:"title"`
	Protected bool   `yaml:"protected"`
	// Roles, when set, restricts a protected view to identities holding any
	// of them.
	Roles []string `yaml:"roles,omitempty"`
}

// Table is the parsed route configuration.
type Table struct {
	Routes []Route `yaml:"routes"`

	mux *http.ServeMux
}

// Default returns the embedded club route table.
func Default() (*Table, error) {
	return Parse(defaultTable)
}

// Parse reads a YAML route table and checks that every route has a unique
// name and a pattern the ServeMux accepts.
func Parse(data []byte) (t *Table, err error) {
	t = &Table{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("[routes Parse] invalid yaml: %w", err)
	}
	if len(t.Routes) == 0 {
		return nil, fmt.Errorf("[routes Parse] no routes defined")
	}

	// ServeMux panics on malformed or conflicting patterns.
	defer func() {
		if r := recover(); r != nil {
			t, err = nil, fmt.Errorf("[routes Parse] %v", r)
		}
	}()

	t.mux = http.NewServeMux()
	names := make(map[string]struct{}, len(t.Routes))
	for i, route := range t.Routes {
		if route.Name == "" {
			return nil, fmt.Errorf("[routes Parse] route %d has no name", i)
		}
		if _, dup := names[route.Name]; dup {
			return nil, fmt.Errorf("[routes Parse] duplicate route name %q", route.Name)
		}
		names[route.Name] = struct{}{}
		if len(route.Roles) > 0 && !route.Protected {
			return nil, fmt.Errorf("[routes Parse] route %q lists roles but is not protected", route.Name)
		}
		if !strings.Contains(route.Pattern, "/") {
			return nil, fmt.Errorf("[routes Parse] route %q has invalid pattern %q", route.Name, route.Pattern)
		}
		t.mux.Handle(route.Pattern, routeHandler(i))
	}
	return t, nil
}

// routeHandler lets the internal mux report which table entry matched.
type routeHandler int

func (routeHandler) ServeHTTP(http.ResponseWriter, *http.Request) {}

// Match returns the table entry that serves r, using the same pattern
// precedence as the server's mux. Requests the mux would redirect or reject
// match nothing.
func (t *Table) Match(r *http.Request) (Route, bool) {
	h, _ := t.mux.Handler(r)
	idx, ok := h.(routeHandler)
	if !ok {
		return Route{}, false
	}
	return t.Routes[idx], true
}
