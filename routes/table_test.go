package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/tennis-club/routes"
	"github.com/stretchr/testify/require"
)

func TestDefault_Protection(t *testing.T) {
	table, err := routes.Default()
	require.NoError(t, err)

	tests := []struct {
		path      string
		matched   bool
		protected bool
	}{
		{"/", true, false},
		{"/blog", true, false},
		{"/blog/spring-open-recap", true, false},
		{"/blog/admin", true, true},
		{"/players", true, true},
		{"/players/42", true, true},
		{"/tournaments", true, true},
		{"/tournaments/123/details", true, true},
		{"/rankings", true, true},
		{"/login", false, false},
		{"/unknown", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			route, ok := table.Match(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.matched, ok)
			require.Equal(t, tt.protected, route.Protected)
		})
	}
}

func TestTable_Match(t *testing.T) {
	table, err := routes.Default()
	require.NoError(t, err)

	route, ok := table.Match(httptest.NewRequest(http.MethodGet, "/tournaments/7/details?tab=draw", nil))
	require.True(t, ok)
	require.Equal(t, "tournament-details", route.Name)

	// The more specific pattern wins over /blog/{slug}.
	route, ok = table.Match(httptest.NewRequest(http.MethodGet, "/blog/admin", nil))
	require.True(t, ok)
	require.Equal(t, "blog-admin", route.Name)
	require.ElementsMatch(t, []string{"blog_editor", "club_admin"}, route.Roles)

	// GET patterns also serve HEAD.
	route, ok = table.Match(httptest.NewRequest(http.MethodHead, "/rankings", nil))
	require.True(t, ok)
	require.Equal(t, "rankings", route.Name)

	_, ok = table.Match(httptest.NewRequest(http.MethodPost, "/players", nil))
	require.False(t, ok)

	// Unclean paths are redirected by the mux, not matched.
	_, ok = table.Match(httptest.NewRequest(http.MethodGet, "/players/../rankings", nil))
	require.False(t, ok)
}

func TestDefault_ProtectedCount(t *testing.T) {
	table, err := routes.Default()
	require.NoError(t, err)

	protected := 0
	for _, r := range table.Routes {
		if r.Protected {
			protected++
		}
	}
	require.Equal(t, 6, protected)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"invalid yaml":   "routes: [",
		"empty":          "routes: []",
		"missing name":   "routes:\n  - pattern: GET /a\n",
		"duplicate name": "routes:\n  - name: a\n    pattern: GET /a\n  - name: a\n    pattern: GET /b\n",
		"bad pattern":    "routes:\n  - name: a\n    pattern: nothing\n",
		"public roles":   "routes:\n  - name: a\n    pattern: GET /a\n    roles: [member]\n",
		"conflict":       "routes:\n  - name: a\n    pattern: GET /a\n  - name: b\n    pattern: GET /a\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := routes.Parse([]byte(doc))
			require.Error(t, err)
		})
	}
}
