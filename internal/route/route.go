// Package route matches request targets against an ordered pattern table.
package route

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
)

// Params carries positional regexp captures.
type Params []string

// At returns capture i, or "" when absent.
func (p Params) At(i int) string {
	if i < 0 || i >= len(p) {
		return ""
	}
	return p[i]
}

// Loader produces the template context for a matched route. Loaders may
// block and must honour ctx.
type Loader func(ctx context.Context, r *http.Request, params Params) (any, error)

// Route is one table entry. Load may be nil. The template rendered is chosen
// by the view context Load returns, so one route can yield several pages.
type Route struct {
	Name    string
	Pattern *regexp.Regexp
	Load    Loader
}

// Table is evaluated top to bottom; the first match wins.
type Table struct {
	routes []Route
}

// New builds a table. The final entry must match every target.
func New(routes ...Route) (*Table, error) {
	if len(routes) == 0 {
		return nil, fmt.Errorf("route: table is empty")
	}
	for _, r := range routes {
		if r.Pattern == nil {
			return nil, fmt.Errorf("route: %q needs a pattern", r.Name)
		}
	}
	last := routes[len(routes)-1]
	if !last.Pattern.MatchString("") || !last.Pattern.MatchString("/any/path?x=1") {
		return nil, fmt.Errorf("route: final entry %q is not a catch-all", last.Name)
	}
	return &Table{routes: append([]Route(nil), routes...)}, nil
}

// Must is New that panics on error.
func Must(routes ...Route) *Table {
	t, err := New(routes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Match returns the first route matching target (path plus optional query)
// and its captures. The catch-all guarantees a result.
func (t *Table) Match(target string) (Route, Params) {
	for _, r := range t.routes {
		m := r.Pattern.FindStringSubmatch(target)
		if m == nil {
			continue
		}
		return r, Params(m[1:])
	}
	return t.routes[len(t.routes)-1], nil
}

// Routes returns the entries in evaluation order.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Target renders the string a table matches against: the path plus the raw
// query when present.
func Target(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + r.URL.RawQuery
}
