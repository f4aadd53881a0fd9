package route

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *Table {
	t.Helper()
	table, err := New(
		Route{Name: "home", Pattern: regexp.MustCompile(`^/(?:\?.*)?$`)},
		Route{Name: "products", Pattern: regexp.MustCompile(`^/products(?:$|\?.*)`)},
		Route{Name: "product", Pattern: regexp.MustCompile(`^/product/([^/?]+)(?:\?.*)?$`)},
		Route{Name: "not_found", Pattern: regexp.MustCompile(`^.*$`)},
	)
	require.NoError(t, err)
	return table
}

func TestMatchProductsWithQuery(t *testing.T) {
	r, params := testTable(t).Match("/products?filter=new")
	require.Equal(t, "products", r.Name)
	require.Empty(t, params)
}

func TestMatchCapturesAndFallsThrough(t *testing.T) {
	table := testTable(t)

	r, params := table.Match("/product/7")
	require.Equal(t, "product", r.Name)
	require.Equal(t, "7", params.At(0))
	require.Equal(t, "", params.At(3))

	r, _ = table.Match("/productsx")
	require.Equal(t, "not_found", r.Name)

	r, _ = table.Match("/?utm=mail")
	require.Equal(t, "home", r.Name)
}

func TestFirstMatchWins(t *testing.T) {
	table, err := New(
		Route{Name: "a", Pattern: regexp.MustCompile(`^/x`)},
		Route{Name: "b", Pattern: regexp.MustCompile(`^/x$`)},
		Route{Name: "all", Pattern: regexp.MustCompile(`^.*$`)},
	)
	require.NoError(t, err)
	r, _ := table.Match("/x")
	require.Equal(t, "a", r.Name)
}

func TestNewRequiresCatchAll(t *testing.T) {
	_, err := New(Route{Name: "home", Pattern: regexp.MustCompile(`^/$`)})
	require.Error(t, err)
}

func TestNewRequiresPattern(t *testing.T) {
	_, err := New(Route{Name: "broken"}, Route{Name: "all", Pattern: regexp.MustCompile(`^.*$`)})
	require.ErrorContains(t, err, `"broken" needs a pattern`)
}

func TestTarget(t *testing.T) {
	require.Equal(t, "/products?sort=name", Target(httptest.NewRequest(http.MethodGet, "/products?sort=name", nil)))
	require.Equal(t, "/cart", Target(httptest.NewRequest(http.MethodGet, "/cart", nil)))
}
