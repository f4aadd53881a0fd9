package listing

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SubhamBera123/Elegance/internal/catalog"
)

func fixtureProducts(t *testing.T) []catalog.Product {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c.All()
}

func ids(products []catalog.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterEmptyStateKeepsCatalogOrder(t *testing.T) {
	products := fixtureProducts(t)

	got := Filter(products, DefaultFilter())
	require.Equal(t, ids(products), ids(got))
	require.False(t, DefaultFilter().Active())
}

func TestFilterByCategory(t *testing.T) {
	products := fixtureProducts(t)

	f := DefaultFilter()
	f.Categories = []catalog.Category{catalog.CategoryEvening}
	require.Equal(t, []string{"1", "6"}, ids(Filter(products, f)))
}

func TestFilterConjunctiveAndAnyOfWithinField(t *testing.T) {
	products := fixtureProducts(t)

	f := DefaultFilter()
	f.Sizes = []string{"XXL"}
	require.Equal(t, []string{"3"}, ids(Filter(products, f)))

	f = DefaultFilter()
	f.Colors = []string{"Gold", "Lavender"}
	require.Equal(t, []string{"6", "8"}, ids(Filter(products, f)))

	f.InStockOnly = true
	require.Equal(t, []string{"6"}, ids(Filter(products, f)))

	f = DefaultFilter()
	f.MinPrice, f.MaxPrice = 150, 200
	require.Equal(t, []string{"2", "4", "5"}, ids(Filter(products, f)))

	f = DefaultFilter()
	f.Flag = FlagSale
	require.Equal(t, []string{"1", "4", "7"}, ids(Filter(products, f)))
}

func TestPriceBoundsAreInclusive(t *testing.T) {
	products := []catalog.Product{{ID: "a", Price: 15000}, {ID: "b", Price: 15001}}

	f := DefaultFilter()
	f.MaxPrice = 150
	require.Equal(t, []string{"a"}, ids(Filter(products, f)))

	f = DefaultFilter()
	f.MinPrice = 150
	require.Equal(t, []string{"a", "b"}, ids(Filter(products, f)))
}

func TestPriceSortsAreMonotonicAndMirror(t *testing.T) {
	products := fixtureProducts(t)

	low := Apply(products, DefaultFilter(), SortPriceLow)
	high := Apply(products, DefaultFilter(), SortPriceHigh)
	for i := 1; i < len(low); i++ {
		require.LessOrEqual(t, low[i-1].Price, low[i].Price)
		require.GreaterOrEqual(t, high[i-1].Price, high[i].Price)
	}

	reversed := make([]catalog.Product, len(low))
	for i, p := range low {
		reversed[len(low)-1-i] = p
	}
	require.Equal(t, ids(high), ids(reversed))
}

func TestNewestSortIsStable(t *testing.T) {
	products := fixtureProducts(t)

	got := Apply(products, DefaultFilter(), SortNewest)
	require.Equal(t, []string{"1", "3", "6", "2", "4", "5", "7", "8"}, ids(got))
}

func TestRatingAndNameSorts(t *testing.T) {
	products := fixtureProducts(t)

	byRating := Apply(products, DefaultFilter(), SortRating)
	require.Equal(t, "2", byRating[0].ID)

	byName := Apply(products, DefaultFilter(), SortName)
	require.Equal(t, "Bohemian Maxi Dress", byName[0].Name)
	require.Equal(t, "Vintage Inspired Swing Dress", byName[len(byName)-1].Name)
}

func TestApplyLeavesInputUntouched(t *testing.T) {
	products := fixtureProducts(t)
	before := ids(products)

	Apply(products, DefaultFilter(), SortPriceHigh)
	require.Equal(t, before, ids(products))
}

func TestParseQuery(t *testing.T) {
	values := url.Values{
		"category": {"evening,Party", "Gowns"},
		"size":     {"M", "M"},
		"color":    {"Black"},
		"min":      {"-20"},
		"max":      {"9000"},
		"instock":  {"on"},
		"filter":   {"new"},
		"sort":     {"price-high"},
		"view":     {"list"},
	}
	q := ParseQuery(values)

	require.Equal(t, []catalog.Category{catalog.CategoryEvening, catalog.CategoryParty}, q.Filter.Categories)
	require.Equal(t, []string{"M"}, q.Filter.Sizes)
	require.Equal(t, []string{"Black"}, q.Filter.Colors)
	require.Equal(t, PriceFloor, q.Filter.MinPrice)
	require.Equal(t, PriceCeiling, q.Filter.MaxPrice)
	require.True(t, q.Filter.InStockOnly)
	require.Equal(t, FlagNew, q.Filter.Flag)
	require.Equal(t, SortPriceHigh, q.Sort)
	require.Equal(t, LayoutList, q.Layout)

	again := ParseQuery(q.Values())
	require.Equal(t, q, again)
}

func TestParseQueryPriceBounds(t *testing.T) {
	for _, tc := range []struct {
		min, max string
		wantMin  int
		wantMax  int
	}{
		{"NaN", "NaN", PriceFloor, PriceCeiling},
		{"", "nan", PriceFloor, PriceCeiling},
		{"-Inf", "+Inf", PriceFloor, PriceCeiling},
		{"Inf", "", PriceCeiling, PriceCeiling},
		{"40.9", "1e400", 40, PriceCeiling},
		{"120", "80", 80, 120},
	} {
		q := ParseQuery(url.Values{"min": {tc.min}, "max": {tc.max}})
		require.Equal(t, tc.wantMin, q.Filter.MinPrice, "min=%q max=%q", tc.min, tc.max)
		require.Equal(t, tc.wantMax, q.Filter.MaxPrice, "min=%q max=%q", tc.min, tc.max)
	}

	products := fixtureProducts(t)
	got := Filter(products, ParseQuery(url.Values{"max": {"NaN"}}).Filter)
	require.Equal(t, ids(products), ids(got))
}

func TestQueryURLOmitsDefaults(t *testing.T) {
	require.Equal(t, "/products", ParseQuery(url.Values{}).URL())
	require.Equal(t, "/products?filter=sale", ParseQuery(url.Values{"filter": {"sale"}}).URL())
	require.Equal(t, SortNewest, ParseSortKey("bogus"))
}
