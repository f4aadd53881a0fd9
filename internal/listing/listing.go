// Package listing filters and sorts the catalog for the products page.
package listing

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/SubhamBera123/Elegance/internal/catalog"
)

// Price bounds offered by the filter panel, in whole dollars.
const (
	PriceFloor   = 0
	PriceCeiling = 500
)

// SortKey selects the ordering applied after filtering.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceLow  SortKey = "price-low"
	SortPriceHigh SortKey = "price-high"
	SortRating    SortKey = "rating"
	SortName      SortKey = "name"
)

// SortOption pairs a key with its dropdown label.
type SortOption struct {
	Key   SortKey
	Label string
}

// SortOptions lists the sort dropdown entries.
var SortOptions = []SortOption{
	{SortNewest, "Newest"},
	{SortPriceLow, "Price: Low to High"},
	{SortPriceHigh, "Price: High to Low"},
	{SortRating, "Highest Rated"},
	{SortName, "Name A-Z"},
}

// ParseSortKey falls back to SortNewest for unknown values.
func ParseSortKey(raw string) SortKey {
	switch k := SortKey(strings.TrimSpace(raw)); k {
	case SortPriceLow, SortPriceHigh, SortRating, SortName:
		return k
	default:
		return SortNewest
	}
}

// Flag narrows the listing to a merchandising subset.
type Flag string

const (
	FlagNone Flag = ""
	FlagNew  Flag = "new"
	FlagSale Flag = "sale"
)

// Layout is the grid/list presentation flag.
type Layout string

const (
	LayoutGrid Layout = "grid"
	LayoutList Layout = "list"
)

// FilterState is the set of active filter selections.
type FilterState struct {
	Categories  []catalog.Category
	Sizes       []string
	Colors      []string
	MinPrice    int
	MaxPrice    int
	InStockOnly bool
	Flag        Flag
}

// DefaultFilter returns the state with no restriction.
func DefaultFilter() FilterState {
	return FilterState{MinPrice: PriceFloor, MaxPrice: PriceCeiling}
}

// Active reports whether any selection narrows the catalog.
func (f FilterState) Active() bool {
	return len(f.Categories) > 0 || len(f.Sizes) > 0 || len(f.Colors) > 0 ||
		f.MinPrice > PriceFloor || f.MaxPrice < PriceCeiling || f.InStockOnly || f.Flag != FlagNone
}

// HasCategory reports whether c is selected.
func (f FilterState) HasCategory(c catalog.Category) bool {
	for _, v := range f.Categories {
		if v == c {
			return true
		}
	}
	return false
}

// HasSize reports whether size is selected.
func (f FilterState) HasSize(size string) bool { return containsString(f.Sizes, size) }

// HasColor reports whether color is selected.
func (f FilterState) HasColor(color string) bool { return containsString(f.Colors, color) }

func (f FilterState) matches(p catalog.Product) bool {
	if len(f.Categories) > 0 && !f.HasCategory(p.Category) {
		return false
	}
	if p.Price < int64(f.MinPrice)*100 || p.Price > int64(f.MaxPrice)*100 {
		return false
	}
	if len(f.Sizes) > 0 && !anyOf(f.Sizes, p.HasSize) {
		return false
	}
	if len(f.Colors) > 0 && !anyOf(f.Colors, p.HasColor) {
		return false
	}
	if f.InStockOnly && !p.InStock {
		return false
	}
	switch f.Flag {
	case FlagNew:
		return p.IsNew
	case FlagSale:
		return p.IsSale
	}
	return true
}

// Filter keeps the products satisfying every active predicate, in input
// order. The input slice is not modified.
func Filter(products []catalog.Product, f FilterState) []catalog.Product {
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if f.matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Apply filters products and sorts the survivors by key.
func Apply(products []catalog.Product, f FilterState, key SortKey) []catalog.Product {
	out := Filter(products, f)
	Sort(out, key)
	return out
}

// Sort orders products in place. Every ordering is stable.
func Sort(products []catalog.Product, key SortKey) {
	switch key {
	case SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case SortRating:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Rating > products[j].Rating })
	case SortName:
		col := collate.New(language.English)
		sort.SliceStable(products, func(i, j int) bool {
			return col.CompareString(products[i].Name, products[j].Name) < 0
		})
	default:
		sort.SliceStable(products, func(i, j int) bool { return products[i].IsNew && !products[j].IsNew })
	}
}

// Query is the full listing state carried in the URL.
type Query struct {
	Filter FilterState
	Sort   SortKey
	Layout Layout
}

// ParseQuery decodes listing state from URL values. Unknown values are
// ignored; prices are clamped to the panel bounds.
func ParseQuery(values url.Values) Query {
	q := Query{Filter: DefaultFilter(), Sort: ParseSortKey(values.Get("sort")), Layout: LayoutGrid}

	for _, raw := range splitValues(values["category"]) {
		if c, ok := catalog.ParseCategory(raw); ok && !q.Filter.HasCategory(c) {
			q.Filter.Categories = append(q.Filter.Categories, c)
		}
	}
	q.Filter.Sizes = dedupe(splitValues(values["size"]))
	q.Filter.Colors = dedupe(splitValues(values["color"]))

	if v, ok := parseDollars(values.Get("min")); ok {
		q.Filter.MinPrice = v
	}
	if v, ok := parseDollars(values.Get("max")); ok {
		q.Filter.MaxPrice = v
	}
	if q.Filter.MinPrice > q.Filter.MaxPrice {
		q.Filter.MinPrice, q.Filter.MaxPrice = q.Filter.MaxPrice, q.Filter.MinPrice
	}

	switch strings.ToLower(strings.TrimSpace(values.Get("instock"))) {
	case "1", "true", "on", "yes":
		q.Filter.InStockOnly = true
	}
	switch Flag(strings.ToLower(strings.TrimSpace(values.Get("filter")))) {
	case FlagNew:
		q.Filter.Flag = FlagNew
	case FlagSale:
		q.Filter.Flag = FlagSale
	}
	if Layout(values.Get("view")) == LayoutList {
		q.Layout = LayoutList
	}
	return q
}

// Values encodes the state, omitting defaults so the canonical URL for an
// untouched listing is plain /products.
func (q Query) Values() url.Values {
	v := url.Values{}
	for _, c := range q.Filter.Categories {
		v.Add("category", string(c))
	}
	for _, s := range q.Filter.Sizes {
		v.Add("size", s)
	}
	for _, c := range q.Filter.Colors {
		v.Add("color", c)
	}
	if q.Filter.MinPrice > PriceFloor {
		v.Set("min", strconv.Itoa(q.Filter.MinPrice))
	}
	if q.Filter.MaxPrice < PriceCeiling {
		v.Set("max", strconv.Itoa(q.Filter.MaxPrice))
	}
	if q.Filter.InStockOnly {
		v.Set("instock", "1")
	}
	if q.Filter.Flag != FlagNone {
		v.Set("filter", string(q.Filter.Flag))
	}
	if q.Sort != "" && q.Sort != SortNewest {
		v.Set("sort", string(q.Sort))
	}
	if q.Layout == LayoutList {
		v.Set("view", string(LayoutList))
	}
	return v
}

// URL returns the products path carrying this state.
func (q Query) URL() string {
	if enc := q.Values().Encode(); enc != "" {
		return "/products?" + enc
	}
	return "/products"
}

// WithLayout returns a copy using layout l.
func (q Query) WithLayout(l Layout) Query {
	q.Layout = l
	return q
}

// Cleared drops every filter but keeps sort and layout.
func (q Query) Cleared() Query {
	q.Filter = DefaultFilter()
	return q
}

func parseDollars(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	// Infinities fall into the clamps below.
	switch {
	case f < PriceFloor:
		return PriceFloor, true
	case f > PriceCeiling:
		return PriceCeiling, true
	}
	return int(f), true
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func anyOf(selected []string, has func(string) bool) bool {
	for _, s := range selected {
		if has(s) {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
