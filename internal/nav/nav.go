package nav

import (
	"net/url"
	"path"
	"strings"
)

// Item represents a header navigation entry. Href may carry a query, in
// which case the item is active only when that query matches too.
type Item struct {
	Href  string
	Label string
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href   string
	Label  string
	Active bool
}

// Crumb represents a breadcrumb entry.
type Crumb struct {
	Href   string
	Label  string
	Active bool
}

// Main is the header navigation.
var Main = []Item{
	{Href: "/", Label: "Home"},
	{Href: "/products", Label: "Dresses"},
	{Href: "/products?filter=new", Label: "New Arrivals"},
	{Href: "/products?filter=sale", Label: "Sale"},
	{Href: "/about", Label: "About"},
}

var sectionLabels = map[string]string{
	"products": "Dresses",
	"product":  "Dresses",
	"cart":     "Shopping Cart",
	"checkout": "Checkout",
	"account":  "My Account",
	"about":    "About",
}

// Build renders navigation items with active state for the request target
// (path plus optional raw query).
func Build(target string) []RenderedItem {
	currentPath, query := SplitTarget(target)
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:   it.Href,
			Label:  it.Label,
			Active: isActive(it.Href, currentPath, query),
		})
	}
	return items
}

// SplitTarget separates a request target into its path and parsed query.
func SplitTarget(target string) (string, url.Values) {
	if target == "" {
		return "/", url.Values{}
	}
	p, raw, _ := strings.Cut(target, "?")
	q, _ := url.ParseQuery(raw)
	if p == "" {
		p = "/"
	}
	return p, q
}

func isActive(href, currentPath string, query url.Values) bool {
	itemPath, itemQuery := SplitTarget(href)
	if itemPath == "/" {
		return currentPath == "/"
	}
	if currentPath != itemPath && !strings.HasPrefix(currentPath, itemPath+"/") {
		return false
	}
	// "/products" stays active only for the unflagged listing.
	if f := itemQuery.Get("filter"); f != "" || query.Get("filter") != "" {
		return f == query.Get("filter")
	}
	return true
}

// Breadcrumbs builds breadcrumb entries from the current path. leaf, when
// set, labels the final crumb (for example a product name).
func Breadcrumbs(currentPath, leaf string) []Crumb {
	currentPath, _ = SplitTarget(currentPath)
	crumbs := []Crumb{{Href: "/", Label: "Home", Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}

	clean := path.Clean(currentPath)
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	top := parts[0]
	topHref := "/" + top
	if top == "product" {
		topHref = "/products"
	}
	label, ok := sectionLabels[top]
	if !ok {
		label = titleFromSegment(top)
	}
	crumbs = append(crumbs, Crumb{Href: topHref, Label: label, Active: len(parts) == 1})

	if len(parts) > 1 {
		href := "/" + top
		for i := 1; i < len(parts); i++ {
			href = href + "/" + parts[i]
			label := titleFromSegment(parts[i])
			if i == len(parts)-1 && leaf != "" {
				label = leaf
			}
			crumbs = append(crumbs, Crumb{Href: href, Label: label, Active: i == len(parts)-1})
		}
	}
	return crumbs
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
