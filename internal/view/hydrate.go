package view

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Hydrated is mount markup after the hydration pass.
type Hydrated struct {
	Markup string
	// Links lists the internal hrefs the navigation interceptor will boost,
	// in document order.
	Links []string
}

// Hydrate scans markup for anchors. Internal links are collected; anchors
// that must fall back to browser navigation (new tab, download, external
// origin) are marked hx-boost="false".
func Hydrate(markup string) (Hydrated, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return Hydrated{}, fmt.Errorf("view: parse mount markup: %w", err)
	}

	var out Hydrated
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			hydrateAnchor(n, &out)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		walk(n)
		if err := html.Render(&buf, n); err != nil {
			return Hydrated{}, fmt.Errorf("view: render hydrated markup: %w", err)
		}
	}
	out.Markup = buf.String()
	return out, nil
}

func hydrateAnchor(n *html.Node, out *Hydrated) {
	href, ok := attr(n, "href")
	if !ok {
		return
	}
	target, _ := attr(n, "target")
	_, download := attr(n, "download")
	internal := IsInternalPath(href)

	if strings.EqualFold(target, "_blank") || download || !internal {
		setAttr(n, "hx-boost", "false")
		return
	}
	if v, _ := attr(n, "hx-boost"); v == "false" {
		return
	}
	out.Links = append(out.Links, href)
}

// IsInternalPath reports whether href is a same-origin path. Browsers treat
// both "//host" and "/\host" as scheme-relative.
func IsInternalPath(href string) bool {
	return strings.HasPrefix(href, "/") &&
		!strings.HasPrefix(href, "//") &&
		!strings.HasPrefix(href, `/\`)
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
