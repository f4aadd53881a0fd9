package seo

import "strings"

// SiteName is appended to every page title.
const SiteName = "Elegance"

type OpenGraph struct {
	Title       string
	Description string
	Image       string
	Type        string
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	NoIndex     bool
	OG          OpenGraph
	JSONLD      []map[string]any
}

// New fills the defaults shared by every page. path is the canonical path.
func New(baseURL, title, description, path string) Meta {
	full := SiteName
	if title != "" && title != SiteName {
		full = title + " | " + SiteName
	}
	canonical := ""
	if baseURL != "" {
		canonical = strings.TrimRight(baseURL, "/") + path
	}
	return Meta{
		Title:       full,
		Description: description,
		Canonical:   canonical,
		OG: OpenGraph{
			Title:       full,
			Description: description,
			Type:        "website",
		},
	}
}

// With appends a JSON-LD document, skipping nil ones.
func (m Meta) With(doc map[string]any) Meta {
	if doc != nil {
		m.JSONLD = append(append([]map[string]any(nil), m.JSONLD...), doc)
	}
	return m
}
