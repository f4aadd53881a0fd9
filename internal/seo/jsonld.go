package seo

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/SubhamBera123/Elegance/internal/catalog"
	"github.com/SubhamBera123/Elegance/internal/nav"
)

// JSONLD marshals v into a value safe to embed in a script element. It
// returns an empty value on error.
func JSONLD(v any) template.JS {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return template.JS(b)
}

// Store returns the storefront Organization/OnlineStore schema.
func Store(name, baseURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "OnlineStore",
		"name":     name,
	}
	if baseURL != "" {
		m["url"] = baseURL
		m["potentialAction"] = map[string]any{
			"@type":       "SearchAction",
			"target":      strings.TrimRight(baseURL, "/") + "/products?category={category}",
			"query-input": "required name=category",
		}
	}
	return m
}

// BreadcrumbList builds schema.org BreadcrumbList from rendered crumbs.
func BreadcrumbList(baseURL string, crumbs []nav.Crumb) map[string]any {
	if len(crumbs) < 2 {
		return nil
	}
	base := strings.TrimRight(baseURL, "/")
	el := make([]map[string]any, 0, len(crumbs))
	for i, c := range crumbs {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     c.Label,
			"item":     base + c.Href,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Product returns the product schema with offer and rating.
func Product(baseURL string, p catalog.Product) map[string]any {
	availability := "https://schema.org/InStock"
	if !p.InStock {
		availability = "https://schema.org/OutOfStock"
	}
	url := strings.TrimRight(baseURL, "/") + "/product/" + p.ID
	m := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Product",
		"sku":         p.ID,
		"name":        p.Name,
		"description": p.Description,
		"category":    string(p.Category),
		"url":         url,
		"offers": map[string]any{
			"@type":         "Offer",
			"price":         fmt.Sprintf("%d.%02d", p.Price/100, p.Price%100),
			"priceCurrency": "USD",
			"availability":  availability,
			"url":           url,
		},
	}
	if len(p.Images) > 0 {
		m["image"] = p.Images
	}
	if p.Reviews > 0 {
		m["aggregateRating"] = map[string]any{
			"@type":       "AggregateRating",
			"ratingValue": p.Rating,
			"reviewCount": p.Reviews,
		}
	}
	return m
}
