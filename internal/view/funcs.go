package view

import (
	"encoding/json"
	"html/template"
	"math"
	"strings"
	"time"

	"github.com/SubhamBera123/Elegance/internal/cart"
	"github.com/SubhamBera123/Elegance/internal/format"
	"github.com/SubhamBera123/Elegance/internal/seo"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"usd":     format.USD,
		"dollars": format.Dollars,
		"number":  format.Number,
		"date":    format.Date,
		"percent": format.Percent,
		"now":     time.Now,
		"jsonld":  seo.JSONLD,
		"stars":   stars,
		"lower":   strings.ToLower,
		"join":    strings.Join,
		"add":     func(a, b int) int { return a + b },
		"maxQty":  func() int { return cart.MaxQuantity },
		"has": func(list []string, v string) bool {
			for _, s := range list {
				if s == v {
					return true
				}
			}
			return false
		},
		"hxHeaders": func(token string) string {
			raw, _ := json.Marshal(map[string]string{"X-CSRF-Token": token})
			return string(raw)
		},
		"dict": func(kv ...any) map[string]any {
			m := make(map[string]any, len(kv)/2)
			for i := 0; i+1 < len(kv); i += 2 {
				if k, ok := kv[i].(string); ok {
					m[k] = kv[i+1]
				}
			}
			return m
		},
	}
}

// stars renders a 0-5 rating as five filled/empty flags, rounded to the
// nearest whole star.
func stars(rating float64) []bool {
	filled := int(math.Round(rating))
	out := make([]bool, 5)
	for i := range out {
		out[i] = i < filled
	}
	return out
}
