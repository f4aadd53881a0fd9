package view

import (
	"encoding/json"
	"net/http"

	"github.com/SubhamBera123/Elegance/internal/nav"
	"github.com/SubhamBera123/Elegance/internal/seo"
	"github.com/SubhamBera123/Elegance/internal/theme"
)

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	GA4MeasurementID string // e.g. G-XXXXXXXXXX
	GTMContainerID   string // e.g. GTM-XXXXXXX
	Debug            bool
}

// State is the application state every render receives explicitly.
type State struct {
	Path        string
	Theme       theme.Theme
	CartCount   int
	CSRFToken   string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb
	SEO         seo.Meta
	Analytics   Analytics
}

// Effects describes what the client applies after a swap besides the mount
// replacement itself.
type Effects struct {
	CartCount int
	Theme     theme.Theme
	PushURL   string
	Title     string
	Events    map[string]any
}

// Trigger records an HX-Trigger event with detail.
func (e *Effects) Trigger(name string, detail any) {
	if e.Events == nil {
		e.Events = map[string]any{}
	}
	e.Events[name] = detail
}

// Apply writes the htmx response headers for e. Call before WriteHeader.
func (e Effects) Apply(w http.ResponseWriter) {
	if e.PushURL != "" {
		w.Header().Set("HX-Push-Url", e.PushURL)
	}
	if len(e.Events) > 0 {
		if raw, err := json.Marshal(e.Events); err == nil {
			w.Header().Set("HX-Trigger", string(raw))
		}
	}
}
