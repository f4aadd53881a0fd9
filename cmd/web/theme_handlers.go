package main

import (
	"net/http"

	mw "github.com/SubhamBera123/Elegance/internal/middleware"
	"github.com/SubhamBera123/Elegance/internal/theme"
	"github.com/SubhamBera123/Elegance/internal/view"
)

// toggleTheme flips the stored preference. htmx callers restyle in place
// from the theme:changed event; plain posts go back where they came from.
func (a *app) toggleTheme(w http.ResponseWriter, r *http.Request) {
	next := theme.Resolve(r).Toggle()
	theme.Store(w, r, next)
	theme.AdvertiseHint(w)

	if !mw.IsHTMX(r.Context()) {
		http.Redirect(w, r, returnTarget(r, "/"), http.StatusSeeOther)
		return
	}
	var fx view.Effects
	fx.Theme = next
	fx.Trigger("theme:changed", map[string]string{"theme": next.String()})
	fx.Apply(w)
	w.WriteHeader(http.StatusNoContent)
}
