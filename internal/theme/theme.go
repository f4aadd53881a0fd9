// Package theme resolves and persists the light/dark preference.
package theme

import (
	"net/http"
	"strings"
	"time"
)

// Theme is the active colour scheme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

const (
	// CookieName stores the explicit preference.
	CookieName = "theme"
	// HintHeader is the client hint carrying the OS preference.
	HintHeader = "Sec-CH-Prefers-Color-Scheme"
	cookieTTL  = 365 * 24 * time.Hour
)

// Parse returns the theme for raw and whether it was recognised.
func Parse(raw string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(raw))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// String implements fmt.Stringer.
func (t Theme) String() string { return string(t) }

// Resolve reads the stored cookie, then the client hint, then defaults to
// Light.
func Resolve(r *http.Request) Theme {
	if c, err := r.Cookie(CookieName); err == nil {
		if t, ok := Parse(c.Value); ok {
			return t
		}
	}
	if t, ok := Parse(r.Header.Get(HintHeader)); ok {
		return t
	}
	return Light
}

// Store writes the preference cookie.
func Store(w http.ResponseWriter, r *http.Request, t Theme) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    string(t),
		Path:     "/",
		Expires:  time.Now().Add(cookieTTL),
		MaxAge:   int(cookieTTL.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

// AdvertiseHint asks supporting browsers to send the colour scheme hint.
func AdvertiseHint(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Accept-CH", HintHeader)
	h.Add("Vary", HintHeader)
	h.Set("Critical-CH", HintHeader)
}
