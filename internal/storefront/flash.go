package storefront

import (
	"context"

	"github.com/SubhamBera123/Elegance/internal/checkout"
	"github.com/SubhamBera123/Elegance/internal/view"
)

type ctxKey string

const (
	ctxKeyFlash  ctxKey = "flash"
	ctxKeyTarget ctxKey = "target"
)

// Flash carries the outcome of a mutation into the loaders of the view
// re-dispatched for it.
type Flash struct {
	Notice     string
	Warning    string
	Selection  view.Selection
	Form       *checkout.Form
	FormErrors map[string]string
	FormError  string
}

// WithFlash attaches f to ctx.
func WithFlash(ctx context.Context, f Flash) context.Context {
	return context.WithValue(ctx, ctxKeyFlash, f)
}

func flashFrom(ctx context.Context) Flash {
	f, _ := ctx.Value(ctxKeyFlash).(Flash)
	return f
}

func withTarget(ctx context.Context, target string) context.Context {
	return context.WithValue(ctx, ctxKeyTarget, target)
}

func targetFrom(ctx context.Context) string {
	t, _ := ctx.Value(ctxKeyTarget).(string)
	return t
}
