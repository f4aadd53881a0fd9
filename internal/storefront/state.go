package storefront

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/SubhamBera123/Elegance/internal/cart"
	"github.com/SubhamBera123/Elegance/internal/listing"
	"github.com/SubhamBera123/Elegance/internal/middleware"
	"github.com/SubhamBera123/Elegance/internal/nav"
	"github.com/SubhamBera123/Elegance/internal/observability"
	"github.com/SubhamBera123/Elegance/internal/seo"
	"github.com/SubhamBera123/Elegance/internal/theme"
	"github.com/SubhamBera123/Elegance/internal/view"
)

// StateBuilder assembles the application state passed to every render, so
// templates never look anything up themselves.
type StateBuilder struct {
	carts     *cart.Service
	baseURL   string
	analytics view.Analytics
}

// NewStateBuilder returns a builder reading cart counts from carts.
func NewStateBuilder(carts *cart.Service, baseURL string, analytics view.Analytics) *StateBuilder {
	return &StateBuilder{carts: carts, baseURL: baseURL, analytics: analytics}
}

// Build returns the state for rendering c at target.
func (b *StateBuilder) Build(ctx context.Context, r *http.Request, target string, c view.Context) (view.State, error) {
	path := pathOf(target)
	meta, leaf := describe(b.baseURL, target, c)
	return view.State{
		Path:        target,
		Theme:       theme.Resolve(r),
		CartCount:   b.cartCount(ctx, r, c),
		CSRFToken:   middleware.GetSession(r).CSRFToken,
		Nav:         nav.Build(target),
		Breadcrumbs: nav.Breadcrumbs(path, leaf),
		SEO:         meta,
		Analytics:   b.analytics,
	}, nil
}

func (b *StateBuilder) cartCount(ctx context.Context, r *http.Request, c view.Context) int {
	switch v := c.(type) {
	case view.CartContext:
		return v.Cart.ItemCount
	case view.CheckoutContext:
		return v.Cart.ItemCount
	}
	id := middleware.GetSession(r).CartID
	if id == "" || b.carts == nil {
		return 0
	}
	got, err := b.carts.Get(ctx, id)
	if err != nil {
		observability.FromContext(ctx).Warn("cart count unavailable", zap.String("cart_id", id), zap.Error(err))
		return 0
	}
	return got.ItemCount
}

// describe returns page meta for c and the label of the final breadcrumb.
func describe(baseURL, target string, c view.Context) (seo.Meta, string) {
	path := pathOf(target)
	switch v := c.(type) {
	case view.HomeContext:
		m := seo.New(baseURL, "", "Discover timeless dresses for every occasion: evening gowns, cocktail dresses and everyday favourites.", "/")
		return m.With(seo.Store(seo.SiteName, baseURL)), ""
	case view.ProductsContext:
		canonical := listing.Query{Filter: listing.DefaultFilter()}
		canonical.Filter.Flag = v.Query.Filter.Flag
		if len(v.Query.Filter.Categories) == 1 {
			canonical.Filter.Categories = v.Query.Filter.Categories
		}
		return seo.New(baseURL, v.Heading, "Browse our collection of dresses by category, size, color and price.", canonical.URL()), ""
	case view.ProductContext:
		if v.Product == nil {
			m := seo.New(baseURL, "Product not found", "", path)
			m.NoIndex = true
			return m, "Not found"
		}
		p := *v.Product
		m := seo.New(baseURL, p.Name, p.Description, "/product/"+p.ID)
		m.OG.Type = "product"
		m.OG.Image = p.Image
		m = m.With(seo.Product(baseURL, p))
		m = m.With(seo.BreadcrumbList(baseURL, nav.Breadcrumbs(path, p.Name)))
		return m, p.Name
	case view.CartContext:
		m := seo.New(baseURL, "Shopping Cart", "", "/cart")
		m.NoIndex = true
		return m, ""
	case view.CheckoutContext:
		m := seo.New(baseURL, "Checkout", "", "/checkout")
		m.NoIndex = true
		return m, ""
	case view.AccountContext:
		m := seo.New(baseURL, "My Account", "", "/account")
		m.NoIndex = true
		return m, ""
	case view.ContentContext:
		desc := v.Page.SEODescription
		if desc == "" {
			desc = v.Page.Summary
		}
		return seo.New(baseURL, v.Page.Title, desc, "/"+v.Page.Slug), v.Page.Title
	default:
		m := seo.New(baseURL, "Page not found", "", path)
		m.NoIndex = true
		return m, ""
	}
}
