package storefront

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"regexp"

	"github.com/SubhamBera123/Elegance/internal/account"
	"github.com/SubhamBera123/Elegance/internal/cart"
	"github.com/SubhamBera123/Elegance/internal/catalog"
	"github.com/SubhamBera123/Elegance/internal/checkout"
	"github.com/SubhamBera123/Elegance/internal/content"
	"github.com/SubhamBera123/Elegance/internal/listing"
	"github.com/SubhamBera123/Elegance/internal/middleware"
	"github.com/SubhamBera123/Elegance/internal/nav"
	"github.com/SubhamBera123/Elegance/internal/route"
	"github.com/SubhamBera123/Elegance/internal/view"
)

const (
	featuredCount    = 4
	newArrivalsCount = 3
	relatedCount     = 4
)

var placedOrderPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,40}$`)

// Deps are the domain services loaders read from.
type Deps struct {
	Catalog  *catalog.Catalog
	Carts    *cart.Service
	Checkout *checkout.Service
	Account  account.Account
	Content  *content.Library
}

type loaders struct {
	Deps
}

// NewTable builds the storefront route table. Every pattern tolerates a
// query suffix because targets carry the raw query.
func NewTable(deps Deps) (*route.Table, error) {
	if deps.Catalog == nil || deps.Carts == nil || deps.Checkout == nil || deps.Content == nil {
		return nil, errors.New("storefront: catalog, carts, checkout and content are required")
	}
	l := loaders{deps}
	return route.New(
		route.Route{Name: "home", Pattern: regexp.MustCompile(`^/(?:\?.*)?$`), Load: l.home},
		route.Route{Name: "products", Pattern: regexp.MustCompile(`^/products/?(?:\?.*)?$`), Load: l.products},
		route.Route{Name: "product", Pattern: regexp.MustCompile(`^/product/([^/?]+)/?(?:\?.*)?$`), Load: l.product},
		route.Route{Name: "cart", Pattern: regexp.MustCompile(`^/cart/?(?:\?.*)?$`), Load: l.cart},
		route.Route{Name: "checkout", Pattern: regexp.MustCompile(`^/checkout/?(?:\?.*)?$`), Load: l.checkout},
		route.Route{Name: "account", Pattern: regexp.MustCompile(`^/account/?(?:\?.*)?$`), Load: l.account},
		route.Route{Name: "content", Pattern: regexp.MustCompile(`^/(about)/?(?:\?.*)?$`), Load: l.content},
		route.Route{Name: "not_found", Pattern: regexp.MustCompile(`^.*$`)},
	)
}

// query returns the parsed query of the target being dispatched.
func query(ctx context.Context) url.Values {
	_, q := nav.SplitTarget(targetFrom(ctx))
	return q
}

func (l loaders) home(ctx context.Context, r *http.Request, _ route.Params) (any, error) {
	return view.HomeContext{
		Featured:    l.Catalog.Featured(featuredCount),
		NewArrivals: l.Catalog.NewArrivals(newArrivalsCount),
		Categories:  catalog.Categories,
	}, nil
}

func (l loaders) products(ctx context.Context, r *http.Request, _ route.Params) (any, error) {
	q := listing.ParseQuery(query(ctx))
	return view.ProductsContext{
		Heading:     heading(q.Filter),
		Products:    listing.Apply(l.Catalog.All(), q.Filter, q.Sort),
		Total:       l.Catalog.Len(),
		Query:       q,
		Categories:  catalog.Categories,
		Sizes:       l.Catalog.Sizes(),
		Colors:      l.Catalog.Colors(),
		SortOptions: listing.SortOptions,
		PriceFloor:  listing.PriceFloor,
		PriceCeil:   listing.PriceCeiling,
		Notice:      flashFrom(ctx).Notice,
	}, nil
}

func heading(f listing.FilterState) string {
	switch {
	case f.Flag == listing.FlagNew:
		return "New Arrivals"
	case f.Flag == listing.FlagSale:
		return "Sale"
	case len(f.Categories) == 1:
		return string(f.Categories[0]) + " Dresses"
	default:
		return "All Dresses"
	}
}

func (l loaders) product(ctx context.Context, r *http.Request, params route.Params) (any, error) {
	id := params.At(0)
	flash := flashFrom(ctx)
	pc := view.ProductContext{ID: id, Selection: flash.Selection, Warning: flash.Warning, Notice: flash.Notice}
	if pc.Selection.Quantity < 1 {
		pc.Selection.Quantity = 1
	}
	p, ok := l.Catalog.Find(id)
	if !ok {
		return pc, nil
	}
	pc.Product = &p
	pc.Description = l.Content.Markdown(p.Description)
	pc.Related = l.Catalog.Related(p, relatedCount)
	return pc, nil
}

func (l loaders) cart(ctx context.Context, r *http.Request, _ route.Params) (any, error) {
	c, err := l.Carts.Get(ctx, middleware.GetSession(r).CartID)
	if err != nil {
		return nil, err
	}
	return view.CartContext{
		Cart:             c,
		Quote:            checkout.NewQuote(c.Subtotal, checkout.ShippingStandard),
		FreeShippingOver: checkout.FreeShippingOver,
		Notice:           flashFrom(ctx).Notice,
	}, nil
}

func (l loaders) checkout(ctx context.Context, r *http.Request, _ route.Params) (any, error) {
	c, err := l.Carts.Get(ctx, middleware.GetSession(r).CartID)
	if err != nil {
		return nil, err
	}
	flash := flashFrom(ctx)
	form := checkout.DefaultForm()
	if flash.Form != nil {
		form = *flash.Form
	}
	errs := flash.FormErrors
	if errs == nil {
		errs = map[string]string{}
	}
	return view.CheckoutContext{
		Cart:            c,
		Quote:           checkout.NewQuote(c.Subtotal, form.Shipping),
		Form:            form,
		Values:          form.Values(),
		Errors:          errs,
		Error:           flash.FormError,
		States:          checkout.States,
		ShippingOptions: checkout.ShippingOptions,
		CollectsCard:    l.Checkout.CollectsCard(),
	}, nil
}

func (l loaders) account(ctx context.Context, r *http.Request, _ route.Params) (any, error) {
	q := query(ctx)
	ac := view.AccountContext{
		Account: l.Account,
		Tab:     account.ParseTab(first(q["tab"])),
		Tabs:    account.Tabs,
	}
	if placed := first(q["placed"]); placedOrderPattern.MatchString(placed) {
		ac.Placed = placed
	}
	return ac, nil
}

func (l loaders) content(ctx context.Context, r *http.Request, params route.Params) (any, error) {
	page, err := l.Content.Get(ctx, params.At(0))
	if errors.Is(err, content.ErrNotFound) {
		return view.NotFoundContext{Path: "/" + params.At(0)}, nil
	}
	if err != nil {
		return nil, err
	}
	return view.ContentContext{Page: page}, nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
