package view

import (
	"html/template"
	"net/http"

	"github.com/SubhamBera123/Elegance/internal/account"
	"github.com/SubhamBera123/Elegance/internal/cart"
	"github.com/SubhamBera123/Elegance/internal/catalog"
	"github.com/SubhamBera123/Elegance/internal/checkout"
	"github.com/SubhamBera123/Elegance/internal/content"
	"github.com/SubhamBera123/Elegance/internal/listing"
)

// Context is the typed data a page template is rendered with. The template
// executed is "page_" + TemplateName().
type Context interface {
	TemplateName() string
}

// StatusCoder lets a context choose the response status.
type StatusCoder interface {
	StatusCode() int
}

// Status returns the response status for c, defaulting to 200.
func Status(c Context) int {
	if sc, ok := c.(StatusCoder); ok {
		if code := sc.StatusCode(); code != 0 {
			return code
		}
	}
	return http.StatusOK
}

type HomeContext struct {
	Featured    []catalog.Product
	NewArrivals []catalog.Product
	Categories  []catalog.Category
}

func (HomeContext) TemplateName() string { return "home" }

// ProductsContext drives the listing page.
type ProductsContext struct {
	Heading     string
	Products    []catalog.Product
	Total       int
	Query       listing.Query
	Categories  []catalog.Category
	Sizes       []string
	Colors      []string
	SortOptions []listing.SortOption
	PriceFloor  int
	PriceCeil   int
	Notice      string
}

func (ProductsContext) TemplateName() string { return "products" }

// Selection is the variant picked on the detail page.
type Selection struct {
	Size     string
	Color    string
	Quantity int
}

// ProductContext drives the detail page. Product is nil when the id is
// unknown, which renders the not-found state.
type ProductContext struct {
	ID          string
	Product     *catalog.Product
	Description template.HTML
	Related     []catalog.Product
	Selection   Selection
	Warning     string
	Notice      string
}

func (ProductContext) TemplateName() string { return "product" }

func (c ProductContext) StatusCode() int {
	if c.Product == nil {
		return http.StatusNotFound
	}
	if c.Warning != "" {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

type CartContext struct {
	Cart             cart.Cart
	Quote            checkout.Quote
	FreeShippingOver int64
	Notice           string
}

func (CartContext) TemplateName() string { return "cart" }

// CheckoutContext drives the checkout form. Errors maps field names to
// messages; Error is a form-level failure such as a declined card.
type CheckoutContext struct {
	Cart            cart.Cart
	Quote           checkout.Quote
	Form            checkout.Form
	Values          map[string]string
	Errors          map[string]string
	Error           string
	States          []checkout.State
	ShippingOptions []checkout.ShippingOption
	CollectsCard    bool
}

func (CheckoutContext) TemplateName() string { return "checkout" }

func (c CheckoutContext) StatusCode() int {
	if len(c.Errors) > 0 || c.Error != "" {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

type AccountContext struct {
	Account account.Account
	Tab     account.Tab
	Tabs    []account.Tab
	Placed  string
}

func (AccountContext) TemplateName() string { return "account" }

type ContentContext struct {
	Page content.Page
}

func (ContentContext) TemplateName() string { return "content" }

type NotFoundContext struct {
	Path string
}

func (NotFoundContext) TemplateName() string { return "not_found" }

func (NotFoundContext) StatusCode() int { return http.StatusNotFound }
