package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/products.yaml
var defaultFixture []byte

// Category enumerates the fixed product categories.
type Category string

const (
	CategoryEvening      Category = "Evening"
	CategoryCocktail     Category = "Cocktail"
	CategoryCasual       Category = "Casual"
	CategoryProfessional Category = "Professional"
	CategoryVintage      Category = "Vintage"
	CategoryParty        Category = "Party"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryEvening,
	CategoryCocktail,
	CategoryCasual,
	CategoryProfessional,
	CategoryVintage,
	CategoryParty,
}

// ParseCategory matches a category case-insensitively.
func ParseCategory(raw string) (Category, bool) {
	raw = strings.TrimSpace(raw)
	for _, c := range Categories {
		if strings.EqualFold(string(c), raw) {
			return c, true
		}
	}
	return "", false
}

// Product is an immutable catalog record. Money amounts are in cents.
type Product struct {
	ID            string
	Name          string
	Price         int64
	OriginalPrice int64 // zero unless the product is discounted
	Image         string
	Images        []string
	Description   string
	Category      Category
	Sizes         []string
	Colors        []string
	InStock       bool
	IsNew         bool
	IsSale        bool
	Rating        float64
	Reviews       int
}

// Discounted reports whether an original price is shown next to the price.
func (p Product) Discounted() bool { return p.OriginalPrice > 0 }

// HasSize reports whether the product is offered in size.
func (p Product) HasSize(size string) bool { return contains(p.Sizes, size) }

// HasColor reports whether the product is offered in color.
func (p Product) HasColor(color string) bool { return contains(p.Colors, color) }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Catalog is the read-only product set loaded once at startup.
type Catalog struct {
	products []Product
	byID     map[string]int
	sizes    []string
	colors   []string
}

type fixture struct {
	Sizes    []string         `yaml:"sizes"`
	Colors   []string         `yaml:"colors"`
	Products []productFixture `yaml:"products"`
}

type productFixture struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Price         float64  `yaml:"price"`
	OriginalPrice float64  `yaml:"original_price"`
	Image         string   `yaml:"image"`
	Images        []string `yaml:"images"`
	Description   string   `yaml:"description"`
	Category      string   `yaml:"category"`
	Sizes         []string `yaml:"sizes"`
	Colors        []string `yaml:"colors"`
	InStock       bool     `yaml:"in_stock"`
	IsNew         bool     `yaml:"is_new"`
	IsSale        bool     `yaml:"is_sale"`
	Rating        float64  `yaml:"rating"`
	Reviews       int      `yaml:"reviews"`
}

// ValidationError lists every invalid record found while loading a fixture.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("catalog: invalid fixture: %s", strings.Join(e.Problems, "; "))
}

// Default parses the embedded fixture.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultFixture))
}

// Load parses and validates a YAML catalog fixture.
func Load(r io.Reader) (*Catalog, error) {
	var fx fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("catalog: decode fixture: %w", err)
	}

	c := &Catalog{
		products: make([]Product, 0, len(fx.Products)),
		byID:     make(map[string]int, len(fx.Products)),
		sizes:    append([]string(nil), fx.Sizes...),
		colors:   append([]string(nil), fx.Colors...),
	}
	var problems []string
	for i, raw := range fx.Products {
		p, errs := raw.toProduct()
		if _, dup := c.byID[p.ID]; dup {
			errs = append(errs, "duplicate id")
		}
		if len(errs) > 0 {
			problems = append(problems, fmt.Sprintf("product[%d] %q: %s", i, raw.ID, strings.Join(errs, ", ")))
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	if len(c.sizes) == 0 {
		c.sizes = collect(c.products, func(p Product) []string { return p.Sizes })
	}
	if len(c.colors) == 0 {
		c.colors = collect(c.products, func(p Product) []string { return p.Colors })
	}
	return c, nil
}

func (f productFixture) toProduct() (Product, []string) {
	var errs []string
	id := strings.TrimSpace(f.ID)
	if id == "" {
		errs = append(errs, "missing id")
	}
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, "missing name")
	}
	price := toCents(f.Price)
	original := toCents(f.OriginalPrice)
	if price < 0 {
		errs = append(errs, "negative price")
	}
	if original != 0 && original < price {
		errs = append(errs, "original price below price")
	}
	category, ok := ParseCategory(f.Category)
	if !ok {
		errs = append(errs, fmt.Sprintf("unknown category %q", f.Category))
	}
	if f.Rating < 0 || f.Rating > 5 {
		errs = append(errs, "rating outside 0-5")
	}
	if f.Reviews < 0 {
		errs = append(errs, "negative review count")
	}
	images := append([]string(nil), f.Images...)
	if len(images) == 0 && f.Image != "" {
		images = []string{f.Image}
	}
	return Product{
		ID:            id,
		Name:          strings.TrimSpace(f.Name),
		Price:         price,
		OriginalPrice: original,
		Image:         f.Image,
		Images:        images,
		Description:   strings.TrimSpace(f.Description),
		Category:      category,
		Sizes:         append([]string(nil), f.Sizes...),
		Colors:        append([]string(nil), f.Colors...),
		InStock:       f.InStock,
		IsNew:         f.IsNew,
		IsSale:        f.IsSale,
		Rating:        f.Rating,
		Reviews:       f.Reviews,
	}, errs
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func collect(products []Product, field func(Product) []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range products {
		for _, v := range field(p) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Strings(out)
	return out
}

// All returns the products in catalog order. The slice is a copy.
func (c *Catalog) All() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len returns the number of products.
func (c *Catalog) Len() int { return len(c.products) }

// Find looks a product up by id.
func (c *Catalog) Find(id string) (Product, bool) {
	i, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Sizes returns the sizes offered by the filter panel.
func (c *Catalog) Sizes() []string { return append([]string(nil), c.sizes...) }

// Colors returns the colors offered by the filter panel.
func (c *Catalog) Colors() []string { return append([]string(nil), c.colors...) }

// Related returns up to limit products sharing p's category, excluding p.
func (c *Catalog) Related(p Product, limit int) []Product {
	var out []Product
	for _, candidate := range c.products {
		if len(out) == limit {
			break
		}
		if candidate.Category == p.Category && candidate.ID != p.ID {
			out = append(out, candidate)
		}
	}
	return out
}

// Featured returns the first n products.
func (c *Catalog) Featured(n int) []Product {
	if n > len(c.products) {
		n = len(c.products)
	}
	return append([]Product(nil), c.products[:n]...)
}

// NewArrivals returns up to n products flagged as new.
func (c *Catalog) NewArrivals(n int) []Product {
	var out []Product
	for _, p := range c.products {
		if len(out) == n {
			break
		}
		if p.IsNew {
			out = append(out, p)
		}
	}
	return out
}
