// Package cart implements the shopping cart: one service performing a
// read-modify-write against a pluggable document store on every mutation.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/SubhamBera123/Elegance/internal/catalog"
)

// MaxQuantity caps the units held on one line.
const MaxQuantity = 99

var (
	errStoreRequired   = errors.New("cart service: store is required")
	errCatalogRequired = errors.New("cart service: catalog is required")
)

var (
	// ErrInvalidQuantity indicates a quantity outside 1..MaxQuantity, either
	// requested directly or reached by merging into an existing line.
	ErrInvalidQuantity = fmt.Errorf("cart service: quantity must be between 1 and %d", MaxQuantity)
	// ErrProductNotFound indicates the product id is not in the catalog.
	ErrProductNotFound = errors.New("cart service: product not found")
	// ErrMissingCartID indicates a mutation without a cart id.
	ErrMissingCartID = errors.New("cart service: cart id is required")
)

// Catalog resolves product ids.
type Catalog interface {
	Find(id string) (catalog.Product, bool)
}

// Deps wires the service dependencies.
type Deps struct {
	Store       Store
	Catalog     Catalog
	Clock       func() time.Time
	Logger      *zap.Logger
	IDGenerator func() string
}

// Service is the single cart implementation used by every page.
type Service struct {
	store   Store
	catalog Catalog
	now     func() time.Time
	logger  *zap.Logger
	newID   func() string
	locks   stripedLocks
}

// NewService validates deps and fills defaults.
func NewService(deps Deps) (*Service, error) {
	if deps.Store == nil {
		return nil, errStoreRequired
	}
	if deps.Catalog == nil {
		return nil, errCatalogRequired
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	return &Service{
		store:   deps.Store,
		catalog: deps.Catalog,
		now:     func() time.Time { return clock().UTC() },
		logger:  logger,
		newID:   idGen,
	}, nil
}

// NewID mints a cart id.
func (s *Service) NewID() string { return s.newID() }

// AddInput describes one add-to-cart request. Size and Color may be absent.
type AddInput struct {
	ProductID string
	Size      Option
	Color     Option
	Quantity  int
}

// Cart is the read model: lines resolved against the catalog with totals
// recomputed on every read.
type Cart struct {
	ID        string
	Lines     []CartLine
	Subtotal  int64
	ItemCount int
	UpdatedAt time.Time
}

// CartLine is one resolved line.
type CartLine struct {
	Key       Key
	Product   catalog.Product
	Quantity  int
	LineTotal int64
}

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool { return len(c.Lines) == 0 }

// Get returns the cart for id. A blank id or missing document is an empty cart.
func (s *Service) Get(ctx context.Context, id string) (Cart, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Cart{}, nil
	}
	doc, err := s.load(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	return s.resolve(doc), nil
}

// Add merges the input into the line with the same identity, or appends a
// new line.
func (s *Service) Add(ctx context.Context, id string, in AddInput) (Cart, error) {
	if in.Quantity < 1 || in.Quantity > MaxQuantity {
		return Cart{}, ErrInvalidQuantity
	}
	productID := strings.TrimSpace(in.ProductID)
	if _, ok := s.catalog.Find(productID); !ok {
		return Cart{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	key := Key{ProductID: productID, Size: in.Size, Color: in.Color}
	overflow := false
	c, err := s.mutate(ctx, id, func(doc *Document) bool {
		if i := doc.index(key); i >= 0 {
			if doc.Lines[i].Quantity+in.Quantity > MaxQuantity {
				overflow = true
				return false
			}
			doc.Lines[i].Quantity += in.Quantity
			return true
		}
		doc.Lines = append(doc.Lines, Line{ProductID: key.ProductID, Size: key.Size, Color: key.Color, Quantity: in.Quantity})
		return true
	})
	if err == nil && overflow {
		return c, ErrInvalidQuantity
	}
	return c, err
}

// UpdateQuantity sets the quantity of an existing line. A missing line is a
// no-op.
func (s *Service) UpdateQuantity(ctx context.Context, id string, key Key, quantity int) (Cart, error) {
	if quantity < 1 || quantity > MaxQuantity {
		return Cart{}, ErrInvalidQuantity
	}
	return s.mutate(ctx, id, func(doc *Document) bool {
		i := doc.index(key)
		if i < 0 || doc.Lines[i].Quantity == quantity {
			return false
		}
		doc.Lines[i].Quantity = quantity
		return true
	})
}

// Remove deletes the line with key. A missing line is a no-op.
func (s *Service) Remove(ctx context.Context, id string, key Key) (Cart, error) {
	return s.mutate(ctx, id, func(doc *Document) bool {
		i := doc.index(key)
		if i < 0 {
			return false
		}
		doc.Lines = append(doc.Lines[:i], doc.Lines[i+1:]...)
		return true
	})
}

// Clear removes every line.
func (s *Service) Clear(ctx context.Context, id string) (Cart, error) {
	return s.mutate(ctx, id, func(doc *Document) bool {
		if len(doc.Lines) == 0 {
			return false
		}
		doc.Lines = nil
		return true
	})
}

func (s *Service) mutate(ctx context.Context, id string, apply func(*Document) bool) (Cart, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Cart{}, ErrMissingCartID
	}

	mu := s.locks.of(id)
	mu.Lock()
	defer mu.Unlock()

	doc, err := s.load(ctx, id)
	if err != nil {
		return Cart{}, err
	}
	if apply(&doc) {
		doc.UpdatedAt = s.now()
		if err := s.store.Save(ctx, doc); err != nil {
			return Cart{}, err
		}
	}
	return s.resolve(doc), nil
}

// load treats missing and corrupt documents as empty carts.
func (s *Service) load(ctx context.Context, id string) (Document, error) {
	doc, err := s.store.Load(ctx, id)
	switch {
	case err == nil:
		doc.ID = id
		return doc, nil
	case errors.Is(err, ErrDocumentNotFound):
		return Document{ID: id}, nil
	case errors.Is(err, ErrCorruptDocument):
		s.logger.Warn("cart document unreadable, starting empty",
			zap.String("cart_id", id),
			zap.Error(err),
		)
		return Document{ID: id}, nil
	default:
		return Document{}, err
	}
}

func (s *Service) resolve(doc Document) Cart {
	out := Cart{ID: doc.ID, UpdatedAt: doc.UpdatedAt, Lines: make([]CartLine, 0, len(doc.Lines))}
	for _, l := range doc.Lines {
		if l.Quantity < 1 {
			continue
		}
		// Documents written before the cap, or edited by hand, may exceed it.
		l.Quantity = min(l.Quantity, MaxQuantity)
		p, ok := s.catalog.Find(l.ProductID)
		if !ok {
			s.logger.Debug("dropping cart line for unknown product",
				zap.String("cart_id", doc.ID),
				zap.String("product_id", l.ProductID),
			)
			continue
		}
		total := p.Price * int64(l.Quantity)
		out.Lines = append(out.Lines, CartLine{Key: l.Key(), Product: p, Quantity: l.Quantity, LineTotal: total})
		out.Subtotal += total
		out.ItemCount += l.Quantity
	}
	return out
}
