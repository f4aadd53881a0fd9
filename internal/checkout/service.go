// Package checkout prices carts and turns them into placed orders.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/SubhamBera123/Elegance/internal/cart"
	"github.com/SubhamBera123/Elegance/internal/events"
	"github.com/SubhamBera123/Elegance/internal/payments"
)

const currency = "USD"

var (
	errCartsRequired    = errors.New("checkout service: cart service is required")
	errProviderRequired = errors.New("checkout service: payment provider is required")
)

// ErrEmptyCart indicates checkout was attempted with no lines.
var ErrEmptyCart = errors.New("checkout service: cart is empty")

// Carts is the subset of the cart service used here.
type Carts interface {
	Get(ctx context.Context, id string) (cart.Cart, error)
	Clear(ctx context.Context, id string) (cart.Cart, error)
}

// Deps wires the checkout service.
type Deps struct {
	Carts     Carts
	Payments  payments.Provider
	Publisher events.Publisher
	// BaseURL is the absolute origin used for provider return URLs.
	BaseURL     string
	Clock       func() time.Time
	Logger      *zap.Logger
	IDGenerator func() string
}

// Service places orders.
type Service struct {
	carts     Carts
	payments  payments.Provider
	publisher events.Publisher
	baseURL   string
	now       func() time.Time
	logger    *zap.Logger
	newID     func() string
}

// NewService validates deps and fills defaults.
func NewService(deps Deps) (*Service, error) {
	if deps.Carts == nil {
		return nil, errCartsRequired
	}
	if deps.Payments == nil {
		return nil, errProviderRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.LogPublisher{Logger: logger}
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return "ORD-" + ulid.Make().String() }
	}
	return &Service{
		carts:     deps.Carts,
		payments:  deps.Payments,
		publisher: publisher,
		baseURL:   strings.TrimRight(deps.BaseURL, "/"),
		now:       func() time.Time { return clock().UTC() },
		logger:    logger,
		newID:     idGen,
	}, nil
}

// CollectsCard reports whether card details are entered on the checkout page.
// Hosted providers collect them on their own page.
func (s *Service) CollectsCard() bool {
	_, hosted := s.payments.(*payments.StripeProvider)
	return !hosted
}

// Order is the outcome of PlaceOrder.
type Order struct {
	ID          string
	CartID      string
	Quote       Quote
	Lines       []events.OrderLine
	Payment     payments.ChargeResult
	PlacedAt    time.Time
	RedirectURL string
}

// Pending reports whether the customer still has to finish payment on the
// provider's page.
func (o Order) Pending() bool { return o.Payment.Status == payments.StatusPending }

// ConfirmationURL is where the customer lands after a completed order.
func ConfirmationURL(orderID string) string {
	return "/account?tab=orders&placed=" + orderID
}

// PlaceOrder validates the form, charges the provider, publishes the order
// event and clears the cart. Validation failures return *FormError and leave
// the cart untouched. A pending charge only returns the provider redirect:
// nothing is published and the cart is kept until payment completes.
func (s *Service) PlaceOrder(ctx context.Context, cartID string, form Form) (Order, error) {
	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return Order{}, err
	}
	if c.Empty() {
		return Order{}, ErrEmptyCart
	}
	if fields := form.Validate(s.CollectsCard()); len(fields) > 0 {
		return Order{}, &FormError{Fields: fields}
	}

	quote := NewQuote(c.Subtotal, form.Shipping)
	order := Order{ID: s.newID(), CartID: c.ID, Quote: quote, PlacedAt: s.now()}
	items := make([]payments.LineItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		order.Lines = append(order.Lines, events.OrderLine{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Size:      l.Key.Size.String(),
			Color:     l.Key.Color.String(),
			Quantity:  l.Quantity,
			UnitPrice: l.Product.Price,
		})
		items = append(items, payments.LineItem{
			SKU:      l.Product.ID,
			Name:     l.Product.Name,
			Amount:   l.Product.Price,
			Quantity: int64(l.Quantity),
		})
	}

	result, err := s.payments.Charge(ctx, payments.ChargeRequest{
		OrderID:    order.ID,
		Currency:   currency,
		Email:      form.Email,
		Items:      items,
		Shipping:   quote.Shipping,
		Tax:        quote.Tax,
		Total:      quote.Total,
		Method:     form.Payment,
		Card:       form.Card(),
		SuccessURL: s.baseURL + ConfirmationURL(order.ID),
		CancelURL:  s.baseURL + "/checkout",
	})
	if err != nil {
		s.logger.Warn("payment failed",
			zap.String("order_id", order.ID),
			zap.String("provider", s.payments.Name()),
			zap.Error(err),
		)
		return Order{}, fmt.Errorf("checkout: charge %s: %w", order.ID, err)
	}
	order.Payment = result
	order.RedirectURL = result.RedirectURL
	if order.RedirectURL == "" {
		order.RedirectURL = ConfirmationURL(order.ID)
	}
	if order.Pending() {
		s.logger.Info("order awaiting payment",
			zap.String("order_id", order.ID),
			zap.String("provider", s.payments.Name()),
			zap.String("payment_reference", result.Reference),
		)
		return order, nil
	}

	if _, err := s.publisher.PublishOrderPlaced(ctx, events.OrderPlaced{
		OrderID:          order.ID,
		CartID:           c.ID,
		Email:            form.Email,
		Lines:            order.Lines,
		Subtotal:         quote.Subtotal,
		Shipping:         quote.Shipping,
		Tax:              quote.Tax,
		Total:            quote.Total,
		Currency:         currency,
		ShippingMethod:   string(quote.Method),
		PaymentMethod:    string(form.Payment),
		PaymentReference: result.Reference,
		PlacedAt:         order.PlacedAt,
	}); err != nil {
		// A charged order stands even if the event is lost.
		s.logger.Error("publish order event failed", zap.String("order_id", order.ID), zap.Error(err))
	}

	if _, err := s.carts.Clear(ctx, cartID); err != nil {
		s.logger.Error("clear cart after order failed", zap.String("order_id", order.ID), zap.Error(err))
	}
	s.logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("payment_status", string(result.Status)),
		zap.Int64("total", quote.Total),
	)
	return order, nil
}
