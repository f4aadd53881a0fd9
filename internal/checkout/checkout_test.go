package checkout

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SubhamBera123/Elegance/internal/cart"
	"github.com/SubhamBera123/Elegance/internal/catalog"
	"github.com/SubhamBera123/Elegance/internal/events"
	"github.com/SubhamBera123/Elegance/internal/payments"
)

func TestNewQuote(t *testing.T) {
	q := NewQuote(18999, ShippingStandard)
	require.Equal(t, StandardRate, q.Shipping)
	require.Equal(t, int64(1520), q.Tax)
	require.Equal(t, int64(18999+1500+1520), q.Total)
	require.Equal(t, int64(1002), q.AmountToFreeShipping())

	q = NewQuote(18999, ShippingExpress)
	require.Equal(t, ExpressRate, q.Shipping)

	q = NewQuote(20000, ShippingExpress)
	require.False(t, q.FreeShipping)

	q = NewQuote(29999, ShippingExpress)
	require.True(t, q.FreeShipping)
	require.Zero(t, q.Shipping)
	require.Equal(t, int64(2400), q.Tax)
	require.Zero(t, q.AmountToFreeShipping())
}

func validValues() url.Values {
	return url.Values{
		"firstName":   {"Jane"},
		"lastName":    {"Doe"},
		"email":       {"jane@example.com"},
		"address":     {"123 Main Street"},
		"city":        {"New York"},
		"state":       {"NY"},
		"zipCode":     {"10001"},
		"shipping":    {"express"},
		"payment":     {"credit-card"},
		"cardNumber":  {"4242 4242 4242 4242"},
		"expiry":      {"12/29"},
		"cvv":         {"123"},
		"cardName":    {"Jane Doe"},
		"billingSame": {"on"},
	}
}

func TestFormValidation(t *testing.T) {
	f := ParseForm(validValues())
	require.Empty(t, f.Validate(true))
	require.Equal(t, "New York", f.StateName())
	require.Equal(t, ShippingExpress, f.Shipping)

	v := validValues()
	v.Set("email", "nope")
	v.Set("zipCode", "1234")
	v.Set("expiry", "13/29")
	v.Set("cvv", "12a")
	v.Del("firstName")
	errs := ParseForm(v).Validate(true)
	require.Contains(t, errs, "email")
	require.Contains(t, errs, "zipCode")
	require.Contains(t, errs, "expiry")
	require.Contains(t, errs, "cvv")
	require.Contains(t, errs, "firstName")
	require.NotContains(t, errs, "phone")

	v = validValues()
	v.Set("payment", "paypal")
	v.Del("cardNumber")
	require.Empty(t, ParseForm(v).Validate(true))

	v = validValues()
	v.Del("cardNumber")
	require.Empty(t, ParseForm(v).Validate(false))
	require.NotContains(t, ParseForm(validValues()).Values(), "cvv")
}

type recordingPublisher struct {
	events []events.OrderPlaced
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, e events.OrderPlaced) (string, error) {
	p.events = append(p.events, e)
	return e.OrderID, p.err
}

func newCheckout(t *testing.T, provider payments.Provider, pub events.Publisher) (*Service, *cart.Service) {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	carts, err := cart.NewService(cart.Deps{Store: cart.NewMemoryStore(), Catalog: c})
	require.NoError(t, err)
	svc, err := NewService(Deps{
		Carts:       carts,
		Payments:    provider,
		Publisher:   pub,
		BaseURL:     "https://shop.example/",
		Clock:       func() time.Time { return time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC) },
		IDGenerator: func() string { return "ORD-TEST" },
	})
	require.NoError(t, err)
	return svc, carts
}

func TestPlaceOrderClearsCartAndPublishes(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc, carts := newCheckout(t, payments.FakeProvider{}, pub)

	_, err := carts.Add(ctx, "C1", cart.AddInput{ProductID: "2", Size: cart.Some("S"), Color: cart.Some("Black"), Quantity: 1})
	require.NoError(t, err)

	order, err := svc.PlaceOrder(ctx, "C1", ParseForm(validValues()))
	require.NoError(t, err)
	require.Equal(t, "ORD-TEST", order.ID)
	require.Equal(t, "/account?tab=orders&placed=ORD-TEST", order.RedirectURL)
	require.Equal(t, "4242", order.Payment.Last4)
	require.Equal(t, ExpressRate, order.Quote.Shipping)

	require.Len(t, pub.events, 1)
	require.Equal(t, "S", pub.events[0].Lines[0].Size)

	after, err := carts.Get(ctx, "C1")
	require.NoError(t, err)
	require.True(t, after.Empty())
}

func TestPlaceOrderInvalidFormKeepsCart(t *testing.T) {
	ctx := context.Background()
	svc, carts := newCheckout(t, payments.FakeProvider{}, &recordingPublisher{})

	_, err := carts.Add(ctx, "C1", cart.AddInput{ProductID: "2", Quantity: 1})
	require.NoError(t, err)

	v := validValues()
	v.Del("city")
	_, err = svc.PlaceOrder(ctx, "C1", ParseForm(v))
	var formErr *FormError
	require.True(t, errors.As(err, &formErr))
	require.Contains(t, formErr.Fields, "city")

	after, err := carts.Get(ctx, "C1")
	require.NoError(t, err)
	require.Equal(t, 1, after.ItemCount)
}

func TestPlaceOrderEmptyCartAndDecline(t *testing.T) {
	ctx := context.Background()
	svc, carts := newCheckout(t, payments.FakeProvider{}, &recordingPublisher{})

	_, err := svc.PlaceOrder(ctx, "C1", ParseForm(validValues()))
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = carts.Add(ctx, "C1", cart.AddInput{ProductID: "2", Quantity: 1})
	require.NoError(t, err)
	v := validValues()
	v.Set("cardNumber", payments.DeclineCardNumber)
	_, err = svc.PlaceOrder(ctx, "C1", ParseForm(v))
	require.ErrorIs(t, err, payments.ErrDeclined)

	after, err := carts.Get(ctx, "C1")
	require.NoError(t, err)
	require.False(t, after.Empty())
}

func TestPublishFailureDoesNotFailOrder(t *testing.T) {
	ctx := context.Background()
	svc, carts := newCheckout(t, payments.FakeProvider{}, &recordingPublisher{err: errors.New("topic down")})

	_, err := carts.Add(ctx, "C1", cart.AddInput{ProductID: "3", Quantity: 2})
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, "C1", ParseForm(validValues()))
	require.NoError(t, err)
}

type pendingProvider struct{}

func (pendingProvider) Name() string { return "hosted" }

func (pendingProvider) Charge(_ context.Context, req payments.ChargeRequest) (payments.ChargeResult, error) {
	return payments.ChargeResult{
		Reference:   "cs_test_" + req.OrderID,
		Status:      payments.StatusPending,
		RedirectURL: "https://pay.example/c/" + req.OrderID,
	}, nil
}

func TestPendingChargeKeepsCartAndDefersEvent(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	svc, carts := newCheckout(t, pendingProvider{}, pub)

	_, err := carts.Add(ctx, "C1", cart.AddInput{ProductID: "2", Size: cart.Some("S"), Color: cart.Some("Black"), Quantity: 2})
	require.NoError(t, err)

	order, err := svc.PlaceOrder(ctx, "C1", ParseForm(validValues()))
	require.NoError(t, err)
	require.True(t, order.Pending())
	require.Equal(t, "https://pay.example/c/ORD-TEST", order.RedirectURL)
	require.Empty(t, pub.events)

	after, err := carts.Get(ctx, "C1")
	require.NoError(t, err)
	require.Equal(t, 2, after.ItemCount)
}
