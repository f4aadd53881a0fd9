package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"go.uber.org/zap"
)

type stripeSessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeConfig configures StripeProvider. Sessions replaces the API client
// in tests.
type StripeConfig struct {
	APIKey   string
	Backends *stripe.Backends
	Logger   *zap.Logger
	Sessions stripeSessionAPI
}

// StripeProvider hands payment off to a hosted Stripe Checkout session.
type StripeProvider struct {
	sessions stripeSessionAPI
	logger   *zap.Logger
}

// NewStripeProvider requires an API key unless Sessions is supplied.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	sessions := cfg.Sessions
	if sessions == nil {
		apiKey := strings.TrimSpace(cfg.APIKey)
		if apiKey == "" {
			return nil, errors.New("stripe: api key is required")
		}
		sessions = client.New(apiKey, cfg.Backends).CheckoutSessions
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripeProvider{sessions: sessions, logger: logger}, nil
}

func (p *StripeProvider) Name() string { return "stripe" }

// Charge creates a checkout session and returns its hosted URL.
func (p *StripeProvider) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = "usd"
	}
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.OrderID),
	}
	params.Context = ctx
	params.SetIdempotencyKey("order-" + req.OrderID)
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.Metadata = map[string]string{"order_id": req.OrderID}

	items := append([]LineItem(nil), req.Items...)
	if req.Shipping > 0 {
		items = append(items, LineItem{SKU: "shipping", Name: "Shipping", Amount: req.Shipping, Quantity: 1})
	}
	if req.Tax > 0 {
		items = append(items, LineItem{SKU: "tax", Name: "Tax", Amount: req.Tax, Quantity: 1})
	}
	for _, item := range items {
		line := &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(max(item.Quantity, 1)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(item.Amount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		}
		if item.Description != "" {
			line.PriceData.ProductData.Description = stripe.String(item.Description)
		}
		if item.SKU != "" {
			line.PriceData.ProductData.Metadata = map[string]string{"sku": item.SKU}
		}
		params.LineItems = append(params.LineItems, line)
	}

	session, err := p.sessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			return ChargeResult{}, fmt.Errorf("%w: %s", ErrDeclined, stripeErr.Msg)
		}
		return ChargeResult{}, fmt.Errorf("stripe: create checkout session: %w", err)
	}

	p.logger.Info("stripe checkout session created",
		zap.String("order_id", req.OrderID),
		zap.String("session_id", session.ID),
	)
	return ChargeResult{Reference: session.ID, Status: StatusPending, RedirectURL: session.URL}, nil
}
