package checkout

import "strings"

// ShippingMethod is the delivery speed chosen at checkout.
type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

// Pricing constants in cents.
const (
	FreeShippingOver int64 = 20000
	StandardRate     int64 = 1500
	ExpressRate      int64 = 2500
	taxPercent       int64 = 8
)

// ShippingOption describes one radio choice.
type ShippingOption struct {
	Method   ShippingMethod
	Label    string
	Estimate string
	Rate     int64
}

// ShippingOptions lists the delivery choices in display order.
var ShippingOptions = []ShippingOption{
	{ShippingStandard, "Standard Shipping", "5-7 business days", StandardRate},
	{ShippingExpress, "Express Shipping", "2-3 business days", ExpressRate},
}

// ParseShippingMethod falls back to standard.
func ParseShippingMethod(raw string) ShippingMethod {
	if ShippingMethod(strings.TrimSpace(raw)) == ShippingExpress {
		return ShippingExpress
	}
	return ShippingStandard
}

// Quote is the price breakdown shown in the order summary.
type Quote struct {
	Method       ShippingMethod
	Subtotal     int64
	Shipping     int64
	Tax          int64
	Total        int64
	FreeShipping bool
}

// NewQuote prices a subtotal. Shipping is free strictly above the threshold;
// tax is 8% of the subtotal rounded half up to the cent.
func NewQuote(subtotal int64, method ShippingMethod) Quote {
	q := Quote{Method: method, Subtotal: subtotal}
	switch {
	case subtotal > FreeShippingOver:
		q.FreeShipping = true
	case method == ShippingExpress:
		q.Shipping = ExpressRate
	default:
		q.Shipping = StandardRate
	}
	q.Tax = (subtotal*taxPercent + 50) / 100
	q.Total = q.Subtotal + q.Shipping + q.Tax
	return q
}

// AmountToFreeShipping is what the customer still needs to add, or zero.
func (q Quote) AmountToFreeShipping() int64 {
	if q.FreeShipping {
		return 0
	}
	return FreeShippingOver - q.Subtotal + 1
}
