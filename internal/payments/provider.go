// Package payments charges placed orders through a payment service provider.
package payments

import (
	"context"
	"errors"
	"strings"
)

// Method is the payment option selected at checkout.
type Method string

const (
	MethodCard   Method = "credit-card"
	MethodPayPal Method = "paypal"
)

// ParseMethod falls back to MethodCard.
func ParseMethod(raw string) Method {
	if Method(strings.TrimSpace(raw)) == MethodPayPal {
		return MethodPayPal
	}
	return MethodCard
}

// Status reports the charge state after Charge returns.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
)

// ErrDeclined indicates the provider refused the payment.
var ErrDeclined = errors.New("payments: payment declined")

// Card carries card details entered on the checkout form. Only the last four
// digits outlive the request.
type Card struct {
	Number string
	Expiry string
	CVV    string
	Name   string
}

// Last4 returns the trailing four digits of the card number.
func (c Card) Last4() string {
	digits := Digits(c.Number)
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LineItem is one priced unit group; Amount is the unit price in cents.
type LineItem struct {
	SKU         string
	Name        string
	Description string
	Amount      int64
	Quantity    int64
}

// ChargeRequest describes the order being paid.
type ChargeRequest struct {
	OrderID    string
	Currency   string
	Email      string
	Items      []LineItem
	Shipping   int64
	Tax        int64
	Total      int64
	Method     Method
	Card       *Card
	SuccessURL string
	CancelURL  string
}

// ChargeResult is the provider outcome. A non-empty RedirectURL means the
// customer must finish payment on the provider's page.
type ChargeResult struct {
	Reference   string
	Status      Status
	RedirectURL string
	Last4       string
}

// Provider charges orders.
type Provider interface {
	Name() string
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}
