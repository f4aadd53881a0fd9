package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/SubhamBera123/Elegance/internal/checkout"
	mw "github.com/SubhamBera123/Elegance/internal/middleware"
	"github.com/SubhamBera123/Elegance/internal/observability"
	"github.com/SubhamBera123/Elegance/internal/payments"
	"github.com/SubhamBera123/Elegance/internal/storefront"
	"github.com/SubhamBera123/Elegance/internal/view"
)

// placeOrder validates the checkout form and places the order. Failures
// re-render the checkout page with the submitted values.
func (a *app) placeOrder(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	logger := observability.FromContext(ctx)
	form := checkout.ParseForm(r.PostForm)
	cartID := mw.GetSession(r).CartID

	order, err := a.checkout.PlaceOrder(ctx, cartID, form)
	var formErr *checkout.FormError
	switch {
	case errors.As(err, &formErr):
		a.redispatch(w, r, "/checkout", storefront.Flash{Form: &form, FormErrors: formErr.Fields}, view.Effects{})
		return
	case errors.Is(err, checkout.ErrEmptyCart):
		a.redispatch(w, r, "/cart", storefront.Flash{Notice: "Your cart is empty."}, view.Effects{})
		return
	case errors.Is(err, payments.ErrDeclined):
		a.redispatch(w, r, "/checkout", storefront.Flash{
			Form:      &form,
			FormError: "Your payment was declined. Please try another card.",
		}, view.Effects{})
		return
	case err != nil:
		logger.Error("place order failed", zap.String("cart_id", cartID), zap.Error(err))
		a.redispatch(w, r, "/checkout", storefront.Flash{
			Form:      &form,
			FormError: "We could not place your order. Please try again.",
		}, view.Effects{})
		return
	}

	if mw.IsHTMX(ctx) {
		var fx view.Effects
		if !order.Pending() {
			fx.Trigger("cart:updated", map[string]int{"count": 0})
		}
		fx.Apply(w)
		w.Header().Set("HX-Redirect", order.RedirectURL)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, order.RedirectURL, http.StatusSeeOther)
}
