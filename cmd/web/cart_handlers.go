package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/SubhamBera123/Elegance/internal/cart"
	mw "github.com/SubhamBera123/Elegance/internal/middleware"
	"github.com/SubhamBera123/Elegance/internal/observability"
	"github.com/SubhamBera123/Elegance/internal/storefront"
	"github.com/SubhamBera123/Elegance/internal/view"
)

const (
	msgSelectSize  = "Please select a size."
	msgSelectColor = "Please select a color."
)

var msgQuantity = fmt.Sprintf("Quantity must be between 1 and %d.", cart.MaxQuantity)

// addLine handles the detail page form; size and color are required.
func (a *app) addLine(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(r.PostFormValue("productId"))
	target := "/product/" + url.PathEscape(productID)
	sel := view.Selection{
		Size:     strings.TrimSpace(r.PostFormValue("size")),
		Color:    strings.TrimSpace(r.PostFormValue("color")),
		Quantity: formInt(r, "quantity", 1),
	}

	p, ok := a.catalog.Find(productID)
	if !ok {
		a.redispatch(w, r, target, storefront.Flash{}, view.Effects{})
		return
	}
	var warning string
	switch {
	case sel.Size == "" || !p.HasSize(sel.Size):
		warning = msgSelectSize
	case sel.Color == "" || !p.HasColor(sel.Color):
		warning = msgSelectColor
	case sel.Quantity < 1 || sel.Quantity > cart.MaxQuantity:
		warning = msgQuantity
		sel.Quantity = min(max(sel.Quantity, 1), cart.MaxQuantity)
	}
	if warning != "" {
		a.redispatch(w, r, target, storefront.Flash{Warning: warning, Selection: sel}, view.Effects{})
		return
	}

	a.mutateCart(w, r, target, "Added to cart.", func(ctx context.Context, id string) (cart.Cart, error) {
		return a.carts.Add(ctx, id, cart.AddInput{
			ProductID: productID,
			Size:      cart.Some(sel.Size),
			Color:     cart.Some(sel.Color),
			Quantity:  sel.Quantity,
		})
	})
}

// quickAdd adds one unit without a variant from a listing card.
func (a *app) quickAdd(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(r.PostFormValue("productId"))
	p, ok := a.catalog.Find(productID)
	if !ok {
		a.redispatch(w, r, "/product/"+url.PathEscape(productID), storefront.Flash{}, view.Effects{})
		return
	}
	a.mutateCart(w, r, returnTarget(r, "/products"), p.Name+" added to cart.", func(ctx context.Context, id string) (cart.Cart, error) {
		return a.carts.Add(ctx, id, cart.AddInput{ProductID: productID, Quantity: 1})
	})
}

// updateLine applies inc/dec or an explicit quantity. The result is clamped
// to 1..MaxQuantity.
func (a *app) updateLine(w http.ResponseWriter, r *http.Request) {
	key := lineKey(r)
	a.mutateCart(w, r, "/cart", "", func(ctx context.Context, id string) (cart.Cart, error) {
		current, err := a.carts.Get(ctx, id)
		if err != nil {
			return cart.Cart{}, err
		}
		qty := 0
		for _, l := range current.Lines {
			if l.Key == key {
				qty = l.Quantity
				break
			}
		}
		if qty == 0 {
			return current, nil
		}
		switch r.PostFormValue("action") {
		case "inc":
			qty = min(qty+1, cart.MaxQuantity)
		case "dec":
			qty = max(qty-1, 1)
		default:
			qty = min(formInt(r, "quantity", qty), cart.MaxQuantity)
		}
		if qty < 1 {
			return current, nil
		}
		return a.carts.UpdateQuantity(ctx, id, key, qty)
	})
}

func (a *app) removeLine(w http.ResponseWriter, r *http.Request) {
	key := lineKey(r)
	a.mutateCart(w, r, "/cart", "Item removed.", func(ctx context.Context, id string) (cart.Cart, error) {
		return a.carts.Remove(ctx, id, key)
	})
}

func (a *app) clearCart(w http.ResponseWriter, r *http.Request) {
	a.mutateCart(w, r, "/cart", "Your cart is now empty.", func(ctx context.Context, id string) (cart.Cart, error) {
		return a.carts.Clear(ctx, id)
	})
}

// mutateCart binds a cart to the session on first use, applies fn and
// answers with the re-dispatched target.
func (a *app) mutateCart(w http.ResponseWriter, r *http.Request, target, notice string, fn func(ctx context.Context, id string) (cart.Cart, error)) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)
	sess := mw.GetSession(r)
	if sess.CartID == "" {
		sess.SetCartID(a.carts.NewID())
	}

	c, err := fn(ctx, sess.CartID)
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		a.redispatch(w, r, target, storefront.Flash{Warning: msgQuantity}, view.Effects{})
		return
	case errors.Is(err, cart.ErrProductNotFound):
		a.redispatch(w, r, target, storefront.Flash{}, view.Effects{})
		return
	case err != nil:
		logger.Error("cart mutation failed", zap.String("cart_id", sess.CartID), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	logger.Debug("cart updated", zap.String("cart_id", sess.CartID), zap.Int("items", c.ItemCount))

	var fx view.Effects
	fx.Trigger("cart:updated", map[string]int{"count": c.ItemCount})
	if !mw.IsHTMX(ctx) {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	a.redispatch(w, r, target, storefront.Flash{Notice: notice}, fx)
}

// redispatch renders target in response to a mutation. Plain form posts get
// the full document, htmx callers the mount fragment.
func (a *app) redispatch(w http.ResponseWriter, r *http.Request, target string, flash storefront.Flash, fx view.Effects) {
	r = r.WithContext(storefront.WithFlash(r.Context(), flash))
	a.dispatcher.Serve(w, storefront.Request{Target: target, HTTP: r, Effects: fx})
}

// returnTarget is the page the mutation was triggered from, limited to this
// origin.
func returnTarget(r *http.Request, fallback string) string {
	candidates := []string{mw.HTMXFromContext(r.Context()).CurrentURL, r.Referer()}
	for _, raw := range candidates {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Host != "" && u.Host != r.Host) || !view.IsInternalPath(u.Path) {
			continue
		}
		if u.RawQuery != "" {
			return u.Path + "?" + u.RawQuery
		}
		return u.Path
	}
	return fallback
}

func lineKey(r *http.Request) cart.Key {
	return cart.NewKey(
		strings.TrimSpace(r.PostFormValue("productId")),
		strings.TrimSpace(r.PostFormValue("size")),
		strings.TrimSpace(r.PostFormValue("color")),
	)
}

func formInt(r *http.Request, field string, fallback int) int {
	raw := strings.TrimSpace(r.PostFormValue(field))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	switch {
	case errors.Is(err, strconv.ErrRange):
		// Atoi saturates; callers range-check the result.
		return n
	case err != nil:
		return fallback
	}
	return n
}
