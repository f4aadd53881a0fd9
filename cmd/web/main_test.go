package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SubhamBera123/Elegance/internal/cart"
	"github.com/SubhamBera123/Elegance/internal/config"
	mw "github.com/SubhamBera123/Elegance/internal/middleware"
	"github.com/SubhamBera123/Elegance/internal/payments"
	"github.com/SubhamBera123/Elegance/internal/theme"
)

// newTestRouter builds the same router main() serves, backed by memory
// adapters.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouterWith(t, appDeps{})
}

func newTestRouterWith(t *testing.T, deps appDeps) http.Handler {
	t.Helper()
	cfg, err := config.Load(context.Background(),
		config.WithEnvMap(map[string]string{
			"ELEGANCE_CART_STORE":  "memory",
			"ELEGANCE_SESSION_KEY": "test-signing-key",
			"ELEGANCE_BASE_URL":    "https://shop.example",
		}),
		config.WithoutSystemEnv(),
		config.WithEnvFile(""),
	)
	require.NoError(t, err)
	a, err := newApp(cfg, zap.NewNop(), deps)
	require.NoError(t, err)
	return a.routes()
}

// browser replays cookies between requests like a user agent would.
type browser struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T) *browser {
	return newBrowserFor(t, newTestRouter(t))
}

func newBrowserFor(t *testing.T, h http.Handler) *browser {
	b := &browser{t: t, h: h, cookies: map[string]*http.Cookie{}}
	rec := b.get("/", false)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, b.csrf())
	return b
}

func (b *browser) csrf() string {
	if c, ok := b.cookies[mw.CSRFCookieName]; ok {
		return c.Value
	}
	return ""
}

func (b *browser) do(req *http.Request, htmx bool) *httptest.ResponseRecorder {
	b.t.Helper()
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(target string, htmx bool) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, target, nil), htmx)
}

func (b *browser) post(target string, form url.Values, htmx bool) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	form.Set(mw.CSRFFormField, b.csrf())
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req, htmx)
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return d
}

func addDress(t *testing.T, b *browser, qty string) *httptest.ResponseRecorder {
	t.Helper()
	rec := b.post("/cart/lines", url.Values{
		"productId": {"2"},
		"size":      {"M"},
		"color":     {"Black"},
		"quantity":  {qty},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec
}

func validCheckout() url.Values {
	return url.Values{
		"firstName":   {"Ada"},
		"lastName":    {"Lovelace"},
		"email":       {"ada@example.com"},
		"address":     {"1 Main St"},
		"city":        {"Albany"},
		"state":       {"ny"},
		"zipCode":     {"12207"},
		"shipping":    {"standard"},
		"payment":     {"credit-card"},
		"cardNumber":  {"4242 4242 4242 4242"},
		"expiry":      {"12/30"},
		"cvv":         {"123"},
		"cardName":    {"Ada Lovelace"},
		"billingSame": {"on"},
	}
}

func TestHealthzOK(t *testing.T) {
	srv := newTestRouter(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", strings.TrimSpace(rec.Body.String()))
}

func TestAssetsServedWithETag(t *testing.T) {
	srv := newTestRouter(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/css/site.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("ETag"))
}

func TestFullDocumentForPlainRequests(t *testing.T) {
	b := newBrowser(t)
	rec := b.get("/products?filter=new", false)
	require.Equal(t, http.StatusOK, rec.Code)
	d := parse(t, rec)
	require.Equal(t, 1, d.Find("html body main#root").Length())
	require.Equal(t, "3", d.Find("[data-result-count]").AttrOr("data-result-count", ""))
	require.Equal(t, "https://shop.example/products?filter=new", d.Find(`link[rel="canonical"]`).AttrOr("href", ""))
}

func TestBoostedRequestReturnsFragmentOnly(t *testing.T) {
	b := newBrowser(t)
	req := httptest.NewRequest(http.MethodGet, "/product/2", nil)
	req.Header.Set("HX-Boosted", "true")
	rec := b.do(req, true)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.NotContains(t, body, "<html")
	require.NotContains(t, body, "site-header")
	require.Contains(t, body, "Classic Little Black Dress")
	require.Contains(t, body, `hx-swap-oob="true"`)
	require.Contains(t, rec.Header().Values("Vary"), "HX-Request")
}

func TestUnknownRoutesRenderNotFound(t *testing.T) {
	b := newBrowser(t)
	for _, target := range []string{"/product/999", "/nowhere"} {
		rec := b.get(target, false)
		require.Equal(t, http.StatusNotFound, rec.Code, target)
		require.Equal(t, 1, parse(t, rec).Find("[data-not-found]").Length(), target)
	}
}

func TestInvalidSelectionLeavesCartUnchanged(t *testing.T) {
	b := newBrowser(t)
	rec := b.post("/cart/lines", url.Values{"productId": {"2"}, "size": {"M"}}, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	d := parse(t, rec)
	require.Equal(t, msgSelectColor, strings.TrimSpace(d.Find("[data-selection-warning]").Text()))
	require.Equal(t, "M", d.Find(`input[name="size"][checked]`).AttrOr("value", ""))
	require.Empty(t, rec.Header().Get("HX-Trigger"))

	rec = b.post("/cart/lines", url.Values{"productId": {"2"}, "size": {"XXL"}, "color": {"Black"}}, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), msgSelectSize)

	cartPage := parse(t, b.get("/cart", false))
	require.Equal(t, 1, cartPage.Find("[data-empty-cart]").Length())
	require.Zero(t, cartPage.Find("[data-line]").Length())
}

func TestAddToCartUpdatesBadge(t *testing.T) {
	b := newBrowser(t)
	rec := addDress(t, b, "2")
	require.JSONEq(t, `{"cart:updated":{"count":2}}`, rec.Header().Get("HX-Trigger"))
	d := parse(t, rec)
	require.Equal(t, "2", strings.TrimSpace(d.Find("#cart-count").Text()))

	addDress(t, b, "1")
	cartPage := parse(t, b.get("/cart", false))
	require.Equal(t, 1, cartPage.Find("[data-line]").Length())
	require.Equal(t, "3", strings.TrimSpace(cartPage.Find("[data-quantity]").Text()))
}

func TestQuantityDecrementFloorsAtOne(t *testing.T) {
	b := newBrowser(t)
	addDress(t, b, "1")
	line := url.Values{"productId": {"2"}, "size": {"M"}, "color": {"Black"}, "action": {"dec"}}
	rec := b.post("/cart/lines/update", line, true)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "1", strings.TrimSpace(parse(t, rec).Find("[data-quantity]").Text()))

	line.Set("action", "inc")
	rec = b.post("/cart/lines/update", line, true)
	require.Equal(t, "2", strings.TrimSpace(parse(t, rec).Find("[data-quantity]").Text()))

	rec = b.post("/cart/lines/remove", line, true)
	require.Equal(t, 1, parse(t, rec).Find("[data-empty-cart]").Length())
}

func TestQuantityAboveMaxIsRejected(t *testing.T) {
	b := newBrowser(t)
	huge := url.Values{"productId": {"2"}, "size": {"M"}, "color": {"Black"}, "quantity": {"9223372036854775807"}}
	for i := 0; i < 2; i++ {
		rec := b.post("/cart/lines", huge, true)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		d := parse(t, rec)
		require.Equal(t, msgQuantity, strings.TrimSpace(d.Find("[data-selection-warning]").Text()))
		require.Equal(t, strconv.Itoa(cart.MaxQuantity), d.Find(`input[name="quantity"]`).AttrOr("value", ""))
	}
	require.Equal(t, 1, parse(t, b.get("/cart", false)).Find("[data-empty-cart]").Length())

	rec := addDress(t, b, strconv.Itoa(cart.MaxQuantity))
	require.JSONEq(t, fmt.Sprintf(`{"cart:updated":{"count":%d}}`, cart.MaxQuantity), rec.Header().Get("HX-Trigger"))

	rec = b.post("/cart/lines", url.Values{"productId": {"2"}, "size": {"M"}, "color": {"Black"}, "quantity": {"1"}}, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), msgQuantity)
	require.Equal(t, strconv.Itoa(cart.MaxQuantity), strings.TrimSpace(parse(t, rec).Find("#cart-count").Text()))

	line := url.Values{"productId": {"2"}, "size": {"M"}, "color": {"Black"}, "action": {"inc"}}
	rec = b.post("/cart/lines/update", line, true)
	require.Equal(t, http.StatusOK, rec.Code)
	d := parse(t, rec)
	require.Equal(t, strconv.Itoa(cart.MaxQuantity), strings.TrimSpace(d.Find("[data-quantity]").Text()))
	_, disabled := d.Find(`button[value="inc"]`).Attr("disabled")
	require.True(t, disabled)

	line.Del("action")
	line.Set("quantity", "100000")
	rec = b.post("/cart/lines/update", line, true)
	require.Equal(t, strconv.Itoa(cart.MaxQuantity), strings.TrimSpace(parse(t, rec).Find("[data-quantity]").Text()))
}

func TestPlainFormPostRedirects(t *testing.T) {
	b := newBrowser(t)
	req := httptest.NewRequest(http.MethodPost, "/cart/quick-add",
		strings.NewReader(url.Values{"productId": {"3"}, mw.CSRFFormField: {b.csrf()}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Referer", "https://example.com/products?filter=sale")
	rec := b.do(req, false)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/products?filter=sale", rec.Header().Get("Location"))

	cartPage := parse(t, b.get("/cart", false))
	require.Equal(t, 1, cartPage.Find(`[data-line="3"]`).Length())
}

func TestReturnTargetStaysOnSite(t *testing.T) {
	b := newBrowser(t)
	for _, referer := range []string{
		"http://example.com//evil.test/phish",
		"http://example.com/%2F%2Fevil.test",
		`http://example.com/\evil.test`,
		"https://evil.test/products",
	} {
		req := httptest.NewRequest(http.MethodPost, "/theme/toggle",
			strings.NewReader(url.Values{mw.CSRFFormField: {b.csrf()}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Referer", referer)
		rec := b.do(req, false)
		require.Equal(t, http.StatusSeeOther, rec.Code, referer)
		require.Equal(t, "/", rec.Header().Get("Location"), referer)
	}
}

func TestCheckoutClearsCart(t *testing.T) {
	b := newBrowser(t)
	addDress(t, b, "1")

	rec := b.post("/checkout", validCheckout(), true)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	redirect := rec.Header().Get("HX-Redirect")
	require.True(t, strings.HasPrefix(redirect, "/account?tab=orders&placed=ORD-"), redirect)

	cartPage := parse(t, b.get("/cart", false))
	require.Equal(t, 1, cartPage.Find("[data-empty-cart]").Length())

	account := parse(t, b.get(redirect, false))
	placed := strings.TrimPrefix(redirect, "/account?tab=orders&placed=")
	require.Equal(t, placed, account.Find("[data-order-placed]").AttrOr("data-order-placed", ""))
}

type hostedPayments struct{}

func (hostedPayments) Name() string { return "hosted" }

func (hostedPayments) Charge(_ context.Context, req payments.ChargeRequest) (payments.ChargeResult, error) {
	return payments.ChargeResult{Status: payments.StatusPending, RedirectURL: "https://pay.example/c/" + req.OrderID}, nil
}

func TestHostedCheckoutKeepsCartUntilPaid(t *testing.T) {
	b := newBrowserFor(t, newTestRouterWith(t, appDeps{Payments: hostedPayments{}}))
	addDress(t, b, "1")

	rec := b.post("/checkout", validCheckout(), true)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	require.True(t, strings.HasPrefix(rec.Header().Get("HX-Redirect"), "https://pay.example/c/ORD-"))
	require.Empty(t, rec.Header().Get("HX-Trigger"))

	cartPage := parse(t, b.get("/cart", false))
	require.Equal(t, 1, cartPage.Find("[data-line]").Length())
}

func TestCheckoutValidationKeepsCart(t *testing.T) {
	b := newBrowser(t)
	addDress(t, b, "1")

	form := validCheckout()
	form.Del("email")
	form.Set("zipCode", "abc")
	rec := b.post("/checkout", form, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	d := parse(t, rec)
	require.Equal(t, 1, d.Find(`[data-field-error="email"]`).Length())
	require.Equal(t, 1, d.Find(`[data-field-error="zipCode"]`).Length())
	require.Equal(t, "Ada", d.Find(`input[name="firstName"]`).AttrOr("value", ""))

	form = validCheckout()
	form.Set("cardNumber", "4000 0000 0000 0002")
	rec = b.post("/checkout", form, true)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, 1, parse(t, rec).Find("[data-checkout-error]").Length())

	cartPage := parse(t, b.get("/cart", false))
	require.Equal(t, 1, cartPage.Find("[data-line]").Length())
}

func TestMutationRejectedWithoutCSRF(t *testing.T) {
	b := newBrowser(t)
	req := httptest.NewRequest(http.MethodPost, "/cart/clear", nil)
	rec := b.do(req, true)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid CSRF token")
}

func TestThemeToggleIsIdempotentOverTwoFlips(t *testing.T) {
	b := newBrowser(t)
	rec := b.post("/theme/toggle", nil, true)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.JSONEq(t, `{"theme:changed":{"theme":"dark"}}`, rec.Header().Get("HX-Trigger"))
	require.Equal(t, string(theme.Dark), b.cookies[theme.CookieName].Value)

	require.Equal(t, "dark", parse(t, b.get("/", false)).Find("html").AttrOr("class", ""))

	rec = b.post("/theme/toggle", nil, true)
	require.JSONEq(t, `{"theme:changed":{"theme":"light"}}`, rec.Header().Get("HX-Trigger"))
	require.Equal(t, string(theme.Light), b.cookies[theme.CookieName].Value)
}
