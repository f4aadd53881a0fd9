package checkout

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/SubhamBera123/Elegance/internal/payments"
)

// State is a selectable shipping state.
type State struct {
	Code string
	Name string
}

// States lists the shipping destinations.
var States = []State{
	{"ny", "New York"},
	{"ca", "California"},
	{"tx", "Texas"},
	{"fl", "Florida"},
}

var (
	zipPattern    = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	expiryPattern = regexp.MustCompile(`^(\d{2})\s*/\s*(\d{2})$`)
)

// Form is the submitted checkout form.
type Form struct {
	FirstName   string
	LastName    string
	Email       string
	Address     string
	City        string
	State       string
	ZipCode     string
	Phone       string
	Shipping    ShippingMethod
	Payment     payments.Method
	CardNumber  string
	Expiry      string
	CVV         string
	CardName    string
	BillingSame bool
}

// DefaultForm is the state of a fresh checkout page.
func DefaultForm() Form {
	return Form{Shipping: ShippingStandard, Payment: payments.MethodCard, BillingSame: true}
}

// ParseForm reads the checkout fields.
func ParseForm(values url.Values) Form {
	get := func(k string) string { return strings.TrimSpace(values.Get(k)) }
	return Form{
		FirstName:   get("firstName"),
		LastName:    get("lastName"),
		Email:       get("email"),
		Address:     get("address"),
		City:        get("city"),
		State:       strings.ToLower(get("state")),
		ZipCode:     get("zipCode"),
		Phone:       get("phone"),
		Shipping:    ParseShippingMethod(get("shipping")),
		Payment:     payments.ParseMethod(get("payment")),
		CardNumber:  get("cardNumber"),
		Expiry:      get("expiry"),
		CVV:         get("cvv"),
		CardName:    get("cardName"),
		BillingSame: values.Get("billingSame") != "",
	}
}

// Values re-encodes the form for redisplay. Card number and CVV are never
// echoed back.
func (f Form) Values() map[string]string {
	return map[string]string{
		"firstName": f.FirstName,
		"lastName":  f.LastName,
		"email":     f.Email,
		"address":   f.Address,
		"city":      f.City,
		"state":     f.State,
		"zipCode":   f.ZipCode,
		"phone":     f.Phone,
		"expiry":    f.Expiry,
		"cardName":  f.CardName,
	}
}

// Card returns the card details for the card method, else nil.
func (f Form) Card() *payments.Card {
	if f.Payment != payments.MethodCard {
		return nil
	}
	return &payments.Card{Number: f.CardNumber, Expiry: f.Expiry, CVV: f.CVV, Name: f.CardName}
}

// FormError maps field names to messages.
type FormError struct {
	Fields map[string]string
}

func (e *FormError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("checkout: invalid form fields: %s", strings.Join(keys, ", "))
}

// Validate returns field errors; an empty map means the form is valid.
// Card fields are only checked when card details are collected on site.
func (f Form) Validate(collectCard bool) map[string]string {
	errs := map[string]string{}
	required := []struct{ key, value, msg string }{
		{"firstName", f.FirstName, "First name is required."},
		{"lastName", f.LastName, "Last name is required."},
		{"email", f.Email, "Email is required."},
		{"address", f.Address, "Street address is required."},
		{"city", f.City, "City is required."},
		{"state", f.State, "Select a state."},
		{"zipCode", f.ZipCode, "ZIP code is required."},
	}
	for _, r := range required {
		if r.value == "" {
			errs[r.key] = r.msg
		}
	}
	if _, ok := errs["email"]; !ok {
		if _, err := mail.ParseAddress(f.Email); err != nil {
			errs["email"] = "Enter a valid email address."
		}
	}
	if _, ok := errs["state"]; !ok && !knownState(f.State) {
		errs["state"] = "Select a state."
	}
	if _, ok := errs["zipCode"]; !ok && !zipPattern.MatchString(f.ZipCode) {
		errs["zipCode"] = "Enter a 5-digit ZIP code."
	}

	if collectCard && f.Payment == payments.MethodCard {
		if n := len(payments.Digits(f.CardNumber)); n < 12 || n > 19 {
			errs["cardNumber"] = "Enter a valid card number."
		}
		if !validExpiry(f.Expiry) {
			errs["expiry"] = "Use MM/YY."
		}
		if n := len(payments.Digits(f.CVV)); n < 3 || n > 4 || n != len(f.CVV) {
			errs["cvv"] = "Enter the 3 or 4 digit security code."
		}
		if f.CardName == "" {
			errs["cardName"] = "Name on card is required."
		}
	}
	return errs
}

// StateName returns the display name for the selected state code.
func (f Form) StateName() string {
	for _, s := range States {
		if s.Code == f.State {
			return s.Name
		}
	}
	return f.State
}

func knownState(code string) bool {
	for _, s := range States {
		if s.Code == code {
			return true
		}
	}
	return false
}

func validExpiry(raw string) bool {
	m := expiryPattern.FindStringSubmatch(raw)
	if m == nil {
		return false
	}
	month, _ := strconv.Atoi(m[1])
	return month >= 1 && month <= 12
}
