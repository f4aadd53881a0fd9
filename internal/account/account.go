// Package account serves the demo customer profile and order history.
package account

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed data/account.yaml
var defaultFixture []byte

// Tab selects the account page section.
type Tab string

const (
	TabOrders    Tab = "orders"
	TabProfile   Tab = "profile"
	TabFavorites Tab = "favorites"
	TabSettings  Tab = "settings"
)

// Tabs lists the sections in display order.
var Tabs = []Tab{TabOrders, TabProfile, TabFavorites, TabSettings}

// ParseTab falls back to TabOrders.
func ParseTab(raw string) Tab {
	t := Tab(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Tabs {
		if t == known {
			return t
		}
	}
	return TabOrders
}

// Label is the tab caption.
func (t Tab) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

// OrderStatus is the fulfilment state of a past order.
type OrderStatus string

const (
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
)

// Label is the badge caption.
func (s OrderStatus) Label() string { return Tab(s).Label() }

type User struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	JoinDate    string
	TotalOrders int
	TotalSpent  int64
}

// Name is the display name.
func (u User) Name() string { return strings.TrimSpace(u.FirstName + " " + u.LastName) }

// Initials feeds the avatar.
func (u User) Initials() string {
	var b strings.Builder
	for _, part := range strings.Fields(u.Name()) {
		b.WriteString(strings.ToUpper(part[:1]))
	}
	return b.String()
}

type Order struct {
	ID     string
	Date   time.Time
	Status OrderStatus
	Total  int64
	Items  int
}

type Notification struct {
	Label   string
	Enabled bool
}

// Account is the whole fixture.
type Account struct {
	User          User
	Orders        []Order
	Notifications []Notification
}

type fixture struct {
	User struct {
		FirstName   string  `yaml:"first_name"`
		LastName    string  `yaml:"last_name"`
		Email       string  `yaml:"email"`
		Phone       string  `yaml:"phone"`
		JoinDate    string  `yaml:"join_date"`
		TotalOrders int     `yaml:"total_orders"`
		TotalSpent  float64 `yaml:"total_spent"`
	} `yaml:"user"`
	Orders []struct {
		ID     string  `yaml:"id"`
		Date   string  `yaml:"date"`
		Status string  `yaml:"status"`
		Total  float64 `yaml:"total"`
		Items  int     `yaml:"items"`
	} `yaml:"orders"`
	Notifications []Notification `yaml:"notifications"`
}

// Default parses the embedded fixture.
func Default() (Account, error) {
	return Load(bytes.NewReader(defaultFixture))
}

// Load parses an account fixture.
func Load(r io.Reader) (Account, error) {
	var fx fixture
	if err := yaml.NewDecoder(r).Decode(&fx); err != nil {
		return Account{}, fmt.Errorf("account: decode fixture: %w", err)
	}
	acct := Account{
		User: User{
			FirstName:   fx.User.FirstName,
			LastName:    fx.User.LastName,
			Email:       fx.User.Email,
			Phone:       fx.User.Phone,
			JoinDate:    fx.User.JoinDate,
			TotalOrders: fx.User.TotalOrders,
			TotalSpent:  int64(math.Round(fx.User.TotalSpent * 100)),
		},
		Notifications: fx.Notifications,
	}
	for _, o := range fx.Orders {
		date, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			return Account{}, fmt.Errorf("account: order %s: %w", o.ID, err)
		}
		acct.Orders = append(acct.Orders, Order{
			ID:     o.ID,
			Date:   date,
			Status: OrderStatus(strings.ToLower(o.Status)),
			Total:  int64(math.Round(o.Total * 100)),
			Items:  o.Items,
		})
	}
	return acct, nil
}
