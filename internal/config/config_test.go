package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func load(t *testing.T, env map[string]string, opts ...Option) (Config, error) {
	t.Helper()
	opts = append([]Option{WithEnvMap(env), WithoutSystemEnv(), WithEnvFile("")}, opts...)
	return Load(context.Background(), opts...)
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := load(t, nil)
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, ":8080", cfg.Server.Addr())
	require.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, "http://localhost:8080", cfg.App.BaseURL)
	require.Equal(t, "info", cfg.App.LogLevel)
	require.False(t, cfg.App.Dev)
	require.True(t, cfg.Session.Secure)
	require.Equal(t, StoreFile, cfg.Cart.Store)
	require.Equal(t, "var/carts", cfg.Cart.Dir)
	require.Equal(t, "carts", cfg.Firestore.Collection)
	require.Equal(t, ProviderFake, cfg.Payments.Provider)
	require.Equal(t, PublisherLog, cfg.Events.Publisher)
}

func TestLoadWithOverrides(t *testing.T) {
	cfg, err := load(t, map[string]string{
		"PORT":                          "9090",
		"ELEGANCE_DEV":                  "yes",
		"ELEGANCE_BASE_URL":             "https://shop.example/",
		"ELEGANCE_READ_TIMEOUT":         "3s",
		"ELEGANCE_CART_STORE":           "Firestore",
		"ELEGANCE_FIRESTORE_PROJECT_ID": "elegance-prod",
		"ELEGANCE_PAYMENTS_PROVIDER":    "stripe",
		"ELEGANCE_STRIPE_API_KEY":       "sk_test_123",
		"ELEGANCE_EVENTS_PUBLISHER":     "pubsub",
		"ELEGANCE_ORDER_TOPIC":          "orders-prod",
		"ELEGANCE_GA_MEASUREMENT_ID":    "G-TEST123",
	})
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Server.Addr())
	require.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	require.Equal(t, "https://shop.example", cfg.App.BaseURL)
	require.True(t, cfg.App.Dev)
	require.False(t, cfg.Session.Secure)
	require.Equal(t, StoreFirestore, cfg.Cart.Store)
	require.Equal(t, "elegance-prod", cfg.Events.ProjectID)
	require.Equal(t, "orders-prod", cfg.Events.Topic)
	require.Equal(t, "G-TEST123", cfg.Analytics.GA4MeasurementID)
	require.True(t, cfg.Analytics.Debug)
}

func TestLoadValidation(t *testing.T) {
	_, err := load(t, map[string]string{
		"PORT":                       "http",
		"ELEGANCE_CART_STORE":        "firestore",
		"ELEGANCE_PAYMENTS_PROVIDER": "stripe",
		"ELEGANCE_EVENTS_PUBLISHER":  "kafka",
	})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	require.ElementsMatch(t, []string{
		"Server.Port",
		"Firestore.ProjectID",
		"Payments.StripeAPIKey",
		"Events.Publisher",
	}, vErr.Fields())
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local\nexport ELEGANCE_CART_STORE=memory\nELEGANCE_BASE_URL=\"http://127.0.0.1:3000\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(context.Background(), WithoutSystemEnv(), WithEnvFile(path),
		WithEnvMap(map[string]string{"ELEGANCE_BASE_URL": "http://override.test"}))
	require.NoError(t, err)
	require.Equal(t, StoreMemory, cfg.Cart.Store)
	require.Equal(t, "http://override.test", cfg.App.BaseURL)
}
