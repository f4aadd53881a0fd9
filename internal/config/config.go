// Package config loads storefront runtime configuration from the environment.
package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 30 * time.Second
	defaultIdleTimeout      = 120 * time.Second
	defaultShutdownTimeout  = 10 * time.Second
	defaultRequestTimeout   = 20 * time.Second
	defaultLogLevel         = "info"
	defaultBaseURL          = "http://localhost:8080"
	defaultCartDir          = "var/carts"
	defaultCartCollection   = "carts"
	defaultPaymentsProvider = "fake"
	defaultEventsPublisher  = "log"
	defaultOrderTopic       = "orders"
)

// Cart store adapters.
const (
	StoreMemory    = "memory"
	StoreFile      = "file"
	StoreFirestore = "firestore"
)

// Payment providers.
const (
	ProviderFake   = "fake"
	ProviderStripe = "stripe"
)

// Order event publishers.
const (
	PublisherLog    = "log"
	PublisherPubSub = "pubsub"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	App       AppConfig
	Session   SessionConfig
	Cart      CartConfig
	Firestore FirestoreConfig
	Payments  PaymentsConfig
	Events    EventsConfig
	Analytics AnalyticsConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Addr is the listen address derived from Port.
func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

// AppConfig holds presentation settings.
type AppConfig struct {
	BaseURL      string
	Dev          bool
	LogLevel     string
	TemplatesDir string
	PublicDir    string
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	SigningKey string
	Secure     bool
}

// CartConfig selects the cart storage adapter.
type CartConfig struct {
	Store string
	Dir   string
}

// FirestoreConfig stores database parameters.
type FirestoreConfig struct {
	ProjectID    string
	Collection   string
	EmulatorHost string
}

// PaymentsConfig selects the payment provider.
type PaymentsConfig struct {
	Provider     string
	StripeAPIKey string
}

// EventsConfig selects where order events are published.
type EventsConfig struct {
	Publisher string
	ProjectID string
	Topic     string
}

// AnalyticsConfig enables GA4 / GTM tags in the document head.
type AnalyticsConfig struct {
	GA4MeasurementID string
	GTMContainerID   string
	Debug            bool
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from os.LookupEnv.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles the configuration from defaults, .env overrides and
// environment variables, in increasing precedence.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	if err := ctx.Err(); err != nil {
		return Config{}, err
	}
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	dev := boolWithDefault(lookup, "ELEGANCE_DEV", false)
	cfg := Config{
		Server: ServerConfig{
			Port:            stringWithDefault(lookup, "PORT", stringWithDefault(lookup, "ELEGANCE_PORT", defaultPort)),
			ReadTimeout:     durationWithDefault(lookup, "ELEGANCE_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    durationWithDefault(lookup, "ELEGANCE_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     durationWithDefault(lookup, "ELEGANCE_IDLE_TIMEOUT", defaultIdleTimeout),
			RequestTimeout:  durationWithDefault(lookup, "ELEGANCE_REQUEST_TIMEOUT", defaultRequestTimeout),
			ShutdownTimeout: durationWithDefault(lookup, "ELEGANCE_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		},
		App: AppConfig{
			BaseURL:      strings.TrimRight(stringWithDefault(lookup, "ELEGANCE_BASE_URL", defaultBaseURL), "/"),
			Dev:          dev,
			LogLevel:     stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel),
			TemplatesDir: stringWithDefault(lookup, "ELEGANCE_TEMPLATES_DIR", ""),
			PublicDir:    stringWithDefault(lookup, "ELEGANCE_PUBLIC_DIR", ""),
		},
		Session: SessionConfig{
			SigningKey: stringWithDefault(lookup, "ELEGANCE_SESSION_KEY", ""),
			Secure:     boolWithDefault(lookup, "ELEGANCE_SESSION_SECURE", !dev),
		},
		Cart: CartConfig{
			Store: strings.ToLower(stringWithDefault(lookup, "ELEGANCE_CART_STORE", StoreFile)),
			Dir:   stringWithDefault(lookup, "ELEGANCE_CART_DIR", defaultCartDir),
		},
		Firestore: FirestoreConfig{
			ProjectID:    stringWithDefault(lookup, "ELEGANCE_FIRESTORE_PROJECT_ID", ""),
			Collection:   stringWithDefault(lookup, "ELEGANCE_FIRESTORE_COLLECTION", defaultCartCollection),
			EmulatorHost: stringWithDefault(lookup, "FIRESTORE_EMULATOR_HOST", ""),
		},
		Payments: PaymentsConfig{
			Provider:     strings.ToLower(stringWithDefault(lookup, "ELEGANCE_PAYMENTS_PROVIDER", defaultPaymentsProvider)),
			StripeAPIKey: stringWithDefault(lookup, "ELEGANCE_STRIPE_API_KEY", ""),
		},
		Events: EventsConfig{
			Publisher: strings.ToLower(stringWithDefault(lookup, "ELEGANCE_EVENTS_PUBLISHER", defaultEventsPublisher)),
			ProjectID: stringWithDefault(lookup, "ELEGANCE_PUBSUB_PROJECT_ID", ""),
			Topic:     stringWithDefault(lookup, "ELEGANCE_ORDER_TOPIC", defaultOrderTopic),
		},
		Analytics: AnalyticsConfig{
			GA4MeasurementID: stringWithDefault(lookup, "ELEGANCE_GA_MEASUREMENT_ID", ""),
			GTMContainerID:   stringWithDefault(lookup, "ELEGANCE_GTM_CONTAINER_ID", ""),
			Debug:            boolWithDefault(lookup, "ELEGANCE_ANALYTICS_DEBUG", dev),
		},
	}
	if cfg.Events.ProjectID == "" {
		cfg.Events.ProjectID = cfg.Firestore.ProjectID
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		missing = append(missing, "Server.Port")
	}
	if !strings.HasPrefix(cfg.App.BaseURL, "http://") && !strings.HasPrefix(cfg.App.BaseURL, "https://") {
		missing = append(missing, "App.BaseURL")
	}
	switch cfg.Cart.Store {
	case StoreMemory:
	case StoreFile:
		if strings.TrimSpace(cfg.Cart.Dir) == "" {
			missing = append(missing, "Cart.Dir")
		}
	case StoreFirestore:
		if cfg.Firestore.ProjectID == "" {
			missing = append(missing, "Firestore.ProjectID")
		}
	default:
		missing = append(missing, "Cart.Store")
	}
	switch cfg.Payments.Provider {
	case ProviderFake:
	case ProviderStripe:
		if cfg.Payments.StripeAPIKey == "" {
			missing = append(missing, "Payments.StripeAPIKey")
		}
	default:
		missing = append(missing, "Payments.Provider")
	}
	switch cfg.Events.Publisher {
	case PublisherLog:
	case PublisherPubSub:
		if cfg.Events.ProjectID == "" {
			missing = append(missing, "Events.ProjectID")
		}
		if cfg.Events.Topic == "" {
			missing = append(missing, "Events.Topic")
		}
	default:
		missing = append(missing, "Events.Publisher")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		values[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}
