package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/SubhamBera123/Elegance/internal/cart"
	"github.com/SubhamBera123/Elegance/internal/config"
	"github.com/SubhamBera123/Elegance/internal/events"
	"github.com/SubhamBera123/Elegance/internal/payments"
)

const envFirestoreEmulator = "FIRESTORE_EMULATOR_HOST"

// adapters are the configured infrastructure clients.
type adapters struct {
	store     cart.Store
	payments  payments.Provider
	publisher events.Publisher
	logger    *zap.Logger
	closers   []func() error
}

// Close releases every opened client, logging failures.
func (a *adapters) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close adapter", zap.Error(err))
		}
	}
}

func openAdapters(ctx context.Context, cfg config.Config, logger *zap.Logger) (*adapters, error) {
	a := &adapters{logger: logger}
	var err error
	if a.store, err = a.openCartStore(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}
	if a.payments, err = openPayments(cfg, logger); err != nil {
		a.Close()
		return nil, err
	}
	if a.publisher, err = a.openPublisher(ctx, cfg); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *adapters) openCartStore(ctx context.Context, cfg config.Config) (cart.Store, error) {
	switch cfg.Cart.Store {
	case config.StoreMemory:
		return cart.NewMemoryStore(), nil
	case config.StoreFile:
		store, err := cart.NewFileStore(cfg.Cart.Dir)
		if err != nil {
			return nil, fmt.Errorf("open cart dir %s: %w", cfg.Cart.Dir, err)
		}
		return store, nil
	case config.StoreFirestore:
		client, err := firestore.NewClient(ctx, cfg.Firestore.ProjectID, firestoreOptions(cfg.Firestore)...)
		if err != nil {
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		return cart.NewFirestoreStore(client, cfg.Firestore.Collection)
	default:
		return nil, fmt.Errorf("unknown cart store %q", cfg.Cart.Store)
	}
}

// firestoreOptions points the client at the emulator when one is configured.
func firestoreOptions(cfg config.FirestoreConfig) []option.ClientOption {
	host := strings.TrimSpace(cfg.EmulatorHost)
	if host == "" {
		return nil
	}
	if os.Getenv(envFirestoreEmulator) == "" {
		_ = os.Setenv(envFirestoreEmulator, host)
	}
	return []option.ClientOption{
		option.WithoutAuthentication(),
		option.WithEndpoint(host),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	}
}

func openPayments(cfg config.Config, logger *zap.Logger) (payments.Provider, error) {
	switch cfg.Payments.Provider {
	case config.ProviderFake:
		return payments.FakeProvider{}, nil
	case config.ProviderStripe:
		return payments.NewStripeProvider(payments.StripeConfig{
			APIKey: cfg.Payments.StripeAPIKey,
			Logger: logger.Named("stripe"),
		})
	default:
		return nil, fmt.Errorf("unknown payments provider %q", cfg.Payments.Provider)
	}
}

func (a *adapters) openPublisher(ctx context.Context, cfg config.Config) (events.Publisher, error) {
	switch cfg.Events.Publisher {
	case config.PublisherLog:
		return events.LogPublisher{Logger: a.logger.Named("events")}, nil
	case config.PublisherPubSub:
		client, err := pubsub.NewClient(ctx, cfg.Events.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("pubsub client: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		topic := client.Topic(cfg.Events.Topic)
		a.closers = append(a.closers, func() error { topic.Stop(); return nil })
		return events.NewPubSubPublisher(topic)
	default:
		return nil, fmt.Errorf("unknown events publisher %q", cfg.Events.Publisher)
	}
}
