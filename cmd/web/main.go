package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/SubhamBera123/Elegance/internal/account"
	"github.com/SubhamBera123/Elegance/internal/cart"
	"github.com/SubhamBera123/Elegance/internal/catalog"
	"github.com/SubhamBera123/Elegance/internal/checkout"
	"github.com/SubhamBera123/Elegance/internal/config"
	"github.com/SubhamBera123/Elegance/internal/content"
	"github.com/SubhamBera123/Elegance/internal/events"
	mw "github.com/SubhamBera123/Elegance/internal/middleware"
	"github.com/SubhamBera123/Elegance/internal/observability"
	"github.com/SubhamBera123/Elegance/internal/payments"
	"github.com/SubhamBera123/Elegance/internal/storefront"
	"github.com/SubhamBera123/Elegance/internal/view"
)

// app holds everything the router needs.
type app struct {
	cfg        config.Config
	logger     *zap.Logger
	catalog    *catalog.Catalog
	carts      *cart.Service
	checkout   *checkout.Service
	sessions   *mw.Sessions
	dispatcher *storefront.Dispatcher
	assets     fs.FS
}

// appDeps are the swappable adapters; nil fields take in-process defaults.
type appDeps struct {
	Store     cart.Store
	Payments  payments.Provider
	Publisher events.Publisher
	Templates fs.FS
	Content   fs.FS
}

func main() {
	var (
		addr     string
		tmplPath string
		pubPath  string
		envFile  string
	)
	flag.StringVar(&addr, "addr", "", "HTTP listen address (overrides PORT)")
	flag.StringVar(&tmplPath, "templates", "", "templates directory (overrides the embedded set)")
	flag.StringVar(&pubPath, "public", "", "public assets directory (overrides the embedded set)")
	flag.StringVar(&envFile, "env-file", ".env", "dotenv file with local overrides")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx, config.WithEnvFile(envFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if tmplPath != "" {
		cfg.App.TemplatesDir = tmplPath
	}
	if pubPath != "" {
		cfg.App.PublicDir = pubPath
	}

	logger, err := observability.NewLogger(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, addr, logger); err != nil {
		logger.Error("web server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, addr string, logger *zap.Logger) error {
	adapters, err := openAdapters(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer adapters.Close()

	deps := appDeps{Store: adapters.store, Payments: adapters.payments, Publisher: adapters.publisher}
	if dir := cfg.App.TemplatesDir; dir != "" {
		deps.Templates = os.DirFS(dir)
	}
	a, err := newApp(cfg, logger, deps)
	if err != nil {
		return err
	}
	if dir := cfg.App.PublicDir; dir != "" {
		a.assets = os.DirFS(filepath.Join(dir, "assets"))
	}

	if addr == "" {
		addr = cfg.Server.Addr()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web listening",
			zap.String("addr", addr),
			zap.Bool("dev", cfg.App.Dev),
			zap.String("cart_store", cfg.Cart.Store),
			zap.String("payments", cfg.Payments.Provider),
			zap.String("events", cfg.Events.Publisher),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newApp wires the domain services and the storefront dispatcher.
func newApp(cfg config.Config, logger *zap.Logger, deps appDeps) (*app, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	acct, err := account.Default()
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	store := deps.Store
	if store == nil {
		store = cart.NewMemoryStore()
	}
	carts, err := cart.NewService(cart.Deps{Store: store, Catalog: cat, Logger: logger.Named("cart")})
	if err != nil {
		return nil, err
	}
	provider := deps.Payments
	if provider == nil {
		provider = payments.FakeProvider{}
	}
	co, err := checkout.NewService(checkout.Deps{
		Carts:     carts,
		Payments:  provider,
		Publisher: deps.Publisher,
		BaseURL:   cfg.App.BaseURL,
		Logger:    logger.Named("checkout"),
	})
	if err != nil {
		return nil, err
	}

	table, err := storefront.NewTable(storefront.Deps{
		Catalog:  cat,
		Carts:    carts,
		Checkout: co,
		Account:  acct,
		Content:  content.New(deps.Content),
	})
	if err != nil {
		return nil, err
	}
	renderer, err := view.NewRenderer(view.Options{Templates: deps.Templates, Reload: cfg.App.Dev})
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	analytics := view.Analytics{
		GA4MeasurementID: cfg.Analytics.GA4MeasurementID,
		GTMContainerID:   cfg.Analytics.GTMContainerID,
		Debug:            cfg.Analytics.Debug,
	}
	dispatcher, err := storefront.NewDispatcher(storefront.DispatcherDeps{
		Table:    table,
		Renderer: renderer,
		States:   storefront.NewStateBuilder(carts, cfg.App.BaseURL, analytics),
		Logger:   logger.Named("storefront"),
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		catalog:    cat,
		carts:      carts,
		checkout:   co,
		sessions:   mw.NewSessions(cfg.Session.SigningKey, cfg.Session.Secure, logger),
		dispatcher: dispatcher,
		assets:     view.Assets(),
	}, nil
}

// routes builds the HTTP router.
func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// RealIP trusts X-Forwarded-For; only deploy behind a proxy that sets it.
	r.Use(chimw.RealIP)
	r.Use(observability.Trace)
	r.Use(observability.RequestLogger(a.logger))
	r.Use(observability.Recovery(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(a.cfg.Server.RequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/assets/*", http.StripPrefix("/assets", mw.AssetsWithCache(a.assets)))

	r.Group(func(r chi.Router) {
		r.Use(mw.HTMX)
		r.Use(a.sessions.Middleware)
		r.Use(mw.CSRF(a.sessions.Secure()))

		for _, p := range []string{"/", "/products", "/product/{id}", "/cart", "/checkout", "/account", "/about"} {
			r.Get(p, a.dispatcher.Page)
		}
		r.NotFound(a.dispatcher.Page)

		r.Post("/cart/lines", a.addLine)
		r.Post("/cart/quick-add", a.quickAdd)
		r.Post("/cart/lines/update", a.updateLine)
		r.Post("/cart/lines/remove", a.removeLine)
		r.Post("/cart/clear", a.clearCart)
		r.Post("/theme/toggle", a.toggleTheme)
		r.Post("/checkout", a.placeOrder)
	})
	return r
}
