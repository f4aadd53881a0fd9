// Package storefront turns request targets into rendered, hydrated views.
package storefront

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/SubhamBera123/Elegance/internal/middleware"
	"github.com/SubhamBera123/Elegance/internal/nav"
	"github.com/SubhamBera123/Elegance/internal/observability"
	"github.com/SubhamBera123/Elegance/internal/route"
	"github.com/SubhamBera123/Elegance/internal/view"
)

// ErrSuperseded is returned when the navigation was abandoned before its
// view was rendered. Nothing must be written for it.
var ErrSuperseded = errors.New("storefront: navigation superseded")

// Phase is a dispatcher lifecycle stage.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseMatching
	PhaseContextLoading
	PhaseRendering
	PhaseHydrated
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseMatching:
		return "matching"
	case PhaseContextLoading:
		return "context_loading"
	case PhaseRendering:
		return "rendering"
	case PhaseHydrated:
		return "hydrated"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Request is one navigation. Target is the path plus optional query to
// render, which may differ from HTTP's URL after a mutation.
type Request struct {
	Target  string
	HTTP    *http.Request
	Effects view.Effects
}

// Navigation is the result of a completed dispatch.
type Navigation struct {
	Route   route.Route
	Params  route.Params
	Context view.Context
	Status  int
	State   view.State
	Markup  template.HTML
	Links   []string
	Effects view.Effects
	Phase   Phase
}

// Dispatcher is the single consumer of view descriptions.
type Dispatcher struct {
	table    *route.Table
	renderer *view.Renderer
	states   *StateBuilder
	tracer   trace.Tracer
	observe  func(Phase)

	navigations   metric.Int64Counter
	renderLatency metric.Float64Histogram
}

// DispatcherDeps wires a Dispatcher.
type DispatcherDeps struct {
	Table    *route.Table
	Renderer *view.Renderer
	States   *StateBuilder
	// Observe, when set, is told about every phase transition.
	Observe func(Phase)
	// Meter defaults to the global provider.
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewDispatcher validates deps.
func NewDispatcher(deps DispatcherDeps) (*Dispatcher, error) {
	if deps.Table == nil || deps.Renderer == nil || deps.States == nil {
		return nil, errors.New("storefront: table, renderer and state builder are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	meter := deps.Meter
	if meter == nil {
		meter = observability.Meter()
	}
	d := &Dispatcher{
		table:    deps.Table,
		renderer: deps.Renderer,
		states:   deps.States,
		tracer:   observability.Tracer(),
		observe:  deps.Observe,
	}
	var err error
	if d.navigations, err = meter.Int64Counter(
		"storefront.navigations",
		metric.WithDescription("Completed navigations by route and status"),
	); err != nil {
		logger.Warn("storefront: unable to register navigation metric", zap.Error(err))
	}
	if d.renderLatency, err = meter.Float64Histogram(
		"storefront.render.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Template render and hydration latency in milliseconds"),
	); err != nil {
		logger.Warn("storefront: unable to register render latency metric", zap.Error(err))
	}
	return d, nil
}

func (d *Dispatcher) enter(nav *Navigation, p Phase) {
	nav.Phase = p
	if d.observe != nil {
		d.observe(p)
	}
}

// Navigate matches req.Target, loads its context, renders and hydrates it.
// A cancelled ctx during loading yields ErrSuperseded.
func (d *Dispatcher) Navigate(ctx context.Context, req Request) (Navigation, error) {
	ctx, span := d.tracer.Start(ctx, "storefront.navigate", trace.WithAttributes(attribute.String("target", req.Target)))
	defer span.End()

	ctx = withTarget(ctx, req.Target)
	var n Navigation
	d.enter(&n, PhaseIdle)

	d.enter(&n, PhaseMatching)
	n.Route, n.Params = d.table.Match(req.Target)
	span.SetAttributes(attribute.String("route", n.Route.Name))

	d.enter(&n, PhaseContextLoading)
	c, err := d.load(ctx, req, n)
	if ctx.Err() != nil {
		span.SetAttributes(attribute.Bool("superseded", true))
		return Navigation{}, ErrSuperseded
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return Navigation{}, fmt.Errorf("storefront: load %s: %w", n.Route.Name, err)
	}
	n.Context = c
	n.Status = view.Status(c)
	span.SetAttributes(attribute.String("template", c.TemplateName()))

	state, err := d.states.Build(ctx, req.HTTP, req.Target, c)
	if err != nil {
		return Navigation{}, err
	}
	n.State = state

	d.enter(&n, PhaseRendering)
	started := time.Now()
	_, renderSpan := d.tracer.Start(ctx, "storefront.render")
	markup, err := d.renderer.Render(state, c)
	renderSpan.End()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		return Navigation{}, err
	}

	hydrated, err := view.Hydrate(markup)
	if err != nil {
		return Navigation{}, err
	}
	routeAttr := attribute.String("route", n.Route.Name)
	if d.renderLatency != nil {
		d.renderLatency.Record(ctx, float64(time.Since(started))/float64(time.Millisecond), metric.WithAttributes(routeAttr))
	}
	n.Markup = template.HTML(hydrated.Markup)
	n.Links = hydrated.Links

	n.Effects = req.Effects
	n.Effects.CartCount = state.CartCount
	n.Effects.Theme = state.Theme
	n.Effects.Title = state.SEO.Title
	d.enter(&n, PhaseHydrated)
	span.SetAttributes(attribute.Int("status", n.Status), attribute.Int("links", len(n.Links)))
	if d.navigations != nil {
		d.navigations.Add(ctx, 1, metric.WithAttributes(routeAttr, attribute.Int("status", n.Status)))
	}
	return n, nil
}

func (d *Dispatcher) load(ctx context.Context, req Request, n Navigation) (view.Context, error) {
	ctx, span := d.tracer.Start(ctx, "storefront.load", trace.WithAttributes(attribute.String("route", n.Route.Name)))
	defer span.End()
	if n.Route.Load == nil {
		return view.NotFoundContext{Path: pathOf(req.Target)}, nil
	}
	v, err := n.Route.Load(ctx, req.HTTP, n.Params)
	if err != nil {
		return nil, err
	}
	c, ok := v.(view.Context)
	if !ok {
		return nil, fmt.Errorf("loader returned %T, not a view context", v)
	}
	return c, nil
}

// Write sends nav to the client: the mount fragment for htmx requests that
// are not history restores, the full document otherwise.
func (d *Dispatcher) Write(w http.ResponseWriter, r *http.Request, n Navigation) error {
	var buf bytes.Buffer
	hx := middleware.HTMXFromContext(r.Context())
	var err error
	if hx.Fragment() {
		err = d.renderer.Fragment(&buf, n.State, n.Markup)
	} else {
		err = d.renderer.Document(&buf, n.State, n.Markup)
	}
	if err != nil {
		return err
	}
	if hx.Request {
		n.Effects.Apply(w)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(n.Status)
	_, err = buf.WriteTo(w)
	return err
}

// Serve dispatches req and writes the result, handling supersession and
// failures the same way for every caller.
func (d *Dispatcher) Serve(w http.ResponseWriter, req Request) {
	r := req.HTTP
	logger := observability.FromContext(r.Context())
	n, err := d.Navigate(r.Context(), req)
	if errors.Is(err, ErrSuperseded) {
		logger.Debug("navigation superseded", zap.String("target", req.Target))
		return
	}
	if err != nil {
		logger.Error("navigation failed", zap.String("target", req.Target), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := d.Write(w, r, n); err != nil {
		logger.Error("write navigation failed", zap.String("target", req.Target), zap.Error(err))
	}
}

// Page is the GET handler for every routed page.
func (d *Dispatcher) Page(w http.ResponseWriter, r *http.Request) {
	req := Request{Target: route.Target(r), HTTP: r}
	hx := middleware.HTMXFromContext(r.Context())
	// Non-boosted htmx GETs come from filter forms; record their state in history.
	if hx.Request && !hx.Boosted && !hx.HistoryRestore {
		req.Effects.PushURL = req.Target
	}
	d.Serve(w, req)
}

func pathOf(target string) string {
	path, _ := nav.SplitTarget(target)
	return path
}
