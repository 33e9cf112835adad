// Package daemon composes the groundlink process: transport, message hub,
// fleet model, snapshot persistence, and the metrics endpoint.
//
// The daemon initializes from configuration via New; functional options
// allow test overrides of the transport adapter, observer, and application
// dispatch.
//
//	d, err := daemon.New(cfg)
//	err = d.Run(ctx)
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skylink-gcs/groundlink/fleet"
	"github.com/skylink-gcs/groundlink/hub"
	"github.com/skylink-gcs/groundlink/observability"
	"github.com/skylink-gcs/groundlink/snapshot"
	"github.com/skylink-gcs/groundlink/transport"
)

// Option configures a Daemon after config-driven initialization.
type Option func(*Daemon)

// WithAdapter overrides the config-created TCP adapter. The daemon skips
// dialing cfg.Server when an adapter is injected.
func WithAdapter(a transport.Adapter) Option {
	return func(d *Daemon) { d.adapter = a }
}

// WithObserver overrides the default slog+prometheus observer pair.
func WithObserver(o observability.Observer) Option {
	return func(d *Daemon) { d.observer = o }
}

// WithDispatch sets the application dispatch receiving fleet actions.
func WithDispatch(fn hub.DispatchFunc) Option {
	return func(d *Daemon) { d.dispatch = fn }
}

// Daemon is the composed groundlink process.
type Daemon struct {
	cfg      Config
	adapter  transport.Adapter
	observer observability.Observer
	dispatch hub.DispatchFunc
	registry *prometheus.Registry

	hub   *hub.Hub
	fleet *fleet.Store
}

// New creates a Daemon from configuration. The hub and transport are not
// started until Run.
func New(cfg *Config, opts ...Option) (*Daemon, error) {
	merged := DefaultConfig()
	merged.Merge(cfg)

	d := &Daemon{
		cfg:      merged,
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.adapter == nil && d.cfg.Server == "" {
		return nil, ErrServerRequired
	}

	var cache *snapshot.Cache
	if store := snapshot.NewStore(&d.cfg.Snapshot); store != nil {
		cache = snapshot.NewCache(store)
	}
	d.fleet = fleet.NewStore(cache)

	if d.observer == nil {
		d.observer = observability.NewMultiObserver(
			observability.NewSlogObserver(slog.Default()),
			observability.NewPrometheusObserver(d.registry),
		)
	}
	// Application code outside the daemon wiring can look the composed
	// observer up by name.
	observability.RegisterObserver("daemon", d.observer)
	if d.dispatch == nil {
		d.dispatch = func(string, any) {}
	}

	return d, nil
}

// Hub returns the running hub. Nil before Run.
func (d *Daemon) Hub() *hub.Hub {
	return d.hub
}

// Fleet returns the fleet store.
func (d *Daemon) Fleet() *fleet.Store {
	return d.fleet
}

// Run starts every subsystem and blocks until the context is cancelled or
// the server link is lost. The fleet snapshot is flushed on the way out.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.fleet.Restore(ctx); err != nil {
		return fmt.Errorf("restore fleet snapshot: %w", err)
	}

	adapter := d.adapter
	if adapter == nil {
		tcp, err := transport.Dial(d.cfg.Server, d.cfg.transportConfig())
		if err != nil {
			return fmt.Errorf("connect swarm server: %w", err)
		}
		defer tcp.Close()
		adapter = tcp
	}

	notice := func(msg string) {
		slog.Warn("protocol notice", "detail", msg)
	}

	hubCfg := d.cfg.hubConfig()
	hubCfg.Dispatch = d.dispatch
	hubCfg.Notice = notice
	hubCfg.Observer = d.observer

	d.hub = hub.New(ctx, hubCfg, adapter)
	defer d.hub.Shutdown(5 * time.Second)

	if err := d.registry.Register(d.hub.Collector()); err != nil {
		return fmt.Errorf("register hub metrics: %w", err)
	}

	d.hub.RegisterNotificationHandlers(fleet.Handlers(d.fleet, notice))

	var metricsSrv *http.Server
	if d.cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{
			ErrorHandling: promhttp.ContinueOnError,
		}))
		metricsSrv = &http.Server{Addr: d.cfg.MetricsAddr, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	flushTicker := time.NewTicker(time.Duration(d.cfg.FlushInterval))
	defer flushTicker.Stop()
	defer d.flush()

	var linkDown <-chan struct{}
	if da, ok := adapter.(interface{ Done() <-chan struct{} }); ok {
		linkDown = da.Done()
	}

	slog.Info("groundlink daemon up", "server", d.cfg.Server, "metrics", d.cfg.MetricsAddr)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-linkDown:
			return ErrLinkLost
		case <-flushTicker.C:
			if err := d.flush(); err != nil {
				slog.Error("snapshot flush failed", "error", err)
			}
		}
	}
}

// flush persists dirty fleet records with a bounded deadline, detached from
// the run context so the final flush still works after cancellation.
func (d *Daemon) flush() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.fleet.Flush(ctx)
}
