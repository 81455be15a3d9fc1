package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/storectx/internal/errors"
	"github.com/vango-dev/storectx/pkg/broadcast"
	"github.com/vango-dev/storectx/pkg/hooks"
	"github.com/vango-dev/storectx/pkg/inspect"
	"github.com/vango-dev/storectx/pkg/persist"
	"github.com/vango-dev/storectx/pkg/reactive"
	"github.com/vango-dev/storectx/pkg/telemetry"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the storage inspector",
		Long: `Serve the inspector for both handles.

Routes:
  /local/items, /local/items/{key}, /local/events
  /session/items, /session/items/{key}, /session/events
  /metrics

File backends with watch enabled relay writes made by other processes
to /events subscribers.

Examples:
  storectx serve
  storectx serve --addr=:7070`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Inspect.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")

	return cmd
}

// serveRouter mounts the local and session inspectors and the registry's
// metrics endpoint.
func serveRouter(registry prometheus.Gatherer, local, session *inspect.Server) http.Handler {
	r := chi.NewRouter()
	r.Mount("/"+persist.LocalName, local.Handler())
	r.Mount("/"+persist.SessionName, session.Handler())
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return r
}

func runServe(ctx context.Context, a *app) error {
	logger := a.logger

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(
		telemetry.WithNamespace(a.cfg.Metrics.Namespace),
		telemetry.WithRegistry(registry),
	)

	bus := broadcast.New(
		broadcast.WithLogger(logger),
		broadcast.WithMetrics(metrics),
		broadcast.WithAudit(true),
	)

	// Bus deliveries from HTTP handlers and file watchers are serialized on
	// the runtime goroutine.
	rt := reactive.NewRuntime(
		reactive.WithLogger(logger),
		reactive.WithMetrics(metrics),
	)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := rt.Run(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
			logger.Error("runtime stopped", "error", err)
		}
	}()

	for name, fs := range a.handles.Watched {
		changes, err := fs.Watch(ctx)
		if err != nil {
			return errors.New(errors.CodeBackendOpen).WithSubject(fs.Dir()).Wrap(err)
		}
		go func(name string) {
			if err := hooks.Relay(ctx, changes, bus, name, rt.Dispatch); err != nil && !stderrors.Is(err, context.Canceled) {
				logger.Error("relay stopped", "channel", name, "error", err)
			}
		}(name)
		logger.Info("watching backend", "channel", name, "dir", fs.Dir())
	}

	opts := []inspect.Option{
		inspect.WithBus(bus),
		inspect.WithLogger(logger),
		inspect.WithGatherer(registry),
		inspect.WithDispatch(rt.Dispatch),
	}
	local := inspect.New(persist.Local(), opts...)
	session := inspect.New(persist.Session(), opts...)
	defer local.Close()
	defer session.Close()

	srv := &http.Server{
		Addr:              a.cfg.Inspect.Addr,
		Handler:           serveRouter(registry, local, session),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	fmt.Printf("  Inspector on http://%s\n", a.cfg.Inspect.Addr)

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return errors.New(errors.CodeServe).WithSubject(a.cfg.Inspect.Addr).Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down inspector")
	local.Close()
	session.Close()
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	return srv.Shutdown(shutdownCtx)
}
