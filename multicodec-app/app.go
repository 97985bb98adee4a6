package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/compose-network/multicodec/multicodec-app/config"
	apisrv "github.com/compose-network/multicodec/server/api"
	codechttp "github.com/compose-network/multicodec/x/codec/http"
)

// App represents the framing service
type App struct {
	cfg *config.Config
	log zerolog.Logger

	registry      *prometheus.Registry
	apiServer     *apisrv.Server
	metricsServer *apisrv.Server
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, log zerolog.Logger) (*App, error) {
	app := &App{
		cfg:      cfg,
		log:      log.With().Str("component", "app").Logger(),
		registry: prometheus.NewRegistry(),
	}

	if err := app.initialize(log); err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}

	return app, nil
}

// initialize sets up the application components
func (a *App) initialize(log zerolog.Logger) error {
	var frameMetrics *codechttp.Metrics
	if a.cfg.Metrics.Enabled {
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		frameMetrics = codechttp.NewMetrics(a.registry)
		a.metricsServer = a.newMetricsServer(log)
	}

	a.apiServer = apisrv.NewServer(a.cfg.API, log)
	codechttp.NewHandler(frameMetrics, log).RegisterMux(a.apiServer.Router)

	return nil
}

func (a *App) newMetricsServer(log zerolog.Logger) *apisrv.Server {
	cfg := a.cfg.API
	cfg.ListenAddr = a.cfg.Metrics.ListenAddr
	cfg.EnableCORS = false

	srv := apisrv.NewServer(cfg, log.With().Str("server", "metrics").Logger())
	srv.Router.Handle(a.cfg.Metrics.Path, promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{
		Registry: a.registry,
	}))
	return srv
}

// Run starts the servers and blocks until ctx is cancelled, SIGINT or
// SIGTERM is received, or a server fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	servers := []*apisrv.Server{a.apiServer}
	if a.metricsServer != nil {
		servers = append(servers, a.metricsServer)
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *apisrv.Server) {
			errCh <- srv.Start(ctx)
		}(srv)
	}

	a.log.Info().Int("servers", len(servers)).Msg("Application started")

	var firstErr error
	for range servers {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			a.log.Error().Err(err).Msg("Server failed, shutting down")
			cancel()
		}
	}

	a.log.Info().Msg("Application stopped")
	if firstErr != nil && !errors.Is(firstErr, context.Canceled) {
		return firstErr
	}
	return nil
}
