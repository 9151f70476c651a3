package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "AssetCast/internal/domain/repository"
	"AssetCast/internal/services/scheduler"
	"AssetCast/pkg/config"
	xhttp "AssetCast/pkg/http"
	applogger "AssetCast/pkg/logger"
)

// App encapsulates the entire application lifecycle: the reconciling
// scheduler, the datapoint backend, and the admin HTTP server.
type App struct {
	cfg        *config.Config
	sched      *scheduler.Service
	store      domrepo.DatapointStore
	events     domrepo.EventPublisher
	handler    xhttp.Handler
	httpServer *xhttp.Server
	l          *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	sched *scheduler.Service,
	store domrepo.DatapointStore,
	events domrepo.EventPublisher,
	handler xhttp.Handler,
	l *applogger.Logger,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:     cfg,
		sched:   sched,
		store:   store,
		events:  events,
		handler: handler,
		l:       l,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	a.sched.Start()
	a.l.Info("scheduler service started",
		applogger.String("realm", a.cfg.Scheduler.Realm),
		applogger.Duration("poll_interval_ms", a.cfg.Scheduler.PollInterval),
	)

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("admin api listening", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop triggering first so no new work starts while we drain.
	a.sched.Stop(ctx)

	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.l.Warn("event publisher close error", applogger.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.l.Warn("datapoint store close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
