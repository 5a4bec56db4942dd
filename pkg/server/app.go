package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TAPull/internal/service/ratelimit"
	"TAPull/internal/usecase"
	"TAPull/pkg/config"
	xhttp "TAPull/pkg/http"
	applogger "TAPull/pkg/logger"
)

// pruneInterval is how often idle rate limiter buckets are dropped.
const pruneInterval = time.Minute

// App encapsulates the serve lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	uc         *usecase.IndicatorsUseCase
	rl         *ratelimit.Limiter
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	uc *usecase.IndicatorsUseCase,
	rl *ratelimit.Limiter,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, l: l, httpServer: httpServer, uc: uc, rl: rl}
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM, ctx is done or
// the listener fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := a.httpServer.Start()
	if a.rl != nil {
		go a.pruneLoop(ctx)
	}
	a.l.Info("app started",
		applogger.String("env", a.cfg.Environment),
		applogger.String("stock_api", a.cfg.StockAPI.BaseURL),
		applogger.String("cache", a.cfg.Cache.Backend),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
		applogger.Bool("clickhouse", a.cfg.ClickHouse.Enabled),
	)

	var runErr error
	select {
	case <-ctx.Done():
		a.l.Info("shutdown signal received")
	case err, ok := <-errc:
		if ok {
			runErr = err
		}
	}

	a.shutdown()
	return runErr
}

func (a *App) pruneLoop(ctx context.Context) {
	t := time.NewTicker(pruneInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.rl.Prune(); n > 0 {
				a.l.Debug("rate limiter pruned", applogger.Int("buckets", n))
			}
		}
	}
}

// shutdown gracefully stops the server and closes the sinks.
func (a *App) shutdown() {
	a.l.Info("shutting down...")

	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}
	if a.uc != nil {
		a.uc.Close()
	}

	a.l.Info("shutdown complete")
}
