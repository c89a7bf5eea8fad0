package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chaptertools/treasury/infra"
	infracache "github.com/chaptertools/treasury/infra/cache"
	infrarepo "github.com/chaptertools/treasury/infra/repository"
	"github.com/chaptertools/treasury/pkg/config"
	"github.com/chaptertools/treasury/pkg/ratelimit"
	ledgersvc "github.com/chaptertools/treasury/pkg/service/ledger"
	statssvc "github.com/chaptertools/treasury/pkg/service/stats"
	websvc "github.com/chaptertools/treasury/pkg/service/webhook"
	"github.com/chaptertools/treasury/webapi"
	log "github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return fmt.Errorf("open ledger store: %w", err)
	}
	if err := infra.RunMigrations(db, "file://migrations"); err != nil {
		return err
	}

	store, err := infracache.NewRedisStore(cfg.Redis, cfg.StatsCache.OpTimeout, logger)
	if err != nil {
		return fmt.Errorf("connect cache store: %w", err)
	}

	uow := infrarepo.NewUoW(db)
	stats := statssvc.New(uow, store, cfg.StatsCache, cfg.Dues.Amount, logger)
	ledger := ledgersvc.New(uow, stats, logger)
	hooks := websvc.New(uow, ledger, stats, cfg.Stripe.SigningSecret, logger)
	limiter := ratelimit.New(ratelimit.NewRedisCounter(store.Client()), logger)

	app := webapi.NewApp(webapi.Deps{
		Config:      cfg,
		DB:          db,
		CachePinger: store,
		WebhookSvc:  hooks,
		LedgerSvc:   ledger,
		StatsSvc:    stats,
		Limiter:     limiter,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("starting server", "env", cfg.Env, "addr", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		return app.Shutdown()
	}
}

func newLogger(cfg *config.Log) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.Level(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
