package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"outreach/internal/amqp"
	"outreach/internal/auth"
	"outreach/internal/backend"
	"outreach/internal/budget"
	"outreach/internal/cache"
	"outreach/internal/cli"
	"outreach/internal/config"
	apphttp "outreach/internal/http"
	"outreach/internal/log"
	"outreach/internal/services"
	"outreach/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig((*config.Config).Validate)
	if err != nil {
		logger := cli.SetupLogger(config.Load().Level(), log.ComponentApp)
		cli.Fatal(logger, "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg.Level(), log.ComponentApp)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		cli.Fatal(logger, "Server stopped with error", err)
	}
	logger.Info("Server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	db, err := backend.Open(ctx, backendCfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	origin := originID()
	live := store.NewLive(db, logger, origin)

	var changes *amqp.Client
	if cfg.AMQPURL != "" {
		// Each server gets its own exclusive queue so every instance sees
		// every change.
		changes, err = amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, amqp.QueueOptions{Exclusive: true}, logger)
		if err != nil {
			return err
		}
		defer changes.Close()
		live.SetPublisher(changes)
	} else if backendCfg.Type.Shared() {
		logger.Warn("AMQP disabled, changes from other processes will not reach live clients")
	}

	views := cache.NewLRUCache[services.DashboardView](cfg.CacheSize, cfg.CacheTTL)
	budgets := cache.NewLRUCache[budget.Summary](cfg.CacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager(logger)
	cacheManager.Register(views)
	cacheManager.Register(budgets)

	records := services.NewRecords(live, logger)
	dashboard := services.NewDashboard(live, views, budgets)
	live.OnChange(dashboard.Invalidate)

	srv := apphttp.NewServer(net.JoinHostPort("", cfg.Port), apphttp.Deps{
		Live:      live,
		Records:   records,
		Importer:  services.NewImporter(live, records, logger),
		Dashboard: dashboard,
		Auth:      auth.NewService(db, cfg.AdminDefaultPassword, logger),
		Sessions:  auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL, cfg.SecureCookies),
		Ready:     cli.ReadyCheck(db),
		Logger:    logger,
	}, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		StaticDir:          cfg.StaticDir,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting outreach server",
			"port", cfg.Port,
			"backend", backendCfg.Type.String(),
			log.FieldOrigin, origin)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return cacheManager.Run(gctx, time.Minute)
	})

	if changes != nil {
		g.Go(func() error {
			err := changes.Consume(gctx, amqp.RefreshHandler(live, logger))
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}

// originID names this process on the change feed.
func originID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "outreach"
	}
	return host + "-" + uuid.NewString()[:8]
}
