package main

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"outreach/internal/amqp"
	"outreach/internal/backend"
	"outreach/internal/cli"
	"outreach/internal/config"
	"outreach/internal/log"
	"outreach/internal/sheets/google"
	"outreach/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig((*config.Config).Validate, (*config.Config).ValidateWorker)
	if err != nil {
		logger := cli.SetupLogger(config.Load().Level(), log.ComponentWorker)
		cli.Fatal(logger, "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg.Level(), log.ComponentWorker)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	logger.Info("Starting outreach-worker", log.FieldOperation, log.OpStartup)
	if err := run(ctx, cfg, logger); err != nil {
		cli.Fatal(logger, "Worker stopped with error", err)
	}
	logger.Info("Worker shutdown complete")
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

	mirror, err := google.New(ctx, google.Config{
		SpreadsheetID:    cfg.GoogleSpreadsheetID,
		PerformanceSheet: cfg.GooglePerformanceSheet,
		ExpenditureSheet: cfg.GoogleExpenditureSheet,
		CredentialsJSON:  cfg.GoogleServiceAccountJSON,
		CredentialsFile:  cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		return err
	}

	changes, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange,
		amqp.QueueOptions{Name: cfg.AMQPQueue, Durable: true}, logger)
	if err != nil {
		return err
	}
	defer changes.Close()

	w := worker.NewMirrorWorker(db, mirror, cfg.MirrorInterval, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return w.Run(gctx)
	})
	g.Go(func() error {
		err := changes.Consume(gctx, w.HandleChange)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return g.Wait()
}
