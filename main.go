package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"

	"estate_matcher/config"
	"estate_matcher/logging"
	"estate_matcher/matching"
	"estate_matcher/scheduler"
	"estate_matcher/services"
	"estate_matcher/storage"
	"estate_matcher/workers"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "estate_matcher",
		Usage: "Score and rank property/client matches",
		Commands: []*cli.Command{
			daemonCmd,
			matchPropertyCmd,
			matchClientCmd,
			scoreCmd,
			enqueueCmd,
			runsCmd,
			topCmd,
			importCmd,
			consoleCmd,
			migrateCmd,
		},
		Action: runDaemon,
	}
}

// env bundles what every command needs. Close releases whatever was opened.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	closers []func()
}

func setup() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	e := &env{cfg: cfg}
	logger, logFile, err := logging.Setup(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not set up file logging: %v\n", err)
		logger = fallbackLogger()
	} else {
		e.closers = append(e.closers, func() { logFile.Close() })
	}
	e.logger = logger
	e.closers = append(e.closers, func() { _ = logger.Sync() })
	return e, nil
}

// fallbackLogger logs to stdout only, or nowhere if even that fails.
func fallbackLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create logger: %v\n", err)
		return zap.NewNop()
	}
	return logger
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

func (e *env) postgres(ctx context.Context) (*storage.PostgresStore, error) {
	if e.cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	pg, err := storage.NewPostgresStore(ctx, e.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	pg.SetLogger(e.logger)
	e.closers = append(e.closers, pg.Close)
	e.logger.Info("connected to postgres", zap.String("url", maskConnectionString(e.cfg.DatabaseURL)))
	return pg, nil
}

func (e *env) journal() (*storage.SQLiteStore, error) {
	store, err := storage.NewSQLiteStore(e.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	e.closers = append(e.closers, func() { store.Close() })
	return store, nil
}

func (e *env) engine() *matching.Engine {
	return matching.NewEngine(matching.WithWorkers(e.cfg.Matching.Workers))
}

func (e *env) matchService(pg *storage.PostgresStore) *services.MatchService {
	svc := services.NewMatchService(pg, pg, pg, e.engine(), e.logger)
	svc.SetCandidateLimit(e.cfg.Matching.CandidateLimit)
	return svc
}

var daemonCmd = &cli.Command{
	Name:   "daemon",
	Usage:  "Run scheduled re-matching and process queued commands (default)",
	Action: runDaemon,
}

func runDaemon(c *cli.Context) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e.logger.Info("starting estate_matcher")

	pg, err := e.postgres(ctx)
	if err != nil {
		return err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	journal, err := e.journal()
	if err != nil {
		return err
	}
	e.logger.Info("sqlite journal", zap.String("path", e.cfg.DBPath))

	worker := workers.NewMatchWorker(pg, e.matchService(pg), journal, e.cfg.MatchOptions(), e.logger)
	worker.SetPropertyLimit(e.cfg.Matching.PropertyLimit)
	worker.SetLogger(workers.JournalLog(journal.Log, e.logger))

	if e.cfg.S3.Enabled() {
		uploader, err := storage.NewS3Uploader(ctx, e.cfg.S3)
		if err != nil {
			return fmt.Errorf("s3: %w", err)
		}
		worker.SetUploader(uploader)
		e.logger.Info("report export enabled", zap.String("bucket", e.cfg.S3.Bucket))
	}

	sched := scheduler.New(scheduler.Config{
		Cron:     e.cfg.Scheduler.Cron,
		Interval: e.cfg.Scheduler.Interval,
	}, worker, journal, e.logger)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer sched.Stop()

	done := make(chan struct{})
	go func() {
		worker.Run(ctx, 0)
		close(done)
	}()

	e.logger.Info("daemon running, press Ctrl+C to stop")
	<-ctx.Done()

	e.logger.Info("shutting down")
	<-done
	return nil
}

// maskConnectionString masks password in connection string for logging
func maskConnectionString(connStr string) string {
	// Simple mask - find :// and mask until @
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	// Find : after user
	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
