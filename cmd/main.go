// Command notescore runs one scoring pass for a community and prints the
// report. Scheduling, retries, and result persistence belong to external
// callers; this binary is an operational wrapper around the service.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clearnote/notescore/internal/adapters/repository"
	"github.com/clearnote/notescore/internal/app"
	"github.com/clearnote/notescore/internal/config"
	"github.com/clearnote/notescore/pkg/logger"
	"github.com/clearnote/notescore/pkg/metrics"
)

const (
	readHeaderTimeout = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) < 2 {
		os.Stderr.WriteString("usage: notescore <community-id>\n")
		os.Exit(2)
	}
	communityID := os.Args[1]

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	provider, err := repository.NewSQLiteProvider(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "failed to open data provider", logger.Error(err))
		os.Exit(1)
	}
	if err := provider.EnsureSchema(ctx); err != nil {
		log.Error(ctx, "failed to ensure provider schema", logger.Error(err))
		os.Exit(1)
	}

	svc := app.New(
		app.WithProvider(provider),
		app.WithLogger(log),
		app.WithMFDeadline(time.Duration(cfg.MFDeadlineMS)*time.Millisecond),
		app.WithTriggerThreshold(cfg.TriggerThreshold),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		os.Exit(1)
	}
	defer svc.Stop()

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, log)
	}

	report, err := svc.ScoreCommunity(ctx, communityID)
	if err != nil {
		log.Error(ctx, "scoring pass failed",
			logger.String("communityID", communityID), logger.Error(err))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Error(ctx, "failed to encode report", logger.Error(err))
		os.Exit(1)
	}
}

// serveMetrics exposes the Prometheus registry until the context ends.
func serveMetrics(ctx context.Context, addr string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), readHeaderTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info(ctx, "serving metrics", logger.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "metrics server failed", logger.Error(err))
	}
}
