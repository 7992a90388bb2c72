// Command sweep removes expired documents once and exits, for cron-style
// deployments that run the service without its background sweeper.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogotex/docshare/internal/config"
	"github.com/gogotex/docshare/internal/document/repository"
	"github.com/gogotex/docshare/internal/storage"
	"github.com/gogotex/docshare/internal/sweeper"
	"github.com/gogotex/docshare/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("storage unavailable: %v", err)
	}
	defer closeRepo()

	opts := []sweeper.Option{sweeper.WithRetention(cfg.Retention.MaxAge)}
	if cfg.Archive.Endpoint != "" {
		arch, err := storage.NewMinIOStorage(ctx, cfg.Archive)
		if err != nil {
			logger.Fatalf("archive unavailable: %v", err)
		}
		opts = append(opts, sweeper.WithArchiver(arch))
	}

	removed, err := sweeper.New(repo, opts...).SweepOnce(ctx)
	switch {
	case err == nil:
	case errors.Is(err, sweeper.ErrArchiveIncomplete):
		logger.Warnf("sweep finished with archive errors: %v", err)
	default:
		closeRepo()
		logger.Fatalf("sweep failed: %v", err)
	}
	logger.WithFields(logger.Fields{"removed": removed, "retention": cfg.Retention.MaxAge.String()}).Info("sweep complete")
}
