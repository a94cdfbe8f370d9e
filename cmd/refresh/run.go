package refresh

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/vulcanocraft/plugdex/internal/setup"
	"github.com/vulcanocraft/plugdex/internal/storage"
	"github.com/vulcanocraft/plugdex/pkg/scheduler"
)

func run(ctx context.Context, cfg Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tr, stopTracer, err := setup.Tracer(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer stopTracer()

	rslv, err := setup.Resolver(ctx, cfg.Config, tr)
	if err != nil {
		return err
	}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	refresher, err := scheduler.NewRefresher(db, rslv, cfg.Scheduler)
	if err != nil {
		return err
	}

	if cfg.Once {
		return refresher.RunCycle(ctx)
	}

	return refresher.Start(ctx)
}
