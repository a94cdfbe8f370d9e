// Package scheduler periodically re-resolves stored plugin records.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog/log"

	"github.com/vulcanocraft/plugdex/internal/record"
	"github.com/vulcanocraft/plugdex/internal/storage"
)

const (
	defaultInterval = 6 * time.Hour
	defaultDelay    = 2 * time.Second
	defaultCooldown = time.Minute
)

type pluginStore interface {
	List(ctx context.Context) ([]record.Record, error)
	Get(ctx context.Context, rawURL, owner string) (record.Record, error)
	Upsert(ctx context.Context, rec record.Record) error
}

type metadataResolver interface {
	Resolve(ctx context.Context, rawURL string) (record.Record, error)
}

// Config holds the refresh timings. Zero values fall back to defaults.
type Config struct {
	// Interval between refresh cycles.
	Interval time.Duration
	// Delay between records within a cycle, to stay polite to upstreams.
	Delay time.Duration
	// Cooldown after a failed cycle before the next one may start.
	Cooldown time.Duration
}

// Refresher re-resolves every stored record on a fixed interval, merging the
// fresh metadata into the stored copy. Owner-curated fields survive the
// merge, and a record whose resolution fails keeps its stored version.
type Refresher struct {
	store    pluginStore
	resolver metadataResolver
	interval time.Duration
	delay    time.Duration
	cooldown time.Duration

	scheduler gocron.Scheduler
}

// NewRefresher creates a Refresher over the store and resolver.
func NewRefresher(store pluginStore, resolver metadataResolver, cfg Config) (*Refresher, error) {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Delay <= 0 {
		cfg.Delay = defaultDelay
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaultCooldown
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Refresher{
		store:     store,
		resolver:  resolver,
		interval:  cfg.Interval,
		delay:     cfg.Delay,
		cooldown:  cfg.Cooldown,
		scheduler: s,
	}, nil
}

// Start schedules the refresh cycle and runs until the context is done.
func (r *Refresher) Start(ctx context.Context) error {
	_, err := r.scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.runCycle, ctx),
		gocron.WithName("refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh job: %w", err)
	}

	log.Ctx(ctx).Info().Dur("interval", r.interval).Msg("Starting refresher.")
	r.scheduler.Start()

	<-ctx.Done()

	return r.scheduler.Shutdown()
}

func (r *Refresher) runCycle(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Ctx(ctx).Error().Interface("panic", rec).Msg("Refresh cycle panicked.")
		}
	}()

	if err := r.RunCycle(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Refresh cycle failed.")

		select {
		case <-time.After(r.cooldown):
		case <-ctx.Done():
		}
	}
}

// RunCycle refreshes every stored record once. Individual record failures are
// logged and skipped; the cycle itself fails only when the store does.
func (r *Refresher) RunCycle(ctx context.Context) error {
	records, err := r.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list plugins: %w", err)
	}

	log.Ctx(ctx).Info().Int("count", len(records)).Msg("Starting refresh cycle.")

	for i, stored := range records {
		if i > 0 {
			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		logger := log.Ctx(ctx).With().
			Str("url", stored.URL).
			Str("owner", stored.Owner).
			Logger()

		r.refreshRecord(logger.WithContext(ctx), stored)
	}

	return nil
}

func (r *Refresher) refreshRecord(ctx context.Context, stored record.Record) {
	logger := log.Ctx(ctx)

	// The record may have been deleted since the cycle started.
	current, err := r.store.Get(ctx, stored.URL, stored.Owner)
	if errors.Is(err, storage.ErrNotFound) {
		logger.Debug().Msg("Plugin removed during cycle, skipping.")
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("Failed to re-read plugin.")
		return
	}

	fresh, err := r.resolver.Resolve(ctx, current.URL)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to resolve plugin, keeping stored version.")
		return
	}

	merged := record.Merge(current, fresh)
	if cmp.Equal(current, merged) {
		logger.Debug().Msg("Plugin unchanged.")
		return
	}

	if err := r.store.Upsert(ctx, merged); err != nil {
		logger.Error().Err(err).Msg("Failed to store refreshed plugin.")
		return
	}

	logger.Info().Msg("Plugin refreshed.")
}
