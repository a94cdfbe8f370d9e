package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/vulcanocraft/plugdex/internal/record"
	"github.com/vulcanocraft/plugdex/internal/setup"
	"github.com/vulcanocraft/plugdex/internal/storage"
)

func run(ctx context.Context, cfg Config) error {
	tr, stopTracer, err := setup.Tracer(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer stopTracer()

	rslv, err := setup.Resolver(ctx, cfg.Config, tr)
	if err != nil {
		return err
	}

	rec, err := rslv.Resolve(ctx, cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", cfg.URL, err)
	}

	rec.Owner = cfg.Owner
	rec.Category = cfg.Category

	if cfg.Store {
		rec, err = store(ctx, cfg, rec)
		if err != nil {
			return err
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(rec)
}

// store merges the fresh record with any previously stored version and
// writes the result.
func store(ctx context.Context, cfg Config, rec record.Record) (record.Record, error) {
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return record.Record{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	previous, err := db.Get(ctx, rec.URL, rec.Owner)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return record.Record{}, fmt.Errorf("failed to read stored record: %w", err)
	}
	if err == nil {
		rec = record.Merge(previous, rec)
	}

	if err := db.Upsert(ctx, rec); err != nil {
		return record.Record{}, fmt.Errorf("failed to store record: %w", err)
	}

	log.Ctx(ctx).Info().Str("url", rec.URL).Str("owner", rec.Owner).Msg("Record stored.")

	return rec, nil
}
