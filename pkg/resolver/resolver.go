// Package resolver turns a plugin URL into a metadata record.
//
// Resolution is best effort: a field whose platform fetch fails resolves to
// its empty value instead of failing the whole record. Only an unsupported
// URL is an error.
package resolver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"

	"github.com/vulcanocraft/plugdex/internal/record"
	"github.com/vulcanocraft/plugdex/pkg/adapters"
	"github.com/vulcanocraft/plugdex/pkg/platform"
)

// ErrUnsupportedURL is returned when no platform claims the URL.
var ErrUnsupportedURL = errors.New("unsupported plugin URL")

const defaultFieldTimeout = 20 * time.Second

// Resolver resolves plugin metadata through the platform adapters.
type Resolver struct {
	registry     adapters.Registry
	tracer       trace.Tracer
	fieldTimeout time.Duration
}

// New creates a Resolver. A zero fieldTimeout falls back to the default.
func New(registry adapters.Registry, tracer trace.Tracer, fieldTimeout time.Duration) *Resolver {
	if fieldTimeout <= 0 {
		fieldTimeout = defaultFieldTimeout
	}

	return &Resolver{
		registry:     registry,
		tracer:       tracer,
		fieldTimeout: fieldTimeout,
	}
}

// Resolve classifies the URL and fetches all metadata fields concurrently.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (record.Record, error) {
	identity, ok := platform.Detect(rawURL)
	if !ok {
		return record.Record{}, ErrUnsupportedURL
	}

	adapter, ok := r.registry.Get(identity.Platform)
	if !ok {
		return record.Record{}, ErrUnsupportedURL
	}

	ctx, span := r.tracer.Start(ctx, "resolve_"+string(identity.Platform))
	defer span.End()

	logger := log.Ctx(ctx).With().
		Str("platform", string(identity.Platform)).
		Str("id", identity.ID).
		Logger()
	ctx = logger.WithContext(ctx)

	rec := record.Record{URL: rawURL}

	var wg sync.WaitGroup
	wg.Add(6)

	go func() {
		defer wg.Done()
		rec.Title = r.stringField(ctx, span, "title", identity.ID, adapter.Title)
	}()
	go func() {
		defer wg.Done()
		rec.Author = r.stringField(ctx, span, "author", identity.ID, adapter.Author)
	}()
	go func() {
		defer wg.Done()
		rec.Description = r.stringField(ctx, span, "description", identity.ID, adapter.Description)
	}()
	go func() {
		defer wg.Done()
		rec.Icon = r.stringField(ctx, span, "icon", identity.ID, adapter.Icon)
	}()
	go func() {
		defer wg.Done()
		rec.Loaders = r.listField(ctx, span, "loaders", identity.ID, adapter.Loaders)
	}()
	go func() {
		defer wg.Done()
		rec.Versions = r.listField(ctx, span, "versions", identity.ID, adapter.Versions)
	}()

	wg.Wait()

	return rec, nil
}

// stringField fetches one string field, turning any failure into "".
func (r *Resolver) stringField(ctx context.Context, span trace.Span, name, id string, fetch func(context.Context, string) (string, error)) string {
	ctx, cancel := context.WithTimeout(ctx, r.fieldTimeout)
	defer cancel()

	value, err := fetch(ctx, id)
	if err != nil {
		span.RecordError(err)
		log.Ctx(ctx).Debug().Err(err).Str("field", name).Msg("Field resolution failed.")

		return ""
	}

	return value
}

// listField fetches one list field, turning any failure into an empty list.
func (r *Resolver) listField(ctx context.Context, span trace.Span, name, id string, fetch func(context.Context, string) ([]string, error)) []string {
	ctx, cancel := context.WithTimeout(ctx, r.fieldTimeout)
	defer cancel()

	values, err := fetch(ctx, id)
	if err != nil {
		span.RecordError(err)
		log.Ctx(ctx).Debug().Err(err).Str("field", name).Msg("Field resolution failed.")

		return []string{}
	}

	if values == nil {
		return []string{}
	}

	return values
}
