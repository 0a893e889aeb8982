package source

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/aidanlsb/tabula/internal/apperr"
	"github.com/aidanlsb/tabula/internal/record"
)

// Resilient answers from Primary and falls back to Fallback whenever Primary
// fails. A fallback answer marks the source degraded until the next
// successful primary call.
type Resilient struct {
	Primary  Source
	Fallback Source

	logger    zerolog.Logger
	degraded  atomic.Bool
	fallbacks atomic.Uint64
}

// NewResilient wraps primary. A nil fallback means Sample.
func NewResilient(primary, fallback Source, logger zerolog.Logger) *Resilient {
	if fallback == nil {
		fallback = Sample{}
	}
	return &Resilient{
		Primary:  primary,
		Fallback: fallback,
		logger:   logger.With().Str("component", "source").Logger(),
	}
}

// Degraded reports whether the most recent call was served by the fallback.
func (r *Resilient) Degraded() bool {
	return r.degraded.Load()
}

// Fallbacks returns how many calls have been served by the fallback.
func (r *Resilient) Fallbacks() uint64 {
	return r.fallbacks.Load()
}

func (r *Resilient) ListTables(ctx context.Context) ([]string, error) {
	return withFallback(r, "list tables", func(s Source) ([]string, error) {
		return s.ListTables(ctx)
	})
}

func (r *Resilient) GetSchema(ctx context.Context, table string) ([]Column, error) {
	return withFallback(r, "schema "+table, func(s Source) ([]Column, error) {
		return s.GetSchema(ctx, table)
	})
}

func (r *Resilient) GetRows(ctx context.Context, table string) ([]record.Record, error) {
	return withFallback(r, "rows "+table, func(s Source) ([]record.Record, error) {
		return s.GetRows(ctx, table)
	})
}

func (r *Resilient) GetRelations(ctx context.Context) ([]Relation, error) {
	return withFallback(r, "relations", func(s Source) ([]Relation, error) {
		return s.GetRelations(ctx)
	})
}

func withFallback[T any](r *Resilient, op string, call func(Source) (T, error)) (T, error) {
	v, err := call(r.Primary)
	if err == nil {
		r.degraded.Store(false)
		return v, nil
	}

	r.logger.Warn().
		Err(fmt.Errorf("%w: %w", apperr.ErrSourceUnavailable, err)).
		Str("op", op).
		Msg("primary source failed, using sample data")
	r.degraded.Store(true)
	r.fallbacks.Add(1)

	v, ferr := call(r.Fallback)
	if ferr != nil {
		return v, fmt.Errorf("%w: %s: %w", apperr.ErrSourceUnavailable, op, err)
	}
	return v, nil
}
