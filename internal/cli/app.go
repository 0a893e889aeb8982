package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aidanlsb/tabula/internal/apperr"
	"github.com/aidanlsb/tabula/internal/config"
	"github.com/aidanlsb/tabula/internal/datasets"
	"github.com/aidanlsb/tabula/internal/kv"
	"github.com/aidanlsb/tabula/internal/logging"
	"github.com/aidanlsb/tabula/internal/record"
	"github.com/aidanlsb/tabula/internal/session"
	"github.com/aidanlsb/tabula/internal/source"
)

// httpTimeout bounds each REST call so an unreachable API falls back quickly.
const httpTimeout = 10 * time.Second

// errSourceConfig marks a --source name or [source] table that cannot be used.
var errSourceConfig = errors.New("invalid source")

// app is everything a data command needs: the resolved source, the dataset
// store, and a session over both.
type app struct {
	sourceName string
	sourceKind string
	src        source.Source
	datasets   *datasets.Store
	session    *session.Session
	closers    []func() error
}

// Close releases database handles held by the source and store.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openApp builds the source and dataset store from config and starts a
// session over them.
func openApp(ctx context.Context) (*app, error) {
	c := getConfig()

	name := strings.TrimSpace(sourceName)
	if name == "" {
		if state, err := config.LoadState(resolvedStatePath); err == nil && state.ActiveSource != "" {
			if _, ok := c.Sources[state.ActiveSource]; ok {
				name = state.ActiveSource
			} else {
				logger.Warn().Str("source", state.ActiveSource).Msg("active source not found in config, using default")
			}
		}
	}

	srcCfg, err := c.GetSource(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSourceConfig, err)
	}
	if err := srcCfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errSourceConfig, err)
	}

	a := &app{sourceName: name, sourceKind: srcCfg.KindOrDefault()}
	primary, err := openSource(ctx, srcCfg, a)
	if err != nil {
		if !srcCfg.FallbackEnabled() {
			_ = a.Close()
			return nil, fmt.Errorf("%w: %w", apperr.ErrSourceUnavailable, err)
		}
		logger.Warn().Err(err).Str("kind", a.sourceKind).Msg("could not open source, using sample data")
	}

	switch {
	case a.sourceKind == config.SourceSample:
		a.src = source.Sample{}
	case !srcCfg.FallbackEnabled():
		a.src = primary
	case primary == nil:
		a.src = source.NewResilient(unavailableSource{err: err}, nil, logger)
	default:
		a.src = source.NewResilient(primary, nil, logger)
	}

	store, err := openStore(c, a)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.datasets, err = datasets.Open(store, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.session = session.New(a.src, logger,
		session.WithMaxRows(c.MaxRows()),
		session.WithDatasets(a.datasets),
	)
	return a, nil
}

func openSource(ctx context.Context, sc config.SourceConfig, a *app) (source.Source, error) {
	switch sc.KindOrDefault() {
	case config.SourceHTTP:
		return source.NewHTTPSource(sc.URL, &http.Client{Timeout: httpTimeout}), nil
	case config.SourceSQLite:
		s, err := source.OpenSQLite(sc.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.SourcePostgres:
		s, err := source.OpenPostgres(ctx, sc.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	default:
		return source.Sample{}, nil
	}
}

func openStore(c *config.Config, a *app) (kv.Store, error) {
	path := c.StorePath(resolvedConfigPath)
	log := logging.Component(logger, "store")
	switch strings.ToLower(strings.TrimSpace(c.Store.Kind)) {
	case "", config.StoreFile:
		log.Debug().Str("dir", path).Msg("using file store")
		return kv.NewFileStore(path), nil
	case config.StoreSQLite:
		s, err := kv.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s.Close)
		log.Debug().Str("path", path).Msg("using sqlite store")
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store kind %q (expected file or sqlite)", c.Store.Kind)
	}
}

// unavailableSource stands in for a source that could not be opened, so the
// resilient wrapper reports every call as a fallback.
type unavailableSource struct{ err error }

func (u unavailableSource) ListTables(context.Context) ([]string, error) { return nil, u.err }

func (u unavailableSource) GetSchema(context.Context, string) ([]source.Column, error) {
	return nil, u.err
}

func (u unavailableSource) GetRows(context.Context, string) ([]record.Record, error) {
	return nil, u.err
}

func (u unavailableSource) GetRelations(context.Context) ([]source.Relation, error) {
	return nil, u.err
}

// withApp opens the app, runs fn, and closes the app.
func withApp(ctx context.Context, fn func(*app) error) error {
	a, err := openApp(ctx)
	if err != nil {
		return handleErr(err)
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Debug().Err(cerr).Msg("close failed")
		}
	}()
	return fn(a)
}
