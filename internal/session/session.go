// Package session owns the exploration state and applies user commands to it.
//
// A Session holds one immutable State at a time. Every change goes through
// Dispatch, which either installs the State a Command returns or, on error,
// keeps the previous one. Table fetches run outside the lock and are tagged
// with a generation so a slow response for a table the user has already left
// is dropped instead of overwriting newer state.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aidanlsb/tabula/internal/apperr"
	"github.com/aidanlsb/tabula/internal/chart"
	"github.com/aidanlsb/tabula/internal/datasets"
	"github.com/aidanlsb/tabula/internal/filter"
	"github.com/aidanlsb/tabula/internal/record"
	"github.com/aidanlsb/tabula/internal/selection"
	"github.com/aidanlsb/tabula/internal/source"
)

// Session is the single writer of the exploration state.
type Session struct {
	src     source.Source
	store   *datasets.Store
	logger  zerolog.Logger
	maxRows int

	mu    sync.Mutex
	state State
	gen   uint64
}

// Option configures a Session.
type Option func(*Session)

// WithMaxRows sets the display cap used by View.
func WithMaxRows(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.maxRows = n
		}
	}
}

// WithDatasets enables the dataset commands.
func WithDatasets(store *datasets.Store) Option {
	return func(s *Session) { s.store = store }
}

// New returns a session reading from src.
func New(src source.Source, logger zerolog.Logger, opts ...Option) *Session {
	s := &Session{
		src:     src,
		logger:  logger.With().Str("component", "session").Logger(),
		maxRows: DefaultMaxRows,
		state:   State{ChartKind: chart.Pie},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View renders the current snapshot with the session's display cap.
func (s *Session) View() View {
	return s.State().View(s.maxRows)
}

// Chart reduces the current snapshot to a series.
func (s *Session) Chart() chart.Series {
	return s.State().Chart()
}

// Export serializes the current snapshot.
func (s *Session) Export() (Export, error) {
	return s.State().Export()
}

// Dispatch applies cmd to the current state. On error the state is unchanged.
func (s *Session) Dispatch(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := cmd.Apply(s.state)
	if err != nil {
		s.logger.Debug().Err(err).Str("command", cmd.Name).Msg("command rejected")
		return err
	}
	s.state = next
	s.logger.Debug().Str("command", cmd.Name).Msg("command applied")
	return nil
}

func (s *Session) SelectAttr(attrs ...string) error   { return s.Dispatch(SelectAttr(attrs...)) }
func (s *Session) UnselectAttr(attrs ...string) error { return s.Dispatch(UnselectAttr(attrs...)) }
func (s *Session) SelectAll() error                   { return s.Dispatch(SelectAll()) }
func (s *Session) ClearAll() error                    { return s.Dispatch(ClearAll()) }
func (s *Session) ClearFilter() error                 { return s.Dispatch(ClearFilter()) }
func (s *Session) ApplyGroup(field string) error      { return s.Dispatch(ApplyGroup(field)) }
func (s *Session) ClearGroup() error                  { return s.Dispatch(ClearGroup()) }

func (s *Session) SetChart(kind chart.Kind, field string) error {
	return s.Dispatch(SetChart(kind, field))
}

// Init loads the table list and relations.
func (s *Session) Init(ctx context.Context) error {
	var tables []string
	var rels []source.Relation
	before := s.fallbacks()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tables, err = s.src.ListTables(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rels, err = s.src.GetRelations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load tables: %w", err)
	}

	degraded := s.fallbacks() > before
	return s.Dispatch(Command{Name: "init", Apply: func(st State) (State, error) {
		st.Tables = tables
		st.Relations = rels
		st.Degraded = degraded
		return st, nil
	}})
}

// Fetch identifies one in-flight table load.
type Fetch struct {
	Table      string
	Generation uint64
}

// Loaded is the result of running a Fetch.
type Loaded struct {
	Fetch
	Columns  []source.Column
	Rows     []record.Record
	Degraded bool
}

// Begin starts a load of table. Any fetch begun earlier becomes stale.
func (s *Session) Begin(table string) (Fetch, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return Fetch{}, apperr.Invalid("table", "table name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return Fetch{Table: table, Generation: s.gen}, nil
}

// Run fetches the schema and rows of f.Table concurrently.
func (s *Session) Run(ctx context.Context, f Fetch) (Loaded, error) {
	l := Loaded{Fetch: f}
	before := s.fallbacks()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		l.Columns, err = s.src.GetSchema(gctx, f.Table)
		return err
	})
	g.Go(func() error {
		var err error
		l.Rows, err = s.src.GetRows(gctx, f.Table)
		return err
	})
	if err := g.Wait(); err != nil {
		return Loaded{}, fmt.Errorf("failed to load %s: %w", f.Table, err)
	}
	l.Degraded = s.fallbacks() > before
	return l, nil
}

// Commit installs l as the current table with a fresh selection. It reports
// false, leaving the state alone, when a newer fetch has begun since l's.
func (s *Session) Commit(l Loaded) bool {
	return s.commit(l, func(st State) State {
		st.Selection = selection.New(source.ColumnNames(l.Columns))
		st.Filter, st.Filtered = nil, nil
		st.GroupField, st.Groups = "", nil
		st.ChartField = ""
		return st
	})
}

func (s *Session) commit(l Loaded, shape func(State) State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.Generation != s.gen {
		s.logger.Debug().
			Str("table", l.Table).
			Uint64("generation", l.Generation).
			Uint64("current", s.gen).
			Msg("discarding stale fetch")
		return false
	}

	st := s.state
	st.Table = l.Table
	st.Columns = l.Columns
	st.Rows = l.Rows
	st.Generation = l.Generation
	st.Degraded = l.Degraded
	s.state = shape(st)
	return true
}

// SelectTable loads table and makes it current with nothing selected.
func (s *Session) SelectTable(ctx context.Context, table string) error {
	f, err := s.Begin(table)
	if err != nil {
		return err
	}
	l, err := s.Run(ctx, f)
	if err != nil {
		return err
	}
	s.Commit(l)
	return nil
}

// ApplyFilter installs spec as the active filter.
func (s *Session) ApplyFilter(spec filter.Spec) error {
	return s.Dispatch(ApplyFilter(spec))
}

// Refresh reloads the current table. The selection and filter carry over;
// a grouping survives when the new rows still have something to group.
func (s *Session) Refresh(ctx context.Context) error {
	table := s.State().Table
	if table == "" {
		return apperr.Invalid("table", "no table selected")
	}
	f, err := s.Begin(table)
	if err != nil {
		return err
	}
	l, err := s.Run(ctx, f)
	if err != nil {
		return err
	}
	s.commit(l, func(st State) State {
		st.Selection = selection.WithSelected(source.ColumnNames(l.Columns), st.Selection.Selected())
		return reapply(st)
	})
	return nil
}

// fallbacks counts the calls the source answered from its fallback so far.
func (s *Session) fallbacks() uint64 {
	if r, ok := s.src.(interface{ Fallbacks() uint64 }); ok {
		return r.Fallbacks()
	}
	return 0
}
