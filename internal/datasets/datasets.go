// Package datasets persists named (table, attribute list) definitions so a
// selection can be reloaded later.
package datasets

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog"

	"github.com/aidanlsb/tabula/internal/apperr"
	"github.com/aidanlsb/tabula/internal/kv"
)

// Key is the fixed namespace the definition list is stored under.
const Key = "datasets"

// Definition is a saved selection. It never changes after creation.
type Definition struct {
	ID         int64     `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Table      string    `json:"table" yaml:"table"`
	Attributes []string  `json:"attributes" yaml:"attributes"`
	CreatedAt  time.Time `json:"createdAt" yaml:"created_at"`
}

// Slug returns the URL-safe handle derived from the definition name.
func (d Definition) Slug() string {
	return slug.Make(d.Name)
}

// Store holds the definition list in memory and rewrites it in full on every
// change.
type Store struct {
	kv     kv.Store
	defs   []Definition
	logger zerolog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for IDs and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads the definition list from store. An unreadable payload is logged
// and treated as an empty list.
func Open(store kv.Store, logger zerolog.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		kv:     store,
		logger: logger.With().Str("component", "datasets").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	data, ok, err := store.Get(Key)
	if err != nil {
		return nil, fmt.Errorf("failed to load saved datasets: %w", err)
	}
	if !ok || len(strings.TrimSpace(string(data))) == 0 {
		return s, nil
	}

	var defs []Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		s.logger.Warn().Err(fmt.Errorf("%w: %v", apperr.ErrCorrupt, err)).
			Msg("ignoring unreadable saved datasets")
		return s, nil
	}
	s.defs = defs
	return s, nil
}

// List returns every definition in creation order.
func (s *Store) List() []Definition {
	return slices.Clone(s.defs)
}

// Get returns the definition with id.
func (s *Store) Get(id int64) (Definition, bool) {
	for _, d := range s.defs {
		if d.ID == id {
			return d, true
		}
	}
	return Definition{}, false
}

// Resolve finds a definition by numeric ID or by the slug of its name.
func (s *Store) Resolve(ref string) (Definition, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if d, ok := s.Get(id); ok {
			return d, nil
		}
	}
	want := slug.Make(ref)
	for _, d := range s.defs {
		if d.Slug() == want {
			return d, nil
		}
	}
	return Definition{}, fmt.Errorf("dataset %q: %w", ref, apperr.ErrNotFound)
}

// Create validates and saves a new definition. The list is persisted before
// Create returns; if that fails nothing is added.
func (s *Store) Create(name, table string, attrs []string) (Definition, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return Definition{}, apperr.Invalid("name", "enter a name for this dataset")
	case strings.TrimSpace(table) == "":
		return Definition{}, apperr.Invalid("table", "select a table first")
	case len(attrs) == 0:
		return Definition{}, apperr.Invalid("attributes", "select at least one attribute first")
	}

	now := s.now()
	d := Definition{
		ID:         s.nextID(now),
		Name:       name,
		Table:      table,
		Attributes: slices.Clone(attrs),
		CreatedAt:  now.UTC(),
	}

	next := append(slices.Clone(s.defs), d)
	if err := s.save(next); err != nil {
		return Definition{}, err
	}
	s.defs = next
	s.logger.Debug().Int64("id", d.ID).Str("name", d.Name).Msg("dataset saved")
	return d, nil
}

// nextID returns the creation time in milliseconds, bumped past the largest
// existing ID so IDs stay strictly increasing.
func (s *Store) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	for _, d := range s.defs {
		if d.ID >= id {
			id = d.ID + 1
		}
	}
	return id
}

// Delete removes the definition with id. Deleting an unknown ID is a no-op
// and reports false.
func (s *Store) Delete(id int64) (bool, error) {
	i := slices.IndexFunc(s.defs, func(d Definition) bool { return d.ID == id })
	if i < 0 {
		return false, nil
	}
	next := slices.Delete(slices.Clone(s.defs), i, i+1)
	if err := s.save(next); err != nil {
		return false, err
	}
	s.defs = next
	return true, nil
}

func (s *Store) save(defs []Definition) error {
	if defs == nil {
		defs = []Definition{}
	}
	data, err := json.Marshal(defs)
	if err != nil {
		return fmt.Errorf("failed to marshal datasets: %w", err)
	}
	if err := s.kv.Put(Key, data); err != nil {
		return fmt.Errorf("failed to save datasets: %w", err)
	}
	return nil
}
