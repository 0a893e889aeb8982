package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/aidanlsb/tabula/internal/apperr"
	"github.com/aidanlsb/tabula/internal/datasets"
	"github.com/aidanlsb/tabula/internal/selection"
	"github.com/aidanlsb/tabula/internal/source"
)

var errNoDatasets = errors.New("dataset storage is not configured")

// DefaultDatasetName is the name offered when saving the current selection.
func DefaultDatasetName(table string) string {
	return table + "_dataset"
}

// SaveDataset stores the current table and selected attributes under name.
// An empty name falls back to DefaultDatasetName.
func (s *Session) SaveDataset(name string) (datasets.Definition, error) {
	if s.store == nil {
		return datasets.Definition{}, errNoDatasets
	}
	st := s.State()
	if st.Table == "" {
		return datasets.Definition{}, apperr.Invalid("table", "select a table first")
	}
	if name == "" {
		name = DefaultDatasetName(st.Table)
	}
	return s.store.Create(name, st.Table, st.Selection.Selected())
}

// Datasets lists the saved definitions.
func (s *Session) Datasets() []datasets.Definition {
	if s.store == nil {
		return nil
	}
	return s.store.List()
}

// LoadDataset makes the definition's table current and selects exactly its
// attributes, including any the table no longer has.
func (s *Session) LoadDataset(ctx context.Context, ref string) (datasets.Definition, error) {
	if s.store == nil {
		return datasets.Definition{}, errNoDatasets
	}
	def, err := s.store.Resolve(ref)
	if err != nil {
		return datasets.Definition{}, err
	}

	f, err := s.Begin(def.Table)
	if err != nil {
		return def, err
	}
	l, err := s.Run(ctx, f)
	if err != nil {
		return def, err
	}
	s.commit(l, func(st State) State {
		st.Selection = selection.WithSelected(source.ColumnNames(l.Columns), def.Attributes)
		st.Filter, st.Filtered = nil, nil
		st.GroupField, st.Groups = "", nil
		st.ChartField = ""
		return st
	})
	return def, nil
}

// DeleteDataset removes the definition ref names.
func (s *Session) DeleteDataset(ref string) (datasets.Definition, error) {
	if s.store == nil {
		return datasets.Definition{}, errNoDatasets
	}
	def, err := s.store.Resolve(ref)
	if err != nil {
		return datasets.Definition{}, err
	}
	if _, err := s.store.Delete(def.ID); err != nil {
		return def, fmt.Errorf("failed to delete dataset %d: %w", def.ID, err)
	}
	return def, nil
}
