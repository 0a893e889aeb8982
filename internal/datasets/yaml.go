package datasets

import (
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"
)

type yamlDocument struct {
	Datasets []Definition `yaml:"datasets"`
}

// ExportYAML writes every definition as a YAML document.
func (s *Store) ExportYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlDocument{Datasets: s.List()}); err != nil {
		return fmt.Errorf("failed to encode datasets: %w", err)
	}
	return enc.Close()
}

// ImportYAML reads definitions written by ExportYAML and saves each one as a
// new definition with a fresh ID and timestamp. Either every definition is
// imported or none is.
func (s *Store) ImportYAML(r io.Reader) ([]Definition, error) {
	var doc yamlDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse datasets: %w", err)
	}

	before := slices.Clone(s.defs)
	imported := make([]Definition, 0, len(doc.Datasets))
	for _, d := range doc.Datasets {
		created, err := s.Create(d.Name, d.Table, d.Attributes)
		if err != nil {
			if rollbackErr := s.save(before); rollbackErr == nil {
				s.defs = before
			}
			return nil, fmt.Errorf("dataset %q: %w", d.Name, err)
		}
		imported = append(imported, created)
	}
	return imported, nil
}
