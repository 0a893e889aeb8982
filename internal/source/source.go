// Package source retrieves table lists, schemas, rows, and relations from the
// systems tabula explores.
package source

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aidanlsb/tabula/internal/record"
)

// Source is a read-only provider of tables and their records.
// Any call may fail; see Resilient for the degraded-mode wrapper.
type Source interface {
	ListTables(ctx context.Context) ([]string, error)
	GetSchema(ctx context.Context, table string) ([]Column, error)
	GetRows(ctx context.Context, table string) ([]record.Record, error)
	GetRelations(ctx context.Context) ([]Relation, error)
}

// Column describes one schema entry.
type Column struct {
	Name string `json:"column_name"`
	Type string `json:"data_type,omitempty"`
}

// UnmarshalJSON accepts both {"column_name": ...} and {"name": ...} shapes.
func (c *Column) UnmarshalJSON(data []byte) error {
	var raw struct {
		ColumnName string `json:"column_name"`
		Name       string `json:"name"`
		DataType   string `json:"data_type"`
		Type       string `json:"type"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Name = raw.ColumnName
	if c.Name == "" {
		c.Name = raw.Name
	}
	c.Type = raw.DataType
	if c.Type == "" {
		c.Type = raw.Type
	}
	return nil
}

// ColumnNames returns the names of cols in order.
func ColumnNames(cols []Column) []string {
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return names
}

// Relation is a foreign-key link from ForeignTable.ForeignColumn to
// PrimaryTable.PrimaryColumn.
type Relation struct {
	PrimaryTable  string `json:"primary_table" db:"primary_table"`
	PrimaryColumn string `json:"primary_column" db:"primary_column"`
	ForeignTable  string `json:"foreign_table" db:"foreign_table"`
	ForeignColumn string `json:"foreign_column" db:"foreign_column"`
}

// Describe renders the relation from table's point of view:
// "→ Orders (CustomerId)" for outgoing links, "← Customers (CustomerId)" for
// incoming ones.
func (r Relation) Describe(table string) string {
	if r.PrimaryTable == table {
		return fmt.Sprintf("→ %s (%s)", r.ForeignTable, r.ForeignColumn)
	}
	return fmt.Sprintf("← %s (%s)", r.PrimaryTable, r.PrimaryColumn)
}

// RelationsFor returns the relations that touch table.
func RelationsFor(rels []Relation, table string) []Relation {
	var out []Relation
	for _, r := range rels {
		if r.PrimaryTable == table || r.ForeignTable == table {
			out = append(out, r)
		}
	}
	return out
}
