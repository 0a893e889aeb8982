package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/aidanlsb/tabula/internal/record"
)

// SQLiteSource reads tables straight from a SQLite database file.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens the database at path.
func OpenSQLite(path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// Close closes the database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

func (s *SQLiteSource) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_schema WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tables: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (s *SQLiteSource) GetSchema(ctx context.Context, table string) ([]Column, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, fmt.Errorf("schema %s: %w", table, err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("schema %s: no such table", table)
	}
	return cols, nil
}

func (s *SQLiteSource) GetRows(ctx context.Context, table string) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("rows %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("rows %s: %w", table, err)
	}

	var out []record.Record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("rows %s: %w", table, err)
		}
		var r record.Record
		for i, col := range cols {
			r.Set(col, record.FromAny(vals[i]))
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteSource) GetRelations(ctx context.Context) ([]Relation, error) {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	var rels []Relation
	for _, table := range tables {
		rows, err := s.db.QueryContext(ctx, `SELECT "table", "from", "to" FROM pragma_foreign_key_list(?)`, table)
		if err != nil {
			return nil, fmt.Errorf("relations %s: %w", table, err)
		}
		for rows.Next() {
			var primary, from string
			var to sql.NullString
			if err := rows.Scan(&primary, &from, &to); err != nil {
				rows.Close()
				return nil, fmt.Errorf("relations %s: %w", table, err)
			}
			// A reference without a column list targets the primary key; the
			// column usually shares the name.
			target := from
			if to.Valid && to.String != "" {
				target = to.String
			}
			rels = append(rels, Relation{
				PrimaryTable:  primary,
				PrimaryColumn: target,
				ForeignTable:  table,
				ForeignColumn: from,
			})
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return rels, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
