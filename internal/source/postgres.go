package source

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aidanlsb/tabula/internal/record"
)

// PostgresSource reads the tables of the current schema of a PostgreSQL
// database.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to the database described by dsn.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresSource, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &PostgresSource{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresSource) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresSource) ListTables(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	tables, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

func (s *PostgresSource) GetSchema(ctx context.Context, table string) ([]Column, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT column_name, data_type FROM information_schema.columns
		WHERE table_schema = current_schema() AND table_name = $1
		ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", table, err)
	}
	cols, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Column, error) {
		var c Column
		err := row.Scan(&c.Name, &c.Type)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("schema %s: no such table", table)
	}
	return cols, nil
}

func (s *PostgresSource) GetRows(ctx context.Context, table string) ([]record.Record, error) {
	rows, err := s.pool.Query(ctx, "SELECT * FROM "+pgx.Identifier{table}.Sanitize())
	if err != nil {
		return nil, fmt.Errorf("rows %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []record.Record
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("rows %s: %w", table, err)
		}
		var r record.Record
		for i, f := range fields {
			r.Set(f.Name, pgValue(vals[i]))
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows %s: %w", table, err)
	}
	return out, nil
}

func (s *PostgresSource) GetRelations(ctx context.Context) ([]Relation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ccu.table_name  AS primary_table,
		       ccu.column_name AS primary_column,
		       kcu.table_name  AS foreign_table,
		       kcu.column_name AS foreign_column
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON tc.constraint_name = ccu.constraint_name AND tc.table_schema = ccu.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = current_schema()
		ORDER BY kcu.table_name, kcu.column_name`)
	if err != nil {
		return nil, fmt.Errorf("relations: %w", err)
	}
	rels, err := pgx.CollectRows(rows, pgx.RowToStructByName[Relation])
	if err != nil {
		return nil, fmt.Errorf("relations: %w", err)
	}
	return rels, nil
}

// pgValue converts decoded pgx values that record.FromAny does not know about.
func pgValue(v any) record.Value {
	switch t := v.(type) {
	case pgtype.Numeric:
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return record.Null()
		}
		return record.Number(f.Float64)
	case [16]byte:
		return record.String(uuid.UUID(t).String())
	case pgtype.UUID:
		if !t.Valid {
			return record.Null()
		}
		return record.String(uuid.UUID(t.Bytes).String())
	default:
		return record.FromAny(v)
	}
}
