package source

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidanlsb/tabula/internal/apperr"
	"github.com/aidanlsb/tabula/internal/record"
)

func quietLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func TestColumnUnmarshal(t *testing.T) {
	var cols []Column
	require.NoError(t, json.Unmarshal([]byte(`[{"column_name":"City","data_type":"nvarchar"},{"name":"Country","type":"text"}]`), &cols))
	assert.Equal(t, []Column{{Name: "City", Type: "nvarchar"}, {Name: "Country", Type: "text"}}, cols)
	assert.Equal(t, []string{"City", "Country"}, ColumnNames(cols))
}

func TestRelationsFor(t *testing.T) {
	rels, err := Sample{}.GetRelations(context.Background())
	require.NoError(t, err)

	customers := RelationsFor(rels, "Customers")
	require.Len(t, customers, 1)
	assert.Equal(t, "→ Orders (CustomerId)", customers[0].Describe("Customers"))

	orders := RelationsFor(rels, "Orders")
	require.Len(t, orders, 1)
	assert.Equal(t, "← Customers (CustomerId)", orders[0].Describe("Orders"))

	assert.Empty(t, RelationsFor(rels, "Employees"))
}

func TestHTTPSource(t *testing.T) {
	mux := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/database/tables":
			_, _ = w.Write([]byte(`["Customers","Order Details"]`))
		case "/api/database/schema/Customers":
			_, _ = w.Write([]byte(`[{"column_name":"CustomerId"},{"column_name":"City"}]`))
		case "/api/database/data/Order Details":
			_, _ = w.Write([]byte(`[{"OrderId":10248,"ProductId":11,"Discount":null}]`))
		case "/api/database/primary-keys":
			_, _ = w.Write([]byte(`[{"primary_table":"Customers","primary_column":"CustomerId","foreign_table":"Orders","foreign_column":"CustomerId"}]`))
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/", srv.Client())
	ctx := context.Background()

	tables, err := src.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Customers", "Order Details"}, tables)

	cols, err := src.GetSchema(ctx, "Customers")
	require.NoError(t, err)
	assert.Equal(t, []string{"CustomerId", "City"}, ColumnNames(cols))

	rows, err := src.GetRows(ctx, "Order Details")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"OrderId", "ProductId", "Discount"}, rows[0].Keys())
	assert.Equal(t, "10248", rows[0].Get("OrderId").String())
	assert.True(t, rows[0].Get("Discount").IsNull())

	rels, err := src.GetRelations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Relation{{PrimaryTable: "Customers", PrimaryColumn: "CustomerId", ForeignTable: "Orders", ForeignColumn: "CustomerId"}}, rels)
}

func TestHTTPSourceStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, srv.Client()).ListTables(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestSQLiteSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE Customers (CustomerId TEXT PRIMARY KEY, City TEXT);
		CREATE TABLE Orders (OrderId INTEGER PRIMARY KEY, CustomerId TEXT REFERENCES Customers(CustomerId), Freight REAL);
		INSERT INTO Customers VALUES ('ALFKI', 'Berlin'), ('ANATR', NULL);
		INSERT INTO Orders VALUES (10248, 'ALFKI', 32.38);
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	src, err := OpenSQLite(path)
	require.NoError(t, err)
	defer src.Close()
	ctx := context.Background()

	tables, err := src.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Customers", "Orders"}, tables)

	cols, err := src.GetSchema(ctx, "Orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"OrderId", "CustomerId", "Freight"}, ColumnNames(cols))
	assert.Equal(t, "INTEGER", cols[0].Type)

	_, err = src.GetSchema(ctx, "Missing")
	require.Error(t, err)

	rows, err := src.GetRows(ctx, "Customers")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Berlin", rows[0].Get("City").String())
	assert.True(t, rows[1].Get("City").IsNull())

	orders, err := src.GetRows(ctx, "Orders")
	require.NoError(t, err)
	f, ok := orders[0].Get("Freight").Float()
	require.True(t, ok)
	assert.InDelta(t, 32.38, f, 1e-9)

	rels, err := src.GetRelations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Relation{{PrimaryTable: "Customers", PrimaryColumn: "CustomerId", ForeignTable: "Orders", ForeignColumn: "CustomerId"}}, rels)
}

func TestSampleIsDeterministic(t *testing.T) {
	ctx := context.Background()
	tables, err := Sample{}.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Customers", "Orders", "Products", "Employees"}, tables)

	cols, err := Sample{}.GetSchema(ctx, "Employees")
	require.NoError(t, err)
	assert.Equal(t, []string{"Field1", "Field2", "Field3", "Field4", "Field5"}, ColumnNames(cols))

	for _, table := range tables {
		a, err := Sample{}.GetRows(ctx, table)
		require.NoError(t, err)
		b, err := Sample{}.GetRows(ctx, table)
		require.NoError(t, err)
		require.Len(t, a, 3)
		for i := range a {
			assert.True(t, a[i].Equal(b[i]), "%s row %d", table, i)
		}

		schema, err := Sample{}.GetSchema(ctx, table)
		require.NoError(t, err)
		assert.Equal(t, ColumnNames(schema), a[0].Keys(), table)
	}

	products, _ := Sample{}.GetRows(ctx, "Products")
	assert.Equal(t, "18", products[0].Get("UnitPrice").String())
}

type brokenSource struct{}

var errDown = errors.New("connection refused")

func (brokenSource) ListTables(context.Context) ([]string, error) { return nil, errDown }
func (brokenSource) GetSchema(context.Context, string) ([]Column, error) {
	return nil, errDown
}
func (brokenSource) GetRows(context.Context, string) ([]record.Record, error) {
	return nil, errDown
}
func (brokenSource) GetRelations(context.Context) ([]Relation, error) { return nil, errDown }

func TestResilientFallsBack(t *testing.T) {
	r := NewResilient(brokenSource{}, nil, quietLogger())
	ctx := context.Background()

	tables, err := r.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Customers", "Orders", "Products", "Employees"}, tables)
	assert.True(t, r.Degraded())

	rows, err := r.GetRows(ctx, "Customers")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestResilientRecovers(t *testing.T) {
	primary := &toggleSource{}
	r := NewResilient(primary, Sample{}, quietLogger())
	ctx := context.Background()

	primary.down = true
	_, err := r.ListTables(ctx)
	require.NoError(t, err)
	assert.True(t, r.Degraded())

	primary.down = false
	tables, err := r.ListTables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Live"}, tables)
	assert.False(t, r.Degraded())
}

func TestResilientBothFail(t *testing.T) {
	r := NewResilient(brokenSource{}, brokenSource{}, quietLogger())
	_, err := r.GetSchema(context.Background(), "Customers")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrSourceUnavailable))
	assert.True(t, errors.Is(err, errDown))
}

type toggleSource struct {
	Sample
	down bool
}

func (s *toggleSource) ListTables(ctx context.Context) ([]string, error) {
	if s.down {
		return nil, errDown
	}
	return []string{"Live"}, nil
}
