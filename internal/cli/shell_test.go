package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runShell(t *testing.T, a *app, script string) string {
	t.Helper()
	var out bytes.Buffer
	sh := newShell(a, strings.NewReader(script), &out, false)
	require.NoError(t, sh.run(context.Background()))
	return out.String()
}

func TestShellExploresAndExports(t *testing.T) {
	dir := useTempConfig(t)
	a := newSampleApp(t)
	csvPath := filepath.Join(dir, "cities.csv")

	out := runShell(t, a, strings.Join([]string{
		"use Customers",
		"select CompanyName City",
		`filter City contains "méxico"`,
		"view",
		"export " + csvPath,
		"quit",
		"use Orders",
	}, "\n"))

	assert.Contains(t, out, "Customers")
	assert.Contains(t, out, "3 rows, 6 columns")
	assert.Contains(t, out, "→ Orders (CustomerId)")
	assert.Contains(t, out, "filter: City:contains:méxico")
	assert.Contains(t, out, "Exported 2 rows")

	content, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "CompanyName,City\nAna Trujillo Emparedados,México D.F.\nAntonio Moreno Taquería,México D.F.", string(content))

	assert.Equal(t, "Customers", a.session.State().Table, "commands after quit are not run")
}

func TestShellKeepsGoingAfterErrors(t *testing.T) {
	useTempConfig(t)
	a := newSampleApp(t)

	out := runShell(t, a, strings.Join([]string{
		"view",
		"use Customers",
		"select Fax",
		"group City",
		`use "Order Details`,
		"frobnicate",
		"all",
		"filter City like Berlin",
		"group City",
		"columns",
	}, "\n"))

	assert.Contains(t, out, "no table selected")
	assert.Contains(t, out, "attribute")
	assert.Contains(t, out, "unterminated")
	assert.Contains(t, out, `unknown command "frobnicate"`)
	assert.Contains(t, out, `unknown operator "like" keeps every row`)

	st := a.session.State()
	assert.Equal(t, "City", st.GroupField)
	assert.Len(t, st.Groups, 2)
	assert.Equal(t, 3, st.Groups[0].Count+st.Groups[1].Count)
}

func TestShellSelectIsAllOrNothing(t *testing.T) {
	useTempConfig(t)
	a := newSampleApp(t)

	out := runShell(t, a, "use Customers\nselect City Fax\n")
	assert.Contains(t, out, "attribute is not available: Fax")
	assert.Empty(t, a.session.State().Selection.Selected())

	runShell(t, a, "select City, Country\nunselect Country Phone\n")
	assert.Equal(t, []string{"City", "Country"}, a.session.State().Selection.Selected())
}

func TestShellDatasets(t *testing.T) {
	useTempConfig(t)
	a := newSampleApp(t)

	out := runShell(t, a, strings.Join([]string{
		"use Products",
		"select ProductName UnitPrice",
		"save cheap products",
		"none",
		"datasets",
		"load cheap-products",
		"chart bar UnitPrice",
	}, "\n"))

	assert.Contains(t, out, "Saved dataset")
	assert.Contains(t, out, "Products: ProductName, UnitPrice")
	assert.Contains(t, out, "Loaded")
	assert.Contains(t, out, "Distribution of UnitPrice (bar)")

	st := a.session.State()
	assert.Equal(t, []string{"ProductName", "UnitPrice"}, st.Selection.Selected())

	out = runShell(t, a, "delete cheap products\ndatasets\n")
	assert.Contains(t, out, "Deleted dataset")
	assert.Contains(t, out, "No saved datasets.")
}
