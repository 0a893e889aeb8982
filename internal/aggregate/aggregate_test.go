package aggregate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidanlsb/tabula/internal/apperr"
	"github.com/aidanlsb/tabula/internal/record"
)

func TestGroupScenario(t *testing.T) {
	rows := []record.Record{
		record.Of("Country", "DE", "Amount", 10),
		record.Of("Country", "DE", "Amount", 20),
		record.Of("Country", "FR", "Amount", 5),
	}

	groups, err := Group(rows, "Country", []string{"Country", "Amount"})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	de := groups[0]
	assert.Equal(t, "DE", de.Key)
	assert.Equal(t, 2, de.Count)
	s, ok := de.Summary("Amount")
	require.True(t, ok)
	assert.Equal(t, 30.0, s.Sum)
	assert.Equal(t, 15.0, s.Avg)
	assert.Equal(t, 10.0, s.Min)
	assert.Equal(t, 20.0, s.Max)

	fr := groups[1]
	assert.Equal(t, "FR", fr.Key)
	assert.Equal(t, 1, fr.Count)
	s, ok = fr.Summary("Amount")
	require.True(t, ok)
	assert.Equal(t, Summary{Attr: "Amount", Sum: 5, Avg: 5, Min: 5, Max: 5, N: 1}, s)

	assert.Equal(t,
		[]string{"Country", "count", "sum_Amount", "avg_Amount", "min_Amount", "max_Amount"},
		de.Record().Keys())
}

func TestGroupFirstAppearanceOrderAndUnknown(t *testing.T) {
	rows := []record.Record{
		record.Of("City", "Paris"),
		record.Of("City", nil),
		record.Of("City", "Berlin"),
		record.Of("Other", 1),
		record.Of("City", "Paris"),
	}

	groups, err := Group(rows, "City", []string{"City"})
	require.NoError(t, err)

	var keys []string
	for _, g := range groups {
		keys = append(keys, g.Key)
	}
	assert.Equal(t, []string{"Paris", Unknown, "Berlin"}, keys)
	assert.Equal(t, 2, groups[1].Count)
}

func TestGroupOmitsNonNumericAttributes(t *testing.T) {
	rows := []record.Record{
		record.Of("Country", "DE", "Name", "Alfreds", "Amount", "n/a"),
		record.Of("Country", "DE", "Name", "Blauer", "Amount", "7"),
		record.Of("Country", "FR", "Name", "Bon app'", "Amount", nil),
	}

	groups, err := Group(rows, "Country", []string{"Name", "Amount", "Country"})
	require.NoError(t, err)

	_, ok := groups[0].Summary("Name")
	assert.False(t, ok)
	amount, ok := groups[0].Summary("Amount")
	require.True(t, ok)
	assert.Equal(t, 7.0, amount.Sum)
	assert.Equal(t, 1, amount.N)

	assert.Empty(t, groups[1].Summaries)
	assert.Equal(t, []string{"Country", "count"}, groups[1].Record().Keys())

	assert.Equal(t,
		[]string{"Country", "count", "sum_Amount", "avg_Amount", "min_Amount", "max_Amount"},
		Columns(groups, "Country"))
}

func TestGroupEmptyInput(t *testing.T) {
	_, err := Group(nil, "Country", []string{"Country"})
	assert.True(t, errors.Is(err, apperr.ErrEmptyResult))

	_, err = Group([]record.Record{record.Of("a", 1)}, "", nil)
	assert.True(t, apperr.IsValidation(err))
}

func TestGroupInvariants(t *testing.T) {
	var rows []record.Record
	for i := 0; i < 200; i++ {
		rows = append(rows, record.Of(
			"Bucket", fmt.Sprintf("b%d", i%7),
			"Price", float64(i%13)*1.25-3,
			"Qty", i%5,
		))
	}

	groups, err := Group(rows, "Bucket", []string{"Bucket", "Price", "Qty"})
	require.NoError(t, err)

	total := 0
	for _, g := range groups {
		total += g.Count
		for _, s := range g.Summaries {
			assert.LessOrEqual(t, s.Min, s.Avg)
			assert.LessOrEqual(t, s.Avg, s.Max)
			assert.InDelta(t, s.Sum, s.Avg*float64(s.N), 1e-9)
			assert.Equal(t, g.Count, s.N)
		}
	}
	assert.Equal(t, len(rows), total)
}
