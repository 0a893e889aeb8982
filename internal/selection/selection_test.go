package selection

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var schema = []string{"CustomerId", "CompanyName", "City", "Country"}

func assertPartition(t *testing.T, s Selection, want []string) {
	t.Helper()
	union := append(s.Available(), s.Selected()...)
	sort.Strings(union)
	expected := append([]string(nil), want...)
	sort.Strings(expected)
	assert.Equal(t, expected, union, "available ∪ selected must equal the schema")
	for _, a := range s.Selected() {
		assert.NotContains(t, s.Available(), a)
	}
}

func TestSelectAndUnselect(t *testing.T) {
	s := New(schema)
	assert.Empty(t, s.Selected())

	s, err := s.Select("City")
	require.NoError(t, err)
	s, err = s.Select("CustomerId")
	require.NoError(t, err)

	assert.Equal(t, []string{"City", "CustomerId"}, s.Selected())
	assert.Equal(t, []string{"CompanyName", "Country"}, s.Available())
	assertPartition(t, s, schema)

	s, err = s.Unselect("City")
	require.NoError(t, err)
	assert.Equal(t, []string{"CustomerId"}, s.Selected())
	assert.Equal(t, []string{"CompanyName", "Country", "City"}, s.Available())
	assertPartition(t, s, schema)
}

func TestSelectRejectsUnknownOrSelected(t *testing.T) {
	s := New(schema)
	s, err := s.Select("City")
	require.NoError(t, err)

	_, err = s.Select("City")
	assert.True(t, errors.Is(err, ErrNotAvailable))

	_, err = s.Select("Nope")
	assert.True(t, errors.Is(err, ErrNotAvailable))

	_, err = s.Unselect("Country")
	assert.True(t, errors.Is(err, ErrNotSelected))

	// failed calls leave s as it was
	assert.Equal(t, []string{"City"}, s.Selected())
}

func TestSelectAllAndClearAll(t *testing.T) {
	s, _ := New(schema).Select("Country")

	all := s.SelectAll()
	assert.Equal(t, []string{"Country", "CustomerId", "CompanyName", "City"}, all.Selected())
	assert.Empty(t, all.Available())
	assertPartition(t, all, schema)

	none := all.ClearAll()
	assert.Empty(t, none.Selected())
	assert.Equal(t, []string{"Country", "CustomerId", "CompanyName", "City"}, none.Available())
	assertPartition(t, none, schema)

	// the receiver is unchanged
	assert.Equal(t, []string{"Country"}, s.Selected())
}

func TestWithSelectedKeepsMissingColumns(t *testing.T) {
	s := WithSelected(schema, []string{"City", "Region", "City"})

	assert.Equal(t, []string{"City", "Region"}, s.Selected())
	assert.Equal(t, []string{"CustomerId", "CompanyName", "Country"}, s.Available())
	assert.True(t, s.IsSelected("Region"))
}
