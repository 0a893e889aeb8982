package datasets

import (
	"bytes"
	"errors"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidanlsb/tabula/internal/apperr"
	"github.com/aidanlsb/tabula/internal/kv"
)

var fixed = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func newStore(t *testing.T, store kv.Store) *Store {
	t.Helper()
	s, err := Open(store, zerolog.New(os.Stderr).Level(zerolog.Disabled), WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)
	return s
}

func TestCreateListDelete(t *testing.T) {
	mem := kv.NewMemStore()
	s := newStore(t, mem)

	a, err := s.Create("Customer cities", "Customers", []string{"City", "Country"})
	require.NoError(t, err)
	b, err := s.Create("Prices", "Products", []string{"ProductName", "UnitPrice"})
	require.NoError(t, err)

	assert.Equal(t, fixed.UnixMilli(), a.ID)
	assert.Greater(t, b.ID, a.ID, "IDs are strictly increasing even within one millisecond")
	assert.Equal(t, []Definition{a, b}, s.List())

	// persisted in full, reloadable by a fresh store
	reloaded := newStore(t, mem)
	assert.Equal(t, s.List(), reloaded.List())

	deleted, err := s.Delete(a.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []Definition{b}, s.List())

	deleted, err = s.Delete(12345)
	require.NoError(t, err)
	assert.False(t, deleted)

	reloaded = newStore(t, mem)
	assert.Equal(t, []Definition{b}, reloaded.List())
}

func TestCreateValidation(t *testing.T) {
	s := newStore(t, kv.NewMemStore())

	_, err := s.Create("  ", "Customers", []string{"City"})
	assert.True(t, apperr.IsValidation(err))
	_, err = s.Create("x", "", []string{"City"})
	assert.True(t, apperr.IsValidation(err))
	_, err = s.Create("x", "Customers", nil)
	assert.True(t, apperr.IsValidation(err))

	assert.Empty(t, s.List())
}

func TestCorruptPayloadIsEmpty(t *testing.T) {
	mem := kv.NewMemStore()
	require.NoError(t, mem.Put(Key, []byte(`{not json`)))

	s := newStore(t, mem)
	assert.Empty(t, s.List())

	_, err := s.Create("after", "Orders", []string{"OrderId"})
	require.NoError(t, err)
	assert.Len(t, newStore(t, mem).List(), 1)
}

type failingStore struct{ kv.Store }

func (failingStore) Put(string, []byte) error { return errors.New("disk full") }

func TestCreateDoesNotCommitWhenPersistFails(t *testing.T) {
	s := newStore(t, failingStore{kv.NewMemStore()})
	_, err := s.Create("x", "Orders", []string{"OrderId"})
	require.Error(t, err)
	assert.Empty(t, s.List())
}

func TestResolve(t *testing.T) {
	s := newStore(t, kv.NewMemStore())
	d, err := s.Create("Customer Cities", "Customers", []string{"City"})
	require.NoError(t, err)

	byID, err := s.Resolve(" " + strconv.FormatInt(d.ID, 10))
	require.NoError(t, err)
	assert.Equal(t, d, byID)

	bySlug, err := s.Resolve("customer-cities")
	require.NoError(t, err)
	assert.Equal(t, d, bySlug)

	byName, err := s.Resolve("Customer Cities")
	require.NoError(t, err)
	assert.Equal(t, d, byName)

	_, err = s.Resolve("nope")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestYAMLExportImport(t *testing.T) {
	src := newStore(t, kv.NewMemStore())
	_, err := src.Create("Cities", "Customers", []string{"City", "Country"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, src.ExportYAML(&buf))
	assert.Contains(t, buf.String(), "table: Customers")

	dst := newStore(t, kv.NewMemStore())
	imported, err := dst.ImportYAML(&buf)
	require.NoError(t, err)
	require.Len(t, imported, 1)
	assert.Equal(t, "Cities", imported[0].Name)
	assert.Equal(t, []string{"City", "Country"}, imported[0].Attributes)
}

func TestYAMLImportIsAllOrNothing(t *testing.T) {
	s := newStore(t, kv.NewMemStore())
	doc := `datasets:
  - name: good
    table: Orders
    attributes: [OrderId]
  - name: bad
    table: Orders
    attributes: []
`
	_, err := s.ImportYAML(strings.NewReader(doc))
	require.Error(t, err)
	assert.Empty(t, s.List())
}
