package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueFloat(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  float64
		ok    bool
	}{
		{"number", Number(18), 18, true},
		{"numeric string", String("15"), 15, true},
		{"leading prefix", String("15abc"), 15, true},
		{"padded", String("  -2.5e1 "), -25, true},
		{"fraction only", String(".5"), 0.5, true},
		{"empty", String(""), 0, false},
		{"word", String("abc"), 0, false},
		{"infinity text", String("Infinity"), 0, false},
		{"null", Null(), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.value.Float()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "18", Number(18.0).String())
	assert.Equal(t, "18.5", Number(18.5).String())
	assert.Equal(t, "", Null().String())
	assert.Equal(t, "Berlin", String("Berlin").String())
	assert.Equal(t, "true", FromAny(true).String())
}

func TestRecordJSONPreservesOrder(t *testing.T) {
	var r Record
	require.NoError(t, json.Unmarshal([]byte(`{"z":1,"a":"x","m":null,"n":{"k":1}}`), &r))

	assert.Equal(t, []string{"z", "a", "m", "n"}, r.Keys())
	assert.Equal(t, KindNumber, r.Get("z").Kind())
	assert.True(t, r.Get("m").IsNull())
	assert.True(t, r.Has("m"))
	assert.False(t, r.Has("missing"))
	assert.Equal(t, `{"k":1}`, r.Get("n").String())

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"x","m":null,"n":"{\"k\":1}"}`, string(out))
}

func TestRecordCloneIsIndependent(t *testing.T) {
	r := Of("City", "Berlin")
	c := r.Clone()
	c.Set("City", String("Paris"))
	c.Set("Country", String("FR"))

	assert.Equal(t, "Berlin", r.Get("City").String())
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 2, c.Len())
}
