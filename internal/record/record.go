package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one row: an ordered mapping from column name to Value.
//
// Records are treated as immutable once they enter the pipeline; Set is only
// used while a record is being built.
type Record struct {
	keys []string
	vals map[string]Value
}

// Of builds a record from alternating key/value arguments. Values are
// converted with FromAny.
func Of(pairs ...any) Record {
	if len(pairs)%2 != 0 {
		panic("record.Of: odd number of arguments")
	}
	var r Record
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("record.Of: key %v is not a string", pairs[i]))
		}
		r.Set(key, FromAny(pairs[i+1]))
	}
	return r
}

// Len returns the number of columns in r.
func (r Record) Len() int { return len(r.keys) }

// Keys returns the column names in insertion order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Lookup returns the value for key and whether the key is present.
func (r Record) Lookup(key string) (Value, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Get returns the value for key, or null when absent.
func (r Record) Get(key string) Value {
	return r.vals[key]
}

// Has reports whether key is present (a present key may still hold null).
func (r Record) Has(key string) bool {
	_, ok := r.vals[key]
	return ok
}

// Set assigns key. New keys are appended to the key order.
func (r *Record) Set(key string, v Value) {
	if r.vals == nil {
		r.vals = make(map[string]Value)
	}
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := Record{keys: r.Keys(), vals: make(map[string]Value, len(r.vals))}
	for k, v := range r.vals {
		out.vals[k] = v
	}
	return out
}

// Equal reports whether both records hold the same keys in the same order
// with equal values.
func (r Record) Equal(o Record) bool {
	if len(r.keys) != len(o.keys) {
		return false
	}
	for i, k := range r.keys {
		if o.keys[i] != k || !r.vals[k].Equal(o.vals[k]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes r as a JSON object preserving key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := r.vals[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the order its keys appear in.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("record: expected object, got %v", tok)
	}

	*r = Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("record: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("record: field %q: %w", key, err)
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("record: field %q: %w", key, err)
		}
		r.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
