// Package filter evaluates a single-field predicate over records.
package filter

import (
	"fmt"
	"strings"

	"github.com/aidanlsb/tabula/internal/apperr"
	"github.com/aidanlsb/tabula/internal/record"
)

// Operator is a comparison applied between a record field and the spec value.
type Operator string

const (
	Equals   Operator = "equals"
	Contains Operator = "contains"
	Greater  Operator = "greater"
	Less     Operator = "less"
)

// Operators lists the supported operators in display order.
var Operators = []Operator{Equals, Contains, Greater, Less}

// ParseOperator maps user input to an Operator. Symbol aliases are accepted.
// Unrecognised input is returned as-is; Apply lets every record through for
// operators it does not know.
func ParseOperator(s string) Operator {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "equals", "eq", "=", "==":
		return Equals
	case "contains", "has", "~":
		return Contains
	case "greater", "gt", ">":
		return Greater
	case "less", "lt", "<":
		return Less
	default:
		return Operator(s)
	}
}

// Known reports whether op is one of the supported operators.
func (op Operator) Known() bool {
	switch op {
	case Equals, Contains, Greater, Less:
		return true
	}
	return false
}

// Spec is the active filter: one field, one operator, one value.
type Spec struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// String renders the spec in the field:operator:value form ParseExpr accepts.
func (s Spec) String() string {
	return fmt.Sprintf("%s:%s:%s", s.Field, s.Operator, s.Value)
}

// Validate checks that a field and a non-empty value were given.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Field) == "" {
		return apperr.Invalid("filter", "select a field to filter by")
	}
	if s.Value == "" {
		return apperr.Invalid("filter", "enter a value to filter by")
	}
	return nil
}

// ParseExpr parses "field:operator:value". The value may itself contain colons.
func ParseExpr(expr string) (Spec, error) {
	parts := strings.SplitN(expr, ":", 3)
	if len(parts) != 3 {
		return Spec{}, apperr.Invalid("filter", "expected field:operator:value, got %q", expr)
	}
	spec := Spec{
		Field:    strings.TrimSpace(parts[0]),
		Operator: ParseOperator(parts[1]),
		Value:    parts[2],
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// Match reports whether r passes the predicate.
func (s Spec) Match(r record.Record) bool {
	v, ok := r.Lookup(s.Field)
	if !ok || v.IsNull() {
		return false
	}

	cell := strings.ToLower(v.String())
	want := strings.ToLower(s.Value)

	switch s.Operator {
	case Equals:
		return cell == want
	case Contains:
		return strings.Contains(cell, want)
	case Greater, Less:
		a, okA := record.ParseFloat(cell)
		b, okB := record.ParseFloat(want)
		if !okA || !okB {
			return false
		}
		if s.Operator == Greater {
			return a > b
		}
		return a < b
	default:
		return true
	}
}

// Apply returns the records that pass spec, in input order.
// A nil spec returns records unchanged.
func Apply(records []record.Record, spec *Spec) []record.Record {
	if spec == nil {
		return records
	}
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if spec.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
