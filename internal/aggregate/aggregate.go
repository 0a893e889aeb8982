// Package aggregate groups records by one field and computes per-group counts
// and numeric summaries.
package aggregate

import (
	"fmt"
	"strings"

	"github.com/aidanlsb/tabula/internal/apperr"
	"github.com/aidanlsb/tabula/internal/record"
)

// Unknown is the key used for records whose grouping field is missing or null.
const Unknown = "Unknown"

// CountColumn is the column name of the group size in a grouped record.
const CountColumn = "count"

// Aggregate prefixes, in the order they are emitted per attribute.
const (
	PrefixSum = "sum_"
	PrefixAvg = "avg_"
	PrefixMin = "min_"
	PrefixMax = "max_"
)

// Summary holds the numeric aggregates of one attribute within a group.
type Summary struct {
	Attr string
	Sum  float64
	Avg  float64
	Min  float64
	Max  float64
	N    int // members that parsed as numbers
}

// GroupedRecord is one group: its key, its size, and a Summary for every
// selected attribute that had at least one numeric member.
type GroupedRecord struct {
	Field     string
	Key       string
	Count     int
	Summaries []Summary
}

// KeyFor returns the grouping key of r for field.
func KeyFor(r record.Record, field string) string {
	v, ok := r.Lookup(field)
	if !ok || v.IsNull() {
		return Unknown
	}
	return v.String()
}

// Group partitions records by field. Groups come back in the order their key
// first appears; callers wanting another order sort downstream.
//
// Every attribute in selected other than field is summarised from the group
// members whose value parses as a finite number. Attributes with no numeric
// members get no summary at all.
func Group(records []record.Record, field string, selected []string) ([]GroupedRecord, error) {
	if strings.TrimSpace(field) == "" {
		return nil, apperr.Invalid("group", "select a field to group by")
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no data to group", apperr.ErrEmptyResult)
	}

	members := make(map[string][]record.Record)
	order := make([]string, 0)
	for _, r := range records {
		key := KeyFor(r, field)
		if _, seen := members[key]; !seen {
			order = append(order, key)
		}
		members[key] = append(members[key], r)
	}

	groups := make([]GroupedRecord, 0, len(order))
	for _, key := range order {
		rows := members[key]
		g := GroupedRecord{Field: field, Key: key, Count: len(rows)}
		for _, attr := range selected {
			if attr == field {
				continue
			}
			if s, ok := summarize(rows, attr); ok {
				g.Summaries = append(g.Summaries, s)
			}
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func summarize(rows []record.Record, attr string) (Summary, bool) {
	s := Summary{Attr: attr}
	for _, r := range rows {
		f, ok := r.Get(attr).Float()
		if !ok {
			continue
		}
		if s.N == 0 || f < s.Min {
			s.Min = f
		}
		if s.N == 0 || f > s.Max {
			s.Max = f
		}
		s.Sum += f
		s.N++
	}
	if s.N == 0 {
		return Summary{}, false
	}
	s.Avg = s.Sum / float64(s.N)
	return s, true
}

// Summary returns the summary for attr, if the group has one.
func (g GroupedRecord) Summary(attr string) (Summary, bool) {
	for _, s := range g.Summaries {
		if s.Attr == attr {
			return s, true
		}
	}
	return Summary{}, false
}

// Record renders g as a flat record:
// field, count, then sum_/avg_/min_/max_ for each summarised attribute.
func (g GroupedRecord) Record() record.Record {
	var r record.Record
	r.Set(g.Field, record.String(g.Key))
	r.Set(CountColumn, record.Number(float64(g.Count)))
	for _, s := range g.Summaries {
		r.Set(PrefixSum+s.Attr, record.Number(s.Sum))
		r.Set(PrefixAvg+s.Attr, record.Number(s.Avg))
		r.Set(PrefixMin+s.Attr, record.Number(s.Min))
		r.Set(PrefixMax+s.Attr, record.Number(s.Max))
	}
	return r
}

// Records renders every group with Record.
func Records(groups []GroupedRecord) []record.Record {
	out := make([]record.Record, len(groups))
	for i, g := range groups {
		out[i] = g.Record()
	}
	return out
}

// Columns returns the display columns for groups: the grouping field, count,
// then every aggregate column in the order it is first seen.
func Columns(groups []GroupedRecord, field string) []string {
	cols := []string{field, CountColumn}
	seen := map[string]bool{field: true, CountColumn: true}
	for _, g := range groups {
		for _, key := range g.Record().Keys() {
			if !seen[key] {
				seen[key] = true
				cols = append(cols, key)
			}
		}
	}
	return cols
}
