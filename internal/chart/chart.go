// Package chart reduces a view to an ordered label/value series ready for
// drawing.
package chart

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aidanlsb/tabula/internal/aggregate"
	"github.com/aidanlsb/tabula/internal/apperr"
	"github.com/aidanlsb/tabula/internal/record"
)

// Kind selects the reduction applied to a distribution.
type Kind string

const (
	Pie Kind = "pie"
	Bar Kind = "bar"
)

const (
	// PieLimit is the number of buckets a pie keeps before merging the rest
	// into Other.
	PieLimit = 15
	// BarLimit is the number of buckets a bar chart keeps; the rest are dropped.
	BarLimit = 20
	// OtherLabel names the synthetic bucket holding a pie's excluded counts.
	OtherLabel = "Other"
)

// ParseKind validates a chart kind name.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Pie:
		return Pie, nil
	case Bar:
		return Bar, nil
	default:
		return "", apperr.Invalid("chart", "unknown chart type %q (expected pie or bar)", s)
	}
}

// Point is one bucket of a series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Series is an ordered list of buckets plus what produced them.
type Series struct {
	Kind    Kind    `json:"kind"`
	Field   string  `json:"field"`
	Grouped bool    `json:"grouped,omitempty"`
	Points  []Point `json:"points"`
}

// Total sums every bucket, including Other.
func (s Series) Total() float64 {
	var total float64
	for _, p := range s.Points {
		total += p.Value
	}
	return total
}

// Labels returns the bucket labels in order.
func (s Series) Labels() []string {
	out := make([]string, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Label
	}
	return out
}

// Values returns the bucket values in order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Title is the heading shown above a drawn series.
func (s Series) Title() string {
	if s.Grouped {
		return fmt.Sprintf("Count by %s", s.Field)
	}
	return fmt.Sprintf("Distribution of %s", s.Field)
}

// Distribution counts records per value of field and keeps the largest
// buckets. Ties keep first-encounter order. A pie folds everything past
// PieLimit into one Other bucket; a bar chart drops everything past BarLimit.
func Distribution(records []record.Record, field string, kind Kind) Series {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, r := range records {
		key := aggregate.KeyFor(r, field)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	limit := BarLimit
	if kind == Pie {
		limit = PieLimit
	}

	kept := order
	if len(kept) > limit {
		kept = order[:limit]
	}

	points := make([]Point, 0, len(kept)+1)
	for _, label := range kept {
		points = append(points, Point{Label: label, Value: float64(counts[label])})
	}

	if kind == Pie && len(order) > limit {
		other := 0
		for _, label := range order[limit:] {
			other += counts[label]
		}
		points = append(points, Point{Label: OtherLabel, Value: float64(other)})
	}

	return Series{Kind: kind, Field: field, Points: points}
}

// GroupedCounts turns grouped records into (key, count) buckets in grouping
// order, without truncation.
func GroupedCounts(groups []aggregate.GroupedRecord, kind Kind) Series {
	s := Series{Kind: kind, Grouped: true, Points: make([]Point, 0, len(groups))}
	for _, g := range groups {
		s.Field = g.Field
		s.Points = append(s.Points, Point{Label: g.Key, Value: float64(g.Count)})
	}
	return s
}
