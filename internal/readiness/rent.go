package readiness

import "strings"

// DefaultMedianRent is the monthly median used for suburbs missing from the dataset.
const DefaultMedianRent = 2500.0

// RentLookup resolves the reference monthly median rent for a suburb.
type RentLookup interface {
	MedianRent(suburb string) float64
}

// RentTable is an in-memory suburb dataset. Suburb names match case-insensitively.
type RentTable struct {
	medians map[string]float64
	def     float64
}

// NewRentTable builds a table. A non-positive def falls back to DefaultMedianRent.
func NewRentTable(medians map[string]float64, def float64) *RentTable {
	if def <= 0 {
		def = DefaultMedianRent
	}
	t := &RentTable{medians: make(map[string]float64, len(medians)), def: def}
	for suburb, median := range medians {
		if median > 0 {
			t.medians[suburbKey(suburb)] = median
		}
	}
	return t
}

func (t *RentTable) MedianRent(suburb string) float64 {
	if m, ok := t.medians[suburbKey(suburb)]; ok {
		return m
	}
	return t.def
}

// Merge returns a copy of t with overrides applied on top.
func (t *RentTable) Merge(overrides map[string]float64) *RentTable {
	out := NewRentTable(t.medians, t.def)
	for suburb, median := range overrides {
		if median > 0 {
			out.medians[suburbKey(suburb)] = median
		}
	}
	return out
}

// Len is the number of suburbs with an explicit median.
func (t *RentTable) Len() int {
	return len(t.medians)
}

func suburbKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
