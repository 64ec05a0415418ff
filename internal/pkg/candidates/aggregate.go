package candidates

import (
	"sort"
	"strconv"
	"strings"
)

// Count is the size of one group
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// PairCount is the size of a two-column group
type PairCount struct {
	First  string `json:"first"`
	Second string `json:"second"`
	Count  int    `json:"count"`
}

// CountBy groups rows by a column and returns group sizes ordered by key.
// Rows with an empty key are dropped.
func (t *Table) CountBy(column string) []Count {
	counts := t.tally(column)
	out := make([]Count, 0, len(counts))
	for k, n := range counts {
		out = append(out, Count{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return lessKey(out[i].Key, out[j].Key)
	})
	return out
}

// ValueCounts returns group sizes ordered from the most frequent value down.
// Ties keep key order.
func (t *Table) ValueCounts(column string) []Count {
	out := t.CountBy(column)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// CountByPair groups rows by two columns, ordered by first then second key
func (t *Table) CountByPair(first, second string) []PairCount {
	fi, ok := t.index[first]
	if !ok {
		return nil
	}
	si, ok := t.index[second]
	if !ok {
		return nil
	}

	type pair struct{ a, b string }
	counts := make(map[pair]int)
	for _, row := range t.Rows {
		a, b := cell(row, fi), cell(row, si)
		if a == "" || b == "" {
			continue
		}
		counts[pair{a, b}]++
	}

	out := make([]PairCount, 0, len(counts))
	for p, n := range counts {
		out = append(out, PairCount{First: p.a, Second: p.b, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].First != out[j].First {
			return lessKey(out[i].First, out[j].First)
		}
		return lessKey(out[i].Second, out[j].Second)
	})
	return out
}

// Filter returns a table with the rows whose column equals value
func (t *Table) Filter(column, value string) *Table {
	filtered := NewTable(t.Name, t.Columns, nil)
	idx, ok := t.index[column]
	if !ok {
		return filtered
	}
	for _, row := range t.Rows {
		if SameCode(cell(row, idx), value) {
			filtered.Rows = append(filtered.Rows, row)
		}
	}
	return filtered
}

func (t *Table) tally(column string) map[string]int {
	counts := make(map[string]int)
	idx, ok := t.index[column]
	if !ok {
		return counts
	}
	for _, row := range t.Rows {
		if v := cell(row, idx); v != "" {
			counts[v]++
		}
	}
	return counts
}

// SameCode compares two cells numerically when both are integers, textually otherwise
func SameCode(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai == bi
	}
	return a == b
}

// lessKey orders integer codes numerically and everything else lexically
func lessKey(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	switch {
	case aerr == nil && berr == nil && ai != bi:
		return ai < bi
	case aerr == nil && berr == nil:
		return a < b
	case aerr == nil:
		return true
	case berr == nil:
		return false
	}
	return a < b
}
