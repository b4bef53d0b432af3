// Package eval folds a query.Query's transformation pipeline over an
// in-memory row sequence and applies the terminal action.
package eval

import (
	"sort"
	"strings"

	"github.com/pivotql/pivotql/internal/perr"
	"github.com/pivotql/pivotql/internal/query"
	"github.com/pivotql/pivotql/internal/value"
)

// Run folds transforms over rows in order; each stage consumes the
// previous stage's sequence. meta is updated as columns are dropped or
// introduced so later stages (and the Metadata action) see the current
// column set. correctedMean gates ExpandBy's running mean:
// false reproduces a sum/count-by-value quirk, true is the arithmetic
// running mean.
func Run(rows []query.Row, meta query.Metadata, transforms []query.Transformation, correctedMean bool) ([]query.Row, query.Metadata, error) {
	var err error
	for _, t := range transforms {
		rows, meta, err = applyOne(rows, meta, t, correctedMean)
		if err != nil {
			return nil, nil, err
		}
	}
	return rows, meta, nil
}

func applyOne(rows []query.Row, meta query.Metadata, t query.Transformation, correctedMean bool) ([]query.Row, query.Metadata, error) {
	switch t.Kind {
	case query.TEmpty:
		return rows, meta, nil
	case query.TDropColumns:
		return dropColumns(rows, meta, t.Columns), dropMeta(meta, t.Columns), nil
	case query.TSortBy:
		out, err := sortBy(rows, t.SortKeys)
		return out, meta, err
	case query.TFilterBy:
		out, err := filterBy(rows, t.FilterOp, t.Conditions)
		return out, meta, err
	case query.TGroupBy:
		return groupBy(rows, t.GroupKeys, t.GroupAggs)
	case query.TWindowBy:
		out, newMeta, err := windowBy(rows, t.KeyField, t.WindowSize, t.WindowAggs)
		return out, newMeta, err
	case query.TExpandBy:
		out, newMeta, err := expandByMode(rows, t.KeyField, t.WindowAggs, correctedMean)
		return out, newMeta, err
	case query.TPaging:
		out, err := paging(rows, t.PageOps)
		return out, meta, err
	}
	return rows, meta, perr.New(perr.ParseError, "unknown transformation kind %d", t.Kind)
}

func dropColumns(rows []query.Row, meta query.Metadata, cols []string) []query.Row {
	drop := toSet(cols)
	out := make([]query.Row, len(rows))
	for i, r := range rows {
		nr := make(query.Row, 0, len(r))
		for _, c := range r {
			if !drop[c.Name] {
				nr = append(nr, c)
			}
		}
		out[i] = nr
	}
	_ = meta
	return out
}

func dropMeta(meta query.Metadata, cols []string) query.Metadata {
	drop := toSet(cols)
	out := make(query.Metadata, 0, len(meta))
	for _, c := range meta {
		if !drop[c.Name] {
			out = append(out, c)
		}
	}
	return out
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}

// sortBy builds a composite comparator from keys in declared order (the
// first declared field is the primary key) and performs a stable sort.
func sortBy(rows []query.Row, keys []query.SortKey) ([]query.Row, error) {
	if len(keys) == 0 {
		return rows, nil
	}
	out := make([]query.Row, len(rows))
	copy(out, rows)

	var cmpErr error
	sort.SliceStable(out, func(i, j int) bool {
		if cmpErr != nil {
			return false
		}
		less, err := lessRows(out[i], out[j], keys)
		if err != nil {
			cmpErr = err
			return false
		}
		return less
	})
	if cmpErr != nil {
		return nil, cmpErr
	}
	return out, nil
}

func lessRows(a, b query.Row, keys []query.SortKey) (bool, error) {
	for _, k := range keys {
		av, aok := a.Get(k.Column)
		bv, bok := b.Get(k.Column)
		if !aok || !bok {
			return false, perr.New(perr.ParseError, "sort column %q not present in row", k.Column)
		}
		c, err := compareValues(av, bv)
		if err != nil {
			return false, err
		}
		if k.Direction == query.Descending {
			c = -c
		}
		if c != 0 {
			return c < 0, nil
		}
	}
	return false, nil
}

// compareValues orders two same-kind values: numeric/string/date use
// natural order, mixed kinds fail.
func compareValues(a, b value.Value) (int, error) {
	if a.Kind() != b.Kind() {
		return 0, perr.New(perr.TypeError, "cannot compare values of different kinds")
	}
	switch a.Kind() {
	case value.KindNumber:
		return cmpFloat(a.NumberVal(), b.NumberVal()), nil
	case value.KindString:
		return strings.Compare(a.StringVal(), b.StringVal()), nil
	case value.KindDate:
		switch {
		case a.DateVal().Before(b.DateVal()):
			return -1, nil
		case a.DateVal().After(b.DateVal()):
			return 1, nil
		default:
			return 0, nil
		}
	case value.KindBool:
		if a.BoolVal() == b.BoolVal() {
			return 0, nil
		}
		if !a.BoolVal() {
			return -1, nil
		}
		return 1, nil
	}
	return 0, perr.New(perr.TypeError, "unsupported value kind for comparison")
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// paging applies each operator to the sequence in declared order: Take
// n takes a prefix of up to n, Skip n drops the first n and fails if
// fewer elements remain.
func paging(rows []query.Row, ops []query.PageOp) ([]query.Row, error) {
	for _, op := range ops {
		switch op.Kind {
		case query.Take:
			n := op.N
			if n > len(rows) {
				n = len(rows)
			}
			if n < 0 {
				n = 0
			}
			rows = rows[:n]
		case query.Skip:
			if op.N > len(rows) {
				return nil, perr.New(perr.DataError, "skip %d exceeds remaining row count %d", op.N, len(rows))
			}
			rows = rows[op.N:]
		}
	}
	return rows, nil
}

