package eval

import (
	"fmt"
	"strings"

	"github.com/pivotql/pivotql/internal/perr"
	"github.com/pivotql/pivotql/internal/query"
	"github.com/pivotql/pivotql/internal/types"
	"github.com/pivotql/pivotql/internal/value"
)

// groupByBucket accumulates one group's member rows in first-occurrence
// order of the group's key tuple.
type groupByBucket struct {
	keyValues []value.Value
	rows      []query.Row
}

// groupBy buckets rows by the tuple of key values, preserving
// first-occurrence order of groups, then emits one row per group
// concatenating each aggregator's contribution.
func groupBy(rows []query.Row, keys []string, aggs []query.GroupAggregation) ([]query.Row, query.Metadata, error) {
	order := make([]string, 0)
	buckets := make(map[string]*groupByBucket)

	for _, r := range rows {
		keyValues := make([]value.Value, len(keys))
		var sb strings.Builder
		for i, k := range keys {
			v, ok := r.Get(k)
			if !ok {
				return nil, nil, perr.New(perr.ParseError, "group key %q not present in row", k)
			}
			keyValues[i] = v
			fmt.Fprintf(&sb, "%v\x1f", v.AsString())
		}
		sig := sb.String()
		b, ok := buckets[sig]
		if !ok {
			b = &groupByBucket{keyValues: keyValues}
			buckets[sig] = b
			order = append(order, sig)
		}
		b.rows = append(b.rows, r)
	}

	out := make([]query.Row, 0, len(order))
	for _, sig := range order {
		b := buckets[sig]
		row, err := buildGroupRow(keys, b, aggs)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, row)
	}
	return out, inferMetaFromRows(out), nil
}

func buildGroupRow(keys []string, b *groupByBucket, aggs []query.GroupAggregation) (query.Row, error) {
	var row query.Row
	for _, agg := range aggs {
		switch agg.Kind {
		case query.GroupKey:
			for i, k := range keys {
				row = append(row, query.Cell{Name: k, Value: b.keyValues[i]})
			}
		case query.CountAll:
			row = append(row, query.Cell{Name: "count", Value: value.Number(float64(len(b.rows)))})
		case query.CountDistinct:
			distinct, err := distinctValues(b.rows, agg.Field)
			if err != nil {
				return nil, err
			}
			row = append(row, query.Cell{Name: agg.Field, Value: value.Number(float64(len(distinct)))})
		case query.ConcatValues:
			distinct, err := distinctValues(b.rows, agg.Field)
			if err != nil {
				return nil, err
			}
			parts := make([]string, len(distinct))
			for i, v := range distinct {
				parts[i] = v.AsString()
			}
			row = append(row, query.Cell{Name: agg.Field, Value: value.String(strings.Join(parts, ", "))})
		case query.GroupSum:
			sum, err := sumField(b.rows, agg.Field)
			if err != nil {
				return nil, err
			}
			row = append(row, query.Cell{Name: agg.Field, Value: value.Number(sum)})
		case query.GroupMean:
			sum, err := sumField(b.rows, agg.Field)
			if err != nil {
				return nil, err
			}
			row = append(row, query.Cell{Name: agg.Field, Value: value.Number(sum / float64(len(b.rows)))})
		}
	}
	return row, nil
}

// distinctValues collects a field's distinct values across rows, in
// first-occurrence order.
func distinctValues(rows []query.Row, field string) ([]value.Value, error) {
	seen := make(map[string]bool)
	var out []value.Value
	for _, r := range rows {
		v, ok := r.Get(field)
		if !ok {
			return nil, perr.New(perr.ParseError, "aggregation column %q not present in row", field)
		}
		key := v.AsString()
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	return out, nil
}

func sumField(rows []query.Row, field string) (float64, error) {
	var sum float64
	for _, r := range rows {
		v, ok := r.Get(field)
		if !ok {
			return 0, perr.New(perr.ParseError, "aggregation column %q not present in row", field)
		}
		f, err := v.AsFloat()
		if err != nil {
			return 0, err
		}
		sum += f
	}
	return sum, nil
}

// inferMetaFromRows derives output Metadata for a freshly-built row set
// (GroupBy/WindowBy/ExpandBy output columns are not a subset of the
// input's Metadata), sampling up to types.MaxSampleRows rows per column.
func inferMetaFromRows(rows []query.Row) query.Metadata {
	if len(rows) == 0 {
		return nil
	}
	var colNames []string
	for _, c := range rows[0] {
		colNames = append(colNames, c.Name)
	}

	sampleN := len(rows)
	if sampleN > types.MaxSampleRows {
		sampleN = types.MaxSampleRows
	}
	meta := make(query.Metadata, 0, len(colNames))
	for _, name := range colNames {
		var kinds []types.InferredType
		for _, r := range rows[:sampleN] {
			v, ok := r.Get(name)
			if !ok {
				continue
			}
			kinds = append(kinds, types.Infer(v.AsString()))
		}
		meta = append(meta, query.ColumnMeta{Name: name, Type: types.UnifyAll(kinds)})
	}
	return meta
}
