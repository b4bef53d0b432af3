package eval

import (
	"github.com/pivotql/pivotql/internal/perr"
	"github.com/pivotql/pivotql/internal/query"
	"github.com/pivotql/pivotql/internal/value"
)

// windowBy sorts by key, then slides a window of exactly size
// consecutive rows (one window per shift by 1), emitting one output
// row per window.
func windowBy(rows []query.Row, key string, size int, aggs []query.WindowAggregation) ([]query.Row, query.Metadata, error) {
	sorted, err := sortBy(rows, []query.SortKey{{Column: key, Direction: query.Ascending}})
	if err != nil {
		return nil, nil, err
	}
	if size <= 0 || size > len(sorted) {
		return nil, nil, perr.New(perr.DataError, "windowby size %d is invalid for %d rows", size, len(sorted))
	}

	out := make([]query.Row, 0, len(sorted)-size+1)
	for start := 0; start+size <= len(sorted); start++ {
		win := sorted[start : start+size]
		row, err := buildWindowRow(win, key, aggs)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, row)
	}
	return out, inferMetaFromRows(out), nil
}

func buildWindowRow(win []query.Row, key string, aggs []query.WindowAggregation) (query.Row, error) {
	var row query.Row
	for _, agg := range aggs {
		switch agg.Kind {
		case query.WinMin, query.WinMax, query.WinSum, query.WinMean:
			v, err := windowNumericAgg(win, agg)
			if err != nil {
				return nil, err
			}
			row = append(row, query.Cell{Name: agg.Field, Value: v})
		case query.FirstKey:
			v, ok := win[0].Get(key)
			if !ok {
				return nil, perr.New(perr.ParseError, "window key %q not present in row", key)
			}
			row = append(row, query.Cell{Name: "first " + key, Value: v})
		case query.LastKey:
			v, ok := win[len(win)-1].Get(key)
			if !ok {
				return nil, perr.New(perr.ParseError, "window key %q not present in row", key)
			}
			row = append(row, query.Cell{Name: "last " + key, Value: v})
		case query.MiddleKey:
			v, ok := win[(len(win)-1)/2].Get(key)
			if !ok {
				return nil, perr.New(perr.ParseError, "window key %q not present in row", key)
			}
			row = append(row, query.Cell{Name: "middle " + key, Value: v})
		}
	}
	return row, nil
}

func windowNumericAgg(win []query.Row, agg query.WindowAggregation) (value.Value, error) {
	var sum, min, max float64
	for i, r := range win {
		v, ok := r.Get(agg.Field)
		if !ok {
			return value.Value{}, perr.New(perr.ParseError, "window aggregation column %q not present in row", agg.Field)
		}
		f, err := v.AsFloat()
		if err != nil {
			return value.Value{}, err
		}
		if i == 0 || f < min {
			min = f
		}
		if i == 0 || f > max {
			max = f
		}
		sum += f
	}
	switch agg.Kind {
	case query.WinMin:
		return value.Number(min), nil
	case query.WinMax:
		return value.Number(max), nil
	case query.WinSum:
		return value.Number(sum), nil
	case query.WinMean:
		return value.Number(sum / float64(len(win))), nil
	}
	return value.Value{}, perr.New(perr.ParseError, "unreachable window aggregation kind")
}

// expandState is one ExpandBy aggregator's mutable running state.
type expandState struct {
	kind      query.WindowAggKind
	field     string
	sum       float64
	meanDenom float64
	min       float64
	max       float64
	first     value.Value
	haveMin   bool
	haveMax   bool
	haveFirst bool
	buffer    []value.Value

	// correctedMean switches ExpandBy's Mean aggregator to accumulate
	// count by 1 instead of by the observed value, which otherwise
	// degenerates to 1 for a constant positive series. Off by default.
	correctedMean bool
}

// expandBy sorts by key, then for each row in order emits a row built
// from stateful running aggregators, one state per aggregator.
// correctedMean gates the running mean; default false reproduces a
// sum/count-by-value quirk exactly.
func expandBy(rows []query.Row, key string, aggs []query.WindowAggregation) ([]query.Row, query.Metadata, error) {
	return expandByMode(rows, key, aggs, false)
}

// ExpandByCorrected is the corrected variant gated behind an explicit
// flag: count increments by 1 rather than by the observed value, so
// Mean is the arithmetic running mean.
func ExpandByCorrected(rows []query.Row, key string, aggs []query.WindowAggregation) ([]query.Row, query.Metadata, error) {
	return expandByMode(rows, key, aggs, true)
}

func expandByMode(rows []query.Row, key string, aggs []query.WindowAggregation, correctedMean bool) ([]query.Row, query.Metadata, error) {
	sorted, err := sortBy(rows, []query.SortKey{{Column: key, Direction: query.Ascending}})
	if err != nil {
		return nil, nil, err
	}

	states := make([]*expandState, len(aggs))
	for i, agg := range aggs {
		states[i] = &expandState{kind: agg.Kind, field: agg.Field, correctedMean: correctedMean}
	}

	out := make([]query.Row, 0, len(sorted))
	for _, r := range sorted {
		var row query.Row
		keyVal, ok := r.Get(key)
		if !ok {
			return nil, nil, perr.New(perr.ParseError, "expandby key %q not present in row", key)
		}
		for i, agg := range aggs {
			cell, err := states[i].step(r, agg, key, keyVal)
			if err != nil {
				return nil, nil, err
			}
			row = append(row, cell)
		}
		out = append(out, row)
	}
	return out, inferMetaFromRows(out), nil
}

// step advances one aggregator's running state by one row and returns
// the (name, Value) it contributes this row.
func (s *expandState) step(r query.Row, agg query.WindowAggregation, key string, keyVal value.Value) (query.Cell, error) {
	switch agg.Kind {
	case query.WinSum, query.WinMean, query.WinMin, query.WinMax:
		v, ok := r.Get(agg.Field)
		if !ok {
			return query.Cell{}, perr.New(perr.ParseError, "expandby aggregation column %q not present in row", agg.Field)
		}
		f, err := v.AsFloat()
		if err != nil {
			return query.Cell{}, err
		}
		switch agg.Kind {
		case query.WinSum:
			s.sum += f
			return query.Cell{Name: agg.Field, Value: value.Number(s.sum)}, nil
		case query.WinMean:
			s.sum += f
			if s.correctedMean {
				s.meanDenom++
			} else {
				// Reproduces the source's quirk: the denominator
				// accumulates the observed value, not 1 — so the
				// emitted mean is Σv/Σv, which is 1 for any constant
				// positive series.
				s.meanDenom += f
			}
			return query.Cell{Name: agg.Field, Value: value.Number(s.sum / s.meanDenom)}, nil
		case query.WinMin:
			if !s.haveMin || f < s.min {
				s.min = f
				s.haveMin = true
			}
			return query.Cell{Name: agg.Field, Value: value.Number(s.min)}, nil
		case query.WinMax:
			if !s.haveMax || f > s.max {
				s.max = f
				s.haveMax = true
			}
			return query.Cell{Name: agg.Field, Value: value.Number(s.max)}, nil
		}
	case query.FirstKey:
		if !s.haveFirst {
			s.first = keyVal
			s.haveFirst = true
		}
		return query.Cell{Name: "first " + key, Value: s.first}, nil
	case query.LastKey:
		return query.Cell{Name: "last " + key, Value: keyVal}, nil
	case query.MiddleKey:
		s.buffer = append(s.buffer, keyVal)
		mid := s.buffer[len(s.buffer)/2]
		return query.Cell{Name: "middle " + key, Value: mid}, nil
	}
	return query.Cell{}, perr.New(perr.ParseError, "unreachable expandby aggregation kind")
}
