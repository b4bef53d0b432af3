package eval

import (
	"github.com/pivotql/pivotql/internal/perr"
	"github.com/pivotql/pivotql/internal/query"
	"github.com/pivotql/pivotql/internal/value"
)

// previewLimit truncates the row set to the first 10 rows before
// serialization, applied after the pipeline but before action
// projection for GetSeries/GetTheData.
const previewLimit = 10

// Preview truncates rows to previewLimit when isPreview is set.
func Preview(rows []query.Row, isPreview bool) []query.Row {
	if !isPreview || len(rows) <= previewLimit {
		return rows
	}
	return rows[:previewLimit]
}

// Result is the action-projected shape the serializer consumes. Kind
// says which of the payload fields is meaningful.
type Result struct {
	Kind     query.ActionKind
	Records  []query.Row
	Series   [][2]value.Value
	Scalars  []value.Value
	MetaCols query.Metadata
}

// ApplyAction applies the query's terminal action to the (already
// preview-truncated, for GetTheData/GetSeries) row sequence.
func ApplyAction(rows []query.Row, meta query.Metadata, action query.Action) (Result, error) {
	switch action.Kind {
	case query.MetadataAction:
		return Result{Kind: query.MetadataAction, MetaCols: meta}, nil
	case query.GetTheData:
		return Result{Kind: query.GetTheData, Records: rows}, nil
	case query.GetSeries:
		series := make([][2]value.Value, 0, len(rows))
		for _, r := range rows {
			k, ok := r.Get(action.KeyField)
			if !ok {
				return Result{}, perr.New(perr.ParseError, "series key column %q not present in row", action.KeyField)
			}
			v, ok := r.Get(action.ValueField)
			if !ok {
				return Result{}, perr.New(perr.ParseError, "series value column %q not present in row", action.ValueField)
			}
			series = append(series, [2]value.Value{k, v})
		}
		return Result{Kind: query.GetSeries, Series: series}, nil
	case query.GetRange:
		distinct, err := distinctValues(rows, action.Field)
		if err != nil {
			return Result{}, err
		}
		return Result{Kind: query.GetRange, Scalars: distinct}, nil
	}
	return Result{}, perr.New(perr.ParseError, "unknown action kind %d", action.Kind)
}
