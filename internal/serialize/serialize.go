// Package serialize renders an eval.Result as one of four JSON shapes:
// record array, 2-tuple series, scalar array, or metadata object.
package serialize

import (
	"encoding/json"
	"time"

	"github.com/pivotql/pivotql/internal/eval"
	"github.com/pivotql/pivotql/internal/query"
	"github.com/pivotql/pivotql/internal/types"
	"github.com/pivotql/pivotql/internal/value"
)

// ToJSON renders the result, preserving column order on record rows.
func ToJSON(res eval.Result) ([]byte, error) {
	switch res.Kind {
	case query.MetadataAction:
		return json.Marshal(metadataObject(res.MetaCols))
	case query.GetSeries:
		return json.Marshal(seriesArray(res.Series))
	case query.GetRange:
		return json.Marshal(scalarArray(res.Scalars))
	default:
		return json.Marshal(recordArray(res.Records))
	}
}

func metadataObject(meta query.Metadata) *orderedObject {
	obj := newOrderedObject(len(meta))
	for _, c := range meta {
		obj.set(c.Name, types.FormatType(c.Type))
	}
	return obj
}

func recordArray(rows []query.Row) []*orderedObject {
	out := make([]*orderedObject, len(rows))
	for i, r := range rows {
		obj := newOrderedObject(len(r))
		for _, c := range r {
			obj.set(c.Name, jsonValue(c.Value))
		}
		out[i] = obj
	}
	return out
}

func seriesArray(series [][2]value.Value) [][2]interface{} {
	out := make([][2]interface{}, len(series))
	for i, pair := range series {
		out[i] = [2]interface{}{jsonValue(pair[0]), jsonValue(pair[1])}
	}
	return out
}

func scalarArray(vs []value.Value) []interface{} {
	out := make([]interface{}, len(vs))
	for i, v := range vs {
		out[i] = jsonValue(v)
	}
	return out
}

// jsonValue projects a Value to the JSON-native type  names:
// Bool -> boolean, Number -> float, String -> string, Date -> ISO-8601
// extended instant string.
func jsonValue(v value.Value) interface{} {
	switch v.Kind() {
	case value.KindBool:
		return v.BoolVal()
	case value.KindNumber:
		return v.NumberVal()
	case value.KindDate:
		return v.DateVal().UTC().Format(time.RFC3339Nano)
	default:
		return v.StringVal()
	}
}
