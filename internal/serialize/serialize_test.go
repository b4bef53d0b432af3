package serialize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pivotql/pivotql/internal/eval"
	"github.com/pivotql/pivotql/internal/query"
	"github.com/pivotql/pivotql/internal/types"
	"github.com/pivotql/pivotql/internal/value"
)

func TestToJSONRecordArrayPreservesColumnOrder(t *testing.T) {
	res := eval.Result{
		Kind: query.GetTheData,
		Records: []query.Row{
			{{Name: "b", Value: value.Number(2)}, {Name: "a", Value: value.Number(1)}},
		},
	}
	out, err := ToJSON(res)
	assert.NoError(t, err)
	assert.JSONEq(t, `[{"b":2,"a":1}]`, string(out))
	assert.Equal(t, `[{"b":2,"a":1}]`, string(out))
}

func TestToJSONMetadataObject(t *testing.T) {
	res := eval.Result{
		Kind: query.MetadataAction,
		MetaCols: query.Metadata{
			{Name: "amount", Type: types.T(types.Float)},
			{Name: "name", Type: types.T(types.StringK)},
		},
	}
	out, err := ToJSON(res)
	assert.NoError(t, err)
	assert.Equal(t, `{"amount":"number","name":"string"}`, string(out))
}

func TestToJSONSeriesArray(t *testing.T) {
	res := eval.Result{
		Kind: query.GetSeries,
		Series: [][2]value.Value{
			{value.String("mon"), value.Number(10)},
			{value.String("tue"), value.Number(20)},
		},
	}
	out, err := ToJSON(res)
	assert.NoError(t, err)
	assert.Equal(t, `[["mon",10],["tue",20]]`, string(out))
}

func TestToJSONScalarArray(t *testing.T) {
	res := eval.Result{Kind: query.GetRange, Scalars: []value.Value{value.String("east"), value.String("west")}}
	out, err := ToJSON(res)
	assert.NoError(t, err)
	assert.Equal(t, `["east","west"]`, string(out))
}

func TestToJSONDateIsRFC3339Nano(t *testing.T) {
	d := time.Date(2024, 3, 5, 1, 2, 3, 0, time.UTC)
	res := eval.Result{Kind: query.GetTheData, Records: []query.Row{{{Name: "d", Value: value.Date(d)}}}}
	out, err := ToJSON(res)
	assert.NoError(t, err)

	var decoded []map[string]interface{}
	assert.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, d.Format(time.RFC3339Nano), decoded[0]["d"])
}
