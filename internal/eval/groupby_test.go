package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pivotql/pivotql/internal/query"
	"github.com/pivotql/pivotql/internal/value"
)

func TestGroupByPreservesFirstOccurrenceOrder(t *testing.T) {
	rows := []query.Row{
		row(cell("region", value.String("west")), cell("amount", value.Number(10))),
		row(cell("region", value.String("east")), cell("amount", value.Number(5))),
		row(cell("region", value.String("west")), cell("amount", value.Number(20))),
	}
	out, _, err := groupBy(rows, []string{"region"}, []query.GroupAggregation{
		{Kind: query.GroupKey},
		{Kind: query.GroupSum, Field: "amount"},
	})
	assert.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, "west", out[0][0].Value.StringVal())
	assert.Equal(t, 30.0, out[0][1].Value.NumberVal())
	assert.Equal(t, "east", out[1][0].Value.StringVal())
	assert.Equal(t, 5.0, out[1][1].Value.NumberVal())
}

func TestGroupByCountAllAndCountDistinct(t *testing.T) {
	rows := []query.Row{
		row(cell("region", value.String("west")), cell("city", value.String("A"))),
		row(cell("region", value.String("west")), cell("city", value.String("A"))),
		row(cell("region", value.String("west")), cell("city", value.String("B"))),
	}
	out, _, err := groupBy(rows, []string{"region"}, []query.GroupAggregation{
		{Kind: query.CountAll},
		{Kind: query.CountDistinct, Field: "city"},
	})
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, 3.0, out[0][0].Value.NumberVal())
	assert.Equal(t, 2.0, out[0][1].Value.NumberVal())
}

func TestGroupByMean(t *testing.T) {
	rows := []query.Row{
		row(cell("k", value.String("g")), cell("n", value.Number(2))),
		row(cell("k", value.String("g")), cell("n", value.Number(4))),
	}
	out, _, err := groupBy(rows, []string{"k"}, []query.GroupAggregation{{Kind: query.GroupMean, Field: "n"}})
	assert.NoError(t, err)
	assert.Equal(t, 3.0, out[0][0].Value.NumberVal())
}

func TestGroupByConcatValuesJoinsDistinct(t *testing.T) {
	rows := []query.Row{
		row(cell("k", value.String("g")), cell("tag", value.String("x"))),
		row(cell("k", value.String("g")), cell("tag", value.String("y"))),
		row(cell("k", value.String("g")), cell("tag", value.String("x"))),
	}
	out, _, err := groupBy(rows, []string{"k"}, []query.GroupAggregation{{Kind: query.ConcatValues, Field: "tag"}})
	assert.NoError(t, err)
	assert.Equal(t, "x, y", out[0][0].Value.StringVal())
}

func TestGroupByMissingKeyColumnFails(t *testing.T) {
	rows := []query.Row{row(cell("n", value.Number(1)))}
	_, _, err := groupBy(rows, []string{"missing"}, nil)
	assert.Error(t, err)
}
