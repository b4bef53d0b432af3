package eval

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pivotql/pivotql/internal/query"
	"github.com/pivotql/pivotql/internal/value"
)

func TestFilterByAndConjoinsConditions(t *testing.T) {
	rows := []query.Row{
		row(cell("age", value.Number(25)), cell("name", value.String("Alice"))),
		row(cell("age", value.Number(17)), cell("name", value.String("Bob"))),
	}
	out, err := filterBy(rows, query.And, []query.Condition{
		{Op: query.GreaterThan, Field: "age", Value: "18"},
	})
	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, "Alice", out[0][1].Value.StringVal())
}

func TestFilterByOrDisjoinsConditions(t *testing.T) {
	rows := []query.Row{
		row(cell("name", value.String("Alice"))),
		row(cell("name", value.String("Bob"))),
		row(cell("name", value.String("Carl"))),
	}
	out, err := filterBy(rows, query.Or, []query.Condition{
		{Op: query.Equals, Field: "name", Value: "Alice"},
		{Op: query.Equals, Field: "name", Value: "Carl"},
	})
	assert.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestStringLikeIsCaseInsensitiveSubstring(t *testing.T) {
	ok, err := evalStringCondition(value.String("Hello World"), query.Condition{Op: query.Like, Value: "WORLD"})
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestNumberInRange(t *testing.T) {
	ok, err := evalNumberCondition(value.Number(5), query.Condition{Op: query.InRange, Value: "1,10"})
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = evalNumberCondition(value.Number(50), query.Condition{Op: query.InRange, Value: "1,10"})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestNumberEqualsIsIllegal(t *testing.T) {
	_, err := evalNumberCondition(value.Number(5), query.Condition{Op: query.Equals, Value: "5"})
	assert.Error(t, err)
}

func TestBoolConditionEqualsAndNotEquals(t *testing.T) {
	ok, err := evalBoolCondition(value.Bool(true), query.Condition{Op: query.Equals, Value: "true"})
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = evalBoolCondition(value.Bool(true), query.Condition{Op: query.NotEquals, Value: "true"})
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestBoolRelationalOperatorsAreIllegal(t *testing.T) {
	_, err := evalBoolCondition(value.Bool(true), query.Condition{Op: query.GreaterThan, Value: "true"})
	assert.Error(t, err)
}

func TestDateConditionEquals(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	ok, err := evalDateCondition(value.Date(d), query.Condition{Op: query.Equals, Value: "2024-03-05"})
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestDateConditionInRange(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	ok, err := evalDateCondition(value.Date(d), query.Condition{Op: query.InRange, Value: "2024-01-01,2024-12-31"})
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestDateConditionLikeIsIllegal(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	_, err := evalDateCondition(value.Date(d), query.Condition{Op: query.Like, Value: "anything"})
	assert.Error(t, err)
}
