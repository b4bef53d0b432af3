package csvsource

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pivotql/pivotql/internal/types"
)

func TestLoadInfersColumnTypesAndParsesCells(t *testing.T) {
	src := "name,age,active,joined\nAlice,30,1,2024-01-05\nBob,25,0,2024-02-10\n"
	table, err := Load("people", strings.NewReader(src))
	assert.NoError(t, err)

	assert.Equal(t, types.T(types.StringK), table.Meta[0].Type)
	assert.Equal(t, types.T(types.Int), table.Meta[1].Type)
	assert.Equal(t, types.T(types.OneZero), table.Meta[2].Type)
	assert.Equal(t, types.DateType(types.CultureInvariant), table.Meta[3].Type)

	assert.Len(t, table.Rows, 2)
	v, ok := table.Rows[0].Get("name")
	assert.True(t, ok)
	assert.Equal(t, "Alice", v.StringVal())

	v, ok = table.Rows[0].Get("active")
	assert.True(t, ok)
	assert.True(t, v.BoolVal())
}

func TestLoadRejectsEmptySource(t *testing.T) {
	_, err := Load("empty", strings.NewReader("name,age\n"))
	assert.Error(t, err)
}

func TestLoadFailsWhenARowBeyondTheSampleWindowDisagrees(t *testing.T) {
	// Metadata is inferred from only the first MaxSampleRows rows; a
	// later row that doesn't fit the resolved type is a DataError, not
	// a silent re-inference.
	var sb strings.Builder
	sb.WriteString("n\n")
	for i := 0; i < types.MaxSampleRows; i++ {
		sb.WriteString("1\n")
	}
	sb.WriteString("not-a-number\n")

	_, err := Load("bad", strings.NewReader(sb.String()))
	assert.Error(t, err)
}
