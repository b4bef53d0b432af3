package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferNumeric(t *testing.T) {
	assert.Equal(t, T(OneZero), Infer("0"))
	assert.Equal(t, T(OneZero), Infer("1"))
	assert.Equal(t, T(Int), Infer("42"))
	assert.Equal(t, T(Float), Infer("3.14"))
}

func TestInferBool(t *testing.T) {
	assert.Equal(t, T(Bool), Infer("true"))
	assert.Equal(t, T(Bool), Infer("FALSE"))
}

func TestInferDateCultureFromUnambiguousLayouts(t *testing.T) {
	// 13 can't be a month, so this is unambiguously en-GB.
	assert.Equal(t, DateType(CultureEnGB), Infer("13/1/2024"))
	// 2024-01-05 is an invariant-only ISO layout.
	assert.Equal(t, DateType(CultureInvariant), Infer("2024-01-05"))
}

func TestInferFallsBackToString(t *testing.T) {
	assert.Equal(t, T(StringK), Infer("hello world"))
}

func TestUnifyBoolAndOneZero(t *testing.T) {
	assert.Equal(t, T(Bool), Unify(T(Bool), T(OneZero)))
	assert.Equal(t, T(Bool), Unify(T(OneZero), T(Bool)))
}

func TestUnifyNumericWidening(t *testing.T) {
	assert.Equal(t, T(Int), Unify(T(Int), T(OneZero)))
	assert.Equal(t, T(Float), Unify(T(Int), T(Float)))
	assert.Equal(t, T(Float), Unify(T(Float), T(OneZero)))
}

func TestUnifyIncompatibleCollapsesToString(t *testing.T) {
	assert.Equal(t, T(StringK), Unify(T(Bool), T(StringK)))
	assert.Equal(t, T(StringK), Unify(T(Int), T(StringK)))
	assert.Equal(t, T(StringK), Unify(DateType(CultureInvariant), T(Int)))
}

func TestUnifyDateCultureNoneIsAbsorbing(t *testing.T) {
	assert.Equal(t, DateType(CultureInvariant), Unify(DateType(CultureNone), DateType(CultureInvariant)))
	assert.Equal(t, DateType(CultureEnGB), Unify(DateType(CultureEnGB), DateType(CultureNone)))
	assert.Equal(t, T(StringK), Unify(DateType(CultureInvariant), DateType(CultureEnGB)))
}

func TestUnifyAnyIsIdentity(t *testing.T) {
	assert.Equal(t, T(Int), Unify(T(Any), T(Int)))
	assert.Equal(t, T(Int), Unify(T(Int), T(Any)))
}

func TestUnifyAllFoldsOverSample(t *testing.T) {
	got := UnifyAll([]InferredType{T(OneZero), T(OneZero), T(Int)})
	assert.Equal(t, T(Int), got)
}

func TestFormatType(t *testing.T) {
	assert.Equal(t, "number", FormatType(T(Int)))
	assert.Equal(t, "number", FormatType(T(Float)))
	assert.Equal(t, "bool", FormatType(T(Bool)))
	assert.Equal(t, "bool", FormatType(T(OneZero)))
	assert.Equal(t, "date", FormatType(DateType(CultureInvariant)))
	assert.Equal(t, "string", FormatType(T(StringK)))
}
