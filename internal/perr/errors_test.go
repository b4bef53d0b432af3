package perr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFormatsMessage(t *testing.T) {
	e := New(ParseError, "bad token %q", "xyz")
	assert.Equal(t, `ParseError: bad token "xyz"`, e.Error())
}

func TestAsUnwrapsTypedError(t *testing.T) {
	var err error = New(DataError, "oops")
	e, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, DataError, e.Kind)
}

func TestAsRejectsOtherErrors(t *testing.T) {
	_, ok := As(errors.New("plain"))
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "TypeError", TypeError.String())
	assert.Equal(t, "InvalidIdentifier", InvalidIdentifier.String())
}
