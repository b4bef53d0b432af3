package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitChunksDropsEmptySegments(t *testing.T) {
	assert.Equal(t, []string{"drop(a)", "take(5)"}, splitChunks("$drop(a)$$take(5)$"))
}

func TestParseChunkNoArgs(t *testing.T) {
	assert.Equal(t, chunk{op: "metadata"}, parseChunk("metadata"))
}

func TestParseChunkEmptyParens(t *testing.T) {
	assert.Equal(t, chunk{op: "metadata"}, parseChunk("metadata()"))
}

func TestScanArgsSplitsOnUnquotedCommasOnly(t *testing.T) {
	assert.Equal(t, []string{"'a,b'", "c"}, scanArgs("'a,b',c"))
}

func TestTrimIdentStripsOneQuotePair(t *testing.T) {
	assert.Equal(t, "hello", trimIdent("'hello'"))
	assert.Equal(t, "hello", trimIdent("hello"))
}
