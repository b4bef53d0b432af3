package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransformSlice(t *testing.T) {
	out := TransformSlice([]int{1, 2, 3}, func(n int) string {
		if n%2 == 0 {
			return "even"
		}
		return "odd"
	})
	assert.Equal(t, []string{"odd", "even", "odd"}, out)
}
