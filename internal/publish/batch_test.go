package publish

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	for n := 0; n <= len(items); n++ {
		in := items[:n]
		for _, limit := range []int{1, 2, 3, 5, 50} {
			head, tail := Split(in, limit)
			assert.Equal(t, len(in), len(head)+len(tail), "n=%d limit=%d", n, limit)
			assert.Equal(t, in[:min(limit, len(in))], head, "n=%d limit=%d", n, limit)
			assert.Equal(t, in[len(head):], append([]int{}, tail...), "n=%d limit=%d", n, limit)
		}
	}
}

func TestSplit_NonPositiveLimit(t *testing.T) {
	head, tail := Split([]string{"a", "b"}, 0)
	assert.Empty(t, head)
	assert.Equal(t, []string{"a", "b"}, tail)

	head, tail = Split([]string(nil), -1)
	assert.Empty(t, head)
	assert.Empty(t, tail)
}
