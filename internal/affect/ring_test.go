package affect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRing_PushAndEvict(t *testing.T) {
	r := newRing[int](3)
	assert.Equal(t, 0, r.len())
	_, ok := r.newest()
	assert.False(t, ok)

	for i := 1; i <= 5; i++ {
		r.push(i)
	}

	assert.True(t, r.full())
	assert.Equal(t, 3, r.capacity())
	assert.Equal(t, []int{3, 4, 5}, r.items())
	assert.Equal(t, []int{4, 5}, r.last(2))
	assert.Equal(t, []int{3, 4, 5}, r.last(10))
	assert.Equal(t, []int{}, r.last(0))

	newest, ok := r.newest()
	assert.True(t, ok)
	assert.Equal(t, 5, newest)
}

func TestRing_Reset(t *testing.T) {
	r := newRing[string](2)
	r.push("a")
	r.push("b")
	r.reset()

	assert.Equal(t, 0, r.len())
	assert.Empty(t, r.items())

	r.push("c")
	assert.Equal(t, []string{"c"}, r.items())
}

func TestRing_MinimumCapacity(t *testing.T) {
	r := newRing[int](0)
	r.push(1)
	r.push(2)
	assert.Equal(t, []int{2}, r.items())
}
