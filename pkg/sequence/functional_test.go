package sequence

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterCount(t *testing.T) {
	it := From([]int{1, 2, 3, 4, 5, 6})
	even := it.Filter(func(n int) bool { return n%2 == 0 })
	require.Equal(t, 3, even.Count())

	// Filtering never consumes the source iterator.
	require.Equal(t, 6, it.Count())
	require.Equal(t, 0, From([]int(nil)).Count())
}

func TestAll(t *testing.T) {
	positive := func(n int) bool { return n > 0 }
	require.True(t, From([]int{1, 2, 3}).All(positive))
	require.False(t, From([]int{1, -2, 3}).All(positive))
	require.True(t, From([]int(nil)).All(positive))
}

func TestToArray(t *testing.T) {
	got := ToArray(From([]int{7, 8, 9}), strconv.Itoa)
	require.Equal(t, []string{"7", "8", "9"}, got)
}

func TestPull(t *testing.T) {
	next, stop := From([]string{"a", "b"}).Pull()
	defer stop()

	v, ok := next()
	require.True(t, ok)
	require.Equal(t, "a", v)
	v, ok = next()
	require.True(t, ok)
	require.Equal(t, "b", v)
	_, ok = next()
	require.False(t, ok)
}
