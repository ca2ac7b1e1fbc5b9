package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRectIntContains(t *testing.T) {
	r := NewRectInt(50, 50, 50, 50)
	require.True(t, r.Contains(50, 50))
	require.True(t, r.Contains(99, 99))
	require.False(t, r.Contains(100, 99))
	require.False(t, r.Contains(49, 50))
	require.Equal(t, Pt(100, 100), r.Max())
	require.Equal(t, 2500, r.Area())
}

func TestRectIntIntersect(t *testing.T) {
	img := NewRectInt(0, 0, 120, 70)
	sec := NewRectInt(100, 50, 50, 50)
	require.Equal(t, NewRectInt(100, 50, 20, 20), img.Intersect(sec))

	none := img.Intersect(NewRectInt(200, 200, 10, 10))
	require.True(t, none.Empty())
	require.Equal(t, 0, none.Area())
}
