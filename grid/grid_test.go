package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCellAtAndBounds(t *testing.T) {
	h := Hierarchy{Shift: 20}
	pos := Position{X: 5, Y: -5, Z: 1 << 20}
	cell, err := h.CellAt(pos, 0)
	require.NoError(t, err)
	require.Equal(t, Cell{Lod: 0, X: 0, Y: -1, Z: 1}, cell)

	bounds, err := h.CellBounds(cell)
	require.NoError(t, err)
	require.True(t, bounds.Contains(pos))
}

func TestParentChildRoundTrip(t *testing.T) {
	c := Cell{Lod: 3, X: 7, Y: -3, Z: 2}
	children := Children(c)
	for _, child := range children {
		require.Equal(t, c, Parent(child))
		require.Equal(t, child, children[ChildIndex(child)])
	}
}

func TestCellSizeHalvesPerLod(t *testing.T) {
	h := Hierarchy{Shift: 10}
	s0, err := h.CellSize(0)
	require.NoError(t, err)
	s1, err := h.CellSize(1)
	require.NoError(t, err)
	require.Equal(t, s0, s1*2)
}

func TestCellSizeOutOfRange(t *testing.T) {
	h := Hierarchy{Shift: 4}
	_, err := h.CellSize(5)
	require.Error(t, err)
}

func TestCoordinateSystemRoundTrip(t *testing.T) {
	cs := CoordinateSystem{Scale: [3]float64{0.001, 0.001, 0.001}, Offset: [3]float64{100, 200, 0}}
	world := [3]float64{123.456, 200.1, -5.0}
	pos, err := cs.Encode(world)
	require.NoError(t, err)
	back := cs.Decode(pos)
	require.InDelta(t, world[0], back[0], 0.001)
	require.InDelta(t, world[1], back[1], 0.001)
	require.InDelta(t, world[2], back[2], 0.001)
}

func TestEncodeZeroScaleFails(t *testing.T) {
	cs := CoordinateSystem{Scale: [3]float64{0, 1, 1}}
	_, err := cs.Encode([3]float64{1, 2, 3})
	require.Error(t, err)
}
