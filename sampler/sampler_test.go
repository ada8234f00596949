package sampler

import (
	"testing"

	"github.com/spatialindex/octree/grid"
	"github.com/spatialindex/octree/point"
	"github.com/stretchr/testify/require"
)

func TestSampleKeepsClosestToCellCenter(t *testing.T) {
	hier := grid.Hierarchy{Shift: 4} // cell size at lod 0 is 16
	pts := point.Buffer{
		{Position: grid.Position{X: 1, Y: 1, Z: 1}, Intensity: 1},
		{Position: grid.Position{X: 8, Y: 8, Z: 8}, Intensity: 2}, // closest to the cell center (7,7,7): bounds are 0..15
		{Position: grid.Position{X: 15, Y: 15, Z: 15}, Intensity: 3},
	}
	out := Sample(hier, 0, pts)
	require.Len(t, out, 1)
	require.EqualValues(t, 2, out[0].Intensity)
}

func TestSampleSplitsAcrossCells(t *testing.T) {
	hier := grid.Hierarchy{Shift: 2} // cell size 4 at lod 0
	pts := point.Buffer{
		{Position: grid.Position{X: 0, Y: 0, Z: 0}},
		{Position: grid.Position{X: 4, Y: 0, Z: 0}},
	}
	out := Sample(hier, 0, pts)
	require.Len(t, out, 2)
}

func TestSampleIsDeterministicOnTies(t *testing.T) {
	hier := grid.Hierarchy{Shift: 4}
	pts := point.Buffer{
		// Both one unit from the cell center (7,7,7).
		{Position: grid.Position{X: 6, Y: 7, Z: 7}, Intensity: 10},
		{Position: grid.Position{X: 8, Y: 7, Z: 7}, Intensity: 20},
	}
	out1 := Sample(hier, 0, pts)
	out2 := Sample(hier, 0, pts)
	require.Equal(t, out1, out2)
}
