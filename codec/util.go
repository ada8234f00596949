package codec

import (
	"math"

	"github.com/spatialindex/octree/grid"
)

func pos(x, y, z uint64) grid.Position {
	return grid.Position{X: int64(x), Y: int64(y), Z: int64(z)}
}

func float64bits(f float64) uint64  { return math.Float64bits(f) }
func float64frombits(u uint64) float64 { return math.Float64frombits(u) }
