package query

import (
	"github.com/spatialindex/octree/grid"
	"github.com/spatialindex/octree/point"
)

// Plane is a half-space {x : Normal·x + D >= 0} in world-space coordinates.
type Plane struct {
	Normal [3]float64
	D      float64
}

func (pl Plane) distance(p [3]float64) float64 {
	return pl.Normal[0]*p[0] + pl.Normal[1]*p[1] + pl.Normal[2]*p[2] + pl.D
}

// ViewFrustumQuery matches nodes/points inside a 6-plane view frustum,
// decoding integer positions to world space via CoordSys before testing.
type ViewFrustumQuery struct {
	Planes   [6]Plane
	CoordSys grid.CoordinateSystem
}

// MatchNode classifies the node's bounding box against every plane: if any
// plane puts the whole box outside, the node is Negative; if every plane
// puts the whole box inside, it is Positive; otherwise Partial.
func (q ViewFrustumQuery) MatchNode(ctx NodeContext) Result {
	corners := worldCorners(ctx.Bounds, q.CoordSys)

	allInside := true
	for _, pl := range q.Planes {
		anyInside := false
		boxAllInside := true
		for _, c := range corners {
			if pl.distance(c) >= 0 {
				anyInside = true
			} else {
				boxAllInside = false
			}
		}
		if !anyInside {
			return Negative
		}
		if !boxAllInside {
			allInside = false
		}
	}
	if allInside {
		return Positive
	}
	return Partial
}

func (q ViewFrustumQuery) MatchPoint(p point.Point) bool {
	world := q.CoordSys.Decode(p.Position)
	for _, pl := range q.Planes {
		if pl.distance(world) < 0 {
			return false
		}
	}
	return true
}

func worldCorners(b grid.AABB, cs grid.CoordinateSystem) [8][3]float64 {
	min := cs.Decode(b.Min)
	max := cs.Decode(b.Max)
	return [8][3]float64{
		{min[0], min[1], min[2]},
		{max[0], min[1], min[2]},
		{min[0], max[1], min[2]},
		{max[0], max[1], min[2]},
		{min[0], min[1], max[2]},
		{max[0], min[1], max[2]},
		{min[0], max[1], max[2]},
		{max[0], max[1], max[2]},
	}
}
