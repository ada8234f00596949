// Package sampler implements the grid-center sampling strategy used to
// derive a parent node's representative points from its children (spec
// component E).
package sampler

import (
	"github.com/spatialindex/octree/grid"
	"github.com/spatialindex/octree/point"
)

// Sample selects, for each occupied cell of the point-grid at parentLod
// within hier, the single point closest to that cell's center. Ties are
// broken deterministically by comparing the candidates' integer positions,
// so that repeated sampling of identical input always yields identical
// output regardless of iteration order.
//
// Output points are the original records verbatim (no averaging), per spec
// invariant "no averaging, to preserve LiDAR attribute fidelity". A point
// whose position cannot be mapped onto parentLod (out of representable
// range) is skipped rather than failing the whole sample.
func Sample(hier grid.Hierarchy, parentLod grid.LodLevel, pts point.Buffer) point.Buffer {
	type candidate struct {
		point  point.Point
		distSq int64
	}
	best := make(map[grid.Cell]candidate)

	for _, p := range pts {
		cell, err := hier.CellAt(p.Position, parentLod)
		if err != nil {
			continue
		}
		bounds, err := hier.CellBounds(cell)
		if err != nil {
			continue
		}
		center := cellCenter(bounds)
		d := distSq(p.Position, center)

		cur, ok := best[cell]
		if !ok || d < cur.distSq || (d == cur.distSq && less(p.Position, cur.point.Position)) {
			best[cell] = candidate{point: p, distSq: d}
		}
	}

	out := make(point.Buffer, 0, len(best))
	for _, c := range best {
		out = append(out, c.point)
	}
	return out
}

func cellCenter(b grid.AABB) grid.Position {
	return grid.Position{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}

func distSq(a, b grid.Position) int64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return dx*dx + dy*dy + dz*dz
}

// less imposes the stable tie-break order over positions: lexicographic on
// (X, Y, Z).
func less(a, b grid.Position) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}
