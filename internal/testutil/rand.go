// Package testutil provides seeded random generators for tests, mirroring
// the trie package's testutil/rand.go: deterministic, reproducible test
// data instead of time-seeded randomness.
package testutil

import (
	"math/rand"

	"github.com/spatialindex/octree/grid"
	"github.com/spatialindex/octree/point"
)

// RandGen wraps a seeded PRNG with octree-specific generators.
type RandGen struct {
	r *rand.Rand
}

// NewRandGen returns a generator seeded deterministically, so failures are
// reproducible across runs.
func NewRandGen(seed int64) *RandGen {
	return &RandGen{r: rand.New(rand.NewSource(seed))}
}

// Position returns a random integer position with each axis in [-n, n].
func (g *RandGen) Position(n int64) grid.Position {
	return grid.Position{
		X: g.r.Int63n(2*n+1) - n,
		Y: g.r.Int63n(2*n+1) - n,
		Z: g.r.Int63n(2*n+1) - n,
	}
}

// Point returns a point with a random position in [-n,n]^3 and random
// attribute values.
func (g *RandGen) Point(n int64) point.Point {
	return point.Point{
		Position:        g.Position(n),
		Intensity:       uint16(g.r.Intn(65536)),
		ReturnNumber:    uint8(g.r.Intn(8)),
		NumberOfReturns: uint8(g.r.Intn(8)),
		Classification:  uint8(g.r.Intn(256)),
		ScanAngleRank:   int8(g.r.Intn(181) - 90),
		UserData:        uint8(g.r.Intn(256)),
		PointSourceID:   uint16(g.r.Intn(65536)),
		GpsTime:         g.r.Float64() * 1e6,
		Color: point.Color{
			R: uint16(g.r.Intn(65536)),
			G: uint16(g.r.Intn(65536)),
			B: uint16(g.r.Intn(65536)),
		},
	}
}

// Points returns count random points in [-n,n]^3, each with a distinct
// position (rejecting collisions) so callers can reason about "one point
// per sampling cell" scenarios.
func (g *RandGen) Points(count int, n int64) point.Buffer {
	seen := make(map[grid.Position]struct{}, count)
	out := make(point.Buffer, 0, count)
	for len(out) < count {
		p := g.Point(n)
		if _, dup := seen[p.Position]; dup {
			continue
		}
		seen[p.Position] = struct{}{}
		out = append(out, p)
	}
	return out
}
