package query

import (
	"testing"

	"github.com/spatialindex/octree/attridx"
	"github.com/spatialindex/octree/grid"
	"github.com/spatialindex/octree/point"
	"github.com/stretchr/testify/require"
)

func box(minX, minY, minZ, maxX, maxY, maxZ int64) grid.AABB {
	return grid.AABB{Min: grid.Position{X: minX, Y: minY, Z: minZ}, Max: grid.Position{X: maxX, Y: maxY, Z: maxZ}}
}

func TestAABBQueryThreeValuedLogic(t *testing.T) {
	q := AABBQuery{Box: box(0, 0, 0, 10, 10, 10)}

	require.Equal(t, Negative, q.MatchNode(NodeContext{Bounds: box(20, 20, 20, 30, 30, 30)}))
	require.Equal(t, Positive, q.MatchNode(NodeContext{Bounds: box(1, 1, 1, 2, 2, 2)}))
	require.Equal(t, Partial, q.MatchNode(NodeContext{Bounds: box(5, 5, 5, 15, 15, 15)}))
}

func TestAndShortCircuitsOnNegative(t *testing.T) {
	q := And{Queries: []Query{
		AABBQuery{Box: box(0, 0, 0, 10, 10, 10)},
		Empty{},
	}}
	require.Equal(t, Negative, q.MatchNode(NodeContext{Bounds: box(1, 1, 1, 2, 2, 2)}))
}

func TestOrShortCircuitsOnPositive(t *testing.T) {
	q := Or{Queries: []Query{Full{}, Empty{}}}
	require.Equal(t, Positive, q.MatchNode(NodeContext{}))
}

func TestNotInvertsButKeepsPartial(t *testing.T) {
	require.Equal(t, Positive, Not{Query: Empty{}}.MatchNode(NodeContext{}))
	require.Equal(t, Negative, Not{Query: Full{}}.MatchNode(NodeContext{}))

	partial := AABBQuery{Box: box(0, 0, 0, 10, 10, 10)}
	require.Equal(t, Partial, Not{Query: partial}.MatchNode(NodeContext{Bounds: box(5, 5, 5, 15, 15, 15)}))
}

func TestAttributeRangeNodePruning(t *testing.T) {
	idx := attridx.New()
	for i := 0; i < 50; i++ {
		idx.Update(point.Point{Intensity: uint16(i)})
	}
	q := AttributeRangeQuery{Range: attridx.Range{Attribute: attridx.AttrIntensity, Low: 200, High: 255}}
	require.Equal(t, Negative, q.MatchNode(NodeContext{Index: &idx}))

	require.Equal(t, Partial, q.MatchNode(NodeContext{Index: nil}))
}

func TestLodCapsResolution(t *testing.T) {
	q := Lod{Max: 2}
	require.Equal(t, Positive, q.MatchNode(NodeContext{Cell: grid.Cell{Lod: 1}}))
	require.Equal(t, Negative, q.MatchNode(NodeContext{Cell: grid.Cell{Lod: 3}}))
}
