package query

import (
	"github.com/spatialindex/octree/attridx"
	"github.com/spatialindex/octree/grid"
	"github.com/spatialindex/octree/point"
)

// NodeContext carries everything a leaf query needs to classify a node
// without loading its points: its cell, its integer-space bounds, and its
// attribute index (nil if attribute-index pruning is disabled by
// QueryConfig, in which case AttributeRange queries degrade to Partial).
type NodeContext struct {
	Cell   grid.Cell
	Bounds grid.AABB
	Index  *attridx.Index
}

// Query is a node/point predicate: MatchNode classifies a whole node
// without reading its points (cheap, used to prune traversal);
// MatchPoint filters individual points once a node has been loaded.
type Query interface {
	MatchNode(ctx NodeContext) Result
	MatchPoint(p point.Point) bool
}

// Config toggles the two optional stages of evaluation (spec §4.H).
type Config struct {
	UseAttributeIndex bool // prune nodes via attridx before loading points
	FilterPoints      bool // apply MatchPoint to loaded points (false: return whole node)
}

// Empty never matches anything.
type Empty struct{}

func (Empty) MatchNode(NodeContext) Result { return Negative }
func (Empty) MatchPoint(point.Point) bool  { return false }

// Full matches everything unconditionally.
type Full struct{}

func (Full) MatchNode(NodeContext) Result { return Positive }
func (Full) MatchPoint(point.Point) bool  { return true }

// Lod matches nodes at or below a maximum LOD (coarser-or-equal), used to
// cap the resolution a reader wants to see.
type Lod struct {
	Max grid.LodLevel
}

func (q Lod) MatchNode(ctx NodeContext) Result {
	if ctx.Cell.Lod <= q.Max {
		return Positive
	}
	return Negative
}

func (Lod) MatchPoint(point.Point) bool { return true }

// AABBQuery matches nodes/points inside an axis-aligned integer-space box.
type AABBQuery struct {
	Box grid.AABB
}

func (q AABBQuery) MatchNode(ctx NodeContext) Result {
	if !ctx.Bounds.Intersects(q.Box) {
		return Negative
	}
	if boxContains(q.Box, ctx.Bounds) {
		return Positive
	}
	return Partial
}

func (q AABBQuery) MatchPoint(p point.Point) bool {
	return q.Box.Contains(p.Position)
}

func boxContains(outer, inner grid.AABB) bool {
	return outer.Min.X <= inner.Min.X && outer.Max.X >= inner.Max.X &&
		outer.Min.Y <= inner.Min.Y && outer.Max.Y >= inner.Max.Y &&
		outer.Min.Z <= inner.Min.Z && outer.Max.Z >= inner.Max.Z
}

// AttributeRangeQuery matches nodes/points whose attribute falls within a
// range, pruned at the node level via the attribute index when present.
type AttributeRangeQuery struct {
	Range attridx.Range
}

func (q AttributeRangeQuery) MatchNode(ctx NodeContext) Result {
	if ctx.Index == nil {
		return Partial
	}
	switch ctx.Index.Matches(q.Range) {
	case attridx.DefiniteEmpty:
		return Negative
	default:
		return Partial
	}
}

func (q AttributeRangeQuery) MatchPoint(p point.Point) bool {
	return q.Range.Matching(p)
}

// And combines queries with three-valued AND: a node is pruned as soon as
// any child is Negative.
type And struct {
	Queries []Query
}

func (q And) MatchNode(ctx NodeContext) Result {
	if len(q.Queries) == 0 {
		return Positive
	}
	result := Positive
	for _, sub := range q.Queries {
		result = and(result, sub.MatchNode(ctx))
		if result == Negative {
			return Negative
		}
	}
	return result
}

func (q And) MatchPoint(p point.Point) bool {
	for _, sub := range q.Queries {
		if !sub.MatchPoint(p) {
			return false
		}
	}
	return true
}

// Or combines queries with three-valued OR: a node is accepted as soon as
// any child is Positive.
type Or struct {
	Queries []Query
}

func (q Or) MatchNode(ctx NodeContext) Result {
	if len(q.Queries) == 0 {
		return Negative
	}
	result := Negative
	for _, sub := range q.Queries {
		result = or(result, sub.MatchNode(ctx))
		if result == Positive {
			return Positive
		}
	}
	return result
}

func (q Or) MatchPoint(p point.Point) bool {
	for _, sub := range q.Queries {
		if sub.MatchPoint(p) {
			return true
		}
	}
	return false
}

// Not negates a query under three-valued logic.
type Not struct {
	Query Query
}

func (q Not) MatchNode(ctx NodeContext) Result {
	return not(q.Query.MatchNode(ctx))
}

func (q Not) MatchPoint(p point.Point) bool {
	return !q.Query.MatchPoint(p)
}
