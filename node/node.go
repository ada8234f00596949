// Package node defines the in-memory storage unit of the octree: a cell's
// points together with its attribute index and bogus-point bookkeeping.
package node

import (
	"github.com/spatialindex/octree/attridx"
	"github.com/spatialindex/octree/grid"
	"github.com/spatialindex/octree/point"
)

// Node is the unit of storage for one LeveledGridCell.
type Node struct {
	Cell grid.Cell

	Points point.Buffer
	Index  attridx.Index

	// BogusCount is the number of points appended since the node's content
	// was last replaced by a Split commit — the Split-decision budget
	// (max_bogus_leaf for a leaf cell, max_bogus_inner otherwise).
	BogusCount uint32
}

// New returns an empty node for the given cell.
func New(cell grid.Cell) *Node {
	return &Node{Cell: cell, Index: attridx.New()}
}

// Append adds points to the node, updating the attribute index and the
// bogus counter.
func (n *Node) Append(pts point.Buffer) {
	for _, p := range pts {
		n.Points = append(n.Points, p)
		n.Index.Update(p)
	}
	n.BogusCount += uint32(len(pts))
}

// Replace swaps the node's content wholesale (used when a Split commits the
// parent-level sample), resetting the bogus counter.
func (n *Node) Replace(pts point.Buffer) {
	n.Points = pts
	n.Index = attridx.New()
	for _, p := range pts {
		n.Index.Update(p)
	}
	n.BogusCount = 0
}
