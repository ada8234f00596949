package octree

import (
	"context"
	"fmt"

	"github.com/spatialindex/octree/attridx"
	"github.com/spatialindex/octree/bus"
	"github.com/spatialindex/octree/grid"
	"github.com/spatialindex/octree/node"
	"github.com/spatialindex/octree/point"
	"github.com/spatialindex/octree/query"
)

// Reader walks an Index's directory top-down, applying a Query to prune
// whole subtrees and, optionally, individual points (spec §4.H "Reader
// lifecycle").
//
// Node-level pruning is sound but conservative relative to the spec's
// "prune without loading points" framing: because this index does not
// persist bounds/histograms separately from a node's point payload (see
// node.Store), a node on the traversal path must still be loaded through
// the cache to read its index, even when attribute-index pruning then
// discards it without returning any points to the caller.
type Reader struct {
	index *Index
	sub   *bus.Subscription

	query query.Query
	cfg   query.Config

	pending []grid.Cell
}

// SetQuery swaps the active query and resets traversal to the directory's
// root cells.
func (r *Reader) SetQuery(q query.Query, cfg query.Config) {
	r.query = q
	r.cfg = cfg
	r.pending = r.index.directory.CellsAt(0)
	roots := make([]grid.Cell, 0, len(r.pending))
	for _, c := range r.pending {
		roots = append(roots, grid.Cell{Lod: 0, X: c[0], Y: c[1], Z: c[2]})
	}
	r.pending = roots
}

// LoadOne returns the next node matching the active query, traversing
// depth-first from the roots, or ok=false once the traversal is exhausted.
func (r *Reader) LoadOne(ctx context.Context) (result ResultNode, ok bool, err error) {
	for len(r.pending) > 0 {
		n := len(r.pending) - 1
		cell := r.pending[n]
		r.pending = r.pending[:n]

		bounds, berr := r.index.settings.NodeHierarchy.CellBounds(cell)
		if berr != nil {
			continue // cell outside representable range; nothing under it either
		}

		var matched query.Result
		var nodePoints point.Buffer

		viewErr := r.index.cache.View(ctx, cell, func(nd *node.Node, exists bool) error {
			if !exists || nd == nil {
				matched = query.Negative
				return nil
			}
			var idxPtr *attridx.Index
			if r.cfg.UseAttributeIndex {
				idxPtr = &nd.Index
			}
			matched = r.query.MatchNode(query.NodeContext{Cell: cell, Bounds: bounds, Index: idxPtr})
			if matched != query.Negative {
				nodePoints = append(nodePoints, nd.Points...)
			}
			return nil
		})
		if viewErr != nil {
			return ResultNode{}, false, fmt.Errorf("octree: load_one %s: %w", cell, viewErr)
		}

		if matched == query.Negative {
			continue
		}

		for _, child := range grid.Children(cell) {
			if r.index.directory.Exists(uint8(child.Lod), child.X, child.Y, child.Z) {
				r.pending = append(r.pending, child)
			}
		}

		out := nodePoints
		if r.cfg.FilterPoints {
			filtered := out[:0:0]
			for _, p := range out {
				if r.query.MatchPoint(p) {
					filtered = append(filtered, p)
				}
			}
			out = filtered
		}
		return ResultNode{Cell: cell, Points: out}, true, nil
	}
	return ResultNode{}, false, nil
}

// UpdateOne returns the next pending change notification, or ok=false if
// none is currently pending. If the subscription overflowed since the
// last call, it returns a single Resync update instead (and the caller
// should re-run SetQuery to rebuild its view).
func (r *Reader) UpdateOne() (Update, bool) {
	if r.sub.Stale() {
		return Update{Kind: Resync}, true
	}
	select {
	case cell := <-r.sub.Changes():
		return Update{Kind: Replace, Cell: cell}, true
	default:
		return Update{}, false
	}
}

// Close unsubscribes the reader from the bus.
func (r *Reader) Close() {
	r.sub.Close()
}
