package octree

import (
	"github.com/spatialindex/octree/grid"
	"github.com/spatialindex/octree/point"
	"github.com/spatialindex/octree/query"
)

// Query and QueryConfig are re-exported so callers of this package need not
// import the query package separately for the common case.
type Query = query.Query
type QueryConfig = query.Config

// ResultNode is one node returned by Reader.LoadOne: its cell and the
// points that survived per-point filtering (or the full node content, if
// QueryConfig.FilterPoints is false).
type ResultNode struct {
	Cell   grid.Cell
	Points point.Buffer
}

// UpdateKind classifies an incremental change a Reader observes between
// LoadOne passes (spec §4.H "Add | Remove | Replace").
type UpdateKind int

const (
	// Replace signals a cell's content changed and should be reloaded.
	// The writer pool never deletes cells, so this is the only kind it
	// ever produces; Add/Remove are kept for completeness and for a
	// consumer that tracks presence explicitly.
	Replace UpdateKind = iota
	Add
	Remove
	// Resync signals the reader missed notifications (its subscription
	// overflowed) and must rebuild its view from the directory via a
	// fresh traversal instead of trusting incremental updates.
	Resync
)

// Update is one delta a Reader's consumer should apply to its live view.
type Update struct {
	Kind UpdateKind
	Cell grid.Cell
}
