// Package writer implements the priority-driven worker pool that performs
// all mutation of the octree: point insertion, node splitting, and sample
// merging (spec component G).
package writer

import (
	"time"

	"github.com/spatialindex/octree/grid"
	"github.com/spatialindex/octree/point"
)

// Kind distinguishes the three task shapes the pool executes.
type Kind int

const (
	// Insert appends a batch of points to a root cell.
	Insert Kind = iota
	// Split pushes a node's points down into its eight children.
	Split
	// Merge recomputes a node's sampled content from its children.
	Merge
)

func (k Kind) String() string {
	switch k {
	case Insert:
		return "Insert"
	case Split:
		return "Split"
	case Merge:
		return "Merge"
	default:
		return "Unknown"
	}
}

// task is one unit of pending writer work.
type task struct {
	kind   Kind
	cell   grid.Cell
	points point.Buffer // populated for Insert only

	// weight is a throughput estimate used by NrPoints-flavored priority
	// functions: the batch size for Insert, or 1 for Split/Merge (their
	// cost isn't point-proportional at enqueue time).
	weight int

	enqueuedAt time.Time
	sequence   uint64 // monotonic tie-breaker, assigned at enqueue
}
