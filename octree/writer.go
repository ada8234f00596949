package octree

import (
	"context"

	"github.com/spatialindex/octree/point"
	"github.com/spatialindex/octree/writer"
)

// Writer is a client's handle onto an index's writer pool (spec §6
// Writer::insert / Writer::nr_points_waiting).
type Writer struct {
	pool *writer.Pool
}

// Insert enqueues points for indexing. It returns once the points have
// been decomposed into per-root-cell tasks and queued; it does not wait
// for them to be applied.
func (w *Writer) Insert(pts point.Buffer) error {
	return w.pool.Insert(pts)
}

// NrPointsWaiting reports the backlog of points not yet applied to a node;
// client ingest loops should throttle on this (spec §4.G "Backpressure").
func (w *Writer) NrPointsWaiting() int64 {
	return w.pool.NrPointsWaiting()
}

// Close drains the queue, stops the pool's workers, and then flushes the
// index's shared page cache and directory to disk, including entries
// dirtied by other Writers still open on the same Index. Index.Flush
// additionally writes the metrics snapshot when UseMetrics is set.
func (w *Writer) Close(ctx context.Context) error {
	return w.pool.Close(ctx)
}
