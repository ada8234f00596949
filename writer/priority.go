package writer

import (
	"time"

	"github.com/spatialindex/octree/rawdb"
)

// priorityFunc scores a task; the queue always pops the highest score.
// Ties are broken by (lod, pos, sequence) regardless of which function is
// in use (spec §4.G).
type priorityFunc func(t *task, now time.Time) float64

func priorityFuncFor(name rawdb.PriorityFunction) priorityFunc {
	switch name {
	case rawdb.PriorityNrPoints:
		return func(t *task, _ time.Time) float64 { return float64(t.weight) }
	case rawdb.PriorityLod:
		return func(t *task, _ time.Time) float64 { return -float64(t.cell.Lod) }
	case rawdb.PriorityTaskAge:
		return func(t *task, now time.Time) float64 { return now.Sub(t.enqueuedAt).Seconds() }
	case rawdb.PriorityNrPointsWeightedByTaskAge:
		return func(t *task, now time.Time) float64 {
			return float64(t.weight) * now.Sub(t.enqueuedAt).Seconds()
		}
	case rawdb.PriorityNrPointsWeightedByNegLod:
		return func(t *task, _ time.Time) float64 {
			return float64(t.weight) / float64(t.cell.Lod+1)
		}
	default:
		return priorityFuncFor(rawdb.PriorityNrPoints)
	}
}
