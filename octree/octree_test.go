package octree

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spatialindex/octree/grid"
	"github.com/spatialindex/octree/point"
	"github.com/spatialindex/octree/query"
	"github.com/spatialindex/octree/rawdb"
	"github.com/stretchr/testify/require"
)

const (
	mustSucceedWithin = 5 * time.Second
	pollEvery         = 2 * time.Millisecond
)

func testSettings() rawdb.Settings {
	return rawdb.Settings{
		NodeHierarchy:    grid.Hierarchy{Shift: 20},
		PointHierarchy:   grid.Hierarchy{Shift: 28},
		CoordinateSystem: grid.CoordinateSystem{Scale: [3]float64{0.001, 0.001, 0.001}, Offset: [3]float64{0, 0, 0}},
		MaxLod:           3,
		MaxBogusInner:    10,
		MaxBogusLeaf:     10,
		MaxCacheSize:     1000,
		PriorityFunction: rawdb.PriorityNrPoints,
		NumThreads:       2,
	}
}

func TestSinglePointEndToEnd(t *testing.T) {
	ix, err := Create(t.TempDir(), testSettings())
	require.NoError(t, err)

	w := ix.Writer()
	require.NoError(t, w.Insert(point.Buffer{{Position: grid.Position{X: 0, Y: 0, Z: 0}, Intensity: 5}}))

	require.Eventually(t, func() bool { return w.NrPointsWaiting() == 0 }, mustSucceedWithin, pollEvery)
	require.NoError(t, w.Close(context.Background()))
	require.NoError(t, ix.Flush(context.Background()))

	r := ix.Reader(query.Full{}, query.Config{FilterPoints: true})
	defer r.Close()

	result, ok, err := r.LoadOne(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, grid.Cell{Lod: 0}, result.Cell)
	require.Len(t, result.Points, 1)
	require.EqualValues(t, 5, result.Points[0].Intensity)

	_, ok, err = r.LoadOne(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAABBQueryPrunesNodesOutsideBox(t *testing.T) {
	ix, err := Create(t.TempDir(), testSettings())
	require.NoError(t, err)

	w := ix.Writer()
	inBox := point.Buffer{{Position: grid.Position{X: 10, Y: 10, Z: 10}}}
	outOfBox := point.Buffer{{Position: grid.Position{X: 5_000_000, Y: 5_000_000, Z: 5_000_000}}}
	require.NoError(t, w.Insert(inBox))
	require.NoError(t, w.Insert(outOfBox))
	require.Eventually(t, func() bool { return w.NrPointsWaiting() == 0 }, mustSucceedWithin, pollEvery)
	require.NoError(t, w.Close(context.Background()))

	box := query.AABBQuery{Box: grid.AABB{Min: grid.Position{X: -100, Y: -100, Z: -100}, Max: grid.Position{X: 100, Y: 100, Z: 100}}}
	r := ix.Reader(box, query.Config{FilterPoints: true})
	defer r.Close()

	var seen []point.Point
	for {
		result, ok, err := r.LoadOne(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		seen = append(seen, result.Points...)
	}
	require.Len(t, seen, 1)
	require.Equal(t, grid.Position{X: 10, Y: 10, Z: 10}, seen[0].Position)
}

func TestFlushWritesMetricsSnapshotWhenEnabled(t *testing.T) {
	settings := testSettings()
	settings.UseMetrics = true
	dir := t.TempDir()

	ix, err := Create(dir, settings)
	require.NoError(t, err)

	w := ix.Writer()
	require.NoError(t, w.Insert(point.Buffer{{Position: grid.Position{X: 1, Y: 1, Z: 1}, Intensity: 9}}))
	require.Eventually(t, func() bool { return w.NrPointsWaiting() == 0 }, mustSucceedWithin, pollEvery)
	require.NoError(t, w.Close(context.Background()))

	require.NoError(t, ix.Flush(context.Background()))
	data, err := os.ReadFile(filepath.Join(dir, "metrics_1.cbor"))
	require.NoError(t, err)
	require.NotEmpty(t, data)

	require.NoError(t, ix.Flush(context.Background()))
	_, err = os.Stat(filepath.Join(dir, "metrics_2.cbor"))
	require.NoError(t, err)
}
