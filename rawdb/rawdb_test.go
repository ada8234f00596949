package rawdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/metrics"
	"github.com/stretchr/testify/require"
)

func TestDirectoryInsertIsIdempotent(t *testing.T) {
	d, err := OpenDirectory(filepath.Join(t.TempDir(), "directory.bin"), 4)
	require.NoError(t, err)

	d.Insert(1, 2, 3, 4)
	d.Insert(1, 2, 3, 4)
	require.True(t, d.Exists(1, 2, 3, 4))
	require.Len(t, d.CellsAt(1), 1)
}

func TestDirectoryFlushAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.bin")
	d, err := OpenDirectory(path, 4)
	require.NoError(t, err)
	d.Insert(0, 0, 0, 0)
	d.Insert(1, 0, 0, 0)
	require.NoError(t, d.Flush())

	reopened, err := OpenDirectory(path, 4)
	require.NoError(t, err)
	require.True(t, reopened.Exists(0, 0, 0, 0))
	require.True(t, reopened.Exists(1, 0, 0, 0))
}

func TestDirectoryIsLeaf(t *testing.T) {
	d, err := OpenDirectory(filepath.Join(t.TempDir(), "directory.bin"), 4)
	require.NoError(t, err)
	d.Insert(0, 0, 0, 0)
	require.True(t, d.IsLeaf(0, 0, 0, 0))

	d.Insert(1, 0, 0, 0)
	require.False(t, d.IsLeaf(0, 0, 0, 0))
}

func TestNodeStoreRoundTrip(t *testing.T) {
	store := &NodeStore{BaseDir: t.TempDir()}
	data := []byte{1, 2, 3, 4, 5}
	require.NoError(t, store.Store(2, -1, 2, -3, data))

	got, err := store.Load(2, -1, 2, -3)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestSettingsSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	s := Settings{
		MaxLod:           3,
		MaxBogusInner:    100,
		MaxBogusLeaf:     50,
		PriorityFunction: PriorityNrPoints,
		NumThreads:       4,
	}
	require.NoError(t, SaveSettings(dir, s))

	got, err := LoadSettings(dir)
	require.NoError(t, err)
	require.Equal(t, s.MaxLod, got.MaxLod)
	require.Equal(t, s.PriorityFunction, got.PriorityFunction)
}

func TestSnapshotMetricsWritesFile(t *testing.T) {
	dir := t.TempDir()
	reg := metrics.NewRegistry()
	meter := metrics.NewRegisteredMeter("test/points", reg)
	meter.Mark(42)
	gauge := metrics.NewRegisteredGauge("test/queue", reg)
	gauge.Update(7)

	require.NoError(t, SnapshotMetrics(dir, 1, reg))

	data, err := os.ReadFile(filepath.Join(dir, "metrics_1.cbor"))
	require.NoError(t, err)
	require.NotEmpty(t, data)
}
