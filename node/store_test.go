package node

import (
	"context"
	"testing"

	"github.com/spatialindex/octree/codec"
	"github.com/spatialindex/octree/grid"
	"github.com/spatialindex/octree/point"
	"github.com/spatialindex/octree/rawdb"
	"github.com/stretchr/testify/require"
)

func TestStoreMissReportsNotFound(t *testing.T) {
	dir, err := rawdb.OpenDirectory(t.TempDir()+"/directory.bin", 4)
	require.NoError(t, err)
	store := Store{Files: &rawdb.NodeStore{BaseDir: t.TempDir()}, Dir: dir, Codec: codec.Uncompressed{}}

	n, found, err := store.Load(context.Background(), grid.Cell{Lod: 0})
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, n)
}

func TestStorePersistThenLoadRoundTrips(t *testing.T) {
	base := t.TempDir()
	dir, err := rawdb.OpenDirectory(base+"/directory.bin", 4)
	require.NoError(t, err)
	store := Store{Files: &rawdb.NodeStore{BaseDir: base}, Dir: dir, Codec: codec.Uncompressed{}}

	cell := grid.Cell{Lod: 1, X: 2, Y: -3, Z: 4}
	n := New(cell)
	n.Append(point.Buffer{{Position: grid.Position{X: 1, Y: 2, Z: 3}, Intensity: 9}})

	require.NoError(t, store.Persist(context.Background(), cell, n))
	require.True(t, dir.Exists(1, 2, -3, 4))

	got, found, err := store.Load(context.Background(), cell)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, n.Points, got.Points)
}
