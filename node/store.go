package node

import (
	"context"
	"fmt"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/spatialindex/octree/codec"
	"github.com/spatialindex/octree/grid"
	"github.com/spatialindex/octree/rawdb"
)

// Store bridges rawdb's per-cell files and the wire codec into a
// pagecache.Loader/Persister over grid.Cell -> *Node. Node bounds and
// histograms are never persisted: they are always rebuilt from the decoded
// point buffer on load, keeping the on-disk format limited to points.
//
// Bytes, if set, is a GC-friendly clean-bytes cache sitting in front of
// disk: a cell evicted from the page cache's decoded-node LRU often still
// has its encoded bytes here, sparing a file read on the next load. This
// mirrors disklayer.go's nodes/states fastcache layer in front of the
// key-value store.
type Store struct {
	Files *rawdb.NodeStore
	Dir   *rawdb.Directory
	Codec codec.Codec
	Bytes *fastcache.Cache
}

// Load implements pagecache.Loader. A cell absent from the directory is not
// an error: it reports found=false so the caller treats it as a fresh,
// empty node.
func (s Store) Load(_ context.Context, cell grid.Cell) (*Node, bool, error) {
	if !s.Dir.Exists(uint8(cell.Lod), cell.X, cell.Y, cell.Z) {
		return nil, false, nil
	}

	key := []byte(cell.String())
	var data []byte
	if s.Bytes != nil {
		if cached, found := s.Bytes.HasGet(nil, key); found {
			data = cached
		}
	}
	if data == nil {
		raw, err := s.Files.Load(uint8(cell.Lod), cell.X, cell.Y, cell.Z)
		if err != nil {
			return nil, false, fmt.Errorf("node: load %s: %w", cell, err)
		}
		data = raw
		if s.Bytes != nil {
			s.Bytes.Set(key, data)
		}
	}

	pts, err := s.Codec.Read(data)
	if err != nil {
		return nil, false, fmt.Errorf("node: decode %s: %w", cell, err)
	}
	n := New(cell)
	n.Replace(pts)
	return n, true, nil
}

// Persist implements pagecache.Persister, writing the node's points,
// registering the cell in the directory, and refreshing the clean-bytes
// cache so a subsequent Load doesn't immediately re-read the file it just
// wrote.
func (s Store) Persist(_ context.Context, cell grid.Cell, n *Node) error {
	data, err := s.Codec.Write(n.Points)
	if err != nil {
		return fmt.Errorf("node: encode %s: %w", cell, err)
	}
	if err := s.Files.Store(uint8(cell.Lod), cell.X, cell.Y, cell.Z, data); err != nil {
		return fmt.Errorf("node: store %s: %w", cell, err)
	}
	s.Dir.Insert(uint8(cell.Lod), cell.X, cell.Y, cell.Z)
	if s.Bytes != nil {
		s.Bytes.Set([]byte(cell.String()), data)
	}
	return nil
}
