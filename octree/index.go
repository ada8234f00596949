// Package octree wires the grid, point, codec, rawdb, pagecache, sampler,
// attridx, writer, query, and bus packages into the client-facing index
// described in spec §6: Open/Create, Writer, Reader, Flush.
package octree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/spatialindex/octree/bus"
	"github.com/spatialindex/octree/codec"
	"github.com/spatialindex/octree/grid"
	"github.com/spatialindex/octree/node"
	"github.com/spatialindex/octree/pagecache"
	"github.com/spatialindex/octree/rawdb"
	"github.com/spatialindex/octree/writer"
)

const directoryFileName = "directory.bin"

// cleanBytesCacheSize bounds the clean-bytes cache fronting disk reads for
// node files, independent of MaxCacheSize (which bounds decoded nodes).
const cleanBytesCacheSize = 32 * 1024 * 1024

// Index is an open octree index directory: settings, directory, page
// cache, and subscription bus. Multiple Writers and Readers may be created
// against one Index.
type Index struct {
	dir      string
	settings rawdb.Settings

	directory *rawdb.Directory
	cache     *pagecache.Cache[grid.Cell, *node.Node]
	bus       *bus.Bus

	metricsSeq atomic.Int64

	log log.Logger
}

// Create initializes a new index directory with the given settings and
// opens it. It fails if settings.json already exists.
func Create(path string, settings rawdb.Settings) (*Index, error) {
	if _, err := os.Stat(filepath.Join(path, "settings.json")); err == nil {
		return nil, fmt.Errorf("octree: create: %s already holds settings.json", path)
	}
	if err := rawdb.SaveSettings(path, settings); err != nil {
		return nil, fmt.Errorf("octree: create: %w", err)
	}
	return Open(path)
}

// Open loads an existing index directory (settings.json, directory.bin,
// and the per-cell node files are read lazily through the cache).
func Open(path string) (*Index, error) {
	settings, err := rawdb.LoadSettings(path)
	if err != nil {
		return nil, fmt.Errorf("octree: open: %w", err)
	}

	nrLevels := int(settings.MaxLod) + 1
	directory, err := rawdb.OpenDirectory(filepath.Join(path, directoryFileName), nrLevels)
	if err != nil {
		return nil, fmt.Errorf("octree: open: %w", err)
	}

	var c codec.Codec = codec.Uncompressed{}
	if settings.EnableCompression {
		c = codec.Compressed{}
	}
	store := node.Store{
		Files: &rawdb.NodeStore{BaseDir: path},
		Dir:   directory,
		Codec: c,
		Bytes: fastcache.New(cleanBytesCacheSize),
	}

	maxResident := int(settings.MaxCacheSize)
	cache := pagecache.New[grid.Cell, *node.Node](store, store, maxResident)

	return &Index{
		dir:       path,
		settings:  settings,
		directory: directory,
		cache:     cache,
		bus:       bus.New(),
		log:       log.New("module", "octree", "path", path),
	}, nil
}

// Settings returns the index's configuration document.
func (ix *Index) Settings() rawdb.Settings { return ix.settings }

// Writer starts a new writer pool bound to this index. Multiple writers
// are permitted; they share the same cache, directory, and bus.
func (ix *Index) Writer() *Writer {
	cfg := writer.Config{
		NodeHierarchy:  ix.settings.NodeHierarchy,
		PointHierarchy: ix.settings.PointHierarchy,
		MaxLod:         grid.LodLevel(ix.settings.MaxLod),
		MaxBogusInner:  ix.settings.MaxBogusInner,
		MaxBogusLeaf:   ix.settings.MaxBogusLeaf,
		NumWorkers:     int(ix.settings.NumThreads),
		Priority:       ix.settings.PriorityFunction,
	}
	return &Writer{pool: writer.New(cfg, ix.cache, ix.directory, ix.bus)}
}

// Reader creates a new reader over this index with the given initial
// query. It subscribes to the bus immediately, so updates published after
// this call (even before the first LoadOne) are observable via UpdateOne.
func (ix *Index) Reader(q Query, cfg QueryConfig) *Reader {
	r := &Reader{
		index: ix,
		sub:   ix.bus.Subscribe(),
	}
	r.SetQuery(q, cfg)
	return r
}

// Flush persists all dirty cache entries and the directory to disk.
func (ix *Index) Flush(ctx context.Context) error {
	start := time.Now()
	if err := ix.cache.Flush(ctx); err != nil {
		return fmt.Errorf("octree: flush: %w", err)
	}
	if err := ix.directory.Flush(); err != nil {
		return fmt.Errorf("octree: flush: %w", err)
	}
	var size int64
	if fi, err := os.Stat(filepath.Join(ix.dir, directoryFileName)); err == nil {
		size = fi.Size()
	}
	if ix.settings.UseMetrics {
		seq := ix.metricsSeq.Add(1)
		if err := rawdb.SnapshotMetrics(ix.dir, int(seq), metrics.DefaultRegistry); err != nil {
			ix.log.Warn("Failed to snapshot metrics", "err", err)
		}
	}
	ix.log.Info("Flushed index", "directory_bytes", common.StorageSize(size), "elapsed", common.PrettyDuration(time.Since(start)))
	return nil
}
