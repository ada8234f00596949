// Package rawdb implements the on-disk layout of an index directory:
// settings.json, directory.bin (the grid-cell directory), and the
// per-cell node files (spec component C and §6).
package rawdb

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"
)

// Directory is the persistent set of existing LeveledGridCell keys,
// partitioned by LOD for O(1) per-LOD lookup.
type Directory struct {
	mu    sync.RWMutex
	cells []map[[3]int32]struct{} // one set per LOD
	path  string
	dirty bool
}

type wireDirectory struct {
	Cells [][][3]int32
}

// OpenDirectory loads a directory from path (directory.bin), or returns an
// empty one partitioned into nrLevels LODs if the file does not exist yet.
func OpenDirectory(path string, nrLevels int) (*Directory, error) {
	d := &Directory{path: path, cells: make([]map[[3]int32]struct{}, nrLevels)}
	for i := range d.cells {
		d.cells[i] = make(map[[3]int32]struct{})
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("rawdb: read directory: %w", err)
	}
	var wire wireDirectory
	if err := rlp.DecodeBytes(data, &wire); err != nil {
		return nil, fmt.Errorf("rawdb: %w: corrupt directory file", ErrInvalidFile)
	}
	for lod, cells := range wire.Cells {
		if lod >= len(d.cells) {
			break
		}
		for _, c := range cells {
			d.cells[lod][c] = struct{}{}
		}
	}
	return d, nil
}

// Exists reports whether the cell is present in the directory.
func (d *Directory) Exists(lod uint8, x, y, z int32) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if int(lod) >= len(d.cells) {
		return false
	}
	_, ok := d.cells[lod][[3]int32{x, y, z}]
	return ok
}

// Insert adds the cell, idempotently, and marks the directory dirty.
func (d *Directory) Insert(lod uint8, x, y, z int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for int(lod) >= len(d.cells) {
		d.cells = append(d.cells, make(map[[3]int32]struct{}))
	}
	key := [3]int32{x, y, z}
	if _, ok := d.cells[lod][key]; ok {
		return
	}
	d.cells[lod][key] = struct{}{}
	d.dirty = true
}

// CellsAt returns all cells known to exist at the given LOD.
func (d *Directory) CellsAt(lod uint8) [][3]int32 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if int(lod) >= len(d.cells) {
		return nil
	}
	out := make([][3]int32, 0, len(d.cells[lod]))
	for c := range d.cells[lod] {
		out = append(out, c)
	}
	return out
}

// IsLeaf reports whether no child of (lod,x,y,z) exists in the directory.
func (d *Directory) IsLeaf(lod uint8, x, y, z int32) bool {
	childLod := lod + 1
	d.mu.RLock()
	defer d.mu.RUnlock()
	if int(childLod) >= len(d.cells) {
		return true
	}
	for dx := int32(0); dx < 2; dx++ {
		for dy := int32(0); dy < 2; dy++ {
			for dz := int32(0); dz < 2; dz++ {
				key := [3]int32{x*2 + dx, y*2 + dy, z*2 + dz}
				if _, ok := d.cells[childLod][key]; ok {
					return false
				}
			}
		}
	}
	return true
}

// Flush writes the directory to disk if dirty, via write-to-temp, sync,
// atomic rename.
func (d *Directory) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dirty {
		return nil
	}
	wire := wireDirectory{Cells: make([][][3]int32, len(d.cells))}
	for lod, set := range d.cells {
		cells := make([][3]int32, 0, len(set))
		for c := range set {
			cells = append(cells, c)
		}
		wire.Cells[lod] = cells
	}
	data, err := rlp.EncodeToBytes(wire)
	if err != nil {
		return fmt.Errorf("rawdb: encode directory: %w", err)
	}
	if err := writeFileAtomic(d.path, data); err != nil {
		return err
	}
	d.dirty = false
	return nil
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// writeFileAtomic writes data to path via write-to-temp, sync, rename, so a
// reader never observes a partially written file (spec §4.C/§6 "atomic
// replace semantics").
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("rawdb: create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("rawdb: write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("rawdb: sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("rawdb: close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rawdb: rename file: %w", err)
	}
	return nil
}
