package rawdb

import (
	"fmt"
	"os"
	"path/filepath"
)

// NodeStore reads and writes the one-file-per-cell node files
// (<lod>__<x>-<y>-<z>.bin), matching the original's page_loader.rs naming
// scheme exactly so old indexes remain loadable across restarts.
type NodeStore struct {
	BaseDir string
}

func (s NodeStore) fileName(lod uint8, x, y, z int32) string {
	return filepath.Join(s.BaseDir, fmt.Sprintf("%d__%d-%d-%d.bin", lod, x, y, z))
}

// Load reads the raw bytes for a cell's node file.
func (s NodeStore) Load(lod uint8, x, y, z int32) ([]byte, error) {
	data, err := os.ReadFile(s.fileName(lod, x, y, z))
	if err != nil {
		return nil, fmt.Errorf("rawdb: read node file: %w", err)
	}
	return data, nil
}

// Store writes the raw bytes for a cell's node file, syncing before
// returning (matching the original's File::create+write_all+sync_all).
func (s NodeStore) Store(lod uint8, x, y, z int32, data []byte) error {
	if err := ensureDir(s.fileName(lod, x, y, z)); err != nil {
		return fmt.Errorf("rawdb: create node dir: %w", err)
	}
	f, err := os.Create(s.fileName(lod, x, y, z))
	if err != nil {
		return fmt.Errorf("rawdb: create node file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("rawdb: write node file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("rawdb: sync node file: %w", err)
	}
	return f.Close()
}
