package rawdb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spatialindex/octree/attridx"
	"github.com/spatialindex/octree/grid"
	"github.com/spatialindex/octree/point"
)

// PriorityFunction selects how the writer pool orders pending tasks
// (spec §4.G / §6).
type PriorityFunction string

const (
	PriorityNrPoints                   PriorityFunction = "NrPoints"
	PriorityLod                        PriorityFunction = "Lod"
	PriorityTaskAge                     PriorityFunction = "TaskAge"
	PriorityNrPointsWeightedByTaskAge   PriorityFunction = "NrPointsWeightedByTaskAge"
	PriorityNrPointsWeightedByNegLod    PriorityFunction = "NrPointsWeightedByNegLod"
)

// Settings is the settings.json document described in spec §6.
type Settings struct {
	UseMetrics        bool                  `json:"use_metrics"`
	NodeHierarchy     grid.Hierarchy        `json:"node_hierarchy"`
	PointHierarchy    grid.Hierarchy        `json:"point_hierarchy"`
	CoordinateSystem  grid.CoordinateSystem `json:"coordinate_system"`
	MaxLod            uint8                 `json:"max_lod"`
	MaxBogusInner     uint32                `json:"max_bogus_inner"`
	MaxBogusLeaf      uint32                `json:"max_bogus_leaf"`
	EnableCompression bool                  `json:"enable_compression"`
	MaxCacheSize      uint32                `json:"max_cache_size"`
	PriorityFunction  PriorityFunction      `json:"priority_function"`
	NumThreads        uint16                `json:"num_threads"`
	PointLayout       point.Layout          `json:"point_layout"`
	AttributeIndexes  []attridx.Config      `json:"attribute_indexes"`
}

func settingsFile(dir string) string {
	return filepath.Join(dir, "settings.json")
}

// LoadSettings reads settings.json from an index directory.
func LoadSettings(dir string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(settingsFile(dir))
	if err != nil {
		return s, fmt.Errorf("rawdb: read settings: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("rawdb: %w: corrupt settings.json", ErrInvalidFile)
	}
	return s, nil
}

// SaveSettings writes settings.json into an index directory, creating the
// directory if necessary.
func SaveSettings(dir string, s Settings) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("rawdb: create index dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("rawdb: encode settings: %w", err)
	}
	return os.WriteFile(settingsFile(dir), data, 0o644)
}
