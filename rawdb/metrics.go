package rawdb

import (
	"fmt"
	"path/filepath"

	"github.com/ethereum/go-ethereum/metrics"
	"github.com/ethereum/go-ethereum/rlp"
)

// metricSample is one named counter in a snapshot. Meters and gauges both
// flatten to a single int64 count/value; histograms are not snapshotted
// (none of this module's registered metrics are histograms).
type metricSample struct {
	Name  string
	Value int64
}

type wireMetricsSnapshot struct {
	Samples []metricSample
}

// SnapshotMetrics walks registry and writes its current meter/gauge values
// to metrics_<n>.cbor in dir (spec §6 "rolling performance metrics"),
// using the RLP codec already wired for the directory and node files
// rather than pulling in a dedicated CBOR library for one optional,
// best-effort file.
func SnapshotMetrics(dir string, n int, registry metrics.Registry) error {
	if registry == nil {
		registry = metrics.DefaultRegistry
	}
	var snap wireMetricsSnapshot
	registry.Each(func(name string, v interface{}) {
		switch m := v.(type) {
		case metrics.Meter:
			snap.Samples = append(snap.Samples, metricSample{Name: name, Value: m.Count()})
		case metrics.Counter:
			snap.Samples = append(snap.Samples, metricSample{Name: name, Value: m.Count()})
		case metrics.Gauge:
			snap.Samples = append(snap.Samples, metricSample{Name: name, Value: m.Value()})
		}
	})

	data, err := rlp.EncodeToBytes(snap)
	if err != nil {
		return fmt.Errorf("rawdb: encode metrics snapshot: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("metrics_%d.cbor", n))
	if err := ensureDir(path); err != nil {
		return fmt.Errorf("rawdb: create metrics dir: %w", err)
	}
	return writeFileAtomic(path, data)
}
