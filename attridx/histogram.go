package attridx

import "golang.org/x/exp/constraints"

// Histogram is a fixed-bin counter over an attribute's value range, used to
// prune queries without loading a node's points. Bin boundaries are set once
// at construction; Add always counts a value somewhere, even if it falls
// outside [low,high], by clamping to the edge bin — this preserves the
// soundness invariant (the histogram's counted range is always a
// conservative superset of the true range).
type Histogram[T constraints.Integer] struct {
	Low, High T
	Bins      []uint64
}

// NewHistogram creates a histogram over [low,high] with the given bin count,
// matching the bin-count constants from the original attribute histograms
// (25 for 8/16-bit ranges, 8 for small enumerated ranges).
func NewHistogram[T constraints.Integer](low, high T, nrBins int) Histogram[T] {
	if nrBins < 1 {
		nrBins = 1
	}
	return Histogram[T]{Low: low, High: high, Bins: make([]uint64, nrBins)}
}

func (h *Histogram[T]) binOf(v T) int {
	if len(h.Bins) == 1 {
		return 0
	}
	span := int64(h.High) - int64(h.Low)
	if span <= 0 {
		return 0
	}
	idx := (int64(v) - int64(h.Low)) * int64(len(h.Bins)) / (span + 1)
	if idx < 0 {
		idx = 0
	}
	if idx >= int64(len(h.Bins)) {
		idx = int64(len(h.Bins)) - 1
	}
	return int(idx)
}

// Add increments the bin that v falls into.
func (h *Histogram[T]) Add(v T) {
	h.Bins[h.binOf(v)]++
}

// AddHistogram folds another histogram with identical bin layout into this
// one (component F "merge", lifting a child index into its parent).
func (h *Histogram[T]) AddHistogram(other Histogram[T]) {
	for i := range h.Bins {
		if i < len(other.Bins) {
			h.Bins[i] += other.Bins[i]
		}
	}
}

// RangeContainsValues reports whether any bin touching [lo,hi] has a
// non-zero count. A false result means the node is Definite-Empty for this
// attribute range; true only means May-Match (the bin granularity can't
// prove a value actually present).
func (h *Histogram[T]) RangeContainsValues(lo, hi T) bool {
	if hi < h.Low || lo > h.High {
		return false
	}
	loBin := h.binOf(maxOrdered(lo, h.Low))
	hiBin := h.binOf(minOrdered(hi, h.High))
	for i := loBin; i <= hiBin && i < len(h.Bins); i++ {
		if h.Bins[i] > 0 {
			return true
		}
	}
	return false
}

func minOrdered[T constraints.Ordered](a, b T) T {
	if b < a {
		return b
	}
	return a
}

func maxOrdered[T constraints.Ordered](a, b T) T {
	if b > a {
		return b
	}
	return a
}

// bin-count constants, taken verbatim from the original
// attribute_histograms.rs.
const (
	bins8bit  = 25
	bins16bit = 25
	binsSmall = 8
)

// Histograms aggregates one histogram per attribute that participates in
// query pruning.
type Histograms struct {
	Intensity       Histogram[uint16]
	ReturnNumber    Histogram[uint8]
	NumberOfReturns Histogram[uint8]
	Classification  Histogram[uint8]
	ScanAngleRank   Histogram[int8]
	UserData        Histogram[uint8]
	PointSourceID   Histogram[uint16]
	ColorR          Histogram[uint16]
	ColorG          Histogram[uint16]
	ColorB          Histogram[uint16]
}

// NewHistograms builds a fresh set of empty histograms with the original
// project's bin layout.
func NewHistograms() Histograms {
	return Histograms{
		Intensity:       NewHistogram[uint16](0, 65535, bins16bit),
		ReturnNumber:    NewHistogram[uint8](0, 7, binsSmall),
		NumberOfReturns: NewHistogram[uint8](0, 7, binsSmall),
		Classification:  NewHistogram[uint8](0, 255, bins8bit),
		ScanAngleRank:   NewHistogram[int8](-90, 90, bins8bit),
		UserData:        NewHistogram[uint8](0, 255, bins8bit),
		PointSourceID:   NewHistogram[uint16](0, 65535, bins16bit),
		ColorR:          NewHistogram[uint16](0, 65535, bins16bit),
		ColorG:          NewHistogram[uint16](0, 65535, bins16bit),
		ColorB:          NewHistogram[uint16](0, 65535, bins16bit),
	}
}
