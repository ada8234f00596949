package attridx

import "github.com/spatialindex/octree/point"

// Index is the per-node attribute index: exact bounds plus histograms, used
// together to prune queries before a node's points are loaded from disk.
type Index struct {
	Bounds     Bounds
	Histograms Histograms
}

// New returns an empty index, ready for Update.
func New() Index {
	return Index{Histograms: NewHistograms()}
}

// Update folds one point into the bounds and histograms. O(attributes).
func (idx *Index) Update(p point.Point) {
	idx.Bounds.Update(p)
	idx.Histograms.Intensity.Add(p.Intensity)
	idx.Histograms.ReturnNumber.Add(p.ReturnNumber)
	idx.Histograms.NumberOfReturns.Add(p.NumberOfReturns)
	idx.Histograms.Classification.Add(p.Classification)
	idx.Histograms.ScanAngleRank.Add(p.ScanAngleRank)
	idx.Histograms.UserData.Add(p.UserData)
	idx.Histograms.PointSourceID.Add(p.PointSourceID)
	idx.Histograms.ColorR.Add(p.Color.R)
	idx.Histograms.ColorG.Add(p.Color.G)
	idx.Histograms.ColorB.Add(p.Color.B)
}

// Merge lifts a child's index into the parent.
func (idx *Index) Merge(other Index) {
	idx.Bounds.Merge(other.Bounds)
	idx.Histograms.Intensity.AddHistogram(other.Histograms.Intensity)
	idx.Histograms.ReturnNumber.AddHistogram(other.Histograms.ReturnNumber)
	idx.Histograms.NumberOfReturns.AddHistogram(other.Histograms.NumberOfReturns)
	idx.Histograms.Classification.AddHistogram(other.Histograms.Classification)
	idx.Histograms.ScanAngleRank.AddHistogram(other.Histograms.ScanAngleRank)
	idx.Histograms.UserData.AddHistogram(other.Histograms.UserData)
	idx.Histograms.PointSourceID.AddHistogram(other.Histograms.PointSourceID)
	idx.Histograms.ColorR.AddHistogram(other.Histograms.ColorR)
	idx.Histograms.ColorG.AddHistogram(other.Histograms.ColorG)
	idx.Histograms.ColorB.AddHistogram(other.Histograms.ColorB)
}

// MatchResult is the outcome of testing a node against a predicate without
// loading its points.
type MatchResult int

const (
	DefiniteEmpty MatchResult = iota
	MayMatch
)

// Attribute names a scalar attribute that can be range-filtered, restoring
// the original's LasPointAttributeBounds concept as a typed enum instead of
// one optional field per attribute.
type Attribute int

const (
	AttrIntensity Attribute = iota
	AttrReturnNumber
	AttrNumberOfReturns
	AttrClassification
	AttrScanAngleRank
	AttrUserData
	AttrPointSourceID
	AttrColorR
	AttrColorG
	AttrColorB
	AttrGpsTime
)

// Range is an inclusive [Low,High] bound on one attribute, restoring the
// original's per-attribute AttributeBounds predicate.
type Range struct {
	Attribute  Attribute
	Low, High  float64
}

// Matches reports whether the node's index can rule out the range entirely.
// If the index was built without histograms for an attribute this always
// returns MayMatch for it; Bounds are always checked first since they are
// exact.
func (idx *Index) Matches(r Range) MatchResult {
	b := idx.Bounds
	switch r.Attribute {
	case AttrIntensity:
		if !overlaps(float64(b.MinIntensity), float64(b.MaxIntensity), r) {
			return DefiniteEmpty
		}
		if !idx.Histograms.Intensity.RangeContainsValues(uint16(clamp(r.Low, 0, 65535)), uint16(clamp(r.High, 0, 65535))) {
			return DefiniteEmpty
		}
	case AttrReturnNumber:
		if !overlaps(float64(b.MinReturnNumber), float64(b.MaxReturnNumber), r) {
			return DefiniteEmpty
		}
		if !idx.Histograms.ReturnNumber.RangeContainsValues(uint8(clamp(r.Low, 0, 255)), uint8(clamp(r.High, 0, 255))) {
			return DefiniteEmpty
		}
	case AttrNumberOfReturns:
		if !overlaps(float64(b.MinNumberOfReturns), float64(b.MaxNumberOfReturns), r) {
			return DefiniteEmpty
		}
		if !idx.Histograms.NumberOfReturns.RangeContainsValues(uint8(clamp(r.Low, 0, 255)), uint8(clamp(r.High, 0, 255))) {
			return DefiniteEmpty
		}
	case AttrClassification:
		if !overlaps(float64(b.MinClassification), float64(b.MaxClassification), r) {
			return DefiniteEmpty
		}
		if !idx.Histograms.Classification.RangeContainsValues(uint8(clamp(r.Low, 0, 255)), uint8(clamp(r.High, 0, 255))) {
			return DefiniteEmpty
		}
	case AttrScanAngleRank:
		if !overlaps(float64(b.MinScanAngleRank), float64(b.MaxScanAngleRank), r) {
			return DefiniteEmpty
		}
		if !idx.Histograms.ScanAngleRank.RangeContainsValues(int8(clamp(r.Low, -128, 127)), int8(clamp(r.High, -128, 127))) {
			return DefiniteEmpty
		}
	case AttrUserData:
		if !overlaps(float64(b.MinUserData), float64(b.MaxUserData), r) {
			return DefiniteEmpty
		}
		if !idx.Histograms.UserData.RangeContainsValues(uint8(clamp(r.Low, 0, 255)), uint8(clamp(r.High, 0, 255))) {
			return DefiniteEmpty
		}
	case AttrPointSourceID:
		if !overlaps(float64(b.MinPointSourceID), float64(b.MaxPointSourceID), r) {
			return DefiniteEmpty
		}
		if !idx.Histograms.PointSourceID.RangeContainsValues(uint16(clamp(r.Low, 0, 65535)), uint16(clamp(r.High, 0, 65535))) {
			return DefiniteEmpty
		}
	case AttrColorR:
		if !overlaps(float64(b.MinColorR), float64(b.MaxColorR), r) {
			return DefiniteEmpty
		}
		if !idx.Histograms.ColorR.RangeContainsValues(uint16(clamp(r.Low, 0, 65535)), uint16(clamp(r.High, 0, 65535))) {
			return DefiniteEmpty
		}
	case AttrColorG:
		if !overlaps(float64(b.MinColorG), float64(b.MaxColorG), r) {
			return DefiniteEmpty
		}
		if !idx.Histograms.ColorG.RangeContainsValues(uint16(clamp(r.Low, 0, 65535)), uint16(clamp(r.High, 0, 65535))) {
			return DefiniteEmpty
		}
	case AttrColorB:
		if !overlaps(float64(b.MinColorB), float64(b.MaxColorB), r) {
			return DefiniteEmpty
		}
		if !idx.Histograms.ColorB.RangeContainsValues(uint16(clamp(r.Low, 0, 65535)), uint16(clamp(r.High, 0, 65535))) {
			return DefiniteEmpty
		}
	case AttrGpsTime:
		if !overlaps(b.MinGpsTime, b.MaxGpsTime, r) {
			return DefiniteEmpty
		}
		// No histogram is kept for the wide, mostly-monotonic GPS time
		// attribute; bounds alone are the pruning signal.
	}
	return MayMatch
}

func overlaps(lo, hi float64, r Range) bool {
	return hi >= r.Low && lo <= r.High
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Matching evaluates a Point directly against a Range, used by
// component H's per-point filtering stage once a node has been loaded.
func (r Range) Matching(p point.Point) bool {
	var v float64
	switch r.Attribute {
	case AttrIntensity:
		v = float64(p.Intensity)
	case AttrReturnNumber:
		v = float64(p.ReturnNumber)
	case AttrNumberOfReturns:
		v = float64(p.NumberOfReturns)
	case AttrClassification:
		v = float64(p.Classification)
	case AttrScanAngleRank:
		v = float64(p.ScanAngleRank)
	case AttrUserData:
		v = float64(p.UserData)
	case AttrPointSourceID:
		v = float64(p.PointSourceID)
	case AttrColorR:
		v = float64(p.Color.R)
	case AttrColorG:
		v = float64(p.Color.G)
	case AttrColorB:
		v = float64(p.Color.B)
	case AttrGpsTime:
		v = p.GpsTime
	}
	return v >= r.Low && v <= r.High
}
