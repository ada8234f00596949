// Package attridx implements the per-node attribute index: exact bounds and
// fixed-bin histograms used to prune queries without loading a node's
// points, grounded on the original lidarserv's attribute_histograms.rs.
package attridx

import "github.com/spatialindex/octree/point"

// Bounds holds exact per-attribute min/max observed in a node. A freshly
// created Bounds is "empty" (Count == 0); Update establishes the first
// values.
type Bounds struct {
	Count int

	MinPos, MaxPos                               [3]int64
	MinIntensity, MaxIntensity                     uint16
	MinReturnNumber, MaxReturnNumber               uint8
	MinNumberOfReturns, MaxNumberOfReturns         uint8
	MinClassification, MaxClassification           uint8
	MinScanAngleRank, MaxScanAngleRank             int8
	MinUserData, MaxUserData                       uint8
	MinPointSourceID, MaxPointSourceID             uint16
	MinGpsTime, MaxGpsTime                         float64
	MinColorR, MaxColorR, MinColorG, MaxColorG     uint16
	MinColorB, MaxColorB                           uint16
}

// Update folds one point's attributes into the bounds.
func (b *Bounds) Update(p point.Point) {
	if b.Count == 0 {
		b.MinPos = [3]int64{p.Position.X, p.Position.Y, p.Position.Z}
		b.MaxPos = b.MinPos
		b.MinIntensity, b.MaxIntensity = p.Intensity, p.Intensity
		b.MinReturnNumber, b.MaxReturnNumber = p.ReturnNumber, p.ReturnNumber
		b.MinNumberOfReturns, b.MaxNumberOfReturns = p.NumberOfReturns, p.NumberOfReturns
		b.MinClassification, b.MaxClassification = p.Classification, p.Classification
		b.MinScanAngleRank, b.MaxScanAngleRank = p.ScanAngleRank, p.ScanAngleRank
		b.MinUserData, b.MaxUserData = p.UserData, p.UserData
		b.MinPointSourceID, b.MaxPointSourceID = p.PointSourceID, p.PointSourceID
		b.MinGpsTime, b.MaxGpsTime = p.GpsTime, p.GpsTime
		b.MinColorR, b.MaxColorR = p.Color.R, p.Color.R
		b.MinColorG, b.MaxColorG = p.Color.G, p.Color.G
		b.MinColorB, b.MaxColorB = p.Color.B, p.Color.B
		b.Count = 1
		return
	}
	b.MinPos[0], b.MaxPos[0] = minI64(b.MinPos[0], p.Position.X), maxI64(b.MaxPos[0], p.Position.X)
	b.MinPos[1], b.MaxPos[1] = minI64(b.MinPos[1], p.Position.Y), maxI64(b.MaxPos[1], p.Position.Y)
	b.MinPos[2], b.MaxPos[2] = minI64(b.MinPos[2], p.Position.Z), maxI64(b.MaxPos[2], p.Position.Z)
	b.MinIntensity, b.MaxIntensity = minU16(b.MinIntensity, p.Intensity), maxU16(b.MaxIntensity, p.Intensity)
	b.MinReturnNumber, b.MaxReturnNumber = minU8(b.MinReturnNumber, p.ReturnNumber), maxU8(b.MaxReturnNumber, p.ReturnNumber)
	b.MinNumberOfReturns, b.MaxNumberOfReturns = minU8(b.MinNumberOfReturns, p.NumberOfReturns), maxU8(b.MaxNumberOfReturns, p.NumberOfReturns)
	b.MinClassification, b.MaxClassification = minU8(b.MinClassification, p.Classification), maxU8(b.MaxClassification, p.Classification)
	b.MinScanAngleRank, b.MaxScanAngleRank = minI8(b.MinScanAngleRank, p.ScanAngleRank), maxI8(b.MaxScanAngleRank, p.ScanAngleRank)
	b.MinUserData, b.MaxUserData = minU8(b.MinUserData, p.UserData), maxU8(b.MaxUserData, p.UserData)
	b.MinPointSourceID, b.MaxPointSourceID = minU16(b.MinPointSourceID, p.PointSourceID), maxU16(b.MaxPointSourceID, p.PointSourceID)
	b.MinGpsTime, b.MaxGpsTime = minF64(b.MinGpsTime, p.GpsTime), maxF64(b.MaxGpsTime, p.GpsTime)
	b.MinColorR, b.MaxColorR = minU16(b.MinColorR, p.Color.R), maxU16(b.MaxColorR, p.Color.R)
	b.MinColorG, b.MaxColorG = minU16(b.MinColorG, p.Color.G), maxU16(b.MaxColorG, p.Color.G)
	b.MinColorB, b.MaxColorB = minU16(b.MinColorB, p.Color.B), maxU16(b.MaxColorB, p.Color.B)
	b.Count++
}

// Merge lifts a child's bounds into the parent (component F "merge").
func (b *Bounds) Merge(other Bounds) {
	if other.Count == 0 {
		return
	}
	if b.Count == 0 {
		*b = other
		return
	}
	b.MinPos[0], b.MaxPos[0] = minI64(b.MinPos[0], other.MinPos[0]), maxI64(b.MaxPos[0], other.MaxPos[0])
	b.MinPos[1], b.MaxPos[1] = minI64(b.MinPos[1], other.MinPos[1]), maxI64(b.MaxPos[1], other.MaxPos[1])
	b.MinPos[2], b.MaxPos[2] = minI64(b.MinPos[2], other.MinPos[2]), maxI64(b.MaxPos[2], other.MaxPos[2])
	b.MinIntensity, b.MaxIntensity = minU16(b.MinIntensity, other.MinIntensity), maxU16(b.MaxIntensity, other.MaxIntensity)
	b.MinReturnNumber, b.MaxReturnNumber = minU8(b.MinReturnNumber, other.MinReturnNumber), maxU8(b.MaxReturnNumber, other.MaxReturnNumber)
	b.MinNumberOfReturns, b.MaxNumberOfReturns = minU8(b.MinNumberOfReturns, other.MinNumberOfReturns), maxU8(b.MaxNumberOfReturns, other.MaxNumberOfReturns)
	b.MinClassification, b.MaxClassification = minU8(b.MinClassification, other.MinClassification), maxU8(b.MaxClassification, other.MaxClassification)
	b.MinScanAngleRank, b.MaxScanAngleRank = minI8(b.MinScanAngleRank, other.MinScanAngleRank), maxI8(b.MaxScanAngleRank, other.MaxScanAngleRank)
	b.MinUserData, b.MaxUserData = minU8(b.MinUserData, other.MinUserData), maxU8(b.MaxUserData, other.MaxUserData)
	b.MinPointSourceID, b.MaxPointSourceID = minU16(b.MinPointSourceID, other.MinPointSourceID), maxU16(b.MaxPointSourceID, other.MaxPointSourceID)
	b.MinGpsTime, b.MaxGpsTime = minF64(b.MinGpsTime, other.MinGpsTime), maxF64(b.MaxGpsTime, other.MaxGpsTime)
	b.MinColorR, b.MaxColorR = minU16(b.MinColorR, other.MinColorR), maxU16(b.MaxColorR, other.MaxColorR)
	b.MinColorG, b.MaxColorG = minU16(b.MinColorG, other.MinColorG), maxU16(b.MaxColorG, other.MaxColorG)
	b.MinColorB, b.MaxColorB = minU16(b.MinColorB, other.MinColorB), maxU16(b.MaxColorB, other.MaxColorB)
	b.Count += other.Count
}

func minI64(a, b int64) int64 {
	if b < a {
		return b
	}
	return a
}
func maxI64(a, b int64) int64 {
	if b > a {
		return b
	}
	return a
}
func minU16(a, b uint16) uint16 {
	if b < a {
		return b
	}
	return a
}
func maxU16(a, b uint16) uint16 {
	if b > a {
		return b
	}
	return a
}
func minU8(a, b uint8) uint8 {
	if b < a {
		return b
	}
	return a
}
func maxU8(a, b uint8) uint8 {
	if b > a {
		return b
	}
	return a
}
func minI8(a, b int8) int8 {
	if b < a {
		return b
	}
	return a
}
func maxI8(a, b int8) int8 {
	if b > a {
		return b
	}
	return a
}
func minF64(a, b float64) float64 {
	if b < a {
		return b
	}
	return a
}
func maxF64(a, b float64) float64 {
	if b > a {
		return b
	}
	return a
}
