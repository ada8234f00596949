package codec

import "github.com/spatialindex/octree/point"

// wirePoint is the RLP-encodable representation of a point.Point. RLP only
// understands unsigned integers and byte strings, so signed fields are
// carried across as their two's-complement bit pattern and cast back on
// read — encoding and decoding are both lossless, bit-exact round trips.
type wirePoint struct {
	X, Y, Z         uint64
	Intensity       uint16
	ReturnNumber    uint8
	NumberOfReturns uint8
	Classification  uint8
	ScanAngleRank   uint8
	UserData        uint8
	PointSourceID   uint16
	GpsTimeBits     uint64
	ColorR          uint16
	ColorG          uint16
	ColorB          uint16
}

func toWire(p point.Point) wirePoint {
	return wirePoint{
		X:               uint64(p.Position.X),
		Y:               uint64(p.Position.Y),
		Z:               uint64(p.Position.Z),
		Intensity:       p.Intensity,
		ReturnNumber:    p.ReturnNumber,
		NumberOfReturns: p.NumberOfReturns,
		Classification:  p.Classification,
		ScanAngleRank:   uint8(p.ScanAngleRank),
		UserData:        p.UserData,
		PointSourceID:   p.PointSourceID,
		GpsTimeBits:     float64bits(p.GpsTime),
		ColorR:          p.Color.R,
		ColorG:          p.Color.G,
		ColorB:          p.Color.B,
	}
}

func fromWire(w wirePoint) point.Point {
	return point.Point{
		Position:        pos(w.X, w.Y, w.Z),
		Intensity:       w.Intensity,
		ReturnNumber:    w.ReturnNumber,
		NumberOfReturns: w.NumberOfReturns,
		Classification:  w.Classification,
		ScanAngleRank:   int8(w.ScanAngleRank),
		UserData:        w.UserData,
		PointSourceID:   w.PointSourceID,
		GpsTime:         float64frombits(w.GpsTimeBits),
		Color:           point.Color{R: w.ColorR, G: w.ColorG, B: w.ColorB},
	}
}

func encodeBuffer(points point.Buffer) []wirePoint {
	out := make([]wirePoint, len(points))
	for i, p := range points {
		out[i] = toWire(p)
	}
	return out
}

func decodeBuffer(wire []wirePoint) point.Buffer {
	out := make(point.Buffer, len(wire))
	for i, w := range wire {
		out[i] = fromWire(w)
	}
	return out
}
