// Package point defines the point layout and in-memory point record used
// throughout the octree index, matching the LAS-style attribute set restored
// from the original lidarserv point layout (intensity, classification,
// return info, GPS time, color).
package point

import "github.com/spatialindex/octree/grid"

// DataType identifies the wire/in-memory type of a point attribute.
type DataType uint8

const (
	U8 DataType = iota
	I8
	U16
	I16
	U32
	I32
	F32
	F64
)

// AttributeSpec names one attribute of a point layout.
type AttributeSpec struct {
	Name     string   `json:"name"`
	DataType DataType `json:"datatype"`
}

// Layout is an ordered list of typed attributes a Point carries. It is
// persisted in settings.json; the codecs do not consult it and always
// encode every attribute of the concrete Point below. Layout documents
// which attributes are meaningful for a given index (unused attributes are
// left at their zero value).
type Layout struct {
	Attributes []AttributeSpec `json:"point_layout"`
}

// Color is an RGB triple as stored by LAS point formats that carry color.
type Color struct {
	R, G, B uint16
}

// Point is one LiDAR point record. All attributes from the original LAS
// point layout are represented directly; this trades a little memory for
// avoiding reflection-driven (de)serialization on the hot ingestion path.
type Point struct {
	Position        grid.Position
	Intensity       uint16
	ReturnNumber    uint8
	NumberOfReturns uint8
	Classification  uint8
	ScanAngleRank   int8
	UserData        uint8
	PointSourceID   uint16
	GpsTime         float64
	Color           Color
}

// Buffer is an ordered sequence of points, the unit the codec and sampler
// operate on.
type Buffer []Point

// Clone returns an independent copy of the buffer.
func (b Buffer) Clone() Buffer {
	out := make(Buffer, len(b))
	copy(out, b)
	return out
}
