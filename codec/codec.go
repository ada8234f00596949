// Package codec encodes and decodes a node's point buffer to and from bytes.
// The page cache and writer pool depend only on this interface, never on a
// concrete byte format (spec component B).
package codec

import "github.com/spatialindex/octree/point"

// Codec turns a point buffer into bytes and back.
type Codec interface {
	// Write serializes points into a newly allocated byte slice.
	Write(points point.Buffer) ([]byte, error)
	// Read deserializes points previously produced by Write.
	Read(data []byte) (point.Buffer, error)
	// IsCompatibleWith reports whether data written by other can be read by
	// this codec (used when reopening an index with a changed
	// enable_compression setting).
	IsCompatibleWith(other Codec) bool
}
