package codec

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/spatialindex/octree/point"
)

// Compressed wraps the same RLP wire format in snappy block compression,
// the same scheme core/rawdb/freezer_table.go uses for its on-disk blocks —
// a practical stand-in for the original's LAZ-like entropy coder, chosen
// because it is the teacher's own compressed-block idiom.
type Compressed struct{}

func (Compressed) Write(points point.Buffer) ([]byte, error) {
	raw, err := rlp.EncodeToBytes(encodeBuffer(points))
	if err != nil {
		return nil, fmt.Errorf("codec: rlp encode: %w", err)
	}
	return snappy.Encode(nil, raw), nil
}

func (Compressed) Read(data []byte) (point.Buffer, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("codec: snappy decode: %w", err)
	}
	var wire []wirePoint
	if err := rlp.DecodeBytes(raw, &wire); err != nil {
		return nil, fmt.Errorf("codec: rlp decode: %w", err)
	}
	return decodeBuffer(wire), nil
}

func (Compressed) IsCompatibleWith(other Codec) bool {
	_, ok := other.(Compressed)
	return ok
}
