package codec

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/spatialindex/octree/point"
)

// Uncompressed is the packed, codec matching the teacher's own disk
// encoding idiom (core/rawdb, trie/reverse_diff.go): plain RLP over a fixed
// wire struct, no entropy coding.
type Uncompressed struct{}

func (Uncompressed) Write(points point.Buffer) ([]byte, error) {
	data, err := rlp.EncodeToBytes(encodeBuffer(points))
	if err != nil {
		return nil, fmt.Errorf("codec: rlp encode: %w", err)
	}
	return data, nil
}

func (Uncompressed) Read(data []byte) (point.Buffer, error) {
	var wire []wirePoint
	if err := rlp.DecodeBytes(data, &wire); err != nil {
		return nil, fmt.Errorf("codec: rlp decode: %w", err)
	}
	return decodeBuffer(wire), nil
}

func (Uncompressed) IsCompatibleWith(other Codec) bool {
	_, ok := other.(Uncompressed)
	return ok
}
