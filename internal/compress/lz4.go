// Package compress provides LZ4 block compression for uint32 columns,
// plus the delta transforms that make sorted columns compress well.
package compress

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// uint32ByteSize is the number of bytes in a uint32.
const uint32ByteSize = 4

// Block tags: LZ4 CompressBlock reports incompressible input with a zero
// written length, in which case the raw bytes are stored instead.
const (
	tagLZ4 byte = iota
	tagRaw
)

// ErrShortDecompress is returned when a block decompresses to fewer values
// than the caller expected.
var ErrShortDecompress = errors.New("short decompress")

// ErrEmptyBlock is returned when a block is too short to carry its tag.
var ErrEmptyBlock = errors.New("empty block")

// Uint32s compresses a slice of uint32-s into a tagged LZ4 block.
func Uint32s(data []uint32) ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := binary.Write(buf, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("encode uint32s: %w", err)
	}

	compressed := make([]byte, 1+lz4.CompressBlockBound(buf.Len()))
	compressed[0] = tagLZ4

	written, err := lz4.CompressBlock(buf.Bytes(), compressed[1:], nil)
	if err != nil {
		return nil, fmt.Errorf("compress block: %w", err)
	}

	if written == 0 {
		return append([]byte{tagRaw}, buf.Bytes()...), nil
	}

	return compressed[:1+written], nil
}

// ToUint32s decompresses a block produced by Uint32s into result, which
// must be preallocated to the original length.
func ToUint32s(data []byte, result []uint32) error {
	if len(data) == 0 {
		return ErrEmptyBlock
	}

	want := len(result) * uint32ByteSize
	decompressed := make([]byte, want)

	if data[0] == tagRaw {
		if copied := copy(decompressed, data[1:]); copied != want {
			return fmt.Errorf("%w: %d bytes instead of %d", ErrShortDecompress, copied, want)
		}
	} else {
		read, err := lz4.UncompressBlock(data[1:], decompressed)
		if err != nil {
			return fmt.Errorf("decompress block: %w", err)
		}

		if read != want {
			return fmt.Errorf("%w: %d bytes instead of %d", ErrShortDecompress, read, want)
		}
	}

	if err := binary.Read(bytes.NewReader(decompressed), binary.LittleEndian, result); err != nil {
		return fmt.Errorf("decode uint32s: %w", err)
	}

	return nil
}

// DeltaEncode replaces each element with the difference from its
// predecessor, in place. The first element is left unchanged. Sorted
// sequences become small, repetitive values that compress much better.
func DeltaEncode(data []uint32) {
	for i := len(data) - 1; i > 0; i-- {
		data[i] -= data[i-1]
	}
}

// DeltaDecode performs a prefix-sum in place, restoring the values
// transformed by DeltaEncode.
func DeltaDecode(data []uint32) {
	for i := 1; i < len(data); i++ {
		data[i] += data[i-1]
	}
}
