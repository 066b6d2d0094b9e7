package compression

import (
	"fmt"

	"github.com/golang/snappy"
)

// MaxDecodedLen bounds the decoded size of one queue payload
const MaxDecodedLen = 16 << 20

// SnappyCompressor compresses queue payloads with the Snappy block format
type SnappyCompressor struct {
	maxDecodedLen int
}

// NewSnappyCompressor creates a Snappy compressor with the default decode limit
func NewSnappyCompressor() *SnappyCompressor {
	return &SnappyCompressor{maxDecodedLen: MaxDecodedLen}
}

// Compress encodes one payload as a single Snappy block
func (s *SnappyCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}
	return snappy.Encode(nil, data), nil
}

// Decompress decodes a Snappy block. The length announced in the block
// header is checked against the limit before anything is allocated.
func (s *SnappyCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	n, err := snappy.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("snappy header: %w", err)
	}
	if limit := s.limit(); n > limit {
		return nil, fmt.Errorf("snappy payload decodes to %d bytes, limit is %d", n, limit)
	}

	decoded, err := snappy.Decode(make([]byte, n), data)
	if err != nil {
		return nil, fmt.Errorf("snappy decode: %w", err)
	}
	return decoded, nil
}

func (s *SnappyCompressor) limit() int {
	if s.maxDecodedLen <= 0 {
		return MaxDecodedLen
	}
	return s.maxDecodedLen
}

// Algorithm returns Snappy
func (s *SnappyCompressor) Algorithm() Algorithm {
	return Snappy
}
