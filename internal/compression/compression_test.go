package compression

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		name    string
		want    Algorithm
		wantErr bool
	}{
		{"", None, false},
		{"none", None, false},
		{"identity", None, false},
		{"Snappy", Snappy, false},
		{" snappy ", Snappy, false},
		{"zstd", "", true},
	}

	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseAlgorithm(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAlgorithm(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestForName(t *testing.T) {
	c, err := ForName("snappy")
	if err != nil {
		t.Fatalf("ForName failed: %v", err)
	}
	if c.Algorithm() != Snappy {
		t.Errorf("Expected Snappy, got %s", c.Algorithm())
	}

	if _, err := ForName("lz4"); err == nil {
		t.Error("Expected error for unsupported algorithm")
	}

	if _, err := GetCompressor(Algorithm("brotli")); err == nil {
		t.Error("Expected error for unsupported algorithm")
	}
}

func TestNoneCompressor(t *testing.T) {
	c := &NoneCompressor{}
	original := []byte(`[{"application_id":"A","model":"OLS","mse":0}]`)

	compressed, err := c.Compress(original)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if !bytes.Equal(original, compressed) {
		t.Error("NoneCompressor.Compress should return identical data")
	}

	decompressed, err := c.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(original, decompressed) {
		t.Error("NoneCompressor.Decompress should return identical data")
	}
}

func TestSnappyCompressor_RoundTrip(t *testing.T) {
	c := NewSnappyCompressor()

	row := `{"application_id":"A","date":"2024-09","model":"RandomForest","prediction":0.93,"mse":0.0004},`
	original := []byte("[" + strings.Repeat(row, 18) + "]")

	compressed, err := c.Compress(original)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if len(compressed) >= len(original) {
		t.Errorf("Expected repetitive payload to shrink: %d >= %d", len(compressed), len(original))
	}

	decompressed, err := c.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(original, decompressed) {
		t.Error("Decompressed data does not match original")
	}
}

func TestSnappyCompressor_EmptyData(t *testing.T) {
	c := NewSnappyCompressor()

	compressed, err := c.Compress(nil)
	if err != nil || len(compressed) != 0 {
		t.Fatalf("Compress(nil) = %v, %v", compressed, err)
	}

	decompressed, err := c.Decompress([]byte{})
	if err != nil || len(decompressed) != 0 {
		t.Fatalf("Decompress(empty) = %v, %v", decompressed, err)
	}
}

func TestSnappyCompressor_InvalidData(t *testing.T) {
	c := NewSnappyCompressor()

	if _, err := c.Decompress([]byte{0xff, 0xff, 0xff, 0xff, 0x0f}); err == nil {
		t.Error("Expected error decompressing invalid data")
	}
}

func TestSnappyCompressor_DecodedLenLimit(t *testing.T) {
	payload := bytes.Repeat([]byte(`{"application_id":"A","date":"2024-09","prediction":0.93}`), 64)

	c := &SnappyCompressor{maxDecodedLen: len(payload) - 1}
	compressed, err := c.Compress(payload)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}

	if _, err := c.Decompress(compressed); err == nil {
		t.Error("Expected error for payload above the decode limit")
	}

	c.maxDecodedLen = len(payload)
	decompressed, err := c.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(payload, decompressed) {
		t.Error("Decompressed payload does not match original")
	}
}

func TestSnappyCompressor_CorruptHeader(t *testing.T) {
	c := NewSnappyCompressor()
	// A varint length header that never terminates.
	if _, err := c.Decompress([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}); err == nil {
		t.Error("Expected error for corrupt header")
	}
}
