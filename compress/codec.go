// Package compress provides the pluggable compression codecs used to spill
// the index builder's external-sort runs to disk (SPEC_FULL.md §2 domain
// stack). Compression here is strictly an internal build-time optimization:
// the final six on-disk files the builder emits are never compressed by
// this package.
package compress

import "fmt"

// Algorithm identifies a spill-file compression codec.
type Algorithm uint8

const (
	AlgorithmNone Algorithm = iota
	AlgorithmZstd
	AlgorithmS2
	AlgorithmLZ4
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmNone:
		return "None"
	case AlgorithmZstd:
		return "Zstd"
	case AlgorithmS2:
		return "S2"
	case AlgorithmLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Compressor compresses a spill-run buffer before it is written to disk.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a spill-run buffer read back from disk.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression for one algorithm.
type Codec interface {
	Compressor
	Decompressor
}

// NewCodec builds a Codec for the requested algorithm.
func NewCodec(a Algorithm) (Codec, error) {
	switch a {
	case AlgorithmNone:
		return NewNoOpCompressor(), nil
	case AlgorithmZstd:
		return NewZstdCompressor(), nil
	case AlgorithmS2:
		return NewS2Compressor(), nil
	case AlgorithmLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("compress: unsupported algorithm %v", a)
	}
}
