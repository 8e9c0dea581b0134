package compression

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Compressor defines the interface for cache value compression
type Compressor interface {
	// Compress compresses the given data and returns compressed bytes
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses the given compressed bytes
	Decompress(compressed []byte) ([]byte, error)

	// Name returns the name/identifier of the compressor
	Name() string
}

// CompressorType represents different compression algorithms
type CompressorType string

const (
	CompressorNone    CompressorType = "none"
	CompressorGzip    CompressorType = "gzip"
	CompressorDeflate CompressorType = "deflate"
	CompressorZstd    CompressorType = "zstd"
	CompressorSnappy  CompressorType = "snappy"
)

// Config holds compression configuration
type Config struct {
	// Enabled determines whether compression is enabled
	Enabled bool

	// Algorithm specifies which compression algorithm to use
	Algorithm CompressorType

	// MinSize is the minimum size in bytes before compression is applied
	// Values smaller than this will not be compressed to avoid overhead
	MinSize int

	// Level is the compression level (1-9 for gzip/deflate, 1-22 for zstd, -1 for default)
	Level int
}

// NewDefaultConfig creates a default compression configuration
func NewDefaultConfig() *Config {
	return &Config{
		Enabled:   false,
		Algorithm: CompressorGzip,
		MinSize:   1024,
		Level:     -1,
	}
}

// WithEnabled sets whether compression is enabled
func (c *Config) WithEnabled(enabled bool) *Config {
	c.Enabled = enabled
	return c
}

// WithAlgorithm sets the compression algorithm
func (c *Config) WithAlgorithm(algorithm CompressorType) *Config {
	c.Algorithm = algorithm
	return c
}

// WithMinSize sets the minimum size threshold for compression
func (c *Config) WithMinSize(minSize int) *Config {
	c.MinSize = minSize
	return c
}

// NoOpCompressor provides a no-op implementation that doesn't compress
type NoOpCompressor struct{}

// NewNoOpCompressor creates a new no-op compressor
func NewNoOpCompressor() *NoOpCompressor {
	return &NoOpCompressor{}
}

// Compress returns the data unchanged
func (n *NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the data unchanged
func (n *NoOpCompressor) Decompress(compressed []byte) ([]byte, error) {
	return compressed, nil
}

// Name returns the compressor name
func (n *NoOpCompressor) Name() string {
	return "none"
}

// GzipCompressor implements compression using gzip
type GzipCompressor struct {
	level int
}

// NewGzipCompressor creates a new gzip compressor with the specified level
func NewGzipCompressor(level int) *GzipCompressor {
	return &GzipCompressor{level: level}
}

// Compress compresses data using gzip
func (g *GzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := gzip.NewWriterLevel(&buf, g.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write compressed data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decompresses gzip data
func (g *GzipCompressor) Decompress(compressed []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

// Name returns the compressor name
func (g *GzipCompressor) Name() string {
	return "gzip"
}

// DeflateCompressor implements compression using zlib/deflate
type DeflateCompressor struct {
	level int
}

// NewDeflateCompressor creates a new deflate compressor with the specified level
func NewDeflateCompressor(level int) *DeflateCompressor {
	return &DeflateCompressor{level: level}
}

// Compress compresses data using deflate
func (d *DeflateCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := zlib.NewWriterLevel(&buf, d.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create deflate writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write compressed data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close deflate writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decompresses deflate data
func (d *DeflateCompressor) Decompress(compressed []byte) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("failed to create deflate reader: %w", err)
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

// Name returns the compressor name
func (d *DeflateCompressor) Name() string {
	return "deflate"
}

// ZstdCompressor implements compression using zstandard.
// The encoder and decoder are created once and shared across goroutines.
type ZstdCompressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstdCompressor creates a zstd compressor; level <= 0 selects the default speed
func NewZstdCompressor(level int) (*ZstdCompressor, error) {
	encLevel := zstd.SpeedDefault
	if level > 0 {
		encLevel = zstd.EncoderLevelFromZstd(level)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(encLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &ZstdCompressor{encoder: encoder, decoder: decoder}, nil
}

// Compress compresses data using zstd
func (z *ZstdCompressor) Compress(data []byte) ([]byte, error) {
	return z.encoder.EncodeAll(data, nil), nil
}

// Decompress decompresses zstd data
func (z *ZstdCompressor) Decompress(compressed []byte) ([]byte, error) {
	data, err := z.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decode zstd data: %w", err)
	}
	return data, nil
}

// Name returns the compressor name
func (z *ZstdCompressor) Name() string {
	return "zstd"
}

// SnappyCompressor implements block compression using snappy
type SnappyCompressor struct{}

// NewSnappyCompressor creates a new snappy compressor
func NewSnappyCompressor() *SnappyCompressor {
	return &SnappyCompressor{}
}

// Compress compresses data using snappy
func (s *SnappyCompressor) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

// Decompress decompresses snappy data
func (s *SnappyCompressor) Decompress(compressed []byte) ([]byte, error) {
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snappy data: %w", err)
	}
	return data, nil
}

// Name returns the compressor name
func (s *SnappyCompressor) Name() string {
	return "snappy"
}

// NewCompressor creates a new compressor based on the configuration
func NewCompressor(config *Config) (Compressor, error) {
	if config == nil || !config.Enabled {
		return NewNoOpCompressor(), nil
	}

	switch config.Algorithm {
	case CompressorNone:
		return NewNoOpCompressor(), nil
	case CompressorGzip:
		return NewGzipCompressor(config.Level), nil
	case CompressorDeflate:
		return NewDeflateCompressor(config.Level), nil
	case CompressorZstd:
		return NewZstdCompressor(config.Level)
	case CompressorSnappy:
		return NewSnappyCompressor(), nil
	default:
		return nil, fmt.Errorf("unsupported compression algorithm: %s", config.Algorithm)
	}
}

// MaybeCompress compresses data when it meets the size threshold and the
// result is actually smaller. The boolean reports whether compression was applied.
func MaybeCompress(data []byte, compressor Compressor, minSize int) ([]byte, bool, error) {
	if len(data) < minSize {
		return data, false, nil
	}

	compressed, err := compressor.Compress(data)
	if err != nil {
		return nil, false, fmt.Errorf("failed to compress data: %w", err)
	}

	if len(compressed) >= len(data) {
		return data, false, nil
	}

	return compressed, true, nil
}

// Restore reverses MaybeCompress
func Restore(data []byte, isCompressed bool, compressor Compressor) ([]byte, error) {
	if !isCompressed {
		return data, nil
	}

	out, err := compressor.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress data: %w", err)
	}
	return out, nil
}

// Ensure interfaces are implemented
var (
	_ Compressor = (*NoOpCompressor)(nil)
	_ Compressor = (*GzipCompressor)(nil)
	_ Compressor = (*DeflateCompressor)(nil)
	_ Compressor = (*ZstdCompressor)(nil)
	_ Compressor = (*SnappyCompressor)(nil)
)
