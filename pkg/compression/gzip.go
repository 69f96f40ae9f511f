// Package compression implements the GZIP encoding used for the
// CompressedPart of a claim envelope.
package compression

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"io"
)

// TypeGzip is the value of the CompressedPart Type attribute.
const TypeGzip = "gzip"

// Compressor handles claim body compression.
type Compressor struct {
	compressionLevel int
}

// NewCompressor creates a compressor at maximum compression, the level
// gateway submissions use.
func NewCompressor() *Compressor {
	return &Compressor{
		compressionLevel: gzip.BestCompression,
	}
}

// NewCompressorWithLevel creates a compressor with a specific level.
func NewCompressorWithLevel(level int) *Compressor {
	return &Compressor{
		compressionLevel: level,
	}
}

// Compress compresses data using GZIP.
func (c *Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	writer, err := gzip.NewWriterLevel(&buf, c.compressionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

// CompressToBase64 compresses data and encodes it for embedding as
// element text inside a CompressedPart.
func (c *Compressor) CompressToBase64(data []byte) (string, error) {
	compressed, err := c.Compress(data)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(compressed), nil
}

// Decompress decompresses GZIP data.
func (c *Compressor) Decompress(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("failed to read compressed data: %w", err)
	}

	return buf.Bytes(), nil
}

// DecompressFromBase64 reverses CompressToBase64, recovering a claim
// body from CompressedPart element text.
func (c *Compressor) DecompressFromBase64(text string) ([]byte, error) {
	compressed, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 data: %w", err)
	}
	return c.Decompress(compressed)
}
