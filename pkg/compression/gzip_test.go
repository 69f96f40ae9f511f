package compression

import (
	"compress/gzip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressor_Roundtrip(t *testing.T) {
	c := NewCompressor()
	original := []byte("<Claim><OrgName>A Fundraising Organisation</OrgName></Claim>")

	compressed, err := c.Compress(original)
	require.NoError(t, err)
	assert.NotEqual(t, original, compressed)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, decompressed)
}

func TestCompressor_Base64Roundtrip(t *testing.T) {
	c := NewCompressor()
	original := []byte(strings.Repeat("<GAD><Total>500.00</Total></GAD>", 50))

	encoded, err := c.CompressToBase64(original)
	require.NoError(t, err)

	recovered, err := c.DecompressFromBase64(encoded)
	require.NoError(t, err)
	assert.Equal(t, original, recovered)

	// A repetitive claim body should shrink even after base64 overhead.
	assert.Less(t, len(encoded), len(original))
}

func TestCompressor_InvalidBase64(t *testing.T) {
	c := NewCompressor()
	_, err := c.DecompressFromBase64("not base64 ***")
	require.Error(t, err)
}

func TestCompressor_InvalidGzipData(t *testing.T) {
	c := NewCompressor()
	_, err := c.Decompress([]byte("not gzip data"))
	require.Error(t, err)
}

func TestNewCompressorWithLevel(t *testing.T) {
	c := NewCompressorWithLevel(gzip.BestSpeed)
	original := []byte("<Claim/>")

	compressed, err := c.Compress(original)
	require.NoError(t, err)

	decompressed, err := c.Decompress(compressed)
	require.NoError(t, err)
	assert.Equal(t, original, decompressed)
}

func TestNewCompressorWithLevel_Invalid(t *testing.T) {
	c := NewCompressorWithLevel(99)
	_, err := c.Compress([]byte("data"))
	require.Error(t, err)
}
