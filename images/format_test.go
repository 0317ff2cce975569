package images

import (
	"bytes"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFromPath(t *testing.T) {
	tests := map[string]ImageFormat{
		"a.jpg":       FormatJPEG,
		"dir/b.JPEG":  FormatJPEG,
		"c.png":       FormatPNG,
		"d.webp":      FormatWebP,
		"e.bmp":       FormatBMP,
		"f.tif":       FormatTIFF,
		"/tmp/g.TIFF": FormatTIFF,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("notes.txt")
	assert.Error(t, err)
	_, err = FormatFromPath("noext")
	assert.Error(t, err)
}

func TestEncodeDecodeLossless(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 40), B: 77, A: 255})
		}
	}

	for _, format := range []ImageFormat{FormatPNG, FormatWebP} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, src, format, 100))

			img, err := Decode(buf.Bytes(), format)
			require.NoError(t, err)
			assert.Equal(t, Checksum(FromImage(src)), Checksum(FromImage(img)))
		})
	}
}

func TestEncodeDecodeJPEG(t *testing.T) {
	src := getTestImage(32, 16)
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, src, FormatJPEG, 0))

	img, err := Decode(buf.Bytes(), FormatJPEG)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), img.Bounds())
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(nil, FormatPNG)
	assert.Error(t, err, "empty data")

	_, err = Decode([]byte("not a jpeg"), FormatJPEG)
	assert.Error(t, err)

	_, err = Decode([]byte("not a png"), FormatPNG)
	assert.Error(t, err)

	_, err = Decode([]byte{1, 2, 3}, ImageFormat("gif"))
	assert.Error(t, err)

	assert.Error(t, Encode(&bytes.Buffer{}, getTestImage(2, 2), ImageFormat("gif"), 90))
}

func TestSaveOpen(t *testing.T) {
	dir := t.TempDir()
	src := getTestImage(10, 10)

	path := filepath.Join(dir, "out.png")
	require.NoError(t, Save(path, src, 0))

	img, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, Checksum(FromImage(src)), Checksum(FromImage(img)))

	_, err = Open(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)
	assert.Error(t, Save(filepath.Join(dir, "out.txt"), src, 0))
}
