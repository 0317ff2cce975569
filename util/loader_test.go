package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-restore/images"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
}

func TestLoadDirectoryImageFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"frame-10.jpg", "frame-2.png", "scan.TIFF", "alpha.webp", "notes.txt", "frame-x.bmp",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.png"), 0o755))

	files, err := LoadDirectoryImageFiles(dir)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f.Path))
		assert.Equal(t, filepath.Base(f.Path), string(f.Data))
	}
	assert.Equal(t, []string{"frame-2.png", "frame-10.jpg", "alpha.webp", "frame-x.bmp", "scan.TIFF"}, names)

	assert.Equal(t, 2, files[0].Frame)
	assert.Equal(t, images.FormatPNG, files[0].Format)
	assert.Equal(t, -1, files[2].Frame)
	assert.Equal(t, images.FormatTIFF, files[4].Format)
	assert.Equal(t, "scan", files[4].Name())
}

func TestLoadDirectoryImageFilesMissing(t *testing.T) {
	_, err := LoadDirectoryImageFiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestFrameNumber(t *testing.T) {
	assert.Equal(t, 7, frameNumber("frame-7.jpg"))
	assert.Equal(t, 0, frameNumber("frame-000.png"))
	assert.Equal(t, -1, frameNumber("frame--1.png"))
	assert.Equal(t, -1, frameNumber("photo.png"))
}
