package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nvr-ai/go-restore/images"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Format is the encoding implied by the file extension.
	Format images.ImageFormat
	// Frame is the number parsed from a "frame-N" file name, or -1.
	Frame int
}

// Name returns the file name without directory and extension.
func (f ImageFile) Name() string {
	base := filepath.Base(f.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadDirectoryImageFiles reads all image files from a directory.
//
// Files named "frame-N.ext" are ordered by N and come first; all other files follow in
// lexical order. Subdirectories and files with unsupported extensions are skipped.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: Slice of ImageFile, each containing the raw bytes of an image file.
// - error: Error if loading fails.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		format, err := images.FormatFromPath(path)
		if err != nil {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, ImageFile{
			Path:   path,
			Data:   data,
			Format: format,
			Frame:  frameNumber(entry.Name()),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		fi, fj := files[i].Frame, files[j].Frame
		switch {
		case fi >= 0 && fj >= 0 && fi != fj:
			return fi < fj
		case fi >= 0 && fj < 0:
			return true
		case fi < 0 && fj >= 0:
			return false
		}
		return files[i].Path < files[j].Path
	})

	return files, nil
}

func frameNumber(name string) int {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if !strings.HasPrefix(stem, "frame-") {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(stem, "frame-"))
	if err != nil || n < 0 {
		return -1
	}
	return n
}
