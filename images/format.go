package images

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"gocv.io/x/gocv"
)

// ImageFormat represents supported image formats.
type ImageFormat string

// ImageFormat constants.
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatBMP is the BMP image format, decoded and encoded through OpenCV.
	FormatBMP ImageFormat = "bmp"
	// FormatTIFF is the TIFF image format, decoded and encoded through OpenCV.
	FormatTIFF ImageFormat = "tiff"
)

// DefaultQuality is the lossy encoding quality used when none is given.
const DefaultQuality = 90

// FormatFromPath infers the format from a file extension.
//
// Arguments:
//   - path: A file name or path.
//
// Returns:
//   - ImageFormat: The matching format.
//   - error: An error if the extension is not supported.
func FormatFromPath(path string) (ImageFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".png":
		return FormatPNG, nil
	case ".webp":
		return FormatWebP, nil
	case ".bmp":
		return FormatBMP, nil
	case ".tif", ".tiff":
		return FormatTIFF, nil
	default:
		return "", fmt.Errorf("unsupported image extension: %q", filepath.Ext(path))
	}
}

// Decode decodes encoded image bytes of the given format.
//
// JPEG and PNG use the standard decoders, WebP uses chai2010/webp, BMP and TIFF go
// through OpenCV's imdecode.
func Decode(data []byte, format ImageFormat) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	switch format {
	case FormatJPEG:
		img, err := jpeg.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode JPEG: %w", err)
		}
		return img, nil
	case FormatPNG:
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode PNG: %w", err)
		}
		return img, nil
	case FormatWebP:
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode WebP: %w", err)
		}
		return img, nil
	case FormatBMP, FormatTIFF:
		return decodeWithOpenCV(data)
	default:
		return nil, fmt.Errorf("unsupported image format: %q", format)
	}
}

// decodeWithOpenCV decodes formats the Go image packages do not cover.
func decodeWithOpenCV(data []byte) (image.Image, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadUnchanged)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image with OpenCV: %w", err)
	}
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("failed to decode image with OpenCV: empty result")
	}

	bmp, err := FromMat(mat)
	if err != nil {
		return nil, err
	}
	return bmp.ToNRGBA(), nil
}

// Encode writes img to w in the given format. quality applies to JPEG and WebP;
// values outside [1, 100] select DefaultQuality. WebP at quality 100 is lossless.
func Encode(w io.Writer, img image.Image, format ImageFormat, quality int) error {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}

	switch format {
	case FormatJPEG:
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
			return fmt.Errorf("failed to encode JPEG: %w", err)
		}
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("failed to encode PNG: %w", err)
		}
	case FormatWebP:
		opts := &webp.Options{Lossless: quality == 100, Quality: float32(quality)}
		if err := webp.Encode(w, img, opts); err != nil {
			return fmt.Errorf("failed to encode WebP: %w", err)
		}
	case FormatBMP, FormatTIFF:
		return encodeWithOpenCV(w, img, format)
	default:
		return fmt.Errorf("unsupported image format: %q", format)
	}
	return nil
}

func encodeWithOpenCV(w io.Writer, img image.Image, format ImageFormat) error {
	mat, err := ToMat(FromImage(img))
	if err != nil {
		return err
	}
	defer mat.Close()

	ext := gocv.FileExt(".bmp")
	if format == FormatTIFF {
		ext = gocv.FileExt(".tiff")
	}
	buf, err := gocv.IMEncode(ext, mat)
	if err != nil {
		return fmt.Errorf("failed to encode %s with OpenCV: %w", format, err)
	}
	defer buf.Close()

	if _, err := w.Write(buf.GetBytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", format, err)
	}
	return nil
}

// Open reads and decodes an image file, inferring the format from its extension.
func Open(path string) (image.Image, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %q: %w", path, err)
	}
	img, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return img, nil
}

// Save encodes img into path, inferring the format from its extension.
func Save(path string, img image.Image, quality int) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img, format, quality); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write image %q: %w", path, err)
	}
	return nil
}
