// Package images - RGBA8 pixel buffers and the conversions between them, encoded image
// files and OpenCV matrices. These are the boundary collaborators of the ace package.
package images

import (
	"image"
	"image/draw"

	"github.com/pkg/errors"
)

// ErrInvalidBitmap is returned when a Bitmap's dimensions do not match its buffer.
var ErrInvalidBitmap = errors.New("images: invalid bitmap")

// Bitmap is a row-major RGBA8 buffer without padding between rows.
// Color values are not premultiplied by alpha.
type Bitmap struct {
	// Width of the image in pixels.
	Width int `json:"width" yaml:"width"`
	// Height of the image in pixels.
	Height int `json:"height" yaml:"height"`
	// Pix holds Width*Height*4 bytes: R, G, B, A for each pixel.
	Pix []byte `json:"-" yaml:"-"`
}

// NewBitmap allocates a zeroed width×height bitmap.
func NewBitmap(width, height int) *Bitmap {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Bitmap{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*4),
	}
}

// Validate checks that the buffer length matches the dimensions.
func (b *Bitmap) Validate() error {
	if b == nil {
		return errors.Wrap(ErrInvalidBitmap, "bitmap is nil")
	}
	if b.Width <= 0 || b.Height <= 0 {
		return errors.Wrapf(ErrInvalidBitmap, "invalid dimensions: width=%d, height=%d", b.Width, b.Height)
	}
	if want := b.Width * b.Height * 4; len(b.Pix) != want {
		return errors.Wrapf(ErrInvalidBitmap, "buffer has %d bytes, want %d", len(b.Pix), want)
	}
	return nil
}

// PixOffset returns the index of the first byte of pixel (x, y).
func (b *Bitmap) PixOffset(x, y int) int {
	return (y*b.Width + x) * 4
}

// FromImage converts any image to a tightly packed, non-premultiplied RGBA8 bitmap.
//
// The image is drawn onto an NRGBA canvas, which also normalizes gray, paletted,
// YCbCr and 16-bit color models. The bitmap's origin is the image's Bounds().Min.
//
// Arguments:
//   - img: The source image.
//
// Returns:
//   - *Bitmap: A new bitmap; img is not retained.
//
// @example
// bmp := FromImage(photo)
func FromImage(img image.Image) *Bitmap {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var nrgba *image.NRGBA
	if n, ok := img.(*image.NRGBA); ok && n.Stride == width*4 {
		nrgba = n
	} else {
		nrgba = image.NewNRGBA(image.Rect(0, 0, width, height))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}

	bmp := NewBitmap(width, height)
	// Copy row by row: a sub-image of an NRGBA may not start at Pix[0].
	for y := 0; y < height; y++ {
		src := nrgba.PixOffset(nrgba.Rect.Min.X, nrgba.Rect.Min.Y+y)
		copy(bmp.Pix[y*width*4:(y+1)*width*4], nrgba.Pix[src:src+width*4])
	}
	return bmp
}

// ToNRGBA wraps a copy of the bitmap as an *image.NRGBA anchored at (0, 0).
func (b *Bitmap) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	return img
}

// Clone returns a deep copy of the bitmap.
func (b *Bitmap) Clone() *Bitmap {
	pix := make([]byte, len(b.Pix))
	copy(pix, b.Pix)
	return &Bitmap{Width: b.Width, Height: b.Height, Pix: pix}
}
