package images

import (
	"image"

	"github.com/nfnt/resize"
)

// Fit downscales img so that it fits within maxWidth×maxHeight, preserving the aspect
// ratio with Lanczos3 resampling. A limit of 0 leaves that dimension unconstrained.
// Images already within bounds are returned as is.
//
// ACE costs width*height*samples score evaluations, so previews and very large scans
// are usually equalized at a reduced size.
//
// Arguments:
//   - img: The image to fit.
//   - maxWidth: The maximum width, or 0.
//   - maxHeight: The maximum height, or 0.
//
// Returns:
//   - image.Image: img itself, or a resized copy.
//   - bool: Whether the image was resized.
func Fit(img image.Image, maxWidth, maxHeight int) (image.Image, bool) {
	bounds := img.Bounds()
	if maxWidth < 0 {
		maxWidth = 0
	}
	if maxHeight < 0 {
		maxHeight = 0
	}
	if (maxWidth == 0 || bounds.Dx() <= maxWidth) && (maxHeight == 0 || bounds.Dy() <= maxHeight) {
		return img, false
	}

	w, h := maxWidth, maxHeight
	if w == 0 {
		w = bounds.Dx()
	}
	if h == 0 {
		h = bounds.Dy()
	}
	return resize.Thumbnail(uint(w), uint(h), img, resize.Lanczos3), true
}

// Resize scales img to exactly width×height with Lanczos3 resampling.
// A zero dimension is derived from the other one to keep the aspect ratio.
func Resize(img image.Image, width, height int) image.Image {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
}
