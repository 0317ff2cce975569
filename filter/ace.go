package filter

import (
	"image"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-restore/ace"
	"github.com/nvr-ai/go-restore/images"
)

// ACE equalizes img and returns the result as an opaque NRGBA image anchored at (0, 0).
//
// The input is converted to non-premultiplied RGBA8 first, so any color model is
// accepted; alpha is discarded.
//
// Arguments:
//   - img: The image to equalize. It is never modified.
//   - opt: The ACE options. Zero Threads and a nil Seed are resolved here.
//
// Returns:
//   - *image.NRGBA: The equalized image. Return it to opt.Pool when done, if set.
//   - ace.Stats: Extrema, degenerate channels, the seed used and phase timings.
//   - error: Wraps ace.ErrInvalidConfig or ace.ErrDegenerateChannel.
//
// @example
// out, stats, err := filter.ACE(photo, filter.DefaultACEOptions().WithSeed(42))
func ACE(img image.Image, opt ACEOptions) (*image.NRGBA, ace.Stats, error) {
	if img == nil {
		return nil, ace.Stats{}, errors.Wrap(ace.ErrInvalidConfig, "nil image")
	}

	bmp := images.FromImage(img)
	cfg := opt.Config()
	dst := opt.Pool.GetNRGBA(image.Rect(0, 0, bmp.Width, bmp.Height))

	stats, err := ace.ApplyWithStats(bmp.Width, bmp.Height, bmp.Pix, dst.Pix, cfg)
	if err != nil {
		opt.Pool.PutNRGBA(dst)
		return nil, stats, errors.Wrapf(err, "ace %dx%d", bmp.Width, bmp.Height)
	}
	return dst, stats, nil
}

// ACEBitmap equalizes a bitmap into a new bitmap of the same size.
func ACEBitmap(src *images.Bitmap, opt ACEOptions) (*images.Bitmap, ace.Stats, error) {
	if err := src.Validate(); err != nil {
		return nil, ace.Stats{}, err
	}

	dst := images.NewBitmap(src.Width, src.Height)
	stats, err := ace.ApplyWithStats(src.Width, src.Height, src.Pix, dst.Pix, opt.Config())
	if err != nil {
		return nil, stats, err
	}
	return dst, stats, nil
}
