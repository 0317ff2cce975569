package ace

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mathext/prng"
)

// Point is a pixel coordinate: X is the column, Y is the row.
type Point struct {
	X int
	Y int
}

// SampleSet is the ordered list of reference coordinates shared by every pixel.
// It is read-only once generated.
type SampleSet []Point

// GenerateSamples draws count coordinates uniformly from [0,width)×[0,height).
//
// Each point consumes two draws from a Xoshiro256++ stream seeded with seed, x first,
// then y, each reduced modulo its dimension. Duplicates are allowed. The sequence is
// fully determined by (seed, count, width, height).
//
// Arguments:
//   - seed: The generator seed.
//   - count: Number of points, must be positive.
//   - width: Image width in pixels, must be positive.
//   - height: Image height in pixels, must be positive.
//
// Returns:
//   - SampleSet: count points in draw order.
//   - error: ErrInvalidConfig when any argument is not positive.
func GenerateSamples(seed uint64, count, width, height int) (SampleSet, error) {
	if count <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "sample count must be positive, got %d", count)
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "invalid dimensions: width=%d, height=%d", width, height)
	}

	src := prng.NewXoshiro256plusplus(seed)
	samples := make(SampleSet, count)
	for n := range samples {
		samples[n].X = int(src.Uint64() % uint64(width))
		samples[n].Y = int(src.Uint64() % uint64(height))
	}
	return samples, nil
}
