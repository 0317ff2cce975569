// Package ace - Automatic Color Equalization over raw RGBA8 buffers.
//
// ACE recomputes every pixel as a distance-weighted statistic of its color differences
// against a fixed random sample of the image, then stretches the resulting scores into
// the displayable [0, 255] range. The work is split into two parallel phases separated
// by a global per-channel extrema reduction.
package ace

import (
	"github.com/pkg/errors"
)

// Channels is the number of color channels equalized per pixel. Alpha is not equalized.
const Channels = 3

// BytesPerPixel is the stride of one RGBA8 pixel.
const BytesPerPixel = 4

// DegeneratePolicy selects what happens to a channel whose scores are all equal.
type DegeneratePolicy int

const (
	// DegeneratePassthrough copies the input channel to the output unchanged.
	DegeneratePassthrough DegeneratePolicy = iota
	// DegenerateFail aborts the invocation with ErrDegenerateChannel.
	DegenerateFail
)

// String returns the policy name used in configuration files.
func (p DegeneratePolicy) String() string {
	switch p {
	case DegeneratePassthrough:
		return "passthrough"
	case DegenerateFail:
		return "fail"
	default:
		return "unknown"
	}
}

// ParseDegeneratePolicy maps a configuration name to a DegeneratePolicy.
// The empty string selects DegeneratePassthrough.
func ParseDegeneratePolicy(name string) (DegeneratePolicy, error) {
	switch name {
	case "", "passthrough":
		return DegeneratePassthrough, nil
	case "fail":
		return DegenerateFail, nil
	default:
		return DegeneratePassthrough, errors.Wrapf(ErrInvalidConfig, "unknown degenerate policy %q", name)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p DegeneratePolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *DegeneratePolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseDegeneratePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Config holds the parameters of one ACE invocation.
type Config struct {
	// Slope is the gain applied to each channel difference before clamping.
	Slope int `json:"slope" yaml:"slope"`
	// Limit is the saturation bound of the clamped difference.
	Limit int `json:"limit" yaml:"limit"`
	// Samples is the number of reference points every pixel is compared against.
	Samples int `json:"samples" yaml:"samples"`
	// Threads is the number of row-range workers. Values below 1 mean 1.
	Threads int `json:"threads" yaml:"threads"`
	// Seed drives the sample selection. Output is reproducible for a fixed seed.
	Seed uint64 `json:"seed" yaml:"seed"`
	// Degenerate selects the flat-channel policy.
	Degenerate DegeneratePolicy `json:"degenerate" yaml:"degenerate"`
}

// DefaultConfig returns the usual ACE parameters with a single worker and a zero seed.
//
// Returns:
//   - Config: slope 10, limit 1000, 100 samples, 1 thread.
func DefaultConfig() Config {
	return Config{
		Slope:   10,
		Limit:   1000,
		Samples: 100,
		Threads: 1,
	}
}

// Validate checks the configuration independently of any image.
func (c Config) Validate() error {
	if c.Samples <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "samples must be positive, got %d", c.Samples)
	}
	if c.Slope < 0 {
		return errors.Wrapf(ErrInvalidConfig, "slope must not be negative, got %d", c.Slope)
	}
	if c.Limit < 0 {
		return errors.Wrapf(ErrInvalidConfig, "limit must not be negative, got %d", c.Limit)
	}
	switch c.Degenerate {
	case DegeneratePassthrough, DegenerateFail:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown degenerate policy %d", c.Degenerate)
	}
	return nil
}

// validateBuffers checks the dimensions against both pixel buffers.
func validateBuffers(width, height int, in, out []byte) error {
	if width <= 0 || height <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "invalid dimensions: width=%d, height=%d", width, height)
	}
	want := width * height * BytesPerPixel
	if len(in) != want {
		return errors.Wrapf(ErrInvalidConfig, "input buffer has %d bytes, want %d", len(in), want)
	}
	if len(out) != want {
		return errors.Wrapf(ErrInvalidConfig, "output buffer has %d bytes, want %d", len(out), want)
	}
	return nil
}
