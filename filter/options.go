// Package filter - image-level entry points for Automatic Color Equalization.
//
// It converts arbitrary image.Image values to the RGBA8 layout the ace package works
// on, fills in caller defaults (seed and thread count) and runs batches of images with
// bounded concurrency.
package filter

import (
	"image"
	"runtime"
	"sync"
	"time"

	"github.com/nvr-ai/go-restore/ace"
)

// ACEOptions configures ACE for image.Image inputs.
type ACEOptions struct {
	// Slope is the gain applied to each channel difference before clamping.
	Slope int `json:"slope" yaml:"slope"`
	// Limit is the saturation bound of the clamped difference.
	Limit int `json:"limit" yaml:"limit"`
	// Samples is the number of reference points.
	Samples int `json:"samples" yaml:"samples"`
	// Threads is the number of workers. Zero or less selects runtime.NumCPU().
	Threads int `json:"threads" yaml:"threads"`
	// Seed fixes the sample selection. Nil seeds from the current time.
	Seed *uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	// Degenerate selects how channels without score spread are handled.
	Degenerate ace.DegeneratePolicy `json:"degenerate" yaml:"degenerate"`
	// Pool optionally recycles output images between calls.
	Pool *Pool `json:"-" yaml:"-"`
}

// DefaultACEOptions returns slope 10, limit 1000 and 100 samples with a time seed
// and one worker per CPU.
func DefaultACEOptions() ACEOptions {
	cfg := ace.DefaultConfig()
	return ACEOptions{
		Slope:   cfg.Slope,
		Limit:   cfg.Limit,
		Samples: cfg.Samples,
	}
}

// WithSeed returns a copy of the options with a fixed seed.
func (o ACEOptions) WithSeed(seed uint64) ACEOptions {
	o.Seed = &seed
	return o
}

// Config resolves the caller defaults into a concrete ace.Config.
func (o ACEOptions) Config() ace.Config {
	threads := o.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	var seed uint64
	if o.Seed != nil {
		seed = *o.Seed
	} else {
		seed = uint64(time.Now().UnixNano())
	}

	return ace.Config{
		Slope:      o.Slope,
		Limit:      o.Limit,
		Samples:    o.Samples,
		Threads:    threads,
		Seed:       seed,
		Degenerate: o.Degenerate,
	}
}

// Pool lets callers reuse output images across invocations. Images are pooled per
// bounds, so batches mixing sizes still reuse each size's buffers.
// A nil *Pool is valid and always allocates.
type Pool struct {
	sizes sync.Map // image.Rectangle -> *sync.Pool of *image.NRGBA
}

func (p *Pool) bucket(bounds image.Rectangle) *sync.Pool {
	if v, ok := p.sizes.Load(bounds); ok {
		return v.(*sync.Pool)
	}
	v, _ := p.sizes.LoadOrStore(bounds, &sync.Pool{})
	return v.(*sync.Pool)
}

// GetNRGBA returns an image with the given bounds, reusing a pooled one of the same
// bounds when available. The pixels are not cleared; ACE overwrites every byte.
func (p *Pool) GetNRGBA(bounds image.Rectangle) *image.NRGBA {
	if p == nil {
		return image.NewNRGBA(bounds)
	}
	if v := p.bucket(bounds).Get(); v != nil {
		return v.(*image.NRGBA)
	}
	return image.NewNRGBA(bounds)
}

// PutNRGBA hands an image back to the pool. The caller must not use it afterwards.
func (p *Pool) PutNRGBA(img *image.NRGBA) {
	if p == nil || img == nil {
		return
	}
	p.bucket(img.Rect).Put(img)
}
