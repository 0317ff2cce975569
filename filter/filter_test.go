package filter

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-restore/ace"
	"github.com/nvr-ai/go-restore/images"
)

// gradient is the 4x4 two-tone fixture also used by the ace package tests.
func gradient() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			d := uint8(10 * y)
			if x < 2 {
				img.SetNRGBA(x, y, color.NRGBA{R: 40 + d, G: 60 + d, B: 90 + d, A: 255})
			} else {
				img.SetNRGBA(x, y, color.NRGBA{R: 200 - d, G: 180 - d, B: 150 - d, A: 255})
			}
		}
	}
	return img
}

func pattern(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 9), G: uint8(y * 13), B: uint8((x + y) * 5), A: 255})
		}
	}
	return img
}

func TestDefaultACEOptions(t *testing.T) {
	opt := DefaultACEOptions()
	assert.Equal(t, 10, opt.Slope)
	assert.Equal(t, 1000, opt.Limit)
	assert.Equal(t, 100, opt.Samples)
	assert.Nil(t, opt.Seed)

	cfg := opt.Config()
	assert.Equal(t, runtime.NumCPU(), cfg.Threads)
	assert.Equal(t, ace.DegeneratePassthrough, cfg.Degenerate)
}

func TestWithSeedDoesNotAlias(t *testing.T) {
	base := DefaultACEOptions()
	a := base.WithSeed(1)
	b := a.WithSeed(2)
	assert.Nil(t, base.Seed)
	assert.Equal(t, uint64(1), a.Config().Seed)
	assert.Equal(t, uint64(2), b.Config().Seed)
}

func TestACEMatchesBufferAPI(t *testing.T) {
	opt := ACEOptions{Slope: 10, Limit: 1000, Samples: 5, Threads: 1}.WithSeed(12345)

	out, stats, err := ACE(gradient(), opt)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 4, 4), out.Rect)

	expected := []byte{
		32, 11, 8, 255, 22, 0, 0, 255, 255, 255, 255, 255, 236, 233, 233, 255,
		60, 48, 60, 255, 42, 30, 47, 255, 216, 209, 183, 255, 200, 191, 170, 255,
		50, 45, 72, 255, 25, 22, 55, 255, 230, 211, 144, 255, 213, 197, 139, 255,
		60, 63, 100, 255, 0, 18, 98, 255, 195, 160, 81, 255, 171, 143, 78, 255,
	}
	assert.Equal(t, expected, out.Pix)
	assert.Equal(t, uint64(12345), stats.Seed)
}

func TestACEAcceptsAnyColorModel(t *testing.T) {
	src := pattern(30, 20)
	// Move the origin away from (0, 0).
	sub := src.SubImage(image.Rect(5, 5, 25, 15))

	opt := DefaultACEOptions().WithSeed(3)
	opt.Threads = 2
	out, _, err := ACE(sub, opt)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 10), out.Rect)

	gray := image.NewGray(image.Rect(0, 0, 16, 16))
	for i := range gray.Pix {
		gray.Pix[i] = uint8(i)
	}
	out, stats, err := ACE(gray, opt)
	require.NoError(t, err)
	// Equal input channels produce equal output channels.
	for i := 0; i < len(out.Pix); i += 4 {
		assert.Equal(t, out.Pix[i], out.Pix[i+1])
		assert.Equal(t, out.Pix[i], out.Pix[i+2])
	}
	assert.Equal(t, stats.Extrema[0], stats.Extrema[2])
}

func TestACEThreadsDoNotChangeOutput(t *testing.T) {
	src := pattern(40, 25)
	var reference []byte
	for _, threads := range []int{1, 3, 0} {
		opt := ACEOptions{Slope: 10, Limit: 1000, Samples: 30, Threads: threads}.WithSeed(77)
		out, _, err := ACE(src, opt)
		require.NoError(t, err)
		if reference == nil {
			reference = out.Pix
			continue
		}
		assert.Equal(t, reference, out.Pix, "threads=%d", threads)
	}
}

func TestACEErrors(t *testing.T) {
	_, _, err := ACE(nil, DefaultACEOptions())
	assert.True(t, errors.Is(err, ace.ErrInvalidConfig))

	_, _, err = ACE(image.NewNRGBA(image.Rect(0, 0, 0, 0)), DefaultACEOptions())
	assert.True(t, errors.Is(err, ace.ErrInvalidConfig))

	opt := DefaultACEOptions()
	opt.Samples = 0
	_, _, err = ACE(pattern(4, 4), opt)
	assert.True(t, errors.Is(err, ace.ErrInvalidConfig))

	flat := image.NewUniform(color.NRGBA{R: 9, G: 9, B: 9, A: 255})
	opt = DefaultACEOptions().WithSeed(1)
	opt.Degenerate = ace.DegenerateFail
	_, _, err = ACE(&clipped{flat, image.Rect(0, 0, 8, 8)}, opt)
	assert.True(t, errors.Is(err, ace.ErrDegenerateChannel))
}

// clipped gives an infinite image finite bounds.
type clipped struct {
	image.Image
	r image.Rectangle
}

func (c *clipped) Bounds() image.Rectangle { return c.r }

func TestACEBitmap(t *testing.T) {
	src := images.FromImage(gradient())
	dst, stats, err := ACEBitmap(src, ACEOptions{Slope: 10, Limit: 1000, Samples: 5, Threads: 2}.WithSeed(12345))
	require.NoError(t, err)
	out, _, err := ACE(gradient(), ACEOptions{Slope: 10, Limit: 1000, Samples: 5, Threads: 1}.WithSeed(12345))
	require.NoError(t, err)
	assert.Equal(t, out.Pix, dst.Pix)
	assert.Equal(t, 2, stats.Workers)

	_, _, err = ACEBitmap(&images.Bitmap{Width: 2, Height: 2, Pix: make([]byte, 3)}, DefaultACEOptions())
	assert.True(t, errors.Is(err, images.ErrInvalidBitmap))
}

func TestPool(t *testing.T) {
	var nilPool *Pool
	img := nilPool.GetNRGBA(image.Rect(0, 0, 2, 2))
	require.NotNil(t, img)
	nilPool.PutNRGBA(img)

	p := &Pool{}
	got := p.GetNRGBA(image.Rect(0, 0, 3, 3))
	assert.Equal(t, image.Rect(0, 0, 3, 3), got.Rect)
	p.PutNRGBA(got)
	// A pooled image of a different size is never handed out.
	other := p.GetNRGBA(image.Rect(0, 0, 5, 4))
	assert.Equal(t, image.Rect(0, 0, 5, 4), other.Rect)
	assert.Len(t, other.Pix, 5*4*4)

	// Alternating sizes must not evict each other. sync.Pool may drop any single
	// Put, so retry a few rounds before calling it a miss.
	reused := false
	for i := 0; i < 20 && !reused; i++ {
		small := p.GetNRGBA(image.Rect(0, 0, 3, 3))
		big := p.GetNRGBA(image.Rect(0, 0, 5, 4))
		p.PutNRGBA(small)
		p.PutNRGBA(big)
		again := p.GetNRGBA(image.Rect(0, 0, 3, 3))
		reused = again == small
		p.PutNRGBA(again)
	}
	assert.True(t, reused, "a 3x3 image should come back after a 5x4 one was pooled")

	opt := DefaultACEOptions().WithSeed(5)
	opt.Pool = p
	for i := 0; i < 3; i++ {
		out, _, err := ACE(pattern(12, 12), opt)
		require.NoError(t, err)
		p.PutNRGBA(out)
	}
}

func TestBatch(t *testing.T) {
	jobs := make([]Job, 8)
	for i := range jobs {
		jobs[i] = Job{Name: fmt.Sprintf("job-%d", i), Image: pattern(10+i, 8)}
	}

	var (
		mu       sync.Mutex
		seen     = map[string]image.Rectangle{}
		inFlight atomic.Int32
		peak     atomic.Int32
	)
	opt := ACEOptions{Slope: 10, Limit: 1000, Samples: 10, Threads: 1}.WithSeed(9)
	err := Batch(context.Background(), jobs, 3, opt, func(job Job, res Result) error {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		mu.Lock()
		defer mu.Unlock()
		seen[job.Name] = res.Image.Rect
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, len(jobs))
	assert.Equal(t, image.Rect(0, 0, 13, 8), seen["job-3"])
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestBatchStopsOnError(t *testing.T) {
	jobs := []Job{
		{Name: "ok", Image: pattern(6, 6)},
		{Name: "broken", Image: image.NewNRGBA(image.Rect(0, 0, 0, 0))},
	}
	err := Batch(context.Background(), jobs, 1, DefaultACEOptions().WithSeed(1), func(Job, Result) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.Is(err, ace.ErrInvalidConfig))
	assert.Contains(t, err.Error(), "broken")

	sentinel := errors.New("consumer failed")
	err = Batch(context.Background(), jobs[:1], 2, DefaultACEOptions().WithSeed(1), func(Job, Result) error { return sentinel })
	assert.True(t, errors.Is(err, sentinel))
}

func TestBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Batch(ctx, []Job{{Name: "a", Image: pattern(4, 4)}}, 1, DefaultACEOptions(), func(Job, Result) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
