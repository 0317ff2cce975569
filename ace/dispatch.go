package ace

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Stats describes one completed invocation.
type Stats struct {
	// Extrema is the global per-channel score range used for normalization.
	Extrema Extrema `json:"extrema"`
	// Degenerate marks channels that had no score spread.
	Degenerate [Channels]bool `json:"degenerate"`
	// Workers is the number of row ranges actually used.
	Workers int `json:"workers"`
	// Seed is the seed the sample set was drawn from.
	Seed uint64 `json:"seed"`
	// Samples is the sample set that was compared against.
	Samples SampleSet `json:"-"`

	SampleDuration    time.Duration `json:"sample_duration"`
	ScoreDuration     time.Duration `json:"score_duration"`
	ReduceDuration    time.Duration `json:"reduce_duration"`
	NormalizeDuration time.Duration `json:"normalize_duration"`
}

// Total returns the summed duration of all phases.
func (s Stats) Total() time.Duration {
	return s.SampleDuration + s.ScoreDuration + s.ReduceDuration + s.NormalizeDuration
}

// RowRange is a half-open range of image rows owned by one worker.
type RowRange struct {
	Start int
	End   int
}

// Partition splits rows into contiguous ranges, one per worker, as evenly as possible:
// the first rows%workers ranges get one extra row. workers is clamped to [1, rows].
//
// Arguments:
//   - rows: The number of rows to split.
//   - workers: The requested number of ranges.
//
// Returns:
//   - []RowRange: Non-overlapping ranges covering [0, rows) in order.
//
// @example
// Partition(10, 3) // [{0 4} {4 7} {7 10}]
func Partition(rows, workers int) []RowRange {
	if rows <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > rows {
		workers = rows
	}

	base := rows / workers
	extra := rows % workers
	ranges := make([]RowRange, workers)
	start := 0
	for i := range ranges {
		size := base
		if i < extra {
			size++
		}
		ranges[i] = RowRange{Start: start, End: start + size}
		start += size
	}
	return ranges
}

// Parallel runs fn once per range on its own goroutine and returns when all have finished.
// A single range runs on the calling goroutine.
func Parallel(ranges []RowRange, fn func(worker int, r RowRange)) {
	if len(ranges) == 1 {
		fn(0, ranges[0])
		return
	}

	var wg sync.WaitGroup
	wg.Add(len(ranges))
	for i, r := range ranges {
		go func(worker int, r RowRange) {
			defer wg.Done()
			fn(worker, r)
		}(i, r)
	}
	wg.Wait()
}

// Apply runs Automatic Color Equalization on an RGBA8 buffer.
//
// Arguments:
//   - width: Image width in pixels.
//   - height: Image height in pixels.
//   - in: Row-major RGBA8 input, width*height*4 bytes. Never modified.
//   - out: Caller-allocated output of the same size, written in place.
//   - cfg: The invocation parameters. Seed and Threads are used as given.
//
// Returns:
//   - error: ErrInvalidConfig before any work, or ErrDegenerateChannel under DegenerateFail.
//
// @example
// out := make([]byte, len(pix))
// err := ace.Apply(w, h, pix, out, ace.Config{Slope: 10, Limit: 1000, Samples: 100, Threads: 4, Seed: 1})
func Apply(width, height int, in, out []byte, cfg Config) error {
	_, err := ApplyWithStats(width, height, in, out, cfg)
	return err
}

// ApplyWithStats is Apply that also reports the extrema, degenerate channels and phase timings.
func ApplyWithStats(width, height int, in, out []byte, cfg Config) (Stats, error) {
	var stats Stats

	if err := cfg.Validate(); err != nil {
		return stats, err
	}
	if err := validateBuffers(width, height, in, out); err != nil {
		return stats, err
	}

	// SAMPLE
	began := time.Now()
	samples, err := GenerateSamples(cfg.Seed, cfg.Samples, width, height)
	if err != nil {
		return stats, err
	}
	stats.Seed = cfg.Seed
	stats.Samples = samples
	stats.SampleDuration = time.Since(began)

	// SCORE: each worker owns its rows of the score buffer and its own extrema slot.
	began = time.Now()
	ranges := Partition(height, cfg.Threads)
	stats.Workers = len(ranges)
	scores := NewScoreBuffer(width, height)
	bands := make([]*ScoreRows, len(ranges))
	for i, r := range ranges {
		if bands[i], err = scores.Rows(r.Start, r.End); err != nil {
			return stats, err
		}
	}
	sc := newScorer(in, width, height, samples, cfg)
	local := make([]Extrema, len(ranges))
	Parallel(ranges, func(worker int, _ RowRange) {
		local[worker] = sc.scoreRows(bands[worker])
	})
	stats.ScoreDuration = time.Since(began)

	// REDUCE: runs strictly between the two joins.
	began = time.Now()
	stats.Extrema = ReduceExtrema(local)
	for c, r := range stats.Extrema {
		stats.Degenerate[c] = r.Flat()
		if stats.Degenerate[c] && cfg.Degenerate == DegenerateFail {
			return stats, errors.Wrapf(ErrDegenerateChannel, "channel %d has constant score %g", c, r.Min)
		}
	}
	stats.ReduceDuration = time.Since(began)

	// NORMALIZE
	began = time.Now()
	norm := newNormalizer(in, out, width, stats.Extrema)
	Parallel(ranges, func(worker int, _ RowRange) {
		norm.normalizeRows(bands[worker])
	})
	stats.NormalizeDuration = time.Since(began)

	return stats, nil
}
