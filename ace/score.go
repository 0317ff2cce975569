package ace

import (
	"math"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// ScoreBuffer is the dense height×width×3 matrix of per-pixel channel scores.
// During the score phase each row is written only by the worker owning it.
type ScoreBuffer struct {
	width  int
	height int
	dense  *tensor.Dense
	data   []float64
}

// NewScoreBuffer allocates a zeroed score buffer for a width×height image.
func NewScoreBuffer(width, height int) *ScoreBuffer {
	dense := tensor.New(tensor.WithShape(height, width, Channels), tensor.Of(tensor.Float64))
	return &ScoreBuffer{
		width:  width,
		height: height,
		dense:  dense,
		data:   dense.Data().([]float64),
	}
}

// Tensor exposes the backing tensor, shaped (height, width, channels).
func (b *ScoreBuffer) Tensor() *tensor.Dense {
	return b.dense
}

// At returns the scores stored for pixel (x, y).
func (b *ScoreBuffer) At(x, y int) [Channels]float64 {
	off := (y*b.width + x) * Channels
	return [Channels]float64{b.data[off], b.data[off+1], b.data[off+2]}
}

// Set stores the scores for pixel (x, y).
func (b *ScoreBuffer) Set(x, y int, scores [Channels]float64) {
	off := (y*b.width + x) * Channels
	copy(b.data[off:off+Channels], scores[:])
}

// Rows returns a view of rows [start, end) that shares storage with the buffer.
// Workers write their band through it, so no two views overlap.
func (b *ScoreBuffer) Rows(start, end int) (*ScoreRows, error) {
	if start < 0 || end > b.height || start >= end {
		return nil, errors.Errorf("score rows [%d, %d) outside [0, %d)", start, end, b.height)
	}
	view, err := b.dense.Slice(tensor.S(start, end))
	if err != nil {
		return nil, errors.Wrapf(err, "slice score rows [%d, %d)", start, end)
	}
	return &ScoreRows{
		start: start,
		end:   end,
		width: b.width,
		view:  view,
		data:  view.Data().([]float64),
	}, nil
}

// ScoreRows is a band of rows of a ScoreBuffer. Coordinates stay image-absolute.
type ScoreRows struct {
	start int
	end   int
	width int
	view  tensor.View
	data  []float64
}

// Shape is the (rows, width, channels) shape of the band.
func (r *ScoreRows) Shape() tensor.Shape {
	return r.view.Shape()
}

// At returns the scores stored for pixel (x, y), with start <= y < end.
func (r *ScoreRows) At(x, y int) [Channels]float64 {
	off := ((y-r.start)*r.width + x) * Channels
	return [Channels]float64{r.data[off], r.data[off+1], r.data[off+2]}
}

// Set stores the scores for pixel (x, y), with start <= y < end.
func (r *ScoreRows) Set(x, y int, scores [Channels]float64) {
	off := ((y-r.start)*r.width + x) * Channels
	copy(r.data[off:off+Channels], scores[:])
}

// saturate is the clamped gain applied to a channel difference.
func saturate(diff, slope, limit float64) float64 {
	v := diff * slope
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}

// scorer computes the chromatic/spatial score of single pixels. It only reads its inputs.
type scorer struct {
	pix     []byte
	width   int
	samples SampleSet
	slope   float64
	limit   float64
	// gate is the locality radius, H/5 in whole pixels; samples closer than this are ignored.
	gate float64
}

func newScorer(pix []byte, width, height int, samples SampleSet, cfg Config) *scorer {
	return &scorer{
		pix:     pix,
		width:   width,
		samples: samples,
		slope:   float64(cfg.Slope),
		limit:   float64(cfg.Limit),
		gate:    float64(height / 5),
	}
}

// Score computes the three channel scores of pixel (x, y).
//
// Every sample at least gate pixels away, and never the pixel itself, contributes saturate(Δ)/d to the channel
// numerators and limit/d to the shared denominator. When no sample contributes, or
// limit is zero, the denominator is zero and all scores are 0.
func (s *scorer) Score(x, y int) [Channels]float64 {
	var sums [Channels]float64
	denominator := 0.0
	off := (y*s.width + x) * BytesPerPixel

	for _, p := range s.samples {
		dx := float64(x - p.X)
		dy := float64(y - p.Y)
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist == 0 || dist < s.gate {
			continue
		}
		soff := (p.Y*s.width + p.X) * BytesPerPixel
		for c := 0; c < Channels; c++ {
			diff := float64(int(s.pix[off+c]) - int(s.pix[soff+c]))
			sums[c] += saturate(diff, s.slope, s.limit) / dist
		}
		denominator += s.limit / dist
	}

	if denominator == 0 {
		return [Channels]float64{}
	}
	for c := range sums {
		sums[c] /= denominator
	}
	return sums
}

// scoreRows fills the band of rows and returns the extrema seen in it.
func (s *scorer) scoreRows(rows *ScoreRows) Extrema {
	local := NewExtrema()
	for y := rows.start; y < rows.end; y++ {
		for x := 0; x < s.width; x++ {
			scores := s.Score(x, y)
			rows.Set(x, y, scores)
			local.Observe(scores)
		}
	}
	return local
}
