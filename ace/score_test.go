package ace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaturate(t *testing.T) {
	tests := []struct {
		diff, slope, limit, want float64
	}{
		{0, 10, 1000, 0},
		{5, 10, 1000, 50},
		{-5, 10, 1000, -50},
		{200, 10, 1000, 1000},
		{-200, 10, 1000, -1000},
		{3, 0, 1000, 0},
		{3, 10, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, saturate(tt.diff, tt.slope, tt.limit), "saturate(%v, %v, %v)", tt.diff, tt.slope, tt.limit)
	}
}

// TestScoreLocalityGate places samples near the target that differ wildly in color and
// far samples that match it exactly. Only the far samples may count, so the score is 0.
func TestScoreLocalityGate(t *testing.T) {
	const w, h = 10, 10 // gate = 2
	pix := uniform(w, h, 100, 100, 100)
	setPixel := func(x, y int, r, g, b byte) {
		off := (y*w + x) * BytesPerPixel
		pix[off], pix[off+1], pix[off+2] = r, g, b
	}
	near := SampleSet{{5, 6}, {6, 5}, {4, 4}, {6, 6}, {5, 4}}
	for _, p := range near {
		setPixel(p.X, p.Y, 255, 0, 17)
	}
	far := SampleSet{{0, 0}, {9, 9}, {0, 9}}

	sc := newScorer(pix, w, h, append(append(SampleSet{}, near...), far...), Config{Slope: 10, Limit: 1000})
	assert.Equal(t, [Channels]float64{0, 0, 0}, sc.Score(5, 5))

	// With only near samples nothing contributes at all.
	onlyNear := newScorer(pix, w, h, near, Config{Slope: 10, Limit: 1000})
	assert.Equal(t, [Channels]float64{0, 0, 0}, onlyNear.Score(5, 5))
}

func TestScoreGateBoundaryIncluded(t *testing.T) {
	const w, h = 10, 10 // gate = 2, a sample at exactly distance 2 counts
	pix := uniform(w, h, 100, 100, 100)
	off := (5*w + 7) * BytesPerPixel
	pix[off] = 90 // red differs by +10 from the target's point of view

	sc := newScorer(pix, w, h, SampleSet{{7, 5}}, Config{Slope: 1, Limit: 1000})
	got := sc.Score(5, 5)
	// numerator = (10/2), denominator = 1000/2
	assert.InDelta(t, 0.01, got[0], 1e-15)
	assert.Equal(t, 0.0, got[1])
	assert.Equal(t, 0.0, got[2])
}

func TestScoreGateUsesWholePixels(t *testing.T) {
	const w, h = 12, 12 // gate = 12/5 = 2
	pix := uniform(w, h, 100, 100, 100)
	off := (1*w + 2) * BytesPerPixel
	pix[off] = 90

	// The sample at (2, 1) is sqrt(5) ≈ 2.24 away from (0, 0): inside 2.4, outside 2.
	sc := newScorer(pix, w, h, SampleSet{{2, 1}}, Config{Slope: 1, Limit: 1000})
	got := sc.Score(0, 0)
	assert.InDelta(t, 0.01, got[0], 1e-15)
	assert.Equal(t, 0.0, got[1])
	assert.Equal(t, 0.0, got[2])
}

func TestScoreSkipsSelfOnShortImages(t *testing.T) {
	const w, h = 4, 3 // gate = 0
	pix := noise(w, h)

	sc := newScorer(pix, w, h, SampleSet{{1, 1}}, Config{Slope: 10, Limit: 1000})
	assert.Equal(t, [Channels]float64{}, sc.Score(1, 1), "a pixel never scores against itself")

	got := sc.Score(2, 1)
	for c := 0; c < Channels; c++ {
		assert.False(t, math.IsNaN(got[c]) || math.IsInf(got[c], 0))
	}
	off, soff := (1*w+2)*BytesPerPixel, (1*w+1)*BytesPerPixel
	want := saturate(float64(int(pix[off])-int(pix[soff])), 10, 1000) / 1000
	assert.InDelta(t, want, got[0], 1e-12)
}

func TestScoreWeightsByDistance(t *testing.T) {
	const w, h = 20, 5 // gate = 1
	pix := uniform(w, h, 50, 50, 50)
	// Two samples: a brighter one at distance 3 and a darker one at distance 12.
	set := func(x int, v byte) {
		off := (2*w + x) * BytesPerPixel
		pix[off], pix[off+1], pix[off+2] = v, v, v
	}
	set(3, 60)
	set(12, 40)

	sc := newScorer(pix, w, h, SampleSet{{3, 2}, {12, 2}}, Config{Slope: 2, Limit: 100})
	got := sc.Score(0, 2)

	num := (-20.0)/3 + 20.0/12
	den := 100.0/3 + 100.0/12
	for c := 0; c < Channels; c++ {
		assert.InDelta(t, num/den, got[c], 1e-12)
	}
	assert.Less(t, got[0], 0.0, "the closer, brighter sample dominates")
}

func TestScoreRowsTracksExtrema(t *testing.T) {
	const w, h = 6, 6
	pix := noise(w, h)
	samples, err := GenerateSamples(3, 12, w, h)
	require.NoError(t, err)
	sc := newScorer(pix, w, h, samples, Config{Slope: 10, Limit: 1000})

	buf := NewScoreBuffer(w, h)
	rows, err := buf.Rows(2, 4)
	require.NoError(t, err)
	ext := sc.scoreRows(rows)

	want := NewExtrema()
	for y := 2; y < 4; y++ {
		for x := 0; x < w; x++ {
			s := sc.Score(x, y)
			assert.Equal(t, s, buf.At(x, y))
			want.Observe(s)
		}
	}
	assert.Equal(t, want, ext)

	// Rows outside the range stay untouched.
	assert.Equal(t, [Channels]float64{}, buf.At(0, 0))
	assert.Equal(t, [Channels]float64{}, buf.At(w-1, h-1))
}

func TestScoreBufferLayout(t *testing.T) {
	buf := NewScoreBuffer(3, 2)
	assert.Equal(t, []int{2, 3, Channels}, []int(buf.Tensor().Shape()))

	buf.Set(2, 1, [Channels]float64{1.5, -2, math.Pi})
	assert.Equal(t, [Channels]float64{1.5, -2, math.Pi}, buf.At(2, 1))

	data := buf.Tensor().Data().([]float64)
	assert.Equal(t, 1.5, data[(1*3+2)*Channels])
}

func TestScoreRowsShareStorage(t *testing.T) {
	buf := NewScoreBuffer(4, 5)
	rows, err := buf.Rows(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, Channels}, []int(rows.Shape()))

	rows.Set(3, 2, [Channels]float64{7, 8, 9})
	assert.Equal(t, [Channels]float64{7, 8, 9}, buf.At(3, 2))
	buf.Set(0, 1, [Channels]float64{-1, 0, 1})
	assert.Equal(t, [Channels]float64{-1, 0, 1}, rows.At(0, 1))

	// A single-row band keeps its data even though its shape drops the row axis.
	single, err := buf.Rows(4, 5)
	require.NoError(t, err)
	single.Set(2, 4, [Channels]float64{4, 4, 4})
	assert.Equal(t, [Channels]float64{4, 4, 4}, buf.At(2, 4))

	for _, r := range [][2]int{{-1, 2}, {3, 6}, {2, 2}} {
		_, err := buf.Rows(r[0], r[1])
		assert.Error(t, err, "rows %v", r)
	}
}
