package ace

import "math"

// normalizer maps stored scores back into 8-bit channel values.
type normalizer struct {
	in     []byte
	out    []byte
	width  int
	ranges Extrema
	// slopes[c] is 255/(max-min); unused for flat channels.
	slopes [Channels]float64
	flat   [Channels]bool
}

func newNormalizer(in, out []byte, width int, ranges Extrema) *normalizer {
	n := &normalizer{
		in:     in,
		out:    out,
		width:  width,
		ranges: ranges,
	}
	for c, r := range ranges {
		n.flat[c] = r.Flat()
		if !n.flat[c] {
			n.slopes[c] = 255.0 / (r.Max - r.Min)
		}
	}
	return n
}

// Scale linearly maps score from [min, max] to [0, 255], rounds to the nearest
// integer and clamps to the byte range. A flat range maps everything to 0.
func Scale(score float64, r Range) uint8 {
	if r.Flat() {
		return 0
	}
	return scaleWith(score, r.Min, 255.0/(r.Max-r.Min))
}

func scaleWith(score, min, slope float64) uint8 {
	v := math.Round((score - min) * slope)
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// normalizeRows writes the output rows covered by the band. Flat channels copy the
// input channel through; alpha is always opaque.
func (n *normalizer) normalizeRows(rows *ScoreRows) {
	for y := rows.start; y < rows.end; y++ {
		for x := 0; x < n.width; x++ {
			off := (y*n.width + x) * BytesPerPixel
			scores := rows.At(x, y)
			for c := 0; c < Channels; c++ {
				if n.flat[c] {
					n.out[off+c] = n.in[off+c]
					continue
				}
				n.out[off+c] = scaleWith(scores[c], n.ranges[c].Min, n.slopes[c])
			}
			n.out[off+3] = 255
		}
	}
}
