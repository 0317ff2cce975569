package images

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ChannelStat summarizes one color channel of a bitmap.
type ChannelStat struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Contrast is the channel's dynamic range, max - min.
func (s ChannelStat) Contrast() float64 {
	return s.Max - s.Min
}

// ChannelStats computes mean, standard deviation and range of the R, G and B channels.
// Alpha is ignored. A zero-sized bitmap yields zero values.
func ChannelStats(b *Bitmap) [3]ChannelStat {
	var out [3]ChannelStat
	if b == nil || len(b.Pix) < 4 {
		return out
	}

	n := len(b.Pix) / 4
	values := make([]float64, n)
	for c := 0; c < 3; c++ {
		for i := 0; i < n; i++ {
			values[i] = float64(b.Pix[i*4+c])
		}
		mean, std := stat.PopMeanStdDev(values, nil)
		out[c] = ChannelStat{
			Mean:   mean,
			StdDev: std,
			Min:    floats.Min(values),
			Max:    floats.Max(values),
		}
	}
	return out
}
