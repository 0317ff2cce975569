package main

import (
	"fmt"
	"io"

	"github.com/nvr-ai/go-restore/images"
)

var channelNames = [3]string{"R", "G", "B"}

// printAnalysis writes a before/after table of per-channel statistics.
func printAnalysis(w io.Writer, before, after *images.Bitmap) {
	in := images.ChannelStats(before)
	out := images.ChannelStats(after)

	fmt.Fprintf(w, "%-3s %8s %8s %8s %8s   %8s %8s %8s %8s\n",
		"ch", "mean", "std", "min", "max", "mean'", "std'", "min'", "max'")
	for c := range channelNames {
		fmt.Fprintf(w, "%-3s %8.2f %8.2f %8.0f %8.0f   %8.2f %8.2f %8.0f %8.0f\n",
			channelNames[c],
			in[c].Mean, in[c].StdDev, in[c].Min, in[c].Max,
			out[c].Mean, out[c].StdDev, out[c].Min, out[c].Max)
	}
}
