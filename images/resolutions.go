package images

import (
	"fmt"
	"math"
	"sort"
)

// AspectRatio represents an aspect ratio by name (e.g., "16:9").
type AspectRatio string

// Common aspect ratios of scanned pages and photographs.
const (
	AspectRatio169 AspectRatio = "16:9"
	AspectRatio43  AspectRatio = "4:3"
	AspectRatioISO AspectRatio = "1:√2"  // ISO 216 paper (A-series)
	AspectRatioUSL AspectRatio = "17:22" // US Letter
)

// ResolutionType is the name of a standard workload size.
type ResolutionType string

// Standard sizes for equalization workloads: scanned pages at common scanner DPIs
// and typical camera frames.
const (
	ResolutionTypeThumbnail ResolutionType = "Thumbnail"
	ResolutionTypeVGA       ResolutionType = "VGA"
	ResolutionTypeA4at75    ResolutionType = "A4 @ 75dpi"
	ResolutionTypeHD720p    ResolutionType = "HD 720p"
	ResolutionTypeA4at150   ResolutionType = "A4 @ 150dpi"
	ResolutionTypeLetter150 ResolutionType = "Letter @ 150dpi"
	ResolutionTypeFHD1080p  ResolutionType = "Full HD 1080p"
	ResolutionTypeA4at300   ResolutionType = "A4 @ 300dpi"
	ResolutionTypeLetter300 ResolutionType = "Letter @ 300dpi"
	ResolutionType12MP      ResolutionType = "12MP (4:3)"
	ResolutionTypeA4at600   ResolutionType = "A4 @ 600dpi"
)

// ResolutionPixels describes the exact dimensions of a resolution.
type ResolutionPixels struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Resolution describes a named workload size.
type Resolution struct {
	Name        ResolutionType   `json:"name" yaml:"name"`
	AspectRatio AspectRatio      `json:"aspectRatio" yaml:"aspectRatio"`
	Pixels      ResolutionPixels `json:"pixels" yaml:"pixels"`
	// Heavy marks sizes that take minutes per image at default sample counts.
	Heavy bool `json:"heavy" yaml:"heavy"`
}

// GetMegaPixels calculates the megapixel value based on the resolution's pixel dimensions.
// It returns the value rounded to two decimal places (e.g., 2.07 for 1080p).
func (r Resolution) GetMegaPixels() float64 {
	if r.Pixels.Width <= 0 || r.Pixels.Height <= 0 {
		return 0.0
	}
	mp := float64(r.Pixels.Width*r.Pixels.Height) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// Comparisons returns the number of pixel-to-sample comparisons ACE performs at this
// size, the dominant term of its running time.
func (r Resolution) Comparisons(samples int) int64 {
	if r.Pixels.Width <= 0 || r.Pixels.Height <= 0 || samples <= 0 {
		return 0
	}
	return int64(r.Pixels.Width) * int64(r.Pixels.Height) * int64(samples)
}

// String returns a human-readable summary of the resolution.
func (r Resolution) String() string {
	return fmt.Sprintf("%s (%dx%d, %.2fMP)", r.Name, r.Pixels.Width, r.Pixels.Height, r.GetMegaPixels())
}

// resolutions stores the catalogue keyed by type.
var resolutions = map[ResolutionType]Resolution{
	ResolutionTypeThumbnail: {
		Name:        ResolutionTypeThumbnail,
		AspectRatio: AspectRatio43,
		Pixels:      ResolutionPixels{Width: 160, Height: 120},
	},
	ResolutionTypeVGA: {
		Name:        ResolutionTypeVGA,
		AspectRatio: AspectRatio43,
		Pixels:      ResolutionPixels{Width: 640, Height: 480},
	},
	ResolutionTypeA4at75: {
		Name:        ResolutionTypeA4at75,
		AspectRatio: AspectRatioISO,
		Pixels:      ResolutionPixels{Width: 620, Height: 877},
	},
	ResolutionTypeHD720p: {
		Name:        ResolutionTypeHD720p,
		AspectRatio: AspectRatio169,
		Pixels:      ResolutionPixels{Width: 1280, Height: 720},
	},
	ResolutionTypeA4at150: {
		Name:        ResolutionTypeA4at150,
		AspectRatio: AspectRatioISO,
		Pixels:      ResolutionPixels{Width: 1240, Height: 1754},
	},
	ResolutionTypeLetter150: {
		Name:        ResolutionTypeLetter150,
		AspectRatio: AspectRatioUSL,
		Pixels:      ResolutionPixels{Width: 1275, Height: 1650},
	},
	ResolutionTypeFHD1080p: {
		Name:        ResolutionTypeFHD1080p,
		AspectRatio: AspectRatio169,
		Pixels:      ResolutionPixels{Width: 1920, Height: 1080},
	},
	ResolutionTypeA4at300: {
		Name:        ResolutionTypeA4at300,
		AspectRatio: AspectRatioISO,
		Pixels:      ResolutionPixels{Width: 2480, Height: 3508},
		Heavy:       true,
	},
	ResolutionTypeLetter300: {
		Name:        ResolutionTypeLetter300,
		AspectRatio: AspectRatioUSL,
		Pixels:      ResolutionPixels{Width: 2550, Height: 3300},
		Heavy:       true,
	},
	ResolutionType12MP: {
		Name:        ResolutionType12MP,
		AspectRatio: AspectRatio43,
		Pixels:      ResolutionPixels{Width: 4000, Height: 3000},
		Heavy:       true,
	},
	ResolutionTypeA4at600: {
		Name:        ResolutionTypeA4at600,
		AspectRatio: AspectRatioISO,
		Pixels:      ResolutionPixels{Width: 4960, Height: 7016},
		Heavy:       true,
	},
}

// GetAllResolutions returns every catalogued resolution, smallest first.
func GetAllResolutions() []Resolution {
	all := make([]Resolution, 0, len(resolutions))
	for _, res := range resolutions {
		all = append(all, res)
	}
	sortByArea(all)
	return all
}

// GetLightResolutions returns the resolutions not marked Heavy, smallest first.
// These are the sizes used by quick benchmark runs.
func GetLightResolutions() []Resolution {
	light := make([]Resolution, 0, len(resolutions))
	for _, res := range resolutions {
		if !res.Heavy {
			light = append(light, res)
		}
	}
	sortByArea(light)
	return light
}

// GetResolutionByType retrieves a specific resolution by its type.
func GetResolutionByType(t ResolutionType) (Resolution, bool) {
	res, ok := resolutions[t]
	return res, ok
}

// GetHighestResolutionUnderDimensions retrieves the largest catalogued resolution that
// fits within width×height.
//
// Arguments:
//   - width: The maximum width.
//   - height: The maximum height.
//
// Returns:
//   - Resolution: The largest fitting resolution.
//   - bool: True if a resolution was found, otherwise false.
func GetHighestResolutionUnderDimensions(width, height int) (Resolution, bool) {
	var highest Resolution
	var found bool

	for _, res := range GetAllResolutions() {
		if res.Pixels.Width <= width && res.Pixels.Height <= height {
			highest = res
			found = true
		}
	}
	return highest, found
}

func sortByArea(list []Resolution) {
	sort.Slice(list, func(i, j int) bool {
		ai := list[i].Pixels.Width * list[i].Pixels.Height
		aj := list[j].Pixels.Width * list[j].Pixels.Height
		if ai != aj {
			return ai < aj
		}
		return list[i].Name < list[j].Name
	})
}
