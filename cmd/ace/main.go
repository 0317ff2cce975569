package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nvr-ai/go-restore/ace"
	"github.com/nvr-ai/go-restore/config"
	"github.com/nvr-ai/go-restore/filter"
	"github.com/nvr-ai/go-restore/images"
	"github.com/nvr-ai/go-restore/util"
)

const usage = `Usage:
  ace [flags] <input> [output]
  ace [flags] -dir <input-dir> [-out-dir <output-dir>]

Flags:
`

// cli holds the parsed command line.
type cli struct {
	cfg     *config.Config
	dir     string
	analyze bool
	args    []string
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	c, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if c.dir != "" {
		if err := equalizeDirectory(ctx, c); err != nil {
			log.Fatal(err)
		}
		return
	}

	output := ""
	if len(c.args) == 2 {
		output = c.args[1]
	} else {
		output = outputPath(c.args[0], filepath.Dir(c.args[0]), c.cfg.Output)
	}
	if err := equalizeFile(c.args[0], output, c.cfg, c.analyze); err != nil {
		log.Fatal(err)
	}
}

// parseArgs reads flags on top of the optional -config file. Only flags that were set
// explicitly override the file.
func parseArgs(args []string) (*cli, error) {
	fs := flag.NewFlagSet("ace", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	defaults := config.DefaultConfig()
	var (
		c           cli
		configPath  string
		outDir      string
		format      string
		degenerate  string
		slope       int
		limit       int
		samples     int
		threads     int
		seed        uint64
		maxWidth    int
		maxHeight   int
		quality     int
		concurrency int
	)
	fs.StringVar(&configPath, "config", "", "YAML or JSON configuration file")
	fs.StringVar(&c.dir, "dir", "", "Equalize every image in this directory")
	fs.StringVar(&outDir, "out-dir", defaults.Output.Dir, "Output directory for -dir mode")
	fs.StringVar(&format, "format", "", "Output format (jpeg, png, webp, bmp, tiff); default keeps the input format")
	fs.StringVar(&degenerate, "degenerate", ace.DegeneratePassthrough.String(), "Flat channel policy: passthrough or fail")
	fs.IntVar(&slope, "slope", defaults.ACE.Slope, "Gain applied to channel differences")
	fs.IntVar(&limit, "limit", defaults.ACE.Limit, "Saturation bound of the clamped difference")
	fs.IntVar(&samples, "samples", defaults.ACE.Samples, "Number of reference samples per pixel")
	fs.IntVar(&threads, "threads", 0, "Workers per image (default: number of CPUs)")
	fs.Uint64Var(&seed, "seed", 0, "Sample seed (default: current time)")
	fs.IntVar(&maxWidth, "max-width", 0, "Downscale inputs wider than this before equalizing")
	fs.IntVar(&maxHeight, "max-height", 0, "Downscale inputs taller than this before equalizing")
	fs.IntVar(&quality, "quality", defaults.Output.Quality, "JPEG/WebP quality, 1-100")
	fs.IntVar(&concurrency, "concurrency", defaults.Batch.Concurrency, "Images equalized at once in -dir mode")
	fs.BoolVar(&c.analyze, "analyze", false, "Print per-channel statistics before and after")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	c.cfg = defaults
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		c.cfg = loaded
	}

	var policyErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "out-dir":
			c.cfg.Output.Dir = outDir
		case "format":
			c.cfg.Output.Format = images.ImageFormat(strings.ToLower(format))
		case "degenerate":
			c.cfg.ACE.Degenerate, policyErr = ace.ParseDegeneratePolicy(degenerate)
		case "slope":
			c.cfg.ACE.Slope = slope
		case "limit":
			c.cfg.ACE.Limit = limit
		case "samples":
			c.cfg.ACE.Samples = samples
		case "threads":
			c.cfg.ACE.Threads = threads
		case "seed":
			c.cfg.ACE = c.cfg.ACE.WithSeed(seed)
		case "max-width":
			c.cfg.Output.MaxWidth = maxWidth
		case "max-height":
			c.cfg.Output.MaxHeight = maxHeight
		case "quality":
			c.cfg.Output.Quality = quality
		case "concurrency":
			c.cfg.Batch.Concurrency = concurrency
		}
	})
	if policyErr != nil {
		return nil, policyErr
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, err
	}

	c.args = fs.Args()
	if c.dir == "" && (len(c.args) < 1 || len(c.args) > 2) {
		fs.Usage()
		return nil, fmt.Errorf("expected <input> [output], got %d arguments", len(c.args))
	}
	if c.dir != "" && len(c.args) > 0 {
		return nil, fmt.Errorf("-dir does not take positional arguments")
	}
	return &c, nil
}

// outputPath places "<stem><suffix>.<ext>" in dir. The extension follows out.Format,
// or the input's extension when no format is forced.
func outputPath(input, dir string, out config.OutputConfig) string {
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	switch out.Format {
	case "":
	case images.FormatJPEG:
		ext = ".jpg"
	case images.FormatTIFF:
		ext = ".tif"
	default:
		ext = "." + string(out.Format)
	}
	return filepath.Join(dir, stem+out.Suffix+ext)
}

// prepare downscales img to the configured bounds.
func prepare(img image.Image, out config.OutputConfig, name string) image.Image {
	fitted, resized := images.Fit(img, out.MaxWidth, out.MaxHeight)
	if resized {
		b := img.Bounds()
		log.Printf("%s: downscaled %dx%d to %dx%d", name, b.Dx(), b.Dy(), fitted.Bounds().Dx(), fitted.Bounds().Dy())
	}
	return fitted
}

func equalizeFile(input, output string, cfg *config.Config, analyze bool) error {
	img, err := images.Open(input)
	if err != nil {
		return err
	}
	img = prepare(img, cfg.Output, input)

	result, stats, err := filter.ACE(img, cfg.ACE)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	logStats(input, stats)

	if analyze {
		printAnalysis(os.Stdout, images.FromImage(img), images.FromImage(result))
	}

	if err := images.Save(output, result, cfg.Output.Quality); err != nil {
		return err
	}
	log.Printf("%s -> %s", input, output)
	return nil
}

func equalizeDirectory(ctx context.Context, c *cli) error {
	files, err := util.LoadDirectoryImageFiles(c.dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no images found in %s", c.dir)
	}
	if err := os.MkdirAll(c.cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	jobs := make([]filter.Job, 0, len(files))
	for _, file := range files {
		img, err := images.Decode(file.Data, file.Format)
		if err != nil {
			log.Printf("skipping %s: %v", file.Path, err)
			continue
		}
		jobs = append(jobs, filter.Job{Name: file.Path, Image: prepare(img, c.cfg.Output, file.Path)})
	}

	start := time.Now()
	var done atomic.Int64
	err = filter.Batch(ctx, jobs, c.cfg.Batch.Concurrency, c.cfg.ACE, func(job filter.Job, res filter.Result) error {
		logStats(job.Name, res.Stats)
		if c.analyze {
			printAnalysis(os.Stdout, images.FromImage(job.Image), images.FromImage(res.Image))
		}
		output := outputPath(job.Name, c.cfg.Output.Dir, c.cfg.Output)
		if err := images.Save(output, res.Image, c.cfg.Output.Quality); err != nil {
			return err
		}
		log.Printf("[%d/%d] %s -> %s", done.Add(1), len(jobs), job.Name, output)
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("equalized %d images in %v", len(jobs), time.Since(start).Round(time.Millisecond))
	return nil
}

func logStats(name string, stats ace.Stats) {
	log.Printf("%s: seed=%d workers=%d score=%v normalize=%v total=%v",
		name, stats.Seed, stats.Workers, stats.ScoreDuration.Round(time.Millisecond),
		stats.NormalizeDuration.Round(time.Millisecond), stats.Total().Round(time.Millisecond))
	for c, flat := range stats.Degenerate {
		if flat {
			log.Printf("%s: channel %d has no contrast, copied through", name, c)
		}
	}
}
