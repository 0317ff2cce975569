package benchmark

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/nvr-ai/go-restore/ace"
	"github.com/nvr-ai/go-restore/images"
	"github.com/nvr-ai/go-restore/profiler"
	"github.com/nvr-ai/go-restore/util"
)

// Suite manages and executes benchmark scenarios
type Suite struct {
	scenarios    []Scenario
	outputDir    string
	compressJSON bool
	corpus       []image.Image
	mu           sync.RWMutex
	results      []PerformanceMetrics
}

// NewSuiteArgs represents the arguments for creating a new benchmark suite.
type NewSuiteArgs struct {
	// OutputPath is the directory SaveResults writes to.
	OutputPath string `json:"outputPath" yaml:"outputPath"`
	// CompressJSON additionally writes a zstd-compressed copy of the JSON results.
	CompressJSON bool `json:"compressJSON" yaml:"compressJSON"`
}

// NewSuite creates a new benchmark suite.
//
// Arguments:
//   - args: The arguments for creating a new benchmark suite.
//
// Returns:
//   - *Suite: The benchmark suite. Without a corpus it measures synthetic images.
func NewSuite(args NewSuiteArgs) *Suite {
	return &Suite{
		outputDir:    args.OutputPath,
		compressJSON: args.CompressJSON,
		scenarios:    make([]Scenario, 0),
		results:      make([]PerformanceMetrics, 0),
	}
}

// AddScenario adds a test scenario to the benchmark suite
func (bs *Suite) AddScenario(scenario Scenario) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, scenario)
}

// AddScenarioSet adds every scenario of a set.
func (bs *Suite) AddScenarioSet(set *ScenarioSet) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, set.Scenarios...)
}

// LoadCorpus decodes every image in dir. Each scenario resizes the corpus to its resolution.
func (bs *Suite) LoadCorpus(dir string) error {
	files, err := util.LoadDirectoryImageFiles(dir)
	if err != nil {
		return fmt.Errorf("failed to read corpus: %w", err)
	}

	corpus := make([]image.Image, 0, len(files))
	for _, file := range files {
		img, err := images.Decode(file.Data, file.Format)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", file.Path, err)
		}
		corpus = append(corpus, img)
	}
	if len(corpus) == 0 {
		return fmt.Errorf("no valid images found in directory: %s", dir)
	}

	bs.mu.Lock()
	bs.corpus = corpus
	bs.mu.Unlock()
	return nil
}

// SyntheticImage returns a deterministic test card: diagonal gradients with a darker
// band, so every channel has spread.
func SyntheticImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8(255 * x / max(width-1, 1))
			g := uint8(255 * y / max(height-1, 1))
			b := uint8((x*7 + y*3) % 256)
			if y > height/3 && y < 2*height/3 {
				r, g = r/2, g/2
			}
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

// prepare resizes the corpus to the scenario's resolution and converts it to RGBA8.
func (bs *Suite) prepare(scenario Scenario) ([]*images.Bitmap, time.Duration) {
	bs.mu.RLock()
	corpus := bs.corpus
	bs.mu.RUnlock()

	w, h := scenario.Resolution.Pixels.Width, scenario.Resolution.Pixels.Height
	start := time.Now()
	if len(corpus) == 0 {
		return []*images.Bitmap{images.FromImage(SyntheticImage(w, h))}, time.Since(start)
	}

	inputs := make([]*images.Bitmap, len(corpus))
	for i, img := range corpus {
		inputs[i] = images.FromImage(images.Resize(img, w, h))
	}
	return inputs, time.Since(start)
}

// RunScenario executes a single benchmark scenario
func (bs *Suite) RunScenario(ctx context.Context, scenario Scenario) (*PerformanceMetrics, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	metrics := &PerformanceMetrics{
		Scenario:  scenario,
		Timestamp: time.Now(),
	}

	inputs, resizeDuration := bs.prepare(scenario)
	metrics.ResizeDuration = resizeDuration

	w, h := scenario.Resolution.Pixels.Width, scenario.Resolution.Pixels.Height
	out := make([]byte, w*h*ace.BytesPerPixel)
	cfg := scenario.Config()

	// Warmup runs
	for i := 0; i < scenario.WarmupRuns; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_ = ace.Apply(w, h, inputs[i%len(inputs)].Pix, out, cfg)
	}

	// Capture initial memory stats
	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	phases := profiler.New(scenario.Iterations)
	errors := 0
	startTime := time.Now()

	for i := 0; i < scenario.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stats, err := ace.ApplyWithStats(w, h, inputs[i%len(inputs)].Pix, out, cfg)
		if err != nil {
			errors++
			continue
		}
		phases.Record("sample", stats.SampleDuration)
		phases.Record("score", stats.ScoreDuration)
		phases.Record("reduce", stats.ReduceDuration)
		phases.Record("normalize", stats.NormalizeDuration)
		phases.Record("total", stats.Total())
		metrics.Workers = stats.Workers

		if metrics.Checksum == "" {
			metrics.Checksum = images.Checksum(&images.Bitmap{Width: w, Height: h, Pix: out})
		}
	}

	totalDuration := time.Since(startTime)

	// Capture final memory stats
	var endMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&endMem)

	succeeded := scenario.Iterations - errors
	metrics.TotalDuration = totalDuration
	metrics.ErrorRate = float64(errors) / float64(scenario.Iterations)
	metrics.Phases = phases.Summaries()
	if succeeded > 0 {
		for _, phase := range metrics.Phases {
			switch phase.Name {
			case "sample":
				metrics.SampleDuration = phase.Mean
			case "score":
				metrics.ScoreDuration = phase.Mean
			case "reduce":
				metrics.ReduceDuration = phase.Mean
			case "normalize":
				metrics.NormalizeDuration = phase.Mean
			}
		}

		seconds := totalDuration.Seconds()
		if seconds > 0 {
			metrics.ImagesPerSecond = float64(succeeded) / seconds
			metrics.MegapixelsPerSecond = float64(succeeded) * float64(w*h) / 1e6 / seconds
			metrics.ComparisonsPerSecond = float64(succeeded) * float64(scenario.Resolution.Comparisons(scenario.Samples)) / seconds
		}
	}

	metrics.MemoryStats = MemoryMetrics{
		AllocBytes:      endMem.Alloc,
		TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
		SysBytes:        endMem.Sys,
		NumGC:           endMem.NumGC - startMem.NumGC,
		HeapAllocBytes:  endMem.HeapAlloc,
		HeapSysBytes:    endMem.HeapSys,
	}

	metrics.CPUStats = CPUMetrics{
		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}

	return metrics, nil
}

// RunAllScenarios executes all configured benchmark scenarios and saves the results.
// A cancelled context stops the run; results gathered so far are still saved.
func (bs *Suite) RunAllScenarios(ctx context.Context) error {
	bs.mu.Lock()
	scenarios := make([]Scenario, len(bs.scenarios))
	copy(scenarios, bs.scenarios)
	bs.mu.Unlock()

	var runErr error
	for _, scenario := range scenarios {
		metrics, err := bs.RunScenario(ctx, scenario)
		if err != nil {
			if ctx.Err() != nil {
				runErr = ctx.Err()
				break
			}
			fmt.Printf("Scenario %s failed: %v\n", scenario.Name, err)
			continue
		}

		bs.mu.Lock()
		bs.results = append(bs.results, *metrics)
		bs.mu.Unlock()

		fmt.Printf("Scenario %s completed: %.2f MP/s, %d workers, checksum %s\n",
			scenario.Name, metrics.MegapixelsPerSecond, metrics.Workers, metrics.Checksum)
	}

	if _, err := bs.SaveResults(); err != nil {
		return err
	}
	return runErr
}

// SaveResults persists benchmark results to the output directory as JSON, optionally
// zstd-compressed JSON, and a CSV summary.
//
// Returns:
//   - []string: The paths written.
//   - error: If the directory or any file cannot be written.
func (bs *Suite) SaveResults() ([]string, error) {
	results := bs.GetResults()

	// Ensure output directory exists
	if err := os.MkdirAll(bs.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_results_%s.json", timestamp))
	summaryFile := filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_summary_%s.csv", timestamp))
	written := []string{resultsFile, summaryFile}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(resultsFile, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write results file: %w", err)
	}

	if bs.compressJSON {
		compressed := resultsFile + ".zst"
		if err := writeZstd(compressed, data); err != nil {
			return nil, fmt.Errorf("failed to write compressed results: %w", err)
		}
		written = append(written, compressed)
	}

	if err := saveSummaryCSV(summaryFile, results); err != nil {
		return nil, fmt.Errorf("failed to save summary CSV: %w", err)
	}

	for _, path := range written {
		fmt.Printf("Results saved to: %s\n", path)
	}
	return written, nil
}

func writeZstd(filename string, data []byte) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	enc, err := zstd.NewWriter(file, zstd.WithEncoderConcurrency(runtime.NumCPU()))
	if err != nil {
		return err
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return file.Sync()
}

// ReadResults loads results written by SaveResults, compressed (.zst) or not.
func ReadResults(filename string) ([]PerformanceMetrics, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var r io.Reader = file
	if filepath.Ext(filename) == ".zst" {
		dec, err := zstd.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open compressed results: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	var results []PerformanceMetrics
	if err := json.NewDecoder(r).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal results: %w", err)
	}
	return results, nil
}

var summaryHeader = []string{
	"Scenario", "Resolution", "Width", "Height", "Threads", "Samples", "Workers",
	"MP_per_s", "Images_per_s", "Score_ms", "Normalize_ms", "Total_Duration_ms",
	"Alloc_MB", "Error_Rate", "Checksum",
}

func saveSummaryCSV(filename string, results []PerformanceMetrics) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(summaryHeader); err != nil {
		return err
	}

	for _, result := range results {
		s := result.Scenario
		record := []string{
			s.Name,
			string(s.Resolution.Name),
			strconv.Itoa(s.Resolution.Pixels.Width),
			strconv.Itoa(s.Resolution.Pixels.Height),
			strconv.Itoa(s.Threads),
			strconv.Itoa(s.Samples),
			strconv.Itoa(result.Workers),
			strconv.FormatFloat(result.MegapixelsPerSecond, 'f', 3, 64),
			strconv.FormatFloat(result.ImagesPerSecond, 'f', 3, 64),
			strconv.FormatFloat(float64(result.ScoreDuration.Nanoseconds())/1e6, 'f', 2, 64),
			strconv.FormatFloat(float64(result.NormalizeDuration.Nanoseconds())/1e6, 'f', 2, 64),
			strconv.FormatFloat(float64(result.TotalDuration.Nanoseconds())/1e6, 'f', 2, 64),
			strconv.FormatFloat(float64(result.MemoryStats.TotalAllocBytes)/(1024*1024), 'f', 2, 64),
			strconv.FormatFloat(result.ErrorRate, 'f', 4, 64),
			result.Checksum,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// GetResults returns all benchmark results
func (bs *Suite) GetResults() []PerformanceMetrics {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	results := make([]PerformanceMetrics, len(bs.results))
	copy(results, bs.results)
	return results
}
