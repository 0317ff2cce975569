package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-restore/ace"
	"github.com/nvr-ai/go-restore/images"
)

// Scenario is one measured ACE configuration.
type Scenario struct {
	Name       string            `json:"name"       yaml:"name"`
	Resolution images.Resolution `json:"resolution" yaml:"resolution"`
	Threads    int               `json:"threads"    yaml:"threads"`
	Samples    int               `json:"samples"    yaml:"samples"`
	Slope      int               `json:"slope"      yaml:"slope"`
	Limit      int               `json:"limit"      yaml:"limit"`
	Seed       uint64            `json:"seed"       yaml:"seed"`
	Iterations int               `json:"iterations" yaml:"iterations"`
	WarmupRuns int               `json:"warmupRuns" yaml:"warmupRuns"`
	// Degenerate is the flat-channel policy; failed iterations count towards ErrorRate.
	Degenerate ace.DegeneratePolicy `json:"degenerate,omitempty" yaml:"degenerate,omitempty"`
}

// Config returns the ace.Config the scenario runs with.
func (s Scenario) Config() ace.Config {
	return ace.Config{
		Slope:   s.Slope,
		Limit:   s.Limit,
		Samples: s.Samples,
		Threads: s.Threads,
		Seed:    s.Seed,

		Degenerate: s.Degenerate,
	}
}

// Validate reports scenarios that cannot be run.
func (s Scenario) Validate() error {
	if s.Resolution.Pixels.Width <= 0 || s.Resolution.Pixels.Height <= 0 {
		return fmt.Errorf("scenario %s: invalid resolution %dx%d", s.Name, s.Resolution.Pixels.Width, s.Resolution.Pixels.Height)
	}
	if s.Iterations <= 0 {
		return fmt.Errorf("scenario %s: iterations must be positive", s.Name)
	}
	if err := s.Config().Validate(); err != nil {
		return fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return nil
}

// ScenarioBuilder helps build test scenarios with fluent API
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a builder with the library defaults (slope 10, limit 1000,
// 100 samples), one thread, seed 1, 10 iterations and one warmup run.
func NewScenarioBuilder(name string) *ScenarioBuilder {
	defaults := ace.DefaultConfig()
	return &ScenarioBuilder{
		scenario: Scenario{
			Name:       name,
			Threads:    1,
			Samples:    defaults.Samples,
			Slope:      defaults.Slope,
			Limit:      defaults.Limit,
			Seed:       1,
			Iterations: 10,
			WarmupRuns: 1,
		},
	}
}

// WithResolution sets a catalogued resolution.
func (sb *ScenarioBuilder) WithResolution(res images.Resolution) *ScenarioBuilder {
	sb.scenario.Resolution = res
	return sb
}

// WithSize sets a custom resolution named "WxH".
func (sb *ScenarioBuilder) WithSize(width, height int) *ScenarioBuilder {
	sb.scenario.Resolution = images.Resolution{
		Name:   images.ResolutionType(fmt.Sprintf("%dx%d", width, height)),
		Pixels: images.ResolutionPixels{Width: width, Height: height},
	}
	return sb
}

// WithThreads sets the number of workers.
func (sb *ScenarioBuilder) WithThreads(threads int) *ScenarioBuilder {
	sb.scenario.Threads = threads
	return sb
}

// WithSamples sets the sample count.
func (sb *ScenarioBuilder) WithSamples(samples int) *ScenarioBuilder {
	sb.scenario.Samples = samples
	return sb
}

// WithParameters sets slope and limit.
func (sb *ScenarioBuilder) WithParameters(slope, limit int) *ScenarioBuilder {
	sb.scenario.Slope = slope
	sb.scenario.Limit = limit
	return sb
}

// WithSeed sets the sample seed.
func (sb *ScenarioBuilder) WithSeed(seed uint64) *ScenarioBuilder {
	sb.scenario.Seed = seed
	return sb
}

// WithDegeneratePolicy sets how flat channels are handled.
func (sb *ScenarioBuilder) WithDegeneratePolicy(policy ace.DegeneratePolicy) *ScenarioBuilder {
	sb.scenario.Degenerate = policy
	return sb
}

// WithIterations sets the number of test iterations
func (sb *ScenarioBuilder) WithIterations(iterations int) *ScenarioBuilder {
	sb.scenario.Iterations = iterations
	return sb
}

// WithWarmupRuns sets the number of warmup runs
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// Build returns the configured test scenario
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ScenarioSet represents a collection of related test scenarios
type ScenarioSet struct {
	Name        string     `json:"name"        yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Scenarios   []Scenario `json:"scenarios"   yaml:"scenarios"`
}

// ThreadLadder returns 1, 2, 4, ... up to and including limit.
func ThreadLadder(limit int) []int {
	if limit < 1 {
		limit = 1
	}
	var ladder []int
	for n := 1; n < limit; n *= 2 {
		ladder = append(ladder, n)
	}
	return append(ladder, limit)
}

// PredefinedScenarios contains common benchmark scenario sets
type PredefinedScenarios struct{}

// GetQuickScenarios runs every light resolution single-threaded and with one worker per CPU.
func (ps *PredefinedScenarios) GetQuickScenarios() *ScenarioSet {
	scenarios := make([]Scenario, 0)
	for _, res := range images.GetLightResolutions() {
		for _, threads := range uniqueInts(1, runtime.NumCPU()) {
			scenarios = append(scenarios, NewScenarioBuilder(scenarioName("quick", res, threads, 100)).
				WithResolution(res).
				WithThreads(threads).
				WithIterations(3).
				Build())
		}
	}

	return &ScenarioSet{
		Name:        "Quick Performance Test",
		Description: "Light resolutions at default parameters, serial and fully parallel",
		Scenarios:   scenarios,
	}
}

// GetThreadScalingScenarios measures speedup over a thread ladder at a fixed size.
func (ps *PredefinedScenarios) GetThreadScalingScenarios(res images.Resolution, maxThreads int) *ScenarioSet {
	scenarios := make([]Scenario, 0)
	for _, threads := range ThreadLadder(maxThreads) {
		scenarios = append(scenarios, NewScenarioBuilder(scenarioName("threads", res, threads, 100)).
			WithResolution(res).
			WithThreads(threads).
			WithIterations(5).
			Build())
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Thread Scaling - %s", res.Name),
		Description: fmt.Sprintf("Compares 1..%d workers at %s", maxThreads, res),
		Scenarios:   scenarios,
	}
}

// GetSampleSweepScenarios measures how cost grows with the sample count.
func (ps *PredefinedScenarios) GetSampleSweepScenarios(res images.Resolution, threads int, samples []int) *ScenarioSet {
	scenarios := make([]Scenario, 0)
	for _, n := range samples {
		scenarios = append(scenarios, NewScenarioBuilder(scenarioName("samples", res, threads, n)).
			WithResolution(res).
			WithThreads(threads).
			WithSamples(n).
			WithIterations(5).
			Build())
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Sample Sweep - %s", res.Name),
		Description: fmt.Sprintf("Compares sample counts %v at %s with %d workers", samples, res, threads),
		Scenarios:   scenarios,
	}
}

// GetComprehensiveScenarios returns every resolution × threads × samples combination.
func (ps *PredefinedScenarios) GetComprehensiveScenarios(threads, samples []int) *ScenarioSet {
	scenarios := make([]Scenario, 0)
	for _, res := range images.GetAllResolutions() {
		iterations := 5
		if res.Heavy {
			iterations = 1
		}
		for _, t := range threads {
			for _, n := range samples {
				scenarios = append(scenarios, NewScenarioBuilder(scenarioName("full", res, t, n)).
					WithResolution(res).
					WithThreads(t).
					WithSamples(n).
					WithIterations(iterations).
					WithWarmupRuns(0).
					Build())
			}
		}
	}

	return &ScenarioSet{
		Name:        "Comprehensive Performance Test",
		Description: "Tests all combinations of resolutions, thread counts and sample counts",
		Scenarios:   scenarios,
	}
}

func scenarioName(prefix string, res images.Resolution, threads, samples int) string {
	return fmt.Sprintf("%s_%dx%d_t%d_s%d", prefix, res.Pixels.Width, res.Pixels.Height, threads, samples)
}

func uniqueInts(values ...int) []int {
	out := make([]int, 0, len(values))
	seen := make(map[int]bool, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// SaveScenarioSet saves a scenario set as YAML (.yaml, .yml) or JSON (anything else).
func SaveScenarioSet(scenarioSet *ScenarioSet, filename string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(filename) {
		data, err = yaml.Marshal(scenarioSet)
	} else {
		data, err = json.MarshalIndent(scenarioSet, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal scenario set: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}

	return nil
}

// LoadScenarioSet loads a scenario set written by SaveScenarioSet.
func LoadScenarioSet(filename string) (*ScenarioSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenarioSet ScenarioSet
	if isYAML(filename) {
		err = yaml.Unmarshal(data, &scenarioSet)
	} else {
		err = json.Unmarshal(data, &scenarioSet)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal scenario set: %w", err)
	}

	return &scenarioSet, nil
}

func isYAML(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// BenchmarkConfig represents the overall benchmark configuration
type BenchmarkConfig struct {
	OutputDir      string `json:"output_dir"      yaml:"output_dir"`
	CorpusPath     string `json:"corpus_path"     yaml:"corpus_path"`
	Profile        string `json:"profile"         yaml:"profile"`
	MaxThreads     int    `json:"max_threads"     yaml:"max_threads"`
	TimeoutSeconds int    `json:"timeout_seconds" yaml:"timeout_seconds"`
	CompressJSON   bool   `json:"compress_json"   yaml:"compress_json"`
}

// DefaultBenchmarkConfig returns a default benchmark configuration
func DefaultBenchmarkConfig() *BenchmarkConfig {
	return &BenchmarkConfig{
		OutputDir:      "./benchmark_results",
		Profile:        "quick",
		MaxThreads:     runtime.NumCPU(),
		TimeoutSeconds: 3600, // 1 hour
		CompressJSON:   true,
	}
}

// SaveConfig saves the benchmark configuration to a JSON file
func (bc *BenchmarkConfig) SaveConfig(filename string) error {
	data, err := json.MarshalIndent(bc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadBenchmarkConfig loads benchmark configuration from a JSON file on top of the defaults.
func LoadBenchmarkConfig(filename string) (*BenchmarkConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultBenchmarkConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}
