// Package benchmark - Functionality for running benchmarks.
package benchmark

import (
	"time"

	"github.com/nvr-ai/go-restore/profiler"
)

// PerformanceMetrics captures detailed performance data
type PerformanceMetrics struct {
	Scenario  Scenario  `json:"scenario"`
	Timestamp time.Time `json:"timestamp"`
	// TotalDuration covers the measured iterations only.
	TotalDuration  time.Duration `json:"total_duration"`
	ResizeDuration time.Duration `json:"resize_duration"`
	// Per-iteration averages of the ACE phases.
	SampleDuration    time.Duration `json:"sample_duration"`
	ScoreDuration     time.Duration `json:"score_duration"`
	ReduceDuration    time.Duration `json:"reduce_duration"`
	NormalizeDuration time.Duration `json:"normalize_duration"`
	// Phases holds the distribution of each phase across iterations.
	Phases []profiler.Summary `json:"phases"`

	ImagesPerSecond     float64 `json:"images_per_second"`
	MegapixelsPerSecond float64 `json:"megapixels_per_second"`
	// ComparisonsPerSecond counts pixel-to-sample comparisons.
	ComparisonsPerSecond float64 `json:"comparisons_per_second"`
	Workers              int     `json:"workers"`
	// Checksum of the output of the first corpus image; equal across thread counts.
	Checksum    string        `json:"checksum"`
	MemoryStats MemoryMetrics `json:"memory_stats"`
	CPUStats    CPUMetrics    `json:"cpu_stats"`
	ErrorRate   float64       `json:"error_rate"`
}

// MemoryMetrics captures memory usage statistics
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	SysBytes        uint64 `json:"sys_bytes"`
	NumGC           uint32 `json:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
	HeapSysBytes    uint64 `json:"heap_sys_bytes"`
}

// CPUMetrics captures CPU usage statistics
type CPUMetrics struct {
	NumCPU     int `json:"num_cpu"`
	GOMAXPROCS int `json:"gomaxprocs"`
}
