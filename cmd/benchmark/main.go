package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/nvr-ai/go-restore/benchmark"
	"github.com/nvr-ai/go-restore/images"
)

func main() {
	var (
		configPath    string
		scenariosPath string
		writePath     string
		profile       string
		corpus        string
		outputDir     string
		maxThreads    int
		timeout       time.Duration
	)
	defaults := benchmark.DefaultBenchmarkConfig()
	flag.StringVar(&configPath, "config", "", "Benchmark configuration (JSON)")
	flag.StringVar(&scenariosPath, "scenarios", "", "Scenario set file to run instead of a profile (JSON or YAML)")
	flag.StringVar(&writePath, "write-scenarios", "", "Write the selected scenario set to this file and exit")
	flag.StringVar(&profile, "profile", defaults.Profile, "Scenario profile: quick, threads, samples or full")
	flag.StringVar(&corpus, "corpus", "", "Directory of source images (default: synthetic test card)")
	flag.StringVar(&outputDir, "out", defaults.OutputDir, "Results directory")
	flag.IntVar(&maxThreads, "max-threads", defaults.MaxThreads, "Largest worker count to measure")
	flag.DurationVar(&timeout, "timeout", time.Duration(defaults.TimeoutSeconds)*time.Second, "Stop after this long")
	flag.Parse()

	cfg := defaults
	if configPath != "" {
		loaded, err := benchmark.LoadBenchmarkConfig(configPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "profile":
			cfg.Profile = profile
		case "corpus":
			cfg.CorpusPath = corpus
		case "out":
			cfg.OutputDir = outputDir
		case "max-threads":
			cfg.MaxThreads = maxThreads
		case "timeout":
			cfg.TimeoutSeconds = int(timeout.Seconds())
		}
	})

	var (
		set *benchmark.ScenarioSet
		err error
	)
	if scenariosPath != "" {
		set, err = benchmark.LoadScenarioSet(scenariosPath)
	} else {
		set, err = selectProfile(cfg)
	}
	if err != nil {
		log.Fatal(err)
	}

	if writePath != "" {
		if err := benchmark.SaveScenarioSet(set, writePath); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Saved %d scenarios to %s\n", len(set.Scenarios), writePath)
		return
	}

	suite := benchmark.NewSuite(benchmark.NewSuiteArgs{
		OutputPath:   cfg.OutputDir,
		CompressJSON: cfg.CompressJSON,
	})
	if cfg.CorpusPath != "" {
		if err := suite.LoadCorpus(cfg.CorpusPath); err != nil {
			log.Fatal(err)
		}
	}
	suite.AddScenarioSet(set)

	fmt.Printf("%s: %d scenarios on %d CPUs\n", set.Name, len(set.Scenarios), runtime.NumCPU())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	if err := suite.RunAllScenarios(ctx); err != nil {
		log.Fatal(err)
	}
}

func selectProfile(cfg *benchmark.BenchmarkConfig) (*benchmark.ScenarioSet, error) {
	predefined := &benchmark.PredefinedScenarios{}
	a4, _ := images.GetResolutionByType(images.ResolutionTypeA4at150)

	switch cfg.Profile {
	case "quick":
		return predefined.GetQuickScenarios(), nil
	case "threads":
		return predefined.GetThreadScalingScenarios(a4, cfg.MaxThreads), nil
	case "samples":
		return predefined.GetSampleSweepScenarios(a4, cfg.MaxThreads, []int{25, 50, 100, 200, 400}), nil
	case "full":
		return predefined.GetComprehensiveScenarios(benchmark.ThreadLadder(cfg.MaxThreads), []int{50, 100, 200}), nil
	default:
		return nil, fmt.Errorf("unknown profile %q", cfg.Profile)
	}
}
