package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/signalnine/fqbench/internal/cache"
	"github.com/signalnine/fqbench/internal/config"
	"github.com/signalnine/fqbench/internal/datagen"
	"github.com/signalnine/fqbench/internal/matrix"
	"github.com/signalnine/fqbench/internal/registry"
	"github.com/signalnine/fqbench/internal/report"
	"github.com/signalnine/fqbench/internal/result"
	"github.com/signalnine/fqbench/internal/runner"
	"github.com/signalnine/fqbench/internal/sysinfo"
	"github.com/spf13/cobra"
)

var (
	flagWarmup      int
	flagMinRuns     int
	flagSizes       string
	flagSkipCold    bool
	flagSkipFormats string
	flagProjectRoot string
	flagFastStorage string
	flagToolsDir    string
	flagDataDir     string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a benchmark run",
		RunE:  runBenchmark,
	}
	cmd.Flags().IntVar(&flagWarmup, "warmup", 0, "warmup runs per hot measurement (0 = config default)")
	cmd.Flags().IntVar(&flagMinRuns, "min-runs", 0, "minimum measured runs per hot measurement (0 = config default)")
	cmd.Flags().StringVar(&flagSizes, "sizes", "", "comma-separated size labels (e.g. 0.1m,1m); empty = auto-discover")
	cmd.Flags().BoolVar(&flagSkipCold, "skip-cold", false, "run only hot-cache scenarios")
	cmd.Flags().StringVar(&flagSkipFormats, "skip-formats", "", "comma-separated compression formats to skip (gz,bgz)")
	cmd.Flags().StringVar(&flagProjectRoot, "project-root", "", "resolve relative config paths against this directory")
	cmd.Flags().StringVar(&flagFastStorage, "fast-storage", "", "override fast ephemeral storage path")
	cmd.Flags().StringVar(&flagToolsDir, "tools-dir", "", "override tool wrapper directory")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", "", "override input data directory")
	return cmd
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	applyOverrides(cfg)

	tools, err := registry.Discover(cfg.Tools.Dir)
	if err != nil {
		return err
	}
	fmt.Printf("Discovered %d tools in %s\n", len(tools), cfg.Tools.Dir)

	gen := &datagen.Runner{DataDir: cfg.Data.Dir, Commands: cfg.Generation.Commands}

	formats := enabledFormats(cfg.Formats, flagSkipFormats)
	states := enabledStates(cfg.CacheStates, flagSkipCold)
	if len(formats) == 0 {
		return fmt.Errorf("all formats skipped, nothing to benchmark")
	}

	sizes, err := resolveSizes(cfg)
	if err != nil {
		return err
	}
	if len(sizes) == 0 {
		return fmt.Errorf("no input sizes: pass --sizes or place <size>.fastq files in %s", cfg.Data.Dir)
	}

	builder := &matrix.Builder{DataDir: cfg.Data.Dir, Formats: formats, States: states, Gen: gen}
	scenarios, skippedSizes := builder.Build(sizes)
	for _, sk := range skippedSizes {
		log.Printf("warning: size %s skipped: %s", sk.Size, sk.Reason)
	}
	if len(scenarios) == 0 {
		return fmt.Errorf("no scenarios remain: every requested size was skipped")
	}

	runDir, err := result.CreateRunDir(cfg.Results.Dir)
	if err != nil {
		return err
	}
	fmt.Printf("Run directory: %s\n", runDir)

	ctx := context.Background()

	info := sysinfo.Collect(ctx, cfg.Bench.Hyperfine, "gzip", "bgzip")
	if err := result.WriteSystemInfo(runDir, info); err != nil {
		return err
	}

	selfExe, err := os.Executable()
	if err != nil {
		selfExe = ""
	}
	ctrl := &cache.Controller{
		FastDir: cfg.FastStorage,
		DataDir: cfg.Data.Dir,
		SelfExe: selfExe,
		Regen:   gen,
	}

	summary := &result.RunSummary{
		StartedAt:    time.Now().UTC(),
		Warmup:       cfg.Bench.Warmup,
		MinRuns:      cfg.Bench.MinRuns,
		ColdRuns:     cfg.Bench.ColdRuns,
		SkippedSizes: skippedSizes,
	}
	for _, t := range tools {
		summary.Tools = append(summary.Tools, t.Name)
	}

	for _, sc := range scenarios {
		fmt.Printf("Scenario %s...\n", sc.Name())
		if err := runScenario(ctx, cfg, ctrl, runDir, sc, tools, summary); err != nil {
			return err
		}
	}

	summary.FinishedAt = time.Now().UTC()
	if err := result.WriteRunSummary(runDir, summary); err != nil {
		return err
	}

	fmt.Println("\n--- Results ---")
	return report.Generate(runDir, "table", os.Stdout)
}

// runScenario stages, measures, and persists one scenario. Staging failures
// skip the scenario; persistence failures are fatal. The staged copy is
// cleaned up on every exit path.
func runScenario(ctx context.Context, cfg *config.Config, ctrl *cache.Controller, runDir string, sc matrix.Scenario, tools []registry.Tool, summary *result.RunSummary) error {
	canonical := matrix.InputPath(cfg.Data.Dir, sc.Size, sc.Format)
	staged, err := ctrl.Stage(sc, canonical)
	if err != nil {
		log.Printf("warning: scenario %s skipped: %v", sc.Name(), err)
		summary.SkippedScenarios = append(summary.SkippedScenarios,
			result.SkippedScenario{Scenario: sc, Reason: err.Error()})
		return nil
	}
	defer func() {
		if err := staged.Cleanup(); err != nil {
			log.Printf("warning: cleaning up staged file for %s: %v", sc.Name(), err)
		}
	}()

	trials := runner.RunScenario(ctx, sc, staged, tools, runner.Options{
		EngineBin:   cfg.Bench.Hyperfine,
		Warmup:      cfg.Bench.Warmup,
		MinRuns:     cfg.Bench.MinRuns,
		ColdRuns:    cfg.Bench.ColdRuns,
		Timeout:     time.Duration(cfg.Bench.TimeoutMinutes) * time.Minute,
		ScratchDirs: cfg.ScratchDirs,
		CaptureDir:  result.CaptureDir(runDir, sc),
	})

	if err := result.WriteScenarioStats(runDir, sc, trials); err != nil {
		return err
	}
	if err := result.AppendBench(runDir, sc, trials); err != nil {
		return err
	}
	if sc.Cache != matrix.CacheHot {
		if err := result.WriteCacheStatus(runDir, sc, staged.Status); err != nil {
			return err
		}
	}

	rec := result.ScenarioRecord{
		Scenario:  sc,
		InputPath: staged.Path,
		Method:    staged.Status.Method,
		Degraded:  staged.Status.Degraded,
	}
	if fi, err := os.Stat(staged.Path); err == nil {
		rec.InputBytes = fi.Size()
	}
	for _, t := range trials {
		if t.Failed() {
			rec.Failures = append(rec.Failures, t.Tool)
		}
	}
	summary.Scenarios = append(summary.Scenarios, rec)
	return nil
}

func applyOverrides(cfg *config.Config) {
	if flagProjectRoot != "" {
		cfg.Rebase(flagProjectRoot)
	}
	if flagWarmup > 0 {
		cfg.Bench.Warmup = flagWarmup
	}
	if flagMinRuns > 0 {
		cfg.Bench.MinRuns = flagMinRuns
	}
	if flagFastStorage != "" {
		cfg.FastStorage = flagFastStorage
	}
	if flagToolsDir != "" {
		cfg.Tools.Dir = flagToolsDir
	}
	if flagDataDir != "" {
		cfg.Data.Dir = flagDataDir
	}
}

func resolveSizes(cfg *config.Config) ([]string, error) {
	if flagSizes != "" {
		return splitList(flagSizes), nil
	}
	if len(cfg.Sizes) > 0 {
		return cfg.Sizes, nil
	}
	return matrix.DiscoverSizes(cfg.Data.Dir)
}

func enabledFormats(configured []string, skip string) []matrix.Format {
	skipped := map[string]bool{}
	for _, s := range splitList(skip) {
		skipped[s] = true
	}
	var formats []matrix.Format
	for _, f := range configured {
		if !skipped[f] {
			formats = append(formats, matrix.Format(f))
		}
	}
	return formats
}

func enabledStates(configured []string, skipCold bool) []matrix.CacheState {
	var states []matrix.CacheState
	for _, s := range configured {
		st := matrix.CacheState(s)
		if skipCold && st != matrix.CacheHot {
			continue
		}
		states = append(states, st)
	}
	return states
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
