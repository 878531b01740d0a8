// Package runner executes every registered tool against one staged scenario
// through the external timing engine, isolating per-tool failures.
package runner

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/signalnine/fqbench/internal/cache"
	"github.com/signalnine/fqbench/internal/hyperfine"
	"github.com/signalnine/fqbench/internal/matrix"
	"github.com/signalnine/fqbench/internal/registry"
	"github.com/signalnine/fqbench/internal/result"
)

type Options struct {
	EngineBin string
	Warmup    int
	MinRuns   int
	ColdRuns  int
	Timeout   time.Duration

	// ScratchDirs are working directories tools may drop; removed before and
	// after each invocation so one tool's leftovers never perturb the next.
	ScratchDirs []string

	// CaptureDir receives one stdout capture file per tool. Each measured run
	// overwrites it; only the final run's output survives.
	CaptureDir string
}

// RunScenario measures every tool against the staged file, in registry
// order. A tool-level failure is recorded and never interrupts the rest.
func RunScenario(ctx context.Context, sc matrix.Scenario, staged *cache.Staged, tools []registry.Tool, opts Options) []result.TrialResult {
	engineOpts := hyperfine.Options{
		Bin:        opts.EngineBin,
		Warmup:     opts.Warmup,
		MinRuns:    opts.MinRuns,
		PrepareCmd: staged.PrepareCmd,
		Timeout:    opts.Timeout,
	}
	if sc.Cache != matrix.CacheHot {
		// Staging cost is paid per measured run; keep the run count bounded.
		engineOpts.Warmup = 0
		engineOpts.MinRuns = opts.ColdRuns
		engineOpts.MaxRuns = opts.ColdRuns
	}

	if err := os.MkdirAll(opts.CaptureDir, 0o755); err != nil {
		log.Printf("warning: creating capture dir: %v", err)
	}

	trials := make([]result.TrialResult, 0, len(tools))
	for _, tool := range tools {
		removeScratch(opts.ScratchDirs)

		capturePath := filepath.Join(opts.CaptureDir, tool.Name+".out")
		command := fmt.Sprintf("%s %s > %s",
			hyperfine.Quote(tool.Path), hyperfine.Quote(staged.Path), hyperfine.Quote(capturePath))

		tr := result.TrialResult{Scenario: sc, Tool: tool.Name, CapturePath: capturePath}
		m, err := hyperfine.Run(ctx, engineOpts, tool.Name, command)
		if err != nil {
			tr.EngineErr = err.Error()
			log.Printf("warning: %s on %s: %v", tool.Name, sc.Name(), err)
		} else {
			tr.Measurement = m
			tr.ExitCode = m.ExitCode()
			if tr.ExitCode != 0 {
				log.Printf("warning: %s exited %d on %s", tool.Name, tr.ExitCode, sc.Name())
			}
		}
		trials = append(trials, tr)

		removeScratch(opts.ScratchDirs)
	}
	return trials
}

func removeScratch(dirs []string) {
	for _, dir := range dirs {
		if dir == "" || dir == "." || dir == "/" {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			log.Printf("warning: removing scratch dir %s: %v", dir, err)
		}
	}
}
