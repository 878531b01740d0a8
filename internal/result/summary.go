package result

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/signalnine/fqbench/internal/cache"
	"github.com/signalnine/fqbench/internal/matrix"
)

// ScenarioRecord summarizes one executed scenario for the run summary.
type ScenarioRecord struct {
	Scenario   matrix.Scenario
	InputPath  string
	InputBytes int64
	Method     cache.Method
	Degraded   bool
	Failures   []string
}

// SkippedScenario records a scenario dropped after a staging failure.
type SkippedScenario struct {
	Scenario matrix.Scenario
	Reason   string
}

// RunSummary is the run-level record written once at run end.
type RunSummary struct {
	StartedAt        time.Time
	FinishedAt       time.Time
	Warmup           int
	MinRuns          int
	ColdRuns         int
	Tools            []string
	Scenarios        []ScenarioRecord
	SkippedSizes     []matrix.SkippedSize
	SkippedScenarios []SkippedScenario
}

// WriteRunSummary renders SUMMARY.txt: configuration, every scenario with
// its input size and staging method, skips, failures, and the result tree.
func WriteRunSummary(runDir string, s *RunSummary) error {
	var b strings.Builder
	fmt.Fprintf(&b, "FASTQ parser benchmark run\n")
	fmt.Fprintf(&b, "started:  %s\n", s.StartedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "finished: %s\n", s.FinishedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "warmup: %d  min-runs: %d  cold-runs: %d\n", s.Warmup, s.MinRuns, s.ColdRuns)
	fmt.Fprintf(&b, "tools: %s\n\n", strings.Join(s.Tools, ", "))

	fmt.Fprintf(&b, "scenarios executed: %d\n", len(s.Scenarios))
	for _, rec := range s.Scenarios {
		line := fmt.Sprintf("  %-28s %s (%s)", rec.Scenario.Name(), rec.InputPath, humanBytes(rec.InputBytes))
		line += fmt.Sprintf("  method=%s", rec.Method)
		if rec.Degraded {
			line += " [degraded]"
		}
		if len(rec.Failures) > 0 {
			line += "  failed: " + strings.Join(rec.Failures, ", ")
		}
		fmt.Fprintln(&b, line)
	}

	if len(s.SkippedSizes) > 0 {
		fmt.Fprintf(&b, "\nsizes skipped: %d\n", len(s.SkippedSizes))
		for _, sk := range s.SkippedSizes {
			fmt.Fprintf(&b, "  %s: %s\n", sk.Size, sk.Reason)
		}
	}
	if len(s.SkippedScenarios) > 0 {
		fmt.Fprintf(&b, "\nscenarios skipped: %d\n", len(s.SkippedScenarios))
		for _, sk := range s.SkippedScenarios {
			fmt.Fprintf(&b, "  %s: %s\n", sk.Scenario.Name(), sk.Reason)
		}
	}

	fmt.Fprintf(&b, "\nresult tree:\n")
	filepath.Walk(runDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(runDir, path)
		if relErr != nil || rel == "." {
			return nil
		}
		if info.IsDir() {
			fmt.Fprintf(&b, "  %s/\n", rel)
		} else {
			fmt.Fprintf(&b, "  %s (%s)\n", rel, humanBytes(info.Size()))
		}
		return nil
	})

	path := filepath.Join(runDir, "SUMMARY.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing run summary: %w", err)
	}
	return nil
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
