package result

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/signalnine/fqbench/internal/cache"
	"github.com/signalnine/fqbench/internal/matrix"
)

// CreateRunDir makes the timestamped result root for one run and repoints
// the `latest` symlink at it.
func CreateRunDir(baseDir string) (string, error) {
	stamp := time.Now().UTC().Format("20060102_150405")
	runDir := filepath.Join(baseDir, "benchmark_"+stamp)
	runDir, err := filepath.Abs(runDir)
	if err != nil {
		return "", fmt.Errorf("resolving run dir: %w", err)
	}
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("creating run dir: %w", err)
	}
	latest := filepath.Join(baseDir, "latest")
	os.Remove(latest)
	if err := os.Symlink(runDir, latest); err != nil {
		return "", fmt.Errorf("creating latest symlink: %w", err)
	}
	return runDir, nil
}

// SizeDir returns the per-size subdirectory of a run.
func SizeDir(runDir, size string) string {
	return filepath.Join(runDir, size)
}

// StatsPath returns a scenario's machine-readable stats file path.
func StatsPath(runDir string, sc matrix.Scenario) string {
	return filepath.Join(SizeDir(runDir, sc.Size), sc.StatsBase()+".json")
}

// CaptureDir returns the directory holding a scenario's per-tool captured
// standard output.
func CaptureDir(runDir string, sc matrix.Scenario) string {
	return filepath.Join(SizeDir(runDir, sc.Size), "captured", sc.StatsBase())
}

// WriteScenarioStats persists one scenario's timing results as the
// hyperfine-schema JSON file plus a human-readable markdown twin.
func WriteScenarioStats(runDir string, sc matrix.Scenario, trials []TrialResult) error {
	// Results marshals as [] rather than null so hyperfine-JSON consumers
	// always see a list.
	stats := ScenarioStats{Results: []Entry{}}
	for _, t := range trials {
		if t.Measurement == nil {
			stats.Failures = append(stats.Failures, Failure{Tool: t.Tool, Error: t.EngineErr})
			continue
		}
		stats.Results = append(stats.Results, Entry{
			Measurement: *t.Measurement,
			ExitCode:    t.ExitCode,
			Output:      t.CapturePath,
		})
	}

	dir := SizeDir(runDir, sc.Size)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating size dir: %w", err)
	}
	data, err := json.MarshalIndent(&stats, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	if err := os.WriteFile(StatsPath(runDir, sc), data, 0o644); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}

	mdPath := filepath.Join(dir, sc.StatsBase()+".md")
	if err := os.WriteFile(mdPath, []byte(renderMarkdown(sc, &stats)), 0o644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// ReadScenarioStats loads a stored stats file.
func ReadScenarioStats(path string) (*ScenarioStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stats: %w", err)
	}
	var stats ScenarioStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("parsing stats %s: %w", path, err)
	}
	return &stats, nil
}

func renderMarkdown(sc matrix.Scenario, stats *ScenarioStats) string {
	out := fmt.Sprintf("# %s\n\n", sc.Name())
	out += "| Tool | Mean (s) | Stddev | Min | Max | Runs | Exit |\n"
	out += "|---|---|---|---|---|---|---|\n"
	for _, e := range stats.Results {
		out += fmt.Sprintf("| %s | %.3f | %.3f | %.3f | %.3f | %d | %d |\n",
			e.Command, e.Mean, e.Stddev, e.Min, e.Max, len(e.Times), e.ExitCode)
	}
	for _, f := range stats.Failures {
		out += fmt.Sprintf("\nFAILED %s: %s\n", f.Tool, f.Error)
	}
	return out
}

// WriteCacheStatus persists the staging outcome sidecar for a scenario.
func WriteCacheStatus(runDir string, sc matrix.Scenario, status cache.Status) error {
	dir := SizeDir(runDir, sc.Size)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating size dir: %w", err)
	}
	data, err := json.MarshalIndent(&status, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling cache status: %w", err)
	}
	path := filepath.Join(dir, sc.StatsBase()+".cache.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing cache status: %w", err)
	}
	return nil
}

// WriteSystemInfo persists the run-level environment snapshot.
func WriteSystemInfo(runDir string, info any) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling system info: %w", err)
	}
	path := filepath.Join(runDir, "system_info.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing system info: %w", err)
	}
	return nil
}
