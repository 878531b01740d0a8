package result_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/signalnine/fqbench/internal/cache"
	"github.com/signalnine/fqbench/internal/hyperfine"
	"github.com/signalnine/fqbench/internal/matrix"
	"github.com/signalnine/fqbench/internal/result"
)

func sampleTrials(sc matrix.Scenario) []result.TrialResult {
	return []result.TrialResult{
		{
			Scenario: sc,
			Tool:     "fqcnt_rust",
			Measurement: &hyperfine.Measurement{
				Command: "fqcnt_rust", Mean: 0.12, Stddev: 0.01, Median: 0.12,
				Min: 0.11, Max: 0.13, Times: []float64{0.11, 0.12, 0.13}, ExitCodes: []int{0, 0, 0},
			},
			CapturePath: "captured/hot_raw/fqcnt_rust.out",
		},
		{
			Scenario:  sc,
			Tool:      "broken_parser",
			EngineErr: "timing engine: exit status 1",
		},
	}
}

func TestCreateRunDir(t *testing.T) {
	base := t.TempDir()
	runDir, err := result.CreateRunDir(base)
	if err != nil {
		t.Fatalf("CreateRunDir: %v", err)
	}
	if _, err := os.Stat(runDir); err != nil {
		t.Errorf("run directory not created: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(runDir), "benchmark_") {
		t.Errorf("run dir name: got %q", filepath.Base(runDir))
	}
	target, err := os.Readlink(filepath.Join(base, "latest"))
	if err != nil {
		t.Fatalf("reading latest symlink: %v", err)
	}
	if target != runDir {
		t.Errorf("latest symlink: got %q, want %q", target, runDir)
	}
}

func TestWriteAndReadScenarioStats(t *testing.T) {
	runDir := t.TempDir()
	sc := matrix.Scenario{Size: "0.1m", Format: matrix.FormatRaw, Cache: matrix.CacheHot}

	if err := result.WriteScenarioStats(runDir, sc, sampleTrials(sc)); err != nil {
		t.Fatalf("WriteScenarioStats: %v", err)
	}

	statsPath := result.StatsPath(runDir, sc)
	if filepath.Base(statsPath) != "hot_raw.json" {
		t.Errorf("stats path: got %q", statsPath)
	}
	stats, err := result.ReadScenarioStats(statsPath)
	if err != nil {
		t.Fatalf("ReadScenarioStats: %v", err)
	}
	if len(stats.Results) != 1 {
		t.Fatalf("expected 1 measured entry, got %d", len(stats.Results))
	}
	if stats.Results[0].Command != "fqcnt_rust" || stats.Results[0].Mean != 0.12 {
		t.Errorf("entry round-trip: %+v", stats.Results[0])
	}
	if len(stats.Failures) != 1 || stats.Failures[0].Tool != "broken_parser" {
		t.Errorf("failures: %+v", stats.Failures)
	}

	md, err := os.ReadFile(filepath.Join(result.SizeDir(runDir, "0.1m"), "hot_raw.md"))
	if err != nil {
		t.Fatalf("reading markdown twin: %v", err)
	}
	if !strings.Contains(string(md), "fqcnt_rust") {
		t.Error("markdown twin missing tool row")
	}
}

func TestWriteCacheStatus(t *testing.T) {
	runDir := t.TempDir()
	sc := matrix.Scenario{Size: "1m", Format: matrix.FormatGzip, Cache: matrix.CacheCold}
	status := cache.Status{
		Scenario:  sc.Name(),
		Method:    cache.MethodRAMCopy,
		Degraded:  true,
		Reason:    "fadvise unavailable",
		Timestamp: time.Now().UTC(),
	}
	if err := result.WriteCacheStatus(runDir, sc, status); err != nil {
		t.Fatalf("WriteCacheStatus: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(runDir, "1m", "cold_gz.cache.json"))
	if err != nil {
		t.Fatalf("reading sidecar: %v", err)
	}
	if !strings.Contains(string(data), string(cache.MethodRAMCopy)) {
		t.Error("sidecar must record the method actually used")
	}
}

func TestAppendBench(t *testing.T) {
	runDir := t.TempDir()
	sc := matrix.Scenario{Size: "0.1m", Format: matrix.FormatRaw, Cache: matrix.CacheHot}
	if err := result.AppendBench(runDir, sc, sampleTrials(sc)); err != nil {
		t.Fatalf("AppendBench: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(runDir, result.BenchFile))
	if err != nil {
		t.Fatalf("reading bench export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected one line per measured time, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "BenchmarkFqcnt_rust/size=0.1m/format=raw/cache=hot 1 ") {
		t.Errorf("bench line format: %q", lines[0])
	}
	if !strings.HasSuffix(lines[0], " ns/op") {
		t.Errorf("bench line unit: %q", lines[0])
	}
}

func TestWriteRunSummary(t *testing.T) {
	runDir := t.TempDir()
	sc := matrix.Scenario{Size: "0.1m", Format: matrix.FormatRaw, Cache: matrix.CacheCold}
	summary := &result.RunSummary{
		StartedAt:  time.Now().UTC(),
		FinishedAt: time.Now().UTC(),
		Warmup:     3,
		MinRuns:    10,
		ColdRuns:   3,
		Tools:      []string{"fqcnt_rust"},
		Scenarios: []result.ScenarioRecord{
			{Scenario: sc, InputPath: "/data/0.1m.fastq", InputBytes: 42 << 20, Method: cache.MethodRAMCopy, Degraded: true},
		},
		SkippedSizes: []matrix.SkippedSize{{Size: "10m", Reason: "generating inputs: synthesis crashed"}},
	}
	if err := result.WriteRunSummary(runDir, summary); err != nil {
		t.Fatalf("WriteRunSummary: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(runDir, "SUMMARY.txt"))
	if err != nil {
		t.Fatalf("reading SUMMARY.txt: %v", err)
	}
	text := string(data)
	for _, want := range []string{"0.1m_cold_raw", "42.0 MiB", "ram-copy-fallback", "[degraded]", "10m: generating inputs"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}
