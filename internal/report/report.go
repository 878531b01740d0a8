// Package report renders a stored run tree as a human or machine summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/signalnine/fqbench/internal/matrix"
	"github.com/signalnine/fqbench/internal/result"
)

// ScenarioSummary is one scenario's rows, tools sorted fastest first.
type ScenarioSummary struct {
	Scenario matrix.Scenario `json:"scenario"`
	Tools    []ToolRow       `json:"tools"`
	Failures []string        `json:"failures,omitempty"`
}

type ToolRow struct {
	Tool     string  `json:"tool"`
	Mean     float64 `json:"mean"`
	Stddev   float64 `json:"stddev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Runs     int     `json:"runs"`
	ExitCode int     `json:"exit_code"`
}

// Generate reads every per-scenario stats file under runDir and writes the
// summary in the requested format (table, markdown, json).
func Generate(runDir, format string, w io.Writer) error {
	summaries, err := collect(runDir)
	if err != nil {
		return err
	}
	switch format {
	case "markdown":
		return writeMarkdown(summaries, w)
	case "json":
		return writeJSON(summaries, w)
	default:
		return writeTable(summaries, w)
	}
}

func collect(runDir string) ([]ScenarioSummary, error) {
	var summaries []ScenarioSummary
	err := filepath.Walk(runDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".json") ||
			strings.HasSuffix(info.Name(), ".cache.json") || info.Name() == "system_info.json" {
			return nil
		}
		sc, ok := scenarioFromPath(runDir, path)
		if !ok {
			return nil
		}
		stats, err := result.ReadScenarioStats(path)
		if err != nil {
			return nil
		}
		summaries = append(summaries, summarize(sc, stats))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collecting results from %s: %w", runDir, err)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return scenarioLess(summaries[i].Scenario, summaries[j].Scenario)
	})
	return summaries, nil
}

// scenarioFromPath recovers the scenario from `<size>/<cache>_<format>.json`.
func scenarioFromPath(runDir, path string) (matrix.Scenario, bool) {
	rel, err := filepath.Rel(runDir, path)
	if err != nil {
		return matrix.Scenario{}, false
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 2 {
		return matrix.Scenario{}, false
	}
	size := parts[0]
	if _, err := matrix.ParseSizeLabel(size); err != nil {
		return matrix.Scenario{}, false
	}
	stem := strings.TrimSuffix(parts[1], ".json")
	i := strings.LastIndex(stem, "_")
	if i < 0 {
		return matrix.Scenario{}, false
	}
	format := matrix.Format(stem[i+1:])
	cacheState := matrix.CacheState(strings.ReplaceAll(stem[:i], "_", "-"))
	switch format {
	case matrix.FormatRaw, matrix.FormatGzip, matrix.FormatBgzip:
	default:
		return matrix.Scenario{}, false
	}
	switch cacheState {
	case matrix.CacheHot, matrix.CacheCold, matrix.CacheReallyCold:
	default:
		return matrix.Scenario{}, false
	}
	return matrix.Scenario{Size: size, Format: format, Cache: cacheState}, true
}

func summarize(sc matrix.Scenario, stats *result.ScenarioStats) ScenarioSummary {
	s := ScenarioSummary{Scenario: sc}
	for _, e := range stats.Results {
		s.Tools = append(s.Tools, ToolRow{
			Tool:     e.Command,
			Mean:     e.Mean,
			Stddev:   e.Stddev,
			Min:      e.Min,
			Max:      e.Max,
			Runs:     len(e.Times),
			ExitCode: e.ExitCode,
		})
	}
	sort.SliceStable(s.Tools, func(i, j int) bool { return s.Tools[i].Mean < s.Tools[j].Mean })
	for _, f := range stats.Failures {
		s.Failures = append(s.Failures, f.Tool)
	}
	return s
}

func scenarioLess(a, b matrix.Scenario) bool {
	av, _ := matrix.ParseSizeLabel(a.Size)
	bv, _ := matrix.ParseSizeLabel(b.Size)
	if av != bv {
		return av < bv
	}
	if a.Format != b.Format {
		return orderOf(a.Format, matrix.FormatOrder) < orderOf(b.Format, matrix.FormatOrder)
	}
	return orderOf(a.Cache, matrix.StateOrder) < orderOf(b.Cache, matrix.StateOrder)
}

func orderOf[T comparable](v T, order []T) int {
	for i, x := range order {
		if x == v {
			return i
		}
	}
	return len(order)
}

func writeTable(summaries []ScenarioSummary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tTOOL\tMEAN (S)\tSTDDEV\tMIN\tMAX\tRUNS\tEXIT")
	fmt.Fprintln(tw, strings.Repeat("-", 80))
	for _, s := range summaries {
		for _, t := range s.Tools {
			fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.3f\t%.3f\t%.3f\t%d\t%d\n",
				s.Scenario.Name(), t.Tool, t.Mean, t.Stddev, t.Min, t.Max, t.Runs, t.ExitCode)
		}
		for _, f := range s.Failures {
			fmt.Fprintf(tw, "%s\t%s\tFAILED\t\t\t\t\t\n", s.Scenario.Name(), f)
		}
	}
	return tw.Flush()
}

func writeMarkdown(summaries []ScenarioSummary, w io.Writer) error {
	fmt.Fprintln(w, "| Scenario | Tool | Mean (s) | Stddev | Min | Max | Runs | Exit |")
	fmt.Fprintln(w, "|---|---|---|---|---|---|---|---|")
	for _, s := range summaries {
		for _, t := range s.Tools {
			fmt.Fprintf(w, "| %s | %s | %.3f | %.3f | %.3f | %.3f | %d | %d |\n",
				s.Scenario.Name(), t.Tool, t.Mean, t.Stddev, t.Min, t.Max, t.Runs, t.ExitCode)
		}
		for _, f := range s.Failures {
			fmt.Fprintf(w, "| %s | %s | FAILED | | | | | |\n", s.Scenario.Name(), f)
		}
	}
	return nil
}

func writeJSON(summaries []ScenarioSummary, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}
