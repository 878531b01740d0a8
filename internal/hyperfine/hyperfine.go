// Package hyperfine adapts the external statistical timing engine. The
// harness never times commands itself; it builds one declarative hyperfine
// invocation per (scenario, tool) and parses the JSON export.
package hyperfine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Options configures one timing-engine invocation.
type Options struct {
	Bin        string
	Warmup     int
	MinRuns    int
	MaxRuns    int
	PrepareCmd string
	Timeout    time.Duration
}

// Measurement mirrors one entry of hyperfine's JSON export. Field names are
// load-bearing: the stored per-scenario stats files keep this schema so the
// existing plotting layer can read them unchanged.
type Measurement struct {
	Command   string    `json:"command"`
	Mean      float64   `json:"mean"`
	Stddev    float64   `json:"stddev"`
	Median    float64   `json:"median"`
	User      float64   `json:"user"`
	System    float64   `json:"system"`
	Min       float64   `json:"min"`
	Max       float64   `json:"max"`
	Times     []float64 `json:"times"`
	ExitCodes []int     `json:"exit_codes"`
}

type export struct {
	Results []Measurement `json:"results"`
}

// ExitCode reports the measurement's overall exit status: the first non-zero
// exit among the measured runs, else zero.
func (m *Measurement) ExitCode() int {
	for _, c := range m.ExitCodes {
		if c != 0 {
			return c
		}
	}
	return 0
}

// Args assembles the hyperfine argv for one named shell command. Failures of
// the measured command are tolerated (--ignore-failure) so the harness can
// record them without aborting the engine.
func Args(opts Options, name, command, exportPath string) []string {
	args := []string{
		"--warmup", strconv.Itoa(opts.Warmup),
		"--min-runs", strconv.Itoa(opts.MinRuns),
		"--ignore-failure",
		"--style", "basic",
		"--command-name", name,
		"--export-json", exportPath,
	}
	if opts.MaxRuns > 0 {
		args = append(args, "--max-runs", strconv.Itoa(opts.MaxRuns))
	}
	if opts.PrepareCmd != "" {
		args = append(args, "--prepare", opts.PrepareCmd)
	}
	return append(args, command)
}

// Run measures one shell command and returns its parsed result. An error
// means the engine itself failed; a failing measured command still yields a
// Measurement with non-zero exit codes.
func Run(ctx context.Context, opts Options, name, command string) (*Measurement, error) {
	tmp, err := os.MkdirTemp("", "fqbench-hyperfine-*")
	if err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}
	defer os.RemoveAll(tmp)
	exportPath := filepath.Join(tmp, "export.json")

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, opts.Bin, Args(opts, name, command, exportPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("timing engine: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("timing engine: %w", err)
	}

	m, err := ReadExport(exportPath)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ReadExport parses a hyperfine JSON export and returns its single result.
func ReadExport(path string) (*Measurement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading timing export: %w", err)
	}
	var exp export
	if err := json.Unmarshal(data, &exp); err != nil {
		return nil, fmt.Errorf("parsing timing export: %w", err)
	}
	if len(exp.Results) == 0 {
		return nil, fmt.Errorf("timing export %s holds no results", path)
	}
	return &exp.Results[0], nil
}

// Quote wraps s in single quotes for use inside a measured shell command.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
