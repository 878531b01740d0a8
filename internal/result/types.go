package result

import (
	"github.com/signalnine/fqbench/internal/hyperfine"
	"github.com/signalnine/fqbench/internal/matrix"
)

// TrialResult is the outcome of measuring one tool against one staged
// scenario file. Measurement is nil when the timing engine itself failed to
// run; a tool that ran and exited non-zero still carries its measurement.
type TrialResult struct {
	Scenario    matrix.Scenario
	Tool        string
	Measurement *hyperfine.Measurement
	ExitCode    int
	CapturePath string
	EngineErr   string
}

// Failed reports whether the trial produced no clean measurement.
func (t *TrialResult) Failed() bool {
	return t.Measurement == nil || t.ExitCode != 0
}

// Entry is one tool's row in a scenario stats file. The embedded measurement
// keeps hyperfine's export schema so downstream consumers of the original
// result format keep working; exit_code and output are additive.
type Entry struct {
	hyperfine.Measurement
	ExitCode int    `json:"exit_code"`
	Output   string `json:"output,omitempty"`
}

// Failure records a tool whose timing-engine invocation itself failed.
type Failure struct {
	Tool  string `json:"tool"`
	Error string `json:"error"`
}

// ScenarioStats is the machine-readable per-scenario timing file.
type ScenarioStats struct {
	Results  []Entry   `json:"results"`
	Failures []Failure `json:"failures,omitempty"`
}
