// Package cache prepares a scenario's input file into one of the three
// reproducible cache states. Degradation (eviction unavailable) is a recorded
// outcome, never an error; only total inability to produce a usable file is.
package cache

import (
	"fmt"
	"time"

	"github.com/signalnine/fqbench/internal/matrix"
)

// Method names the staging strategy that was actually taken.
type Method string

const (
	MethodEviction     Method = "kernel-eviction"
	MethodRAMCopy      Method = "ram-copy-fallback"
	MethodRegeneration Method = "fresh-regeneration"
)

// Status records, at staging time, how a scenario's file reached its cache
// state. It is written alongside the staged file and never reconstructed
// after the fact.
type Status struct {
	Scenario  string    `json:"scenario"`
	Method    Method    `json:"method"`
	Degraded  bool      `json:"degraded"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Staged is a ready-to-benchmark file plus its staging outcome. PrepareCmd,
// when non-empty, must run before every measured invocation so each run
// re-pays the eviction cost.
type Staged struct {
	Path       string
	Status     Status
	PrepareCmd string

	cleanup func() error
}

// Cleanup removes any ephemeral copy or regenerated directory owned by this
// staging. Safe to call when nothing was created.
func (s *Staged) Cleanup() error {
	if s.cleanup == nil {
		return nil
	}
	return s.cleanup()
}

// StagingError means no strategy could produce a usable file for the
// scenario. The scenario is skipped; the run continues.
type StagingError struct {
	Scenario matrix.Scenario
	Err      error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("staging %s: %v", e.Scenario.Name(), e.Err)
}

func (e *StagingError) Unwrap() error { return e.Err }
