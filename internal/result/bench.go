package result

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/signalnine/fqbench/internal/matrix"
)

// BenchFile is the run-level Go-benchmark-format export consumed by
// `fqbench compare` via benchstat.
const BenchFile = "results.bench"

// AppendBench appends one Go-benchmark-format line per measured run so two
// runs can be compared with benchstat. Engine failures contribute nothing.
func AppendBench(runDir string, sc matrix.Scenario, trials []TrialResult) error {
	f, err := os.OpenFile(filepath.Join(runDir, BenchFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening bench export: %w", err)
	}
	defer f.Close()

	for _, t := range trials {
		if t.Measurement == nil {
			continue
		}
		name := fmt.Sprintf("Benchmark%s/size=%s/format=%s/cache=%s",
			benchName(t.Tool), sc.Size, sc.Format, sc.Cache)
		for _, secs := range t.Measurement.Times {
			if _, err := fmt.Fprintf(f, "%s 1 %d ns/op\n", name, int64(secs*1e9)); err != nil {
				return fmt.Errorf("writing bench export: %w", err)
			}
		}
	}
	return nil
}

func benchName(tool string) string {
	tool = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, tool)
	if tool == "" {
		return "Tool"
	}
	return strings.ToUpper(tool[:1]) + tool[1:]
}
