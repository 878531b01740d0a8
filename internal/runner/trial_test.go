package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalnine/fqbench/internal/cache"
	"github.com/signalnine/fqbench/internal/matrix"
	"github.com/signalnine/fqbench/internal/registry"
	"github.com/signalnine/fqbench/internal/runner"
)

// stubEngine mimics hyperfine: it writes a canned JSON export to the
// --export-json path, runs the measured command, and fails outright when the
// measured command mentions "badtool".
const stubEngine = `#!/bin/sh
export_path=""
name=""
prev=""
for a in "$@"; do
  [ "$prev" = "--export-json" ] && export_path="$a"
  [ "$prev" = "--command-name" ] && name="$a"
  prev="$a"
  cmd="$a"
done
case "$cmd" in
  *badtool*) echo "engine blew up" >&2; exit 1 ;;
esac
sh -c "$cmd" || true
cat > "$export_path" <<EOF
{"results":[{"command":"$name","mean":0.1,"stddev":0.01,"median":0.1,"user":0.08,"system":0.02,"min":0.09,"max":0.11,"times":[0.09,0.1,0.11],"exit_codes":[0,0,0]}]}
EOF
`

func writeExecutable(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
}

func setup(t *testing.T) (engine string, staged *cache.Staged, toolsDir string) {
	t.Helper()
	dir := t.TempDir()
	engine = filepath.Join(dir, "stub-hyperfine")
	writeExecutable(t, engine, stubEngine)

	input := filepath.Join(dir, "0.1m.fastq")
	if err := os.WriteFile(input, []byte("@r1\nACGT\n+\nIIII\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	staged = &cache.Staged{Path: input}

	toolsDir = filepath.Join(dir, "tools")
	if err := os.Mkdir(toolsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	return engine, staged, toolsDir
}

func TestRunScenarioMeasuresEveryTool(t *testing.T) {
	engine, staged, toolsDir := setup(t)
	writeExecutable(t, filepath.Join(toolsDir, "alpha.sh"), "#!/bin/sh\necho counted\n")
	writeExecutable(t, filepath.Join(toolsDir, "beta.sh"), "#!/bin/sh\necho counted\n")
	tools, err := registry.Discover(toolsDir)
	if err != nil {
		t.Fatal(err)
	}

	sc := matrix.Scenario{Size: "0.1m", Format: matrix.FormatRaw, Cache: matrix.CacheHot}
	captureDir := t.TempDir()
	trials := runner.RunScenario(context.Background(), sc, staged, tools, runner.Options{
		EngineBin:  engine,
		Warmup:     2,
		MinRuns:    5,
		ColdRuns:   3,
		Timeout:    time.Minute,
		CaptureDir: captureDir,
	})

	if len(trials) != 2 {
		t.Fatalf("expected 2 trials, got %d", len(trials))
	}
	for _, tr := range trials {
		if tr.Measurement == nil {
			t.Errorf("%s: missing measurement: %s", tr.Tool, tr.EngineErr)
			continue
		}
		if tr.Measurement.Command != tr.Tool {
			t.Errorf("%s: measurement named %q", tr.Tool, tr.Measurement.Command)
		}
		if tr.ExitCode != 0 {
			t.Errorf("%s: exit code %d", tr.Tool, tr.ExitCode)
		}
		if _, err := os.Stat(tr.CapturePath); err != nil {
			t.Errorf("%s: capture file missing: %v", tr.Tool, err)
		}
	}
}

func TestRunScenarioIsolatesToolFailure(t *testing.T) {
	engine, staged, toolsDir := setup(t)
	writeExecutable(t, filepath.Join(toolsDir, "badtool.sh"), "#!/bin/sh\nexit 1\n")
	writeExecutable(t, filepath.Join(toolsDir, "goodtool.sh"), "#!/bin/sh\necho fine\n")
	tools, err := registry.Discover(toolsDir)
	if err != nil {
		t.Fatal(err)
	}

	sc := matrix.Scenario{Size: "0.1m", Format: matrix.FormatRaw, Cache: matrix.CacheHot}
	trials := runner.RunScenario(context.Background(), sc, staged, tools, runner.Options{
		EngineBin:  engine,
		MinRuns:    3,
		ColdRuns:   3,
		Timeout:    time.Minute,
		CaptureDir: t.TempDir(),
	})

	if len(trials) != 2 {
		t.Fatalf("expected 2 trials, got %d", len(trials))
	}
	bad, good := trials[0], trials[1]
	if bad.Tool != "badtool" || good.Tool != "goodtool" {
		t.Fatalf("unexpected trial order: %s, %s", bad.Tool, good.Tool)
	}
	if bad.EngineErr == "" {
		t.Error("badtool should record the engine failure")
	}
	if good.Measurement == nil {
		t.Errorf("goodtool must still be measured after badtool failed: %s", good.EngineErr)
	}
}

func TestRunScenarioRemovesScratchDirs(t *testing.T) {
	engine, staged, toolsDir := setup(t)
	writeExecutable(t, filepath.Join(toolsDir, "tool.sh"), "#!/bin/sh\necho ok\n")
	tools, err := registry.Discover(toolsDir)
	if err != nil {
		t.Fatal(err)
	}

	scratch := filepath.Join(t.TempDir(), "tmp_scratch")
	if err := os.MkdirAll(filepath.Join(scratch, "leftovers"), 0o755); err != nil {
		t.Fatal(err)
	}

	sc := matrix.Scenario{Size: "0.1m", Format: matrix.FormatRaw, Cache: matrix.CacheHot}
	runner.RunScenario(context.Background(), sc, staged, tools, runner.Options{
		EngineBin:   engine,
		MinRuns:     3,
		ColdRuns:    3,
		Timeout:     time.Minute,
		ScratchDirs: []string{scratch},
		CaptureDir:  t.TempDir(),
	})

	if _, err := os.Stat(scratch); !os.IsNotExist(err) {
		t.Error("scratch dir not removed")
	}
}
