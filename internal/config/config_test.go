package config_test

import (
	"path/filepath"
	"testing"

	"github.com/signalnine/fqbench/internal/config"
)

func TestLoadMissingUsesDefaults(t *testing.T) {
	cfg, err := config.Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := config.Default()
	if cfg.Tools.Dir != def.Tools.Dir {
		t.Errorf("tools dir: got %q, want default %q", cfg.Tools.Dir, def.Tools.Dir)
	}
	if cfg.Bench.MinRuns != 10 || cfg.Bench.Warmup != 3 || cfg.Bench.ColdRuns != 3 {
		t.Errorf("bench defaults: %+v", cfg.Bench)
	}
	if len(cfg.Formats) != 3 || len(cfg.CacheStates) != 3 {
		t.Errorf("matrix defaults: formats=%v states=%v", cfg.Formats, cfg.CacheStates)
	}
}

func TestLoadFull(t *testing.T) {
	cfg, err := config.Load("testdata/full.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Bench.Warmup != 5 || cfg.Bench.MinRuns != 20 {
		t.Errorf("bench: %+v", cfg.Bench)
	}
	if len(cfg.Formats) != 2 {
		t.Errorf("formats: %v", cfg.Formats)
	}
	if len(cfg.Sizes) != 2 || cfg.Sizes[0] != "0.1m" {
		t.Errorf("sizes: %v", cfg.Sizes)
	}
	if len(cfg.Generation.Commands) != 4 {
		t.Errorf("generation commands: %v", cfg.Generation.Commands)
	}
	if len(cfg.ScratchDirs) != 2 {
		t.Errorf("scratch dirs: %v", cfg.ScratchDirs)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	if _, err := config.Load("testdata/invalid.yaml"); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoadUnknownFormat(t *testing.T) {
	if _, err := config.Load("testdata/badformat.yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRebase(t *testing.T) {
	cfg := config.Default()
	cfg.Results.Dir = "/absolute/results"
	cfg.Rebase("/project")
	if cfg.Tools.Dir != filepath.Join("/project", "tools/wrappers") {
		t.Errorf("tools dir: got %q", cfg.Tools.Dir)
	}
	if cfg.Results.Dir != "/absolute/results" {
		t.Errorf("absolute path must not be rebased: got %q", cfg.Results.Dir)
	}
}
