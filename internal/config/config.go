package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Tools       Tools      `yaml:"tools"`
	Data        Data       `yaml:"data"`
	Results     Results    `yaml:"results"`
	Bench       Bench      `yaml:"bench"`
	FastStorage string     `yaml:"fast_storage"`
	ScratchDirs []string   `yaml:"scratch_dirs"`
	Formats     []string   `yaml:"formats"`
	CacheStates []string   `yaml:"cache_states"`
	Sizes       []string   `yaml:"sizes"`
	Generation  Generation `yaml:"generation"`
}

type Tools struct {
	Dir string `yaml:"dir"`
}

type Data struct {
	Dir string `yaml:"dir"`
}

type Results struct {
	Dir string `yaml:"dir"`
}

type Bench struct {
	Hyperfine      string `yaml:"hyperfine"`
	Warmup         int    `yaml:"warmup"`
	MinRuns        int    `yaml:"min_runs"`
	ColdRuns       int    `yaml:"cold_runs"`
	TimeoutMinutes int    `yaml:"timeout_minutes"`
}

type Generation struct {
	Commands []string `yaml:"commands"`
}

func Default() *Config {
	return &Config{
		Tools:       Tools{Dir: "tools/wrappers"},
		Data:        Data{Dir: "test-data"},
		Results:     Results{Dir: "benchmark_results"},
		Bench:       Bench{Hyperfine: "hyperfine", Warmup: 3, MinRuns: 10, ColdRuns: 3, TimeoutMinutes: 30},
		FastStorage: "/dev/shm/fqbench",
		ScratchDirs: []string{"tmp_scratch"},
		Formats:     []string{"raw", "gz", "bgz"},
		CacheStates: []string{"hot", "cold", "really-cold"},
	}
}

// Load reads the config file at path, falling back to defaults when the file
// does not exist. Flags layered on top by the caller.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Tools.Dir == "" {
		return fmt.Errorf("tools.dir is required")
	}
	if cfg.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if cfg.Results.Dir == "" {
		return fmt.Errorf("results.dir is required")
	}
	if cfg.Bench.Hyperfine == "" {
		return fmt.Errorf("bench.hyperfine is required")
	}
	if cfg.Bench.Warmup < 0 {
		return fmt.Errorf("bench.warmup must not be negative")
	}
	if cfg.Bench.MinRuns < 1 {
		return fmt.Errorf("bench.min_runs must be at least 1")
	}
	if cfg.Bench.ColdRuns < 1 {
		return fmt.Errorf("bench.cold_runs must be at least 1")
	}
	for _, f := range cfg.Formats {
		switch f {
		case "raw", "gz", "bgz":
		default:
			return fmt.Errorf("unknown format %q (want raw, gz, or bgz)", f)
		}
	}
	for _, s := range cfg.CacheStates {
		switch s {
		case "hot", "cold", "really-cold":
		default:
			return fmt.Errorf("unknown cache state %q (want hot, cold, or really-cold)", s)
		}
	}
	return nil
}

// Rebase resolves every relative path in the config against root.
func (c *Config) Rebase(root string) {
	c.Tools.Dir = rebase(root, c.Tools.Dir)
	c.Data.Dir = rebase(root, c.Data.Dir)
	c.Results.Dir = rebase(root, c.Results.Dir)
}

func rebase(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
