// Package matrix expands the requested sizes, compression formats, and cache
// states into the ordered scenario sequence for one run.
package matrix

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

type Format string

const (
	FormatRaw   Format = "raw"
	FormatGzip  Format = "gz"
	FormatBgzip Format = "bgz"
)

type CacheState string

const (
	CacheHot        CacheState = "hot"
	CacheCold       CacheState = "cold"
	CacheReallyCold CacheState = "really-cold"
)

// FormatOrder and StateOrder fix the expansion order within one size.
var (
	FormatOrder = []Format{FormatRaw, FormatGzip, FormatBgzip}
	StateOrder  = []CacheState{CacheHot, CacheCold, CacheReallyCold}
)

// Scenario is one (size, format, cache-state) combination under measurement.
type Scenario struct {
	Size   string     `json:"size"`
	Format Format     `json:"format"`
	Cache  CacheState `json:"cache"`
}

// Name returns the canonical scenario key, e.g. "0.1m_hot_raw" or
// "1m_really_cold_gz". The downstream plotting layer keys off this form.
func (s Scenario) Name() string {
	return s.Size + "_" + s.StatsBase()
}

// StatsBase is the per-size file stem for this scenario's result files,
// e.g. "hot_raw" or "really_cold_bgz".
func (s Scenario) StatsBase() string {
	cache := strings.ReplaceAll(string(s.Cache), "-", "_")
	return cache + "_" + string(s.Format)
}

// InputPath returns the canonical input file for a size and format.
func InputPath(dataDir, size string, f Format) string {
	base := size + ".fastq"
	switch f {
	case FormatGzip:
		base += ".gz"
	case FormatBgzip:
		base = size + ".fastq_bgzipped.gz"
	}
	return filepath.Join(dataDir, base)
}

var sizeLabelRe = regexp.MustCompile(`^(\d+(\.\d+)?)m$`)

// ParseSizeLabel returns the numeric value of a size label like "0.1m".
func ParseSizeLabel(label string) (float64, error) {
	m := sizeLabelRe.FindStringSubmatch(label)
	if m == nil {
		return 0, fmt.Errorf("invalid size label %q (want e.g. 0.1m, 1m, 10m)", label)
	}
	return strconv.ParseFloat(m[1], 64)
}

// DiscoverSizes scans the data directory for raw input files whose basename
// is a size label and returns the labels sorted ascending.
func DiscoverSizes(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("scanning data directory %s: %w", dataDir, err)
	}
	var sizes []string
	for _, entry := range entries {
		label, ok := strings.CutSuffix(entry.Name(), ".fastq")
		if !ok || !sizeLabelRe.MatchString(label) {
			continue
		}
		sizes = append(sizes, label)
	}
	SortSizes(sizes)
	return sizes, nil
}

// SortSizes orders size labels numerically ascending: 0.1m < 1m < 10m.
func SortSizes(sizes []string) {
	sort.SliceStable(sizes, func(i, j int) bool {
		a, _ := ParseSizeLabel(sizes[i])
		b, _ := ParseSizeLabel(sizes[j])
		return a < b
	})
}

// Generator is the external data-generation collaborator: it materializes
// the raw and compressed inputs for one size into the data directory.
type Generator interface {
	Generate(size string) error
}

// SkippedSize records a size dropped from the run after generation failed.
type SkippedSize struct {
	Size   string
	Reason string
}

// Builder expands sizes × formats × cache states into scenarios, generating
// missing inputs on the way.
type Builder struct {
	DataDir string
	Formats []Format
	States  []CacheState
	Gen     Generator
}

// Build returns the deterministic scenario sequence for the given sizes.
// A size whose inputs are missing and cannot be generated is skipped and
// reported; it never fails the run.
func (b *Builder) Build(sizes []string) ([]Scenario, []SkippedSize) {
	sizes = append([]string(nil), sizes...)
	SortSizes(sizes)

	var scenarios []Scenario
	var skipped []SkippedSize
	for _, size := range sizes {
		if _, err := ParseSizeLabel(size); err != nil {
			skipped = append(skipped, SkippedSize{Size: size, Reason: err.Error()})
			continue
		}
		if err := b.ensureInputs(size); err != nil {
			skipped = append(skipped, SkippedSize{Size: size, Reason: err.Error()})
			continue
		}
		for _, f := range FormatOrder {
			if !containsFormat(b.Formats, f) {
				continue
			}
			for _, st := range StateOrder {
				if !containsState(b.States, st) {
					continue
				}
				scenarios = append(scenarios, Scenario{Size: size, Format: f, Cache: st})
			}
		}
	}
	return scenarios, skipped
}

// ensureInputs generates the size's inputs when any enabled format's file is
// missing, then re-checks that every required file exists.
func (b *Builder) ensureInputs(size string) error {
	if missing := b.missingInputs(size); len(missing) > 0 {
		if b.Gen == nil {
			return fmt.Errorf("missing input files: %s", strings.Join(missing, ", "))
		}
		if err := b.Gen.Generate(size); err != nil {
			return fmt.Errorf("generating inputs: %w", err)
		}
		if missing = b.missingInputs(size); len(missing) > 0 {
			return fmt.Errorf("generation left input files missing: %s", strings.Join(missing, ", "))
		}
	}
	return nil
}

func (b *Builder) missingInputs(size string) []string {
	var missing []string
	for _, f := range b.Formats {
		path := InputPath(b.DataDir, size, f)
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}
	return missing
}

func containsFormat(fs []Format, f Format) bool {
	for _, x := range fs {
		if x == f {
			return true
		}
	}
	return false
}

func containsState(ss []CacheState, s CacheState) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
