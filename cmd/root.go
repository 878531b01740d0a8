package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fqbench",
		Short: "Benchmark harness for FASTQ parsing tools",
		Long: `fqbench benchmarks independent FASTQ-parsing tools under controlled,
reproducible I/O-cache conditions using hyperfine as the timing engine.

Each run expands input sizes × compression formats × cache states into
scenarios and measures every discovered tool wrapper against each one.

Formats: raw (plain .fastq), gz (gzip), bgz (bgzip).

Cache states:
  hot          input pre-copied into memory-backed fast storage
  cold         best-effort page cache eviction of the input before each
               measured run, falling back to the hot copy when eviction is
               unavailable (the fallback is recorded, never hidden)
  really-cold  input freshly regenerated immediately before measurement,
               with no prior page-cache history at all`,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "fqbench.yaml", "config file path")
	root.AddCommand(newRunCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newCompareCmd())
	root.AddCommand(newEvictCmd())
	return root
}
