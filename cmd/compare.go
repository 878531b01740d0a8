package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/signalnine/fqbench/internal/result"
	"github.com/spf13/cobra"
	"golang.org/x/perf/benchstat"
)

var flagAlpha float64

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <old-run> <new-run>",
		Short: "Compare two runs' timing exports with benchstat",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := &benchstat.Collection{
				Alpha:     flagAlpha,
				DeltaTest: benchstat.UTest,
			}
			for _, arg := range args {
				path, err := benchExportPath(arg)
				if err != nil {
					return err
				}
				f, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("opening %s: %w", path, err)
				}
				if err := c.AddFile(arg, f); err != nil {
					f.Close()
					return fmt.Errorf("parsing %s: %w", path, err)
				}
				f.Close()
			}
			var buf bytes.Buffer
			benchstat.FormatText(&buf, c.Tables())
			_, err := os.Stdout.Write(buf.Bytes())
			return err
		},
	}
	cmd.Flags().Float64Var(&flagAlpha, "alpha", 0.05, "consider a delta significant if p < alpha")
	return cmd
}

// benchExportPath accepts either a run directory or a bench file directly.
func benchExportPath(arg string) (string, error) {
	resolved, err := filepath.EvalSymlinks(arg)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", arg, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", resolved, err)
	}
	if info.IsDir() {
		return filepath.Join(resolved, result.BenchFile), nil
	}
	return resolved, nil
}
