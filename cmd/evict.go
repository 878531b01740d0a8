package cmd

import (
	"github.com/signalnine/fqbench/internal/cache"
	"github.com/spf13/cobra"
)

// newEvictCmd is the hidden helper used as hyperfine's --prepare command for
// achieved cold scenarios, so every measured run re-pays the eviction.
func newEvictCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "evict <file>",
		Short:  "Drop one file's pages from the OS page cache",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cache.EvictFile(args[0])
		},
	}
}
