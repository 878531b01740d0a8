package cmd

import (
	"fmt"

	"github.com/signalnine/fqbench/internal/config"
	"github.com/signalnine/fqbench/internal/matrix"
	"github.com/signalnine/fqbench/internal/registry"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List discovered tools and available input sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			tools, err := registry.Discover(cfg.Tools.Dir)
			if err != nil {
				return err
			}
			fmt.Println("Tools:")
			for _, t := range tools {
				fmt.Printf("  - %s (%s)\n", t.Name, t.Path)
			}

			sizes, err := matrix.DiscoverSizes(cfg.Data.Dir)
			if err != nil {
				fmt.Printf("\nSizes: none (%v)\n", err)
				return nil
			}
			fmt.Println("\nSizes:")
			for _, s := range sizes {
				fmt.Printf("  - %s (%s)\n", s, matrix.InputPath(cfg.Data.Dir, s, matrix.FormatRaw))
			}
			return nil
		},
	}
}
