package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cfg)
		if err != nil {
			return err
		}

		ctx := context.Background()
		count, err := d.store.Count(ctx, cfg.Collection)
		if err != nil {
			return fmt.Errorf("count collection: %w", err)
		}
		fmt.Printf("collection: %s\npoints: %d\nprovider: %s\n", cfg.Collection, count, d.provider.Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
