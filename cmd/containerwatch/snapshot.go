package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/container-census/containerwatch/cmd/containerwatch/ui"
	"github.com/container-census/containerwatch/internal/config"
	"github.com/spf13/cobra"
)

func snapshotCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Collect statistics once and print them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadOrDefault(*configPath)
			ctx := cmd.Context()

			ext, err := openSession(ctx, cfg)
			if err != nil {
				return err
			}
			defer ext.Terminate()

			// The first cycle starts watchers; rows carry samples from the second.
			ext.Stats(ctx, cfg.Containers.All)
			select {
			case <-time.After(cfg.Containers.WatcherInterval()):
			case <-ctx.Done():
				return ctx.Err()
			}
			stats := ext.Stats(ctx, cfg.Containers.All)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.StatsTable(stats, time.Now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw statistics as JSON")
	return cmd
}
