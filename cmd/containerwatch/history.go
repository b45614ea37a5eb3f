package main

import (
	"errors"
	"fmt"

	"github.com/container-census/containerwatch/cmd/containerwatch/ui"
	"github.com/container-census/containerwatch/internal/config"
	"github.com/spf13/cobra"
)

func historyCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <container-id|name>",
		Short: "Show stored snapshots of one container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadOrDefault(*configPath)

			db, err := openStorage(cfg)
			if err != nil {
				return err
			}
			if db == nil {
				return errors.New("storage is disabled in the configuration")
			}
			defer db.Close()

			snapshots, err := db.GetContainerHistory(args[0], limit)
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}
			if len(snapshots) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No snapshots stored for %s\n", args[0])
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.HistoryTable(snapshots))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of snapshots to show")
	return cmd
}
