package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/container-census/containerwatch/cmd/containerwatch/ui"
	"github.com/container-census/containerwatch/internal/config"
	"github.com/container-census/containerwatch/internal/engines"
	"github.com/container-census/containerwatch/internal/poller"
	"github.com/container-census/containerwatch/internal/storage"
	"github.com/container-census/containerwatch/internal/version"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func runCmd(configPath *string) *cobra.Command {
	var noTable bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll the first reachable engine until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.LoadOrDefault(*configPath)
			log.Infof("Starting containerwatch %s", version.Get())

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			ext, err := openSession(ctx, cfg)
			if err != nil {
				return err
			}
			defer ext.Terminate()

			var sinks []poller.Sink
			if !noTable {
				sinks = append(sinks, poller.SinkFunc(func(ctx context.Context, stats engines.ContainersStatistics, at time.Time) error {
					fmt.Fprintln(cmd.OutOrStdout(), ui.StatsTable(stats, at))
					return nil
				}))
			}

			db, err := openStorage(cfg)
			if err != nil {
				return err
			}
			if db != nil {
				defer db.Close()
				retention := time.Duration(cfg.Storage.RetentionHours) * time.Hour
				sinks = append(sinks, storage.NewRecorder(db, retention))
			}

			scheduler := poller.NewScheduler(ext, cfg.Containers, sinks...)

			// Graceful shutdown
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			go func() {
				select {
				case <-sigChan:
					log.Infoln("Shutting down...")
					scheduler.Stop()
				case <-ctx.Done():
				}
			}()

			scheduler.Start(ctx)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noTable, "quiet", false, "Do not print a table each cycle")
	return cmd
}
