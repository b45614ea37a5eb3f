package main

import (
	"fmt"
	"os"

	"github.com/container-census/containerwatch/internal/version"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configPath string
		debug      bool
		logFormat  string
	)

	log.SetFormatter(&log.TextFormatter{})
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)

	root := &cobra.Command{
		Use:           "containerwatch",
		Short:         "Per-container resource statistics for Docker and Podman",
		Version:       version.Get(),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch logFormat {
			case "text":
			case "json":
				log.SetFormatter(&log.JSONFormatter{})
			default:
				return fmt.Errorf("unknown log format %q (expected text or json)", logFormat)
			}
			if debug {
				log.SetLevel(log.DebugLevel)
			}
			return nil
		},
	}

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "./config/config.yaml"
	}

	root.PersistentFlags().StringVar(&configPath, "config", defaultConfig, "Path to the YAML configuration file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log output format (text or json)")

	root.AddCommand(runCmd(&configPath))
	root.AddCommand(snapshotCmd(&configPath))
	root.AddCommand(historyCmd(&configPath))
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
