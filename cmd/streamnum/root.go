package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "streamnum",
		Short: "Number survey points along watercourses",
		Long: `streamnum assigns the survey points in a GeoPackage to their nearest
watercourse and numbers them along the flow direction. Points that already
carry a number keep it; new points are labeled relative to the numbered
ones (1Pnowy before the first, 5Pa between 5P and 6P, 7P after the last).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(opts.logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"TOML configuration file (default streamnum.toml if present)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info",
		"log level: debug, info, warn or error")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newLayersCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func setupLogging(level string) error {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}
