package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beetlebugorg/streamnum/pkg/gpkg"
	"github.com/beetlebugorg/streamnum/pkg/streamnum"
)

type runOptions struct {
	tolerance     float64
	direction     string
	oldLabels     string
	streams       string
	points        string
	streamIDField string
	oldField      string
	newField      string
	dryRun        bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <file.gpkg>",
		Short: "Number the survey points in a GeoPackage",
		Long: `Run reads the stream and point layers, merges stream fragments into
directed paths, assigns every point to its nearest stream and writes the
computed numbers back into the point layer. Points near no stream get
their number cleared.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNumbering(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().Float64Var(&opts.tolerance, "tolerance", streamnum.DefaultTolerance,
		"search tolerance around each point, in layer units")
	cmd.Flags().StringVar(&opts.direction, "direction", "",
		"flow direction policy: auto, keep or reverse")
	cmd.Flags().StringVar(&opts.oldLabels, "old-labels", "",
		"malformed old number policy: skip-stream, treat-as-new or abort")
	cmd.Flags().StringVar(&opts.streams, "streams", "", "stream layer name")
	cmd.Flags().StringVar(&opts.points, "points", "", "point layer name")
	cmd.Flags().StringVar(&opts.streamIDField, "stream-id-field", "",
		"stream identifier field on the stream layer")
	cmd.Flags().StringVar(&opts.oldField, "old-field", "",
		"field holding the pre-existing point numbers")
	cmd.Flags().StringVar(&opts.newField, "new-field", "",
		"field the computed numbers are written to")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false,
		"compute and report labels without writing them")

	return cmd
}

func runNumbering(cmd *cobra.Command, root *rootOptions, opts *runOptions, path string) error {
	ctx := cmd.Context()

	fileCfg, err := loadFileConfig(root.configPath)
	if err != nil {
		return err
	}

	storeOpts := fileCfg.storeOptions()
	if opts.streams != "" {
		storeOpts.StreamLayer = opts.streams
	}
	if opts.points != "" {
		storeOpts.PointLayer = opts.points
	}
	if opts.streamIDField != "" {
		storeOpts.StreamIDField = opts.streamIDField
	}
	if opts.oldField != "" {
		storeOpts.OldField = opts.oldField
	}
	if opts.newField != "" {
		storeOpts.NewField = opts.newField
	}

	cfg, err := fileCfg.runConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("tolerance") {
		cfg.Tolerance = opts.tolerance
	}
	if opts.direction != "" {
		cfg.Direction, err = streamnum.ParseDirectionPolicy(opts.direction)
		if err != nil {
			return err
		}
	}
	if opts.oldLabels != "" {
		cfg.OldLabels, err = streamnum.ParseLabelPolicy(opts.oldLabels)
		if err != nil {
			return err
		}
	}

	store, err := gpkg.Open(ctx, path, storeOpts)
	if err != nil {
		return err
	}
	defer store.Close()

	var report *streamnum.Report
	if opts.dryRun {
		report, err = streamnum.Run(ctx, store, store, discardWriter{}, cfg)
	} else {
		report, err = streamnum.RunStore(ctx, store, cfg)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), report)
	if opts.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "dry run, nothing written")
	}
	return nil
}

// discardWriter backs --dry-run. The computation is identical, the batch
// write is dropped.
type discardWriter struct{}

func (discardWriter) WriteLabels(context.Context, map[int64]string) error { return nil }
