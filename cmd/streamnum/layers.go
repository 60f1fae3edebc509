package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/beetlebugorg/streamnum/pkg/gpkg"
)

func newLayersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layers <file.gpkg>",
		Short: "List the feature layers in a GeoPackage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layers, err := gpkg.Layers(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "LAYER\tGEOMETRY\tSRS\tFEATURES")
			for _, l := range layers {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", l.Name, l.GeometryType, l.SRSID, l.Features)
			}
			return w.Flush()
		},
	}
}
