package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/streamnum/pkg/gpkg"
	"github.com/beetlebugorg/streamnum/pkg/streamnum"
)

func numberPoints(ctx context.Context, path string) error {
	// Survey layers in this inventory use English names
	opts := gpkg.Options{
		StreamLayer:   "streams",
		PointLayer:    "points",
		StreamIDField: "stream_name",
		OldField:      "old_number",
		NewField:      "new_number",
	}

	store, err := gpkg.Open(ctx, path, opts)
	if err != nil {
		// Distinguish a wrong file from wrong layer names
		var notGpkg *gpkg.ErrNotGeoPackage
		var noLayer *gpkg.ErrLayerNotFound
		switch {
		case errors.As(err, &notGpkg):
			return fmt.Errorf("%s is not a GeoPackage", path)
		case errors.As(err, &noLayer):
			return fmt.Errorf("layer %q missing, check the layer options", noLayer.Layer)
		}
		return err
	}
	defer store.Close()

	// Abort the whole run on a malformed old number instead of
	// skipping the stream
	cfg := streamnum.DefaultConfig()
	cfg.OldLabels = streamnum.LabelAbort

	report, err := streamnum.RunStore(ctx, store, cfg)
	if err != nil {
		var malformed *streamnum.ErrMalformedLabel
		if errors.As(err, &malformed) {
			return fmt.Errorf("fix point %d on stream %s: old number %q is not numeric",
				malformed.FeatureID, malformed.StreamID, malformed.Label)
		}
		return err
	}

	fmt.Println(report)
	return nil
}

func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: error-handling <file.gpkg>")
	}
	if err := numberPoints(context.Background(), os.Args[1]); err != nil {
		log.Fatal(err)
	}
}
