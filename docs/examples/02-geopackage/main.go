package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/streamnum/pkg/gpkg"
	"github.com/beetlebugorg/streamnum/pkg/streamnum"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: geopackage <file.gpkg>")
	}
	ctx := context.Background()

	// List the feature layers first
	layers, err := gpkg.Layers(ctx, os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	for _, l := range layers {
		fmt.Printf("layer %s: %s, %d features\n", l.Name, l.GeometryType, l.Features)
	}

	// Open with the default layer and field names
	store, err := gpkg.Open(ctx, os.Args[1], gpkg.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	// Number the points and write the labels back
	report, err := streamnum.RunStore(ctx, store, streamnum.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(report)
}
