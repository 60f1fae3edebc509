package main

import (
	"context"
	"fmt"
	"log"

	"github.com/paulmach/orb"

	"github.com/beetlebugorg/streamnum/pkg/streamnum"
)

func main() {
	// Build an in-memory store with one stream and three points
	store := streamnum.NewMemoryStore()
	store.AddSegment(streamnum.Segment{
		ID:       1,
		StreamID: "W-1",
		Line:     orb.LineString{{0, 0}, {10, 0}},
	})
	store.AddPoint(streamnum.Point{ID: 101, Geom: orb.Point{1, 0}})
	store.AddPoint(streamnum.Point{ID: 102, Geom: orb.Point{5, 0}, OldLabel: "5P"})
	store.AddPoint(streamnum.Point{ID: 103, Geom: orb.Point{9, 0}})

	// Number the points along the stream
	report, err := streamnum.RunStore(context.Background(), store, streamnum.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}

	// Print the computed labels
	for id, label := range store.Labels() {
		fmt.Printf("point %d: %s\n", id, label)
	}
	fmt.Println(report)
}
