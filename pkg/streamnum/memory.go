package streamnum

import (
	"context"
	"sync"
)

// MemoryStore keeps both layers in memory and implements Store. It serves
// tests and programmatic callers that assemble features themselves.
type MemoryStore struct {
	mu       sync.Mutex
	segments []Segment
	points   []Point
	labels   map[int64]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{labels: make(map[int64]string)}
}

// AddSegment appends one stream feature.
func (s *MemoryStore) AddSegment(seg Segment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.segments = append(s.segments, seg)
}

// AddPoint appends one survey point.
func (s *MemoryStore) AddPoint(p Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append(s.points, p)
}

func (s *MemoryStore) StreamSegments(ctx context.Context) ([]Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Segment(nil), s.segments...), nil
}

func (s *MemoryStore) SurveyPoints(ctx context.Context) ([]Point, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Point(nil), s.points...), nil
}

func (s *MemoryStore) WriteLabels(ctx context.Context, labels map[int64]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, label := range labels {
		s.labels[id] = label
	}
	return nil
}

// Labels returns a copy of every label written so far.
func (s *MemoryStore) Labels() map[int64]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]string, len(s.labels))
	for id, label := range s.labels {
		out[id] = label
	}
	return out
}
