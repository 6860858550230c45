package app

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/samber/lo"

	"weightlog/internal/chart"
	"weightlog/internal/domain"
)

const (
	// ZoomStep is how far one zoom moves the baseline.
	ZoomStep = 10.0
	// zoomHeadroom keeps the lowest sample above the baseline when zooming in.
	zoomHeadroom = 5.0
	// defaultBaselineRatio places the automatic baseline below the lowest sample.
	defaultBaselineRatio = 0.8
)

// Baseline is the Y-axis minimum used for the chart.
type Baseline struct {
	Value  float64 `json:"value"`
	Manual bool    `json:"manual"`
}

// ChartsService encapsulates chart projection use cases.
type ChartsService struct {
	timeline *Timeline
	loc      *time.Location

	mu     sync.Mutex
	manual *float64
}

// NewChartsService creates a ChartsService reading from timeline.
func NewChartsService(timeline *Timeline, loc *time.Location) *ChartsService {
	if loc == nil {
		loc = time.Local
	}
	return &ChartsService{timeline: timeline, loc: loc}
}

// Baseline returns the effective baseline: the manual value when set,
// otherwise 80% of the lowest recorded weight.
func (s *ChartsService) Baseline(ctx context.Context) (Baseline, error) {
	snap, err := s.timeline.Current(ctx)
	if err != nil {
		return Baseline{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effectiveLocked(snap.Entries), nil
}

// ZoomIn raises the baseline by ZoomStep, keeping it at least 5 below the
// lowest recorded weight.
func (s *ChartsService) ZoomIn(ctx context.Context) (Baseline, error) {
	snap, err := s.timeline.Current(ctx)
	if err != nil {
		return Baseline{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.effectiveLocked(snap.Entries)
	if len(snap.Entries) == 0 {
		return cur, nil
	}
	next := math.Max(0, math.Min(cur.Value+ZoomStep, minWeight(snap.Entries)-zoomHeadroom))
	s.manual = &next
	return Baseline{Value: next, Manual: true}, nil
}

// ZoomOut lowers the baseline by ZoomStep. Reaching zero clears the manual
// baseline and returns the automatic one.
func (s *ChartsService) ZoomOut(ctx context.Context) (Baseline, error) {
	snap, err := s.timeline.Current(ctx)
	if err != nil {
		return Baseline{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.effectiveLocked(snap.Entries)
	next := cur.Value - ZoomStep
	if next <= 0 {
		s.manual = nil
		return s.effectiveLocked(snap.Entries), nil
	}
	s.manual = &next
	return Baseline{Value: next, Manual: true}, nil
}

// ResetBaseline clears the manual baseline.
func (s *ChartsService) ResetBaseline(ctx context.Context) (Baseline, error) {
	s.mu.Lock()
	s.manual = nil
	s.mu.Unlock()
	return s.Baseline(ctx)
}

// Geometry projects the current timeline onto canvas. minimum overrides the
// effective baseline when non-nil. ok is false when there are no entries.
func (s *ChartsService) Geometry(ctx context.Context, canvas chart.Canvas, minimum *float64) (*chart.Geometry, bool, error) {
	snap, err := s.timeline.Current(ctx)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	base := s.effectiveLocked(snap.Entries).Value
	s.mu.Unlock()
	if minimum != nil {
		base = *minimum
	}

	samples := lo.Map(snap.Ascending(), func(e domain.WeightEntry, _ int) chart.Sample {
		return chart.Sample{Timestamp: e.Timestamp, Weight: e.Weight}
	})
	g, ok := chart.Project(samples, canvas, chart.Options{MinimumWeight: base, Location: s.loc})
	return g, ok, nil
}

func (s *ChartsService) effectiveLocked(entries []domain.WeightEntry) Baseline {
	if s.manual != nil {
		return Baseline{Value: *s.manual, Manual: true}
	}
	if len(entries) == 0 {
		return Baseline{}
	}
	return Baseline{Value: math.Max(0, minWeight(entries)*defaultBaselineRatio)}
}

func minWeight(entries []domain.WeightEntry) float64 {
	return lo.Min(lo.Map(entries, func(e domain.WeightEntry, _ int) float64 { return e.Weight }))
}
