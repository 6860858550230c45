package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"weightlog/internal/domain"
)

// WeightService encapsulates weight-tracking use cases.
type WeightService struct {
	repo     domain.WeightRepository
	timeline *Timeline
	clock    domain.Clock
	loc      *time.Location
	log      *zap.Logger
}

// NewWeightService creates a WeightService backed by the given repository.
// Every committed mutation refreshes timeline.
func NewWeightService(repo domain.WeightRepository, timeline *Timeline, clock domain.Clock, loc *time.Location, log *zap.Logger) *WeightService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WeightService{repo: repo, timeline: timeline, clock: clock, loc: loc, log: log}
}

// Location is the zone used for calendar dates.
func (s *WeightService) Location() *time.Location { return s.loc }

// Record validates and stores a new weight measurement.
func (s *WeightService) Record(ctx context.Context, weight float64, timestamp int64) (int64, error) {
	if !domain.ValidWeight(weight) {
		return 0, domain.ErrInvalidWeight
	}
	if timestamp > s.clock.Now().UnixMilli() {
		return 0, domain.ErrFutureTimestamp
	}
	id, err := s.repo.InsertWeight(ctx, weight, timestamp)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidWeight) {
			return 0, err
		}
		return 0, storageErr("insert weight", err)
	}
	s.log.Info("weight recorded", zap.Int64("id", id), zap.Float64("weight", weight), zap.Int64("timestamp", timestamp))
	s.refresh(ctx)
	return id, nil
}

// Delete removes an entry. Deleting an unknown ID succeeds.
func (s *WeightService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteWeight(ctx, id); err != nil {
		return storageErr("delete weight", err)
	}
	s.log.Info("weight deleted", zap.Int64("id", id))
	s.refresh(ctx)
	return nil
}

// List returns every entry newest first.
func (s *WeightService) List(ctx context.Context) ([]domain.WeightEntry, error) {
	items, err := s.repo.ListWeights(ctx)
	if err != nil {
		return nil, storageErr("list weights", err)
	}
	return items, nil
}

// Latest returns the newest entry, or nil when there is none.
func (s *WeightService) Latest(ctx context.Context) (*domain.WeightEntry, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// NewDraft starts an add-entry flow seeded with the latest saved weight.
func (s *WeightService) NewDraft(ctx context.Context) (*domain.EntryDraft, error) {
	latest, err := s.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewEntryDraft(latest, s.clock, s.loc), nil
}

// ResumeDraft rebuilds a draft whose state is held by the caller.
func (s *WeightService) ResumeDraft(text string, hasInitial bool, selectedMs int64) *domain.EntryDraft {
	return domain.ResumeEntryDraft(text, hasInitial, selectedMs, s.clock, s.loc)
}

// SaveDraft resolves and records the draft. On success it returns the new ID
// and the next draft, which starts from the saved weight and a fresh now.
func (s *WeightService) SaveDraft(ctx context.Context, d *domain.EntryDraft) (int64, *domain.EntryDraft, error) {
	weight, ts, err := d.Resolve()
	if err != nil {
		return 0, d, err
	}
	id, err := s.Record(ctx, weight, ts)
	if err != nil {
		return 0, d, err
	}
	saved := &domain.WeightEntry{ID: id, Weight: weight, Timestamp: ts}
	return id, domain.NewEntryDraft(saved, s.clock, s.loc), nil
}

// refresh republishes the timeline. The mutation has already been committed,
// so it runs even if ctx was cancelled meanwhile, and a failure is logged and
// not returned.
func (s *WeightService) refresh(ctx context.Context) {
	if s.timeline == nil {
		return
	}
	if err := s.timeline.Refresh(context.WithoutCancel(ctx)); err != nil {
		s.log.Error("timeline refresh after write", zap.Error(err))
	}
}

func storageErr(op string, err error) error {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, op, err)
}
