package app

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"weightlog/internal/domain"
)

// Snapshot is the full ordered list of entries at one point in time.
type Snapshot struct {
	Version uint64               `json:"version"`
	Entries []domain.WeightEntry `json:"items"`
}

// Ascending returns the entries oldest first.
func (s Snapshot) Ascending() []domain.WeightEntry {
	out := slices.Clone(s.Entries)
	slices.Reverse(out)
	return out
}

// Timeline publishes a fresh Snapshot of the store to every subscriber after
// each committed mutation. Nothing is cached between refreshes.
type Timeline struct {
	store domain.WeightLister
	log   *zap.Logger

	mu      sync.Mutex
	version uint64
	subs    map[uuid.UUID]*Subscription
}

// NewTimeline creates a Timeline reading from store.
func NewTimeline(store domain.WeightLister, log *zap.Logger) *Timeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Timeline{store: store, log: log, subs: make(map[uuid.UUID]*Subscription)}
}

// Current queries the store and returns a new snapshot without notifying
// subscribers.
func (t *Timeline) Current(ctx context.Context) (Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked(ctx)
}

// Subscribe registers a subscriber. The current snapshot is queued on the
// channel before Subscribe returns. The subscription ends when Close is
// called or ctx is done.
func (t *Timeline) Subscribe(ctx context.Context) (*Subscription, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap, err := t.snapshotLocked(ctx)
	if err != nil {
		return nil, err
	}
	sub := &Subscription{
		ID: uuid.New(),
		ch: make(chan Snapshot, 1),
		t:  t,
	}
	sub.ch <- snap
	t.subs[sub.ID] = sub
	sub.stop = context.AfterFunc(ctx, sub.Close)

	t.log.Debug("subscribed", zap.Stringer("id", sub.ID), zap.Int("subscribers", len(t.subs)))
	return sub, nil
}

// Refresh re-queries the store and delivers the result to every subscriber.
// On failure subscribers keep their last snapshot.
func (t *Timeline) Refresh(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap, err := t.snapshotLocked(ctx)
	if err != nil {
		t.log.Warn("refresh failed", zap.Error(err))
		return err
	}
	for _, sub := range t.subs {
		sub.deliver(snap)
	}
	return nil
}

// Subscribers returns the number of live subscriptions.
func (t *Timeline) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

func (t *Timeline) snapshotLocked(ctx context.Context) (Snapshot, error) {
	entries, err := t.store.ListWeights(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: list weights: %w", domain.ErrStorageUnavailable, err)
	}
	if entries == nil {
		entries = []domain.WeightEntry{}
	}
	t.version++
	return Snapshot{Version: t.version, Entries: entries}, nil
}

func (t *Timeline) remove(sub *Subscription) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.subs[sub.ID]; !ok {
		return
	}
	if sub.stop != nil {
		sub.stop()
	}
	delete(t.subs, sub.ID)
	close(sub.ch)
	t.log.Debug("unsubscribed", zap.Stringer("id", sub.ID), zap.Int("subscribers", len(t.subs)))
}

// Subscription is one observer of a Timeline.
type Subscription struct {
	ID uuid.UUID

	ch   chan Snapshot
	t    *Timeline
	once sync.Once
	// stop detaches the context hook; guarded by the timeline lock.
	stop func() bool
}

// Updates delivers snapshots in the order they were produced. A slow reader
// only sees the newest pending snapshot. The channel is closed when the
// subscription ends.
func (s *Subscription) Updates() <-chan Snapshot { return s.ch }

// Close ends the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.t.remove(s) })
}

// deliver is called with the timeline lock held.
func (s *Subscription) deliver(snap Snapshot) {
	select {
	case s.ch <- snap:
		return
	default:
	}
	// Replace the undelivered older snapshot.
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
}
