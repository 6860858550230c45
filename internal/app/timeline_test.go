package app_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weightlog/internal/adapter/memory"
	"weightlog/internal/app"
	"weightlog/internal/domain"
)

func receive(t *testing.T, sub *app.Subscription) app.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.Updates():
		require.True(t, ok, "subscription closed")
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return app.Snapshot{}
}

func weights(entries []domain.WeightEntry) []float64 {
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[i] = e.Weight
	}
	return out
}

func TestTimeline_InsertInsertDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	tl := app.NewTimeline(store, nil)
	svc := app.NewWeightService(store, tl, fixedClock{now: testNow}, time.UTC, nil)

	sub, err := tl.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()
	assert.Empty(t, receive(t, sub).Entries)

	t1 := testNow.Add(-2 * time.Hour).UnixMilli()
	t2 := testNow.Add(-1 * time.Hour).UnixMilli()

	id1, err := svc.Record(ctx, 150, t1)
	require.NoError(t, err)
	assert.Equal(t, []float64{150}, weights(receive(t, sub).Entries))

	_, err = svc.Record(ctx, 151, t2)
	require.NoError(t, err)
	snap := receive(t, sub)
	assert.Equal(t, []float64{151, 150}, weights(snap.Entries))
	assert.Equal(t, []float64{150, 151}, weights(snap.Ascending()))

	require.NoError(t, svc.Delete(ctx, id1))
	assert.Equal(t, []float64{151}, weights(receive(t, sub).Entries))
}

func TestTimeline_SlowSubscriberSeesLatest(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	tl := app.NewTimeline(store, nil)

	sub, err := tl.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	for i := 0; i < 3; i++ {
		_, err := store.InsertWeight(ctx, float64(100+i), int64(i+1))
		require.NoError(t, err)
		require.NoError(t, tl.Refresh(ctx))
	}

	snap := receive(t, sub)
	assert.Len(t, snap.Entries, 3)
	assert.Equal(t, 102.0, snap.Entries[0].Weight)

	select {
	case extra := <-sub.Updates():
		t.Fatalf("unexpected stale snapshot version %d", extra.Version)
	default:
	}
}

func TestTimeline_VersionsIncrease(t *testing.T) {
	ctx := context.Background()
	tl := app.NewTimeline(memory.New(), nil)
	sub, err := tl.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	last := receive(t, sub).Version
	for i := 0; i < 3; i++ {
		require.NoError(t, tl.Refresh(ctx))
		v := receive(t, sub).Version
		assert.Greater(t, v, last)
		last = v
	}
}

func TestTimeline_ContextCancelUnsubscribes(t *testing.T) {
	tl := app.NewTimeline(memory.New(), nil)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := tl.Subscribe(ctx)
	require.NoError(t, err)
	receive(t, sub)
	assert.Equal(t, 1, tl.Subscribers())

	cancel()
	select {
	case _, ok := <-sub.Updates():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed after cancel")
	}
	assert.Equal(t, 0, tl.Subscribers())
	sub.Close()
}

func TestTimeline_RefreshFailureKeepsLastSnapshot(t *testing.T) {
	fail := false
	repo := &mockWeightRepo{
		listFn: func(context.Context) ([]domain.WeightEntry, error) {
			if fail {
				return nil, errors.New("io error")
			}
			return []domain.WeightEntry{{ID: 1, Weight: 70, Timestamp: 1}}, nil
		},
	}
	tl := app.NewTimeline(repo, nil)
	sub, err := tl.Subscribe(context.Background())
	require.NoError(t, err)
	defer sub.Close()
	receive(t, sub)

	fail = true
	err = tl.Refresh(context.Background())
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)

	select {
	case <-sub.Updates():
		t.Fatal("no snapshot expected after a failed refresh")
	default:
	}
}

func TestTimeline_SubscribeFailure(t *testing.T) {
	tl := app.NewTimeline(&mockWeightRepo{
		listFn: func(context.Context) ([]domain.WeightEntry, error) { return nil, errors.New("closed") },
	}, nil)
	_, err := tl.Subscribe(context.Background())
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Equal(t, 0, tl.Subscribers())
}

func TestTimeline_MultipleSubscribers(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	tl := app.NewTimeline(store, nil)
	svc := app.NewWeightService(store, tl, fixedClock{now: testNow}, time.UTC, nil)

	a, err := tl.Subscribe(ctx)
	require.NoError(t, err)
	defer a.Close()
	b, err := tl.Subscribe(ctx)
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, 2, tl.Subscribers())

	lastA, lastB := receive(t, a).Version, receive(t, b).Version

	for i, w := range []float64{150, 151} {
		_, err := svc.Record(ctx, w, testNow.Add(time.Duration(i-2)*time.Hour).UnixMilli())
		require.NoError(t, err)

		snapA, snapB := receive(t, a), receive(t, b)
		assert.Len(t, snapA.Entries, i+1)
		assert.Equal(t, snapA.Entries, snapB.Entries)
		assert.Greater(t, snapA.Version, lastA)
		assert.Greater(t, snapB.Version, lastB)
		lastA, lastB = snapA.Version, snapB.Version
	}

	a.Close()
	assert.Equal(t, 1, tl.Subscribers())

	_, err = svc.Record(ctx, 152, testNow.UnixMilli())
	require.NoError(t, err)
	assert.Equal(t, []float64{152, 151, 150}, weights(receive(t, b).Entries))
}

func TestTimeline_ResubscribeAfterIdleSeesWritesMadeWhileIdle(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	tl := app.NewTimeline(store, nil)

	sub, err := tl.Subscribe(ctx)
	require.NoError(t, err)
	assert.Empty(t, receive(t, sub).Entries)
	sub.Close()
	require.Equal(t, 0, tl.Subscribers())

	_, err = store.InsertWeight(ctx, 80, testNow.Add(-time.Hour).UnixMilli())
	require.NoError(t, err)
	_, err = store.InsertWeight(ctx, 81, testNow.UnixMilli())
	require.NoError(t, err)

	again, err := tl.Subscribe(ctx)
	require.NoError(t, err)
	defer again.Close()
	assert.Equal(t, []float64{81, 80}, weights(receive(t, again).Entries))
}

func TestTimeline_CommittedWriteDeliveredAfterCallerCancels(t *testing.T) {
	var (
		stored            []domain.WeightEntry
		cancelAfterCommit context.CancelFunc
	)
	repo := &mockWeightRepo{
		insertFn: func(_ context.Context, w float64, ts int64) (int64, error) {
			id := int64(len(stored) + 1)
			stored = append([]domain.WeightEntry{{ID: id, Weight: w, Timestamp: ts}}, stored...)
			cancelAfterCommit()
			return id, nil
		},
		deleteFn: func(_ context.Context, id int64) error {
			stored = slices.DeleteFunc(stored, func(e domain.WeightEntry) bool { return e.ID == id })
			cancelAfterCommit()
			return nil
		},
		listFn: func(ctx context.Context) ([]domain.WeightEntry, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return slices.Clone(stored), nil
		},
	}
	svc, tl := newWeightService(repo)

	sub, err := tl.Subscribe(context.Background())
	require.NoError(t, err)
	defer sub.Close()
	assert.Empty(t, receive(t, sub).Entries)

	ctx, cancel := context.WithCancel(context.Background())
	cancelAfterCommit = cancel
	id, err := svc.Record(ctx, 150, testNow.UnixMilli())
	require.NoError(t, err)
	require.Error(t, ctx.Err())
	assert.Equal(t, []float64{150}, weights(receive(t, sub).Entries))

	ctx, cancel = context.WithCancel(context.Background())
	cancelAfterCommit = cancel
	require.NoError(t, svc.Delete(ctx, id))
	require.Error(t, ctx.Err())
	assert.Empty(t, receive(t, sub).Entries)
}
