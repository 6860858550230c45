package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"weightlog/internal/app"
	"weightlog/internal/domain"
)

type mockWeightRepo struct {
	insertFn func(ctx context.Context, weight float64, timestamp int64) (int64, error)
	deleteFn func(ctx context.Context, id int64) error
	listFn   func(ctx context.Context) ([]domain.WeightEntry, error)
}

func (m *mockWeightRepo) InsertWeight(ctx context.Context, weight float64, timestamp int64) (int64, error) {
	if m.insertFn != nil {
		return m.insertFn(ctx, weight, timestamp)
	}
	return 1, nil
}

func (m *mockWeightRepo) DeleteWeight(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockWeightRepo) ListWeights(ctx context.Context) ([]domain.WeightEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2024, time.June, 15, 9, 30, 0, 0, time.UTC)

func newWeightService(repo domain.WeightRepository) (*app.WeightService, *app.Timeline) {
	tl := app.NewTimeline(repo, nil)
	return app.NewWeightService(repo, tl, fixedClock{now: testNow}, time.UTC, nil), tl
}

func TestRecord_Validation(t *testing.T) {
	called := false
	svc, _ := newWeightService(&mockWeightRepo{
		insertFn: func(context.Context, float64, int64) (int64, error) {
			called = true
			return 1, nil
		},
	})

	tests := []struct {
		name    string
		weight  float64
		ts      int64
		wantErr error
	}{
		{"zero weight", 0, testNow.UnixMilli(), domain.ErrInvalidWeight},
		{"negative weight", -5, testNow.UnixMilli(), domain.ErrInvalidWeight},
		{"future timestamp", 80, testNow.Add(time.Millisecond).UnixMilli(), domain.ErrFutureTimestamp},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), tc.weight, tc.ts)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
	if called {
		t.Fatal("repository must not be called for rejected input")
	}
}

func TestRecord_Success(t *testing.T) {
	var gotWeight float64
	var gotTS int64
	svc, _ := newWeightService(&mockWeightRepo{
		insertFn: func(_ context.Context, w float64, ts int64) (int64, error) {
			gotWeight, gotTS = w, ts
			return 7, nil
		},
	})
	id, err := svc.Record(context.Background(), 80.5, testNow.UnixMilli())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 || gotWeight != 80.5 || gotTS != testNow.UnixMilli() {
		t.Fatalf("unexpected insert: id=%d weight=%v ts=%d", id, gotWeight, gotTS)
	}
}

func TestRecord_RepoError(t *testing.T) {
	svc, _ := newWeightService(&mockWeightRepo{
		insertFn: func(context.Context, float64, int64) (int64, error) {
			return 0, errors.New("disk full")
		},
	})
	_, err := svc.Record(context.Background(), 80, testNow.UnixMilli())
	if !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestRecord_RefreshesSubscribers(t *testing.T) {
	var entries []domain.WeightEntry
	repo := &mockWeightRepo{
		insertFn: func(_ context.Context, w float64, ts int64) (int64, error) {
			id := int64(len(entries) + 1)
			entries = append([]domain.WeightEntry{{ID: id, Weight: w, Timestamp: ts}}, entries...)
			return id, nil
		},
		listFn: func(context.Context) ([]domain.WeightEntry, error) {
			return append([]domain.WeightEntry(nil), entries...), nil
		},
	}
	svc, tl := newWeightService(repo)

	sub, err := tl.Subscribe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()
	if first := <-sub.Updates(); len(first.Entries) != 0 {
		t.Fatalf("expected empty initial snapshot, got %v", first.Entries)
	}

	if _, err := svc.Record(context.Background(), 81, testNow.UnixMilli()); err != nil {
		t.Fatal(err)
	}
	snap := <-sub.Updates()
	if len(snap.Entries) != 1 || snap.Entries[0].Weight != 81 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestRecord_RefreshFailureStillSucceeds(t *testing.T) {
	svc, _ := newWeightService(&mockWeightRepo{
		listFn: func(context.Context) ([]domain.WeightEntry, error) {
			return nil, errors.New("read failed")
		},
	})
	if _, err := svc.Record(context.Background(), 80, testNow.UnixMilli()); err != nil {
		t.Fatalf("committed write must succeed, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	var deleted int64
	svc, _ := newWeightService(&mockWeightRepo{
		deleteFn: func(_ context.Context, id int64) error {
			deleted = id
			return nil
		},
	})
	if err := svc.Delete(context.Background(), 42); err != nil {
		t.Fatal(err)
	}
	if deleted != 42 {
		t.Fatalf("expected delete of 42, got %d", deleted)
	}

	svc, _ = newWeightService(&mockWeightRepo{
		deleteFn: func(context.Context, int64) error { return errors.New("locked") },
	})
	if err := svc.Delete(context.Background(), 1); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestLatest(t *testing.T) {
	svc, _ := newWeightService(&mockWeightRepo{})
	got, err := svc.Latest(context.Background())
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got %v, %v", got, err)
	}

	svc, _ = newWeightService(&mockWeightRepo{
		listFn: func(context.Context) ([]domain.WeightEntry, error) {
			return []domain.WeightEntry{{ID: 2, Weight: 79}, {ID: 1, Weight: 80}}, nil
		},
	})
	got, err = svc.Latest(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.ID != 2 {
		t.Fatalf("unexpected latest: %v", got)
	}
}

func TestSaveDraft(t *testing.T) {
	svc, _ := newWeightService(&mockWeightRepo{
		insertFn: func(context.Context, float64, int64) (int64, error) { return 9, nil },
	})

	d, err := svc.NewDraft(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if d.QuickAdjustAvailable() {
		t.Fatal("no prior weight, quick adjust must be hidden")
	}

	d.WeightText = "0"
	if _, _, err := svc.SaveDraft(context.Background(), d); !errors.Is(err, domain.ErrInvalidWeight) {
		t.Fatalf("expected ErrInvalidWeight, got %v", err)
	}
	if !d.Invalid {
		t.Fatal("draft should be marked invalid")
	}

	d.WeightText = "72.5"
	id, next, err := svc.SaveDraft(context.Background(), d)
	if err != nil {
		t.Fatal(err)
	}
	if id != 9 {
		t.Fatalf("id = %d", id)
	}
	if next.WeightText != "72.5" || !next.QuickAdjustAvailable() {
		t.Fatalf("next draft should start from saved weight, got %q", next.WeightText)
	}
	if !next.Picker().Selected().Equal(testNow) {
		t.Fatalf("next draft should start at now, got %v", next.Picker().Selected())
	}
}
