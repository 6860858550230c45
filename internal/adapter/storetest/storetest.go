// Package storetest holds behaviour tests shared by every entry store.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weightlog/internal/domain"
)

// Store is what the shared tests exercise.
type Store interface {
	domain.WeightRepository
	domain.Maintainer
}

// Run exercises newStore against the entry store contract. newStore must
// return an empty store; it is called once per subtest.
func Run(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()

	t.Run("EmptyList", func(t *testing.T) {
		s := newStore(t)
		items, err := s.ListWeights(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("InsertAssignsIncreasingIDs", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id1, err := s.InsertWeight(ctx, 150, 1000)
		require.NoError(t, err)
		id2, err := s.InsertWeight(ctx, 151, 500)
		require.NoError(t, err)
		assert.Positive(t, id1)
		assert.Greater(t, id2, id1)
	})

	t.Run("RejectsInvalidWeight", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		for _, w := range []float64{0, -1} {
			_, err := s.InsertWeight(ctx, w, 1000)
			assert.True(t, errors.Is(err, domain.ErrInvalidWeight), "weight %v: got %v", w, err)
		}
		items, err := s.ListWeights(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("OrderedNewestFirstTiesByID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		a, _ := s.InsertWeight(ctx, 80, 2000)
		b, _ := s.InsertWeight(ctx, 81, 3000)
		c, _ := s.InsertWeight(ctx, 82, 2000)
		d, _ := s.InsertWeight(ctx, 83, 1000)

		items, err := s.ListWeights(ctx)
		require.NoError(t, err)
		ids := make([]int64, len(items))
		for i, e := range items {
			ids[i] = e.ID
		}
		assert.Equal(t, []int64{b, c, a, d}, ids)
		assert.Equal(t, domain.WeightEntry{ID: b, Weight: 81, Timestamp: 3000}, items[0])
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		keep, _ := s.InsertWeight(ctx, 70, 1)
		drop, _ := s.InsertWeight(ctx, 71, 2)

		require.NoError(t, s.DeleteWeight(ctx, drop))
		require.NoError(t, s.DeleteWeight(ctx, drop))
		require.NoError(t, s.DeleteWeight(ctx, 9999))

		items, err := s.ListWeights(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, keep, items[0].ID)
	})

	t.Run("IDsNotReused", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		first, _ := s.InsertWeight(ctx, 70, 1)
		require.NoError(t, s.DeleteWeight(ctx, first))
		second, err := s.InsertWeight(ctx, 71, 2)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("Maintain", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id, _ := s.InsertWeight(ctx, 70, 1)
		_, _ = s.InsertWeight(ctx, 71, 2)
		require.NoError(t, s.DeleteWeight(ctx, id))
		require.NoError(t, s.Maintain(ctx))

		items, err := s.ListWeights(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}
