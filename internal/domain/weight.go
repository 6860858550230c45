// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"math"
)

// WeightEntry represents a single weight measurement.
type WeightEntry struct {
	ID        int64   `json:"id"`
	Weight    float64 `json:"weight"`
	Timestamp int64   `json:"timestamp"` // epoch milliseconds
}

// WeightLister is the read side of the entry store.
type WeightLister interface {
	// ListWeights returns every entry ordered by timestamp descending, ties
	// broken by descending ID.
	ListWeights(ctx context.Context) ([]WeightEntry, error)
}

// WeightRepository is the port for weight persistence.
type WeightRepository interface {
	WeightLister
	InsertWeight(ctx context.Context, weight float64, timestamp int64) (int64, error)
	// DeleteWeight removes the entry with the given ID. Deleting an ID that
	// does not exist is not an error.
	DeleteWeight(ctx context.Context, id int64) error
}

// Maintainer is implemented by stores that benefit from periodic upkeep
// such as checkpoints or statistics.
type Maintainer interface {
	Maintain(ctx context.Context) error
}

// ValidWeight reports whether w may be persisted.
func ValidWeight(w float64) bool {
	return w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w)
}
