// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"slices"
	"sync"

	"weightlog/internal/domain"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("memory: store closed")

// DB implements an in-memory database storage.
type DB struct {
	mu      sync.Mutex
	weights []domain.WeightEntry
	closed  bool

	weightIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// Ensure interfaces are met.
var (
	_ domain.WeightRepository = (*DB)(nil)
	_ domain.Maintainer       = (*DB)(nil)
)

// InsertWeight appends an entry and returns its ID.
func (db *DB) InsertWeight(ctx context.Context, weight float64, timestamp int64) (int64, error) {
	if !domain.ValidWeight(weight) {
		return 0, domain.ErrInvalidWeight
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return 0, ErrClosed
	}

	db.weightIDCounter++
	id := db.weightIDCounter
	db.weights = append(db.weights, domain.WeightEntry{ID: id, Weight: weight, Timestamp: timestamp})
	return id, nil
}

// DeleteWeight removes the entry with the given ID if present.
func (db *DB) DeleteWeight(ctx context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}

	db.weights = slices.DeleteFunc(db.weights, func(w domain.WeightEntry) bool { return w.ID == id })
	return nil
}

// ListWeights returns a copy of every entry, newest first.
func (db *DB) ListWeights(ctx context.Context) ([]domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return nil, ErrClosed
	}

	result := slices.Clone(db.weights)
	slices.SortFunc(result, func(a, b domain.WeightEntry) int {
		switch {
		case a.Timestamp != b.Timestamp:
			if a.Timestamp > b.Timestamp {
				return -1
			}
			return 1
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
	if result == nil {
		result = []domain.WeightEntry{}
	}
	return result, nil
}

// Maintain releases capacity left behind by deletes.
func (db *DB) Maintain(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.closed {
		return ErrClosed
	}
	if cap(db.weights) > 2*len(db.weights) {
		db.weights = slices.Clone(db.weights)
	}
	return nil
}

// Close marks the store closed and drops its contents.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.closed = true
	db.weights = nil
	return nil
}
