package postgres

import (
	"context"

	"weightlog/internal/domain"
)

// InsertWeight inserts a new weight entry.
func (d *DB) InsertWeight(ctx context.Context, weight float64, timestamp int64) (int64, error) {
	if !domain.ValidWeight(weight) {
		return 0, domain.ErrInvalidWeight
	}
	var id int64
	err := d.sql.QueryRowContext(ctx,
		"INSERT INTO weight_entries(weight, date) VALUES($1, $2) RETURNING id;",
		weight, timestamp,
	).Scan(&id)
	return id, err
}

// DeleteWeight removes the entry with the given ID if present.
func (d *DB) DeleteWeight(ctx context.Context, id int64) error {
	_, err := d.sql.ExecContext(ctx, "DELETE FROM weight_entries WHERE id=$1;", id)
	return err
}

// ListWeights returns every entry, newest first.
func (d *DB) ListWeights(ctx context.Context) ([]domain.WeightEntry, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, weight, date FROM weight_entries ORDER BY date DESC, id DESC;")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.WeightEntry{}
	for rows.Next() {
		var e domain.WeightEntry
		if err := rows.Scan(&e.ID, &e.Weight, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
