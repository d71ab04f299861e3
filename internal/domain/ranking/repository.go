package ranking

import (
	"context"
	"time"
)

type Repository interface {
	// InsertMany persists snapshots, silently skipping rows that already
	// exist for the same (date, player, character).
	InsertMany(ctx context.Context, snapshots []Snapshot) error
	ListByDate(ctx context.Context, date time.Time) ([]Snapshot, error)
	ListDates(ctx context.Context) ([]time.Time, error)
}
