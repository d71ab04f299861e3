package historic

import (
	"context"
	"time"
)

type Repository interface {
	// InsertMany persists summaries, silently skipping rows that already
	// exist for the same (date, player).
	InsertMany(ctx context.Context, rows []Stats) error
	ListByDate(ctx context.Context, date time.Time) ([]Stats, error)
}
